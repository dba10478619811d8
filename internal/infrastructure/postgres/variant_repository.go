package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
)

var _ repository.VariantRepository = (*VariantRepo)(nil)

const variantColumns = `id, product_id, price, stock_count, sku, color, size, flavor, variant_attributes, created_at, updated_at`

// VariantRepo persistencia de variantes de producto.
type VariantRepo struct {
	q Querier
}

func NewVariantRepository(q Querier) *VariantRepo {
	return &VariantRepo{q: q}
}

func (r *VariantRepo) Create(ctx context.Context, v *entity.ProductVariant) error {
	attrs, err := marshalAttributes(v.Attributes)
	if err != nil {
		return err
	}
	query := `INSERT INTO product_variants (` + variantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err = r.q.Exec(ctx, query,
		v.ID, v.ProductID, v.Price, v.StockCount, nullString(v.SKU), nullString(v.Color), nullString(v.Size),
		nullString(v.Flavor), attrs, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert variant: %w", err)
	}
	return nil
}

func (r *VariantRepo) GetByID(ctx context.Context, id string) (*entity.ProductVariant, error) {
	v, err := scanVariant(r.q.QueryRow(ctx, `SELECT `+variantColumns+` FROM product_variants WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get variant: %w", err)
	}
	return v, nil
}

// Update reemplaza los campos de la variante (incluido stock_count).
func (r *VariantRepo) Update(ctx context.Context, v *entity.ProductVariant) error {
	attrs, err := marshalAttributes(v.Attributes)
	if err != nil {
		return err
	}
	query := `
		UPDATE product_variants SET product_id = $2, price = $3, stock_count = $4, sku = $5, color = $6,
			size = $7, flavor = $8, variant_attributes = $9, updated_at = $10
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		v.ID, v.ProductID, v.Price, v.StockCount, nullString(v.SKU), nullString(v.Color), nullString(v.Size),
		nullString(v.Flavor), attrs, v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update variant: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *VariantRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.ProductVariant, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+variantColumns+` FROM product_variants WHERE product_id = $1 ORDER BY created_at`, productID)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	defer rows.Close()

	var list []*entity.ProductVariant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		list = append(list, v)
	}
	return list, rows.Err()
}

func scanVariant(row pgx.Row) (*entity.ProductVariant, error) {
	var (
		v                         entity.ProductVariant
		sku, color, size, flavor *string
		attrs                     []byte
	)
	err := row.Scan(&v.ID, &v.ProductID, &v.Price, &v.StockCount, &sku, &color, &size, &flavor, &attrs,
		&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	v.SKU = derefString(sku)
	v.Color = derefString(color)
	v.Size = derefString(size)
	v.Flavor = derefString(flavor)
	v.Attributes = map[string]string{}
	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &v.Attributes); err != nil {
			return nil, fmt.Errorf("decode variant_attributes: %w", err)
		}
	}
	return &v, nil
}

func marshalAttributes(attrs map[string]string) ([]byte, error) {
	if attrs == nil {
		attrs = map[string]string{}
	}
	b, err := json.Marshal(attrs)
	if err != nil {
		return nil, fmt.Errorf("encode variant_attributes: %w", err)
	}
	return b, nil
}
