package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo historial de movimientos de stock.
type StockMovementRepo struct {
	q Querier
}

func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, product_id, variant_id, transaction_id, type, quantity, resulting_stock, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ProductID, nullString(m.VariantID), nullString(m.TransactionID), m.Type, m.Quantity,
		m.ResultingStock, nullString(m.CreatedBy), m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT id, product_id, variant_id, transaction_id, type, quantity, resulting_stock, created_by, created_at
		FROM stock_movements WHERE product_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockMovement
	for rows.Next() {
		var (
			m                     entity.StockMovement
			variantID, txID, user *string
		)
		if err := rows.Scan(&m.ID, &m.ProductID, &variantID, &txID, &m.Type, &m.Quantity, &m.ResultingStock, &user, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		m.VariantID = derefString(variantID)
		m.TransactionID = derefString(txID)
		m.CreatedBy = derefString(user)
		list = append(list, &m)
	}
	return list, rows.Err()
}
