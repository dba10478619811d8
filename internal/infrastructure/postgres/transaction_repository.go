package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

// TransactionRepo persiste ventas (cabecera + líneas). Create debe ejecutarse dentro de TxRunner.
type TransactionRepo struct {
	q Querier
}

func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

func (r *TransactionRepo) Create(ctx context.Context, t *entity.Transaction) error {
	payment, err := json.Marshal(t.Payment)
	if err != nil {
		return fmt.Errorf("encode payment: %w", err)
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO transactions (id, session_id, customer_id, user_id, tab_id, subtotal, tax, total, payment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, t.SessionID, nullString(t.CustomerID), nullString(t.UserID), nullString(t.TabID),
		t.Subtotal, t.Tax, t.Total, payment, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	for _, it := range t.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO transaction_items (id, transaction_id, product_id, variant_id, name, variant, category, quantity, unit_price, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			it.ID, t.ID, it.ProductID, nullString(it.VariantID), it.Name, nullString(it.Variant),
			nullString(it.Category), it.Quantity, it.UnitPrice, it.LineTotal,
		)
		if err != nil {
			return fmt.Errorf("insert transaction item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la venta con sus líneas; (nil, nil) si no existe.
func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	var (
		t                   entity.Transaction
		customer, user, tab *string
		payment             []byte
	)
	err := r.q.QueryRow(ctx, `
		SELECT id, session_id, customer_id, user_id, tab_id, subtotal, tax, total, payment, created_at
		FROM transactions WHERE id = $1`, id).
		Scan(&t.ID, &t.SessionID, &customer, &user, &tab, &t.Subtotal, &t.Tax, &t.Total, &payment, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	t.CustomerID = derefString(customer)
	t.UserID = derefString(user)
	t.TabID = derefString(tab)
	if len(payment) > 0 {
		if err := json.Unmarshal(payment, &t.Payment); err != nil {
			return nil, fmt.Errorf("decode payment: %w", err)
		}
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, product_id, variant_id, name, variant, category, quantity, unit_price, line_total
		FROM transaction_items WHERE transaction_id = $1 ORDER BY name`, id)
	if err != nil {
		return nil, fmt.Errorf("list transaction items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			it                           entity.TransactionItem
			variantID, variant, category *string
		)
		if err := rows.Scan(&it.ID, &it.ProductID, &variantID, &it.Name, &variant, &category, &it.Quantity, &it.UnitPrice, &it.LineTotal); err != nil {
			return nil, fmt.Errorf("scan transaction item: %w", err)
		}
		it.VariantID = derefString(variantID)
		it.Variant = derefString(variant)
		it.Category = derefString(category)
		t.Items = append(t.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &t, nil
}
