package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
)

var _ repository.TabRepository = (*TabRepo)(nil)

// TabRepo cuentas abiertas; las líneas se guardan como JSONB.
type TabRepo struct {
	q Querier
}

func NewTabRepository(q Querier) *TabRepo {
	return &TabRepo{q: q}
}

func (r *TabRepo) Create(ctx context.Context, t *entity.Tab) error {
	items, err := json.Marshal(t.Items)
	if err != nil {
		return fmt.Errorf("encode tab items: %w", err)
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO tabs (id, name, customer_id, items, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.Name, nullString(t.CustomerID), items, t.Status, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert tab: %w", err)
	}
	return nil
}

func (r *TabRepo) GetByID(ctx context.Context, id string) (*entity.Tab, error) {
	t, err := scanTab(r.q.QueryRow(ctx, `
		SELECT id, name, customer_id, items, status, created_at, updated_at FROM tabs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tab: %w", err)
	}
	return t, nil
}

func (r *TabRepo) ListOpen(ctx context.Context) ([]*entity.Tab, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, name, customer_id, items, status, created_at, updated_at
		FROM tabs WHERE status = $1 ORDER BY created_at DESC`, entity.TabOpen)
	if err != nil {
		return nil, fmt.Errorf("list tabs: %w", err)
	}
	defer rows.Close()

	var list []*entity.Tab
	for rows.Next() {
		t, err := scanTab(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tab: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// Close marca la cuenta como cerrada. Una cuenta ya cerrada devuelve domain.ErrTabClosed.
func (r *TabRepo) Close(ctx context.Context, id string, at time.Time) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE tabs SET status = $2, updated_at = $3 WHERE id = $1 AND status = $4`,
		id, entity.TabClosed, at, entity.TabOpen)
	if err != nil {
		return fmt.Errorf("close tab: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrTabClosed
	}
	return nil
}

func scanTab(row pgx.Row) (*entity.Tab, error) {
	var (
		t        entity.Tab
		customer *string
		items    []byte
	)
	if err := row.Scan(&t.ID, &t.Name, &customer, &items, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.CustomerID = derefString(customer)
	if err := json.Unmarshal(items, &t.Items); err != nil {
		return nil, fmt.Errorf("decode tab items: %w", err)
	}
	return &t, nil
}
