package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// stockTable describe dónde vive el stock de cada tipo de fila.
type stockTable struct {
	name   string
	column string
}

var (
	productStock = stockTable{name: "products", column: "stock"}
	variantStock = stockTable{name: "product_variants", column: "stock_count"}
)

// StockRepo lecturas puntuales y decrementos condicionales de stock.
// Dentro de una tx (TxRunner) el decremento bloquea la fila hasta el commit.
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el repositorio. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

func (r *StockRepo) ProductStock(ctx context.Context, productID string) (*int, error) {
	return r.read(ctx, productStock, productID)
}

func (r *StockRepo) VariantStock(ctx context.Context, variantID string) (*int, error) {
	return r.read(ctx, variantStock, variantID)
}

func (r *StockRepo) DecrementProduct(ctx context.Context, productID string, qty int, at time.Time) (*int, error) {
	return r.decrement(ctx, productStock, productID, qty, at)
}

func (r *StockRepo) DecrementVariant(ctx context.Context, variantID string, qty int, at time.Time) (*int, error) {
	return r.decrement(ctx, variantStock, variantID, qty, at)
}

func (r *StockRepo) SetProductStock(ctx context.Context, productID string, stock *int, at time.Time) (*int, error) {
	return r.set(ctx, productStock, productID, stock, at)
}

func (r *StockRepo) SetVariantStock(ctx context.Context, variantID string, stock *int, at time.Time) (*int, error) {
	return r.set(ctx, variantStock, variantID, stock, at)
}

func (r *StockRepo) read(ctx context.Context, t stockTable, id string) (*int, error) {
	var stock *int
	err := r.q.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, t.column, t.name), id).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("read %s stock: %w", t.name, err)
	}
	return stock, nil
}

// decrement resta qty en una sola sentencia condicionada a stock suficiente; stock NULL queda NULL.
// Si no se actualizó ninguna fila se distingue entre fila inexistente y stock insuficiente.
func (r *StockRepo) decrement(ctx context.Context, t stockTable, id string, qty int, at time.Time) (*int, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: cantidad %d", domain.ErrInvalidInput, qty)
	}
	query := fmt.Sprintf(`
		UPDATE %[1]s SET %[2]s = %[2]s - $2, updated_at = $3
		WHERE id = $1 AND (%[2]s IS NULL OR %[2]s >= $2)
		RETURNING %[2]s`, t.name, t.column)

	var stock *int
	err := r.q.QueryRow(ctx, query, id, qty, at).Scan(&stock)
	if err == nil {
		return stock, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("decrement %s stock: %w", t.name, err)
	}
	current, readErr := r.read(ctx, t, id)
	if readErr != nil {
		return nil, readErr
	}
	available := 0
	if current != nil {
		available = *current
	}
	return nil, &domain.StockError{Shortages: []domain.StockShortage{{Requested: qty, Available: available}}}
}

// set bloquea la fila (FOR UPDATE) antes de escribir: el valor anterior devuelto es el que
// realmente se reemplazó aunque una venta concurrente haya confirmado justo antes.
func (r *StockRepo) set(ctx context.Context, t stockTable, id string, stock *int, at time.Time) (*int, error) {
	if stock != nil && *stock < 0 {
		return nil, fmt.Errorf("%w: stock negativo", domain.ErrInvalidInput)
	}
	query := fmt.Sprintf(`
		WITH old AS (SELECT id, %[2]s FROM %[1]s WHERE id = $1 FOR UPDATE)
		UPDATE %[1]s AS t SET %[2]s = $2, updated_at = $3
		FROM old WHERE t.id = old.id
		RETURNING old.%[2]s`, t.name, t.column)

	var previous *int
	if err := r.q.QueryRow(ctx, query, id, stock, at).Scan(&previous); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("set %s stock: %w", t.name, err)
	}
	return previous, nil
}
