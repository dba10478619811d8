package repository

import (
	"context"
	"time"
)

// StockRepository lecturas puntuales y escrituras de stock de productos y variantes.
// Un stock nil significa "sin control de inventario". Filas inexistentes devuelven domain.ErrNotFound.
type StockRepository interface {
	ProductStock(ctx context.Context, productID string) (*int, error)
	VariantStock(ctx context.Context, variantID string) (*int, error)

	// DecrementProduct resta qty de forma atómica solo si hay stock suficiente
	// (o si el producto no lleva inventario). Devuelve domain.ErrInsufficientStock en caso contrario.
	DecrementProduct(ctx context.Context, productID string, qty int, at time.Time) (*int, error)
	DecrementVariant(ctx context.Context, variantID string, qty int, at time.Time) (*int, error)

	// SetProductStock fija el stock bloqueando la fila y devuelve el valor anterior.
	SetProductStock(ctx context.Context, productID string, stock *int, at time.Time) (previous *int, err error)
	SetVariantStock(ctx context.Context, variantID string, stock *int, at time.Time) (previous *int, err error)
}
