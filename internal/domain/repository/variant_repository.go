package repository

import (
	"context"

	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

// VariantRepository define el puerto de persistencia para ProductVariant.
// GetByID devuelve (nil, nil) si no existe.
type VariantRepository interface {
	Create(ctx context.Context, variant *entity.ProductVariant) error
	GetByID(ctx context.Context, id string) (*entity.ProductVariant, error)
	Update(ctx context.Context, variant *entity.ProductVariant) error
	ListByProduct(ctx context.Context, productID string) ([]*entity.ProductVariant, error)
}
