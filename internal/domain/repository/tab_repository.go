package repository

import (
	"context"
	"time"

	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

// TabRepository cuentas abiertas.
type TabRepository interface {
	Create(ctx context.Context, tab *entity.Tab) error
	GetByID(ctx context.Context, id string) (*entity.Tab, error)
	ListOpen(ctx context.Context) ([]*entity.Tab, error)
	Close(ctx context.Context, id string, at time.Time) error
}
