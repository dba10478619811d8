package repository

import (
	"context"

	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

// CartMutation recibe el carrito actual y devuelve el nuevo valor.
// Un error aborta la actualización y deja el carrito guardado intacto.
type CartMutation func(current entity.Cart) (entity.Cart, error)

// CartStore almacén de sesiones de carrito.
// Get devuelve un carrito vacío si la sesión no existe.
type CartStore interface {
	Get(ctx context.Context, sessionID string) (entity.Cart, error)
	Update(ctx context.Context, sessionID string, fn CartMutation) (entity.Cart, error)
	Delete(ctx context.Context, sessionID string) error
	// Sessions lista las sesiones activas (para reconciliar stock en tiempo real).
	Sessions(ctx context.Context) ([]string, error)
}
