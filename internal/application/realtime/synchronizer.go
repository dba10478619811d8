package realtime

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/jhoicas/pos-inventario/internal/domain/cart"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
)

// errUnchanged aborta la escritura: el carrito expiró o ya no contiene la fila del evento.
var errUnchanged = errors.New("carrito sin cambios")

// Feed fuente de cambios de stock (LISTEN/NOTIFY en Postgres).
type Feed interface {
	Listen(ctx context.Context, handle func(context.Context, entity.StockChangeEvent)) error
}

// Synchronizer mantiene al día el stock mostrado en los carritos abiertos.
// Hay una sola suscripción por proceso; el filtro contra el contenido de cada carrito se hace en memoria.
type Synchronizer struct {
	feed  Feed
	store repository.CartStore
	hub   *Hub
	log   zerolog.Logger
}

func NewSynchronizer(feed Feed, store repository.CartStore, hub *Hub, log zerolog.Logger) *Synchronizer {
	return &Synchronizer{feed: feed, store: store, hub: hub, log: log}
}

// Run bloquea hasta que ctx se cancele.
func (s *Synchronizer) Run(ctx context.Context) error {
	s.log.Info().Msg("sincronización de stock iniciada")
	return s.feed.Listen(ctx, s.Handle)
}

// Handle aplica un evento a todos los carritos activos. Eventos sin id o sin stock
// nuevo se ignoran. Las cantidades nunca se tocan: solo el stock conocido de cada línea.
func (s *Synchronizer) Handle(ctx context.Context, ev entity.StockChangeEvent) {
	if !ev.Applicable() {
		s.log.Debug().Str("table", ev.Table).Str("kind", ev.Kind).Msg("evento de stock ignorado")
		return
	}
	if s.hub != nil {
		s.hub.Publish(ev)
	}

	sessions, err := s.store.Sessions(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("no se pudieron listar los carritos activos")
		return
	}
	patched := 0
	for _, id := range sessions {
		current, err := s.store.Get(ctx, id)
		if err != nil {
			s.log.Warn().Err(err).Str("session_id", id).Msg("carrito no disponible")
			continue
		}
		if _, changed := cart.ApplyStockChange(current.Items, ev); !changed {
			continue
		}
		_, err = s.store.Update(ctx, id, func(c entity.Cart) (entity.Cart, error) {
			items, changed := cart.ApplyStockChange(c.Items, ev)
			if !changed {
				return c, errUnchanged
			}
			c.Items = items
			return c, nil
		})
		if errors.Is(err, errUnchanged) {
			continue
		}
		if err != nil {
			s.log.Warn().Err(err).Str("session_id", id).Msg("no se pudo actualizar el stock del carrito")
			continue
		}
		patched++
	}
	if patched > 0 {
		s.log.Debug().
			Str("table", ev.Table).
			Str("id", ev.ID).
			Int("carts", patched).
			Msg("stock actualizado en carritos")
	}
}
