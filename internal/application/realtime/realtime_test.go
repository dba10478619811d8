package realtime_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-inventario/internal/application/realtime"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
)

type memStore struct {
	mu      sync.Mutex
	carts   map[string]entity.Cart
	updates int
}

func (s *memStore) Get(_ context.Context, id string) (entity.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.carts[id], nil
}

func (s *memStore) Update(_ context.Context, id string, fn repository.CartMutation) (entity.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(s.carts[id])
	if err != nil {
		return entity.Cart{}, err
	}
	s.carts[id] = next
	s.updates++
	return next, nil
}

func (s *memStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, id)
	return nil
}

func (s *memStore) Sessions(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.carts))
	for id := range s.carts {
		out = append(out, id)
	}
	return out, nil
}

// expiringStore pierde la clave del carrito justo después de la lectura (TTL de Redis).
type expiringStore struct {
	*memStore
}

func (s expiringStore) Get(ctx context.Context, id string) (entity.Cart, error) {
	c, err := s.memStore.Get(ctx, id)
	_ = s.memStore.Delete(ctx, id)
	return c, err
}

type chanFeed chan entity.StockChangeEvent

func (f chanFeed) Listen(ctx context.Context, handle func(context.Context, entity.StockChangeEvent)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-f:
			handle(ctx, ev)
		}
	}
}

func shirtCart() entity.Cart {
	return entity.Cart{
		SessionID: "s1",
		Items: []entity.CartItem{
			{ProductID: "p-mug", Name: "Taza", Price: decimal.NewFromInt(10), Quantity: 2, Stock: entity.IntPtr(10)},
			{
				ProductID: "p-shirt", VariantID: "v", Name: "Camiseta", Price: decimal.NewFromInt(20), Quantity: 3,
				Variant: &entity.CartVariant{ID: "v", StockCount: entity.IntPtr(5)},
			},
		},
	}
}

func TestHandle_PatchesVariantStockOnly(t *testing.T) {
	store := &memStore{carts: map[string]entity.Cart{"s1": shirtCart(), "s2": {SessionID: "s2"}}}
	syncer := realtime.NewSynchronizer(nil, store, nil, zerolog.Nop())

	syncer.Handle(context.Background(), entity.StockChangeEvent{
		Table: entity.TableProductVariants, Kind: "UPDATE", ID: "v", NewStock: entity.IntPtr(2), HasNewStock: true,
	})

	c := store.carts["s1"]
	assert.Equal(t, 2, *c.Items[1].Variant.StockCount)
	assert.Equal(t, 3, c.Items[1].Quantity, "la cantidad no se corrige")
	assert.Equal(t, 10, *c.Items[0].Stock)
	assert.Equal(t, 1, store.updates, "solo se escribe el carrito afectado")
}

func TestHandle_ExpiredCartIsNotRecreated(t *testing.T) {
	store := &memStore{carts: map[string]entity.Cart{"s1": shirtCart()}}
	syncer := realtime.NewSynchronizer(nil, expiringStore{store}, nil, zerolog.Nop())

	syncer.Handle(context.Background(), entity.StockChangeEvent{
		Table: entity.TableProducts, Kind: "UPDATE", ID: "p-mug", NewStock: entity.IntPtr(1), HasNewStock: true,
	})

	_, exists := store.carts["s1"]
	assert.False(t, exists)
	assert.Zero(t, store.updates)
}

func TestHandle_IgnoresUnusableEvents(t *testing.T) {
	store := &memStore{carts: map[string]entity.Cart{"s1": shirtCart()}}
	hub := realtime.NewHub(1)
	events, cancel := hub.Subscribe()
	defer cancel()
	syncer := realtime.NewSynchronizer(nil, store, hub, zerolog.Nop())

	syncer.Handle(context.Background(), entity.StockChangeEvent{Table: entity.TableProducts, ID: "p-mug"})
	syncer.Handle(context.Background(), entity.StockChangeEvent{Table: entity.TableProducts, NewStock: entity.IntPtr(1), HasNewStock: true})

	assert.Equal(t, 0, store.updates)
	assert.Len(t, events, 0)
}

func TestHandle_NullStockMeansUntracked(t *testing.T) {
	store := &memStore{carts: map[string]entity.Cart{"s1": shirtCart()}}
	syncer := realtime.NewSynchronizer(nil, store, nil, zerolog.Nop())

	syncer.Handle(context.Background(), entity.StockChangeEvent{Table: entity.TableProducts, ID: "p-mug", HasNewStock: true})

	assert.Nil(t, store.carts["s1"].Items[0].Stock)
}

func TestRun_DeliversFeedEventsToHub(t *testing.T) {
	store := &memStore{carts: map[string]entity.Cart{"s1": shirtCart()}}
	hub := realtime.NewHub(4)
	events, cancel := hub.Subscribe()
	defer cancel()
	feed := make(chanFeed, 1)
	syncer := realtime.NewSynchronizer(feed, store, hub, zerolog.Nop())

	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- syncer.Run(ctx) }()

	feed <- entity.StockChangeEvent{Table: entity.TableProducts, ID: "p-mug", NewStock: entity.IntPtr(7), HasNewStock: true}

	select {
	case ev := <-events:
		assert.Equal(t, "p-mug", ev.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("no llegó el evento")
	}
	stop()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestHub_UnsubscribeAndSlowSubscriber(t *testing.T) {
	hub := realtime.NewHub(1)
	slow, cancelSlow := hub.Subscribe()
	_, cancelGone := hub.Subscribe()
	cancelGone()
	cancelGone()
	assert.Equal(t, 1, hub.Subscribers())

	ev := entity.StockChangeEvent{ID: "p", HasNewStock: true}
	hub.Publish(ev)
	hub.Publish(ev) // buffer lleno: se descarta sin bloquear

	assert.Len(t, slow, 1)
	cancelSlow()
	_, open := <-slow
	assert.True(t, open, "el evento en buffer sigue disponible")
	_, open = <-slow
	assert.False(t, open)
}
