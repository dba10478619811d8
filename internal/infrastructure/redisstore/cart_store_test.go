package redisstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

func setupStore(t *testing.T) (*CartStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCartStore(client, 15*time.Minute), mr
}

func addOne(item entity.CartItem) func(entity.Cart) (entity.Cart, error) {
	return func(c entity.Cart) (entity.Cart, error) {
		c.Items = append(c.Items, item)
		return c, nil
	}
}

func TestCartStore_GetMissingReturnsEmpty(t *testing.T) {
	store, _ := setupStore(t)

	cart, err := store.Get(context.Background(), "caja-1")
	require.NoError(t, err)
	assert.Equal(t, "caja-1", cart.SessionID)
	assert.Empty(t, cart.Items)
}

func TestCartStore_UpdateRoundTrip(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()
	item := entity.CartItem{ProductID: "p1", Name: "Pan", Price: decimal.RequireFromString("1.25"), Quantity: 2, Stock: entity.IntPtr(4)}

	saved, err := store.Update(ctx, "caja-1", addOne(item))
	require.NoError(t, err)
	assert.False(t, saved.UpdatedAt.IsZero())

	got, err := store.Get(ctx, "caja-1")
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.True(t, item.Price.Equal(got.Items[0].Price))
	assert.Equal(t, 4, *got.Items[0].Stock)

	ttl := mr.TTL("cart:caja-1")
	assert.GreaterOrEqual(t, ttl, 15*time.Minute)
	assert.Less(t, ttl, 20*time.Minute)
}

func TestCartStore_MutationErrorKeepsCart(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()
	_, err := store.Update(ctx, "caja-1", addOne(entity.CartItem{ProductID: "p1", Quantity: 1}))
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = store.Update(ctx, "caja-1", func(c entity.Cart) (entity.Cart, error) {
		c.Items = nil
		return c, boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := store.Get(ctx, "caja-1")
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)
}

func TestCartStore_ConcurrentUpdatesDoNotLoseWrites(t *testing.T) {
	store, _ := setupStore(t)
	store.maxRetries = 50
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Update(ctx, "caja-1", func(c entity.Cart) (entity.Cart, error) {
				if len(c.Items) == 0 {
					c.Items = []entity.CartItem{{ProductID: "p1"}}
				}
				c.Items[0].Quantity++
				return c, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := store.Get(ctx, "caja-1")
	require.NoError(t, err)
	assert.Equal(t, 8, got.Items[0].Quantity)
}

func TestCartStore_SessionsAndDelete(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		_, err := store.Update(ctx, id, addOne(entity.CartItem{ProductID: "p"}))
		require.NoError(t, err)
	}
	require.NoError(t, store.Delete(ctx, "b"))
	mr.Del("cart:c") // expirado

	sessions, err := store.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, sessions)

	members, err := mr.Members(activeSessionsKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, members, "las sesiones expiradas salen del índice")
}
