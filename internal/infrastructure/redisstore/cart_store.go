// Package redisstore guarda las sesiones de carrito en Redis.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
)

var _ repository.CartStore = (*CartStore)(nil)

const activeSessionsKey = "carts:active"

// ErrConflict la sesión cambió concurrentemente más veces de las que se reintenta.
var ErrConflict = errors.New("redis: conflicto de escritura en el carrito")

// CartStore carritos serializados en JSON bajo cart:<session>, con TTL y jitter.
// Update usa WATCH/MULTI: si otra escritura gana la carrera se relee y reintenta.
type CartStore struct {
	client     *redis.Client
	baseTTL    time.Duration
	maxRetries int
	now        func() time.Time
}

func NewCartStore(client *redis.Client, baseTTL time.Duration) *CartStore {
	if baseTTL <= 0 {
		baseTTL = 15 * time.Minute
	}
	return &CartStore{client: client, baseTTL: baseTTL, maxRetries: 5, now: time.Now}
}

func (s *CartStore) Get(ctx context.Context, sessionID string) (entity.Cart, error) {
	return s.load(ctx, s.client, sessionID)
}

func (s *CartStore) Update(ctx context.Context, sessionID string, fn repository.CartMutation) (entity.Cart, error) {
	key := cartKey(sessionID)
	var result entity.Cart

	txf := func(tx *redis.Tx) error {
		current, err := s.load(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		next.SessionID = sessionID
		next.UpdatedAt = s.now().UTC()
		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("marshal cart failed: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl())
			pipe.SAdd(ctx, activeSessionsKey, sessionID)
			return nil
		})
		if err != nil {
			return err
		}
		result = next
		return nil
	}

	for i := 0; i < s.maxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return entity.Cart{}, err
		}
		return result, nil
	}
	return entity.Cart{}, ErrConflict
}

func (s *CartStore) Delete(ctx context.Context, sessionID string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, cartKey(sessionID))
		pipe.SRem(ctx, activeSessionsKey, sessionID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// Sessions devuelve las sesiones con carrito vigente y limpia del índice las expiradas.
func (s *CartStore) Sessions(ctx context.Context) ([]string, error) {
	members, err := s.client.SMembers(ctx, activeSessionsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers failed: %w", err)
	}
	live := make([]string, 0, len(members))
	for _, id := range members {
		n, err := s.client.Exists(ctx, cartKey(id)).Result()
		if err != nil {
			return nil, fmt.Errorf("redis exists failed: %w", err)
		}
		if n == 0 {
			s.client.SRem(ctx, activeSessionsKey, id)
			continue
		}
		live = append(live, id)
	}
	return live, nil
}

func (s *CartStore) load(ctx context.Context, c redis.Cmdable, sessionID string) (entity.Cart, error) {
	data, err := c.Get(ctx, cartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return entity.Cart{SessionID: sessionID, Items: []entity.CartItem{}}, nil
	}
	if err != nil {
		return entity.Cart{}, fmt.Errorf("redis get failed: %w", err)
	}
	var cart entity.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return entity.Cart{}, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []entity.CartItem{}
	}
	return cart, nil
}

func (s *CartStore) ttl() time.Duration {
	jitter := time.Duration(rand.Intn(5)) * time.Minute
	return s.baseTTL + jitter
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}
