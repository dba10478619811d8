package pos

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

// slowStock bloquea la lectura hasta release y respeta la cancelación del contexto como pgx.
type slowStock struct {
	memStock
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (s *slowStock) ProductStock(ctx context.Context, id string) (*int, error) {
	s.once.Do(func() { close(s.entered) })
	<-s.release
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.memStock.ProductStock(ctx, id)
}

func TestStockGateway_SharedReadSurvivesFirstCallerCancel(t *testing.T) {
	repo := &slowStock{
		memStock: memStock{products: map[string]*int{"p-mug": entity.IntPtr(7)}},
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	gw := NewStockGateway(repo)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		_, _ = gw.ProductStock(firstCtx, "p-mug")
	}()
	<-repo.entered

	type result struct {
		stock *int
		err   error
	}
	second := make(chan result, 1)
	go func() {
		stock, err := gw.ProductStock(context.Background(), "p-mug")
		second <- result{stock, err}
	}()

	// el primer cliente se desconecta mientras la lectura sigue en curso
	time.Sleep(20 * time.Millisecond)
	cancelFirst()
	close(repo.release)

	select {
	case r := <-second:
		require.NoError(t, r.err)
		require.NotNil(t, r.stock)
		assert.Equal(t, 7, *r.stock)
	case <-time.After(2 * time.Second):
		t.Fatal("la segunda caja quedó esperando")
	}
	<-firstDone
}

func TestStockGateway_ReturnsPrivateCopies(t *testing.T) {
	gw := NewStockGateway(&memStock{products: map[string]*int{"p-mug": entity.IntPtr(3)}})

	a, err := gw.ProductStock(context.Background(), "p-mug")
	require.NoError(t, err)
	*a = 99
	b, err := gw.ProductStock(context.Background(), "p-mug")
	require.NoError(t, err)
	assert.Equal(t, 3, *b)
}
