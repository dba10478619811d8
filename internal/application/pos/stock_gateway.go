package pos

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
)

// stockReadTimeout acota la lectura compartida, que ya no depende del contexto de un solo llamador.
const stockReadTimeout = 5 * time.Second

// StockGateway lecturas puntuales de stock. Lecturas concurrentes de la misma fila
// (varias cajas validando el mismo producto) se resuelven con una sola consulta.
type StockGateway struct {
	repo repository.StockRepository
	sfg  singleflight.Group
}

func NewStockGateway(repo repository.StockRepository) *StockGateway {
	return &StockGateway{repo: repo}
}

// ProductStock stock actual del producto; nil = sin control de inventario.
func (g *StockGateway) ProductStock(ctx context.Context, productID string) (*int, error) {
	return g.do(ctx, "product:"+productID, func(ctx context.Context) (*int, error) { return g.repo.ProductStock(ctx, productID) })
}

// VariantStock stock actual de la variante; nil = sin control de inventario.
func (g *StockGateway) VariantStock(ctx context.Context, variantID string) (*int, error) {
	return g.do(ctx, "variant:"+variantID, func(ctx context.Context) (*int, error) { return g.repo.VariantStock(ctx, variantID) })
}

// LineStock stock que limita la línea: el de su variante si la tiene.
func (g *StockGateway) LineStock(ctx context.Context, it entity.CartItem) (*int, error) {
	if it.VariantID != "" {
		return g.VariantStock(ctx, it.VariantID)
	}
	return g.ProductStock(ctx, it.ProductID)
}

// do comparte la lectura entre llamadores concurrentes. La consulta corre sin la cancelación
// del primer llamador: si esa caja se desconecta, las demás siguen esperando el resultado.
func (g *StockGateway) do(ctx context.Context, key string, fn func(context.Context) (*int, error)) (*int, error) {
	v, err, _ := g.sfg.Do(key, func() (interface{}, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), stockReadTimeout)
		defer cancel()
		return fn(shared)
	})
	if err != nil {
		return nil, err
	}
	stock, _ := v.(*int)
	if stock == nil {
		return nil, nil
	}
	// copia: el resultado compartido no debe mutarse entre llamadores
	out := *stock
	return &out, nil
}
