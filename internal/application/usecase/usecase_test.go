package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-inventario/internal/application/dto"
	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
)

type memProducts map[string]*entity.Product

func (m memProducts) Create(_ context.Context, p *entity.Product) error { m[p.ID] = p; return nil }
func (m memProducts) Update(_ context.Context, p *entity.Product) error {
	if _, ok := m[p.ID]; !ok {
		return domain.ErrNotFound
	}
	m[p.ID] = p
	return nil
}
func (m memProducts) GetByID(_ context.Context, id string) (*entity.Product, error) { return m[id], nil }
func (m memProducts) List(context.Context, int, int) ([]*entity.Product, error) {
	out := make([]*entity.Product, 0, len(m))
	for _, p := range m {
		out = append(out, p)
	}
	return out, nil
}

type memVariants map[string]*entity.ProductVariant

func (m memVariants) Create(_ context.Context, v *entity.ProductVariant) error { m[v.ID] = v; return nil }
func (m memVariants) Update(_ context.Context, v *entity.ProductVariant) error { m[v.ID] = v; return nil }
func (m memVariants) GetByID(_ context.Context, id string) (*entity.ProductVariant, error) {
	return m[id], nil
}
func (m memVariants) ListByProduct(_ context.Context, productID string) ([]*entity.ProductVariant, error) {
	var out []*entity.ProductVariant
	for _, v := range m {
		if v.ProductID == productID {
			out = append(out, v)
		}
	}
	return out, nil
}

type memStock struct {
	products  map[string]*int
	variants  map[string]*int
	movements []*entity.StockMovement
	// soldBeforeSet simula una venta confirmada entre la lectura y la escritura del ajuste
	soldBeforeSet int
}

func (s *memStock) ProductStock(_ context.Context, id string) (*int, error) {
	v, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}
func (s *memStock) VariantStock(_ context.Context, id string) (*int, error) {
	v, ok := s.variants[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}
func (s *memStock) DecrementProduct(context.Context, string, int, time.Time) (*int, error) {
	return nil, nil
}
func (s *memStock) DecrementVariant(context.Context, string, int, time.Time) (*int, error) {
	return nil, nil
}
func (s *memStock) SetProductStock(_ context.Context, id string, v *int, _ time.Time) (*int, error) {
	return s.swap(s.products, id, v)
}
func (s *memStock) SetVariantStock(_ context.Context, id string, v *int, _ time.Time) (*int, error) {
	return s.swap(s.variants, id, v)
}
func (s *memStock) swap(rows map[string]*int, id string, v *int) (*int, error) {
	prev, ok := rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if prev != nil && s.soldBeforeSet > 0 {
		prev = entity.IntPtr(*prev - s.soldBeforeSet)
	}
	rows[id] = v
	return prev, nil
}
func (s *memStock) Create(_ context.Context, m *entity.StockMovement) error {
	s.movements = append(s.movements, m)
	return nil
}
func (s *memStock) ListByProduct(context.Context, string, int, int) ([]*entity.StockMovement, error) {
	return s.movements, nil
}
func (s *memStock) Run(_ context.Context, fn func(repository.TxRepos) error) error {
	return fn(repository.TxRepos{Stock: s, Movements: s})
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestProductCreate_CleansInput(t *testing.T) {
	uc := NewProductUseCase(memProducts{}, memVariants{}, 5)

	resp, err := uc.Create(context.Background(), dto.ProductInput{
		Name: "  Taza  ", Price: price("12.50"), SKU: "  ", Stock: entity.IntPtr(4),
	})
	require.NoError(t, err)
	assert.Equal(t, "Taza", resp.Name)
	assert.Empty(t, resp.SKU)
	assert.False(t, resp.HasVariants)
	assert.Equal(t, entity.StockLow, resp.StockStatus)
}

func TestProductCreate_Validation(t *testing.T) {
	uc := NewProductUseCase(memProducts{}, memVariants{}, 5)
	ctx := context.Background()

	_, err := uc.Create(ctx, dto.ProductInput{Name: " ", Price: price("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Create(ctx, dto.ProductInput{Name: "Taza"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Create(ctx, dto.ProductInput{Name: "Taza", Price: price("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProductUpdate_KeepsStock(t *testing.T) {
	products := memProducts{"p": {ID: "p", Name: "Taza", Price: decimal.NewFromInt(10), Stock: entity.IntPtr(7)}}
	uc := NewProductUseCase(products, memVariants{}, 5)

	resp, err := uc.Update(context.Background(), "p", dto.ProductInput{Name: "Taza grande", Price: price("15")})
	require.NoError(t, err)
	assert.Equal(t, "Taza grande", resp.Name)
	assert.Equal(t, 7, *products["p"].Stock)

	_, err = uc.Update(context.Background(), "x", dto.ProductInput{Name: "a", Price: price("1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVariantCreate_DefaultsAndFlagsProduct(t *testing.T) {
	products := memProducts{"p": {ID: "p", Name: "Camiseta"}}
	variants := memVariants{}
	uc := NewVariantUseCase(variants, products, 5)

	resp, err := uc.Create(context.Background(), "p", dto.VariantInput{Color: "Rojo", Size: "L", StockCount: entity.IntPtr(0)})
	require.NoError(t, err)
	assert.True(t, resp.Price.IsZero())
	assert.NotNil(t, resp.Attributes)
	assert.Equal(t, "Rojo L", resp.Description)
	assert.Equal(t, entity.StockOut, resp.StockStatus)
	assert.True(t, products["p"].HasVariants)
}

func TestVariantUpdate_KeepsProductWhenAbsent(t *testing.T) {
	variants := memVariants{"v": {ID: "v", ProductID: "p", Price: decimal.NewFromInt(3)}}
	uc := NewVariantUseCase(variants, memProducts{}, 5)

	resp, err := uc.Update(context.Background(), "v", dto.VariantInput{Price: price("4"), Flavor: "Fresa"})
	require.NoError(t, err)
	assert.Equal(t, "p", resp.ProductID)
	assert.Equal(t, "Fresa", resp.Description)

	_, err = uc.Update(context.Background(), "nope", dto.VariantInput{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdjustStock_RecordsDelta(t *testing.T) {
	stock := &memStock{
		products: map[string]*int{"p": entity.IntPtr(10)},
		variants: map[string]*int{"v": nil},
	}
	variants := memVariants{"v": {ID: "v", ProductID: "p"}}
	uc := NewStockUseCase(stock, variants, stock, zerolog.Nop())
	ctx := context.Background()

	m, err := uc.AdjustProductStock(ctx, "p", "u1", entity.IntPtr(4))
	require.NoError(t, err)
	assert.Equal(t, -6, m.Quantity)
	assert.Equal(t, entity.MovementAdjustment, m.Type)
	assert.Equal(t, 4, *stock.products["p"])

	m, err = uc.AdjustVariantStock(ctx, "v", "u1", entity.IntPtr(3))
	require.NoError(t, err)
	assert.Equal(t, 3, m.Quantity)
	assert.Equal(t, "p", m.ProductID)

	_, err = uc.AdjustProductStock(ctx, "p", "u1", entity.IntPtr(-1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.AdjustProductStock(ctx, "x", "u1", entity.IntPtr(1))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = uc.AdjustVariantStock(ctx, "x", "u1", entity.IntPtr(1))
	assert.ErrorIs(t, err, domain.ErrVariantNotFound)

	history, err := uc.History(ctx, "p", 20, 0)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestCustomerAndCategory(t *testing.T) {
	ctx := context.Background()
	customers := NewCustomerUseCase(memCustomers{})
	c, err := customers.Create(ctx, dto.CustomerRequest{Name: " Ana ", Email: "ANA@x.co"})
	require.NoError(t, err)
	assert.Equal(t, "Ana", c.Name)
	assert.Equal(t, "ana@x.co", c.Email)
	_, err = customers.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	categories := NewCategoryUseCase(memCategories{})
	_, err = categories.Create(ctx, dto.CategoryRequest{Name: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

type memCustomers map[string]*entity.Customer

func (m memCustomers) Create(_ context.Context, c *entity.Customer) error { m[c.ID] = c; return nil }
func (m memCustomers) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	return m[id], nil
}
func (m memCustomers) List(context.Context, int, int) ([]*entity.Customer, error) { return nil, nil }

type memCategories map[string]*entity.Category

func (m memCategories) Create(_ context.Context, c *entity.Category) error { m[c.ID] = c; return nil }
func (m memCategories) GetByID(_ context.Context, id string) (*entity.Category, error) {
	return m[id], nil
}
func (m memCategories) List(context.Context) ([]*entity.Category, error) { return nil, nil }

func TestAdjustStock_DeltaFromReplacedValue(t *testing.T) {
	stock := &memStock{
		products:      map[string]*int{"p": entity.IntPtr(10)},
		variants:      map[string]*int{},
		soldBeforeSet: 2,
	}
	uc := NewStockUseCase(stock, memVariants{}, stock, zerolog.Nop())

	m, err := uc.AdjustProductStock(context.Background(), "p", "u1", entity.IntPtr(12))
	require.NoError(t, err)
	// 10 leído, 8 tras la venta concurrente: el delta real es +4
	assert.Equal(t, 4, m.Quantity)
	assert.Equal(t, 12, *m.ResultingStock)
}
