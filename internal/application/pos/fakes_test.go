package pos

import (
	"context"
	"errors"
	"maps"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
	"github.com/jhoicas/pos-inventario/internal/domain/tax"
)

var errDown = errors.New("db caída")

// memCartStore carrito en memoria con la misma semántica que el de Redis.
type memCartStore struct {
	mu    sync.Mutex
	carts map[string]entity.Cart
}

func newMemCartStore() *memCartStore { return &memCartStore{carts: map[string]entity.Cart{}} }

func (s *memCartStore) Get(_ context.Context, id string) (entity.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[id]
	if !ok {
		return entity.Cart{SessionID: id, Items: []entity.CartItem{}}, nil
	}
	return c, nil
}

func (s *memCartStore) Update(_ context.Context, id string, fn repository.CartMutation) (entity.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[id]
	if !ok {
		c = entity.Cart{SessionID: id, Items: []entity.CartItem{}}
	}
	next, err := fn(c)
	if err != nil {
		return entity.Cart{}, err
	}
	next.SessionID = id
	s.carts[id] = next
	return next, nil
}

func (s *memCartStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, id)
	return nil
}

func (s *memCartStore) Sessions(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.carts))
	for id := range s.carts {
		out = append(out, id)
	}
	return out, nil
}

type memCatalog struct {
	products  map[string]*entity.Product
	variants  map[string]*entity.ProductVariant
	customers map[string]*entity.Customer
	err       error
}

func (c *memCatalog) Create(context.Context, *entity.Product) error { return nil }
func (c *memCatalog) Update(context.Context, *entity.Product) error { return nil }
func (c *memCatalog) List(context.Context, int, int) ([]*entity.Product, error) {
	return nil, nil
}
func (c *memCatalog) GetByID(_ context.Context, id string) (*entity.Product, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.products[id], nil
}

type memVariants struct{ c *memCatalog }

func (v memVariants) Create(context.Context, *entity.ProductVariant) error { return nil }
func (v memVariants) Update(context.Context, *entity.ProductVariant) error { return nil }
func (v memVariants) ListByProduct(context.Context, string) ([]*entity.ProductVariant, error) {
	return nil, nil
}
func (v memVariants) GetByID(_ context.Context, id string) (*entity.ProductVariant, error) {
	return v.c.variants[id], nil
}

type memCustomers struct{ c *memCatalog }

func (m memCustomers) Create(context.Context, *entity.Customer) error { return nil }
func (m memCustomers) List(context.Context, int, int) ([]*entity.Customer, error) {
	return nil, nil
}
func (m memCustomers) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	return m.c.customers[id], nil
}

// memStock stock en memoria; decrement es condicional como el UPDATE ... WHERE stock >= qty.
type memStock struct {
	mu       sync.Mutex
	products map[string]*int
	variants map[string]*int
	err      error
	reads    int
}

func (s *memStock) ProductStock(_ context.Context, id string) (*int, error) {
	return s.read(s.products, id)
}

func (s *memStock) VariantStock(_ context.Context, id string) (*int, error) {
	return s.read(s.variants, id)
}

func (s *memStock) read(m map[string]*int, id string) (*int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.err != nil {
		return nil, s.err
	}
	v, ok := m[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyPtr(v), nil
}

func (s *memStock) DecrementProduct(_ context.Context, id string, qty int, _ time.Time) (*int, error) {
	return s.decrement(s.products, id, qty)
}

func (s *memStock) DecrementVariant(_ context.Context, id string, qty int, _ time.Time) (*int, error) {
	return s.decrement(s.variants, id, qty)
}

func (s *memStock) decrement(m map[string]*int, id string, qty int) (*int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := m[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if v == nil {
		return nil, nil
	}
	if *v < qty {
		return nil, domain.NewStockError(domain.StockShortage{Requested: qty, Available: *v})
	}
	next := *v - qty
	m[id] = &next
	return copyPtr(&next), nil
}

func (s *memStock) SetProductStock(_ context.Context, id string, v *int, _ time.Time) (*int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	s.products[id] = copyPtr(v)
	return copyPtr(prev), nil
}

func (s *memStock) SetVariantStock(_ context.Context, id string, v *int, _ time.Time) (*int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.variants[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	s.variants[id] = copyPtr(v)
	return copyPtr(prev), nil
}

type memLedger struct {
	transactions map[string]*entity.Transaction
	movements    []*entity.StockMovement
	tabs         map[string]*entity.Tab
}

func newMemLedger() *memLedger {
	return &memLedger{transactions: map[string]*entity.Transaction{}, tabs: map[string]*entity.Tab{}}
}

type memTransactions struct{ l *memLedger }

func (r memTransactions) Create(_ context.Context, t *entity.Transaction) error {
	r.l.transactions[t.ID] = t
	return nil
}

func (r memTransactions) GetByID(_ context.Context, id string) (*entity.Transaction, error) {
	return r.l.transactions[id], nil
}

type memMovements struct{ l *memLedger }

func (r memMovements) Create(_ context.Context, m *entity.StockMovement) error {
	r.l.movements = append(r.l.movements, m)
	return nil
}

func (r memMovements) ListByProduct(context.Context, string, int, int) ([]*entity.StockMovement, error) {
	return r.l.movements, nil
}

type memTabs struct{ l *memLedger }

func (r memTabs) Create(_ context.Context, t *entity.Tab) error {
	r.l.tabs[t.ID] = t
	return nil
}

func (r memTabs) GetByID(_ context.Context, id string) (*entity.Tab, error) {
	return r.l.tabs[id], nil
}

func (r memTabs) ListOpen(context.Context) ([]*entity.Tab, error) {
	var out []*entity.Tab
	for _, t := range r.l.tabs {
		if t.Status == entity.TabOpen {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r memTabs) Close(_ context.Context, id string, at time.Time) error {
	t, ok := r.l.tabs[id]
	if !ok || t.Status != entity.TabOpen {
		return domain.ErrTabClosed
	}
	t.Status = entity.TabClosed
	t.UpdatedAt = at
	return nil
}

// memTx deshace stock y registros si fn falla.
type memTx struct {
	stock  *memStock
	ledger *memLedger
}

func (r memTx) Run(_ context.Context, fn func(repository.TxRepos) error) error {
	products := maps.Clone(r.stock.products)
	variants := maps.Clone(r.stock.variants)
	transactions := maps.Clone(r.ledger.transactions)
	movements := len(r.ledger.movements)

	err := fn(repository.TxRepos{
		Stock:        r.stock,
		Movements:    memMovements{r.ledger},
		Transactions: memTransactions{r.ledger},
		Tabs:         memTabs{r.ledger},
	})
	if err != nil {
		r.stock.products, r.stock.variants = products, variants
		r.ledger.transactions = transactions
		r.ledger.movements = r.ledger.movements[:movements]
	}
	return err
}

type recordingPublisher struct {
	published []*entity.Transaction
	err       error
}

func (p *recordingPublisher) PublishTransactionCompleted(_ context.Context, t *entity.Transaction) error {
	p.published = append(p.published, t)
	return p.err
}

type fakeReceipts struct{}

func (fakeReceipts) RenderReceipt(_ context.Context, t *entity.Transaction, _ *entity.Customer) ([]byte, error) {
	return []byte("%PDF-" + t.ID), nil
}

func copyPtr(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

// fixture arma los casos de uso sobre un catálogo con:
//   - p-mug: taza, 10.00, stock 10, categoría "hogar" (19%)
//   - p-tea: té, 5.00, sin control de inventario, categoría "alimentos" (sin regla, fallback 0)
//   - p-shirt: camiseta con variantes; v-red-l Rojo L a 20.00 con stock 5
type fixture struct {
	store     *memCartStore
	catalog   *memCatalog
	stock     *memStock
	ledger    *memLedger
	publisher *recordingPublisher
	cart      *CartUseCase
	checkout  *CheckoutUseCase
	tabs      *TabUseCase
}

func newFixture() *fixture {
	f := &fixture{
		store: newMemCartStore(),
		catalog: &memCatalog{
			products: map[string]*entity.Product{
				"p-mug":   {ID: "p-mug", Name: "Taza", Price: decimal.RequireFromString("10.00"), Stock: entity.IntPtr(10), Category: "hogar"},
				"p-tea":   {ID: "p-tea", Name: "Té", Price: decimal.RequireFromString("5.00"), Category: "alimentos"},
				"p-shirt": {ID: "p-shirt", Name: "Camiseta", Price: decimal.RequireFromString("18.00"), HasVariants: true, Category: "ropa"},
			},
			variants: map[string]*entity.ProductVariant{
				"v-red-l": {ID: "v-red-l", ProductID: "p-shirt", Price: decimal.RequireFromString("20.00"), StockCount: entity.IntPtr(5), Color: "Rojo", Size: "L"},
			},
			customers: map[string]*entity.Customer{
				"c-ana": {ID: "c-ana", Name: "Ana"},
			},
		},
		stock: &memStock{
			products: map[string]*int{"p-mug": entity.IntPtr(10), "p-tea": nil, "p-shirt": nil},
			variants: map[string]*int{"v-red-l": entity.IntPtr(5)},
		},
		ledger:    newMemLedger(),
		publisher: &recordingPublisher{},
	}
	taxes := TaxSettings{Rules: tax.Rules{"hogar": decimal.RequireFromString("0.19")}, Fallback: decimal.Zero}
	gw := NewStockGateway(f.stock)
	log := zerolog.Nop()
	customers := memCustomers{f.catalog}

	f.cart = NewCartUseCase(f.store, f.catalog, memVariants{f.catalog}, customers, gw, taxes, 3, log)
	f.checkout = NewCheckoutUseCase(f.store, gw, memTx{stock: f.stock, ledger: f.ledger},
		memTransactions{f.ledger}, customers, f.publisher, fakeReceipts{}, taxes, log)
	f.tabs = NewTabUseCase(f.store, memTabs{f.ledger}, customers, gw, taxes, 3, log)
	return f
}
