package pos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/pos-inventario/internal/application/dto"
	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
)

// TabUseCase cuentas abiertas: guardar el carrito para cobrarlo después.
type TabUseCase struct {
	store     repository.CartStore
	tabs      repository.TabRepository
	customers repository.CustomerRepository
	stock     *StockGateway
	taxes     TaxSettings
	lowStock  int
	log       zerolog.Logger
	now       func() time.Time
}

func NewTabUseCase(
	store repository.CartStore,
	tabs repository.TabRepository,
	customers repository.CustomerRepository,
	stock *StockGateway,
	taxes TaxSettings,
	lowStock int,
	log zerolog.Logger,
) *TabUseCase {
	return &TabUseCase{
		store:     store,
		tabs:      tabs,
		customers: customers,
		stock:     stock,
		taxes:     taxes,
		lowStock:  lowStock,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SaveAsTab guarda el carrito de la sesión como cuenta abierta y libera la caja.
// Si el carrito venía de otra cuenta, esa cuenta se cierra (la reemplaza la nueva).
func (uc *TabUseCase) SaveAsTab(ctx context.Context, sessionID string, in dto.SaveTabRequest) (*dto.TabResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: el nombre de la cuenta es obligatorio", domain.ErrInvalidInput)
	}
	c, err := uc.store.Get(ctx, sessionID)
	if err != nil {
		return nil, uc.backend(err, "leer carrito", sessionID)
	}
	if c.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}
	now := uc.now()
	if c.CheckoutPending(now) {
		return nil, domain.ErrCheckoutInProgress
	}

	tab := &entity.Tab{
		ID:         uuid.New().String(),
		Name:       name,
		CustomerID: c.CustomerID,
		Items:      c.Items,
		Status:     entity.TabOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.tabs.Create(ctx, tab); err != nil {
		return nil, uc.backend(err, "crear cuenta", sessionID)
	}
	if c.TabID != "" {
		if err := uc.tabs.Close(ctx, c.TabID, now); err != nil && !errors.Is(err, domain.ErrTabClosed) {
			uc.log.Warn().Err(err).Str("tab_id", c.TabID).Msg("no se pudo cerrar la cuenta anterior")
		}
	}
	if err := uc.store.Delete(ctx, sessionID); err != nil {
		uc.log.Error().Err(err).Str("session_id", sessionID).Msg("no se pudo liberar el carrito")
	}

	resp := toTabResponse(tab)
	return &resp, nil
}

// ListOpen cuentas abiertas, más recientes primero.
func (uc *TabUseCase) ListOpen(ctx context.Context) ([]dto.TabResponse, error) {
	tabs, err := uc.tabs.ListOpen(ctx)
	if err != nil {
		return nil, uc.backend(err, "listar cuentas", "")
	}
	out := make([]dto.TabResponse, 0, len(tabs))
	for _, t := range tabs {
		out = append(out, toTabResponse(t))
	}
	return out, nil
}

// LoadTab carga la cuenta en el carrito de la sesión, reemplazando su contenido.
// La cuenta sigue abierta hasta que se cobre o se vuelva a guardar.
func (uc *TabUseCase) LoadTab(ctx context.Context, sessionID, tabID string) (*dto.CartResponse, error) {
	tab, err := uc.tabs.GetByID(ctx, tabID)
	if err != nil {
		return nil, uc.backend(err, "leer cuenta", tabID)
	}
	if tab == nil {
		return nil, domain.ErrNotFound
	}
	if tab.Status != entity.TabOpen {
		return nil, domain.ErrTabClosed
	}

	customerID := ""
	if tab.CustomerID != "" {
		customer, err := uc.customers.GetByID(ctx, tab.CustomerID)
		switch {
		case err != nil:
			uc.log.Warn().Err(err).Str("customer_id", tab.CustomerID).Msg("cliente de la cuenta no disponible")
		case customer != nil:
			customerID = customer.ID
		}
	}

	items := make([]entity.CartItem, len(tab.Items))
	for i, it := range tab.Items {
		live, err := uc.stock.LineStock(ctx, it)
		if err != nil {
			// se conserva el último stock conocido; el cobro vuelve a validar
			uc.log.Warn().Err(err).Str("product_id", it.ProductID).Msg("stock no disponible al cargar cuenta")
			items[i] = it
			continue
		}
		items[i] = withLiveStock(it, live)
	}

	updated, err := uc.store.Update(ctx, sessionID, func(c entity.Cart) (entity.Cart, error) {
		if c.CheckoutPending(uc.now()) {
			return c, domain.ErrCheckoutInProgress
		}
		return entity.Cart{
			SessionID:  sessionID,
			Items:      items,
			CustomerID: customerID,
			TabID:      tab.ID,
		}, nil
	})
	if errors.Is(err, domain.ErrCheckoutInProgress) {
		return nil, err
	}
	if err != nil {
		return nil, uc.backend(err, "cargar cuenta", sessionID)
	}
	return toCartResponse(updated, uc.taxes, uc.lowStock), nil
}

func (uc *TabUseCase) backend(err error, op, id string) error {
	uc.log.Error().Err(err).Str("op", op).Str("id", id).Msg("error de backend en cuentas")
	return fmt.Errorf("%w: %s", domain.ErrBackend, op)
}
