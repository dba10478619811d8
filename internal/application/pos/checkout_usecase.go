package pos

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-inventario/internal/application/dto"
	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/cart"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
)

// CheckoutUseCase cobra el carrito: registra la venta y descuenta el inventario
// en una sola transacción de base de datos.
type CheckoutUseCase struct {
	store        repository.CartStore
	stock        *StockGateway
	tx           repository.TxRunner
	transactions repository.TransactionRepository
	customers    repository.CustomerRepository
	publisher    EventPublisher
	receipts     ReceiptRenderer
	taxes        TaxSettings
	log          zerolog.Logger
	now          func() time.Time
}

// NewCheckoutUseCase construye el caso de uso. publisher nil equivale a NopPublisher.
func NewCheckoutUseCase(
	store repository.CartStore,
	stock *StockGateway,
	tx repository.TxRunner,
	transactions repository.TransactionRepository,
	customers repository.CustomerRepository,
	publisher EventPublisher,
	receipts ReceiptRenderer,
	taxes TaxSettings,
	log zerolog.Logger,
) *CheckoutUseCase {
	if publisher == nil {
		publisher = NopPublisher()
	}
	return &CheckoutUseCase{
		store:        store,
		stock:        stock,
		tx:           tx,
		transactions: transactions,
		customers:    customers,
		publisher:    publisher,
		receipts:     receipts,
		taxes:        taxes,
		log:          log,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// errNotClaimed la marca de cobro ya no es la nuestra; no hay nada que liberar.
var errNotClaimed = errors.New("carrito sin marca de cobro propia")

// ProcessTransaction valida todas las líneas contra el stock vivo y, si alcanza,
// registra la venta, descuenta cada línea y deja un movimiento SALE por línea.
// Antes de tocar la base de datos marca el carrito como "cobrando": un segundo cobro
// concurrente de la misma sesión recibe ErrCheckoutInProgress. Cualquier faltante aborta
// sin escribir nada y el carrito se libera intacto.
func (uc *CheckoutUseCase) ProcessTransaction(ctx context.Context, sessionID, userID string, in dto.CheckoutRequest) (*dto.TransactionResponse, error) {
	claimedAt := uc.now()
	c, err := uc.claim(ctx, sessionID, claimedAt)
	if err != nil {
		return nil, err
	}
	resp, err := uc.sell(ctx, sessionID, userID, c, in)
	if err != nil {
		uc.release(ctx, sessionID, claimedAt)
		return nil, err
	}
	return resp, nil
}

// claim marca el carrito como en cobro en una sola actualización atómica del store.
func (uc *CheckoutUseCase) claim(ctx context.Context, sessionID string, at time.Time) (entity.Cart, error) {
	c, err := uc.store.Update(ctx, sessionID, func(c entity.Cart) (entity.Cart, error) {
		if c.IsEmpty() {
			return c, domain.ErrEmptyCart
		}
		if c.CheckoutPending(at) {
			return c, domain.ErrCheckoutInProgress
		}
		c.CheckoutStartedAt = at
		return c, nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmptyCart) || errors.Is(err, domain.ErrCheckoutInProgress) {
			return entity.Cart{}, err
		}
		return entity.Cart{}, uc.backend(err, "reservar carrito", sessionID)
	}
	return c, nil
}

// release quita la marca de cobro si sigue siendo la nuestra; las líneas no se tocan.
func (uc *CheckoutUseCase) release(ctx context.Context, sessionID string, at time.Time) {
	_, err := uc.store.Update(ctx, sessionID, func(c entity.Cart) (entity.Cart, error) {
		if !c.CheckoutStartedAt.Equal(at) {
			return c, errNotClaimed
		}
		c.CheckoutStartedAt = time.Time{}
		return c, nil
	})
	if err != nil && !errors.Is(err, errNotClaimed) {
		uc.log.Error().Err(err).Str("session_id", sessionID).Msg("no se pudo liberar el carrito tras un cobro fallido")
	}
}

func (uc *CheckoutUseCase) sell(ctx context.Context, sessionID, userID string, c entity.Cart, in dto.CheckoutRequest) (*dto.TransactionResponse, error) {
	if err := uc.validateStock(ctx, c.Items); err != nil {
		return nil, err
	}

	subtotal, taxTotal, total := uc.taxes.Totals(c.Items)
	payment, err := buildPayment(in, total)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	t := &entity.Transaction{
		ID:         uuid.New().String(),
		SessionID:  sessionID,
		CustomerID: c.CustomerID,
		UserID:     userID,
		TabID:      c.TabID,
		Subtotal:   subtotal,
		Tax:        taxTotal,
		Total:      total,
		Payment:    payment,
		Items:      make([]entity.TransactionItem, 0, len(c.Items)),
		CreatedAt:  now,
	}
	for _, it := range c.Items {
		ti := entity.TransactionItem{
			ID:        uuid.New().String(),
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Name:      it.Name,
			Category:  it.Category,
			Quantity:  it.Quantity,
			UnitPrice: it.Price,
			LineTotal: cart.LineTotal(it),
		}
		if it.Variant != nil {
			ti.Variant = it.Variant.Description()
		}
		t.Items = append(t.Items, ti)
	}

	err = uc.tx.Run(ctx, func(repos repository.TxRepos) error {
		if err := repos.Transactions.Create(ctx, t); err != nil {
			return fmt.Errorf("crear venta: %w", err)
		}
		for _, it := range lockOrder(c.Items) {
			remaining, err := decrementLine(ctx, repos.Stock, it, now)
			if err != nil {
				return enrichStockError(err, it)
			}
			m := &entity.StockMovement{
				ID:             uuid.New().String(),
				ProductID:      it.ProductID,
				VariantID:      it.VariantID,
				TransactionID:  t.ID,
				Type:           entity.MovementSale,
				Quantity:       -it.Quantity,
				ResultingStock: remaining,
				CreatedBy:      userID,
				CreatedAt:      now,
			}
			if err := repos.Movements.Create(ctx, m); err != nil {
				return fmt.Errorf("registrar movimiento: %w", err)
			}
		}
		if c.TabID != "" {
			if err := repos.Tabs.Close(ctx, c.TabID, now); err != nil && !errors.Is(err, domain.ErrTabClosed) {
				return fmt.Errorf("cerrar cuenta: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) || errors.Is(err, domain.ErrNotFound) {
			uc.log.Warn().Err(err).Str("session_id", sessionID).Msg("cobro rechazado")
			return nil, err
		}
		return nil, uc.backend(err, "registrar venta", sessionID)
	}

	// la venta ya está confirmada: los fallos siguientes no la revierten
	if _, err := uc.store.Update(ctx, sessionID, func(entity.Cart) (entity.Cart, error) {
		return entity.Cart{SessionID: sessionID, Items: []entity.CartItem{}, InventoryUpdated: true}, nil
	}); err != nil {
		uc.log.Error().Err(err).Str("session_id", sessionID).Msg("no se pudo vaciar el carrito tras la venta")
	}
	if err := uc.publisher.PublishTransactionCompleted(ctx, t); err != nil {
		uc.log.Warn().Err(err).Str("transaction_id", t.ID).Msg("no se pudo publicar la venta")
	}

	uc.log.Info().
		Str("transaction_id", t.ID).
		Str("session_id", sessionID).
		Str("total", t.Total.StringFixed(2)).
		Int("lines", len(t.Items)).
		Msg("venta registrada")
	return toTransactionResponse(t), nil
}

// GetTransaction devuelve la venta registrada.
func (uc *CheckoutUseCase) GetTransaction(ctx context.Context, id string) (*dto.TransactionResponse, error) {
	t, err := uc.transactions.GetByID(ctx, id)
	if err != nil {
		return nil, uc.backend(err, "leer venta", id)
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	return toTransactionResponse(t), nil
}

// RenderReceipt genera el ticket PDF de la venta.
func (uc *CheckoutUseCase) RenderReceipt(ctx context.Context, id string) ([]byte, error) {
	t, err := uc.transactions.GetByID(ctx, id)
	if err != nil {
		return nil, uc.backend(err, "leer venta", id)
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	var customer *entity.Customer
	if t.CustomerID != "" {
		if customer, err = uc.customers.GetByID(ctx, t.CustomerID); err != nil {
			uc.log.Warn().Err(err).Str("customer_id", t.CustomerID).Msg("ticket sin datos del cliente")
			customer = nil
		}
	}
	pdf, err := uc.receipts.RenderReceipt(ctx, t, customer)
	if err != nil {
		return nil, fmt.Errorf("generar ticket: %w", err)
	}
	return pdf, nil
}

// validateStock lee el stock vivo de cada línea y reúne todos los faltantes.
func (uc *CheckoutUseCase) validateStock(ctx context.Context, items []entity.CartItem) error {
	var shortages []domain.StockShortage
	for _, it := range items {
		live, err := uc.stock.LineStock(ctx, it)
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: %s ya no existe", domain.ErrNotFound, it.Name)
		}
		if err != nil {
			return uc.backend(err, "validar stock", it.ProductID)
		}
		if live != nil && it.Quantity > *live {
			shortages = append(shortages, shortageFor(it, it.Quantity, *live))
		}
	}
	if len(shortages) > 0 {
		return &domain.StockError{Shortages: shortages}
	}
	return nil
}

// lockOrder ordena las líneas por identidad: dos cobros con los mismos productos toman
// los bloqueos de fila en el mismo orden y no pueden esperarse mutuamente.
func lockOrder(items []entity.CartItem) []entity.CartItem {
	out := slices.Clone(items)
	slices.SortFunc(out, func(a, b entity.CartItem) int {
		return cmp.Or(cmp.Compare(a.ProductID, b.ProductID), cmp.Compare(a.VariantID, b.VariantID))
	})
	return out
}

func decrementLine(ctx context.Context, stock repository.StockRepository, it entity.CartItem, at time.Time) (*int, error) {
	if it.VariantID != "" {
		return stock.DecrementVariant(ctx, it.VariantID, it.Quantity, at)
	}
	return stock.DecrementProduct(ctx, it.ProductID, it.Quantity, at)
}

// enrichStockError completa nombre y variante del faltante reportado por el repositorio.
func enrichStockError(err error, it entity.CartItem) error {
	var se *domain.StockError
	if !errors.As(err, &se) {
		return err
	}
	out := &domain.StockError{Shortages: make([]domain.StockShortage, 0, len(se.Shortages))}
	for _, s := range se.Shortages {
		out.Shortages = append(out.Shortages, shortageFor(it, s.Requested, s.Available))
	}
	return out
}

// buildPayment congela el pago. En efectivo exige monto recibido >= total y calcula el cambio.
func buildPayment(in dto.CheckoutRequest, total decimal.Decimal) (entity.PaymentDetails, error) {
	p := entity.PaymentDetails{Method: in.Method, Reference: in.Reference, Change: decimal.Zero}
	switch in.Method {
	case entity.PaymentCash:
		if in.AmountTendered == nil {
			return p, fmt.Errorf("%w: monto recibido obligatorio en efectivo", domain.ErrInvalidInput)
		}
		if in.AmountTendered.LessThan(total) {
			return p, fmt.Errorf("%w: monto recibido %s menor al total %s", domain.ErrInvalidInput,
				in.AmountTendered.StringFixed(2), total.StringFixed(2))
		}
		p.AmountTendered = *in.AmountTendered
		p.Change = in.AmountTendered.Sub(total)
	case entity.PaymentCard, entity.PaymentTransfer:
		p.AmountTendered = total
	default:
		return p, fmt.Errorf("%w: método de pago %q", domain.ErrInvalidInput, in.Method)
	}
	return p, nil
}

func (uc *CheckoutUseCase) backend(err error, op, id string) error {
	uc.log.Error().Err(err).Str("op", op).Str("id", id).Msg("error de backend en cobro")
	return fmt.Errorf("%w: %s", domain.ErrBackend, op)
}
