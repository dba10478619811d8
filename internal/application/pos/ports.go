package pos

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/tax"
)

// EventPublisher publica la venta completada hacia otros sistemas (Kafka).
type EventPublisher interface {
	PublishTransactionCompleted(ctx context.Context, t *entity.Transaction) error
}

// ReceiptRenderer genera el ticket de una venta.
type ReceiptRenderer interface {
	RenderReceipt(ctx context.Context, t *entity.Transaction, customer *entity.Customer) ([]byte, error)
}

// TaxSettings reglas de impuesto vigentes.
type TaxSettings struct {
	Rules    tax.Rules
	Fallback decimal.Decimal
}

// Totals subtotal, impuesto y total de un conjunto de líneas.
func (s TaxSettings) Totals(items []entity.CartItem) (subtotal, taxTotal, total decimal.Decimal) {
	subtotal = subtotalOf(items)
	taxTotal = tax.CalculateTotalTax(items, s.Rules, s.Fallback)
	return subtotal, taxTotal, subtotal.Add(taxTotal)
}

type nopPublisher struct{}

func (nopPublisher) PublishTransactionCompleted(context.Context, *entity.Transaction) error { return nil }

// NopPublisher se usa cuando no hay brokers configurados.
func NopPublisher() EventPublisher { return nopPublisher{} }
