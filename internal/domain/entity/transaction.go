package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Métodos de pago aceptados.
const (
	PaymentCash     = "cash"
	PaymentCard     = "card"
	PaymentTransfer = "transfer"
)

// PaymentDetails datos del pago capturados en caja.
type PaymentDetails struct {
	Method         string          `json:"method"`
	AmountTendered decimal.Decimal `json:"amount_tendered"`
	Change         decimal.Decimal `json:"change"`
	Reference      string          `json:"reference,omitempty"`
}

// Transaction es la venta registrada. Los montos se congelan en el momento del cobro.
type Transaction struct {
	ID         string
	SessionID  string
	CustomerID string
	UserID     string
	TabID      string
	Subtotal   decimal.Decimal
	Tax        decimal.Decimal
	Total      decimal.Decimal
	Payment    PaymentDetails
	Items      []TransactionItem
	CreatedAt  time.Time
}

// TransactionItem línea vendida.
type TransactionItem struct {
	ID        string
	ProductID string
	VariantID string
	Name      string
	Variant   string
	Category  string
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}
