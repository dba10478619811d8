package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AddToCartRequest agrega un producto (o variante) al carrito. Quantity por defecto 1.
type AddToCartRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

// UpdateQuantityRequest fija la cantidad de una línea; <= 0 la elimina.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// SetCustomerRequest asocia (o con vacío, desasocia) un cliente al carrito.
type SetCustomerRequest struct {
	CustomerID string `json:"customer_id"`
}

// CartItemResponse línea del carrito con su stock conocido.
type CartItemResponse struct {
	Index       int             `json:"index"`
	ProductID   string          `json:"product_id"`
	VariantID   string          `json:"variant_id,omitempty"`
	Name        string          `json:"name"`
	Variant     string          `json:"variant,omitempty"`
	Category    string          `json:"category,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
	Stock       *int            `json:"stock"`
	StockStatus string          `json:"stock_status,omitempty"`
}

// CartResponse carrito con totales calculados al vuelo.
type CartResponse struct {
	SessionID        string             `json:"session_id"`
	CustomerID       string             `json:"customer_id,omitempty"`
	TabID            string             `json:"tab_id,omitempty"`
	Items            []CartItemResponse `json:"items"`
	Subtotal         decimal.Decimal    `json:"subtotal"`
	Tax              decimal.Decimal    `json:"tax"`
	Total            decimal.Decimal    `json:"total"`
	InventoryUpdated bool               `json:"inventory_updated"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// CheckoutRequest datos de pago.
type CheckoutRequest struct {
	Method         string           `json:"method" validate:"required,oneof=cash card transfer"`
	AmountTendered *decimal.Decimal `json:"amount_tendered"`
	Reference      string           `json:"reference"`
}

// TransactionItemResponse línea vendida.
type TransactionItemResponse struct {
	ProductID string          `json:"product_id"`
	VariantID string          `json:"variant_id,omitempty"`
	Name      string          `json:"name"`
	Variant   string          `json:"variant,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// TransactionResponse venta registrada.
type TransactionResponse struct {
	ID             string                    `json:"id"`
	SessionID      string                    `json:"session_id"`
	CustomerID     string                    `json:"customer_id,omitempty"`
	TabID          string                    `json:"tab_id,omitempty"`
	Subtotal       decimal.Decimal           `json:"subtotal"`
	Tax            decimal.Decimal           `json:"tax"`
	Total          decimal.Decimal           `json:"total"`
	PaymentMethod  string                    `json:"payment_method"`
	AmountTendered decimal.Decimal           `json:"amount_tendered"`
	Change         decimal.Decimal           `json:"change"`
	Items          []TransactionItemResponse `json:"items"`
	CreatedAt      time.Time                 `json:"created_at"`
}

// SaveTabRequest guarda el carrito como cuenta abierta.
type SaveTabRequest struct {
	Name string `json:"name" validate:"required"`
}

// TabResponse cuenta abierta.
type TabResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	CustomerID string          `json:"customer_id,omitempty"`
	Status     string          `json:"status"`
	ItemCount  int             `json:"item_count"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	CreatedAt  time.Time       `json:"created_at"`
}
