package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartVariant es la copia de la variante guardada en la línea del carrito.
// StockCount se mantiene al día con los cambios en tiempo real.
type CartVariant struct {
	ID         string            `json:"id"`
	Price      decimal.Decimal   `json:"price"`
	StockCount *int              `json:"stock_count"`
	SKU        string            `json:"sku,omitempty"`
	Color      string            `json:"color,omitempty"`
	Size       string            `json:"size,omitempty"`
	Flavor     string            `json:"flavor,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Description une los atributos no vacíos de la variante.
func (v CartVariant) Description() string {
	return describeVariant(v.Color, v.Size, v.Flavor)
}

// NewCartVariant copia la variante de catálogo.
func NewCartVariant(v ProductVariant) *CartVariant {
	return &CartVariant{
		ID:         v.ID,
		Price:      v.Price,
		StockCount: v.StockCount,
		SKU:        v.SKU,
		Color:      v.Color,
		Size:       v.Size,
		Flavor:     v.Flavor,
		Attributes: v.Attributes,
	}
}

// CartItem es una línea del carrito. La identidad es (ProductID, VariantID).
// Price ya es el precio efectivo: el de la variante si existe, si no el del producto.
type CartItem struct {
	ProductID string          `json:"product_id"`
	VariantID string          `json:"variant_id,omitempty"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Category  string          `json:"category,omitempty"`
	Stock     *int            `json:"stock"`
	Variant   *CartVariant    `json:"variant,omitempty"`
}

// CartItemKey identifica una línea del carrito.
type CartItemKey struct {
	ProductID string
	VariantID string
}

func (i CartItem) Key() CartItemKey {
	return CartItemKey{ProductID: i.ProductID, VariantID: i.VariantID}
}

// AvailableStock es el stock que limita la línea: el de la variante si está ligada a una.
func (i CartItem) AvailableStock() *int {
	if i.VariantID != "" && i.Variant != nil {
		return i.Variant.StockCount
	}
	if i.VariantID != "" {
		return nil
	}
	return i.Stock
}

// Cart es la sesión de venta abierta en una caja.
// CheckoutStartedAt marca el cobro en curso; mientras está vigente el carrito no admite cambios.
type Cart struct {
	SessionID         string     `json:"session_id"`
	Items             []CartItem `json:"items"`
	CustomerID        string     `json:"customer_id,omitempty"`
	TabID             string     `json:"tab_id,omitempty"`
	InventoryUpdated  bool       `json:"inventory_updated"`
	CheckoutStartedAt time.Time  `json:"checkout_started_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// CheckoutClaimTTL vigencia de la marca de cobro; pasado ese tiempo (proceso caído) se puede volver a cobrar.
const CheckoutClaimTTL = 2 * time.Minute

// CheckoutPending indica si hay un cobro en curso sobre el carrito.
func (c Cart) CheckoutPending(now time.Time) bool {
	return !c.CheckoutStartedAt.IsZero() && now.Sub(c.CheckoutStartedAt) < CheckoutClaimTTL
}

// IsEmpty indica si el carrito no tiene líneas.
func (c Cart) IsEmpty() bool { return len(c.Items) == 0 }
