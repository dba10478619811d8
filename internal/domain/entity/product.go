package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un artículo del catálogo del punto de venta.
// Stock nil significa que el producto no lleva control de inventario (ilimitado).
// Con HasVariants el stock vive en cada ProductVariant.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Cost        *decimal.Decimal
	Stock       *int
	SKU         string
	Barcode     string
	ImageURL    string
	Category    string // nombre de categoría, usado por las reglas de impuesto
	CategoryID  string
	HasVariants bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Niveles de stock mostrados al cajero.
const (
	StockOut = "out_of_stock"
	StockLow = "low_stock"
	StockIn  = "in_stock"
)

// StockStatusOf clasifica un nivel de stock; vacío si no hay control de inventario.
func StockStatusOf(stock *int, lowThreshold int) string {
	switch {
	case stock == nil:
		return ""
	case *stock <= 0:
		return StockOut
	case *stock <= lowThreshold:
		return StockLow
	default:
		return StockIn
	}
}

// IntPtr helper para stocks opcionales.
func IntPtr(v int) *int { return &v }
