package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductInput datos del formulario de producto (alta y edición).
// Price es obligatorio; Stock nil deja el producto sin control de inventario.
type ProductInput struct {
	Name        string           `json:"name" validate:"required,min=1,max=200"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	Description string           `json:"description"`
	Cost        *decimal.Decimal `json:"cost"`
	Stock       *int             `json:"stock"`
	SKU         string           `json:"sku"`
	Barcode     string           `json:"barcode"`
	ImageURL    string           `json:"image_url"`
	Category    string           `json:"category"`
	CategoryID  string           `json:"category_id"`
	HasVariants *bool            `json:"has_variants"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Price       decimal.Decimal   `json:"price"`
	Cost        *decimal.Decimal  `json:"cost"`
	Stock       *int              `json:"stock"`
	StockStatus string            `json:"stock_status,omitempty"`
	SKU         string            `json:"sku,omitempty"`
	Barcode     string            `json:"barcode,omitempty"`
	ImageURL    string            `json:"image_url,omitempty"`
	Category    string            `json:"category,omitempty"`
	CategoryID  string            `json:"category_id,omitempty"`
	HasVariants bool              `json:"has_variants"`
	Variants    []VariantResponse `json:"variants,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// VariantInput datos de una variante. ProductID puede omitirse en edición.
type VariantInput struct {
	ProductID  string            `json:"product_id"`
	Price      *decimal.Decimal  `json:"price"`
	StockCount *int              `json:"stock_count"`
	SKU        string            `json:"sku"`
	Color      string            `json:"color"`
	Size       string            `json:"size"`
	Flavor     string            `json:"flavor"`
	Attributes map[string]string `json:"variant_attributes"`
}

// VariantResponse salida de una variante.
type VariantResponse struct {
	ID          string            `json:"id"`
	ProductID   string            `json:"product_id"`
	Price       decimal.Decimal   `json:"price"`
	StockCount  *int              `json:"stock_count"`
	StockStatus string            `json:"stock_status,omitempty"`
	SKU         string            `json:"sku,omitempty"`
	Color       string            `json:"color,omitempty"`
	Size        string            `json:"size,omitempty"`
	Flavor      string            `json:"flavor,omitempty"`
	Description string            `json:"description,omitempty"`
	Attributes  map[string]string `json:"variant_attributes"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// StockAdjustRequest fija el stock absoluto (null = sin control de inventario).
type StockAdjustRequest struct {
	Stock *int `json:"stock"`
}

// StockMovementResponse movimiento del historial de stock.
type StockMovementResponse struct {
	ID             string    `json:"id"`
	ProductID      string    `json:"product_id"`
	VariantID      string    `json:"variant_id,omitempty"`
	TransactionID  string    `json:"transaction_id,omitempty"`
	Type           string    `json:"type"`
	Quantity       int       `json:"quantity"`
	ResultingStock *int      `json:"resulting_stock"`
	CreatedAt      time.Time `json:"created_at"`
}

// CategoryRequest alta de categoría.
type CategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

// CategoryResponse salida de categoría.
type CategoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
