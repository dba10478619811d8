package entity

// Tablas que emiten cambios de stock.
const (
	TableProducts        = "products"
	TableProductVariants = "product_variants"
)

// StockChangeEvent es una notificación de cambio de fila en products o product_variants.
// HasNewStock distingue "stock no informado" de "stock nulo" (sin control de inventario).
type StockChangeEvent struct {
	Table         string `json:"table"`
	Kind          string `json:"event_kind"` // INSERT, UPDATE, DELETE
	ID            string `json:"id"`
	NewStock      *int   `json:"new_stock"`
	HasNewStock   bool   `json:"has_new_stock"`
	PreviousStock *int   `json:"previous_stock,omitempty"`
}

// Applicable indica si el evento trae lo mínimo para reconciliar carritos.
func (e StockChangeEvent) Applicable() bool {
	return e.ID != "" && e.HasNewStock
}
