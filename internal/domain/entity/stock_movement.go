package entity

import "time"

// Tipos de movimiento de inventario.
const (
	MovementSale       = "SALE"
	MovementAdjustment = "ADJUSTMENT"
)

// StockMovement registra cada cambio de stock (venta o ajuste manual).
// Quantity es el delta aplicado: negativo en ventas.
type StockMovement struct {
	ID             string
	ProductID      string
	VariantID      string
	TransactionID  string
	Type           string
	Quantity       int
	ResultingStock *int
	CreatedBy      string
	CreatedAt      time.Time
}
