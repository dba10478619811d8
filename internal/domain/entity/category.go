package entity

import "time"

// Category agrupa productos; su nombre se copia en Product.Category para las reglas de impuesto.
type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
