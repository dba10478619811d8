package entity

import "time"

// Estados de una cuenta abierta.
const (
	TabOpen   = "open"
	TabClosed = "closed"
)

// Tab es una cuenta guardada para cobrar más tarde (mesa, cliente frecuente).
type Tab struct {
	ID         string
	Name       string
	CustomerID string
	Items      []CartItem
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
