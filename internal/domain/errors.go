package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrVariantNotFound    = errors.New("variante no encontrada")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrEmptyCart          = errors.New("el carrito está vacío")
	ErrBackend            = errors.New("error consultando el inventario")
	ErrTabClosed          = errors.New("la cuenta ya está cerrada")
	ErrCheckoutInProgress = errors.New("el carrito se está cobrando")
)

// StockShortage describe una línea cuya cantidad supera el stock disponible.
type StockShortage struct {
	ProductID string
	VariantID string
	Name      string
	Variant   string // descripción legible de la variante ("Rojo L"), vacía si no aplica
	Requested int
	Available int
}

func (s StockShortage) label() string {
	if s.Variant == "" {
		return s.Name
	}
	return fmt.Sprintf("%s (%s)", s.Name, s.Variant)
}

// StockError agrupa los faltantes detectados; errors.Is(err, ErrInsufficientStock) es verdadero.
type StockError struct {
	Shortages []StockShortage
}

func (e *StockError) Error() string {
	if len(e.Shortages) == 1 {
		s := e.Shortages[0]
		return fmt.Sprintf("No hay stock suficiente para %s. Solo quedan %d.", s.label(), s.Available)
	}
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, fmt.Sprintf("%s: solicitado %d, disponible %d", s.label(), s.Requested, s.Available))
	}
	return "Stock insuficiente para: " + strings.Join(parts, "; ")
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// NewStockError construye un StockError de una sola línea.
func NewStockError(s StockShortage) *StockError {
	return &StockError{Shortages: []StockShortage{s}}
}
