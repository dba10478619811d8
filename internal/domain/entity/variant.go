package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ProductVariant es una combinación de atributos (color, talla, sabor) con precio y stock propios.
type ProductVariant struct {
	ID         string
	ProductID  string
	Price      decimal.Decimal
	StockCount *int
	SKU        string
	Color      string
	Size       string
	Flavor     string
	Attributes map[string]string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Description une los atributos no vacíos ("Rojo L").
func (v ProductVariant) Description() string {
	return describeVariant(v.Color, v.Size, v.Flavor)
}

func describeVariant(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
