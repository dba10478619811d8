// Package tax resuelve tasas de impuesto por categoría y calcula el impuesto de un carrito.
//
// Política de redondeo: cada línea se redondea a 2 decimales (mitad hacia arriba, alejándose de cero)
// y el total es la suma de las líneas redondeadas.
package tax

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

// Places decimales del impuesto por línea.
const Places = 2

var hundred = decimal.NewFromInt(100)

// RawRule regla tal como llega de la configuración. Rate acepta fracción (0.19) o porcentaje (19).
type RawRule struct {
	Category string
	Rate     string
}

// Rules tabla de tasas por categoría (clave normalizada en minúsculas).
type Rules map[string]decimal.Decimal

// NormalizeRate convierte porcentajes (> 1) en fracción; negativos se tratan como 0.
func NormalizeRate(rate decimal.Decimal) decimal.Decimal {
	if rate.IsNegative() {
		return decimal.Zero
	}
	if rate.GreaterThan(decimal.NewFromInt(1)) {
		return rate.Div(hundred)
	}
	return rate
}

// FormatTaxRulesFromSettings normaliza las reglas configuradas.
// Reglas sin categoría o con tasa ilegible se reemplazan por fallback.
func FormatTaxRulesFromSettings(raw []RawRule, fallback decimal.Decimal) Rules {
	rules := make(Rules, len(raw))
	for _, r := range raw {
		key := normalizeCategory(r.Category)
		if key == "" {
			continue
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(strings.TrimSuffix(r.Rate, "%")))
		if err != nil {
			rate = fallback
		}
		rules[key] = NormalizeRate(rate)
	}
	return rules
}

// RateFor tasa aplicable a la categoría, fallback si no hay regla.
func (r Rules) RateFor(category string, fallback decimal.Decimal) decimal.Decimal {
	if rate, ok := r[normalizeCategory(category)]; ok {
		return rate
	}
	return NormalizeRate(fallback)
}

// LineTax impuesto de una línea, redondeado.
func LineTax(it entity.CartItem, rules Rules, fallback decimal.Decimal) decimal.Decimal {
	base := it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
	return base.Mul(rules.RateFor(it.Category, fallback)).Round(Places)
}

// CalculateTotalTax suma el impuesto redondeado de cada línea.
func CalculateTotalTax(items []entity.CartItem, rules Rules, fallback decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(LineTax(it, rules, fallback))
	}
	return total
}

func normalizeCategory(c string) string {
	return strings.ToLower(strings.TrimSpace(c))
}
