// Package cart contiene las operaciones puras sobre las líneas de un carrito.
// Ninguna función modifica el slice recibido: siempre devuelven uno nuevo.
package cart

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

// UpdateCartWithNewItem fusiona item con la línea de igual (producto, variante) sumando cantidades
// y conservando su posición; si no existe la agrega al final.
func UpdateCartWithNewItem(items []entity.CartItem, item entity.CartItem) []entity.CartItem {
	out := clone(items)
	for i := range out {
		if out[i].Key() == item.Key() {
			out[i].Quantity += item.Quantity
			return out
		}
	}
	return append(out, item)
}

// CalculateSubtotal suma precio × cantidad de todas las líneas.
func CalculateSubtotal(items []entity.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(LineTotal(it))
	}
	return total
}

// LineTotal precio × cantidad de una línea.
func LineTotal(it entity.CartItem) decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// QuantityOf cantidad ya presente en el carrito para la identidad dada.
func QuantityOf(items []entity.CartItem, key entity.CartItemKey) int {
	for _, it := range items {
		if it.Key() == key {
			return it.Quantity
		}
	}
	return 0
}

// SetQuantity fija la cantidad de la línea index. Cantidades <= 0 eliminan la línea.
func SetQuantity(items []entity.CartItem, index, qty int) ([]entity.CartItem, error) {
	if err := checkIndex(items, index); err != nil {
		return nil, err
	}
	if qty <= 0 {
		return RemoveAt(items, index)
	}
	out := clone(items)
	out[index].Quantity = qty
	return out, nil
}

// RemoveAt elimina la línea index.
func RemoveAt(items []entity.CartItem, index int) ([]entity.CartItem, error) {
	if err := checkIndex(items, index); err != nil {
		return nil, err
	}
	out := make([]entity.CartItem, 0, len(items)-1)
	out = append(out, items[:index]...)
	return append(out, items[index+1:]...), nil
}

// ApplyStockChange actualiza el stock mostrado en las líneas afectadas por ev.
// Un evento de producto toca solo líneas sin variante; uno de variante, solo las ligadas a ella.
// Nunca cambia cantidades ni elimina líneas. changed es false si ninguna línea coincide.
func ApplyStockChange(items []entity.CartItem, ev entity.StockChangeEvent) (out []entity.CartItem, changed bool) {
	if !ev.Applicable() {
		return items, false
	}
	out = clone(items)
	for i := range out {
		it := &out[i]
		switch ev.Table {
		case entity.TableProducts:
			if it.ProductID == ev.ID && it.VariantID == "" {
				it.Stock = copyInt(ev.NewStock)
				changed = true
			}
		case entity.TableProductVariants:
			if it.VariantID == ev.ID && it.Variant != nil {
				v := *it.Variant
				v.StockCount = copyInt(ev.NewStock)
				it.Variant = &v
				changed = true
			}
		}
	}
	if !changed {
		return items, false
	}
	return out, true
}

func checkIndex(items []entity.CartItem, index int) error {
	if index < 0 || index >= len(items) {
		return fmt.Errorf("%w: línea %d fuera de rango", domain.ErrInvalidInput, index)
	}
	return nil
}

func clone(items []entity.CartItem) []entity.CartItem {
	out := make([]entity.CartItem, len(items), len(items)+1)
	copy(out, items)
	return out
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
