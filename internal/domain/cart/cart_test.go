package cart_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/cart"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

func item(productID, variantID string, price string, qty int) entity.CartItem {
	return entity.CartItem{
		ProductID: productID,
		VariantID: variantID,
		Name:      "item " + productID,
		Price:     decimal.RequireFromString(price),
		Quantity:  qty,
	}
}

func TestUpdateCartWithNewItem_MergesInPlace(t *testing.T) {
	items := []entity.CartItem{item("A", "", "1.00", 1), item("B", "", "2.00", 1), item("C", "", "3.00", 1)}

	got := cart.UpdateCartWithNewItem(items, item("B", "", "2.00", 2))

	require.Len(t, got, 3)
	assert.Equal(t, "B", got[1].ProductID, "la línea fusionada conserva su posición")
	assert.Equal(t, 3, got[1].Quantity)
	assert.Equal(t, 1, items[1].Quantity, "el slice original no debe mutar")
}

func TestUpdateCartWithNewItem_DistinctVariantsAppend(t *testing.T) {
	items := []entity.CartItem{item("P", "V1", "5.00", 1)}

	got := cart.UpdateCartWithNewItem(items, item("P", "V2", "5.00", 1))

	require.Len(t, got, 2)
	assert.Equal(t, "V2", got[1].VariantID)
	assert.Len(t, items, 1)
}

func TestCalculateSubtotal(t *testing.T) {
	items := []entity.CartItem{item("A", "", "10.00", 2), item("B", "", "0.10", 3)}
	assert.True(t, decimal.RequireFromString("20.30").Equal(cart.CalculateSubtotal(items)))
	assert.True(t, cart.CalculateSubtotal(nil).IsZero())
}

func TestCalculateSubtotal_IndependienteDelOrden(t *testing.T) {
	items := []entity.CartItem{
		item("A", "", "19.99", 3),
		item("B", "", "0.01", 7),
		item("C", "", "1234.56", 1),
		item("D", "", "0.33", 9),
	}
	want := cart.CalculateSubtotal(items)
	assert.Equal(t, "1297.57", want.StringFixed(2))

	seen := 0
	permute(items, 0, func(p []entity.CartItem) {
		seen++
		got := cart.CalculateSubtotal(p)
		assert.True(t, want.Equal(got), "orden %v: %s != %s", ids(p), got, want)
	})
	assert.Equal(t, 24, seen)
}

func TestCalculateSubtotal_SinDerivaEnCarritosGrandes(t *testing.T) {
	lines := make([]entity.CartItem, 1000)
	for i := range lines {
		lines[i] = item(fmt.Sprintf("P%04d", i), "", "0.10", 1)
	}
	assert.Equal(t, "100.00", cart.CalculateSubtotal(lines).StringFixed(2))
	assert.True(t, decimal.NewFromInt(100).Equal(cart.CalculateSubtotal(lines)))

	single := []entity.CartItem{item("A", "", "0.10", 1000)}
	assert.True(t, decimal.NewFromInt(100).Equal(cart.CalculateSubtotal(single)))
}

func TestCheckoutPending(t *testing.T) {
	now := time.Now().UTC()
	assert.False(t, entity.Cart{}.CheckoutPending(now))
	assert.True(t, entity.Cart{CheckoutStartedAt: now.Add(-time.Second)}.CheckoutPending(now))
	assert.False(t, entity.Cart{CheckoutStartedAt: now.Add(-entity.CheckoutClaimTTL)}.CheckoutPending(now),
		"una marca vencida no bloquea el carrito")
}

// permute recorre todas las permutaciones de items (intercambios sobre copias).
func permute(items []entity.CartItem, k int, visit func([]entity.CartItem)) {
	if k == len(items) {
		visit(items)
		return
	}
	for i := k; i < len(items); i++ {
		p := append([]entity.CartItem(nil), items...)
		p[k], p[i] = p[i], p[k]
		permute(p, k+1, visit)
	}
}

func ids(items []entity.CartItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ProductID
	}
	return out
}

func TestSetQuantity(t *testing.T) {
	items := []entity.CartItem{item("A", "", "1.00", 1), item("B", "", "1.00", 4)}

	got, err := cart.SetQuantity(items, 1, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, got[1].Quantity)
	assert.Equal(t, 4, items[1].Quantity)

	got, err = cart.SetQuantity(items, 0, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "B", got[0].ProductID)

	_, err = cart.SetQuantity(items, 5, 1)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestRemoveAt(t *testing.T) {
	items := []entity.CartItem{item("A", "", "1.00", 1), item("B", "", "1.00", 1), item("C", "", "1.00", 1)}

	got, err := cart.RemoveAt(items, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, []string{got[0].ProductID, got[1].ProductID})
	assert.Len(t, items, 3)

	_, err = cart.RemoveAt(items, -1)
	assert.Error(t, err)
}

func TestApplyStockChange_VariantEvent(t *testing.T) {
	withVariant := item("P", "V", "9.00", 3)
	withVariant.Variant = &entity.CartVariant{ID: "V", StockCount: entity.IntPtr(5)}
	plain := item("P", "", "8.00", 1)
	plain.Stock = entity.IntPtr(10)
	items := []entity.CartItem{plain, withVariant}

	got, changed := cart.ApplyStockChange(items, entity.StockChangeEvent{
		Table: entity.TableProductVariants, Kind: "UPDATE", ID: "V", NewStock: entity.IntPtr(2), HasNewStock: true,
	})

	require.True(t, changed)
	assert.Equal(t, 2, *got[1].Variant.StockCount)
	assert.Equal(t, 3, got[1].Quantity, "la cantidad no cambia")
	assert.Equal(t, 10, *got[0].Stock, "la línea del producto base no se toca")
	assert.Equal(t, 5, *items[1].Variant.StockCount, "el original no muta")
}

func TestApplyStockChange_ProductEventSkipsVariantLines(t *testing.T) {
	withVariant := item("P", "V", "9.00", 1)
	withVariant.Variant = &entity.CartVariant{ID: "V", StockCount: entity.IntPtr(5)}
	withVariant.Stock = entity.IntPtr(1)
	items := []entity.CartItem{withVariant}

	_, changed := cart.ApplyStockChange(items, entity.StockChangeEvent{
		Table: entity.TableProducts, ID: "P", NewStock: entity.IntPtr(0), HasNewStock: true,
	})
	assert.False(t, changed)
}

func TestApplyStockChange_IgnoresIncompleteEvents(t *testing.T) {
	plain := item("P", "", "8.00", 1)
	plain.Stock = entity.IntPtr(10)
	items := []entity.CartItem{plain}

	_, changed := cart.ApplyStockChange(items, entity.StockChangeEvent{Table: entity.TableProducts, ID: "", HasNewStock: true})
	assert.False(t, changed)

	_, changed = cart.ApplyStockChange(items, entity.StockChangeEvent{Table: entity.TableProducts, ID: "P"})
	assert.False(t, changed)
	assert.Equal(t, 10, *items[0].Stock)
}

func TestApplyStockChange_NullStockMeansUntracked(t *testing.T) {
	plain := item("P", "", "8.00", 1)
	plain.Stock = entity.IntPtr(3)

	got, changed := cart.ApplyStockChange([]entity.CartItem{plain}, entity.StockChangeEvent{
		Table: entity.TableProducts, ID: "P", NewStock: nil, HasNewStock: true,
	})
	require.True(t, changed)
	assert.Nil(t, got[0].Stock)
}
