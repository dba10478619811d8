package pos

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-inventario/internal/application/dto"
	"github.com/jhoicas/pos-inventario/internal/domain/cart"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

func subtotalOf(items []entity.CartItem) decimal.Decimal {
	return cart.CalculateSubtotal(items)
}

func toCartResponse(c entity.Cart, taxes TaxSettings, lowStock int) *dto.CartResponse {
	subtotal, taxTotal, total := taxes.Totals(c.Items)
	resp := &dto.CartResponse{
		SessionID:        c.SessionID,
		CustomerID:       c.CustomerID,
		TabID:            c.TabID,
		Items:            make([]dto.CartItemResponse, 0, len(c.Items)),
		Subtotal:         subtotal,
		Tax:              taxTotal,
		Total:            total,
		InventoryUpdated: c.InventoryUpdated,
		UpdatedAt:        c.UpdatedAt,
	}
	for i, it := range c.Items {
		stock := it.AvailableStock()
		line := dto.CartItemResponse{
			Index:       i,
			ProductID:   it.ProductID,
			VariantID:   it.VariantID,
			Name:        it.Name,
			Category:    it.Category,
			Price:       it.Price,
			Quantity:    it.Quantity,
			LineTotal:   cart.LineTotal(it),
			Stock:       stock,
			StockStatus: entity.StockStatusOf(stock, lowStock),
		}
		if it.Variant != nil {
			line.Variant = it.Variant.Description()
		}
		resp.Items = append(resp.Items, line)
	}
	return resp
}

func toTransactionResponse(t *entity.Transaction) *dto.TransactionResponse {
	resp := &dto.TransactionResponse{
		ID:             t.ID,
		SessionID:      t.SessionID,
		CustomerID:     t.CustomerID,
		TabID:          t.TabID,
		Subtotal:       t.Subtotal,
		Tax:            t.Tax,
		Total:          t.Total,
		PaymentMethod:  t.Payment.Method,
		AmountTendered: t.Payment.AmountTendered,
		Change:         t.Payment.Change,
		Items:          make([]dto.TransactionItemResponse, 0, len(t.Items)),
		CreatedAt:      t.CreatedAt,
	}
	for _, it := range t.Items {
		resp.Items = append(resp.Items, dto.TransactionItemResponse{
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Name:      it.Name,
			Variant:   it.Variant,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: it.LineTotal,
		})
	}
	return resp
}

func toTabResponse(t *entity.Tab) dto.TabResponse {
	count := 0
	for _, it := range t.Items {
		count += it.Quantity
	}
	return dto.TabResponse{
		ID:         t.ID,
		Name:       t.Name,
		CustomerID: t.CustomerID,
		Status:     t.Status,
		ItemCount:  count,
		Subtotal:   subtotalOf(t.Items),
		CreatedAt:  t.CreatedAt,
	}
}
