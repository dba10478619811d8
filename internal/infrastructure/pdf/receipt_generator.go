// Package pdf genera el ticket de venta en PDF.
//
// Layout del ticket (80 mm de ancho):
//
//	┌──────────────────────────────┐
//	│  Tienda + N° ticket + fecha  │
//	│  Cliente (si hay)            │
//	│  ──────────────────────────  │
//	│  Cant | Producto | Importe   │
//	│  ──────────────────────────  │
//	│  Subtotal / Impuestos / TOTAL│
//	│  Pago / Cambio               │
//	└──────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var paymentLabels = map[string]string{
	entity.PaymentCash:     "Efectivo",
	entity.PaymentCard:     "Tarjeta",
	entity.PaymentTransfer: "Transferencia",
}

// ReceiptGenerator genera tickets con Maroto v2.
type ReceiptGenerator struct {
	storeName string
}

// NewReceiptGenerator construye el generador con el nombre que encabeza el ticket.
func NewReceiptGenerator(storeName string) *ReceiptGenerator {
	return &ReceiptGenerator{storeName: storeName}
}

// RenderReceipt genera el PDF de la venta; customer puede ser nil.
func (g *ReceiptGenerator) RenderReceipt(_ context.Context, tx *entity.Transaction, customer *entity.Customer) ([]byte, error) {
	cfg := config.NewBuilder().
		WithDimensions(80, 297).
		WithLeftMargin(4).WithRightMargin(4).
		WithTopMargin(4).WithBottomMargin(4).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 7}).
		WithTitle("Ticket "+shortID(tx.ID), true).
		WithAuthor(g.storeName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.storeName, tx))
	if customer != nil {
		m.AddRows(row.New(5).Add(col.New(12).Add(
			text.New("Cliente: "+customer.Name, props.Text{Size: 7, Top: 1}),
		)))
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(itemRows(tx.Items)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRows(tx)...)
	m.AddRows(row.New(8).Add(col.New(12).Add(
		text.New("¡Gracias por su compra!", props.Text{Size: 7, Align: align.Center, Top: 3, Color: colorGray}),
	)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar ticket: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(storeName string, tx *entity.Transaction) core.Row {
	return row.New(16).Add(col.New(12).Add(
		text.New(storeName, props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Center, Color: colorPrimary}),
		text.New("Ticket "+shortID(tx.ID), props.Text{Size: 7, Align: align.Center, Top: 6}),
		text.New(tx.CreatedAt.Format("02/01/2006 15:04"), props.Text{Size: 7, Align: align.Center, Top: 10, Color: colorGray}),
	))
}

func itemRows(items []entity.TransactionItem) []core.Row {
	rows := []core.Row{row.New(5).Add(
		col.New(2).Add(text.New("Cant.", props.Text{Style: fontstyle.Bold, Size: 6.5})),
		col.New(6).Add(text.New("Producto", props.Text{Style: fontstyle.Bold, Size: 6.5})),
		col.New(4).Add(text.New("Importe", props.Text{Style: fontstyle.Bold, Size: 6.5, Align: align.Right})),
	)}
	for _, it := range items {
		name := it.Name
		if it.Variant != "" {
			name += " (" + it.Variant + ")"
		}
		rows = append(rows, row.New(5).Add(
			col.New(2).Add(text.New(fmt.Sprintf("%d", it.Quantity), props.Text{Size: 7})),
			col.New(6).Add(text.New(name, props.Text{Size: 7})),
			col.New(4).Add(text.New(formatMoney(it.LineTotal), props.Text{Size: 7, Align: align.Right})),
		))
	}
	return rows
}

func totalsRows(tx *entity.Transaction) []core.Row {
	pair := func(label, value string, bold bool) core.Row {
		p := props.Text{Size: 7, Align: align.Right}
		if bold {
			p.Style = fontstyle.Bold
			p.Size = 9
			p.Color = colorPrimary
		}
		l := p
		l.Align = align.Left
		return row.New(5).Add(
			col.New(6).Add(text.New(label, l)),
			col.New(6).Add(text.New(value, p)),
		)
	}
	rows := []core.Row{
		pair("Subtotal", formatMoney(tx.Subtotal), false),
		pair("Impuestos", formatMoney(tx.Tax), false),
		pair("TOTAL", formatMoney(tx.Total), true),
		pair("Pago", nonEmpty(paymentLabels[tx.Payment.Method], tx.Payment.Method), false),
	}
	if tx.Payment.Method == entity.PaymentCash {
		rows = append(rows,
			pair("Recibido", formatMoney(tx.Payment.AmountTendered), false),
			pair("Cambio", formatMoney(tx.Payment.Change), false),
		)
	}
	return rows
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func shortID(id string) string {
	if len(id) > 8 {
		return strings.ToUpper(id[:8])
	}
	return strings.ToUpper(id)
}

// formatMoney formato local con puntos de miles y coma decimal.
// Ej: 1234567.5 → "$1.234.567,50"
func formatMoney(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	intPart, frac, _ := strings.Cut(d.StringFixed(2), ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + "$" + string(buf) + "," + frac
}
