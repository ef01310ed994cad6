// Package pdf implementa el comprobante interno de venta en formato de
// rollo térmico de 80mm.
//
// Layout del ticket:
//
//	┌──────────────────────────────┐
//	│   NOMBRE DEL NEGOCIO         │
//	│   Sucursal + fecha + cajero  │
//	│  ──────────────────────────  │
//	│  Cant | Producto | Total     │
//	│  ──────────────────────────  │
//	│  Subtotal / Descuento        │
//	│  TOTAL                       │
//	│  Medio de pago               │
//	│  ──────────────────────────  │
//	│  Leyenda interna + gracias   │
//	└──────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

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

	"github.com/jhoicas/cajapos/internal/application/receipt"
	"github.com/jhoicas/cajapos/internal/domain/entity"
)

// Impresión térmica: solo negro y un gris para texto secundario.
var colorGray = &props.Color{Red: 90, Green: 90, Blue: 90}

var _ receipt.Generator = (*ReceiptGenerator)(nil)

// ReceiptGenerator implementa receipt.Generator usando Maroto v2 sobre una
// página de 80mm de ancho (rollo estándar de impresora de tickets).
type ReceiptGenerator struct {
	businessName string
}

// NewReceiptGenerator construye el generador. businessName encabeza el ticket.
func NewReceiptGenerator(businessName string) *ReceiptGenerator {
	if businessName == "" {
		businessName = "CajaPOS"
	}
	return &ReceiptGenerator{businessName: businessName}
}

// Receipt genera el PDF del comprobante y devuelve sus bytes.
func (g *ReceiptGenerator) Receipt(_ context.Context, txn *entity.Transaction) ([]byte, error) {
	cfg := config.NewBuilder().
		WithDimensions(80, ticketHeight(len(txn.Items))).
		WithLeftMargin(4).WithRightMargin(4).
		WithTopMargin(4).WithBottomMargin(4).
		WithDefaultFont(&props.Font{Family: "courier", Size: 8}).
		WithTitle("Comprobante de venta", true).
		WithAuthor(g.businessName, true).
		Build()

	m := maroto.New(cfg)

	// Encabezado
	m.AddRows(g.headerRows(txn)...)
	m.AddRows(line.NewRow(2, props.Line{Color: colorGray, Thickness: 0.3}))

	// Tabla de líneas
	m.AddRows(tableHeaderRow())
	for _, r := range tableItemRows(txn.Items) {
		m.AddRows(r)
	}
	m.AddRows(line.NewRow(2, props.Line{Color: colorGray, Thickness: 0.3}))

	// Totales y pago
	m.AddRows(totalsRows(txn)...)
	m.AddRows(line.NewRow(2, props.Line{Color: colorGray, Thickness: 0.3}))

	// Pie
	m.AddRows(footerRows()...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar ticket: %w", err)
	}
	return doc.GetBytes(), nil
}

// ticketHeight estima el alto de página según el número de líneas; si el
// contenido excede, Maroto continúa en una página nueva del mismo ancho.
func ticketHeight(items int) float64 {
	return 110 + float64(items)*6
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *ReceiptGenerator) headerRows(txn *entity.Transaction) []core.Row {
	return []core.Row{
		row.New(7).Add(col.New(12).Add(
			text.New(g.businessName, props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Center, Top: 1,
			}),
		)),
		row.New(4).Add(col.New(12).Add(
			text.New("Sucursal "+txn.BranchID, props.Text{
				Size: 7, Align: align.Center, Color: colorGray,
			}),
		)),
		row.New(8).Add(col.New(12).Add(
			text.New("Ticket "+shortID(txn.ID), props.Text{
				Style: fontstyle.Bold, Size: 8, Top: 1,
			}),
			text.New(txn.CreatedAt.Format("02/01/2006 15:04")+"   Cajero: "+shortID(txn.CreatedBy), props.Text{
				Size: 7, Top: 5, Color: colorGray,
			}),
		)),
	}
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 7, Align: a, Top: 1,
		}))
	}
	return row.New(5).Add(
		h("Cant", 2, align.Left),
		h("Producto", 6, align.Left),
		h("Total", 4, align.Right),
	)
}

// tableItemRows: una fila por línea de venta, con el precio unitario debajo
// del nombre cuando la cantidad no es 1.
func tableItemRows(items []entity.TransactionItem) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		name := it.Name
		if !it.Quantity.Equal(decimal.NewFromInt(1)) {
			name = fmt.Sprintf("%s (%s x $%s)", it.Name, it.Quantity.String(), formatMoney(it.UnitPrice))
		}
		result = append(result, row.New(5).Add(
			col.New(2).Add(text.New(
				it.Quantity.String(),
				props.Text{Size: 7, Align: align.Left, Top: 1},
			)),
			col.New(6).Add(text.New(
				name,
				props.Text{Size: 7, Align: align.Left, Top: 1},
			)),
			col.New(4).Add(text.New(
				"$"+formatMoney(it.LineTotal),
				props.Text{Size: 7, Align: align.Right, Top: 1},
			)),
		))
	}
	return result
}

func totalsRows(txn *entity.Transaction) []core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Size: 7, Align: align.Right, Right: 2, Color: colorGray})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 7, Align: align.Right})
	}

	rows := []core.Row{
		row.New(4).Add(
			col.New(7).Add(label("Subtotal:")),
			col.New(5).Add(value("$" + formatMoney(txn.Subtotal))),
		),
	}
	if txn.Discount.IsPositive() {
		rows = append(rows, row.New(4).Add(
			col.New(7).Add(label("Descuento:")),
			col.New(5).Add(value("-$"+formatMoney(txn.Discount))),
		))
	}
	rows = append(rows,
		row.New(7).Add(
			col.New(7).Add(text.New("TOTAL:", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Right: 2, Top: 1,
			})),
			col.New(5).Add(text.New("$"+formatMoney(txn.Total), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 1,
			})),
		),
		row.New(4).Add(col.New(12).Add(
			text.New("Pago: "+paymentLabel(txn.PaymentMethod), props.Text{Size: 7, Color: colorGray}),
		)),
	)
	return rows
}

func footerRows() []core.Row {
	return []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("Comprobante interno de venta.", props.Text{
				Size: 6.5, Align: align.Center, Color: colorGray, Top: 1,
			}),
			text.New("No constituye factura electrónica.", props.Text{
				Size: 6.5, Align: align.Center, Color: colorGray, Top: 4,
			}),
		)),
		row.New(5).Add(col.New(12).Add(
			text.New("¡Gracias por su compra!", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Center, Top: 1,
			}),
		)),
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

func paymentLabel(method string) string {
	switch method {
	case entity.PaymentCash:
		return "efectivo"
	case entity.PaymentCard:
		return "tarjeta"
	case entity.PaymentTransfer:
		return "transferencia"
	default:
		return method
	}
}

// formatMoney presenta un decimal con dos cifras y separadores es-CO:
// punto de miles, coma decimal. Ej: 1234.5 → "1.234,50".
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	intPart, fracPart := s, ""
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			intPart, fracPart = s[:i], s[i+1:]
			break
		}
	}
	neg := false
	if len(intPart) > 0 && intPart[0] == '-' {
		neg = true
		intPart = intPart[1:]
	}
	n := len(intPart)
	buf := make([]byte, 0, n+n/3+len(fracPart)+2)
	for i := 0; i < n; i++ {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, intPart[i])
	}
	out := string(buf) + "," + fracPart
	if neg {
		return "-" + out
	}
	return out
}

// shortID recorta un UUID a su primer bloque para que quepa en el rollo.
func shortID(id string) string {
	for i := 0; i < len(id); i++ {
		if id[i] == '-' {
			return id[:i]
		}
	}
	return id
}
