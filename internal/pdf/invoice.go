package pdf

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// Document is the render-ready view of an invoice. Totals come from the
// stored invoice row; nothing is recomputed at render time.
type Document struct {
	Number    string
	IssueDate string
	DueDate   string
	Status    string
	BillTo    BillTo
	Items     []Line
	Subtotal  float64
	Tax       float64
	Total     float64
	Notes     string
}

type BillTo struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

type Line struct {
	Description string
	Quantity    int
	UnitPrice   float64
	Amount      float64
}

// BillToName applies the display precedence for the bill-to header:
// "name + company" > company > name > "Unknown Contact".
func BillToName(name, company string) string {
	switch {
	case name != "" && company != "":
		return name + " (" + company + ")"
	case company != "":
		return company
	case name != "":
		return name
	}
	return "Unknown Contact"
}

// Render produces the A4 invoice PDF.
func Render(d Document) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()
	m := maroto.New(cfg)

	m.AddRows(
		row.New(12).Add(
			text.NewCol(8, "INVOICE", props.Text{Size: 20, Style: fontstyle.Bold}),
			text.NewCol(4, "#"+d.Number, props.Text{Size: 12, Align: align.Right, Top: 3}),
		),
		row.New(6).Add(
			text.NewCol(4, "Issue date: "+d.IssueDate, props.Text{Size: 9}),
			text.NewCol(4, "Due date: "+d.DueDate, props.Text{Size: 9}),
			text.NewCol(4, "Status: "+d.Status, props.Text{Size: 9, Align: align.Right}),
		),
		line.NewRow(4),
	)

	m.AddRows(
		row.New(5).Add(
			text.NewCol(6, "From", props.Text{Size: 9, Style: fontstyle.Bold}),
			text.NewCol(6, "Bill to", props.Text{Size: 9, Style: fontstyle.Bold}),
		),
		row.New(5).Add(
			text.NewCol(6, "Your Business", props.Text{Size: 9}),
			text.NewCol(6, d.BillTo.Name, props.Text{Size: 9}),
		),
	)
	for _, extra := range []string{d.BillTo.Address, d.BillTo.Email, d.BillTo.Phone} {
		if extra == "" {
			continue
		}
		m.AddRows(row.New(4).Add(
			col.New(6),
			text.NewCol(6, extra, props.Text{Size: 8}),
		))
	}
	m.AddRows(line.NewRow(4))

	m.AddRows(row.New(6).Add(
		text.NewCol(6, "Description", props.Text{Size: 9, Style: fontstyle.Bold}),
		text.NewCol(2, "Qty", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Unit price", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
	))
	for _, it := range d.Items {
		m.AddRows(row.New(5).Add(
			text.NewCol(6, it.Description, props.Text{Size: 9}),
			text.NewCol(2, fmt.Sprintf("%d", it.Quantity), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, money(it.UnitPrice), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, money(it.Amount), props.Text{Size: 9, Align: align.Right}),
		))
	}
	m.AddRows(line.NewRow(4))

	m.AddRows(
		totalsRow("Subtotal", d.Subtotal, false),
		totalsRow("Tax", d.Tax, false),
		totalsRow("Total", d.Total, true),
	)

	if d.Notes != "" {
		m.AddRows(
			row.New(6).Add(text.NewCol(12, "Notes", props.Text{Size: 9, Style: fontstyle.Bold, Top: 2})),
			row.New(8).Add(text.NewCol(12, d.Notes, props.Text{Size: 8})),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func totalsRow(label string, v float64, bold bool) core.Row {
	style := fontstyle.Normal
	if bold {
		style = fontstyle.Bold
	}
	return row.New(5).Add(
		col.New(8),
		text.NewCol(2, label, props.Text{Size: 9, Style: style, Align: align.Right}),
		text.NewCol(2, money(v), props.Text{Size: 9, Style: style, Align: align.Right}),
	)
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
