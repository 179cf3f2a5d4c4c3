package compose

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
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
	"github.com/shopspring/decimal"

	"github.com/rezonia/invoice-generator/internal/model"
)

var (
	colorPrimary = &props.Color{Red: 20, Green: 45, Blue: 90}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

const dateLayout = "2006-01-02"

// renderVisual produces the paginated human-readable A4 rendering: header,
// party blocks, line-item table, VAT breakdown, totals and bank details.
// The invoice must be enriched (line nets and totals populated).
func renderVisual(inv *model.Invoice, places int32, creator string) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Invoice "+inv.Number, true).
		WithAuthor(inv.Seller.Name, true).
		WithCreator(creator, true).
		Build()

	m := maroto.New(cfg)

	amount := func(d decimal.Decimal) string {
		return d.StringFixed(places) + " " + inv.Currency
	}

	m.AddRows(headerRow(inv))
	m.AddRows(line.NewRow(2, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(partyRows(inv)...)
	m.AddRows(line.NewRow(2, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(itemsHeaderRow())
	for i, item := range inv.Items {
		m.AddRows(itemRow(i+1, item, amount))
	}

	m.AddRows(line.NewRow(2, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRows(inv.Totals, amount)...)

	if footer := footerRows(inv); len(footer) > 0 {
		m.AddRows(line.NewRow(4))
		m.AddRows(footer...)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("render visual document: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(inv *model.Invoice) core.Row {
	issue := inv.IssueDate.Format(dateLayout)
	due := ""
	if inv.DueDate != nil {
		due = "Due: " + inv.DueDate.Format(dateLayout)
	}

	return row.New(20).Add(
		col.New(7).Add(
			text.New(inv.Seller.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(sellerLine(inv.Seller), props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("INVOICE", props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(inv.Number, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Date: "+issue, props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
			text.New(due, props.Text{
				Size: 8, Align: align.Right, Top: 17, Color: colorGray,
			}),
		),
	)
}

func partyRows(inv *model.Invoice) []core.Row {
	rows := []core.Row{
		row.New(6).Add(
			col.New(6).Add(text.New("SELLER", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			})),
			col.New(6).Add(text.New("BUYER", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			})),
		),
		row.New(16).Add(
			col.New(6).Add(partyTexts(inv.Seller)...),
			col.New(6).Add(partyTexts(inv.Buyer)...),
		),
	}
	if inv.BuyerReference != "" || inv.OrderReference != "" {
		refs := ""
		if inv.BuyerReference != "" {
			refs = "Buyer reference: " + inv.BuyerReference
		}
		if inv.OrderReference != "" {
			if refs != "" {
				refs += "   |   "
			}
			refs += "Order: " + inv.OrderReference
		}
		rows = append(rows, row.New(6).Add(
			col.New(12).Add(text.New(refs, props.Text{Size: 8, Color: colorGray, Top: 1})),
		))
	}
	return rows
}

func partyTexts(p model.Party) []core.Component {
	lines := []string{p.Name}
	if p.Street != "" {
		lines = append(lines, p.Street)
	}
	if p.PostalCode != "" || p.City != "" {
		lines = append(lines, trimJoin(p.PostalCode, p.City))
	}
	lines = append(lines, p.CountryCode)
	if p.VATID != "" {
		lines = append(lines, "VAT ID: "+p.VATID)
	}

	texts := make([]core.Component, 0, len(lines))
	for i, l := range lines {
		texts = append(texts, text.New(l, props.Text{Size: 8, Top: float64(1 + i*3)}))
	}
	return texts
}

func itemsHeaderRow() core.Row {
	header := func(size int, label string, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 1,
		}))
	}
	return row.New(6).Add(
		header(1, "#", align.Left),
		header(5, "Description", align.Left),
		header(2, "Qty", align.Right),
		header(2, "Unit price", align.Right),
		header(1, "VAT %", align.Right),
		header(1, "Net", align.Right),
	)
}

func itemRow(number int, item model.LineItem, amount func(decimal.Decimal) string) core.Row {
	cell := func(size int, value string, a align.Type) core.Col {
		return col.New(size).Add(text.New(value, props.Text{Size: 8, Align: a, Top: 1}))
	}
	return row.New(5).Add(
		cell(1, fmt.Sprintf("%d", number), align.Left),
		cell(5, item.Description, align.Left),
		cell(2, item.Quantity.String(), align.Right),
		cell(2, item.UnitPrice.String(), align.Right),
		cell(1, item.VATRate.String(), align.Right),
		cell(1, item.Net.String(), align.Right),
	)
}

func totalsRows(totals *model.TotalsSummary, amount func(decimal.Decimal) string) []core.Row {
	label := func(value string, bold bool) core.Col {
		style := fontstyle.Normal
		if bold {
			style = fontstyle.Bold
		}
		return col.New(9).Add(text.New(value, props.Text{Size: 9, Align: align.Right, Style: style, Top: 1}))
	}
	value := func(value string, bold bool) core.Col {
		style := fontstyle.Normal
		if bold {
			style = fontstyle.Bold
		}
		return col.New(3).Add(text.New(value, props.Text{Size: 9, Align: align.Right, Style: style, Top: 1}))
	}

	rows := []core.Row{
		row.New(5).Add(label("Total net", false), value(amount(totals.TotalNet), false)),
	}
	for _, group := range totals.ByRate {
		rows = append(rows, row.New(5).Add(
			label(fmt.Sprintf("VAT %s%% on %s", group.Rate.String(), amount(group.Net)), false),
			value(amount(group.VAT), false),
		))
	}
	rows = append(rows,
		row.New(5).Add(label("Total VAT", false), value(amount(totals.TotalVAT), false)),
		row.New(6).Add(label("TOTAL DUE", true), value(amount(totals.TotalGross), true)),
	)
	return rows
}

func footerRows(inv *model.Invoice) []core.Row {
	var rows []core.Row
	small := func(s string) core.Row {
		return row.New(4).Add(col.New(12).Add(text.New(s, props.Text{Size: 7, Color: colorGray, Top: 1})))
	}
	if inv.Bank != nil {
		bank := "IBAN: " + model.NormalizeIBAN(inv.Bank.IBAN)
		if inv.Bank.BIC != "" {
			bank += "   BIC: " + inv.Bank.BIC
		}
		if inv.Bank.BankName != "" {
			bank += "   " + inv.Bank.BankName
		}
		rows = append(rows, small(bank))
	}
	if inv.PaymentTerms != "" {
		rows = append(rows, small("Payment terms: "+inv.PaymentTerms))
	}
	if inv.Notes != "" {
		rows = append(rows, small(inv.Notes))
	}
	return rows
}

func sellerLine(p model.Party) string {
	s := trimJoin(p.Street, trimJoin(p.PostalCode, p.City))
	if p.VATID != "" {
		if s != "" {
			s += "   |   "
		}
		s += "VAT ID: " + p.VATID
	}
	return s
}

func trimJoin(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}
