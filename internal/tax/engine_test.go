package tax_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/invoice-generator/internal/model"
	"github.com/rezonia/invoice-generator/internal/money"
	"github.com/rezonia/invoice-generator/internal/tax"
)

func eur(items ...model.LineItem) *model.Invoice {
	return &model.Invoice{
		Number:    "INV-1",
		IssueDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Currency:  "EUR",
		Items:     items,
	}
}

func item(qty, price, rate string) model.LineItem {
	return model.LineItem{
		Description: "item",
		Quantity:    decimal.RequireFromString(qty),
		UnitPrice:   decimal.RequireFromString(price),
		VATRate:     decimal.RequireFromString(rate),
	}
}

func TestComputeTotals_SingleLine(t *testing.T) {
	engine := tax.NewEngine(tax.Config{})
	inv := eur(item("2", "100.00", "19"))

	totals := engine.ComputeTotals(inv)

	assert.Equal(t, "200.00", totals.TotalNet.StringFixed(2))
	assert.Equal(t, "38.00", totals.TotalVAT.StringFixed(2))
	assert.Equal(t, "238.00", totals.TotalGross.StringFixed(2))
	require.Len(t, totals.ByRate, 1)
	assert.Equal(t, "19", totals.ByRate[0].Rate.String())
}

func TestComputeTotals_Deterministic(t *testing.T) {
	engine := tax.NewEngine(tax.Config{})
	inv := eur(item("3", "33.33", "19"), item("1", "0.05", "7"))

	a := engine.ComputeTotals(inv)
	b := engine.ComputeTotals(inv)

	assert.Equal(t, a.TotalNet.String(), b.TotalNet.String())
	assert.Equal(t, a.TotalVAT.String(), b.TotalVAT.String())
	assert.Equal(t, a.TotalGross.String(), b.TotalGross.String())
	require.Equal(t, len(a.ByRate), len(b.ByRate))
	for i := range a.ByRate {
		assert.Equal(t, a.ByRate[i].VAT.String(), b.ByRate[i].VAT.String())
	}
}

func TestComputeTotals_GroupsByRate(t *testing.T) {
	engine := tax.NewEngine(tax.Config{})
	inv := eur(
		item("1", "100.00", "19"),
		item("1", "50.00", "7"),
		item("1", "25.00", "19"),
		item("1", "10.00", "0"),
	)

	totals := engine.ComputeTotals(inv)

	require.Len(t, totals.ByRate, 3)
	// Ordered by ascending rate.
	assert.Equal(t, "0", totals.ByRate[0].Rate.String())
	assert.Equal(t, "7", totals.ByRate[1].Rate.String())
	assert.Equal(t, "19", totals.ByRate[2].Rate.String())

	assert.Equal(t, "125.00", totals.ByRate[2].Net.StringFixed(2))
	assert.Equal(t, "23.75", totals.ByRate[2].VAT.StringFixed(2))
	assert.Equal(t, "0.00", totals.ByRate[0].VAT.StringFixed(2))
	assert.Equal(t, "185.00", totals.TotalNet.StringFixed(2))
}

func TestComputeTotals_GroupLevelVAT(t *testing.T) {
	// Many small lines at one rate: VAT is computed on the group net, not
	// summed per line, so per-line rounding does not accumulate.
	engine := tax.NewEngine(tax.Config{})
	items := make([]model.LineItem, 100)
	for i := range items {
		items[i] = item("1", "0.03", "19")
	}
	inv := eur(items...)

	totals := engine.ComputeTotals(inv)

	assert.Equal(t, "3.00", totals.TotalNet.StringFixed(2))
	// 3.00 * 19% = 0.57; summing round(0.03*0.19)=0.01 per line would give 1.00.
	assert.Equal(t, "0.57", totals.TotalVAT.StringFixed(2))
}

func TestComputeTotals_RoundingPolicies(t *testing.T) {
	inv := eur(item("1", "0.125", "0"))

	away := tax.NewEngine(tax.Config{Rounding: money.RoundHalfAwayFromZero})
	even := tax.NewEngine(tax.Config{Rounding: money.RoundHalfEven})

	assert.Equal(t, "0.13", away.ComputeTotals(inv).TotalNet.StringFixed(2))
	assert.Equal(t, "0.12", even.ComputeTotals(inv).TotalNet.StringFixed(2))
}

func TestComputeTotals_ZeroDecimalCurrency(t *testing.T) {
	engine := tax.NewEngine(tax.Config{})
	inv := eur(item("3", "100.4", "10"))
	inv.Currency = "JPY"

	totals := engine.ComputeTotals(inv)

	assert.Equal(t, "301", totals.TotalNet.String())
	assert.Equal(t, "30", totals.TotalVAT.String())
	assert.Equal(t, "331", totals.TotalGross.String())
}

func TestComputeTotals_MinorUnitOverride(t *testing.T) {
	engine := tax.NewEngine(tax.Config{MinorUnitOverrides: map[string]int32{"EUR": 3}})
	inv := eur(item("1", "0.0015", "0"))

	totals := engine.ComputeTotals(inv)
	assert.Equal(t, "0.002", totals.TotalNet.StringFixed(3))
}

func TestComputeTotals_NegativeCreditLine(t *testing.T) {
	engine := tax.NewEngine(tax.Config{})
	inv := eur(
		item("1", "100.00", "19"),
		item("1", "-20.00", "19"),
	)

	totals := engine.ComputeTotals(inv)
	assert.Equal(t, "80.00", totals.TotalNet.StringFixed(2))
	assert.Equal(t, "15.20", totals.TotalVAT.StringFixed(2))
	assert.Equal(t, "95.20", totals.TotalGross.StringFixed(2))
}

func TestComputeTotals_ZeroQuantityStays(t *testing.T) {
	engine := tax.NewEngine(tax.Config{})
	inv := eur(item("0", "100.00", "19"))

	totals := engine.ComputeTotals(inv)
	require.Len(t, totals.ByRate, 1)
	assert.True(t, totals.TotalNet.IsZero())
	assert.True(t, totals.TotalGross.IsZero())
}

func TestEnrich_DoesNotMutateInput(t *testing.T) {
	engine := tax.NewEngine(tax.Config{})
	inv := eur(item("2", "100.00", "19"))

	out := engine.Enrich(inv)

	require.NotNil(t, out.Totals)
	assert.Equal(t, "200.00", out.Items[0].Net.StringFixed(2))
	assert.Nil(t, inv.Totals)
	assert.True(t, inv.Items[0].Net.IsZero())
}

func TestReconciles(t *testing.T) {
	engine := tax.NewEngine(tax.Config{})
	inv := eur(item("2", "100.00", "19"))

	totals := engine.ComputeTotals(inv)
	assert.True(t, engine.Reconciles(inv, totals))

	totals.TotalNet = totals.TotalNet.Add(decimal.RequireFromString("0.02"))
	assert.False(t, engine.Reconciles(inv, totals))
}

func TestLineNet(t *testing.T) {
	engine := tax.NewEngine(tax.Config{})
	net := engine.LineNet(item("3", "33.333", "19"), "EUR")
	assert.Equal(t, "100.00", net.StringFixed(2))
}
