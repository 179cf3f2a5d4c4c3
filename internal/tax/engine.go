// Package tax derives net, VAT and gross amounts from invoice line items.
//
// All arithmetic runs on shopspring decimals at the currency's minor-unit
// precision. The rounding policy is a standards-compliance detail, not a
// stylistic choice: the default is round half away from zero (what EN 16931
// implementations commonly apply and what the decimal library's Round does);
// half-even is available for jurisdictions that mandate banker's rounding.
package tax

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rezonia/invoice-generator/internal/model"
	"github.com/rezonia/invoice-generator/internal/money"
)

var hundred = decimal.NewFromInt(100)

// Config fixes the arithmetic rules at construction time.
type Config struct {
	// Rounding selects the half-way policy. Empty means half away from zero.
	Rounding money.RoundingPolicy
	// MinorUnitOverrides replaces table entries per currency, e.g. for
	// invoicing in sub-cent precision by agreement.
	MinorUnitOverrides map[string]int32
}

// Engine computes invoice totals. Stateless and safe for concurrent use.
type Engine struct {
	policy    money.RoundingPolicy
	overrides map[string]int32
}

// NewEngine creates an engine with the given configuration.
func NewEngine(cfg Config) *Engine {
	policy := cfg.Rounding
	if policy == "" {
		policy = money.DefaultPolicy
	}
	return &Engine{policy: policy, overrides: cfg.MinorUnitOverrides}
}

// Places returns the minor-unit precision used for a currency.
func (e *Engine) Places(currency string) int32 {
	if n, ok := e.overrides[currency]; ok {
		return n
	}
	n, _ := money.MinorUnits(currency)
	return n
}

func (e *Engine) round(d decimal.Decimal, places int32) decimal.Decimal {
	return money.Round(d, places, e.policy)
}

// LineNet computes the rounded net amount of a single line item.
func (e *Engine) LineNet(item model.LineItem, currency string) decimal.Decimal {
	return e.round(item.Quantity.Mul(item.UnitPrice), e.Places(currency))
}

// ComputeTotals derives the totals summary from the invoice line items.
// Pure function: same input yields byte-identical decimal output. Line nets
// are rounded individually, then grouped by VAT rate; VAT is computed per
// group so that many small lines at one rate do not accumulate rounding
// drift. Zero-quantity lines contribute zero but stay in the output.
func (e *Engine) ComputeTotals(inv *model.Invoice) model.TotalsSummary {
	places := e.Places(inv.Currency)

	netByRate := make(map[string]decimal.Decimal)
	rates := make(map[string]decimal.Decimal)
	totalNet := decimal.Zero

	for _, item := range inv.Items {
		net := e.round(item.Quantity.Mul(item.UnitPrice), places)
		totalNet = totalNet.Add(net)

		key := item.VATRate.String()
		netByRate[key] = netByRate[key].Add(net)
		rates[key] = item.VATRate
	}

	keys := make([]string, 0, len(rates))
	for k := range rates {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return rates[keys[i]].LessThan(rates[keys[j]])
	})

	totals := model.TotalsSummary{
		ByRate: make([]model.RateGroup, 0, len(keys)),
	}
	totalVAT := decimal.Zero
	for _, k := range keys {
		rate := rates[k]
		net := netByRate[k]
		vat := e.round(net.Mul(rate).Div(hundred), places)
		totalVAT = totalVAT.Add(vat)
		totals.ByRate = append(totals.ByRate, model.RateGroup{Rate: rate, Net: net, VAT: vat})
	}

	totals.TotalNet = e.round(totalNet, places)
	totals.TotalVAT = e.round(totalVAT, places)
	totals.TotalGross = totals.TotalNet.Add(totals.TotalVAT)
	return totals
}

// Enrich returns a copy of the invoice with line nets and totals populated.
// The input invoice is not touched.
func (e *Engine) Enrich(inv *model.Invoice) *model.Invoice {
	out := inv.Clone()
	places := e.Places(inv.Currency)
	for i := range out.Items {
		out.Items[i].Net = e.round(out.Items[i].Quantity.Mul(out.Items[i].UnitPrice), places)
	}
	totals := e.ComputeTotals(inv)
	out.Totals = &totals
	return out
}

// Reconciles reports whether the summary's total net matches the rounded sum
// over the line items within one minor currency unit.
func (e *Engine) Reconciles(inv *model.Invoice, totals model.TotalsSummary) bool {
	places := e.Places(inv.Currency)
	sum := decimal.Zero
	for _, item := range inv.Items {
		sum = sum.Add(item.Quantity.Mul(item.UnitPrice))
	}
	return money.WithinTolerance(totals.TotalNet, e.round(sum, places), places)
}
