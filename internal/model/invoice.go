package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unit codes per UN/ECE Recommendation 20.
const (
	UnitPiece    = "C62"
	UnitHour     = "HUR"
	UnitDay      = "DAY"
	UnitKilogram = "KGM"
	UnitMeter    = "MTR"
	UnitLiter    = "LTR"
)

// Invoice is the canonical in-memory representation of a commercial invoice.
// It is constructed once per generation request, validated, enriched with
// computed totals and then consumed by the generator and composer. No stage
// mutates it after validation; enrichment returns a copy.
type Invoice struct {
	// Header
	Number    string     `json:"number"`
	IssueDate time.Time  `json:"issue_date"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	Currency  string     `json:"currency"` // ISO-4217 3-letter code

	// Parties
	Seller Party `json:"seller"`
	Buyer  Party `json:"buyer"`

	// Line items, at least one
	Items []LineItem `json:"items"`

	// Optional payment details
	Bank *BankDetails `json:"bank,omitempty"`

	PaymentTerms   string `json:"payment_terms,omitempty"`
	Notes          string `json:"notes,omitempty"`
	BuyerReference string `json:"buyer_reference,omitempty"`
	OrderReference string `json:"order_reference,omitempty"`

	// Derived, never user-supplied. Populated by the tax engine.
	Totals *TotalsSummary `json:"totals,omitempty"`
}

// Party represents seller or buyer
type Party struct {
	Name        string `json:"name"`
	Street      string `json:"street,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	City        string `json:"city,omitempty"`
	CountryCode string `json:"country_code"` // ISO 3166-1 alpha-2
	VATID       string `json:"vat_id,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	ContactName string `json:"contact_name,omitempty"`
}

// LineItem represents a single invoice position. Owned exclusively by its
// Invoice; never shared across invoices.
type LineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"` // may be negative for credit lines
	VATRate     decimal.Decimal `json:"vat_rate"`   // percentage, member of the configured set
	Unit        string          `json:"unit,omitempty"`

	// Net = Quantity * UnitPrice rounded to the currency's minor units.
	// Computed by the tax engine.
	Net decimal.Decimal `json:"net"`
}

// BankDetails holds the seller's payment account.
type BankDetails struct {
	IBAN          string `json:"iban"`
	BIC           string `json:"bic,omitempty"`
	BankName      string `json:"bank_name,omitempty"`
	AccountHolder string `json:"account_holder,omitempty"`
}

// RateGroup is the net and VAT amount accumulated for one VAT rate.
type RateGroup struct {
	Rate decimal.Decimal `json:"rate"`
	Net  decimal.Decimal `json:"net"`
	VAT  decimal.Decimal `json:"vat"`
}

// TotalsSummary holds the derived invoice totals. ByRate is ordered by
// ascending rate so that recomputation is byte-identical.
type TotalsSummary struct {
	TotalNet   decimal.Decimal `json:"total_net"`
	TotalVAT   decimal.Decimal `json:"total_vat"`
	TotalGross decimal.Decimal `json:"total_gross"`
	ByRate     []RateGroup     `json:"by_rate"`
}

// Clone returns a deep copy of the invoice.
func (inv *Invoice) Clone() *Invoice {
	out := *inv
	out.Items = make([]LineItem, len(inv.Items))
	copy(out.Items, inv.Items)
	if inv.DueDate != nil {
		d := *inv.DueDate
		out.DueDate = &d
	}
	if inv.Bank != nil {
		b := *inv.Bank
		out.Bank = &b
	}
	if inv.Totals != nil {
		t := *inv.Totals
		t.ByRate = make([]RateGroup, len(inv.Totals.ByRate))
		copy(t.ByRate, inv.Totals.ByRate)
		out.Totals = &t
	}
	return &out
}
