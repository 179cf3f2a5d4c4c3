package model

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Structural format patterns. IBAN is checked after whitespace stripping and
// uppercasing; a full MOD-97 checksum is out of scope here, the embedded
// schema carries the account verbatim.
var (
	ibanPattern    = regexp.MustCompile(`^[A-Z]{2}[0-9]{2}[A-Z0-9]{4,30}$`)
	bicPattern     = regexp.MustCompile(`^[A-Z]{6}[A-Z0-9]{2}([A-Z0-9]{3})?$`)
	countryPattern = regexp.MustCompile(`^[A-Z]{2}$`)
)

// Rules configures invoice validation. Supplied at pipeline construction,
// never read from process-wide state.
type Rules struct {
	// AllowedVATRates is the jurisdiction's enumerated rate set, e.g. 0/7/19.
	AllowedVATRates []decimal.Decimal
	// KnownCurrency reports whether a 3-letter code is an ISO-4217 currency.
	KnownCurrency func(code string) bool
}

// ibanLengths maps country codes to their fixed national IBAN length.
// A structurally well-formed IBAN for an unknown country is rejected.
var ibanLengths = map[string]int{
	"AD": 24, "AT": 20, "BE": 16, "BG": 22, "CH": 21, "CY": 28, "CZ": 24,
	"DE": 22, "DK": 18, "EE": 20, "ES": 24, "FI": 18, "FR": 27, "GB": 22,
	"GR": 27, "HR": 21, "HU": 28, "IE": 22, "IS": 26, "IT": 27, "LI": 21,
	"LT": 20, "LU": 20, "LV": 21, "MC": 27, "MT": 31, "NL": 18, "NO": 15,
	"PL": 28, "PT": 25, "RO": 24, "SE": 24, "SI": 19, "SK": 24, "SM": 27,
}

// NormalizeIBAN strips whitespace and uppercases.
func NormalizeIBAN(iban string) string {
	return strings.ToUpper(strings.Join(strings.Fields(iban), ""))
}

// ValidIBAN reports whether the normalized IBAN matches the structural format
// and the national length for its country.
func ValidIBAN(iban string) bool {
	n := NormalizeIBAN(iban)
	if !ibanPattern.MatchString(n) {
		return false
	}
	want, ok := ibanLengths[n[:2]]
	return ok && len(n) == want
}

// ValidBIC reports whether the BIC matches the structural format.
// An empty BIC is valid (the field is optional).
func ValidBIC(bic string) bool {
	if bic == "" {
		return true
	}
	return bicPattern.MatchString(strings.ToUpper(strings.TrimSpace(bic)))
}

// Validate checks the invoice against the structural and business rules.
// All violations are collected so the caller can re-prompt for everything at
// once; only checks depending on a structurally absent value are suppressed.
// A nil result means the invoice is ready for computation.
func Validate(inv *Invoice, rules Rules) *ValidationErrors {
	var vs []FieldViolation

	add := func(field, code string, value interface{}, message string) {
		vs = append(vs, FieldViolation{Field: field, Code: code, Value: value, Message: message})
	}

	// Structural presence first.
	if inv.Number == "" {
		add("number", ViolationRequired, nil, "invoice number is required")
	}
	if inv.IssueDate.IsZero() {
		add("issue_date", ViolationRequired, nil, "issue date is required")
	}
	hasSeller := inv.Seller.Name != ""
	if !hasSeller {
		add("seller.name", ViolationRequired, nil, "seller is required")
	}
	hasBuyer := inv.Buyer.Name != ""
	if !hasBuyer {
		add("buyer.name", ViolationRequired, nil, "buyer is required")
	}
	if len(inv.Items) == 0 {
		add("items", ViolationRequired, nil, "at least one line item is required")
	}

	// Currency.
	switch {
	case inv.Currency == "":
		add("currency", ViolationRequired, nil, "currency is required")
	case len(inv.Currency) != 3 || inv.Currency != strings.ToUpper(inv.Currency):
		add("currency", ViolationInvalidFormat, inv.Currency, "currency must be a 3-letter uppercase ISO code")
	case rules.KnownCurrency != nil && !rules.KnownCurrency(inv.Currency):
		add("currency", ViolationInvalidValue, inv.Currency, "unknown ISO-4217 currency code")
	}

	// Dates.
	if inv.DueDate != nil && !inv.IssueDate.IsZero() && inv.DueDate.Before(inv.IssueDate) {
		add("due_date", ViolationOutOfRange, inv.DueDate.Format("2006-01-02"), "due date must not precede issue date")
	}

	// Party country codes, only when the party itself is present.
	if hasSeller {
		validateCountry(&vs, "seller.country_code", inv.Seller.CountryCode)
	}
	if hasBuyer {
		validateCountry(&vs, "buyer.country_code", inv.Buyer.CountryCode)
	}

	// Line items.
	for i, item := range inv.Items {
		path := fmt.Sprintf("items[%d]", i)
		if item.Description == "" {
			add(path+".description", ViolationRequired, nil, "description is required")
		}
		if item.Quantity.IsNegative() {
			add(path+".quantity", ViolationOutOfRange, item.Quantity.String(), "quantity must not be negative")
		}
		if len(rules.AllowedVATRates) > 0 && !rateAllowed(item.VATRate, rules.AllowedVATRates) {
			add(path+".vat_rate", ViolationInvalidValue, item.VATRate.String(),
				fmt.Sprintf("VAT rate must be one of %s", rateSetString(rules.AllowedVATRates)))
		}
	}

	// Bank details.
	if inv.Bank != nil {
		if !ValidIBAN(inv.Bank.IBAN) {
			add("bank.iban", ViolationInvalidFormat, inv.Bank.IBAN, "IBAN does not match the expected format")
		}
		if !ValidBIC(inv.Bank.BIC) {
			add("bank.bic", ViolationInvalidFormat, inv.Bank.BIC, "BIC does not match the expected format")
		}
	}

	if len(vs) == 0 {
		return nil
	}
	return &ValidationErrors{Violations: vs}
}

func validateCountry(vs *[]FieldViolation, field, code string) {
	switch {
	case code == "":
		*vs = append(*vs, FieldViolation{Field: field, Code: ViolationRequired, Message: "country code is required"})
	case !countryPattern.MatchString(code):
		*vs = append(*vs, FieldViolation{Field: field, Code: ViolationInvalidFormat, Value: code, Message: "country code must be ISO 3166-1 alpha-2"})
	}
}

func rateAllowed(rate decimal.Decimal, allowed []decimal.Decimal) bool {
	for _, a := range allowed {
		if rate.Equal(a) {
			return true
		}
	}
	return false
}

func rateSetString(rates []decimal.Decimal) string {
	parts := make([]string, len(rates))
	for i, r := range rates {
		parts[i] = r.String()
	}
	return strings.Join(parts, "/")
}
