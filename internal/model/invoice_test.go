package model_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/invoice-generator/internal/model"
)

func validInvoice() *model.Invoice {
	return &model.Invoice{
		Number:    "INV-2026-001",
		IssueDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Currency:  "EUR",
		Seller: model.Party{
			Name:        "Musterfirma GmbH",
			Street:      "Musterstr. 1",
			PostalCode:  "10115",
			City:        "Berlin",
			CountryCode: "DE",
			VATID:       "DE123456789",
		},
		Buyer: model.Party{
			Name:        "Example SARL",
			Street:      "1 Rue de Test",
			PostalCode:  "75001",
			City:        "Paris",
			CountryCode: "FR",
		},
		Items: []model.LineItem{
			{
				Description: "Consulting",
				Quantity:    decimal.NewFromInt(2),
				UnitPrice:   decimal.RequireFromString("100.00"),
				VATRate:     decimal.NewFromInt(19),
				Unit:        model.UnitHour,
			},
		},
	}
}

func TestValidate_Valid(t *testing.T) {
	verrs := model.Validate(validInvoice(), model.Rules{})
	assert.Nil(t, verrs)
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	inv := &model.Invoice{} // everything missing

	verrs := model.Validate(inv, model.Rules{})
	require.NotNil(t, verrs)

	fields := make([]string, 0, len(verrs.Violations))
	for _, v := range verrs.Violations {
		fields = append(fields, v.Field)
	}
	assert.Contains(t, fields, "number")
	assert.Contains(t, fields, "issue_date")
	assert.Contains(t, fields, "seller.name")
	assert.Contains(t, fields, "buyer.name")
	assert.Contains(t, fields, "items")
	assert.Contains(t, fields, "currency")
	// Country checks are suppressed while the party itself is missing.
	assert.NotContains(t, fields, "seller.country_code")
	assert.NotContains(t, fields, "buyer.country_code")
}

func TestValidate_Currency(t *testing.T) {
	tests := []struct {
		name     string
		currency string
		code     string
	}{
		{"lowercase", "eur", model.ViolationInvalidFormat},
		{"too long", "EURO", model.ViolationInvalidFormat},
		{"unknown", "QQQ", model.ViolationInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := validInvoice()
			inv.Currency = tt.currency
			verrs := model.Validate(inv, model.Rules{
				KnownCurrency: func(code string) bool { return code == "EUR" },
			})
			require.NotNil(t, verrs)
			require.Len(t, verrs.Violations, 1)
			assert.Equal(t, "currency", verrs.Violations[0].Field)
			assert.Equal(t, tt.code, verrs.Violations[0].Code)
		})
	}
}

func TestValidate_DueDateBeforeIssueDate(t *testing.T) {
	inv := validInvoice()
	due := inv.IssueDate.AddDate(0, 0, -1)
	inv.DueDate = &due

	verrs := model.Validate(inv, model.Rules{})
	require.NotNil(t, verrs)
	assert.Equal(t, "due_date", verrs.Violations[0].Field)
	assert.Equal(t, model.ViolationOutOfRange, verrs.Violations[0].Code)
}

func TestValidate_VATRateSet(t *testing.T) {
	inv := validInvoice()
	inv.Items[0].VATRate = decimal.NewFromInt(13)

	allowed := []decimal.Decimal{
		decimal.Zero, decimal.NewFromInt(7), decimal.NewFromInt(19),
	}
	verrs := model.Validate(inv, model.Rules{AllowedVATRates: allowed})
	require.NotNil(t, verrs)
	assert.Equal(t, "items[0].vat_rate", verrs.Violations[0].Field)

	// Without an allowed set, any rate passes.
	assert.Nil(t, model.Validate(inv, model.Rules{}))
}

func TestValidate_NegativeQuantity(t *testing.T) {
	inv := validInvoice()
	inv.Items[0].Quantity = decimal.NewFromInt(-1)

	verrs := model.Validate(inv, model.Rules{})
	require.NotNil(t, verrs)
	assert.Equal(t, "items[0].quantity", verrs.Violations[0].Field)
}

func TestValidIBAN(t *testing.T) {
	tests := []struct {
		name  string
		iban  string
		valid bool
	}{
		{"German IBAN", "DE89370400440532013000", true},
		{"with spaces", "DE89 3704 0044 0532 0130 00", true},
		{"lowercase", "de89370400440532013000", true},
		{"too short", "DE89370400440532013", false},
		{"unknown country", "XX89370400440532013000", false},
		{"bad country", "1289370400440532013000", false},
		{"bad check digits", "DEXX370400440532013000", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, model.ValidIBAN(tt.iban))
		})
	}
}

func TestValidBIC(t *testing.T) {
	assert.True(t, model.ValidBIC("DEUTDEFF"))
	assert.True(t, model.ValidBIC("DEUTDEFF500"))
	assert.True(t, model.ValidBIC(""), "BIC is optional")
	assert.False(t, model.ValidBIC("DEUTDEFF5"))
	assert.False(t, model.ValidBIC("DEUT"))
}

func TestNormalizeIBAN(t *testing.T) {
	assert.Equal(t, "DE89370400440532013000", model.NormalizeIBAN("de89 3704 0044 0532 0130 00"))
}

func TestValidate_BankDetails(t *testing.T) {
	inv := validInvoice()
	inv.Bank = &model.BankDetails{IBAN: "XX", BIC: "BAD"}

	verrs := model.Validate(inv, model.Rules{})
	require.NotNil(t, verrs)
	require.Len(t, verrs.Violations, 2)
	assert.Equal(t, "bank.iban", verrs.Violations[0].Field)
	assert.Equal(t, "bank.bic", verrs.Violations[1].Field)
}

func TestInvoice_Clone(t *testing.T) {
	inv := validInvoice()
	due := inv.IssueDate.AddDate(0, 1, 0)
	inv.DueDate = &due
	inv.Bank = &model.BankDetails{IBAN: "DE89370400440532013000"}

	clone := inv.Clone()
	clone.Items[0].Description = "changed"
	clone.Bank.IBAN = "changed"
	*clone.DueDate = clone.DueDate.AddDate(1, 0, 0)

	assert.Equal(t, "Consulting", inv.Items[0].Description)
	assert.Equal(t, "DE89370400440532013000", inv.Bank.IBAN)
	assert.Equal(t, due, *inv.DueDate)
}

func TestValidationErrors_Error(t *testing.T) {
	verrs := &model.ValidationErrors{Violations: []model.FieldViolation{
		{Field: "number", Code: model.ViolationRequired, Message: "invoice number is required"},
	}}
	assert.Contains(t, verrs.Error(), "number")
	assert.Contains(t, verrs.Error(), "required")
}

func TestGenerationError_Error(t *testing.T) {
	err := model.NewMissingFieldError("extended", "buyer.vat_id")
	assert.Equal(t, model.MissingRequiredField, err.Code)
	assert.Contains(t, err.Error(), "buyer.vat_id")
	assert.Contains(t, err.Error(), "extended")
}

func TestCompositionError_Unwrap(t *testing.T) {
	cause := assert.AnError
	err := model.NewCompositionError(model.EmbedFailed, "render failed", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "EmbedFailed")
}
