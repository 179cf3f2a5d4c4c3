package compose_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/invoice-generator/internal/compose"
	"github.com/rezonia/invoice-generator/internal/model"
	"github.com/rezonia/invoice-generator/internal/schema"
	"github.com/rezonia/invoice-generator/internal/tax"
)

func TestNewComposer_StrictRequiresICC(t *testing.T) {
	_, err := compose.NewComposer(compose.Config{StrictArchival: true})
	require.Error(t, err)

	var cerr *model.CompositionError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, model.ArchivalPrerequisiteMissing, cerr.Code)
}

func TestNewComposer_StrictWithICC(t *testing.T) {
	c, err := compose.NewComposer(compose.Config{
		StrictArchival: true,
		ICCProfile:     []byte{0x01, 0x02, 0x03},
	})
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestNewComposer_Defaults(t *testing.T) {
	c, err := compose.NewComposer(compose.Config{})
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func enrichedInvoice(t *testing.T) *model.Invoice {
	t.Helper()

	inv := &model.Invoice{
		Number:    "INV-2026-007",
		IssueDate: time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
		Currency:  "EUR",
		Seller: model.Party{
			Name:        "Musterfirma GmbH",
			CountryCode: "DE",
			VATID:       "DE123456789",
		},
		Buyer: model.Party{
			Name:        "Example SARL",
			CountryCode: "FR",
		},
		Items: []model.LineItem{
			{
				Description: "Consulting",
				Quantity:    decimal.NewFromInt(2),
				UnitPrice:   decimal.RequireFromString("100.00"),
				VATRate:     decimal.NewFromInt(19),
			},
		},
	}
	return tax.NewEngine(tax.Config{}).Enrich(inv)
}

func TestCompose(t *testing.T) {
	inv := enrichedInvoice(t)

	doc, err := schema.NewGenerator(schema.ProfileBasic, nil).Generate(inv)
	require.NoError(t, err)

	c, err := compose.NewComposer(compose.Config{
		ICCProfile: []byte("stand-in-profile-bytes"),
	})
	require.NoError(t, err)

	hybrid, err := c.Compose(inv, doc)
	require.NoError(t, err)

	assert.Equal(t, compose.DefaultAttachmentName, hybrid.AttachmentName)
	assert.Equal(t, schema.ProfileBasic, hybrid.Profile)
	assert.True(t, bytes.HasPrefix(hybrid.Bytes, []byte("%PDF-")))

	// The metadata stream is written unfiltered, so the archival
	// identification is visible in the raw output.
	assert.True(t, bytes.Contains(hybrid.Bytes, []byte("pdfaid:part")))
}

func TestCompose_WithoutICCProfile(t *testing.T) {
	inv := enrichedInvoice(t)

	doc, err := schema.NewGenerator(schema.ProfileBasic, nil).Generate(inv)
	require.NoError(t, err)

	c, err := compose.NewComposer(compose.Config{})
	require.NoError(t, err)

	hybrid, err := c.Compose(inv, doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(hybrid.Bytes, []byte("%PDF-")))
}
