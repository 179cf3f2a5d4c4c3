package server

import (
	"github.com/shopspring/decimal"

	"github.com/rezonia/invoice-generator/internal/compliance"
	"github.com/rezonia/invoice-generator/internal/model"
)

// GenerateResponse is the response for the generation endpoint. Document is
// the hybrid byte stream, base64 encoded by Go's JSON marshaller.
type GenerateResponse struct {
	Document       []byte             `json:"document"`
	AttachmentName string             `json:"attachment_name"`
	Profile        string             `json:"profile"`
	Totals         *TotalsOutput      `json:"totals"`
	Report         *compliance.Report `json:"report"`
}

// PreviewResponse is the response for the preview endpoint.
type PreviewResponse struct {
	Invoice *model.Invoice `json:"invoice"`
	Totals  *TotalsOutput  `json:"totals"`
}

// TotalsOutput renders computed totals with string amounts so clients are
// not exposed to float representations.
type TotalsOutput struct {
	Currency   string           `json:"currency"`
	TotalNet   string           `json:"total_net"`
	TotalVAT   string           `json:"total_vat"`
	TotalGross string           `json:"total_gross"`
	ByRate     []RateGroupOutput `json:"by_rate"`
}

// RateGroupOutput is one VAT rate group in TotalsOutput.
type RateGroupOutput struct {
	Rate string `json:"rate"`
	Net  string `json:"net"`
	VAT  string `json:"vat"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error      string                 `json:"error"`
	Details    string                 `json:"details,omitempty"`
	Violations []model.FieldViolation `json:"violations,omitempty"`
	Field      string                 `json:"field,omitempty"`
}

func totalsOutput(currency string, totals *model.TotalsSummary, places int32) *TotalsOutput {
	if totals == nil {
		return nil
	}
	str := func(d decimal.Decimal) string { return d.StringFixed(places) }
	out := &TotalsOutput{
		Currency:   currency,
		TotalNet:   str(totals.TotalNet),
		TotalVAT:   str(totals.TotalVAT),
		TotalGross: str(totals.TotalGross),
		ByRate:     make([]RateGroupOutput, 0, len(totals.ByRate)),
	}
	for _, g := range totals.ByRate {
		out.ByRate = append(out.ByRate, RateGroupOutput{
			Rate: g.Rate.String(),
			Net:  str(g.Net),
			VAT:  str(g.VAT),
		})
	}
	return out
}
