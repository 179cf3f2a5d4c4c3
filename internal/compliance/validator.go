package compliance

import (
	"errors"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/shopspring/decimal"

	"github.com/rezonia/invoice-generator/internal/money"
	"github.com/rezonia/invoice-generator/internal/schema"
)

// Validator runs the full read-only compliance check on finished documents.
type Validator struct {
	conf *model.Configuration
}

// NewValidator creates a validator with default read settings.
func NewValidator() *Validator {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Validator{conf: conf}
}

// Validate inspects the document bytes and returns a report. The input is
// never modified; a non-compliant document is a finding, not an error.
func (v *Validator) Validate(data []byte) *Report {
	report := &Report{}

	facts := checkArchival(data, v.conf, report)
	if facts.dataset != nil {
		checkDataset(facts.dataset, report)
	}

	return report.finalize()
}

// checkDataset verifies the extracted structured document: well-formed CII,
// known profile, profile-mandated fields, and arithmetic consistency of the
// declared totals.
func checkDataset(dataset []byte, report *Report) {
	inv, profile, err := schema.Parse(dataset)
	if err != nil {
		code := InvalidXML
		if errors.Is(err, schema.ErrUnknownGuideline) {
			code = UnknownProfile
		}
		report.add(StageSchema, code, "structured dataset is unreadable: %v", err)
		return
	}
	report.Profile = string(profile)

	if err := profile.CheckRequired(inv); err != nil {
		report.add(StageSchema, RequiredFieldMissing,
			"dataset lacks field %s required by profile %s", err.Field, profile)
	}

	if inv.Totals == nil {
		report.add(StageSchema, TotalsMismatch, "dataset declares no monetary summation")
		return
	}

	places, known := money.MinorUnits(inv.Currency)
	if !known {
		places = 2
	}

	lineSum := decimal.Zero
	for _, item := range inv.Items {
		lineSum = lineSum.Add(item.Net)
	}
	if !money.WithinTolerance(lineSum, inv.Totals.TotalNet, places) {
		report.add(StageSchema, TotalsMismatch,
			"line totals sum to %s but the dataset declares net %s",
			lineSum.StringFixed(places), inv.Totals.TotalNet.StringFixed(places))
	}

	groupVAT := decimal.Zero
	for _, group := range inv.Totals.ByRate {
		groupVAT = groupVAT.Add(group.VAT)
	}
	if !money.WithinTolerance(groupVAT, inv.Totals.TotalVAT, places) {
		report.add(StageSchema, TotalsMismatch,
			"per-rate VAT sums to %s but the dataset declares %s",
			groupVAT.StringFixed(places), inv.Totals.TotalVAT.StringFixed(places))
	}

	gross := inv.Totals.TotalNet.Add(inv.Totals.TotalVAT)
	if !money.WithinTolerance(gross, inv.Totals.TotalGross, places) {
		report.add(StageSchema, TotalsMismatch,
			"net %s plus VAT %s does not match gross %s",
			inv.Totals.TotalNet.StringFixed(places),
			inv.Totals.TotalVAT.StringFixed(places),
			inv.Totals.TotalGross.StringFixed(places))
	}
}
