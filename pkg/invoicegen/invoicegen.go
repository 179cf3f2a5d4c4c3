// Package invoicegen is the public API for generating hybrid electronic
// invoices: a human-readable PDF rendering carrying an embedded
// machine-readable dataset, verified by a compliance report.
//
// Example usage:
//
//	gen, err := invoicegen.New(invoicegen.Options{Profile: invoicegen.ProfileEN16931})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := gen.Generate(ctx, &invoice)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("invoice.pdf", result.Document, 0o644)
package invoicegen

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/rezonia/invoice-generator/internal/compliance"
	"github.com/rezonia/invoice-generator/internal/model"
	"github.com/rezonia/invoice-generator/internal/money"
	"github.com/rezonia/invoice-generator/internal/pipeline"
	"github.com/rezonia/invoice-generator/internal/schema"
	"github.com/rezonia/invoice-generator/pkg/logger"
)

// Re-export core types for the public API.
type (
	Invoice       = model.Invoice
	LineItem      = model.LineItem
	Party         = model.Party
	BankDetails   = model.BankDetails
	TotalsSummary = model.TotalsSummary
	RateGroup     = model.RateGroup

	Report    = compliance.Report
	Violation = compliance.Violation

	Profile = schema.Profile

	RoundingPolicy = money.RoundingPolicy
)

// Re-export conformance profiles.
const (
	ProfileBasic    = schema.ProfileBasic
	ProfileEN16931  = schema.ProfileEN16931
	ProfileExtended = schema.ProfileExtended
)

// Re-export rounding policies.
const (
	RoundHalfAwayFromZero = money.RoundHalfAwayFromZero
	RoundHalfEven         = money.RoundHalfEven
)

// Re-export error types.
type (
	ValidationErrors = model.ValidationErrors
	FieldViolation   = model.FieldViolation
	GenerationError  = model.GenerationError
	CompositionError = model.CompositionError
)

// ParseProfile validates a profile name.
func ParseProfile(s string) (Profile, error) {
	return schema.ParseProfile(s)
}

// Options configures a Generator. The zero value generates EN 16931
// documents with default rounding and no color profile.
type Options struct {
	Profile         Profile
	AllowedVATRates []decimal.Decimal
	Rounding        RoundingPolicy
	CreatorTool     string
	Producer        string
	AttachmentName  string
	ICCProfile      []byte
	StrictArchival  bool
	Logger          *logger.Logger
}

// Result is the outcome of a generation run.
type Result struct {
	// Document is the hybrid byte stream.
	Document []byte
	// AttachmentName is the embedded dataset's filename.
	AttachmentName string
	// Invoice is the enriched copy with computed totals.
	Invoice *Invoice
	// Report carries the compliance findings for the produced document.
	Report *Report
}

// Generator produces hybrid invoice documents.
type Generator struct {
	p *pipeline.Pipeline
}

// New assembles a generator.
func New(opts Options) (*Generator, error) {
	p, err := pipeline.New(pipeline.Config{
		Profile:         opts.Profile,
		AllowedVATRates: opts.AllowedVATRates,
		Rounding:        opts.Rounding,
		CreatorTool:     opts.CreatorTool,
		Producer:        opts.Producer,
		AttachmentName:  opts.AttachmentName,
		ICCProfile:      opts.ICCProfile,
		StrictArchival:  opts.StrictArchival,
		Logger:          opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	return &Generator{p: p}, nil
}

// Generate validates the invoice, computes totals and produces the hybrid
// document together with its compliance report. The input is not mutated.
func (g *Generator) Generate(ctx context.Context, inv *Invoice) (*Result, error) {
	res, err := g.p.Generate(ctx, inv)
	if err != nil {
		return nil, err
	}
	return &Result{
		Document:       res.Document,
		AttachmentName: res.AttachmentName,
		Invoice:        res.Invoice,
		Report:         res.Report,
	}, nil
}

// ComputeTotals validates the invoice and returns an enriched copy with line
// nets and totals populated, without producing a document.
func (g *Generator) ComputeTotals(ctx context.Context, inv *Invoice) (*Invoice, error) {
	return g.p.Preview(ctx, inv)
}

// Validate runs the read-only compliance check on an existing document.
func (g *Generator) Validate(data []byte) *Report {
	return g.p.ValidateDocument(data)
}
