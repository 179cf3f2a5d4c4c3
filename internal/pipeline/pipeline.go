// Package pipeline wires the five generation stages together: validation,
// tax computation, structured-document generation, composition and the final
// compliance check.
package pipeline

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/rezonia/invoice-generator/internal/compliance"
	"github.com/rezonia/invoice-generator/internal/compose"
	"github.com/rezonia/invoice-generator/internal/model"
	"github.com/rezonia/invoice-generator/internal/money"
	"github.com/rezonia/invoice-generator/internal/schema"
	"github.com/rezonia/invoice-generator/internal/tax"
	"github.com/rezonia/invoice-generator/pkg/logger"
)

// Config assembles a pipeline.
type Config struct {
	Profile schema.Profile

	// AllowedVATRates restricts line rates; empty accepts any non-negative
	// rate.
	AllowedVATRates []decimal.Decimal

	Rounding           money.RoundingPolicy
	MinorUnitOverrides map[string]int32

	CreatorTool    string
	Producer       string
	AttachmentName string
	ICCProfile     []byte
	StrictArchival bool

	Logger *logger.Logger
}

// Result is the outcome of a full generation run. Document is the hybrid
// byte stream; Report carries the post-composition compliance findings and is
// always populated, compliant or not.
type Result struct {
	Document       []byte
	AttachmentName string
	Invoice        *model.Invoice // enriched copy with computed totals
	Report         *compliance.Report
}

// Pipeline runs invoices through the generation stages.
type Pipeline struct {
	profile   schema.Profile
	rules     model.Rules
	engine    *tax.Engine
	generator *schema.Generator
	composer  *compose.Composer
	validator *compliance.Validator
	log       *logger.Logger
}

// New builds a pipeline. The configuration is checked up front so failures
// surface at startup rather than on the first invoice.
func New(cfg Config) (*Pipeline, error) {
	profile := cfg.Profile
	if profile == "" {
		profile = schema.ProfileEN16931
	}
	if _, err := schema.ParseProfile(string(profile)); err != nil {
		return nil, err
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	engine := tax.NewEngine(tax.Config{
		Rounding:           cfg.Rounding,
		MinorUnitOverrides: cfg.MinorUnitOverrides,
	})

	composer, err := compose.NewComposer(compose.Config{
		CreatorTool:    cfg.CreatorTool,
		Producer:       cfg.Producer,
		AttachmentName: cfg.AttachmentName,
		ICCProfile:     cfg.ICCProfile,
		StrictArchival: cfg.StrictArchival,
		Places:         engine.Places,
	})
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		profile:   profile,
		rules:     model.Rules{AllowedVATRates: cfg.AllowedVATRates, KnownCurrency: money.KnownCurrency},
		engine:    engine,
		generator: schema.NewGenerator(profile, engine.Places),
		composer:  composer,
		validator: compliance.NewValidator(),
		log:       log,
	}, nil
}

// Profile returns the conformance profile the pipeline generates at.
func (p *Pipeline) Profile() schema.Profile { return p.profile }

// Places returns the minor-unit precision applied for a currency.
func (p *Pipeline) Places(currency string) int32 { return p.engine.Places(currency) }

// Generate runs an invoice through all five stages. The input is never
// mutated; the enriched copy is returned on the result. A non-compliant
// report does not fail the run.
func (p *Pipeline) Generate(ctx context.Context, inv *model.Invoice) (*Result, error) {
	log := p.log.With().Str("invoice", inv.Number).Logger()

	enriched, err := p.Preview(ctx, inv)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("total_gross", enriched.Totals.TotalGross.String()).
		Int("rate_groups", len(enriched.Totals.ByRate)).
		Msg("totals computed")

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := p.generator.Generate(enriched)
	if err != nil {
		log.Warn().Err(err).Str("profile", string(p.profile)).Msg("structured document generation failed")
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hybrid, err := p.composer.Compose(enriched, doc)
	if err != nil {
		log.Error().Err(err).Msg("composition failed")
		return nil, err
	}

	report := p.validator.Validate(hybrid.Bytes)
	log.Info().
		Bool("compliant", report.Compliant).
		Int("violations", len(report.Violations)).
		Int("size", len(hybrid.Bytes)).
		Msg("document generated")

	return &Result{
		Document:       hybrid.Bytes,
		AttachmentName: hybrid.AttachmentName,
		Invoice:        enriched,
		Report:         report,
	}, nil
}

// Preview validates the invoice and computes totals without producing a
// document. Servers use it for quick totals endpoints.
func (p *Pipeline) Preview(ctx context.Context, inv *model.Invoice) (*model.Invoice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if verrs := model.Validate(inv, p.rules); verrs != nil {
		p.log.Debug().Int("violations", len(verrs.Violations)).Msg("invoice rejected")
		return nil, verrs
	}
	return p.engine.Enrich(inv), nil
}

// ValidateDocument runs the compliance check on an existing document.
func (p *Pipeline) ValidateDocument(data []byte) *compliance.Report {
	return p.validator.Validate(data)
}
