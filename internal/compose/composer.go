// Package compose renders the human-readable invoice pages and folds the
// structured dataset into them, producing one hybrid archival document.
package compose

import (
	"time"

	"github.com/rezonia/invoice-generator/internal/model"
	"github.com/rezonia/invoice-generator/internal/money"
	"github.com/rezonia/invoice-generator/internal/schema"
)

// DefaultAttachmentName is the filename archival readers look up to locate
// the structured dataset.
const DefaultAttachmentName = "factur-x.xml"

// Config controls document composition.
type Config struct {
	// CreatorTool and Producer populate document info and XMP.
	CreatorTool string
	Producer    string

	// AttachmentName overrides DefaultAttachmentName.
	AttachmentName string

	// ICCProfile holds an sRGB ICC profile embedded as DestOutputProfile.
	// Optional; without it the output intent names the condition only.
	ICCProfile []byte

	// StrictArchival makes a missing ICC profile a hard failure instead of
	// a downstream compliance finding.
	StrictArchival bool

	// Places resolves minor-unit precision per currency; nil falls back to
	// the ISO-4217 table.
	Places func(currency string) int32

	// Now stamps creation and modification dates; nil uses time.Now.
	Now func() time.Time
}

// HybridDocument is the composed output: one byte stream that is both the
// visual rendering and the carrier of the machine-readable dataset.
type HybridDocument struct {
	Bytes          []byte
	AttachmentName string
	Profile        schema.Profile
}

// Composer builds hybrid documents.
type Composer struct {
	cfg Config
}

// NewComposer validates the configuration and applies defaults.
func NewComposer(cfg Config) (*Composer, error) {
	if cfg.StrictArchival && len(cfg.ICCProfile) == 0 {
		return nil, model.NewCompositionError(model.ArchivalPrerequisiteMissing,
			"strict archival mode requires an ICC color profile", nil)
	}
	if cfg.AttachmentName == "" {
		cfg.AttachmentName = DefaultAttachmentName
	}
	if cfg.CreatorTool == "" {
		cfg.CreatorTool = "invoice-generator"
	}
	if cfg.Producer == "" {
		cfg.Producer = cfg.CreatorTool
	}
	if cfg.Places == nil {
		cfg.Places = func(currency string) int32 {
			n, _ := money.MinorUnits(currency)
			return n
		}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Composer{cfg: cfg}, nil
}

// Compose renders the enriched invoice and embeds the structured document.
// Failures while rendering or embedding surface as CompositionErrors; the
// input invoice and document are never mutated.
func (c *Composer) Compose(inv *model.Invoice, doc *schema.Document) (*HybridDocument, error) {
	dataset, err := doc.Bytes()
	if err != nil {
		return nil, model.NewCompositionError(model.EmbedFailed,
			"failed to serialize structured document", err)
	}

	visual, err := renderVisual(inv, c.cfg.Places(inv.Currency), c.cfg.CreatorTool)
	if err != nil {
		return nil, model.NewCompositionError(model.EmbedFailed,
			"failed to render visual document", err)
	}

	now := c.cfg.Now().UTC()
	xmp, err := BuildXMP(XMPInfo{
		Title:            "Invoice " + inv.Number,
		CreatorTool:      c.cfg.CreatorTool,
		Producer:         c.cfg.Producer,
		AttachmentName:   c.cfg.AttachmentName,
		ConformanceLabel: doc.Profile.ConformanceLabel(),
		CreateDate:       now.Format(time.RFC3339),
	})
	if err != nil {
		return nil, model.NewCompositionError(model.EmbedFailed,
			"failed to build metadata packet", err)
	}

	out, err := embedStructured(visual, embedParams{
		AttachmentName: c.cfg.AttachmentName,
		Attachment:     dataset,
		XMP:            xmp,
		ICCProfile:     c.cfg.ICCProfile,
		Now:            now,
	})
	if err != nil {
		return nil, model.NewCompositionError(model.EmbedFailed,
			"failed to embed structured document", err)
	}

	return &HybridDocument{
		Bytes:          out,
		AttachmentName: c.cfg.AttachmentName,
		Profile:        doc.Profile,
	}, nil
}
