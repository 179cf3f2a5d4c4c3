// Package schema maps validated invoices onto the UN/CEFACT Cross-Industry
// Invoice document embedded in the hybrid PDF, and parses such documents back.
package schema

import (
	"github.com/rezonia/invoice-generator/internal/model"
)

// Profile is a conformance level: a named subset of mandatory fields the
// structured dataset must satisfy.
type Profile string

const (
	ProfileBasic    Profile = "basic"
	ProfileEN16931  Profile = "en16931"
	ProfileExtended Profile = "extended"
)

// Guideline identifiers written into
// ram:GuidelineSpecifiedDocumentContextParameter.
const (
	guidelineBasic    = "urn:cen.eu:en16931:2017#compliant#urn:factur-x.eu:1p0:basic"
	guidelineEN16931  = "urn:cen.eu:en16931:2017"
	guidelineExtended = "urn:cen.eu:en16931:2017#conformant#urn:factur-x.eu:1p0:extended"
)

// ParseProfile validates a profile name from configuration or request input.
func ParseProfile(s string) (Profile, error) {
	switch Profile(s) {
	case ProfileBasic, ProfileEN16931, ProfileExtended:
		return Profile(s), nil
	}
	return "", &model.GenerationError{
		Code:    model.UnsupportedProfile,
		Profile: s,
		Message: "unknown conformance profile",
	}
}

// GuidelineID returns the guideline URN declared in the document context.
func (p Profile) GuidelineID() string {
	switch p {
	case ProfileEN16931:
		return guidelineEN16931
	case ProfileExtended:
		return guidelineExtended
	default:
		return guidelineBasic
	}
}

// ConformanceLabel is the value written into the XMP Factur-X extension
// schema (fx:ConformanceLevel).
func (p Profile) ConformanceLabel() string {
	switch p {
	case ProfileEN16931:
		return "EN 16931"
	case ProfileExtended:
		return "EXTENDED"
	default:
		return "BASIC"
	}
}

// ProfileForGuideline resolves a guideline URN back to its profile.
func ProfileForGuideline(urn string) (Profile, bool) {
	switch urn {
	case guidelineBasic:
		return ProfileBasic, true
	case guidelineEN16931:
		return ProfileEN16931, true
	case guidelineExtended:
		return ProfileExtended, true
	}
	return "", false
}

// fieldRequirement binds a field path to its accessor, so that missing-field
// diagnostics carry the exact path the caller must fill in.
type fieldRequirement struct {
	path string
	get  func(*model.Invoice) string
}

var baseRequirements = []fieldRequirement{
	{"number", func(inv *model.Invoice) string { return inv.Number }},
	{"currency", func(inv *model.Invoice) string { return inv.Currency }},
	{"seller.name", func(inv *model.Invoice) string { return inv.Seller.Name }},
	{"seller.country_code", func(inv *model.Invoice) string { return inv.Seller.CountryCode }},
	{"buyer.name", func(inv *model.Invoice) string { return inv.Buyer.Name }},
	{"buyer.country_code", func(inv *model.Invoice) string { return inv.Buyer.CountryCode }},
}

var en16931Requirements = append(baseRequirements[:len(baseRequirements):len(baseRequirements)],
	fieldRequirement{"seller.vat_id", func(inv *model.Invoice) string { return inv.Seller.VATID }},
	fieldRequirement{"seller.street", func(inv *model.Invoice) string { return inv.Seller.Street }},
	fieldRequirement{"seller.postal_code", func(inv *model.Invoice) string { return inv.Seller.PostalCode }},
	fieldRequirement{"seller.city", func(inv *model.Invoice) string { return inv.Seller.City }},
	fieldRequirement{"buyer.street", func(inv *model.Invoice) string { return inv.Buyer.Street }},
	fieldRequirement{"buyer.postal_code", func(inv *model.Invoice) string { return inv.Buyer.PostalCode }},
	fieldRequirement{"buyer.city", func(inv *model.Invoice) string { return inv.Buyer.City }},
)

var extendedRequirements = append(en16931Requirements[:len(en16931Requirements):len(en16931Requirements)],
	fieldRequirement{"buyer.vat_id", func(inv *model.Invoice) string { return inv.Buyer.VATID }},
)

func (p Profile) requirements() []fieldRequirement {
	switch p {
	case ProfileEN16931:
		return en16931Requirements
	case ProfileExtended:
		return extendedRequirements
	default:
		return baseRequirements
	}
}

// CheckRequired verifies that every field the profile mandates is satisfiable
// from the invoice. The first missing field aborts generation; the caller can
// retry with a laxer profile or more data.
func (p Profile) CheckRequired(inv *model.Invoice) *model.GenerationError {
	if inv.IssueDate.IsZero() {
		return model.NewMissingFieldError(string(p), "issue_date")
	}
	if len(inv.Items) == 0 {
		return model.NewMissingFieldError(string(p), "items")
	}
	for _, req := range p.requirements() {
		if req.get(inv) == "" {
			return model.NewMissingFieldError(string(p), req.path)
		}
	}
	return nil
}

// RequiredPaths lists the field paths the profile mandates, for diagnostics.
func (p Profile) RequiredPaths() []string {
	reqs := p.requirements()
	paths := make([]string, 0, len(reqs)+2)
	paths = append(paths, "issue_date", "items")
	for _, r := range reqs {
		paths = append(paths, r.path)
	}
	return paths
}

func (p Profile) String() string { return string(p) }
