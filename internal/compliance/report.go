// Package compliance verifies finished hybrid documents: archival structure
// on the container and schema conformance on the embedded dataset. Findings
// are advisory data, not errors; callers decide what a violation means.
package compliance

import "fmt"

// Stage names the layer a finding belongs to.
type Stage string

const (
	StageArchival Stage = "archival"
	StageSchema   Stage = "schema"
)

// Violation codes for the archival container.
const (
	NotAPDF               = "NOT_A_PDF"
	EncryptionForbidden   = "ENCRYPTION_FORBIDDEN"
	MetadataMissing       = "METADATA_MISSING"
	PDFAIdMissing         = "PDFA_ID_MISSING"
	XMPAttachmentMismatch = "XMP_ATTACHMENT_MISMATCH"
	AttachmentMissing     = "ATTACHMENT_MISSING"
	AFRelationshipMissing = "AF_RELATIONSHIP_MISSING"
	OutputIntentMissing   = "OUTPUT_INTENT_MISSING"
	ColorProfileMissing   = "COLOR_PROFILE_MISSING"
	DocInfoIncomplete     = "DOC_INFO_INCOMPLETE"
)

// Violation codes for the embedded dataset.
const (
	InvalidXML           = "INVALID_XML"
	UnknownProfile       = "UNKNOWN_PROFILE"
	RequiredFieldMissing = "REQUIRED_FIELD_MISSING"
	TotalsMismatch       = "TOTALS_MISMATCH"
)

// Violation is a single compliance finding.
type Violation struct {
	Stage   Stage  `json:"stage"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("[%s] %s: %s", v.Stage, v.Code, v.Message)
}

// Report aggregates all findings for one document.
type Report struct {
	Compliant  bool        `json:"compliant"`
	Profile    string      `json:"profile,omitempty"`
	Violations []Violation `json:"violations"`
}

func (r *Report) add(stage Stage, code, format string, args ...any) {
	r.Violations = append(r.Violations, Violation{
		Stage:   stage,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	})
}

// finalize settles the Compliant flag once all checks ran.
func (r *Report) finalize() *Report {
	r.Compliant = len(r.Violations) == 0
	if r.Violations == nil {
		r.Violations = []Violation{}
	}
	return r
}
