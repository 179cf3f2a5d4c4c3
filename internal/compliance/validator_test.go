package compliance_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/invoice-generator/internal/compliance"
)

// bareMinimumPDF builds a readable single-page document with no metadata,
// attachments or output intent. The cross-reference offsets are computed
// while writing so the document parses cleanly.
func bareMinimumPDF(t *testing.T) []byte {
	t.Helper()

	var b bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, b.Len())
		b.WriteString(body)
	}

	b.WriteString("%PDF-1.7\n")
	obj("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	obj("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")
	obj("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] >>\nendobj\n")

	xrefOffset := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(offsets)+1, xrefOffset)

	return b.Bytes()
}

func TestValidate_NotAPDF(t *testing.T) {
	v := compliance.NewValidator()

	report := v.Validate([]byte("plain text, certainly not a document"))

	assert.False(t, report.Compliant)
	require.NotEmpty(t, report.Violations)
	assert.Equal(t, compliance.StageArchival, report.Violations[0].Stage)
	assert.Equal(t, compliance.NotAPDF, report.Violations[0].Code)
}

func TestValidate_TruncatedPDF(t *testing.T) {
	v := compliance.NewValidator()

	// Valid header, garbage body: readable as "a PDF" only up to parsing.
	report := v.Validate([]byte("%PDF-1.7\nthis is not a cross reference table"))

	assert.False(t, report.Compliant)
	codes := make([]string, 0, len(report.Violations))
	for _, violation := range report.Violations {
		codes = append(codes, violation.Code)
	}
	assert.Contains(t, codes, compliance.NotAPDF)
}

func TestValidate_PlainPDFWithoutMetadata(t *testing.T) {
	v := compliance.NewValidator()

	report := v.Validate(bareMinimumPDF(t))

	require.False(t, report.Compliant)

	var metadata *compliance.Violation
	codes := make([]string, 0, len(report.Violations))
	for i, violation := range report.Violations {
		codes = append(codes, violation.Code)
		if violation.Code == compliance.MetadataMissing {
			metadata = &report.Violations[i]
		}
	}

	require.NotNil(t, metadata, "codes: %v", codes)
	assert.Equal(t, compliance.StageArchival, metadata.Stage)

	// A plain render is missing the whole archival apparatus, not just XMP.
	assert.Contains(t, codes, compliance.AttachmentMissing)
	assert.Contains(t, codes, compliance.OutputIntentMissing)
	assert.NotContains(t, codes, compliance.NotAPDF)
}

func TestViolation_String(t *testing.T) {
	v := compliance.Violation{
		Stage:   compliance.StageSchema,
		Code:    compliance.TotalsMismatch,
		Message: "net 1.00 plus VAT 0.19 does not match gross 2.00",
	}
	s := v.String()
	assert.Contains(t, s, "schema")
	assert.Contains(t, s, compliance.TotalsMismatch)
	assert.Contains(t, s, "1.00")
}
