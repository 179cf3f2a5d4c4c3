package compose_test

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/invoice-generator/internal/compose"
)

func TestBuildXMP(t *testing.T) {
	data, err := compose.BuildXMP(compose.XMPInfo{
		Title:            "Invoice INV-2026-042",
		CreatorTool:      "invoice-generator",
		Producer:         "invoice-generator",
		AttachmentName:   "factur-x.xml",
		ConformanceLabel: "EN 16931",
		CreateDate:       "2026-03-15T10:00:00Z",
	})
	require.NoError(t, err)

	tree := etree.NewDocument()
	require.NoError(t, tree.ReadFromBytes(data))

	find := func(path string) string {
		el := tree.FindElement(path)
		require.NotNil(t, el, "missing %s", path)
		return el.Text()
	}

	// Archival identification.
	assert.Equal(t, "3", find("//pdfaid:part"))
	assert.Equal(t, "B", find("//pdfaid:conformance"))

	// Dataset declaration.
	assert.Equal(t, "INVOICE", find("//fx:DocumentType"))
	assert.Equal(t, "factur-x.xml", find("//fx:DocumentFileName"))
	assert.Equal(t, "EN 16931", find("//fx:ConformanceLevel"))
	assert.Equal(t, "1.0", find("//fx:Version"))

	// Description.
	assert.Equal(t, "Invoice INV-2026-042", find("//dc:title/rdf:Alt/rdf:li"))
	assert.Equal(t, "invoice-generator", find("//xmp:CreatorTool"))
	assert.Equal(t, "2026-03-15T10:00:00Z", find("//xmp:CreateDate"))
	assert.Equal(t, "invoice-generator", find("//pdf:Producer"))
}

func TestBuildXMP_PacketMarkers(t *testing.T) {
	data, err := compose.BuildXMP(compose.XMPInfo{
		Title:          "Invoice X",
		AttachmentName: "factur-x.xml",
	})
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, `<?xpacket begin=`)
	assert.Contains(t, s, `<?xpacket end="w"?>`)
	assert.Contains(t, s, "x:xmpmeta")
}
