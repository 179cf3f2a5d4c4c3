package compose

import (
	"github.com/beevik/etree"
)

// XMP namespaces required for PDF/A-3 identification and the Factur-X
// extension schema describing the embedded dataset.
const (
	nsRDF    = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	nsPDFAID = "http://www.aiim.org/pdfa/ns/id/"
	nsDC     = "http://purl.org/dc/elements/1.1/"
	nsXMP    = "http://ns.adobe.com/xap/1.0/"
	nsPDF    = "http://ns.adobe.com/pdf/1.3/"
	nsFX     = "urn:factur-x:pdfa:CrossIndustryDocument:invoice:1p0#"
)

// XMPInfo carries everything the archival standard requires in the metadata
// packet: PDF/A identification, document description and the Factur-X entry
// naming the embedded dataset and its conformance level.
type XMPInfo struct {
	Title            string
	CreatorTool      string
	Producer         string
	AttachmentName   string
	ConformanceLabel string
	CreateDate       string // RFC 3339
}

// BuildXMP serializes the XMP packet injected into the document catalog.
// PDF/A requires the packet itself to be uncompressed and self-contained.
func BuildXMP(info XMPInfo) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xpacket", `begin="" id="W5M0MpCehiHzreSzNTczkc9d"`)

	meta := doc.CreateElement("x:xmpmeta")
	meta.CreateAttr("xmlns:x", "adobe:ns:meta/")

	rdf := meta.CreateElement("rdf:RDF")
	rdf.CreateAttr("xmlns:rdf", nsRDF)

	// PDF/A-3B identification.
	pdfaid := description(rdf, "xmlns:pdfaid", nsPDFAID)
	pdfaid.CreateElement("pdfaid:part").SetText("3")
	pdfaid.CreateElement("pdfaid:conformance").SetText("B")

	// Dublin Core.
	dc := description(rdf, "xmlns:dc", nsDC)
	title := dc.CreateElement("dc:title").CreateElement("rdf:Alt").CreateElement("rdf:li")
	title.CreateAttr("xml:lang", "x-default")
	title.SetText(info.Title)

	// Basic schema.
	basic := description(rdf, "xmlns:xmp", nsXMP)
	basic.CreateElement("xmp:CreatorTool").SetText(info.CreatorTool)
	if info.CreateDate != "" {
		basic.CreateElement("xmp:CreateDate").SetText(info.CreateDate)
		basic.CreateElement("xmp:ModifyDate").SetText(info.CreateDate)
	}

	pdf := description(rdf, "xmlns:pdf", nsPDF)
	pdf.CreateElement("pdf:Producer").SetText(info.Producer)

	// Factur-X extension: names the embedded dataset so that archival
	// readers can locate and interpret it.
	fx := description(rdf, "xmlns:fx", nsFX)
	fx.CreateElement("fx:DocumentType").SetText("INVOICE")
	fx.CreateElement("fx:DocumentFileName").SetText(info.AttachmentName)
	fx.CreateElement("fx:Version").SetText("1.0")
	fx.CreateElement("fx:ConformanceLevel").SetText(info.ConformanceLabel)

	doc.CreateProcInst("xpacket", `end="w"`)
	doc.Indent(2)
	return doc.WriteToBytes()
}

func description(rdf *etree.Element, nsAttr, nsURI string) *etree.Element {
	d := rdf.CreateElement("rdf:Description")
	d.CreateAttr("rdf:about", "")
	d.CreateAttr(nsAttr, nsURI)
	return d
}
