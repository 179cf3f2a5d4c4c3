package compliance

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// containerFacts is what the archival stage hands to the schema stage: the
// extracted dataset plus the names needed for cross-checks.
type containerFacts struct {
	dataset        []byte
	attachmentName string
	declaredName   string
}

// checkArchival inspects the container structure and records findings on the
// report. It returns the extracted facts; dataset is nil when no structured
// attachment could be located.
func checkArchival(data []byte, conf *model.Configuration, report *Report) *containerFacts {
	facts := &containerFacts{}

	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		report.add(StageArchival, NotAPDF, "document does not start with a PDF header")
		return facts
	}

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		report.add(StageArchival, NotAPDF, "document structure is unreadable: %v", err)
		return facts
	}
	xref := ctx.XRefTable

	if ctx.Encrypt != nil {
		report.add(StageArchival, EncryptionForbidden, "archival documents must not be encrypted")
	}

	rootDict, err := xref.Catalog()
	if err != nil {
		report.add(StageArchival, NotAPDF, "document catalog is unreadable: %v", err)
		return facts
	}

	checkMetadata(xref, rootDict, report, facts)
	checkAttachment(xref, rootDict, report, facts)
	checkOutputIntent(xref, rootDict, report)
	checkDocInfo(xref, report)

	return facts
}

// checkMetadata verifies the XMP packet: present, archival identification
// part 3, and a declared dataset filename. The filename cross-check against
// the real attachment happens in checkAttachment, once that name is known.
func checkMetadata(xref *model.XRefTable, rootDict types.Dict, report *Report, facts *containerFacts) {
	obj, found := rootDict.Find("Metadata")
	if !found {
		report.add(StageArchival, MetadataMissing, "document carries no XMP metadata stream")
		return
	}
	xmp, err := streamContent(xref, obj)
	if err != nil {
		report.add(StageArchival, MetadataMissing, "XMP metadata stream is unreadable: %v", err)
		return
	}

	tree := etree.NewDocument()
	if err := tree.ReadFromBytes(xmp); err != nil {
		report.add(StageArchival, MetadataMissing, "XMP metadata is not well-formed XML: %v", err)
		return
	}

	part := xmpValue(tree, "pdfaid:part")
	conformance := xmpValue(tree, "pdfaid:conformance")
	if part != "3" || conformance == "" {
		report.add(StageArchival, PDFAIdMissing,
			"XMP lacks archival identification (part=%q conformance=%q)", part, conformance)
	}

	declared := xmpValue(tree, "fx:DocumentFileName")
	if declared == "" {
		report.add(StageArchival, XMPAttachmentMismatch,
			"XMP does not name the structured dataset")
		return
	}
	// Deferred until the attachment name is known.
	facts.declaredName = declared
}

func checkAttachment(xref *model.XRefTable, rootDict types.Dict, report *Report, facts *containerFacts) {
	names, err := xref.DereferenceDict(rootDict["Names"])
	if err != nil || names == nil {
		report.add(StageArchival, AttachmentMissing, "document has no embedded files name tree")
		return
	}
	embedded, err := xref.DereferenceDict(names["EmbeddedFiles"])
	if err != nil || embedded == nil {
		report.add(StageArchival, AttachmentMissing, "document has no embedded files name tree")
		return
	}
	entries, err := xref.DereferenceArray(embedded["Names"])
	if err != nil || len(entries) < 2 {
		report.add(StageArchival, AttachmentMissing, "embedded files name tree is empty")
		return
	}

	var fileSpec types.Dict
	for i := 0; i+1 < len(entries); i += 2 {
		name, ok := entries[i].(types.StringLiteral)
		if !ok {
			continue
		}
		spec, err := xref.DereferenceDict(entries[i+1])
		if err != nil || spec == nil {
			continue
		}
		if strings.HasSuffix(name.Value(), ".xml") {
			facts.attachmentName = name.Value()
			fileSpec = spec
			break
		}
	}
	if fileSpec == nil {
		report.add(StageArchival, AttachmentMissing, "no structured XML attachment found")
		return
	}

	if rel := fileSpec.NameEntry("AFRelationship"); rel == nil || *rel != "Alternative" {
		report.add(StageArchival, AFRelationshipMissing,
			"attachment %s is not declared as an alternative representation", facts.attachmentName)
	}
	if af, err := xref.DereferenceArray(rootDict["AF"]); err != nil || len(af) == 0 {
		report.add(StageArchival, AFRelationshipMissing,
			"document catalog carries no associated files array")
	}

	ef, err := xref.DereferenceDict(fileSpec["EF"])
	if err != nil || ef == nil {
		report.add(StageArchival, AttachmentMissing,
			"attachment %s has no embedded file stream", facts.attachmentName)
		return
	}
	dataset, err := streamContent(xref, ef["F"])
	if err != nil {
		report.add(StageArchival, AttachmentMissing,
			"attachment %s stream is unreadable: %v", facts.attachmentName, err)
		return
	}
	facts.dataset = dataset

	if facts.declaredName != "" && facts.declaredName != facts.attachmentName {
		report.add(StageArchival, XMPAttachmentMismatch,
			"XMP names dataset %q but the attachment is %q", facts.declaredName, facts.attachmentName)
	}
}

func checkOutputIntent(xref *model.XRefTable, rootDict types.Dict, report *Report) {
	intents, err := xref.DereferenceArray(rootDict["OutputIntents"])
	if err != nil || len(intents) == 0 {
		report.add(StageArchival, OutputIntentMissing, "document declares no archival output intent")
		return
	}
	for _, obj := range intents {
		intent, err := xref.DereferenceDict(obj)
		if err != nil || intent == nil {
			continue
		}
		if s := intent.NameEntry("S"); s == nil || *s != "GTS_PDFA1" {
			continue
		}
		if _, found := intent.Find("DestOutputProfile"); !found {
			report.add(StageArchival, ColorProfileMissing,
				"output intent carries no destination color profile")
		}
		return
	}
	report.add(StageArchival, OutputIntentMissing, "document declares no archival output intent")
}

func checkDocInfo(xref *model.XRefTable, report *Report) {
	if xref.Info == nil {
		report.add(StageArchival, DocInfoIncomplete, "document information dictionary is absent")
		return
	}
	info, err := xref.DereferenceDict(*xref.Info)
	if err != nil || info == nil {
		report.add(StageArchival, DocInfoIncomplete, "document information dictionary is unreadable")
		return
	}
	for _, key := range []string{"Title", "Creator"} {
		if _, found := info.Find(key); !found {
			report.add(StageArchival, DocInfoIncomplete,
				"document information lacks %s", key)
		}
	}
}

// streamContent dereferences and decodes a stream object.
func streamContent(xref *model.XRefTable, obj types.Object) ([]byte, error) {
	o, err := xref.Dereference(obj)
	if err != nil {
		return nil, err
	}
	sd, ok := o.(types.StreamDict)
	if !ok {
		return nil, fmt.Errorf("object is not a stream")
	}
	if err := sd.Decode(); err != nil {
		return nil, err
	}
	return sd.Content, nil
}

// xmpValue reads an XMP property either as an element or as an attribute on
// an rdf:Description, both of which are valid serializations.
func xmpValue(tree *etree.Document, name string) string {
	if el := tree.FindElement("//" + name); el != nil {
		return strings.TrimSpace(el.Text())
	}
	for _, desc := range tree.FindElements("//rdf:Description") {
		if attr := desc.SelectAttrValue(name, ""); attr != "" {
			return attr
		}
	}
	return ""
}
