package compose

import (
	"bytes"
	"fmt"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

const (
	outputConditionID = "sRGB IEC61966-2.1"
	colorRegistry     = "http://www.color.org"
)

// embedParams describes everything injected into the rendered page stack to
// turn it into a hybrid archival document.
type embedParams struct {
	AttachmentName string
	Attachment     []byte
	XMP            []byte
	ICCProfile     []byte // optional; OutputIntent is written without a profile stream when nil
	Now            time.Time
}

// embedStructured rewrites the visual PDF so it carries the structured
// dataset as an associated file, the archival XMP packet and an sRGB output
// intent. The page content is left untouched.
func embedStructured(visual []byte, p embedParams) ([]byte, error) {
	ctx, err := api.ReadContext(bytes.NewReader(visual), model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("read rendered document: %w", err)
	}
	xref := ctx.XRefTable

	fileSpecRef, err := attachFileSpec(xref, p)
	if err != nil {
		return nil, err
	}

	rootDict, err := xref.Catalog()
	if err != nil {
		return nil, fmt.Errorf("resolve document catalog: %w", err)
	}

	// Register the attachment in the name tree and as an associated file.
	rootDict["Names"] = types.Dict(map[string]types.Object{
		"EmbeddedFiles": types.Dict(map[string]types.Object{
			"Names": types.Array{types.StringLiteral(p.AttachmentName), *fileSpecRef},
		}),
	})
	rootDict["AF"] = types.Array{*fileSpecRef}

	metaRef, err := metadataStream(xref, p.XMP)
	if err != nil {
		return nil, err
	}
	rootDict["Metadata"] = *metaRef

	intent, err := outputIntent(xref, p.ICCProfile)
	if err != nil {
		return nil, err
	}
	rootDict["OutputIntents"] = types.Array{intent}

	var out bytes.Buffer
	if err := api.WriteContext(ctx, &out); err != nil {
		return nil, fmt.Errorf("write hybrid document: %w", err)
	}
	return out.Bytes(), nil
}

// attachFileSpec stores the dataset as an EmbeddedFile stream and returns the
// indirect reference of its file specification dictionary.
func attachFileSpec(xref *model.XRefTable, p embedParams) (*types.IndirectRef, error) {
	sd, err := xref.NewStreamDictForBuf(p.Attachment)
	if err != nil {
		return nil, fmt.Errorf("create embedded file stream: %w", err)
	}
	sd.InsertName("Type", "EmbeddedFile")
	sd.Insert("Subtype", types.Name("text/xml"))
	sd.Insert("Params", types.Dict(map[string]types.Object{
		"ModDate": types.StringLiteral(types.DateString(p.Now)),
		"Size":    types.Integer(len(p.Attachment)),
	}))
	if err := sd.Encode(); err != nil {
		return nil, fmt.Errorf("encode embedded file stream: %w", err)
	}
	fileRef, err := xref.IndRefForNewObject(*sd)
	if err != nil {
		return nil, fmt.Errorf("register embedded file stream: %w", err)
	}

	fileSpec := types.Dict(map[string]types.Object{
		"Type":           types.Name("Filespec"),
		"F":              types.StringLiteral(p.AttachmentName),
		"UF":             types.StringLiteral(p.AttachmentName),
		"Desc":           types.StringLiteral("Factur-X structured invoice"),
		"AFRelationship": types.Name("Alternative"),
		"EF": types.Dict(map[string]types.Object{
			"F":  *fileRef,
			"UF": *fileRef,
		}),
	})
	fileSpecRef, err := xref.IndRefForNewObject(fileSpec)
	if err != nil {
		return nil, fmt.Errorf("register file specification: %w", err)
	}
	return fileSpecRef, nil
}

// metadataStream registers the XMP packet. The stream stays uncompressed as
// PDF/A requires metadata to be readable without filters, so it is assembled
// without a filter pipeline and the length fields are set directly.
func metadataStream(xref *model.XRefTable, xmp []byte) (*types.IndirectRef, error) {
	sd := types.StreamDict{
		Dict:    types.NewDict(),
		Content: xmp,
	}
	sd.InsertName("Type", "Metadata")
	sd.InsertName("Subtype", "XML")
	if err := sd.Encode(); err != nil {
		return nil, fmt.Errorf("encode metadata stream: %w", err)
	}

	ref, err := xref.IndRefForNewObject(sd)
	if err != nil {
		return nil, fmt.Errorf("register metadata stream: %w", err)
	}
	return ref, nil
}

// outputIntent builds the GTS_PDFA1 output intent. When an ICC profile is
// configured it is attached as DestOutputProfile; otherwise the intent only
// names the sRGB output condition.
func outputIntent(xref *model.XRefTable, icc []byte) (types.Dict, error) {
	intent := types.Dict(map[string]types.Object{
		"Type":                      types.Name("OutputIntent"),
		"S":                         types.Name("GTS_PDFA1"),
		"OutputConditionIdentifier": types.StringLiteral(outputConditionID),
		"Info":                      types.StringLiteral(outputConditionID),
		"RegistryName":              types.StringLiteral(colorRegistry),
	})

	if len(icc) > 0 {
		sd, err := xref.NewStreamDictForBuf(icc)
		if err != nil {
			return nil, fmt.Errorf("create color profile stream: %w", err)
		}
		sd.InsertInt("N", 3)
		if err := sd.Encode(); err != nil {
			return nil, fmt.Errorf("encode color profile stream: %w", err)
		}
		profileRef, err := xref.IndRefForNewObject(*sd)
		if err != nil {
			return nil, fmt.Errorf("register color profile stream: %w", err)
		}
		intent["DestOutputProfile"] = *profileRef
	}

	return intent, nil
}
