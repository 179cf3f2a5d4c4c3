package schema

import (
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/rezonia/invoice-generator/internal/model"
	"github.com/rezonia/invoice-generator/internal/money"
)

// CII namespaces (UN/CEFACT D16B, what ZUGFeRD 2 / Factur-X 1.0 embed).
const (
	nsRSM = "urn:un:unece:uncefact:data:standard:CrossIndustryInvoice:100"
	nsRAM = "urn:un:unece:uncefact:data:standard:ReusableAggregateBusinessInformationEntity:100"
	nsUDT = "urn:un:unece:uncefact:data:standard:UnqualifiedDataType:100"
)

// ciiDateFormat is qualifier 102 (CCYYMMDD) of udt:DateTimeString.
const ciiDateFormat = "20060102"

// typeCodeCommercialInvoice is UNTDID 1001 code 380.
const typeCodeCommercialInvoice = "380"

// Document is the structured machine-readable invoice representation. It
// wraps the XML tree; no file bytes are produced at this stage.
type Document struct {
	Profile Profile
	tree    *etree.Document
}

// Bytes serializes the document with a standalone XML declaration.
func (d *Document) Bytes() ([]byte, error) {
	d.tree.Indent(2)
	return d.tree.WriteToBytes()
}

// Root exposes the document root for read-only inspection.
func (d *Document) Root() *etree.Element {
	return d.tree.Root()
}

// Generator maps an invoice plus its computed totals onto the CII schema at
// a fixed conformance profile.
type Generator struct {
	profile Profile
	places  func(currency string) int32
}

// NewGenerator creates a generator for the profile. places resolves the
// minor-unit precision used when formatting amounts; nil falls back to the
// ISO-4217 table.
func NewGenerator(profile Profile, places func(string) int32) *Generator {
	if places == nil {
		places = func(currency string) int32 {
			n, _ := money.MinorUnits(currency)
			return n
		}
	}
	return &Generator{profile: profile, places: places}
}

// Profile returns the generator's conformance level.
func (g *Generator) Profile() Profile { return g.profile }

// Generate builds the structured document from an enriched invoice. The
// invoice must carry computed totals; every field the profile mandates must
// be present or generation fails with a GenerationError naming the field.
func (g *Generator) Generate(inv *model.Invoice) (*Document, error) {
	if err := g.profile.CheckRequired(inv); err != nil {
		return nil, err
	}
	if inv.Totals == nil {
		return nil, &model.GenerationError{
			Code:    model.MissingRequiredField,
			Field:   "totals",
			Profile: string(g.profile),
			Message: "invoice totals have not been computed",
		}
	}

	places := g.places(inv.Currency)
	amount := func(d decimal.Decimal) string { return d.StringFixed(places) }

	tree := etree.NewDocument()
	tree.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := tree.CreateElement("rsm:CrossIndustryInvoice")
	root.CreateAttr("xmlns:rsm", nsRSM)
	root.CreateAttr("xmlns:ram", nsRAM)
	root.CreateAttr("xmlns:udt", nsUDT)

	// Document context: declares the conformance profile.
	ctx := root.CreateElement("rsm:ExchangedDocumentContext")
	ctx.CreateElement("ram:GuidelineSpecifiedDocumentContextParameter").
		CreateElement("ram:ID").SetText(g.profile.GuidelineID())

	// Header document.
	doc := root.CreateElement("rsm:ExchangedDocument")
	doc.CreateElement("ram:ID").SetText(inv.Number)
	doc.CreateElement("ram:TypeCode").SetText(typeCodeCommercialInvoice)
	writeDate(doc.CreateElement("ram:IssueDateTime"), inv.IssueDate)
	if inv.Notes != "" {
		doc.CreateElement("ram:IncludedNote").
			CreateElement("ram:Content").SetText(inv.Notes)
	}

	tx := root.CreateElement("rsm:SupplyChainTradeTransaction")

	for i, item := range inv.Items {
		writeLineItem(tx, i+1, item, amount)
	}

	// Trade agreement: parties and references.
	agreement := tx.CreateElement("ram:ApplicableHeaderTradeAgreement")
	if inv.BuyerReference != "" {
		agreement.CreateElement("ram:BuyerReference").SetText(inv.BuyerReference)
	}
	writeParty(agreement.CreateElement("ram:SellerTradeParty"), inv.Seller)
	writeParty(agreement.CreateElement("ram:BuyerTradeParty"), inv.Buyer)
	if inv.OrderReference != "" {
		agreement.CreateElement("ram:BuyerOrderReferencedDocument").
			CreateElement("ram:IssuerAssignedID").SetText(inv.OrderReference)
	}

	// Delivery: the issue date doubles as delivery date when none is given,
	// mirroring the visual document.
	delivery := tx.CreateElement("ram:ApplicableHeaderTradeDelivery")
	writeDate(delivery.CreateElement("ram:ActualDeliverySupplyChainEvent").
		CreateElement("ram:OccurrenceDateTime"), inv.IssueDate)

	// Settlement: currency, payment means, tax breakdown, totals.
	settlement := tx.CreateElement("ram:ApplicableHeaderTradeSettlement")
	settlement.CreateElement("ram:InvoiceCurrencyCode").SetText(inv.Currency)

	if inv.Bank != nil {
		means := settlement.CreateElement("ram:SpecifiedTradeSettlementPaymentMeans")
		means.CreateElement("ram:TypeCode").SetText("58") // SEPA credit transfer
		account := means.CreateElement("ram:PayeePartyCreditorFinancialAccount")
		account.CreateElement("ram:IBANID").SetText(model.NormalizeIBAN(inv.Bank.IBAN))
		if inv.Bank.AccountHolder != "" {
			account.CreateElement("ram:AccountName").SetText(inv.Bank.AccountHolder)
		}
		if inv.Bank.BIC != "" {
			means.CreateElement("ram:PayeeSpecifiedCreditorFinancialInstitution").
				CreateElement("ram:BICID").SetText(inv.Bank.BIC)
		}
	}

	for _, group := range inv.Totals.ByRate {
		taxEl := settlement.CreateElement("ram:ApplicableTradeTax")
		taxEl.CreateElement("ram:CalculatedAmount").SetText(amount(group.VAT))
		taxEl.CreateElement("ram:TypeCode").SetText("VAT")
		taxEl.CreateElement("ram:BasisAmount").SetText(amount(group.Net))
		taxEl.CreateElement("ram:CategoryCode").SetText(vatCategory(group.Rate))
		taxEl.CreateElement("ram:RateApplicablePercent").SetText(group.Rate.String())
	}

	if inv.PaymentTerms != "" || inv.DueDate != nil {
		terms := settlement.CreateElement("ram:SpecifiedTradePaymentTerms")
		if inv.PaymentTerms != "" {
			terms.CreateElement("ram:Description").SetText(inv.PaymentTerms)
		}
		if inv.DueDate != nil {
			writeDate(terms.CreateElement("ram:DueDateDateTime"), *inv.DueDate)
		}
	}

	sum := settlement.CreateElement("ram:SpecifiedTradeSettlementHeaderMonetarySummation")
	sum.CreateElement("ram:LineTotalAmount").SetText(amount(inv.Totals.TotalNet))
	sum.CreateElement("ram:TaxBasisTotalAmount").SetText(amount(inv.Totals.TotalNet))
	taxTotal := sum.CreateElement("ram:TaxTotalAmount")
	taxTotal.CreateAttr("currencyID", inv.Currency)
	taxTotal.SetText(amount(inv.Totals.TotalVAT))
	sum.CreateElement("ram:GrandTotalAmount").SetText(amount(inv.Totals.TotalGross))
	sum.CreateElement("ram:DuePayableAmount").SetText(amount(inv.Totals.TotalGross))

	return &Document{Profile: g.profile, tree: tree}, nil
}

func writeLineItem(tx *etree.Element, number int, item model.LineItem, amount func(decimal.Decimal) string) {
	line := tx.CreateElement("ram:IncludedSupplyChainTradeLineItem")

	line.CreateElement("ram:AssociatedDocumentLineDocument").
		CreateElement("ram:LineID").SetText(strconv.Itoa(number))

	product := line.CreateElement("ram:SpecifiedTradeProduct")
	product.CreateElement("ram:Name").SetText(item.Description)

	line.CreateElement("ram:SpecifiedLineTradeAgreement").
		CreateElement("ram:NetPriceProductTradePrice").
		CreateElement("ram:ChargeAmount").SetText(item.UnitPrice.String())

	qty := line.CreateElement("ram:SpecifiedLineTradeDelivery").
		CreateElement("ram:BilledQuantity")
	unit := item.Unit
	if unit == "" {
		unit = model.UnitPiece
	}
	qty.CreateAttr("unitCode", unit)
	qty.SetText(item.Quantity.String())

	lineSettlement := line.CreateElement("ram:SpecifiedLineTradeSettlement")
	taxEl := lineSettlement.CreateElement("ram:ApplicableTradeTax")
	taxEl.CreateElement("ram:TypeCode").SetText("VAT")
	taxEl.CreateElement("ram:CategoryCode").SetText(vatCategory(item.VATRate))
	taxEl.CreateElement("ram:RateApplicablePercent").SetText(item.VATRate.String())
	lineSettlement.CreateElement("ram:SpecifiedTradeSettlementLineMonetarySummation").
		CreateElement("ram:LineTotalAmount").SetText(amount(item.Net))
}

func writeParty(el *etree.Element, p model.Party) {
	el.CreateElement("ram:Name").SetText(p.Name)
	if p.ContactName != "" || p.Phone != "" || p.Email != "" {
		contact := el.CreateElement("ram:DefinedTradeContact")
		if p.ContactName != "" {
			contact.CreateElement("ram:PersonName").SetText(p.ContactName)
		}
		if p.Phone != "" {
			contact.CreateElement("ram:TelephoneUniversalCommunication").
				CreateElement("ram:CompleteNumber").SetText(p.Phone)
		}
		if p.Email != "" {
			contact.CreateElement("ram:EmailURIUniversalCommunication").
				CreateElement("ram:URIID").SetText(p.Email)
		}
	}
	address := el.CreateElement("ram:PostalTradeAddress")
	if p.PostalCode != "" {
		address.CreateElement("ram:PostcodeCode").SetText(p.PostalCode)
	}
	if p.Street != "" {
		address.CreateElement("ram:LineOne").SetText(p.Street)
	}
	if p.City != "" {
		address.CreateElement("ram:CityName").SetText(p.City)
	}
	address.CreateElement("ram:CountryID").SetText(p.CountryCode)
	if p.VATID != "" {
		reg := el.CreateElement("ram:SpecifiedTaxRegistration").CreateElement("ram:ID")
		reg.CreateAttr("schemeID", "VA")
		reg.SetText(p.VATID)
	}
}

func writeDate(el *etree.Element, t time.Time) {
	ds := el.CreateElement("udt:DateTimeString")
	ds.CreateAttr("format", "102")
	ds.SetText(t.Format(ciiDateFormat))
}

// vatCategory maps a rate to its UNTDID 5305 category: S for standard or
// reduced rates, Z for zero-rated.
func vatCategory(rate decimal.Decimal) string {
	if rate.IsZero() {
		return "Z"
	}
	return "S"
}
