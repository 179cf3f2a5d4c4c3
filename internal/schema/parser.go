package schema

import (
	"errors"
	"fmt"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/rezonia/invoice-generator/internal/model"
)

// ErrUnknownGuideline marks a dataset declaring a guideline identifier no
// supported profile maps to.
var ErrUnknownGuideline = errors.New("unknown guideline identifier")

// Parse reads a CII document back into an Invoice. Used for round-trip
// verification and by the compliance validator's embedded-schema check.
// The declared profile is resolved from the guideline identifier.
func Parse(data []byte) (*model.Invoice, Profile, error) {
	tree := etree.NewDocument()
	if err := tree.ReadFromBytes(data); err != nil {
		return nil, "", fmt.Errorf("failed to parse XML: %w", err)
	}
	root := tree.Root()
	if root == nil {
		return nil, "", fmt.Errorf("empty XML document")
	}
	if root.Tag != "CrossIndustryInvoice" {
		return nil, "", fmt.Errorf("unexpected root element %q", root.Tag)
	}

	guideline := text(root, "rsm:ExchangedDocumentContext/ram:GuidelineSpecifiedDocumentContextParameter/ram:ID")
	profile, ok := ProfileForGuideline(guideline)
	if !ok {
		return nil, "", fmt.Errorf("%w: %q", ErrUnknownGuideline, guideline)
	}

	inv := &model.Invoice{}

	doc := root.FindElement("rsm:ExchangedDocument")
	if doc == nil {
		return nil, "", fmt.Errorf("missing rsm:ExchangedDocument")
	}
	inv.Number = text(doc, "ram:ID")
	if t, err := parseDate(doc, "ram:IssueDateTime"); err == nil {
		inv.IssueDate = t
	}
	inv.Notes = text(doc, "ram:IncludedNote/ram:Content")

	tx := root.FindElement("rsm:SupplyChainTradeTransaction")
	if tx == nil {
		return nil, "", fmt.Errorf("missing rsm:SupplyChainTradeTransaction")
	}

	if agreement := tx.FindElement("ram:ApplicableHeaderTradeAgreement"); agreement != nil {
		inv.BuyerReference = text(agreement, "ram:BuyerReference")
		inv.OrderReference = text(agreement, "ram:BuyerOrderReferencedDocument/ram:IssuerAssignedID")
		if el := agreement.FindElement("ram:SellerTradeParty"); el != nil {
			inv.Seller = parseParty(el)
		}
		if el := agreement.FindElement("ram:BuyerTradeParty"); el != nil {
			inv.Buyer = parseParty(el)
		}
	}

	for _, line := range tx.FindElements("ram:IncludedSupplyChainTradeLineItem") {
		item, err := parseLineItem(line)
		if err != nil {
			return nil, "", err
		}
		inv.Items = append(inv.Items, item)
	}

	settlement := tx.FindElement("ram:ApplicableHeaderTradeSettlement")
	if settlement == nil {
		return nil, "", fmt.Errorf("missing ram:ApplicableHeaderTradeSettlement")
	}
	inv.Currency = text(settlement, "ram:InvoiceCurrencyCode")

	if iban := text(settlement, "ram:SpecifiedTradeSettlementPaymentMeans/ram:PayeePartyCreditorFinancialAccount/ram:IBANID"); iban != "" {
		inv.Bank = &model.BankDetails{
			IBAN:          iban,
			BIC:           text(settlement, "ram:SpecifiedTradeSettlementPaymentMeans/ram:PayeeSpecifiedCreditorFinancialInstitution/ram:BICID"),
			AccountHolder: text(settlement, "ram:SpecifiedTradeSettlementPaymentMeans/ram:PayeePartyCreditorFinancialAccount/ram:AccountName"),
		}
	}

	if terms := settlement.FindElement("ram:SpecifiedTradePaymentTerms"); terms != nil {
		inv.PaymentTerms = text(terms, "ram:Description")
		if t, err := parseDate(terms, "ram:DueDateDateTime"); err == nil {
			inv.DueDate = &t
		}
	}

	totals, err := parseTotals(settlement)
	if err != nil {
		return nil, "", err
	}
	inv.Totals = totals

	return inv, profile, nil
}

func parseParty(el *etree.Element) model.Party {
	p := model.Party{
		Name:        text(el, "ram:Name"),
		ContactName: text(el, "ram:DefinedTradeContact/ram:PersonName"),
		Phone:       text(el, "ram:DefinedTradeContact/ram:TelephoneUniversalCommunication/ram:CompleteNumber"),
		Email:       text(el, "ram:DefinedTradeContact/ram:EmailURIUniversalCommunication/ram:URIID"),
	}
	if addr := el.FindElement("ram:PostalTradeAddress"); addr != nil {
		p.PostalCode = text(addr, "ram:PostcodeCode")
		p.Street = text(addr, "ram:LineOne")
		p.City = text(addr, "ram:CityName")
		p.CountryCode = text(addr, "ram:CountryID")
	}
	p.VATID = text(el, "ram:SpecifiedTaxRegistration/ram:ID")
	return p
}

func parseLineItem(line *etree.Element) (model.LineItem, error) {
	item := model.LineItem{
		Description: text(line, "ram:SpecifiedTradeProduct/ram:Name"),
	}

	var err error
	if item.Quantity, err = parseDecimal(line, "ram:SpecifiedLineTradeDelivery/ram:BilledQuantity"); err != nil {
		return item, err
	}
	if qty := line.FindElement("ram:SpecifiedLineTradeDelivery/ram:BilledQuantity"); qty != nil {
		item.Unit = qty.SelectAttrValue("unitCode", "")
	}
	if item.UnitPrice, err = parseDecimal(line, "ram:SpecifiedLineTradeAgreement/ram:NetPriceProductTradePrice/ram:ChargeAmount"); err != nil {
		return item, err
	}
	if item.VATRate, err = parseDecimal(line, "ram:SpecifiedLineTradeSettlement/ram:ApplicableTradeTax/ram:RateApplicablePercent"); err != nil {
		return item, err
	}
	if item.Net, err = parseDecimal(line, "ram:SpecifiedLineTradeSettlement/ram:SpecifiedTradeSettlementLineMonetarySummation/ram:LineTotalAmount"); err != nil {
		return item, err
	}
	return item, nil
}

func parseTotals(settlement *etree.Element) (*model.TotalsSummary, error) {
	sum := settlement.FindElement("ram:SpecifiedTradeSettlementHeaderMonetarySummation")
	if sum == nil {
		return nil, fmt.Errorf("missing monetary summation")
	}

	totals := &model.TotalsSummary{}
	var err error
	if totals.TotalNet, err = parseDecimal(sum, "ram:LineTotalAmount"); err != nil {
		return nil, err
	}
	if totals.TotalVAT, err = parseDecimal(sum, "ram:TaxTotalAmount"); err != nil {
		return nil, err
	}
	if totals.TotalGross, err = parseDecimal(sum, "ram:GrandTotalAmount"); err != nil {
		return nil, err
	}

	for _, taxEl := range settlement.FindElements("ram:ApplicableTradeTax") {
		group := model.RateGroup{}
		if group.Rate, err = parseDecimal(taxEl, "ram:RateApplicablePercent"); err != nil {
			return nil, err
		}
		if group.Net, err = parseDecimal(taxEl, "ram:BasisAmount"); err != nil {
			return nil, err
		}
		if group.VAT, err = parseDecimal(taxEl, "ram:CalculatedAmount"); err != nil {
			return nil, err
		}
		totals.ByRate = append(totals.ByRate, group)
	}
	return totals, nil
}

func text(el *etree.Element, path string) string {
	if found := el.FindElement(path); found != nil {
		return found.Text()
	}
	return ""
}

func parseDecimal(el *etree.Element, path string) (decimal.Decimal, error) {
	s := text(el, path)
	if s == "" {
		return decimal.Zero, fmt.Errorf("missing decimal value at %s", path)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal %q at %s: %w", s, path, err)
	}
	return d, nil
}

func parseDate(el *etree.Element, path string) (time.Time, error) {
	s := text(el, path+"/udt:DateTimeString")
	if s == "" {
		return time.Time{}, fmt.Errorf("missing date at %s", path)
	}
	return time.Parse(ciiDateFormat, s)
}
