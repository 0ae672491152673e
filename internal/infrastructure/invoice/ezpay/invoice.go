package ezpay

import "time"

// TaxType classifies an invoice or a single line item for tax purposes.
type TaxType string

const (
	TaxTypeTaxed   TaxType = "taxed"
	TaxTypeTaxFree TaxType = "tax_free"
	TaxTypeZeroTax TaxType = "zero_tax"
	TaxTypeSpecial TaxType = "special"
	// TaxTypeMixed is derived, never set on an item: items of differing tax
	// types on one invoice.
	TaxTypeMixed TaxType = "mixed"
)

// taxTypeCodes maps tax types to the platform's TaxType wire codes.
var taxTypeCodes = map[TaxType]string{
	TaxTypeTaxed:   "1",
	TaxTypeZeroTax: "2",
	TaxTypeTaxFree: "3",
	TaxTypeMixed:   "9",
}

// CarrierType selects where an issued e-invoice is delivered.
type CarrierType string

const (
	CarrierTypePrint    CarrierType = "print"
	CarrierTypeMobile   CarrierType = "mobile"
	CarrierTypeMOICA    CarrierType = "moica"
	CarrierTypeLoveCode CarrierType = "love_code"
	CarrierTypePlatform CarrierType = "platform"
)

// Carrier is the invoice delivery target. Code is required for mobile
// barcode, MOICA certificate and love code carriers.
type Carrier struct {
	Type CarrierType
	Code string
}

// Item is one invoice line item. An empty TaxType means taxed; an empty Unit
// falls back to the platform default.
type Item struct {
	Name      string
	UnitPrice int64
	Quantity  int64
	Unit      string
	TaxType   TaxType
}

// Invoice is a successfully issued e-invoice.
type Invoice struct {
	Items         []Item
	IssuedOn      time.Time
	InvoiceNumber string
	RandomCode    string
}

// deriveTaxType reduces the items' tax types to the invoice-level type.
func deriveTaxType(items []Item) TaxType {
	distinct := make(map[TaxType]struct{})
	for _, item := range items {
		t := item.TaxType
		if t == "" {
			t = TaxTypeTaxed
		}
		if t == TaxTypeSpecial {
			return TaxTypeSpecial
		}
		distinct[t] = struct{}{}
	}
	if len(distinct) > 1 {
		return TaxTypeMixed
	}
	for t := range distinct {
		return t
	}
	return TaxTypeTaxed
}
