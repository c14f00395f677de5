package trade

import (
	"github.com/erp/store/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceItem is a product line on an invoice. LineTotal is stored as
// supplied and never recomputed from Quantity and UnitPrice.
type InvoiceItem struct {
	shared.BaseEntity
	InvoiceID int64 `validate:"required,gt=0"`
	ProductID int64 `validate:"required,gt=0"`
	Quantity  int64 `validate:"gte=0"`
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// NewInvoiceItem creates an invoice line
func NewInvoiceItem(invoiceID, productID, quantity int64, unitPrice, lineTotal decimal.Decimal) (*InvoiceItem, error) {
	item := &InvoiceItem{
		InvoiceID: invoiceID,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice.Round(2),
		LineTotal: lineTotal.Round(2),
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	return item, nil
}

// Validate checks references, quantity and money columns
func (it *InvoiceItem) Validate() error {
	if err := shared.ValidateStruct(it); err != nil {
		return err
	}
	if err := shared.ValidateMoney("unit_price", it.UnitPrice); err != nil {
		return err
	}
	return shared.ValidateMoney("line_total", it.LineTotal)
}

// InvoiceTax is a tax applied to an invoice. TaxRatePercent is a percentage
// (8.5 means 8.5%). TaxAmount is stored as supplied, not derived.
type InvoiceTax struct {
	shared.BaseEntity
	InvoiceID      int64 `validate:"required,gt=0"`
	TaxRatePercent decimal.Decimal
	TaxAmount      decimal.Decimal
}

// NewInvoiceTax creates a tax line for an invoice
func NewInvoiceTax(invoiceID int64, ratePercent, amount decimal.Decimal) (*InvoiceTax, error) {
	tax := &InvoiceTax{
		InvoiceID:      invoiceID,
		TaxRatePercent: ratePercent.Round(2),
		TaxAmount:      amount.Round(2),
	}
	if err := tax.Validate(); err != nil {
		return nil, err
	}
	return tax, nil
}

// Validate checks the reference and the rate/amount columns
func (t *InvoiceTax) Validate() error {
	if err := shared.ValidateStruct(t); err != nil {
		return err
	}
	if err := shared.ValidateRate("tax_rate_percent", t.TaxRatePercent); err != nil {
		return err
	}
	return shared.ValidateMoney("tax_amount", t.TaxAmount)
}

// Rate returns the rate as a fraction for use in calculations (13.00 -> 0.13)
func (t *InvoiceTax) Rate() decimal.Decimal {
	return t.TaxRatePercent.Div(decimal.NewFromInt(100))
}

// SumTaxAmounts adds up the amounts of the given tax lines. Callers use it to
// decide what to store in Invoice.TaxAmount; it is not applied automatically.
func SumTaxAmounts(taxes []InvoiceTax) decimal.Decimal {
	total := decimal.Zero
	for _, t := range taxes {
		total = total.Add(t.TaxAmount)
	}
	return total
}
