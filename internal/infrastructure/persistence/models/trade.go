package models

import (
	"time"

	"github.com/erp/store/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice domain entity.
// Items, taxes and payments are owned by the invoice and removed with it.
// TaxAmount is stored as supplied; no constraint ties it to invoice_taxes.
type InvoiceModel struct {
	BaseModel
	PublicInvoiceID    string              `gorm:"column:public_invoice_id;type:varchar(50);not null;uniqueIndex:idx_invoices_public_invoice_id"`
	CustomerID         int64               `gorm:"column:customer_fk_id;not null;index:idx_invoices_customer_fk_id"`
	Status             trade.InvoiceStatus `gorm:"column:status;type:varchar(20);not null"`
	Subtotal           decimal.Decimal     `gorm:"column:subtotal;type:decimal(10,2);not null"`
	TaxAmount          decimal.Decimal     `gorm:"column:tax_amount;type:decimal(10,2);not null"`
	ShippingAmount     decimal.Decimal     `gorm:"column:shipping_amount;type:decimal(10,2);not null"`
	TotalAmount        decimal.Decimal     `gorm:"column:total_amount;type:decimal(10,2);not null"`
	OutstandingBalance decimal.Decimal     `gorm:"column:outstanding_balance;type:decimal(10,2);not null"`
	InvoiceDate        time.Time           `gorm:"column:invoice_date;not null"`
	InvoiceDueDate     time.Time           `gorm:"column:invoice_due_date;not null"`
	DateFullyPaid      *time.Time          `gorm:"column:date_fully_paid"`
	AdditionalNotes    *string             `gorm:"column:additional_notes;type:text"`

	Items    []InvoiceItemModel `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	Taxes    []InvoiceTaxModel  `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	Payments []PaymentModel     `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice entity.
// Items and Taxes are carried over only when they were preloaded.
func (m *InvoiceModel) ToDomain() *trade.Invoice {
	invoice := &trade.Invoice{
		BaseEntity:         m.BaseModel.ToDomain(),
		PublicInvoiceID:    m.PublicInvoiceID,
		CustomerID:         m.CustomerID,
		Status:             m.Status,
		Subtotal:           m.Subtotal,
		TaxAmount:          m.TaxAmount,
		ShippingAmount:     m.ShippingAmount,
		TotalAmount:        m.TotalAmount,
		OutstandingBalance: m.OutstandingBalance,
		InvoiceDate:        m.InvoiceDate,
		InvoiceDueDate:     m.InvoiceDueDate,
		DateFullyPaid:      m.DateFullyPaid,
		AdditionalNotes:    m.AdditionalNotes,
	}
	if m.Items != nil {
		invoice.Items = make([]trade.InvoiceItem, len(m.Items))
		for i := range m.Items {
			invoice.Items[i] = *m.Items[i].ToDomain()
		}
	}
	if m.Taxes != nil {
		invoice.Taxes = make([]trade.InvoiceTax, len(m.Taxes))
		for i := range m.Taxes {
			invoice.Taxes[i] = *m.Taxes[i].ToDomain()
		}
	}
	return invoice
}

// FromDomain populates the persistence model from a domain Invoice entity.
// Lines are written through their own models, never through the header.
func (m *InvoiceModel) FromDomain(i *trade.Invoice) {
	m.FromDomainBaseEntity(i.BaseEntity)
	m.PublicInvoiceID = i.PublicInvoiceID
	m.CustomerID = i.CustomerID
	m.Status = i.Status
	m.Subtotal = i.Subtotal
	m.TaxAmount = i.TaxAmount
	m.ShippingAmount = i.ShippingAmount
	m.TotalAmount = i.TotalAmount
	m.OutstandingBalance = i.OutstandingBalance
	m.InvoiceDate = i.InvoiceDate
	m.InvoiceDueDate = i.InvoiceDueDate
	m.DateFullyPaid = i.DateFullyPaid
	m.AdditionalNotes = i.AdditionalNotes
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice entity.
func InvoiceModelFromDomain(i *trade.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(i)
	return m
}

// InvoiceItemModel is the persistence model for the InvoiceItem domain entity.
type InvoiceItemModel struct {
	BaseModel
	InvoiceID int64           `gorm:"column:invoice_fk_id;not null;index:idx_invoice_items_invoice_fk_id"`
	ProductID int64           `gorm:"column:product_fk_id;not null;index:idx_invoice_items_product_fk_id"`
	Quantity  int64           `gorm:"column:quantity;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:decimal(10,2);not null"`
	LineTotal decimal.Decimal `gorm:"column:line_total;type:decimal(10,2);not null"`
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// ToDomain converts the persistence model to a domain InvoiceItem entity.
func (m *InvoiceItemModel) ToDomain() *trade.InvoiceItem {
	return &trade.InvoiceItem{
		BaseEntity: m.BaseModel.ToDomain(),
		InvoiceID:  m.InvoiceID,
		ProductID:  m.ProductID,
		Quantity:   m.Quantity,
		UnitPrice:  m.UnitPrice,
		LineTotal:  m.LineTotal,
	}
}

// FromDomain populates the persistence model from a domain InvoiceItem entity.
func (m *InvoiceItemModel) FromDomain(it *trade.InvoiceItem) {
	m.FromDomainBaseEntity(it.BaseEntity)
	m.InvoiceID = it.InvoiceID
	m.ProductID = it.ProductID
	m.Quantity = it.Quantity
	m.UnitPrice = it.UnitPrice
	m.LineTotal = it.LineTotal
}

// InvoiceItemModelFromDomain creates a new persistence model from a domain InvoiceItem entity.
func InvoiceItemModelFromDomain(it *trade.InvoiceItem) *InvoiceItemModel {
	m := &InvoiceItemModel{}
	m.FromDomain(it)
	return m
}

// InvoiceTaxModel is the persistence model for the InvoiceTax domain entity.
type InvoiceTaxModel struct {
	BaseModel
	InvoiceID      int64           `gorm:"column:invoice_fk_id;not null;index:idx_invoice_taxes_invoice_fk_id"`
	TaxRatePercent decimal.Decimal `gorm:"column:tax_rate_percent;type:decimal(5,2);not null"`
	TaxAmount      decimal.Decimal `gorm:"column:tax_amount;type:decimal(10,2);not null"`
}

// TableName returns the table name for GORM
func (InvoiceTaxModel) TableName() string {
	return "invoice_taxes"
}

// ToDomain converts the persistence model to a domain InvoiceTax entity.
func (m *InvoiceTaxModel) ToDomain() *trade.InvoiceTax {
	return &trade.InvoiceTax{
		BaseEntity:     m.BaseModel.ToDomain(),
		InvoiceID:      m.InvoiceID,
		TaxRatePercent: m.TaxRatePercent,
		TaxAmount:      m.TaxAmount,
	}
}

// FromDomain populates the persistence model from a domain InvoiceTax entity.
func (m *InvoiceTaxModel) FromDomain(t *trade.InvoiceTax) {
	m.FromDomainBaseEntity(t.BaseEntity)
	m.InvoiceID = t.InvoiceID
	m.TaxRatePercent = t.TaxRatePercent
	m.TaxAmount = t.TaxAmount
}

// InvoiceTaxModelFromDomain creates a new persistence model from a domain InvoiceTax entity.
func InvoiceTaxModelFromDomain(t *trade.InvoiceTax) *InvoiceTaxModel {
	m := &InvoiceTaxModel{}
	m.FromDomain(t)
	return m
}
