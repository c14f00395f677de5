package models

import (
	"time"

	"github.com/erp/store/internal/domain/finance"
	"github.com/shopspring/decimal"
)

// PaymentModel is the persistence model for the Payment domain entity.
type PaymentModel struct {
	BaseModel
	PublicPaymentID  string          `gorm:"column:public_payment_id;type:varchar(50);not null;uniqueIndex:idx_payments_public_payment_id"`
	InvoiceID        int64           `gorm:"column:invoice_fk_id;not null;index:idx_payments_invoice_fk_id"`
	PaymentAmount    decimal.Decimal `gorm:"column:payment_amount;type:decimal(10,2);not null"`
	PaymentDate      time.Time       `gorm:"column:payment_date;not null"`
	PaymentReference string          `gorm:"column:payment_reference;type:varchar(100);not null;uniqueIndex:idx_payments_payment_reference"`
	PaymentMethod    string          `gorm:"column:payment_method;type:varchar(50);not null"`
	AdditionalInfo   *string         `gorm:"column:additional_info;type:text"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *finance.Payment {
	return &finance.Payment{
		BaseEntity:       m.BaseModel.ToDomain(),
		PublicPaymentID:  m.PublicPaymentID,
		InvoiceID:        m.InvoiceID,
		PaymentAmount:    m.PaymentAmount,
		PaymentDate:      m.PaymentDate,
		PaymentReference: m.PaymentReference,
		PaymentMethod:    m.PaymentMethod,
		AdditionalInfo:   m.AdditionalInfo,
	}
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *PaymentModel) FromDomain(p *finance.Payment) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.PublicPaymentID = p.PublicPaymentID
	m.InvoiceID = p.InvoiceID
	m.PaymentAmount = p.PaymentAmount
	m.PaymentDate = p.PaymentDate
	m.PaymentReference = p.PaymentReference
	m.PaymentMethod = p.PaymentMethod
	m.AdditionalInfo = p.AdditionalInfo
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment entity.
func PaymentModelFromDomain(p *finance.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}
