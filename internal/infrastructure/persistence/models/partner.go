package models

import (
	"github.com/erp/store/internal/domain/partner"
)

// CustomerModel is the persistence model for the Customer domain entity.
// Invoices reference customers without cascading: a customer that still has
// invoices cannot be deleted.
type CustomerModel struct {
	BaseModel
	CustomerID      string  `gorm:"column:customer_id;type:varchar(50);not null;uniqueIndex:idx_customers_customer_id"`
	CustomerName    string  `gorm:"column:customer_name;type:varchar(100);not null"`
	CustomerEmail   *string `gorm:"column:customer_email;type:varchar(200)"`
	CustomerPhone   *string `gorm:"column:customer_phone;type:varchar(50)"`
	CustomerAddress string  `gorm:"column:customer_address;type:text;not null"`
	AdditionalNotes *string `gorm:"column:additional_notes;type:text"`

	Invoices []InvoiceModel `gorm:"foreignKey:CustomerID;constraint:OnDelete:RESTRICT"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity.
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		BaseEntity:      m.BaseModel.ToDomain(),
		CustomerID:      m.CustomerID,
		CustomerName:    m.CustomerName,
		CustomerEmail:   m.CustomerEmail,
		CustomerPhone:   m.CustomerPhone,
		CustomerAddress: m.CustomerAddress,
		AdditionalNotes: m.AdditionalNotes,
	}
}

// FromDomain populates the persistence model from a domain Customer entity.
func (m *CustomerModel) FromDomain(c *partner.Customer) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.CustomerID = c.CustomerID
	m.CustomerName = c.CustomerName
	m.CustomerEmail = c.CustomerEmail
	m.CustomerPhone = c.CustomerPhone
	m.CustomerAddress = c.CustomerAddress
	m.AdditionalNotes = c.AdditionalNotes
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer entity.
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}
