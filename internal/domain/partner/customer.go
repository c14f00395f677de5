package partner

import (
	"strings"

	"github.com/erp/store/internal/domain/shared"
)

// Customer represents a customer who is billed through invoices.
// CustomerID is the external identifier; ID is the internal surrogate key.
type Customer struct {
	shared.BaseEntity
	CustomerID      string  `validate:"required,max=50"`
	CustomerName    string  `validate:"required,max=100"`
	CustomerEmail   *string `validate:"omitempty,max=200,email"`
	CustomerPhone   *string `validate:"omitempty,max=50"` // phone numbers are identifiers, not numbers
	CustomerAddress string  `validate:"required"`
	AdditionalNotes *string
}

// NewCustomer creates a new customer with required fields.
// A blank customerID is replaced by a generated identifier.
func NewCustomer(customerID, name, address string) (*Customer, error) {
	customer := &Customer{
		CustomerID:      shared.PublicIDOrGenerate(customerID, shared.PublicIDPrefixCustomer),
		CustomerName:    strings.TrimSpace(name),
		CustomerAddress: strings.TrimSpace(address),
	}
	if err := customer.Validate(); err != nil {
		return nil, err
	}
	return customer, nil
}

// Validate checks required fields and column widths
func (c *Customer) Validate() error {
	return shared.ValidateStruct(c)
}

// Rename updates the customer's display name
func (c *Customer) Rename(name string) error {
	previous := c.CustomerName
	c.CustomerName = strings.TrimSpace(name)
	if err := c.Validate(); err != nil {
		c.CustomerName = previous
		return err
	}
	return nil
}

// SetContact sets the optional email and phone; empty values clear them
func (c *Customer) SetContact(email, phone string) error {
	prevEmail, prevPhone := c.CustomerEmail, c.CustomerPhone
	c.CustomerEmail = optionalText(strings.ToLower(email))
	c.CustomerPhone = optionalText(phone)
	if err := c.Validate(); err != nil {
		c.CustomerEmail, c.CustomerPhone = prevEmail, prevPhone
		return err
	}
	return nil
}

// SetAddress replaces the postal address, which cannot be empty
func (c *Customer) SetAddress(address string) error {
	previous := c.CustomerAddress
	c.CustomerAddress = strings.TrimSpace(address)
	if err := c.Validate(); err != nil {
		c.CustomerAddress = previous
		return err
	}
	return nil
}

// SetNotes sets free-text notes; an empty string clears them
func (c *Customer) SetNotes(notes string) {
	c.AdditionalNotes = optionalText(notes)
}

func optionalText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
