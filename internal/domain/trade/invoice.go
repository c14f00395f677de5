package trade

import (
	"strings"
	"time"

	"github.com/erp/store/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// IsValid returns true if the status is one of the enumerated values
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// Invoice bills a customer. It exclusively owns its items, taxes and
// payments; deleting an invoice deletes all three.
//
// The monetary fields are stored exactly as supplied. Nothing here derives
// TaxAmount from the InvoiceTax rows or Subtotal from the items; that is the
// job of whoever issues the invoice.
type Invoice struct {
	shared.BaseEntity
	PublicInvoiceID    string        `validate:"required,max=50"`
	CustomerID         int64         `validate:"required,gt=0"`
	Status             InvoiceStatus `validate:"required,oneof=pending paid overdue cancelled"`
	Subtotal           decimal.Decimal
	TaxAmount          decimal.Decimal
	ShippingAmount     decimal.Decimal
	TotalAmount        decimal.Decimal
	OutstandingBalance decimal.Decimal
	InvoiceDate        time.Time `validate:"required"`
	InvoiceDueDate     time.Time `validate:"required"`
	DateFullyPaid      *time.Time
	AdditionalNotes    *string

	// Lines loaded with the invoice when requested. Nil means not loaded.
	Items []InvoiceItem
	Taxes []InvoiceTax
}

// Amounts groups the caller-computed monetary fields of an invoice
type Amounts struct {
	Subtotal           decimal.Decimal
	TaxAmount          decimal.Decimal
	ShippingAmount     decimal.Decimal
	TotalAmount        decimal.Decimal
	OutstandingBalance decimal.Decimal
}

// NewInvoice creates a pending invoice with all monetary fields at 0.00,
// dated now. A blank publicID is replaced by a generated identifier.
func NewInvoice(publicID string, customerID int64, dueDate time.Time) (*Invoice, error) {
	invoice := &Invoice{
		PublicInvoiceID:    shared.PublicIDOrGenerate(publicID, shared.PublicIDPrefixInvoice),
		CustomerID:         customerID,
		Status:             InvoiceStatusPending,
		Subtotal:           decimal.Zero,
		TaxAmount:          decimal.Zero,
		ShippingAmount:     decimal.Zero,
		TotalAmount:        decimal.Zero,
		OutstandingBalance: decimal.Zero,
		InvoiceDate:        time.Now().UTC(),
		InvoiceDueDate:     dueDate,
	}
	if err := invoice.Validate(); err != nil {
		return nil, err
	}
	return invoice, nil
}

// Validate checks required fields, the status enumeration and money columns
func (i *Invoice) Validate() error {
	if err := shared.ValidateStruct(i); err != nil {
		return err
	}
	return i.Amounts().validate()
}

// Amounts returns the invoice's monetary fields
func (i *Invoice) Amounts() Amounts {
	return Amounts{
		Subtotal:           i.Subtotal,
		TaxAmount:          i.TaxAmount,
		ShippingAmount:     i.ShippingAmount,
		TotalAmount:        i.TotalAmount,
		OutstandingBalance: i.OutstandingBalance,
	}
}

// SetAmounts stores the supplied monetary fields, rounded to cents
func (i *Invoice) SetAmounts(a Amounts) error {
	if err := a.validate(); err != nil {
		return err
	}
	i.Subtotal = a.Subtotal.Round(2)
	i.TaxAmount = a.TaxAmount.Round(2)
	i.ShippingAmount = a.ShippingAmount.Round(2)
	i.TotalAmount = a.TotalAmount.Round(2)
	i.OutstandingBalance = a.OutstandingBalance.Round(2)
	return nil
}

func (a Amounts) validate() error {
	fields := []struct {
		name  string
		value decimal.Decimal
	}{
		{"subtotal", a.Subtotal},
		{"tax_amount", a.TaxAmount},
		{"shipping_amount", a.ShippingAmount},
		{"total_amount", a.TotalAmount},
	}
	for _, f := range fields {
		if err := shared.ValidateMoney(f.name, f.value); err != nil {
			return err
		}
	}
	return shared.ValidateSignedMoney("outstanding_balance", a.OutstandingBalance)
}

// SetStatus sets the status. Transitions are not policed here.
func (i *Invoice) SetStatus(status InvoiceStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid invoice status: "+string(status))
	}
	i.Status = status
	return nil
}

// SetInvoiceDate overrides the issue date
func (i *Invoice) SetInvoiceDate(date time.Time) error {
	if date.IsZero() {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "invoice_date is required")
	}
	i.InvoiceDate = date
	return nil
}

// SetDueDate replaces the due date, which is always required
func (i *Invoice) SetDueDate(date time.Time) error {
	if date.IsZero() {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "invoice_due_date is required")
	}
	i.InvoiceDueDate = date
	return nil
}

// MarkFullyPaid records when the invoice was settled. It only sets the
// date; status and balance are left to the caller.
func (i *Invoice) MarkFullyPaid(at time.Time) {
	paid := at.UTC()
	i.DateFullyPaid = &paid
}

// ClearFullyPaid removes the fully paid date
func (i *Invoice) ClearFullyPaid() {
	i.DateFullyPaid = nil
}

// IsFullyPaid returns true if a fully paid date is recorded
func (i *Invoice) IsFullyPaid() bool {
	return i.DateFullyPaid != nil
}

// IsOverdueAt reports whether the due date has passed at the given time
// without the invoice being settled
func (i *Invoice) IsOverdueAt(now time.Time) bool {
	return !i.IsFullyPaid() && i.Status != InvoiceStatusCancelled && now.After(i.InvoiceDueDate)
}

// SetNotes sets free-text notes; an empty string clears them
func (i *Invoice) SetNotes(notes string) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		i.AdditionalNotes = nil
		return
	}
	i.AdditionalNotes = &notes
}
