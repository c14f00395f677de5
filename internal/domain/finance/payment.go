package finance

import (
	"strings"
	"time"

	"github.com/erp/store/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Payment records money received against an invoice. A payment belongs to
// exactly one invoice and is removed when that invoice is deleted.
// Applying the amount to the invoice balance is not done here.
type Payment struct {
	shared.BaseEntity
	PublicPaymentID  string `validate:"required,max=50"`
	InvoiceID        int64  `validate:"required,gt=0"`
	PaymentAmount    decimal.Decimal
	PaymentDate      time.Time `validate:"required"`
	PaymentReference string    `validate:"required,max=100"`
	PaymentMethod    string    `validate:"required,max=50"`
	AdditionalInfo   *string
}

// NewPayment creates a payment dated now. A blank publicID is replaced by a
// generated identifier. The reference must be unique across all payments;
// that is enforced by storage.
func NewPayment(publicID string, invoiceID int64, amount decimal.Decimal, reference, method string) (*Payment, error) {
	payment := &Payment{
		PublicPaymentID:  shared.PublicIDOrGenerate(publicID, shared.PublicIDPrefixPayment),
		InvoiceID:        invoiceID,
		PaymentAmount:    amount.Round(2),
		PaymentDate:      time.Now().UTC(),
		PaymentReference: strings.TrimSpace(reference),
		PaymentMethod:    strings.TrimSpace(method),
	}
	if err := payment.Validate(); err != nil {
		return nil, err
	}
	return payment, nil
}

// Validate checks required fields, widths and the amount
func (p *Payment) Validate() error {
	if err := shared.ValidateStruct(p); err != nil {
		return err
	}
	return shared.ValidateMoney("payment_amount", p.PaymentAmount)
}

// SetPaymentDate overrides the date the payment was received
func (p *Payment) SetPaymentDate(at time.Time) error {
	if at.IsZero() {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "payment_date is required")
	}
	p.PaymentDate = at.UTC()
	return nil
}

// SetAdditionalInfo sets free-text details; an empty string clears them
func (p *Payment) SetAdditionalInfo(info string) {
	info = strings.TrimSpace(info)
	if info == "" {
		p.AdditionalInfo = nil
		return
	}
	p.AdditionalInfo = &info
}
