package shared

import (
	"strings"

	"github.com/google/uuid"
)

// Prefixes for generated public identifiers
const (
	PublicIDPrefixCustomer = "CUST"
	PublicIDPrefixProduct  = "PRD"
	PublicIDPrefixInvoice  = "INV"
	PublicIDPrefixPayment  = "PAY"
)

// NewPublicID generates an externally visible identifier of the form
// PREFIX-<uuid>. The result always fits a varchar(50) column.
func NewPublicID(prefix string) string {
	return prefix + "-" + strings.ToUpper(uuid.NewString())
}

// PublicIDOrGenerate returns id trimmed, or a generated identifier when id is blank
func PublicIDOrGenerate(id, prefix string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return NewPublicID(prefix)
	}
	return id
}
