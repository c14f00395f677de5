package persistence

import (
	"strings"

	"github.com/erp/store/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains the columns every table has
var CommonSortFields = map[string]bool{
	"id":      true,
	"created": true,
	"updated": true,
}

// UserSortFields contains allowed sort fields for users
var UserSortFields = map[string]bool{
	"id":        true,
	"created":   true,
	"updated":   true,
	"username":  true,
	"email":     true,
	"is_active": true,
	"is_admin":  true,
}

// CustomerSortFields contains allowed sort fields for customers
var CustomerSortFields = map[string]bool{
	"id":             true,
	"created":        true,
	"updated":        true,
	"customer_id":    true,
	"customer_name":  true,
	"customer_email": true,
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"id":                true,
	"created":           true,
	"updated":           true,
	"public_product_id": true,
	"product_name":      true,
	"sku":               true,
	"brand":             true,
	"product_category":  true,
	"is_active":         true,
}

// InvoiceSortFields contains allowed sort fields for invoices
var InvoiceSortFields = map[string]bool{
	"id":                  true,
	"created":             true,
	"updated":             true,
	"public_invoice_id":   true,
	"customer_fk_id":      true,
	"status":              true,
	"subtotal":            true,
	"total_amount":        true,
	"outstanding_balance": true,
	"invoice_date":        true,
	"invoice_due_date":    true,
	"date_fully_paid":     true,
}

// PaymentSortFields contains allowed sort fields for payments
var PaymentSortFields = map[string]bool{
	"id":                true,
	"created":           true,
	"updated":           true,
	"public_payment_id": true,
	"invoice_fk_id":     true,
	"payment_amount":    true,
	"payment_date":      true,
	"payment_method":    true,
}

// applyPage applies whitelisted ordering and pagination. The id column is
// always the final tiebreaker so pages are stable.
func applyPage(query *gorm.DB, filter shared.Filter, allowed map[string]bool) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, "created")
	query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	if field != "id" {
		query = query.Order("id ASC")
	}
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}

// likeEscaper protects LIKE wildcards in search terms. '!' is the escape
// character because a backslash literal is read differently by mysql.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// likePattern builds a case-insensitive LIKE pattern for a search term;
// callers compare it against LOWER(column) with ESCAPE '!'.
func likePattern(search string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(search))) + "%"
}

// searchCondition matches search as a substring of any of columns
func searchCondition(search string, columns ...string) (string, []any) {
	pattern := likePattern(search)
	parts := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, column := range columns {
		parts[i] = "LOWER(" + column + ") LIKE ? ESCAPE '!'"
		args[i] = pattern
	}
	return strings.Join(parts, " OR "), args
}
