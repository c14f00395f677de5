package partner

import (
	"context"

	"github.com/erp/store/internal/domain/shared"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// Create inserts a new customer and populates its ID and timestamps
	Create(ctx context.Context, customer *Customer) error

	// Save updates an existing customer
	Save(ctx context.Context, customer *Customer) error

	// FindByID finds a customer by its internal ID
	FindByID(ctx context.Context, id int64) (*Customer, error)

	// FindByCustomerID finds a customer by its external identifier
	FindByCustomerID(ctx context.Context, customerID string) (*Customer, error)

	// FindByIDs finds multiple customers by their internal IDs
	FindByIDs(ctx context.Context, ids []int64) ([]Customer, error)

	// FindAll finds all customers matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Customer, error)

	// FindPage returns one page of customers matching the filter with the total count
	FindPage(ctx context.Context, filter shared.Filter) (shared.Paginated[Customer], error)

	// Count counts customers matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// ExistsByCustomerID checks if an external identifier is taken
	ExistsByCustomerID(ctx context.Context, customerID string) (bool, error)

	// Delete deletes a customer. Invoices are not owned by the customer, so
	// deleting one that still has invoices fails with a referential
	// integrity violation.
	Delete(ctx context.Context, id int64) error
}
