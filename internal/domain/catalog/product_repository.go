package catalog

import (
	"context"

	"github.com/erp/store/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// Create inserts a new product and populates its ID and timestamps
	Create(ctx context.Context, product *Product) error

	// Save updates an existing product
	Save(ctx context.Context, product *Product) error

	// FindByID finds a product by its internal ID
	FindByID(ctx context.Context, id int64) (*Product, error)

	// FindByPublicID finds a product by its public identifier
	FindByPublicID(ctx context.Context, publicID string) (*Product, error)

	// FindBySKU finds a product by SKU
	FindBySKU(ctx context.Context, sku string) (*Product, error)

	// FindAll finds all products matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// FindPage returns one page of products matching the filter with the total count
	FindPage(ctx context.Context, filter shared.Filter) (shared.Paginated[Product], error)

	// Count counts products matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Delete deletes a product together with all of its variants in one
	// transaction
	Delete(ctx context.Context, id int64) error
}

// ProductVariantRepository defines the interface for variant persistence.
// Variants are only loaded on explicit request.
type ProductVariantRepository interface {
	// Create inserts a new variant and populates its ID and timestamps
	Create(ctx context.Context, variant *ProductVariant) error

	// Save updates an existing variant
	Save(ctx context.Context, variant *ProductVariant) error

	// FindByID finds a variant by its ID
	FindByID(ctx context.Context, id int64) (*ProductVariant, error)

	// VariantsForProduct returns all variants of a product
	VariantsForProduct(ctx context.Context, productID int64) ([]ProductVariant, error)

	// Delete deletes a single variant
	Delete(ctx context.Context, id int64) error
}
