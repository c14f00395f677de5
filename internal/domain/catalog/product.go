package catalog

import (
	"strings"

	"github.com/erp/store/internal/domain/shared"
)

// Product is a sellable item. It owns its variants: deleting a product
// deletes every ProductVariant that references it.
type Product struct {
	shared.BaseEntity
	PublicProductID    string  `validate:"required,max=50"`
	ProductName        string  `validate:"required,max=200"`
	SKU                string  `validate:"required,max=200"`
	Brand              string  `validate:"required,max=200"`
	ProductCategory    string  `validate:"required,max=200"`
	ProductDescription string  `validate:"required"`
	IsActive           bool
	URL                *string `validate:"omitempty,max=760,url"`
	URLTag             *string `validate:"omitempty,max=100"`
	AdditionalNotes    *string
}

// NewProduct creates a new active product.
// A blank publicID is replaced by a generated identifier.
func NewProduct(publicID, name, sku, brand, category, description string) (*Product, error) {
	product := &Product{
		PublicProductID:    shared.PublicIDOrGenerate(publicID, shared.PublicIDPrefixProduct),
		ProductName:        strings.TrimSpace(name),
		SKU:                strings.TrimSpace(sku),
		Brand:              strings.TrimSpace(brand),
		ProductCategory:    strings.TrimSpace(category),
		ProductDescription: description,
		IsActive:           true,
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}
	return product, nil
}

// Validate checks required fields and column widths
func (p *Product) Validate() error {
	return shared.ValidateStruct(p)
}

// Update replaces the descriptive fields
func (p *Product) Update(name, brand, category, description string) error {
	prev := *p
	p.ProductName = strings.TrimSpace(name)
	p.Brand = strings.TrimSpace(brand)
	p.ProductCategory = strings.TrimSpace(category)
	p.ProductDescription = description
	if err := p.Validate(); err != nil {
		*p = prev
		return err
	}
	return nil
}

// SetURL sets the optional product page URL and its tag.
// Empty values clear them.
func (p *Product) SetURL(url, tag string) error {
	prevURL, prevTag := p.URL, p.URLTag
	p.URL = optionalText(url)
	p.URLTag = optionalText(tag)
	if err := p.Validate(); err != nil {
		p.URL, p.URLTag = prevURL, prevTag
		return err
	}
	return nil
}

// Activate marks the product as active
func (p *Product) Activate() {
	p.IsActive = true
}

// Deactivate marks the product as inactive
func (p *Product) Deactivate() {
	p.IsActive = false
}

// SetNotes sets free-text notes; an empty string clears them
func (p *Product) SetNotes(notes string) {
	p.AdditionalNotes = optionalText(notes)
}

func optionalText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
