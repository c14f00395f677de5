// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Key Principles:
// 1. Domain entities carry no GORM tags
// 2. Persistence models contain all GORM annotations, column widths and foreign keys
// 3. Mappers convert between domain entities and persistence models
// 4. Repositories use persistence models for database operations
//
// Relationships are declared on the parent side only (has-many) so that each
// foreign key gets exactly one constraint. The association fields exist for
// DDL and preloading; they are never populated when writing.
//
// Structure:
// - base.go: Timestamps trait and BaseModel
// - identity.go: users
// - partner.go: customers
// - catalog.go: products, product_variants
// - trade.go: invoices, invoice_items, invoice_taxes
// - finance.go: payments
// - registry.go: model list in dependency order
package models
