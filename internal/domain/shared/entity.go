package shared

import (
	"time"
)

// Entity is the base interface for all domain entities
type Entity interface {
	GetID() int64
	GetCreated() time.Time
	GetUpdated() time.Time
	IsNew() bool
}

// BaseEntity provides the surrogate key and timestamp bookkeeping shared by
// every entity. ID is assigned by the storage engine on insert; Created and
// Updated are stamped by the persistence layer.
type BaseEntity struct {
	ID      int64
	Created time.Time
	Updated time.Time
}

// GetID returns the entity ID
func (e *BaseEntity) GetID() int64 {
	return e.ID
}

// GetCreated returns the creation timestamp
func (e *BaseEntity) GetCreated() time.Time {
	return e.Created
}

// GetUpdated returns the last update timestamp
func (e *BaseEntity) GetUpdated() time.Time {
	return e.Updated
}

// IsNew reports whether the entity has not been persisted yet
func (e *BaseEntity) IsNew() bool {
	return e.ID == 0
}
