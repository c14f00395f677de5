package models

import (
	"time"

	"github.com/erp/store/internal/domain/shared"
)

// Timestamps contributes the created/updated columns to a model. Created is
// stamped once on insert; Updated is stamped on insert and on every update.
// Both use the connection's NowFunc so they are always UTC.
type Timestamps struct {
	Created time.Time `gorm:"column:created;autoCreateTime;not null"`
	Updated time.Time `gorm:"column:updated;autoUpdateTime;not null"`
}

// BaseModel provides the surrogate key and timestamps for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	Timestamps
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:      m.ID,
		Created: m.Created,
		Updated: m.Updated,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.Created = e.Created
	m.Updated = e.Updated
}

// CopyBaseTo writes the key and timestamps assigned by the database back to
// the domain entity after a write.
func (m *BaseModel) CopyBaseTo(e *shared.BaseEntity) {
	e.ID = m.ID
	e.Created = m.Created
	e.Updated = m.Updated
}
