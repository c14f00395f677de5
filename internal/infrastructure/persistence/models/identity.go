package models

import (
	"github.com/erp/store/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	BaseModel
	Username        string  `gorm:"column:username;type:varchar(50);not null;uniqueIndex:idx_users_username"`
	Email           string  `gorm:"column:email;type:varchar(200);not null;uniqueIndex:idx_users_email"`
	PasswordHash    string  `gorm:"column:password_hash;type:varchar(255);not null"`
	IsActive        bool    `gorm:"column:is_active;not null;index:idx_users_is_active"`
	IsAdmin         bool    `gorm:"column:is_admin;not null"`
	AdditionalNotes *string `gorm:"column:additional_notes;type:text"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseEntity:      m.BaseModel.ToDomain(),
		Username:        m.Username,
		Email:           m.Email,
		PasswordHash:    m.PasswordHash,
		IsActive:        m.IsActive,
		IsAdmin:         m.IsAdmin,
		AdditionalNotes: m.AdditionalNotes,
	}
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainBaseEntity(u.BaseEntity)
	m.Username = u.Username
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.IsActive = u.IsActive
	m.IsAdmin = u.IsAdmin
	m.AdditionalNotes = u.AdditionalNotes
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
