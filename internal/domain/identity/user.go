package identity

import (
	"strings"

	"github.com/erp/store/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Password cost for bcrypt
const bcryptCost = 12

// User represents an application account.
// Username and email are globally unique.
type User struct {
	shared.BaseEntity
	Username        string `validate:"required,max=50"`
	Email           string `validate:"required,max=200,email"`
	PasswordHash    string `validate:"required,max=255"`
	IsActive        bool
	IsAdmin         bool
	AdditionalNotes *string
}

// NewUser creates a new active, non-admin user from an already hashed password
func NewUser(username, email, passwordHash string) (*User, error) {
	user := &User{
		Username:     strings.TrimSpace(username),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		IsActive:     true,
		IsAdmin:      false,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	return user, nil
}

// Validate checks required fields and column widths
func (u *User) Validate() error {
	return shared.ValidateStruct(u)
}

// SetPassword replaces the stored hash with a bcrypt hash of password.
// Verification is left to the service layer.
func (u *User) SetPassword(password string) error {
	if password == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 bytes")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	u.PasswordHash = string(hash)
	return nil
}

// SetEmail updates the user's email
func (u *User) SetEmail(email string) error {
	previous := u.Email
	u.Email = strings.ToLower(strings.TrimSpace(email))
	if err := u.Validate(); err != nil {
		u.Email = previous
		return err
	}
	return nil
}

// Activate marks the user as active
func (u *User) Activate() {
	u.IsActive = true
}

// Deactivate marks the user as inactive
func (u *User) Deactivate() {
	u.IsActive = false
}

// SetAdmin grants or revokes the admin flag
func (u *User) SetAdmin(isAdmin bool) {
	u.IsAdmin = isAdmin
}

// SetNotes sets free-text notes; an empty string clears them
func (u *User) SetNotes(notes string) {
	u.AdditionalNotes = optionalText(notes)
}

func optionalText(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
