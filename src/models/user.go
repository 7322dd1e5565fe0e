package models

import (
	"github.com/username/finapp/finsync/src/security/validation"
)

// User is the owner referenced by every other record.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// Validate rejects records missing required fields.
func (u User) Validate() error {
	if err := validation.ValidateID(u.ID, "id"); err != nil {
		return err
	}
	if err := validation.ValidateRequiredString(u.Email, validation.DefaultMaxStringLength, "email"); err != nil {
		return err
	}
	if err := validation.ValidateRequiredString(u.Username, validation.DefaultMaxStringLength, "username"); err != nil {
		return err
	}
	return validateAudit(u.CreatedAt, u.UpdatedAt)
}

// FullName joins first and last name.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

func validateAudit(createdAt, updatedAt Timestamp) error {
	if err := validation.ValidateTimeSet(createdAt.Time, "created_at"); err != nil {
		return err
	}
	return validation.ValidateTimeSet(updatedAt.Time, "updated_at")
}
