package identity

import (
	"time"

	"github.com/google/uuid"
)

// User maps to the users table. PasswordHash never leaves the API.
type User struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	PasswordHash   string    `db:"password_hash" json:"-"`
	Email          string    `db:"email" json:"email"`
	FullName       string    `db:"full_name" json:"full_name"`
	Role           string    `db:"role" json:"role"`
	Phone          *string   `db:"phone" json:"phone,omitempty"`
	Specialization *string   `db:"specialization" json:"specialization,omitempty"`
	LicenseNumber  *string   `db:"license_number" json:"license_number,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// RegisterInput carries the registration payload.
type RegisterInput struct {
	Username       string  `json:"username"`
	Password       string  `json:"password"`
	Email          string  `json:"email"`
	FullName       string  `json:"full_name"`
	Role           string  `json:"role"`
	Phone          *string `json:"phone,omitempty"`
	Specialization *string `json:"specialization,omitempty"`
	LicenseNumber  *string `json:"license_number,omitempty"`
}
