package models

import "github.com/google/uuid"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleDriver   Role = "driver"
	RoleAdmin    Role = "admin"
)

// Profile is the application-side user record. Email is optional; the auth
// provider account holds the authoritative address when it is missing.
type Profile struct {
	ID       uuid.UUID `json:"id"`
	Email    *string   `json:"email,omitempty"`
	FullName string    `json:"full_name"`
	Phone    string    `json:"phone,omitempty"`
	Role     Role      `json:"role"`
}
