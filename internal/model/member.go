package model

import "time"

// HouseholdMember is a person belonging to exactly one household. UserID is
// the external identity reference; members are soft-disabled when they leave,
// never deleted, so their role history stays intact.
type HouseholdMember struct {
	ID          int64      `json:"id"`
	HouseholdID int64      `json:"household_id"`
	UserID      string     `json:"user_id"`
	DisplayName string     `json:"display_name"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	HasPIN      bool       `json:"has_pin"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
