package models

import "time"

// User is an account: a student or an administrator.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserSummary is a row of the admin user listing: a non-admin user joined
// with its (optional) application.
type UserSummary struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	CreatedAt      time.Time `json:"created_at"`
	HasApplication bool      `json:"has_application"`
	ApplicationID  *string   `json:"application_id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
}
