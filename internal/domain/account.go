package domain

import "time"

// Account is an administrator who signs in to the admin panel.
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
