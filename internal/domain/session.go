package domain

import "time"

// Session identifies the signed-in account for one request. It is built by the
// auth middleware and handed to services explicitly.
type Session struct {
	AccountID string
	Email     string
	Name      string
	TokenID   string
	ExpiresAt time.Time
}
