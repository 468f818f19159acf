package dto

import "github.com/cura-agent/roster-service/internal/domain"

// RosterEntryRequest is the create form of a roster view. Role defaults to
// the roster's own role when empty.
type RosterEntryRequest struct {
	FirstName  string      `json:"firstName"`
	LastName   string      `json:"lastName"`
	NationalID string      `json:"nationalId"`
	Email      string      `json:"email"`
	Mobile     string      `json:"mobile"`
	Role       domain.Role `json:"role"`
	Specialty  *string     `json:"specialty"`
}

// Entry converts the request into a roster entry without an id.
func (r RosterEntryRequest) Entry() domain.RosterEntry {
	return domain.RosterEntry{
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		NationalID: r.NationalID,
		Email:      r.Email,
		Mobile:     r.Mobile,
		Role:       r.Role,
		Specialty:  r.Specialty,
	}
}

// RosterListResponse is the filtered view of one roster.
type RosterListResponse struct {
	Category domain.Category      `json:"category"`
	Query    string               `json:"query"`
	Total    int                  `json:"total"`
	Entries  []domain.RosterEntry `json:"entries"`
}

// MutationResponse wraps a mutated entry. Warnings carry notification
// failures that did not undo the change.
type MutationResponse struct {
	Data     any      `json:"data"`
	Warnings []string `json:"warnings,omitempty"`
}
