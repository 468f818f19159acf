package domain

import "strings"

// Role enumerates the staff roles a roster entry may carry.
type Role string

const (
	RoleDoctor        Role = "doctor"
	RoleNurse         Role = "nurse"
	RoleReceptionist  Role = "receptionist"
	RoleAdmin         Role = "admin"
	RoleLabTechnician Role = "lab-technician"
	RolePharmacist    Role = "pharmacist"
)

// Roles lists every known role in display order.
var Roles = []Role{RoleDoctor, RoleNurse, RoleReceptionist, RoleAdmin, RoleLabTechnician, RolePharmacist}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// Category identifies one roster managed by the admin panel.
type Category string

const (
	CategoryDoctor       Category = "doctor"
	CategoryNurse        Category = "nurse"
	CategoryReceptionist Category = "receptionist"
)

// Categories lists the managed rosters.
var Categories = []Category{CategoryDoctor, CategoryNurse, CategoryReceptionist}

// ParseCategory accepts singular or plural names ("doctor", "doctors").
func ParseCategory(s string) (Category, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, "s")
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Role returns the role entries of this roster are created with.
func (c Category) Role() Role {
	return Role(c)
}

// Title returns the category name with an upper-case first letter.
func (c Category) Title() string {
	if c == "" {
		return ""
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

// RosterEntry is one staff record held by a roster.
type RosterEntry struct {
	ID         string  `json:"id" yaml:"id"`
	FirstName  string  `json:"firstName" yaml:"firstName"`
	LastName   string  `json:"lastName" yaml:"lastName"`
	NationalID string  `json:"nationalId" yaml:"nationalId"`
	Email      string  `json:"email" yaml:"email"`
	Mobile     string  `json:"mobile" yaml:"mobile"`
	Role       Role    `json:"role" yaml:"role"`
	Specialty  *string `json:"specialty,omitempty" yaml:"specialty,omitempty"`
}

// RosterPatch carries a partial update; nil fields are left untouched.
type RosterPatch struct {
	FirstName  *string `json:"firstName,omitempty"`
	LastName   *string `json:"lastName,omitempty"`
	NationalID *string `json:"nationalId,omitempty"`
	Email      *string `json:"email,omitempty"`
	Mobile     *string `json:"mobile,omitempty"`
	Role       *Role   `json:"role,omitempty"`
	Specialty  *string `json:"specialty,omitempty"`
}

// Apply merges the patch over e and returns the result. ID is never changed.
func (p RosterPatch) Apply(e RosterEntry) RosterEntry {
	if p.FirstName != nil {
		e.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		e.LastName = *p.LastName
	}
	if p.NationalID != nil {
		e.NationalID = *p.NationalID
	}
	if p.Email != nil {
		e.Email = *p.Email
	}
	if p.Mobile != nil {
		e.Mobile = *p.Mobile
	}
	if p.Role != nil {
		e.Role = *p.Role
	}
	if p.Specialty != nil {
		s := *p.Specialty
		e.Specialty = &s
	}
	return e
}

// Clone returns a copy that shares no pointers with e.
func (e RosterEntry) Clone() RosterEntry {
	if e.Specialty != nil {
		s := *e.Specialty
		e.Specialty = &s
	}
	return e
}
