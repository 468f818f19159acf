package service

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/cura-agent/roster-service/internal/domain"
	apperrors "github.com/cura-agent/roster-service/pkg/util/errorutil"
)

const (
	EmailMaxLen       = 255
	NameMaxLen        = 255
	PasswordMinLen    = 8
	PasswordMaxLength = 72
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// fieldErrors collects per-field problems for a VALIDATION_FAILED response.
type fieldErrors map[string]any

func (f fieldErrors) add(field, message string) {
	if _, exists := f[field]; !exists {
		f[field] = message
	}
}

func (f fieldErrors) err(message string) error {
	if len(f) == 0 {
		return nil
	}
	return apperrors.NewValidationError(message, f)
}

func (f fieldErrors) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		f.add(field, "required")
	}
}

func (f fieldErrors) email(field, value string) {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		f.add(field, "required")
	case len(value) > EmailMaxLen:
		f.add(field, "too long")
	case !emailRegexp.MatchString(value):
		f.add(field, "invalid email format")
	}
}

func (f fieldErrors) name(field, value string) {
	f.required(field, value)
	if utf8.RuneCountInString(value) > NameMaxLen {
		f.add(field, "too long")
	}
}

func (f fieldErrors) password(field, value string) {
	switch {
	case value == "":
		f.add(field, "required")
	case utf8.RuneCountInString(value) < PasswordMinLen:
		f.add(field, "must be at least 8 characters")
	case len(value) > PasswordMaxLength:
		f.add(field, "too long")
	}
}

// RegisterInput is the payload of the sign-up screen.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	AcceptTerms     bool
}

// ValidateRegistration mirrors the sign-up form checks: every field filled,
// matching confirmation and accepted terms.
func ValidateRegistration(in RegisterInput) error {
	errs := fieldErrors{}
	errs.name("name", in.Name)
	errs.email("email", in.Email)
	errs.password("password", in.Password)
	errs.required("confirm_password", in.ConfirmPassword)
	if in.ConfirmPassword != "" && in.Password != in.ConfirmPassword {
		errs.add("confirm_password", "passwords do not match")
	}
	if !in.AcceptTerms {
		errs.add("accept_terms", "terms must be accepted")
	}
	return errs.err("registration is invalid")
}

// ValidateRosterEntry checks a create payload for category.
func ValidateRosterEntry(category domain.Category, e domain.RosterEntry) error {
	errs := fieldErrors{}
	errs.name("firstName", e.FirstName)
	errs.name("lastName", e.LastName)
	errs.email("email", e.Email)
	errs.required("nationalId", e.NationalID)
	errs.required("mobile", e.Mobile)
	checkRole(errs, category, e.Role)
	if e.Specialty != nil && category != domain.CategoryDoctor {
		errs.add("specialty", "only doctors have a specialty")
	}
	return errs.err("roster entry is invalid")
}

// ValidateRosterPatch checks an update payload against the current entry.
func ValidateRosterPatch(category domain.Category, current domain.RosterEntry, p domain.RosterPatch) error {
	errs := fieldErrors{}
	if p.FirstName != nil {
		errs.name("firstName", *p.FirstName)
	}
	if p.LastName != nil {
		errs.name("lastName", *p.LastName)
	}
	if p.Email != nil {
		errs.email("email", *p.Email)
	}
	if p.NationalID != nil {
		errs.required("nationalId", *p.NationalID)
	}
	if p.Mobile != nil {
		errs.required("mobile", *p.Mobile)
	}
	if p.Role != nil && *p.Role != current.Role {
		errs.add("role", "role cannot be changed")
	}
	if p.Specialty != nil && category != domain.CategoryDoctor {
		errs.add("specialty", "only doctors have a specialty")
	}
	return errs.err("roster update is invalid")
}

func checkRole(errs fieldErrors, category domain.Category, role domain.Role) {
	switch {
	case !role.Valid():
		errs.add("role", "unknown role")
	case role != category.Role():
		errs.add("role", "role does not belong to the "+string(category)+" roster")
	}
}
