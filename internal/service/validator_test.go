package service_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cura-agent/roster-service/internal/domain"
	"github.com/cura-agent/roster-service/internal/service"
	apperrors "github.com/cura-agent/roster-service/pkg/util/errorutil"
)

func fieldDetails(t *testing.T, err error) map[string]any {
	t.Helper()
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	return domainErr.Details
}

func TestValidateRegistration(t *testing.T) {
	t.Parallel()

	valid := service.RegisterInput{
		Name: "Admin", Email: "admin@cura.health", Password: "password1", ConfirmPassword: "password1", AcceptTerms: true,
	}
	require.NoError(t, service.ValidateRegistration(valid))

	tests := []struct {
		name  string
		edit  func(in *service.RegisterInput)
		field string
	}{
		{"missing name", func(in *service.RegisterInput) { in.Name = " " }, "name"},
		{"missing email", func(in *service.RegisterInput) { in.Email = "" }, "email"},
		{"bad email", func(in *service.RegisterInput) { in.Email = "admin@" }, "email"},
		{"missing password", func(in *service.RegisterInput) { in.Password = ""; in.ConfirmPassword = "" }, "password"},
		{"short password", func(in *service.RegisterInput) { in.Password = "short"; in.ConfirmPassword = "short" }, "password"},
		{"long password", func(in *service.RegisterInput) {
			in.Password = strings.Repeat("a", 73)
			in.ConfirmPassword = in.Password
		}, "password"},
		{"missing confirmation", func(in *service.RegisterInput) { in.ConfirmPassword = "" }, "confirm_password"},
		{"mismatched confirmation", func(in *service.RegisterInput) { in.ConfirmPassword = "password2" }, "confirm_password"},
		{"terms not accepted", func(in *service.RegisterInput) { in.AcceptTerms = false }, "accept_terms"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.edit(&in)
			details := fieldDetails(t, service.ValidateRegistration(in))
			assert.Contains(t, details, tt.field)
		})
	}
}

func TestValidateRosterEntry(t *testing.T) {
	t.Parallel()

	entry := newDoctor()
	entry.Role = domain.RoleDoctor
	require.NoError(t, service.ValidateRosterEntry(domain.CategoryDoctor, entry))

	nurse := entry
	nurse.Role = domain.RoleNurse
	cardiology := "Cardiology"
	nurse.Specialty = &cardiology
	details := fieldDetails(t, service.ValidateRosterEntry(domain.CategoryNurse, nurse))
	assert.Contains(t, details, "specialty")
	assert.NotContains(t, details, "role")

	unknown := entry
	unknown.Role = "surgeon"
	details = fieldDetails(t, service.ValidateRosterEntry(domain.CategoryDoctor, unknown))
	assert.Equal(t, "unknown role", details["role"])

	empty := domain.RosterEntry{Role: domain.RoleReceptionist}
	details = fieldDetails(t, service.ValidateRosterEntry(domain.CategoryReceptionist, empty))
	for _, field := range []string{"firstName", "lastName", "email", "nationalId", "mobile"} {
		assert.Contains(t, details, field)
	}
}

func TestValidateRosterPatch(t *testing.T) {
	t.Parallel()

	current := newDoctor()
	current.ID = "doc-1"
	current.Role = domain.RoleDoctor

	same := domain.RoleDoctor
	require.NoError(t, service.ValidateRosterPatch(domain.CategoryDoctor, current, domain.RosterPatch{Role: &same}))

	blank := ""
	details := fieldDetails(t, service.ValidateRosterPatch(domain.CategoryDoctor, current, domain.RosterPatch{LastName: &blank}))
	assert.Contains(t, details, "lastName")
}
