package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cura-agent/roster-service/internal/api/dto"
	"github.com/cura-agent/roster-service/internal/service"
	apperrors "github.com/cura-agent/roster-service/pkg/util/errorutil"
)

// SettingsHandler backs the settings panel.
type SettingsHandler struct {
	auth *service.AuthService
}

// NewSettingsHandler constructs handler.
func NewSettingsHandler(authService *service.AuthService) *SettingsHandler {
	return &SettingsHandler{auth: authService}
}

// GetProfile handles GET /settings/profile.
func (h *SettingsHandler) GetProfile(c *fiber.Ctx) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}
	account, err := h.auth.Me(c.UserContext(), session)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAccountResponse(account)})
}

// UpdateProfile handles PUT /settings/profile.
func (h *SettingsHandler) UpdateProfile(c *fiber.Ctx) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}
	var req dto.ProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	account, err := h.auth.UpdateProfile(c.UserContext(), session, service.ProfileInput{Name: req.Name, Email: req.Email})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAccountResponse(account)})
}
