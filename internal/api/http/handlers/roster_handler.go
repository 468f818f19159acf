package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/cura-agent/roster-service/internal/api/dto"
	"github.com/cura-agent/roster-service/internal/domain"
	"github.com/cura-agent/roster-service/internal/service"
	apperrors "github.com/cura-agent/roster-service/pkg/util/errorutil"
)

// RosterHandler serves the doctor, nurse and receptionist roster views.
type RosterHandler struct {
	rosters *service.RosterService
}

// NewRosterHandler constructs handler.
func NewRosterHandler(rosters *service.RosterService) *RosterHandler {
	return &RosterHandler{rosters: rosters}
}

// List handles GET /rosters/:category?q=.
func (h *RosterHandler) List(c *fiber.Ctx) error {
	session, category, err := h.scope(c)
	if err != nil {
		return err
	}
	query := c.Query("q")
	entries, err := h.rosters.List(c.UserContext(), session, category, query)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.RosterListResponse{
		Category: category,
		Query:    query,
		Total:    len(entries),
		Entries:  entries,
	}})
}

// Get handles GET /rosters/:category/:id.
func (h *RosterHandler) Get(c *fiber.Ctx) error {
	session, category, err := h.scope(c)
	if err != nil {
		return err
	}
	entry, err := h.rosters.Get(c.UserContext(), session, category, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": entry})
}

// Create handles POST /rosters/:category.
func (h *RosterHandler) Create(c *fiber.Ctx) error {
	session, category, err := h.scope(c)
	if err != nil {
		return err
	}
	var req dto.RosterEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	entry, err := h.rosters.Create(c.UserContext(), session, category, req.Entry())
	return respondMutation(c, http.StatusCreated, entry, err)
}

// Update handles PATCH /rosters/:category/:id.
func (h *RosterHandler) Update(c *fiber.Ctx) error {
	session, category, err := h.scope(c)
	if err != nil {
		return err
	}
	var patch domain.RosterPatch
	if err := c.BodyParser(&patch); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	entry, err := h.rosters.Update(c.UserContext(), session, category, c.Params("id"), patch)
	return respondMutation(c, http.StatusOK, entry, err)
}

// Delete handles DELETE /rosters/:category/:id.
func (h *RosterHandler) Delete(c *fiber.Ctx) error {
	session, category, err := h.scope(c)
	if err != nil {
		return err
	}
	id := c.Params("id")
	err = h.rosters.Delete(c.UserContext(), session, category, id)
	return respondMutation(c, http.StatusOK, fiber.Map{"id": id, "status": "deleted"}, err)
}

func (h *RosterHandler) scope(c *fiber.Ctx) (domain.Session, domain.Category, error) {
	session, err := currentSession(c)
	if err != nil {
		return domain.Session{}, "", err
	}
	category, ok := domain.ParseCategory(c.Params("category"))
	if !ok {
		return domain.Session{}, "", apperrors.NewNotFound("roster", map[string]any{"category": c.Params("category")})
	}
	return session, category, nil
}

// respondMutation renders a completed mutation. A failed notification does
// not undo the change, so it is reported as a warning next to the data.
func respondMutation(c *fiber.Ctx, status int, data any, err error) error {
	if err != nil {
		var domainErr *apperrors.DomainError
		if !errors.As(err, &domainErr) || domainErr.Code != "OPERATION_FAILED" {
			return err
		}
		return c.Status(status).JSON(dto.MutationResponse{Data: data, Warnings: []string{domainErr.Message}})
	}
	return c.Status(status).JSON(dto.MutationResponse{Data: data})
}
