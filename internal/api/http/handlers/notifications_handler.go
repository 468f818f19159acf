package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cura-agent/roster-service/internal/notify"
	apperrors "github.com/cura-agent/roster-service/pkg/util/errorutil"
)

// NotificationsHandler returns the toast feed of the current account.
type NotificationsHandler struct {
	feed *notify.FeedSink
}

// NewNotificationsHandler constructs handler. A nil feed makes the endpoints
// report an empty feed.
func NewNotificationsHandler(feed *notify.FeedSink) *NotificationsHandler {
	return &NotificationsHandler{feed: feed}
}

// List handles GET /notifications?limit=.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}
	if h.feed == nil {
		return c.JSON(fiber.Map{"data": []any{}})
	}
	items, err := h.feed.Recent(c.UserContext(), session.AccountID, c.QueryInt("limit", 0))
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"data": items})
}

// Clear handles DELETE /notifications.
func (h *NotificationsHandler) Clear(c *fiber.Ctx) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}
	if h.feed != nil {
		if err := h.feed.Clear(c.UserContext(), session.AccountID); err != nil {
			return apperrors.NewInternalError(err)
		}
	}
	return c.SendStatus(fiber.StatusNoContent)
}
