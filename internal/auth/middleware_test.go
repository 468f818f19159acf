package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/cura-agent/roster-service/internal/auth"
	"github.com/cura-agent/roster-service/internal/domain"
	"github.com/cura-agent/roster-service/internal/mocks"
	apperrors "github.com/cura-agent/roster-service/pkg/util/errorutil"
)

func newTestApp(m *auth.AuthMiddleware) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"error": fiber.Map{"code": de.Code}})
		},
	})
	app.Get("/me", m.Handle, auth.RequireSession(), func(c *fiber.Ctx) error {
		session, _ := auth.SessionFromContext(c)
		return c.JSON(fiber.Map{"account_id": session.AccountID, "name": session.Name})
	})
	return app
}

func doGet(t *testing.T, app *fiber.App, token string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestAuthMiddleware(t *testing.T) {
	ctrl := gomock.NewController(t)
	accounts := mocks.NewMockAccountRepository(ctrl)
	tokens := auth.NewTokenManager("secret", 10)
	revocations := auth.NewMemoryRevocations()
	app := newTestApp(auth.NewAuthMiddleware(tokens, accounts, revocations))

	active := &domain.Account{ID: "acc-1", Name: "Admin", Email: "admin@cura.health", Active: true}
	token, claims, err := tokens.GenerateToken(active)
	require.NoError(t, err)

	t.Run("missing header", func(t *testing.T) {
		status, body := doGet(t, app, "")
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "UNAUTHORIZED", body["error"].(map[string]any)["code"])
	})

	t.Run("garbage token", func(t *testing.T) {
		status, _ := doGet(t, app, "not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("valid token", func(t *testing.T) {
		accounts.EXPECT().GetByID(gomock.Any(), "acc-1").Return(active, nil)
		status, body := doGet(t, app, token)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "acc-1", body["account_id"])
		assert.Equal(t, "Admin", body["name"])
	})

	t.Run("inactive account", func(t *testing.T) {
		accounts.EXPECT().GetByID(gomock.Any(), "acc-1").Return(&domain.Account{ID: "acc-1"}, nil)
		status, _ := doGet(t, app, token)
		assert.Equal(t, http.StatusForbidden, status)
	})

	t.Run("deleted account", func(t *testing.T) {
		accounts.EXPECT().GetByID(gomock.Any(), "acc-1").Return(nil, pgx.ErrNoRows)
		status, _ := doGet(t, app, token)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("revoked token", func(t *testing.T) {
		require.NoError(t, revocations.Revoke(context.Background(), claims.ID, claims.ExpiresAt.Time))
		status, _ := doGet(t, app, token)
		assert.Equal(t, http.StatusUnauthorized, status)
	})
}
