package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	apihttp "github.com/cura-agent/roster-service/internal/api/http"
	"github.com/cura-agent/roster-service/internal/api/http/handlers"
	"github.com/cura-agent/roster-service/internal/auth"
	"github.com/cura-agent/roster-service/internal/config"
	"github.com/cura-agent/roster-service/internal/domain"
	"github.com/cura-agent/roster-service/internal/mocks"
	"github.com/cura-agent/roster-service/internal/observability"
	"github.com/cura-agent/roster-service/internal/roster"
	"github.com/cura-agent/roster-service/internal/service"
)

type testServer struct {
	app      *fiber.App
	accounts *mocks.MockAccountRepository
	authSvc  *service.AuthService
	token    string
}

var testAccount = &domain.Account{ID: "acc-1", Name: "Admin", Email: "admin@cura.health", Active: true}

func newTestServer(t *testing.T, opts ...roster.Option) *testServer {
	t.Helper()
	ctrl := gomock.NewController(t)
	accounts := mocks.NewMockAccountRepository(ctrl)
	accounts.EXPECT().GetByID(gomock.Any(), "acc-1").Return(testAccount, nil).AnyTimes()

	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 5, BcryptCost: 4}}
	authSvc := service.NewAuthService(cfg, service.AuthDependencies{AccountRepo: accounts})
	rosterSvc := service.NewRosterService(service.RosterDependencies{
		Registry: roster.NewRegistry(roster.DefaultSeeds(), opts...),
	})

	metrics := observability.NewMetrics()
	app := fiber.New()
	apihttp.RegisterMiddlewares(app, zap.NewNop(), metrics, 0)
	apihttp.RegisterRoutes(app, apihttp.RouteConfig{
		Health:         handlers.NewHealthHandler("cura-roster-service", "test", nil, metrics),
		Auth:           handlers.NewAuthHandler(authSvc, false),
		Settings:       handlers.NewSettingsHandler(authSvc),
		Rosters:        handlers.NewRosterHandler(rosterSvc),
		Notifications:  handlers.NewNotificationsHandler(nil),
		AuthMiddleware: auth.NewAuthMiddleware(authSvc.TokenManager(), accounts, authSvc.Revocations()),
	})

	token, _, err := authSvc.TokenManager().GenerateToken(testAccount)
	require.NoError(t, err)

	return &testServer{app: app, accounts: accounts, authSvc: authSvc, token: token}
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func errCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodGet, "/health/live", nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, body = s.do(t, http.MethodGet, "/health/ready", nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ready", body["status"])

	status, _ = s.do(t, http.MethodGet, "/health/metrics", nil, "")
	assert.Equal(t, http.StatusOK, status)
}

func TestRostersRequireAuth(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodGet, "/rosters/doctors", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errCode(body))

	status, _ = s.do(t, http.MethodGet, "/rosters/doctors", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRosterListAndSearch(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodGet, "/rosters/doctors", nil, s.token)
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]any)
	assert.Equal(t, "doctor", data["category"])
	assert.EqualValues(t, 3, data["total"])

	status, body = s.do(t, http.MethodGet, "/rosters/doctor?q=neuro", nil, s.token)
	require.Equal(t, http.StatusOK, status)
	entries := body["data"].(map[string]any)["entries"].([]any)
	require.Len(t, entries, 1)
	assert.Equal(t, "doc-3", entries[0].(map[string]any)["id"])

	status, body = s.do(t, http.MethodGet, "/rosters/janitors", nil, s.token)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errCode(body))
}

func TestRosterCreateUpdateDelete(t *testing.T) {
	s := newTestServer(t, roster.WithIDGenerator(func() string { return "nur-new" }))

	status, body := s.do(t, http.MethodPost, "/rosters/nurses", map[string]any{
		"firstName":  "Dina",
		"lastName":   "Adel",
		"nationalId": "29512121234567",
		"email":      "dina.adel@cura.health",
		"mobile":     "01200000000",
	}, s.token)
	require.Equal(t, http.StatusCreated, status, body)
	created := body["data"].(map[string]any)
	assert.Equal(t, "nur-new", created["id"])
	assert.Equal(t, "nurse", created["role"])
	assert.Nil(t, body["warnings"])

	status, body = s.do(t, http.MethodPatch, "/rosters/nurses/nur-new", map[string]any{"mobile": "01299999999"}, s.token)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "01299999999", body["data"].(map[string]any)["mobile"])
	assert.Equal(t, "Dina", body["data"].(map[string]any)["firstName"])

	status, body = s.do(t, http.MethodPatch, "/rosters/nurses/nur-new", map[string]any{"role": "admin"}, s.token)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errCode(body))

	status, _ = s.do(t, http.MethodDelete, "/rosters/nurses/nur-new", nil, s.token)
	assert.Equal(t, http.StatusOK, status)

	status, body = s.do(t, http.MethodDelete, "/rosters/nurses/nur-new", nil, s.token)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errCode(body))
}

func TestRosterCreateValidation(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/rosters/receptionists", map[string]any{"firstName": "Only"}, s.token)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errCode(body))
	details := body["error"].(map[string]any)["details"].(map[string]any)
	assert.Contains(t, details, "email")
}

func TestRosterCreateNotifyFailureIsWarning(t *testing.T) {
	sink := roster.SinkFunc(func(_ context.Context, n domain.Notification) error {
		if n.Level == domain.LevelSuccess {
			return errors.New("feed unavailable")
		}
		return nil
	})
	s := newTestServer(t, roster.WithSink(sink))

	status, body := s.do(t, http.MethodPost, "/rosters/doctors", map[string]any{
		"firstName":  "Karim",
		"lastName":   "Fouad",
		"nationalId": "29001011234567",
		"email":      "karim.fouad@cura.health",
		"mobile":     "01500000000",
		"specialty":  "Oncology",
	}, s.token)
	require.Equal(t, http.StatusCreated, status, body)
	warnings := body["warnings"].([]any)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "Failed to create doctor: feed unavailable")

	_, body = s.do(t, http.MethodGet, "/rosters/doctors?q=oncology", nil, s.token)
	assert.EqualValues(t, 1, body["data"].(map[string]any)["total"])
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodGet, "/auth/me", nil, s.token)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "admin@cura.health", body["data"].(map[string]any)["email"])

	status, _ = s.do(t, http.MethodPost, "/auth/logout", nil, s.token)
	require.Equal(t, http.StatusOK, status)

	status, body = s.do(t, http.MethodGet, "/auth/me", nil, s.token)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errCode(body))
}

func TestLoginUnknownAccount(t *testing.T) {
	s := newTestServer(t)
	s.accounts.EXPECT().GetByEmail(gomock.Any(), "ghost@cura.health").Return(nil, pgx.ErrNoRows)

	status, body := s.do(t, http.MethodPost, "/auth/login", map[string]any{"email": "ghost@cura.health", "password": "password1"}, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errCode(body))
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/auth/register", map[string]any{
		"name": "New", "email": "new@cura.health", "password": "password1", "confirm_password": "password2", "accept_terms": true,
	}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	details := body["error"].(map[string]any)["details"].(map[string]any)
	assert.Equal(t, "passwords do not match", details["confirm_password"])
}

func TestNotificationsWithoutFeed(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodGet, "/notifications", nil, s.token)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["data"])
}

func TestRequestIDPropagation(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/rosters/doctors", nil)
	req.Header.Set(apihttp.HeaderRequestID, "req-123")
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "req-123", resp.Header.Get(apihttp.HeaderRequestID))

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "req-123", body["error"].(map[string]any)["request_id"])
}
