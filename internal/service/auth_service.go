package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/cura-agent/roster-service/internal/auth"
	"github.com/cura-agent/roster-service/internal/config"
	"github.com/cura-agent/roster-service/internal/domain"
	"github.com/cura-agent/roster-service/internal/repository"
	apperrors "github.com/cura-agent/roster-service/pkg/util/errorutil"
)

// AuthResult is returned by register and login.
type AuthResult struct {
	Account   *domain.Account
	Token     string
	ExpiresAt time.Time
}

// ProfileInput is the payload of the settings panel.
type ProfileInput struct {
	Name  string
	Email string
}

// AuthService coordinates registration, login and account settings flows.
type AuthService struct {
	accounts   repository.AccountRepository
	resets     repository.PasswordResetRepository
	revoked    auth.Revocations
	tokenMgr   *auth.TokenManager
	logger     *zap.Logger
	bcryptCost int
	resetTTL   time.Duration
	now        func() time.Time
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	AccountRepo       repository.AccountRepository
	PasswordResetRepo repository.PasswordResetRepository
	Revocations       auth.Revocations
	Logger            *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	revoked := deps.Revocations
	if revoked == nil {
		revoked = auth.NewMemoryRevocations()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		accounts:   deps.AccountRepo,
		resets:     deps.PasswordResetRepo,
		revoked:    revoked,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		logger:     logger,
		bcryptCost: cfg.Auth.BcryptCost,
		resetTTL:   time.Duration(cfg.Auth.PasswordResetTTLMinutes) * time.Minute,
		now:        time.Now,
	}
}

// Register creates a new admin account and signs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := ValidateRegistration(in); err != nil {
		return nil, err
	}
	email := normalizeEmail(in.Email)
	if err := s.ensureEmailFree(ctx, email, ""); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	account := &domain.Account{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Active:       true,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("account registered", zap.String("account_id", account.ID))
	return s.issue(account)
}

// Login authenticates an account by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	errs := fieldErrors{}
	errs.required("email", email)
	errs.required("password", password)
	if err := errs.err("credentials are required"); err != nil {
		return nil, err
	}

	account, err := s.accounts.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !account.Active {
		return nil, apperrors.NewForbidden("account is disabled")
	}
	if err := auth.ComparePassword(account.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return s.issue(account)
}

// Logout revokes the session's token for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, session domain.Session) error {
	if err := requireSession(session); err != nil {
		return err
	}
	if err := s.revoked.Revoke(ctx, session.TokenID, session.ExpiresAt); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// Me returns the account behind the session.
func (s *AuthService) Me(ctx context.Context, session domain.Session) (*domain.Account, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	account, err := s.accounts.GetByID(ctx, session.AccountID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return account, nil
}

// UpdateProfile changes the display name and email from the settings panel.
func (s *AuthService) UpdateProfile(ctx context.Context, session domain.Session, in ProfileInput) (*domain.Account, error) {
	account, err := s.Me(ctx, session)
	if err != nil {
		return nil, err
	}

	errs := fieldErrors{}
	errs.name("name", in.Name)
	errs.email("email", in.Email)
	if err := errs.err("profile is invalid"); err != nil {
		return nil, err
	}

	email := normalizeEmail(in.Email)
	if email != account.Email {
		if err := s.ensureEmailFree(ctx, email, account.ID); err != nil {
			return nil, err
		}
	}
	account.Name = strings.TrimSpace(in.Name)
	account.Email = email
	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, apperrors.MapError(err)
	}
	return account, nil
}

// ChangePassword verifies the current password before storing the new one.
func (s *AuthService) ChangePassword(ctx context.Context, session domain.Session, currentPassword, newPassword string) error {
	account, err := s.Me(ctx, session)
	if err != nil {
		return err
	}

	errs := fieldErrors{}
	errs.required("current_password", currentPassword)
	errs.password("new_password", newPassword)
	if err := errs.err("password change is invalid"); err != nil {
		return err
	}
	if err := auth.ComparePassword(account.PasswordHash, currentPassword); err != nil {
		return apperrors.NewValidationError("password change is invalid", map[string]any{"current_password": "incorrect"})
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	account.PasswordHash = hash
	return apperrors.MapError(s.accounts.Update(ctx, account))
}

// RequestPasswordReset issues a reset token for email. Unknown addresses
// return (nil, nil) so callers cannot tell which accounts exist.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (*repository.PasswordResetToken, error) {
	errs := fieldErrors{}
	errs.email("email", email)
	if err := errs.err("reset request is invalid"); err != nil {
		return nil, err
	}

	account, err := s.accounts.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	token := &repository.PasswordResetToken{
		AccountID: account.ID,
		Token:     uuid.NewString(),
		ExpiresAt: s.now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("password reset requested", zap.String("account_id", account.ID))
	return token, nil
}

// ConfirmPasswordReset consumes a reset token and stores the new password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, tokenStr, newPassword, confirmPassword string) error {
	errs := fieldErrors{}
	errs.required("token", tokenStr)
	errs.password("password", newPassword)
	if newPassword != confirmPassword {
		errs.add("confirm_password", "passwords do not match")
	}
	if err := errs.err("password reset is invalid"); err != nil {
		return err
	}

	token, err := s.resets.GetByToken(ctx, tokenStr)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewValidationError("password reset is invalid", map[string]any{"token": "unknown token"})
	}
	if err != nil {
		return apperrors.MapError(err)
	}
	if !token.Usable(s.now()) {
		return apperrors.NewValidationError("password reset is invalid", map[string]any{"token": "expired or already used"})
	}

	account, err := s.accounts.GetByID(ctx, token.AccountID)
	if err != nil {
		return apperrors.MapError(err)
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	account.PasswordHash = hash
	if err := s.accounts.Update(ctx, account); err != nil {
		return apperrors.MapError(err)
	}

	if err := s.resets.MarkUsed(ctx, token.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewConflict("reset token already used", nil)
		}
		return apperrors.MapError(err)
	}
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Revocations exposes the denylist consulted by the middleware.
func (s *AuthService) Revocations() auth.Revocations {
	return s.revoked
}

func (s *AuthService) issue(account *domain.Account) (*AuthResult, error) {
	token, claims, err := s.tokenMgr.GenerateToken(account)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &AuthResult{Account: account, Token: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}

func (s *AuthService) ensureEmailFree(ctx context.Context, email, ownerID string) error {
	existing, err := s.accounts.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil
	case err != nil:
		return apperrors.MapError(err)
	case existing.ID != ownerID:
		return apperrors.NewConflict("email already registered", map[string]any{"email": email})
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
