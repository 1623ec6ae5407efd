package service

import (
	"context"
	"errors"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/certdesk/course-storefront/internal/auth"
	"github.com/certdesk/course-storefront/internal/config"
	"github.com/certdesk/course-storefront/internal/domain"
	"github.com/certdesk/course-storefront/internal/events"
	"github.com/certdesk/course-storefront/internal/repository"
	apperrors "github.com/certdesk/course-storefront/pkg/util/errorutil"
)

// AuthService coordinates registration, login and password flows.
type AuthService struct {
	users        repository.UserRepository
	roles        repository.RoleRepository
	resets       repository.PasswordResetRepository
	revocations  repository.TokenRevocationRepository
	sessionState repository.SessionStateRepository
	dispatcher   events.Dispatcher
	tokenMgr     *auth.TokenManager
	logger       *zap.Logger

	bcryptCost      int
	resetTTL        time.Duration
	resetURL        string
	bootstrapAdmins map[string]struct{}
	now             func() time.Time
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo          repository.UserRepository
	RoleRepo          repository.RoleRepository
	PasswordResetRepo repository.PasswordResetRepository
	RevocationRepo    repository.TokenRevocationRepository
	SessionStateRepo  repository.SessionStateRepository
	Dispatcher        events.Dispatcher
	Logger            *zap.Logger
}

// Session is returned on login and registration.
type Session struct {
	User     *domain.User
	Token    auth.IssuedToken
	ResumeTo string
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	admins := make(map[string]struct{}, len(cfg.Auth.BootstrapAdminEmails))
	for _, email := range cfg.Auth.BootstrapAdminEmails {
		admins[normalizeEmail(email)] = struct{}{}
	}
	return &AuthService{
		users:           deps.UserRepo,
		roles:           deps.RoleRepo,
		resets:          deps.PasswordResetRepo,
		revocations:     deps.RevocationRepo,
		sessionState:    deps.SessionStateRepo,
		dispatcher:      deps.Dispatcher,
		tokenMgr:        auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		logger:          logger,
		bcryptCost:      cfg.Auth.BcryptCost,
		resetTTL:        time.Duration(cfg.Auth.PasswordResetTTLMinutes) * time.Minute,
		resetURL:        cfg.Auth.PasswordResetURL,
		bootstrapAdmins: admins,
		now:             time.Now,
	}
}

// Register creates an account and signs it in. An email on the bootstrap
// admin list gets the ADMIN role once, here.
func (s *AuthService) Register(ctx context.Context, sessionID, name, email, password string) (*Session, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	details := map[string]any{}
	if name == "" {
		details["name"] = "required"
	}
	if _, err := mail.ParseAddress(email); err != nil {
		details["email"] = "must be a valid email address"
	}
	if err := auth.ValidatePassword(password); err != nil {
		details["password"] = err.Error()
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid registration", details)
	}

	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil && !existing.HasPassword():
		return nil, apperrors.NewConflict("account exists without a password; request a password reset", map[string]any{"email": email})
	case err == nil:
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	case !apperrors.IsNotFound(err):
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Status:       domain.UserStatusActive,
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	if _, ok := s.bootstrapAdmins[email]; ok {
		if err := s.roles.SetRole(ctx, user.ID, domain.RoleAdmin); err != nil {
			return nil, apperrors.MapError(err)
		}
		user.Role = domain.RoleAdmin
		s.logger.Info("bootstrap admin registered", zap.String("user_id", user.ID))
	}
	return s.issue(ctx, sessionID, user)
}

// Login authenticates with email and password. A pending resume destination
// for the session is returned once and then forgotten.
func (s *AuthService) Login(ctx context.Context, sessionID, email, password string) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrNoPasswordSet) {
			return nil, apperrors.NewDomainError("PASSWORD_NOT_SET", "no password set for this account; request a password reset", 401, nil)
		}
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if user.Status != domain.UserStatusActive {
		return nil, apperrors.NewForbidden("account suspended")
	}
	return s.issue(ctx, sessionID, user)
}

func (s *AuthService) issue(ctx context.Context, sessionID string, user *domain.User) (*Session, error) {
	token, err := s.tokenMgr.GenerateToken(user.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	session := &Session{User: user, Token: token}
	if sessionID != "" && s.sessionState != nil {
		resume, err := s.sessionState.PopResumeDestination(ctx, sessionID)
		if err != nil {
			s.logger.Warn("failed to read resume destination", zap.String("session_id", sessionID), zap.Error(err))
		}
		session.ResumeTo = resume
	}
	return session, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, principal *auth.Principal) error {
	if principal == nil || principal.TokenID == "" || s.revocations == nil {
		return nil
	}
	ttl := principal.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.revocations.Revoke(ctx, principal.TokenID, ttl); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// RequestPasswordReset issues a reset token for email and publishes it so
// the link is mailed to the account's address. Unknown emails return a nil
// token and no error so callers cannot probe for accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (*repository.PasswordResetToken, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, apperrors.MapError(err)
	}

	token := &repository.PasswordResetToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: s.now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, user.ID, events.EventPasswordResetRequested, events.PasswordResetRequestedPayload{
		UserID:    user.ID,
		Name:      user.Name,
		Email:     user.Email,
		ResetURL:  s.resetLink(token.Token),
		ExpiresAt: token.ExpiresAt,
	})
	return token, nil
}

func (s *AuthService) resetLink(token string) string {
	base := s.resetURL
	if base == "" {
		return token
	}
	u, err := url.Parse(base)
	if err != nil {
		s.logger.Warn("invalid password reset url", zap.String("url", base), zap.Error(err))
		return token
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

func (s *AuthService) publish(ctx context.Context, actorID string, eventType events.EventType, payload any) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ActorID:   actorID,
		Timestamp: s.now().UTC(),
		Payload:   payload,
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event", string(eventType)), zap.Error(err))
	}
}

// ConfirmPasswordReset validates the reset token and sets the new password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, tokenStr, newPassword string) error {
	if err := auth.ValidatePassword(newPassword); err != nil {
		return apperrors.NewValidationError("invalid password", map[string]any{"password": err.Error()})
	}
	token, err := s.resets.Claim(ctx, tokenStr, s.now())
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewValidationError("reset token invalid, expired or used", nil)
		}
		return apperrors.MapError(err)
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		return apperrors.MapError(err)
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.MapError(err)
	}
	return s.revokeUserTokens(ctx, user.ID)
}

// ChangePassword verifies the current password before storing the new one.
// Every token issued before the change stops working; the returned session
// carries a fresh token for the caller.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) (*Session, error) {
	if err := auth.ValidatePassword(newPassword); err != nil {
		return nil, apperrors.NewValidationError("invalid password", map[string]any{"password": err.Error()})
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.revokeUserTokens(ctx, user.ID); err != nil {
		return nil, err
	}
	return s.issue(ctx, "", user)
}

// revokeUserTokens rejects every token of userID issued before this second.
// JWT issue times have second precision, so a token minted right after the
// cutoff stays valid.
func (s *AuthService) revokeUserTokens(ctx context.Context, userID string) error {
	if s.revocations == nil {
		return nil
	}
	cutoff := s.now().Truncate(time.Second)
	if err := s.revocations.RevokeUserBefore(ctx, userID, cutoff, s.tokenMgr.TTL()); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// UpdateProfile changes the display name.
func (s *AuthService) UpdateProfile(ctx context.Context, userID, name string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("invalid profile", map[string]any{"name": "required"})
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	user.Name = name
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// CurrentUser reloads the user with a fresh role and enrollment projection.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
