package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/certdesk/course-storefront/internal/domain"
	"github.com/certdesk/course-storefront/internal/repository"
	apperrors "github.com/certdesk/course-storefront/pkg/util/errorutil"
)

// UserService backs the admin user listing and role management.
type UserService struct {
	users  repository.UserRepository
	roles  repository.RoleRepository
	logger *zap.Logger
}

// NewUserService creates the service.
func NewUserService(users repository.UserRepository, roles repository.RoleRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, roles: roles, logger: logger}
}

// ListUsers returns users matching filter.
func (s *UserService) ListUsers(ctx context.Context, actor *domain.User, filter repository.UserFilter) ([]domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// GetUser loads one user.
func (s *UserService) GetUser(ctx context.Context, actor *domain.User, id string) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// SetRole grants or revokes ADMIN. Admins cannot demote themselves, which
// keeps at least the acting admin in place.
func (s *UserService) SetRole(ctx context.Context, actor *domain.User, id string, role domain.Role) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": string(role)})
	}
	if actor.ID == id && role != domain.RoleAdmin {
		return nil, apperrors.NewConflict("admins cannot revoke their own role", nil)
	}
	user, err := s.GetUser(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.roles.SetRole(ctx, id, role); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("role changed",
		zap.String("user_id", id),
		zap.String("role", string(role)),
		zap.String("actor_id", actor.ID))
	user.Role = role
	return user, nil
}
