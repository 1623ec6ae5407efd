package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/certdesk/course-storefront/internal/domain"
	"github.com/certdesk/course-storefront/internal/repository"
	apperrors "github.com/certdesk/course-storefront/pkg/util/errorutil"
)

// RequireUser ensures a shopper is authenticated.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequireAdmin reads the caller's role from the role table on every request,
// so a revoked admin loses access immediately.
func RequireAdmin(roles repository.RoleRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		role, err := roles.GetRole(c.UserContext(), principal.User.ID)
		if err != nil {
			return apperrors.MapError(err)
		}
		if role != domain.RoleAdmin {
			return apperrors.NewForbidden("admin role required")
		}
		principal.User.Role = role
		return c.Next()
	}
}
