package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/certdesk/course-storefront/internal/api/dto"
	"github.com/certdesk/course-storefront/internal/service"
	apperrors "github.com/certdesk/course-storefront/pkg/util/errorutil"
)

// MeHandler serves the signed-in user's profile and dashboard.
type MeHandler struct {
	auth        *service.AuthService
	enrollments *service.EnrollmentService
}

// NewMeHandler constructs handler.
func NewMeHandler(authService *service.AuthService, enrollments *service.EnrollmentService) *MeHandler {
	return &MeHandler{auth: authService, enrollments: enrollments}
}

// Get handles GET /me.
func (h *MeHandler) Get(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	fresh, err := h.auth.CurrentUser(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(fresh)})
}

// Update handles PATCH /me.
func (h *MeHandler) Update(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	updated, err := h.auth.UpdateProfile(c.UserContext(), user.ID, req.Name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(updated)})
}

// Courses handles GET /me/courses: enrolled courses with resource links.
func (h *MeHandler) Courses(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	enrolled, err := h.enrollments.ListForUser(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	items := make([]dto.MyCourseResponse, 0, len(enrolled))
	for i := range enrolled {
		entry := dto.MyCourseResponse{Assignment: assignmentResponse(&enrolled[i].Assignment)}
		if enrolled[i].Course != nil {
			course := courseResponse(enrolled[i].Course)
			entry.Course = &course
		}
		items = append(items, entry)
	}
	return c.JSON(fiber.Map{"data": items})
}
