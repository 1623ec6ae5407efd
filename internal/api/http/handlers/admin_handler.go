package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/certdesk/course-storefront/internal/api/dto"
	"github.com/certdesk/course-storefront/internal/domain"
	"github.com/certdesk/course-storefront/internal/repository"
	"github.com/certdesk/course-storefront/internal/service"
	apperrors "github.com/certdesk/course-storefront/pkg/util/errorutil"
)

// AdminHandler serves the back-office: users, roles, assignments and
// enrollment requests. Routes are mounted behind auth.RequireAdmin.
type AdminHandler struct {
	users       *service.UserService
	enrollments *service.EnrollmentService
	auth        *service.AuthService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(users *service.UserService, enrollments *service.EnrollmentService, authService *service.AuthService) *AdminHandler {
	return &AdminHandler{users: users, enrollments: enrollments, auth: authService}
}

// ListUsers handles GET /admin/users?q=&course_id=&page=&page_size=.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	filter := repository.UserFilter{}
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		filter.Search = &q
	}
	if courseID := c.Query("course_id"); courseID != "" {
		filter.CourseID = &courseID
	}
	filter.Limit, filter.Offset = pagination(c, 50)

	users, err := h.users.ListUsers(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetUser handles GET /admin/users/:id.
func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	user, err := h.users.GetUser(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// SetRole handles PUT /admin/users/:id/role.
func (h *AdminHandler) SetRole(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.SetRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	role := domain.Role(strings.ToUpper(strings.TrimSpace(req.Role)))
	user, err := h.users.SetRole(c.UserContext(), actor, c.Params("id"), role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// ListAssignments handles GET /admin/assignments?user_id=&course_id=.
func (h *AdminHandler) ListAssignments(c *fiber.Ctx) error {
	filter := repository.AssignmentFilter{}
	if userID := c.Query("user_id"); userID != "" {
		filter.UserID = &userID
	}
	if courseID := c.Query("course_id"); courseID != "" {
		filter.CourseID = &courseID
	}
	filter.Limit, filter.Offset = pagination(c, 100)

	assignments, err := h.enrollments.ListAssignments(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.AssignmentResponse, 0, len(assignments))
	for i := range assignments {
		items = append(items, assignmentResponse(&assignments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Assign handles PUT /admin/assignments.
func (h *AdminHandler) Assign(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.UserID == "" || req.CourseID == "" {
		return apperrors.NewValidationError("user_id and course_id required", nil)
	}
	assignment, err := h.enrollments.Assign(c.UserContext(), actor, req.UserID, req.CourseID, req.ResourceLink)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": assignmentResponse(assignment)})
}

// SetResourceLink handles PUT /admin/assignments/resource-link.
func (h *AdminHandler) SetResourceLink(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.ResourceLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.UserID == "" || req.CourseID == "" || req.ResourceLink == "" {
		return apperrors.NewValidationError("user_id, course_id and resource_link required", nil)
	}
	assignment, err := h.enrollments.SetResourceLink(c.UserContext(), actor, req.UserID, req.CourseID, req.ResourceLink)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": assignmentResponse(assignment)})
}

// Unassign handles DELETE /admin/assignments.
func (h *AdminHandler) Unassign(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.UnassignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.UserID == "" || req.CourseID == "" {
		return apperrors.NewValidationError("user_id and course_id required", nil)
	}
	if err := h.enrollments.Unassign(c.UserContext(), actor, req.UserID, req.CourseID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListRequests handles GET /admin/enrollment-requests.
func (h *AdminHandler) ListRequests(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	reqs, err := h.enrollments.ListRequests(c.UserContext(), actor)
	if err != nil {
		return err
	}
	items := make([]dto.EnrollmentRequestResponse, 0, len(reqs))
	for i := range reqs {
		items = append(items, requestResponse(&reqs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ApproveRequest handles POST /admin/enrollment-requests/:id/approve.
func (h *AdminHandler) ApproveRequest(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	result, err := h.enrollments.ApproveRequest(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	resp := dto.ApprovalResponse{
		User:            userResponse(result.User),
		UserCreated:     result.UserCreated,
		AlreadyEnrolled: result.AlreadyEnrolled,
	}
	if result.UserCreated && h.auth != nil {
		// New accounts have no password; mail them a link to set one. The
		// approval already stands, so a failure here only shows in the flag.
		_, err := h.auth.RequestPasswordReset(c.UserContext(), result.User.Email)
		resp.PasswordSetupSent = err == nil
	}
	if result.Assignment != nil {
		a := assignmentResponse(result.Assignment)
		resp.Assignment = &a
	}
	return c.JSON(fiber.Map{"data": resp})
}

// DenyRequest handles POST /admin/enrollment-requests/:id/deny.
func (h *AdminHandler) DenyRequest(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.enrollments.DenyRequest(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
