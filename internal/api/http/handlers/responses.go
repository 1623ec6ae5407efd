package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/certdesk/course-storefront/internal/api/dto"
	"github.com/certdesk/course-storefront/internal/auth"
	"github.com/certdesk/course-storefront/internal/domain"
	"github.com/certdesk/course-storefront/internal/service"
	apperrors "github.com/certdesk/course-storefront/pkg/util/errorutil"
)

func currentUser(c *fiber.Ctx) (*domain.User, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal.User, nil
}

// optionalUser returns nil for anonymous requests.
func optionalUser(c *fiber.Ctx) *domain.User {
	if principal, ok := auth.PrincipalFromContext(c); ok {
		return principal.User
	}
	return nil
}

func parseIntQuery(c *fiber.Ctx, key string, defaultVal int) int {
	if val := c.Query(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultVal
}

func pagination(c *fiber.Ctx, defaultSize int) (limit, offset int) {
	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "page_size", defaultSize)
	return pageSize, (page - 1) * pageSize
}

func userResponse(user *domain.User) dto.UserResponse {
	ids := user.EnrolledCourseIDs
	if ids == nil {
		ids = []string{}
	}
	return dto.UserResponse{
		ID:                user.ID,
		Name:              user.Name,
		Email:             user.Email,
		Role:              string(user.Role),
		Status:            string(user.Status),
		HasPassword:       user.HasPassword(),
		EnrolledCourseIDs: ids,
		CreatedAt:         user.CreatedAt,
	}
}

func sessionResponse(session *service.Session) dto.SessionResponse {
	return dto.SessionResponse{
		User:     userResponse(session.User),
		Auth:     dto.AuthResponse{Token: session.Token.Token, ExpiresAt: session.Token.ExpiresAt},
		ResumeTo: session.ResumeTo,
	}
}

func courseResponse(course *domain.Course) dto.CourseResponse {
	return dto.CourseResponse{
		ID:          course.ID,
		Title:       course.Title,
		Description: course.Description,
		Price:       course.Price,
		Currency:    course.Currency,
		Duration:    course.Duration,
		Instructor:  course.Instructor,
		Level:       string(course.Level),
		Category:    course.Category,
		Image:       course.Image,
		Details:     course.Details,
	}
}

func courseResponses(courses []domain.Course) []dto.CourseResponse {
	out := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		out = append(out, courseResponse(&courses[i]))
	}
	return out
}

func adminCourseResponse(course *domain.Course) dto.AdminCourseResponse {
	return dto.AdminCourseResponse{CourseResponse: courseResponse(course), ResourceLink: course.ResourceLink}
}

func assignmentResponse(a *domain.CourseAssignment) dto.AssignmentResponse {
	return dto.AssignmentResponse{
		ID:             a.ID,
		UserID:         a.UserID,
		CourseID:       a.CourseID,
		CourseTitle:    a.CourseTitle,
		CourseCategory: a.CourseCategory,
		CourseImage:    a.CourseImage,
		ResourceLink:   a.ResourceLink,
		Source:         string(a.Source),
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func requestResponse(req *domain.EnrollmentRequest) dto.EnrollmentRequestResponse {
	return dto.EnrollmentRequestResponse{
		ID:        req.ID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		CourseID:  req.CourseID,
		Message:   req.Message,
		CreatedAt: req.CreatedAt,
	}
}

func cartResponse(view *service.CartView) dto.CartResponse {
	return dto.CartResponse{
		Items:    courseResponses(view.Items),
		Count:    view.Count,
		Total:    view.Total,
		Currency: view.Currency,
	}
}
