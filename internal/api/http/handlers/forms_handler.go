package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/certdesk/course-storefront/internal/api/dto"
	"github.com/certdesk/course-storefront/internal/service"
	apperrors "github.com/certdesk/course-storefront/pkg/util/errorutil"
)

// FormsHandler accepts the public enrollment request, contact and
// newsletter forms.
type FormsHandler struct {
	enrollments *service.EnrollmentService
	contact     *service.ContactService
}

// NewFormsHandler constructs handler.
func NewFormsHandler(enrollments *service.EnrollmentService, contact *service.ContactService) *FormsHandler {
	return &FormsHandler{enrollments: enrollments, contact: contact}
}

// EnrollmentRequest handles POST /enrollment-requests.
func (h *FormsHandler) EnrollmentRequest(c *fiber.Ctx) error {
	var req dto.EnrollmentRequestPayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	created, err := h.enrollments.SubmitRequest(c.UserContext(), service.EnrollmentRequestInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		CourseID: req.CourseID,
		Message:  req.Message,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": requestResponse(created)})
}

// Contact handles POST /contact.
func (h *FormsHandler) Contact(c *fiber.Ctx) error {
	var req dto.ContactRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	err := h.contact.SendContact(c.UserContext(), service.ContactInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Query: req.Query,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"data": fiber.Map{"status": "sent"}})
}

// Newsletter handles POST /newsletter.
func (h *FormsHandler) Newsletter(c *fiber.Ctx) error {
	var req dto.NewsletterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	sub, err := h.contact.Subscribe(c.UserContext(), req.Email)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"email":      sub.Email,
		"created_at": sub.CreatedAt,
	}})
}
