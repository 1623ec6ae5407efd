package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/certdesk/course-storefront/internal/api/dto"
	"github.com/certdesk/course-storefront/internal/domain"
	"github.com/certdesk/course-storefront/internal/service"
	apperrors "github.com/certdesk/course-storefront/pkg/util/errorutil"
)

// CatalogHandler serves the course catalog and admin course management.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// List handles GET /courses?q=&category=&level=.
func (h *CatalogHandler) List(c *fiber.Ctx) error {
	query := service.CatalogQuery{Term: c.Query("q"), Category: c.Query("category")}
	if level := c.Query("level"); level != "" {
		parsed, err := domain.ParseCourseLevel(level)
		if err != nil {
			return apperrors.NewValidationError("invalid level", map[string]any{"level": level})
		}
		query.Level = parsed
	}
	courses, err := h.catalog.Search(c.UserContext(), query)
	if err != nil {
		return err
	}
	categories, err := h.catalog.Categories(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": courseResponses(courses),
		"meta": fiber.Map{"categories": categories, "count": len(courses)},
	})
}

// Get handles GET /courses/:id.
func (h *CatalogHandler) Get(c *fiber.Ctx) error {
	course, err := h.catalog.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": courseResponse(course)})
}

// Create handles POST /admin/courses.
func (h *CatalogHandler) Create(c *fiber.Ctx) error {
	input, err := parseCourseRequest(c)
	if err != nil {
		return err
	}
	course, err := h.catalog.Create(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": adminCourseResponse(course)})
}

// Update handles PUT /admin/courses/:id.
func (h *CatalogHandler) Update(c *fiber.Ctx) error {
	input, err := parseCourseRequest(c)
	if err != nil {
		return err
	}
	course, err := h.catalog.Update(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": adminCourseResponse(course)})
}

// Delete handles DELETE /admin/courses/:id.
func (h *CatalogHandler) Delete(c *fiber.Ctx) error {
	if err := h.catalog.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func parseCourseRequest(c *fiber.Ctx) (service.CourseInput, error) {
	var req dto.CourseRequest
	if err := c.BodyParser(&req); err != nil {
		return service.CourseInput{}, apperrors.NewValidationError("invalid payload", nil)
	}
	return service.CourseInput{
		Title:        req.Title,
		Description:  req.Description,
		Price:        req.Price,
		Currency:     req.Currency,
		Duration:     req.Duration,
		Instructor:   req.Instructor,
		Level:        domain.CourseLevel(req.Level),
		Category:     req.Category,
		Image:        req.Image,
		Details:      req.Details,
		ResourceLink: req.ResourceLink,
	}, nil
}
