package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/certdesk/course-storefront/internal/api/dto"
	"github.com/certdesk/course-storefront/internal/service"
	apperrors "github.com/certdesk/course-storefront/pkg/util/errorutil"
)

// CartHandler manages the session cart.
type CartHandler struct {
	carts *service.CartService
}

// NewCartHandler constructs handler.
func NewCartHandler(carts *service.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

// View handles GET /cart.
func (h *CartHandler) View(c *fiber.Ctx) error {
	view, err := h.carts.View(SessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": cartResponse(view)})
}

// Add handles POST /cart/items.
func (h *CartHandler) Add(c *fiber.Ctx) error {
	var req dto.AddCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.CourseID == "" {
		return apperrors.NewValidationError("course_id required", nil)
	}
	view, err := h.carts.Add(c.UserContext(), SessionID(c), req.CourseID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": cartResponse(view)})
}

// Remove handles DELETE /cart/items/:id.
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	view, err := h.carts.Remove(SessionID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": cartResponse(view)})
}

// Clear handles DELETE /cart.
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	view, err := h.carts.Clear(SessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": cartResponse(view)})
}
