package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/certdesk/course-storefront/internal/api/dto"
	"github.com/certdesk/course-storefront/internal/domain"
	"github.com/certdesk/course-storefront/internal/service"
	apperrors "github.com/certdesk/course-storefront/pkg/util/errorutil"
)

// CheckoutHandler serves the order summary and submits checkout.
type CheckoutHandler struct {
	checkout *service.CheckoutService
}

// NewCheckoutHandler constructs handler.
func NewCheckoutHandler(checkout *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

// Summary handles GET /checkout. An empty cart redirects to the catalog.
func (h *CheckoutHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.checkout.Summary(SessionID(c))
	if service.IsEmptyCart(err) {
		return c.Redirect(h.checkout.CatalogPath(), fiber.StatusSeeOther)
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CheckoutSummaryResponse{
		Items:      courseResponses(summary.Items),
		Subtotal:   summary.Subtotal,
		TaxPercent: summary.TaxPercent,
		TaxAmount:  summary.TaxAmount,
		Total:      summary.Total,
		Currency:   summary.Currency,
	}})
}

// Submit handles POST /checkout. On success the client follows payment_url.
func (h *CheckoutHandler) Submit(c *fiber.Ctx) error {
	var req dto.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	billing := domain.BillingInfo{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
		City:     req.City,
		Country:  req.Country,
	}
	result, err := h.checkout.Submit(c.UserContext(), SessionID(c), optionalUser(c), billing)
	if err != nil {
		return err
	}

	outcomes := make([]dto.EnrollmentOutcomeResponse, 0, len(result.Outcomes))
	for _, o := range result.Outcomes {
		outcomes = append(outcomes, dto.EnrollmentOutcomeResponse{CourseID: o.CourseID, Enrolled: o.Enrolled})
	}
	return c.JSON(fiber.Map{"data": dto.CheckoutResponse{
		State:      string(result.State),
		PaymentURL: result.PaymentURL,
		Total:      result.Total,
		Currency:   result.Currency,
		Outcomes:   outcomes,
	}})
}
