package dto

import "github.com/shopspring/decimal"

// AddCartItemRequest payload for POST /cart/items.
type AddCartItemRequest struct {
	CourseID string `json:"course_id"`
}

// CartResponse is the current cart.
type CartResponse struct {
	Items    []CourseResponse `json:"items"`
	Count    int              `json:"count"`
	Total    decimal.Decimal  `json:"total"`
	Currency string           `json:"currency,omitempty"`
}

// CheckoutRequest carries billing details.
type CheckoutRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Country  string `json:"country"`
}

// CheckoutSummaryResponse is the order summary. Tax is informational; Total
// is what the payment page charges.
type CheckoutSummaryResponse struct {
	Items      []CourseResponse `json:"items"`
	Subtotal   decimal.Decimal  `json:"subtotal"`
	TaxPercent decimal.Decimal  `json:"tax_percent"`
	TaxAmount  decimal.Decimal  `json:"tax_amount"`
	Total      decimal.Decimal  `json:"total"`
	Currency   string           `json:"currency"`
}

// EnrollmentOutcomeResponse reports one course of a checkout.
type EnrollmentOutcomeResponse struct {
	CourseID string `json:"course_id"`
	Enrolled bool   `json:"enrolled"`
}

// CheckoutResponse is returned when checkout succeeds.
type CheckoutResponse struct {
	State      string                      `json:"state"`
	PaymentURL string                      `json:"payment_url"`
	Total      decimal.Decimal             `json:"total"`
	Currency   string                      `json:"currency"`
	Outcomes   []EnrollmentOutcomeResponse `json:"outcomes"`
}
