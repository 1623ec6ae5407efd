package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/certdesk/course-storefront/internal/cart"
	"github.com/certdesk/course-storefront/internal/domain"
	apperrors "github.com/certdesk/course-storefront/pkg/util/errorutil"
)

// CartService exposes a session's cart.
type CartService struct {
	sessions *cart.Manager
	catalog  *CatalogService
}

// CartView is a snapshot of a cart.
type CartView struct {
	Items    []domain.Course
	Count    int
	Total    decimal.Decimal
	Currency string
}

// NewCartService creates the service.
func NewCartService(sessions *cart.Manager, catalog *CatalogService) *CartService {
	return &CartService{sessions: sessions, catalog: catalog}
}

// View returns the cart for sessionID; an unknown session has an empty cart.
func (s *CartService) View(sessionID string) (*CartView, error) {
	return s.view(s.sessions.GetOrCreate(sessionID).Cart)
}

// Add puts a catalog course in the cart. Adding a course twice is a no-op.
func (s *CartService) Add(ctx context.Context, sessionID, courseID string) (*CartView, error) {
	course, err := s.catalog.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}
	c := s.sessions.GetOrCreate(sessionID).Cart
	if _, err := c.AddSameCurrency(*course); err != nil {
		if errors.Is(err, cart.ErrMixedCurrency) {
			return nil, apperrors.NewValidationError("cart cannot mix currencies", map[string]any{
				"cart_currency":   c.Currency(),
				"course_currency": course.Currency,
			})
		}
		return nil, err
	}
	return s.view(c)
}

// Remove drops a course; removing an absent course is not an error.
func (s *CartService) Remove(sessionID, courseID string) (*CartView, error) {
	c := s.sessions.GetOrCreate(sessionID).Cart
	c.Remove(courseID)
	return s.view(c)
}

// Clear empties the cart.
func (s *CartService) Clear(sessionID string) (*CartView, error) {
	c := s.sessions.GetOrCreate(sessionID).Cart
	c.Clear()
	return s.view(c)
}

func (s *CartService) view(c *cart.Cart) (*CartView, error) {
	items := c.Items()
	total, currency, err := cart.Total(items)
	if err != nil {
		return nil, mixedCurrencyError()
	}
	return &CartView{Items: items, Count: len(items), Total: total, Currency: currency}, nil
}
