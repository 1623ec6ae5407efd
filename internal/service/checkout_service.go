package service

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/certdesk/course-storefront/internal/cart"
	"github.com/certdesk/course-storefront/internal/concurrency"
	"github.com/certdesk/course-storefront/internal/config"
	"github.com/certdesk/course-storefront/internal/domain"
	"github.com/certdesk/course-storefront/internal/events"
	"github.com/certdesk/course-storefront/internal/repository"
	apperrors "github.com/certdesk/course-storefront/pkg/util/errorutil"
)

// CheckoutPath is stored as the resume destination when an anonymous
// shopper submits checkout.
const CheckoutPath = "/checkout"

// CheckoutService drives a session through IDLE -> SUBMITTING -> REDIRECTED.
type CheckoutService struct {
	sessions    *cart.Manager
	catalog     *CatalogService
	enrollments *EnrollmentService
	state       repository.SessionStateRepository
	dispatcher  events.Dispatcher
	logger      *zap.Logger

	payment     config.PaymentConfig
	taxPercent  decimal.Decimal
	workers     int
	catalogPath string
	loginPath   string
	resumeTTL   time.Duration
}

// CheckoutDependencies bundles collaborators.
type CheckoutDependencies struct {
	Sessions     *cart.Manager
	Catalog      *CatalogService
	Enrollments  *EnrollmentService
	SessionState repository.SessionStateRepository
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// CheckoutSummary is what the checkout page shows. Tax is displayed only;
// Total is the plain sum of prices.
type CheckoutSummary struct {
	Items      []domain.Course
	Subtotal   decimal.Decimal
	TaxPercent decimal.Decimal
	TaxAmount  decimal.Decimal
	Total      decimal.Decimal
	Currency   string
}

// CheckoutResult is returned by Submit.
type CheckoutResult struct {
	State      domain.CheckoutState
	PaymentURL string
	Total      decimal.Decimal
	Currency   string
	Outcomes   []domain.EnrollmentOutcome
}

// NewCheckoutService builds the service.
func NewCheckoutService(cfg config.Config, deps CheckoutDependencies) *CheckoutService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tax, err := decimal.NewFromString(cfg.Checkout.TaxPercent)
	if err != nil {
		logger.Warn("invalid CHECKOUT_TAX_PERCENT; showing no tax", zap.String("value", cfg.Checkout.TaxPercent))
		tax = decimal.Zero
	}
	catalogPath := cfg.Checkout.CatalogPath
	if catalogPath == "" {
		catalogPath = "/courses"
	}
	return &CheckoutService{
		sessions:    deps.Sessions,
		catalog:     deps.Catalog,
		enrollments: deps.Enrollments,
		state:       deps.SessionState,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
		payment:     cfg.Payment,
		taxPercent:  tax,
		workers:     cfg.Checkout.EnrollmentWorkers,
		catalogPath: catalogPath,
		loginPath:   cfg.Auth.LoginPath,
		resumeTTL:   cfg.Auth.ResumeTTL(),
	}
}

// CatalogPath is where an empty-cart checkout is sent.
func (s *CheckoutService) CatalogPath() string {
	return s.catalogPath
}

// Summary prices the session's cart.
func (s *CheckoutService) Summary(sessionID string) (*CheckoutSummary, error) {
	session := s.sessions.GetOrCreate(sessionID)
	items := session.Cart.Items()
	if len(items) == 0 {
		return nil, s.emptyCartError()
	}
	subtotal, currency, err := cart.Total(items)
	if err != nil {
		return nil, mixedCurrencyError()
	}
	return &CheckoutSummary{
		Items:      items,
		Subtotal:   subtotal,
		TaxPercent: s.taxPercent,
		TaxAmount:  subtotal.Mul(s.taxPercent).Div(decimal.NewFromInt(100)).Round(2),
		Total:      subtotal,
		Currency:   currency,
	}, nil
}

// Submit validates billing, enrolls the user in every cart course and, only
// when every enrollment succeeded, removes those courses from the cart and
// returns the payment page URL. On partial failure the cart is kept and the per-course outcomes
// are reported in the error details; submitting again is safe.
func (s *CheckoutService) Submit(ctx context.Context, sessionID string, user *domain.User, billing domain.BillingInfo) (*CheckoutResult, error) {
	session := s.sessions.GetOrCreate(sessionID)

	if missing := billing.MissingFields(); len(missing) > 0 {
		return nil, apperrors.NewValidationError("billing information incomplete", map[string]any{"missing": missing})
	}

	items := session.Cart.Items()
	if len(items) == 0 {
		return nil, s.emptyCartError()
	}

	if user == nil {
		if s.state != nil {
			if err := s.state.SetResumeDestination(ctx, sessionID, CheckoutPath, s.resumeTTL); err != nil {
				s.logger.Warn("failed to store resume destination", zap.String("session_id", sessionID), zap.Error(err))
			}
		}
		return nil, apperrors.NewLoginRequired("sign in to complete checkout", s.loginURL())
	}

	if session.State() == domain.CheckoutStateRedirected {
		session.Reset()
	}
	if !session.Transition(domain.CheckoutStateIdle, domain.CheckoutStateSubmitting) {
		return nil, apperrors.NewConflict("checkout already in progress", nil)
	}

	courses, err := s.currentCourses(ctx, items)
	if err != nil {
		session.Reset()
		return nil, err
	}
	total, currency, err := cart.Total(courses)
	if err != nil {
		session.Reset()
		return nil, mixedCurrencyError()
	}

	outcomes := s.enrollAll(ctx, user.ID, courses)
	if failed := failedOutcomes(outcomes); len(failed) > 0 {
		session.Reset()
		s.logger.Warn("checkout enrollment incomplete; cart kept",
			zap.String("session_id", sessionID),
			zap.Int("failed", len(failed)),
			zap.Int("total", len(outcomes)))
		return &CheckoutResult{State: domain.CheckoutStateIdle, Outcomes: outcomes, Total: total, Currency: currency},
			apperrors.NewUpstreamError("ENROLLMENT_INCOMPLETE", "some enrollments could not be recorded; nothing was charged", map[string]any{
				"outcomes": outcomeDetails(outcomes),
			})
	}

	// Only the enrolled courses leave the cart. Anything added while the
	// enrollments ran stays for the next checkout.
	courseIDs := make([]string, 0, len(courses))
	for _, c := range courses {
		session.Cart.Remove(c.ID)
		courseIDs = append(courseIDs, c.ID)
	}
	session.Transition(domain.CheckoutStateSubmitting, domain.CheckoutStateRedirected)

	s.publish(ctx, user.ID, events.CheckoutCompletedPayload{
		UserID:    user.ID,
		CourseIDs: courseIDs,
		Total:     total.String(),
		Currency:  currency,
	})

	return &CheckoutResult{
		State:      domain.CheckoutStateRedirected,
		PaymentURL: s.paymentURL(),
		Total:      total,
		Currency:   currency,
		Outcomes:   outcomes,
	}, nil
}

// currentCourses re-reads every cart course from the catalog. A course that
// was deleted since it was added fails the checkout before anything is written.
func (s *CheckoutService) currentCourses(ctx context.Context, items []domain.Course) ([]domain.Course, error) {
	catalog, err := s.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Course, len(catalog))
	for _, c := range catalog {
		byID[c.ID] = c
	}

	courses := make([]domain.Course, 0, len(items))
	var missing []string
	for _, item := range items {
		course, ok := byID[item.ID]
		if !ok {
			missing = append(missing, item.ID)
			continue
		}
		courses = append(courses, course)
	}
	if len(missing) > 0 {
		return nil, apperrors.NewConflict("cart contains courses no longer in the catalog", map[string]any{"course_ids": missing})
	}
	return courses, nil
}

func (s *CheckoutService) enrollAll(ctx context.Context, userID string, courses []domain.Course) []domain.EnrollmentOutcome {
	results := concurrency.ProcessAll(ctx, courses, concurrency.Options{MaxWorkers: s.workers},
		func(ctx context.Context, _ int, course domain.Course) (*domain.CourseAssignment, error) {
			return s.enrollments.Enroll(ctx, userID, course, domain.AssignmentSourceCheckout)
		})

	outcomes := make([]domain.EnrollmentOutcome, len(results))
	for i, res := range results {
		outcomes[i] = domain.EnrollmentOutcome{CourseID: courses[i].ID, Enrolled: res.Err == nil}
		if res.Err != nil {
			outcomes[i].Error = res.Err.Error()
		}
	}
	if errs := concurrency.Errors(results); len(errs) > 0 {
		s.logger.Error("checkout enrollment failed",
			zap.String("user_id", userID),
			zap.Int("failed", len(errs)),
			zap.Error(errors.Join(errs...)))
	}
	return outcomes
}

func (s *CheckoutService) paymentURL() string {
	u, err := url.Parse(s.payment.PageURL)
	if err != nil {
		s.logger.Error("invalid PAYMENT_PAGE_URL", zap.Error(err))
		return s.payment.PageURL
	}
	if s.payment.MerchantCode != "" {
		q := u.Query()
		q.Set(s.payment.MerchantParam, s.payment.MerchantCode)
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func (s *CheckoutService) loginURL() string {
	path := s.loginPath
	if path == "" {
		path = "/auth/login"
	}
	return path + "?" + url.Values{"next": {CheckoutPath}}.Encode()
}

func (s *CheckoutService) emptyCartError() error {
	return apperrors.NewDomainError("EMPTY_CART", "cart is empty", 409, map[string]any{"redirect": s.catalogPath})
}

func (s *CheckoutService) publish(ctx context.Context, actorID string, payload events.CheckoutCompletedPayload) {
	if s.dispatcher == nil {
		return
	}
	err := s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventCheckoutCompleted,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
	if err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(events.EventCheckoutCompleted)), zap.Error(err))
	}
}

// IsEmptyCart reports whether err is the empty-cart checkout error.
func IsEmptyCart(err error) bool {
	var de *apperrors.DomainError
	return errors.As(err, &de) && de.Code == "EMPTY_CART"
}

func mixedCurrencyError() error {
	return apperrors.NewValidationError("cart mixes currencies", map[string]any{"reason": cart.ErrMixedCurrency.Error()})
}

func failedOutcomes(outcomes []domain.EnrollmentOutcome) []domain.EnrollmentOutcome {
	var failed []domain.EnrollmentOutcome
	for _, o := range outcomes {
		if !o.Enrolled {
			failed = append(failed, o)
		}
	}
	return failed
}

func outcomeDetails(outcomes []domain.EnrollmentOutcome) []map[string]any {
	out := make([]map[string]any, 0, len(outcomes))
	for _, o := range outcomes {
		entry := map[string]any{"course_id": o.CourseID, "enrolled": o.Enrolled}
		if o.Error != "" {
			entry["error"] = "enrollment write failed"
		}
		out = append(out, entry)
	}
	return out
}
