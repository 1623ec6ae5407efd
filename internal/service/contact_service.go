package service

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/certdesk/course-storefront/internal/domain"
	"github.com/certdesk/course-storefront/internal/mailer"
	"github.com/certdesk/course-storefront/internal/repository"
	apperrors "github.com/certdesk/course-storefront/pkg/util/errorutil"
)

// ContactService handles the public contact form and newsletter signup.
type ContactService struct {
	mailer     Mailer
	newsletter repository.NewsletterRepository
	logger     *zap.Logger
}

// ContactInput is the contact form.
type ContactInput struct {
	Name  string
	Email string
	Phone string
	Query string
}

// NewContactService creates the service.
func NewContactService(m Mailer, newsletter repository.NewsletterRepository, logger *zap.Logger) *ContactService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactService{mailer: m, newsletter: newsletter, logger: logger}
}

// SendContact forwards the form to the operator. The caller only learns
// whether the email function accepted it.
func (s *ContactService) SendContact(ctx context.Context, input ContactInput) error {
	details := map[string]any{}
	if strings.TrimSpace(input.Name) == "" {
		details["name"] = "required"
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(input.Email)); err != nil {
		details["email"] = "must be a valid email address"
	}
	if strings.TrimSpace(input.Query) == "" {
		details["query"] = "required"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid contact form", details)
	}

	err := s.mailer.Send(ctx, mailer.Message{
		Name:  strings.TrimSpace(input.Name),
		Email: strings.TrimSpace(input.Email),
		Phone: strings.TrimSpace(input.Phone),
		Query: strings.TrimSpace(input.Query),
	})
	if err != nil {
		s.logger.Error("contact email failed", zap.Error(err))
		if errors.Is(err, mailer.ErrNotConfigured) {
			return apperrors.NewDomainError("EMAIL_UNAVAILABLE", "contact email is not configured", http.StatusServiceUnavailable, nil)
		}
		return apperrors.NewUpstreamError("EMAIL_FAILED", "could not send your message, please try again", nil)
	}
	return nil
}

// Subscribe records a newsletter signup. Repeat signups are stored as-is.
func (s *ContactService) Subscribe(ctx context.Context, email string) (*domain.NewsletterSubscription, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperrors.NewValidationError("invalid email", map[string]any{"email": "must be a valid email address"})
	}
	sub := &domain.NewsletterSubscription{Email: email}
	if err := s.newsletter.Create(ctx, sub); err != nil {
		return nil, apperrors.MapError(err)
	}
	return sub, nil
}
