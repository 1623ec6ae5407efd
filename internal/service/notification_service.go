package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/certdesk/course-storefront/internal/events"
	"github.com/certdesk/course-storefront/internal/mailer"
)

// Mailer sends a message through the email function.
type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) error
	Configured() bool
}

const notificationQueueSize = 64

// NotificationService turns domain events into emails for the operator and,
// for password resets, the account owner. Mail is
// queued and sent by Run so event publishers never wait on the email function.
type NotificationService struct {
	dispatcher events.Dispatcher
	mailer     Mailer
	logger     *zap.Logger
	queue      chan mailer.Message
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, m Mailer, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		mailer:     m,
		logger:     logger,
		queue:      make(chan mailer.Message, notificationQueueSize),
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventEnrollmentRequested, n.handleEnrollmentRequested)
	n.dispatcher.Subscribe(events.EventPasswordResetRequested, n.handlePasswordResetRequested)
	n.dispatcher.Subscribe(events.EventEnrollmentRequestHandled, n.logEvent)
	n.dispatcher.Subscribe(events.EventCourseAssigned, n.logEvent)
	n.dispatcher.Subscribe(events.EventResourceLinkSet, n.logEvent)
	n.dispatcher.Subscribe(events.EventCheckoutCompleted, n.logEvent)
}

// Run sends queued mail until ctx is done.
func (n *NotificationService) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-n.queue:
			if err := n.mailer.Send(ctx, msg); err != nil {
				n.logger.Error("notification failed", zap.String("email", msg.Email), zap.Error(err))
			}
		}
	}
}

func (n *NotificationService) handleEnrollmentRequested(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.EnrollmentRequestedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	n.logger.Info("EnrollmentRequested", zap.String("request_id", payload.RequestID), zap.String("course_id", payload.CourseID))
	if n.mailer == nil || !n.mailer.Configured() {
		return nil
	}

	var query strings.Builder
	fmt.Fprintf(&query, "Enrollment request for %s (%s).", payload.CourseTitle, payload.CourseID)
	if payload.Message != "" {
		fmt.Fprintf(&query, "\n\n%s", payload.Message)
	}
	n.enqueue(mailer.Message{
		Name:  payload.Name,
		Email: payload.Email,
		Phone: payload.Phone,
		Query: query.String(),
	})
	return nil
}

func (n *NotificationService) handlePasswordResetRequested(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PasswordResetRequestedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	n.logger.Info("PasswordResetRequested", zap.String("user_id", payload.UserID))
	if n.mailer == nil || !n.mailer.Configured() {
		n.logger.Warn("password reset link not mailed; email function not configured", zap.String("user_id", payload.UserID))
		return nil
	}
	n.enqueue(mailer.Message{
		Name:  payload.Name,
		Email: payload.Email,
		To:    payload.Email,
		Query: fmt.Sprintf("Set a new password for your account: %s\n\nThe link expires at %s.",
			payload.ResetURL, payload.ExpiresAt.UTC().Format(time.RFC1123)),
	})
	return nil
}

func (n *NotificationService) enqueue(msg mailer.Message) {
	select {
	case n.queue <- msg:
	default:
		n.logger.Warn("notification queue full; dropping message", zap.String("email", msg.Email))
	}
}

func (n *NotificationService) logEvent(_ context.Context, event events.Event) error {
	n.logger.Info(string(event.Type), zap.String("event_id", event.ID), zap.String("actor_id", event.ActorID), zap.Any("payload", event.Payload))
	return nil
}
