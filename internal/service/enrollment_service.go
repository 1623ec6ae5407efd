package service

import (
	"context"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/certdesk/course-storefront/internal/domain"
	"github.com/certdesk/course-storefront/internal/events"
	"github.com/certdesk/course-storefront/internal/repository"
	apperrors "github.com/certdesk/course-storefront/pkg/util/errorutil"
)

// EnrollmentService owns course assignments, the single source of truth for
// which user may access which course, and the enrollment request queue.
type EnrollmentService struct {
	users       repository.UserRepository
	assignments repository.AssignmentRepository
	requests    repository.EnrollmentRequestRepository
	catalog     *CatalogService
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// EnrollmentDependencies bundles repositories.
type EnrollmentDependencies struct {
	UserRepo       repository.UserRepository
	AssignmentRepo repository.AssignmentRepository
	RequestRepo    repository.EnrollmentRequestRepository
	Catalog        *CatalogService
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// EnrollmentRequestInput is submitted by a shopper without an account.
type EnrollmentRequestInput struct {
	Name     string
	Email    string
	Phone    string
	CourseID string
	Message  string
}

// ApprovalResult describes what approving a request did.
type ApprovalResult struct {
	User            *domain.User
	UserCreated     bool
	AlreadyEnrolled bool
	Assignment      *domain.CourseAssignment
}

// EnrolledCourse pairs an assignment with the current catalog entry, if any.
type EnrolledCourse struct {
	Assignment domain.CourseAssignment
	Course     *domain.Course
}

// NewEnrollmentService creates the service.
func NewEnrollmentService(deps EnrollmentDependencies) *EnrollmentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		users:       deps.UserRepo,
		assignments: deps.AssignmentRepo,
		requests:    deps.RequestRepo,
		catalog:     deps.Catalog,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
	}
}

// Enroll records that userID may access course. Repeating it refreshes the
// denormalized course fields and never duplicates the record.
func (s *EnrollmentService) Enroll(ctx context.Context, userID string, course domain.Course, source domain.AssignmentSource) (*domain.CourseAssignment, error) {
	assignment := domain.NewCourseAssignment(userID, course, source)
	if err := s.assignments.Upsert(ctx, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

// Assign enrolls a user in a course on an admin's behalf, optionally with a
// resource link.
func (s *EnrollmentService) Assign(ctx context.Context, actor *domain.User, userID, courseID string, link *string) (*domain.CourseAssignment, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if link != nil {
		normalized, err := normalizeResourceLink(*link)
		if err != nil {
			return nil, err
		}
		link = &normalized
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	course, err := s.catalog.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}

	assignment := domain.NewCourseAssignment(userID, *course, domain.AssignmentSourceAdmin)
	assignment.ResourceLink = link
	if err := s.assignments.Upsert(ctx, assignment); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, actor.ID, events.EventCourseAssigned, events.CourseAssignedPayload{
		UserID:   userID,
		CourseID: courseID,
		Source:   string(assignment.Source),
	})
	return assignment, nil
}

// SetResourceLink sets the link of an existing assignment. The assignment
// must exist first.
func (s *EnrollmentService) SetResourceLink(ctx context.Context, actor *domain.User, userID, courseID, link string) (*domain.CourseAssignment, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	normalized, err := normalizeResourceLink(link)
	if err != nil {
		return nil, err
	}
	if err := s.assignments.SetResourceLink(ctx, userID, courseID, &normalized); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("assignment", map[string]any{"user_id": userID, "course_id": courseID})
		}
		return nil, apperrors.MapError(err)
	}
	assignment, err := s.assignments.Get(ctx, userID, courseID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, actor.ID, events.EventResourceLinkSet, events.ResourceLinkSetPayload{
		UserID:   userID,
		CourseID: courseID,
		Link:     normalized,
	})
	return assignment, nil
}

// Unassign removes an enrollment.
func (s *EnrollmentService) Unassign(ctx context.Context, actor *domain.User, userID, courseID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.assignments.Delete(ctx, userID, courseID); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFound("assignment", map[string]any{"user_id": userID, "course_id": courseID})
		}
		return apperrors.MapError(err)
	}
	s.logger.Info("assignment removed", zap.String("user_id", userID), zap.String("course_id", courseID), zap.String("actor_id", actor.ID))
	return nil
}

// ListAssignments returns assignments for the admin view.
func (s *EnrollmentService) ListAssignments(ctx context.Context, filter repository.AssignmentFilter) ([]domain.CourseAssignment, error) {
	assignments, err := s.assignments.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return assignments, nil
}

// ListForUser returns the user's dashboard: every enrollment with the current
// catalog entry. Courses deleted from the catalog keep their assignment with
// a nil Course.
func (s *EnrollmentService) ListForUser(ctx context.Context, userID string) ([]EnrolledCourse, error) {
	assignments, err := s.assignments.List(ctx, repository.AssignmentFilter{UserID: &userID})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	courses, err := s.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Course, len(courses))
	for _, c := range courses {
		byID[c.ID] = c
	}

	result := make([]EnrolledCourse, 0, len(assignments))
	for _, a := range assignments {
		entry := EnrolledCourse{Assignment: a}
		if course, ok := byID[a.CourseID]; ok {
			c := course
			entry.Course = &c
		}
		result = append(result, entry)
	}
	return result, nil
}

// SubmitRequest queues an enrollment inquiry for admin review.
func (s *EnrollmentService) SubmitRequest(ctx context.Context, input EnrollmentRequestInput) (*domain.EnrollmentRequest, error) {
	details := map[string]any{}
	if strings.TrimSpace(input.Name) == "" {
		details["name"] = "required"
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(input.Email)); err != nil {
		details["email"] = "must be a valid email address"
	}
	if strings.TrimSpace(input.CourseID) == "" {
		details["course_id"] = "required"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid enrollment request", details)
	}
	course, err := s.catalog.Get(ctx, input.CourseID)
	if err != nil {
		return nil, err
	}

	req := &domain.EnrollmentRequest{
		Name:     strings.TrimSpace(input.Name),
		Email:    strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:    strings.TrimSpace(input.Phone),
		CourseID: course.ID,
		Message:  strings.TrimSpace(input.Message),
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, "", events.EventEnrollmentRequested, events.EnrollmentRequestedPayload{
		RequestID:   req.ID,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		CourseID:    req.CourseID,
		CourseTitle: course.Title,
		Message:     req.Message,
	})
	return req, nil
}

// ListRequests returns pending requests, oldest first.
func (s *EnrollmentService) ListRequests(ctx context.Context, actor *domain.User) ([]domain.EnrollmentRequest, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	reqs, err := s.requests.ListPending(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return reqs, nil
}

// ApproveRequest finds or creates the user by email, enrolls them in the
// requested course when not already enrolled, then deletes every pending
// request for that email and course.
func (s *EnrollmentService) ApproveRequest(ctx context.Context, actor *domain.User, requestID string) (*ApprovalResult, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	req, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	result := &ApprovalResult{}
	user, err := s.users.GetByEmail(ctx, req.Email)
	switch {
	case err == nil:
		result.User = user
	case apperrors.IsNotFound(err):
		user = &domain.User{
			Name:   req.Name,
			Email:  req.Email,
			Status: domain.UserStatusActive,
			Role:   domain.RoleUser,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, apperrors.MapError(err)
		}
		result.User = user
		result.UserCreated = true
		s.logger.Info("provisioned user from enrollment request", zap.String("user_id", user.ID), zap.String("request_id", req.ID))
	default:
		return nil, apperrors.MapError(err)
	}

	if user.IsEnrolled(req.CourseID) {
		result.AlreadyEnrolled = true
	} else {
		course, err := s.catalog.Get(ctx, req.CourseID)
		if err != nil {
			if !apperrors.IsNotFound(err) {
				return nil, err
			}
			s.logger.Warn("approving request for course missing from catalog", zap.String("course_id", req.CourseID))
			course = &domain.Course{ID: req.CourseID}
		}
		assignment, err := s.Enroll(ctx, user.ID, *course, domain.AssignmentSourceRequest)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		result.Assignment = assignment
		user.EnrolledCourseIDs = append(user.EnrolledCourseIDs, req.CourseID)
	}

	if _, err := s.requests.DeleteMatching(ctx, req.Email, req.CourseID); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, actor.ID, events.EventEnrollmentRequestHandled, events.EnrollmentRequestHandledPayload{
		RequestID:   req.ID,
		Email:       req.Email,
		CourseID:    req.CourseID,
		Approved:    true,
		UserID:      user.ID,
		UserCreated: result.UserCreated,
	})
	return result, nil
}

// DenyRequest discards a request with no other effect.
func (s *EnrollmentService) DenyRequest(ctx context.Context, actor *domain.User, requestID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	req, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if err := s.requests.Delete(ctx, req.ID); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFound("enrollment request", map[string]any{"request_id": requestID})
		}
		return apperrors.MapError(err)
	}
	s.publish(ctx, actor.ID, events.EventEnrollmentRequestHandled, events.EnrollmentRequestHandledPayload{
		RequestID: req.ID,
		Email:     req.Email,
		CourseID:  req.CourseID,
		Approved:  false,
	})
	return nil
}

func (s *EnrollmentService) loadRequest(ctx context.Context, requestID string) (*domain.EnrollmentRequest, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("enrollment request", map[string]any{"request_id": requestID})
		}
		return nil, apperrors.MapError(err)
	}
	return req, nil
}

func (s *EnrollmentService) publish(ctx context.Context, actorID string, eventType events.EventType, payload any) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Payload:   payload,
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}

func requireAdmin(actor *domain.User) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if !actor.IsAdmin() {
		return apperrors.NewForbidden("admin role required")
	}
	return nil
}

func normalizeResourceLink(link string) (string, error) {
	link = strings.TrimSpace(link)
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", apperrors.NewValidationError("invalid resource link", map[string]any{"link": "must be an absolute http(s) URL"})
	}
	return u.String(), nil
}
