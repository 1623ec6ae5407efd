package service

import (
	"context"
	"testing"

	"github.com/certdesk/course-storefront/internal/domain"
	"github.com/certdesk/course-storefront/internal/events"
	"github.com/certdesk/course-storefront/internal/repository"
	apperrors "github.com/certdesk/course-storefront/pkg/util/errorutil"
)

type enrollmentFixture struct {
	store      *fakeStore
	catalog    *CatalogService
	svc        *EnrollmentService
	dispatcher events.Dispatcher
	admin      *domain.User
}

func newEnrollmentFixture(t *testing.T) *enrollmentFixture {
	t.Helper()
	store := newFakeStore()
	catalog, _ := newTestCatalog()
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewEnrollmentService(EnrollmentDependencies{
		UserRepo:       fakeUserRepo{store},
		AssignmentRepo: fakeAssignmentRepo{store},
		RequestRepo:    fakeRequestRepo{store},
		Catalog:        catalog,
		Dispatcher:     dispatcher,
	})

	admin := &domain.User{Name: "Admin", Email: "admin@x.com", Status: domain.UserStatusActive}
	if err := (fakeUserRepo{store}).Create(context.Background(), admin); err != nil {
		t.Fatalf("create admin: %v", err)
	}
	store.roles[admin.ID] = domain.RoleAdmin
	admin.Role = domain.RoleAdmin

	return &enrollmentFixture{store: store, catalog: catalog, svc: svc, dispatcher: dispatcher, admin: admin}
}

func (f *enrollmentFixture) createUser(t *testing.T, email string) *domain.User {
	t.Helper()
	u := &domain.User{Name: "Shopper", Email: email, PasswordHash: "hash", Status: domain.UserStatusActive}
	if err := (fakeUserRepo{f.store}).Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestApproveRequestProvisionsUserAndDeletesRequest(t *testing.T) {
	ctx := context.Background()
	f := newEnrollmentFixture(t)

	var handled []events.Event
	f.dispatcher.Subscribe(events.EventEnrollmentRequestHandled, func(_ context.Context, e events.Event) error {
		handled = append(handled, e)
		return nil
	})

	req, err := f.svc.SubmitRequest(ctx, EnrollmentRequestInput{Name: "A", Email: "A@x.com", CourseID: "course-1"})
	if err != nil {
		t.Fatalf("SubmitRequest returned error: %v", err)
	}
	// A duplicate submission for the same email and course.
	if _, err := f.svc.SubmitRequest(ctx, EnrollmentRequestInput{Name: "A", Email: "a@x.com", CourseID: "course-1"}); err != nil {
		t.Fatalf("SubmitRequest returned error: %v", err)
	}

	result, err := f.svc.ApproveRequest(ctx, f.admin, req.ID)
	if err != nil {
		t.Fatalf("ApproveRequest returned error: %v", err)
	}
	if !result.UserCreated {
		t.Error("Expected a user to be provisioned")
	}
	if result.User.HasPassword() {
		t.Error("Provisioned user should have no password")
	}

	user, err := (fakeUserRepo{f.store}).GetByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("GetByEmail returned error: %v", err)
	}
	if !user.IsEnrolled("course-1") {
		t.Errorf("Expected enrollment in course-1, got %v", user.EnrolledCourseIDs)
	}

	pending, _ := f.svc.ListRequests(ctx, f.admin)
	for _, p := range pending {
		if p.Email == "a@x.com" && p.CourseID == "course-1" {
			t.Errorf("Expected no pending request for a@x.com/course-1, found %+v", p)
		}
	}
	if len(handled) != 1 {
		t.Errorf("Expected one handled event, got %d", len(handled))
	}
}

func TestApproveRequestExistingEnrolledUser(t *testing.T) {
	ctx := context.Background()
	f := newEnrollmentFixture(t)
	user := f.createUser(t, "b@x.com")
	course, _ := f.catalog.Get(ctx, "course-3")
	if _, err := f.svc.Enroll(ctx, user.ID, *course, domain.AssignmentSourceCheckout); err != nil {
		t.Fatalf("Enroll returned error: %v", err)
	}

	req, _ := f.svc.SubmitRequest(ctx, EnrollmentRequestInput{Name: "B", Email: "b@x.com", CourseID: "course-3"})
	result, err := f.svc.ApproveRequest(ctx, f.admin, req.ID)
	if err != nil {
		t.Fatalf("ApproveRequest returned error: %v", err)
	}
	if result.UserCreated || !result.AlreadyEnrolled {
		t.Errorf("Expected existing enrolled user, got %+v", result)
	}
	if n := len(f.store.assignments); n != 1 {
		t.Errorf("Expected 1 assignment, got %d", n)
	}
}

func TestDenyRequest(t *testing.T) {
	ctx := context.Background()
	f := newEnrollmentFixture(t)
	req, _ := f.svc.SubmitRequest(ctx, EnrollmentRequestInput{Name: "C", Email: "c@x.com", CourseID: "course-2"})

	if err := f.svc.DenyRequest(ctx, f.admin, req.ID); err != nil {
		t.Fatalf("DenyRequest returned error: %v", err)
	}
	if len(f.store.requests) != 0 {
		t.Errorf("Expected request deleted, got %d left", len(f.store.requests))
	}
	if len(f.store.users) != 1 {
		t.Errorf("Deny must not create users, got %d", len(f.store.users))
	}
	if err := f.svc.DenyRequest(ctx, f.admin, req.ID); !apperrors.IsNotFound(err) {
		t.Errorf("Expected not found on second deny, got %v", err)
	}
}

func TestAssignIsIdempotentAndKeepsLink(t *testing.T) {
	ctx := context.Background()
	f := newEnrollmentFixture(t)
	user := f.createUser(t, "d@x.com")

	link := "https://learn.example.com/aws"
	if _, err := f.svc.Assign(ctx, f.admin, user.ID, "course-1", &link); err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}
	second, err := f.svc.Assign(ctx, f.admin, user.ID, "course-1", nil)
	if err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}
	if len(f.store.assignments) != 1 {
		t.Errorf("Expected one assignment record, got %d", len(f.store.assignments))
	}
	if second.ResourceLink == nil || *second.ResourceLink != link {
		t.Errorf("Expected resource link kept, got %v", second.ResourceLink)
	}
}

func TestSetResourceLinkRequiresAssignment(t *testing.T) {
	ctx := context.Background()
	f := newEnrollmentFixture(t)
	user := f.createUser(t, "e@x.com")

	_, err := f.svc.SetResourceLink(ctx, f.admin, user.ID, "course-4", "https://learn.example.com/pmp")
	if !apperrors.IsNotFound(err) {
		t.Fatalf("Expected not found, got %v", err)
	}

	if _, err := f.svc.Assign(ctx, f.admin, user.ID, "course-4", nil); err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}
	got, err := f.svc.SetResourceLink(ctx, f.admin, user.ID, "course-4", "https://learn.example.com/pmp")
	if err != nil {
		t.Fatalf("SetResourceLink returned error: %v", err)
	}
	if got.ResourceLink == nil || *got.ResourceLink != "https://learn.example.com/pmp" {
		t.Errorf("Unexpected link %v", got.ResourceLink)
	}

	_, err = f.svc.SetResourceLink(ctx, f.admin, user.ID, "course-4", "javascript:alert(1)")
	if de := apperrors.ToDomainError(err); de == nil || de.Code != "VALIDATION_FAILED" {
		t.Errorf("Expected validation error for non-http link, got %v", err)
	}
}

func TestAdminOperationsRejectNonAdmins(t *testing.T) {
	ctx := context.Background()
	f := newEnrollmentFixture(t)
	user := f.createUser(t, "f@x.com")

	if _, err := f.svc.Assign(ctx, user, user.ID, "course-1", nil); apperrors.ToDomainError(err).Code != "FORBIDDEN" {
		t.Errorf("Expected FORBIDDEN, got %v", err)
	}
	if _, err := f.svc.ListRequests(ctx, nil); apperrors.ToDomainError(err).Code != "UNAUTHORIZED" {
		t.Errorf("Expected UNAUTHORIZED, got %v", err)
	}
}

func TestListForUserJoinsCatalog(t *testing.T) {
	ctx := context.Background()
	f := newEnrollmentFixture(t)
	user := f.createUser(t, "g@x.com")

	if _, err := f.svc.Assign(ctx, f.admin, user.ID, "course-5", nil); err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}
	if err := f.catalog.Delete(ctx, "course-5"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := f.svc.Assign(ctx, f.admin, user.ID, "course-1", nil); err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}

	got, err := f.svc.ListForUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListForUser returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 enrollments, got %d", len(got))
	}
	for _, e := range got {
		switch e.Assignment.CourseID {
		case "course-1":
			if e.Course == nil {
				t.Error("Expected catalog entry for course-1")
			}
		case "course-5":
			if e.Course != nil {
				t.Error("Expected no catalog entry for deleted course-5")
			}
		}
	}

	filtered, _ := f.svc.ListAssignments(ctx, repository.AssignmentFilter{UserID: &user.ID})
	if len(filtered) != 2 {
		t.Errorf("Expected 2 assignments, got %d", len(filtered))
	}
}

func TestSubmitRequestValidation(t *testing.T) {
	f := newEnrollmentFixture(t)
	_, err := f.svc.SubmitRequest(context.Background(), EnrollmentRequestInput{Name: "", Email: "nope", CourseID: ""})
	de := apperrors.ToDomainError(err)
	if de == nil || de.Code != "VALIDATION_FAILED" {
		t.Fatalf("Expected validation error, got %v", err)
	}
	for _, field := range []string{"name", "email", "course_id"} {
		if _, ok := de.Details[field]; !ok {
			t.Errorf("Expected detail for %s", field)
		}
	}

	_, err = f.svc.SubmitRequest(context.Background(), EnrollmentRequestInput{Name: "x", Email: "x@x.com", CourseID: "missing"})
	if !apperrors.IsNotFound(err) {
		t.Errorf("Expected not found for unknown course, got %v", err)
	}
}
