package service

import (
	"context"
	"testing"

	"github.com/certdesk/course-storefront/internal/domain"
	"github.com/certdesk/course-storefront/internal/repository"
)

func TestUserServiceRoles(t *testing.T) {
	ctx := context.Background()
	f := newEnrollmentFixture(t)
	svc := NewUserService(fakeUserRepo{f.store}, fakeRoleRepo{f.store}, nil)
	user := f.createUser(t, "h@x.com")

	promoted, err := svc.SetRole(ctx, f.admin, user.ID, domain.RoleAdmin)
	if err != nil {
		t.Fatalf("SetRole returned error: %v", err)
	}
	if !promoted.IsAdmin() {
		t.Error("Expected promoted user to be admin")
	}

	if _, err := svc.SetRole(ctx, f.admin, f.admin.ID, domain.RoleUser); errCode(err) != "CONFLICT" {
		t.Errorf("Expected CONFLICT on self-demotion, got %v", err)
	}
	if _, err := svc.SetRole(ctx, f.admin, user.ID, "OWNER"); errCode(err) != "VALIDATION_FAILED" {
		t.Errorf("Expected VALIDATION_FAILED for unknown role, got %v", err)
	}
	if _, err := svc.SetRole(ctx, f.admin, "user-missing", domain.RoleUser); errCode(err) != "NOT_FOUND" {
		t.Errorf("Expected NOT_FOUND, got %v", err)
	}
	if _, err := svc.ListUsers(ctx, user, repository.UserFilter{}); errCode(err) != "FORBIDDEN" {
		t.Errorf("Expected FORBIDDEN for stale actor role, got %v", err)
	}
}

func TestUserServiceListByCourse(t *testing.T) {
	ctx := context.Background()
	f := newEnrollmentFixture(t)
	svc := NewUserService(fakeUserRepo{f.store}, fakeRoleRepo{f.store}, nil)
	enrolled := f.createUser(t, "i@x.com")
	f.createUser(t, "j@x.com")
	if _, err := f.svc.Assign(ctx, f.admin, enrolled.ID, "course-2", nil); err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}

	course := "course-2"
	users, err := svc.ListUsers(ctx, f.admin, repository.UserFilter{CourseID: &course})
	if err != nil {
		t.Fatalf("ListUsers returned error: %v", err)
	}
	if len(users) != 1 || users[0].ID != enrolled.ID {
		t.Errorf("Expected only %s, got %+v", enrolled.ID, users)
	}
}
