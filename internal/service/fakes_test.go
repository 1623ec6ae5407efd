package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/certdesk/course-storefront/internal/domain"
	"github.com/certdesk/course-storefront/internal/mailer"
	"github.com/certdesk/course-storefront/internal/repository"
)

type fakeCatalogRepo struct {
	mu    sync.Mutex
	doc   []byte
	saves int
}

func (r *fakeCatalogRepo) Load(_ context.Context) ([]domain.Course, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.doc == nil {
		return nil, false, nil
	}
	var courses []domain.Course
	if err := json.Unmarshal(r.doc, &courses); err != nil {
		return nil, false, err
	}
	return courses, true, nil
}

func (r *fakeCatalogRepo) Save(_ context.Context, courses []domain.Course) error {
	doc, err := json.Marshal(courses)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.doc = doc
	r.saves++
	return nil
}

type fakeStore struct {
	mu          sync.Mutex
	seq         int
	users       map[string]*domain.User
	roles       map[string]domain.Role
	assignments map[string]*domain.CourseAssignment
	requests    map[string]*domain.EnrollmentRequest
	newsletter  []domain.NewsletterSubscription
	resets      map[string]*repository.PasswordResetToken

	// failCourse makes Upsert fail for that course id.
	failCourse map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       map[string]*domain.User{},
		roles:       map[string]domain.Role{},
		assignments: map[string]*domain.CourseAssignment{},
		requests:    map[string]*domain.EnrollmentRequest{},
		resets:      map[string]*repository.PasswordResetToken{},
		failCourse:  map[string]bool{},
	}
}

func (s *fakeStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func assignmentKey(userID, courseID string) string {
	return userID + "|" + courseID
}

// projectUser mirrors the SQL read: role from user_roles, enrolled ids from assignments.
func (s *fakeStore) projectUser(u *domain.User) *domain.User {
	out := *u
	out.Role = domain.RoleUser
	if role, ok := s.roles[u.ID]; ok {
		out.Role = role
	}
	out.EnrolledCourseIDs = nil
	for _, a := range s.assignments {
		if a.UserID == u.ID {
			out.EnrolledCourseIDs = append(out.EnrolledCourseIDs, a.CourseID)
		}
	}
	sort.Strings(out.EnrolledCourseIDs)
	return &out
}

type fakeUserRepo struct{ *fakeStore }

func (r fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.Email = strings.ToLower(user.Email)
	for _, u := range r.users {
		if u.Email == user.Email {
			return errors.New("duplicate email")
		}
	}
	user.ID = r.nextID("user")
	user.CreatedAt = time.Now()
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return r.projectUser(u), nil
}

func (r fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == strings.ToLower(email) {
			return r.projectUser(u), nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r fakeUserRepo) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, u := range r.users {
		projected := r.projectUser(u)
		if filter.Search != nil && !strings.Contains(projected.Email, strings.ToLower(*filter.Search)) {
			continue
		}
		if filter.CourseID != nil && !projected.IsEnrolled(*filter.CourseID) {
			continue
		}
		out = append(out, *projected)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

type fakeRoleRepo struct{ *fakeStore }

func (r fakeRoleRepo) GetRole(_ context.Context, userID string) (domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if role, ok := r.roles[userID]; ok {
		return role, nil
	}
	return domain.RoleUser, nil
}

func (r fakeRoleRepo) SetRole(_ context.Context, userID string, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roles[userID] = role
	return nil
}

type fakeAssignmentRepo struct{ *fakeStore }

func (r fakeAssignmentRepo) Upsert(_ context.Context, a *domain.CourseAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCourse[a.CourseID] {
		return errors.New("write failed")
	}
	key := assignmentKey(a.UserID, a.CourseID)
	if existing, ok := r.assignments[key]; ok {
		existing.CourseTitle = a.CourseTitle
		existing.CourseCategory = a.CourseCategory
		existing.CourseImage = a.CourseImage
		if a.ResourceLink != nil {
			existing.ResourceLink = a.ResourceLink
		}
		existing.UpdatedAt = time.Now()
		a.ID = existing.ID
		a.ResourceLink = existing.ResourceLink
		a.Source = existing.Source
		return nil
	}
	a.ID = r.nextID("assignment")
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	stored := *a
	r.assignments[key] = &stored
	return nil
}

func (r fakeAssignmentRepo) Get(_ context.Context, userID, courseID string) (*domain.CourseAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assignments[assignmentKey(userID, courseID)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := *a
	return &out, nil
}

func (r fakeAssignmentRepo) SetResourceLink(_ context.Context, userID, courseID string, link *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assignments[assignmentKey(userID, courseID)]
	if !ok {
		return pgx.ErrNoRows
	}
	a.ResourceLink = link
	return nil
}

func (r fakeAssignmentRepo) Delete(_ context.Context, userID, courseID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := assignmentKey(userID, courseID)
	if _, ok := r.assignments[key]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.assignments, key)
	return nil
}

func (r fakeAssignmentRepo) List(_ context.Context, filter repository.AssignmentFilter) ([]domain.CourseAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.CourseAssignment
	for _, a := range r.assignments {
		if filter.UserID != nil && a.UserID != *filter.UserID {
			continue
		}
		if filter.CourseID != nil && a.CourseID != *filter.CourseID {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CourseID < out[j].CourseID })
	return out, nil
}

type fakeRequestRepo struct{ *fakeStore }

func (r fakeRequestRepo) Create(_ context.Context, req *domain.EnrollmentRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req.ID = r.nextID("request")
	req.CreatedAt = time.Now()
	stored := *req
	r.requests[req.ID] = &stored
	return nil
}

func (r fakeRequestRepo) GetByID(_ context.Context, id string) (*domain.EnrollmentRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := *req
	return &out, nil
}

func (r fakeRequestRepo) ListPending(_ context.Context) ([]domain.EnrollmentRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.EnrollmentRequest
	for _, req := range r.requests {
		out = append(out, *req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakeRequestRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.requests[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.requests, id)
	return nil
}

func (r fakeRequestRepo) DeleteMatching(_ context.Context, email, courseID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, req := range r.requests {
		if req.Email == email && req.CourseID == courseID {
			delete(r.requests, id)
			n++
		}
	}
	return n, nil
}

type fakeNewsletterRepo struct{ *fakeStore }

func (r fakeNewsletterRepo) Create(_ context.Context, sub *domain.NewsletterSubscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub.ID = r.nextID("sub")
	sub.CreatedAt = time.Now()
	r.newsletter = append(r.newsletter, *sub)
	return nil
}

type fakeResetRepo struct{ *fakeStore }

func (r fakeResetRepo) Create(_ context.Context, token *repository.PasswordResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	token.ID = r.nextID("reset")
	stored := *token
	r.resets[token.Token] = &stored
	return nil
}

func (r fakeResetRepo) Claim(_ context.Context, token string, now time.Time) (*repository.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.resets[token]
	if !ok || t.UsedAt != nil || !t.ExpiresAt.After(now) {
		return nil, pgx.ErrNoRows
	}
	usedAt := now
	t.UsedAt = &usedAt
	out := *t
	return &out, nil
}

type fakeSessionState struct {
	mu     sync.Mutex
	resume map[string]string
}

func newFakeSessionState() *fakeSessionState {
	return &fakeSessionState{resume: map[string]string{}}
}

func (f *fakeSessionState) SetResumeDestination(_ context.Context, sessionID, destination string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resume[sessionID] = destination
	return nil
}

func (f *fakeSessionState) PopResumeDestination(_ context.Context, sessionID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	dest := f.resume[sessionID]
	delete(f.resume, sessionID)
	return dest, nil
}

type fakeRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
	cutoffs map[string]time.Time
}

func (f *fakeRevocations) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.revoked == nil {
		f.revoked = map[string]time.Duration{}
	}
	f.revoked[tokenID] = ttl
	return nil
}

func (f *fakeRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.revoked[tokenID]
	return ok, nil
}

func (f *fakeRevocations) RevokeUserBefore(_ context.Context, userID string, cutoff time.Time, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cutoffs == nil {
		f.cutoffs = map[string]time.Time{}
	}
	f.cutoffs[userID] = cutoff
	return nil
}

func (f *fakeRevocations) UserCutoff(_ context.Context, userID string) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cutoffs[userID], nil
}

type fakeMailer struct {
	mu       sync.Mutex
	sent     []mailer.Message
	err      error
	disabled bool
}

func (m *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) Configured() bool {
	return !m.disabled
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}
