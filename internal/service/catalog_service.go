package service

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/certdesk/course-storefront/internal/domain"
	"github.com/certdesk/course-storefront/internal/repository"
	apperrors "github.com/certdesk/course-storefront/pkg/util/errorutil"
)

// CatalogService serves and edits the course catalog. Every edit rewrites
// the whole stored list; concurrent admins overwrite each other (last write wins).
type CatalogService struct {
	repo   repository.CatalogRepository
	seed   []domain.Course
	logger *zap.Logger

	// mu serializes read-modify-write cycles inside this process.
	mu sync.Mutex
}

// CourseInput carries the editable course fields.
type CourseInput struct {
	Title        string
	Description  string
	Price        decimal.Decimal
	Currency     string
	Duration     string
	Instructor   string
	Level        domain.CourseLevel
	Category     string
	Image        string
	Details      string
	ResourceLink string
}

// CatalogQuery filters the catalog listing.
type CatalogQuery struct {
	Term     string
	Category string
	Level    domain.CourseLevel
}

// NewCatalogService builds the service. seed is served until the first save.
func NewCatalogService(repo repository.CatalogRepository, seed []domain.Course, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{repo: repo, seed: seed, logger: logger}
}

// List returns the stored catalog, or the seed when nothing was saved.
func (s *CatalogService) List(ctx context.Context) ([]domain.Course, error) {
	courses, found, err := s.repo.Load(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !found {
		out := make([]domain.Course, len(s.seed))
		copy(out, s.seed)
		return out, nil
	}
	return courses, nil
}

// Search filters by case-insensitive substring, category and level.
func (s *CatalogService) Search(ctx context.Context, q CatalogQuery) ([]domain.Course, error) {
	courses, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]domain.Course, 0, len(courses))
	for _, course := range courses {
		if q.Category != "" && !strings.EqualFold(course.Category, q.Category) {
			continue
		}
		if q.Level != "" && course.Level != q.Level {
			continue
		}
		if !course.Matches(q.Term) {
			continue
		}
		result = append(result, course)
	}
	return result, nil
}

// Get returns one course.
func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Course, error) {
	courses, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range courses {
		if courses[i].ID == id {
			return &courses[i], nil
		}
	}
	return nil, apperrors.NewNotFound("course", map[string]any{"course_id": id})
}

// Create appends a course with a fresh identifier.
func (s *CatalogService) Create(ctx context.Context, input CourseInput) (*domain.Course, error) {
	if err := validateCourseInput(input); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	courses, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	course := courseFromInput(uuid.NewString(), input)
	courses = append(courses, course)
	if err := s.repo.Save(ctx, courses); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("course created", zap.String("course_id", course.ID), zap.String("title", course.Title))
	return &course, nil
}

// Update replaces the course matched by id.
func (s *CatalogService) Update(ctx context.Context, id string, input CourseInput) (*domain.Course, error) {
	if err := validateCourseInput(input); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	courses, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	idx := indexOfCourse(courses, id)
	if idx < 0 {
		return nil, apperrors.NewNotFound("course", map[string]any{"course_id": id})
	}
	courses[idx] = courseFromInput(id, input)
	if err := s.repo.Save(ctx, courses); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("course updated", zap.String("course_id", id))
	updated := courses[idx]
	return &updated, nil
}

// Delete removes the course matched by id.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	courses, err := s.List(ctx)
	if err != nil {
		return err
	}
	idx := indexOfCourse(courses, id)
	if idx < 0 {
		return apperrors.NewNotFound("course", map[string]any{"course_id": id})
	}
	courses = append(courses[:idx], courses[idx+1:]...)
	if err := s.repo.Save(ctx, courses); err != nil {
		return apperrors.MapError(err)
	}
	s.logger.Info("course deleted", zap.String("course_id", id))
	return nil
}

// Categories returns the distinct categories in catalog order.
func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	courses, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	var out []string
	for _, course := range courses {
		if course.Category == "" {
			continue
		}
		if _, ok := seen[course.Category]; ok {
			continue
		}
		seen[course.Category] = struct{}{}
		out = append(out, course.Category)
	}
	return out, nil
}

func validateCourseInput(input CourseInput) error {
	details := map[string]any{}
	if strings.TrimSpace(input.Title) == "" {
		details["title"] = "required"
	}
	if strings.TrimSpace(input.Currency) == "" {
		details["currency"] = "required"
	}
	if input.Price.IsNegative() {
		details["price"] = "must not be negative"
	}
	if _, err := domain.ParseCourseLevel(string(input.Level)); err != nil {
		details["level"] = "must be Beginner, Intermediate or Advanced"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid course", details)
	}
	return nil
}

func courseFromInput(id string, input CourseInput) domain.Course {
	level, _ := domain.ParseCourseLevel(string(input.Level))
	return domain.Course{
		ID:           id,
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		Price:        input.Price,
		Currency:     strings.ToUpper(strings.TrimSpace(input.Currency)),
		Duration:     input.Duration,
		Instructor:   input.Instructor,
		Level:        level,
		Category:     strings.TrimSpace(input.Category),
		Image:        input.Image,
		Details:      input.Details,
		ResourceLink: input.ResourceLink,
	}
}

func indexOfCourse(courses []domain.Course, id string) int {
	for i := range courses {
		if courses[i].ID == id {
			return i
		}
	}
	return -1
}
