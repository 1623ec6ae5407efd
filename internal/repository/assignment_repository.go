package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/certdesk/course-storefront/internal/domain"
)

// AssignmentRepository stores course assignments, the canonical enrollment records.
type AssignmentRepository interface {
	// Upsert inserts or refreshes the (user, course) record. An existing
	// resource link is kept when the incoming one is nil.
	Upsert(ctx context.Context, assignment *domain.CourseAssignment) error
	Get(ctx context.Context, userID, courseID string) (*domain.CourseAssignment, error)
	SetResourceLink(ctx context.Context, userID, courseID string, link *string) error
	Delete(ctx context.Context, userID, courseID string) error
	List(ctx context.Context, filter AssignmentFilter) ([]domain.CourseAssignment, error)
}

// AssignmentFilter narrows assignment listings.
type AssignmentFilter struct {
	UserID   *string
	CourseID *string
	Limit    int
	Offset   int
}

type assignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository builds the repository.
func NewAssignmentRepository(pool *pgxpool.Pool) AssignmentRepository {
	return &assignmentRepository{pool: pool}
}

func (r *assignmentRepository) Upsert(ctx context.Context, a *domain.CourseAssignment) error {
	const query = `
        INSERT INTO course_assignments (user_id, course_id, course_title, course_category, course_image, resource_link, source)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        ON CONFLICT (user_id, course_id) DO UPDATE SET
            course_title=EXCLUDED.course_title,
            course_category=EXCLUDED.course_category,
            course_image=EXCLUDED.course_image,
            resource_link=COALESCE(EXCLUDED.resource_link, course_assignments.resource_link),
            updated_at=NOW()
        RETURNING id, resource_link, source, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		a.UserID,
		a.CourseID,
		a.CourseTitle,
		a.CourseCategory,
		a.CourseImage,
		a.ResourceLink,
		a.Source,
	).Scan(&a.ID, &a.ResourceLink, &a.Source, &a.CreatedAt, &a.UpdatedAt)
}

func (r *assignmentRepository) Get(ctx context.Context, userID, courseID string) (*domain.CourseAssignment, error) {
	const query = `
        SELECT id, user_id, course_id, course_title, course_category, course_image, resource_link, source, created_at, updated_at
        FROM course_assignments WHERE user_id=$1 AND course_id=$2`
	return scanAssignment(r.pool.QueryRow(ctx, query, userID, courseID))
}

func (r *assignmentRepository) SetResourceLink(ctx context.Context, userID, courseID string, link *string) error {
	const query = `
        UPDATE course_assignments SET resource_link=$1, updated_at=NOW()
        WHERE user_id=$2 AND course_id=$3`
	cmd, err := r.pool.Exec(ctx, query, link, userID, courseID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *assignmentRepository) Delete(ctx context.Context, userID, courseID string) error {
	const query = `DELETE FROM course_assignments WHERE user_id=$1 AND course_id=$2`
	cmd, err := r.pool.Exec(ctx, query, userID, courseID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *assignmentRepository) List(ctx context.Context, filter AssignmentFilter) ([]domain.CourseAssignment, error) {
	query := `
        SELECT id, user_id, course_id, course_title, course_category, course_image, resource_link, source, created_at, updated_at
        FROM course_assignments`
	args := []any{}
	clauses := []string{}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.CourseID != nil {
		args = append(args, *filter.CourseID)
		clauses = append(clauses, fmt.Sprintf("course_id=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY created_at ASC"
	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CourseAssignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	return result, rows.Err()
}

func scanAssignment(row pgx.Row) (*domain.CourseAssignment, error) {
	var a domain.CourseAssignment
	if err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.CourseID,
		&a.CourseTitle,
		&a.CourseCategory,
		&a.CourseImage,
		&a.ResourceLink,
		&a.Source,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}
