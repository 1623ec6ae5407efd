package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/certdesk/course-storefront/internal/domain"
)

// EnrollmentRequestRepository manages pending enrollment inquiries.
type EnrollmentRequestRepository interface {
	Create(ctx context.Context, req *domain.EnrollmentRequest) error
	GetByID(ctx context.Context, id string) (*domain.EnrollmentRequest, error)
	ListPending(ctx context.Context) ([]domain.EnrollmentRequest, error)
	Delete(ctx context.Context, id string) error
	// DeleteMatching removes every request for the email and course pair.
	DeleteMatching(ctx context.Context, email, courseID string) (int64, error)
}

type enrollmentRequestRepository struct {
	pool *pgxpool.Pool
}

// NewEnrollmentRequestRepository builds the repository.
func NewEnrollmentRequestRepository(pool *pgxpool.Pool) EnrollmentRequestRepository {
	return &enrollmentRequestRepository{pool: pool}
}

func (r *enrollmentRequestRepository) Create(ctx context.Context, req *domain.EnrollmentRequest) error {
	const query = `
        INSERT INTO enrollment_requests (name, email, phone, course_id, message)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		req.Name,
		strings.ToLower(req.Email),
		req.Phone,
		req.CourseID,
		req.Message,
	).Scan(&req.ID, &req.CreatedAt)
}

func (r *enrollmentRequestRepository) GetByID(ctx context.Context, id string) (*domain.EnrollmentRequest, error) {
	const query = `
        SELECT id, name, email, phone, course_id, message, created_at
        FROM enrollment_requests WHERE id=$1`
	var req domain.EnrollmentRequest
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&req.ID,
		&req.Name,
		&req.Email,
		&req.Phone,
		&req.CourseID,
		&req.Message,
		&req.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *enrollmentRequestRepository) ListPending(ctx context.Context) ([]domain.EnrollmentRequest, error) {
	const query = `
        SELECT id, name, email, phone, course_id, message, created_at
        FROM enrollment_requests ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.EnrollmentRequest
	for rows.Next() {
		var req domain.EnrollmentRequest
		if err := rows.Scan(&req.ID, &req.Name, &req.Email, &req.Phone, &req.CourseID, &req.Message, &req.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, req)
	}
	return result, rows.Err()
}

func (r *enrollmentRequestRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM enrollment_requests WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *enrollmentRequestRepository) DeleteMatching(ctx context.Context, email, courseID string) (int64, error) {
	const query = `DELETE FROM enrollment_requests WHERE email=$1 AND course_id=$2`
	cmd, err := r.pool.Exec(ctx, query, strings.ToLower(email), courseID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
