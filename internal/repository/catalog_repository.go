package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/certdesk/course-storefront/internal/domain"
)

// CatalogRepository persists the course catalog as a single document.
// Save always writes the full list.
type CatalogRepository interface {
	// Load returns the stored catalog; found is false when nothing was saved yet.
	Load(ctx context.Context) (courses []domain.Course, found bool, err error)
	Save(ctx context.Context, courses []domain.Course) error
}

type catalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository builds the repository.
func NewCatalogRepository(pool *pgxpool.Pool) CatalogRepository {
	return &catalogRepository{pool: pool}
}

func (r *catalogRepository) Load(ctx context.Context) ([]domain.Course, bool, error) {
	const query = `SELECT courses::text FROM catalog WHERE id=1`
	var raw string
	if err := r.pool.QueryRow(ctx, query).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var courses []domain.Course
	if err := json.Unmarshal([]byte(raw), &courses); err != nil {
		return nil, false, fmt.Errorf("decode catalog: %w", err)
	}
	return courses, true, nil
}

func (r *catalogRepository) Save(ctx context.Context, courses []domain.Course) error {
	if courses == nil {
		courses = []domain.Course{}
	}
	raw, err := json.Marshal(courses)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	const query = `
        INSERT INTO catalog (id, courses)
        VALUES (1, $1::jsonb)
        ON CONFLICT (id) DO UPDATE SET courses=EXCLUDED.courses, updated_at=NOW()`
	_, err = r.pool.Exec(ctx, query, string(raw))
	return err
}
