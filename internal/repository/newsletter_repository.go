package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/certdesk/course-storefront/internal/domain"
)

// NewsletterRepository appends newsletter signups.
type NewsletterRepository interface {
	Create(ctx context.Context, sub *domain.NewsletterSubscription) error
}

type newsletterRepository struct {
	pool *pgxpool.Pool
}

// NewNewsletterRepository builds the repository.
func NewNewsletterRepository(pool *pgxpool.Pool) NewsletterRepository {
	return &newsletterRepository{pool: pool}
}

func (r *newsletterRepository) Create(ctx context.Context, sub *domain.NewsletterSubscription) error {
	const query = `
        INSERT INTO newsletter_subscriptions (email)
        VALUES ($1)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, strings.ToLower(sub.Email)).Scan(&sub.ID, &sub.CreatedAt)
}
