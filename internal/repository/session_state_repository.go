package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStateRepository keeps small per-session markers that must outlive a
// single request, such as where to send the shopper after login.
type SessionStateRepository interface {
	SetResumeDestination(ctx context.Context, sessionID, destination string, ttl time.Duration) error
	// PopResumeDestination returns and clears the marker; "" when none is set.
	PopResumeDestination(ctx context.Context, sessionID string) (string, error)
}

// TokenRevocationRepository records signed-out access tokens until they expire.
type TokenRevocationRepository interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	// RevokeUserBefore invalidates every token of userID issued before cutoff.
	RevokeUserBefore(ctx context.Context, userID string, cutoff time.Time, ttl time.Duration) error
	// UserCutoff returns the cutoff set for userID; zero when none is set.
	UserCutoff(ctx context.Context, userID string) (time.Time, error)
}

type redisSessionState struct {
	client *redis.Client
}

// NewSessionStateRepository returns a Redis-backed store.
func NewSessionStateRepository(client *redis.Client) SessionStateRepository {
	return &redisSessionState{client: client}
}

func resumeKey(sessionID string) string {
	return "session:" + sessionID + ":resume"
}

func (r *redisSessionState) SetResumeDestination(ctx context.Context, sessionID, destination string, ttl time.Duration) error {
	return r.client.Set(ctx, resumeKey(sessionID), destination, ttl).Err()
}

func (r *redisSessionState) PopResumeDestination(ctx context.Context, sessionID string) (string, error) {
	val, err := r.client.GetDel(ctx, resumeKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

type redisTokenRevocation struct {
	client *redis.Client
}

// NewTokenRevocationRepository returns a Redis-backed revocation list.
func NewTokenRevocationRepository(client *redis.Client) TokenRevocationRepository {
	return &redisTokenRevocation{client: client}
}

func revokedKey(tokenID string) string {
	return "auth:revoked:" + tokenID
}

func (r *redisTokenRevocation) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, revokedKey(tokenID), "1", ttl).Err()
}

func (r *redisTokenRevocation) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func userCutoffKey(userID string) string {
	return "auth:revoked-before:" + userID
}

func (r *redisTokenRevocation) RevokeUserBefore(ctx context.Context, userID string, cutoff time.Time, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, userCutoffKey(userID), cutoff.Unix(), ttl).Err()
}

func (r *redisTokenRevocation) UserCutoff(ctx context.Context, userID string) (time.Time, error) {
	secs, err := r.client.Get(ctx, userCutoffKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(secs, 0), nil
}
