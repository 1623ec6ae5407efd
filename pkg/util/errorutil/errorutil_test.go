package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestToDomainError(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"validation", NewValidationError("bad", nil), "VALIDATION_FAILED", http.StatusBadRequest},
		{"wrapped conflict", fmt.Errorf("save: %w", NewConflict("dup", nil)), "CONFLICT", http.StatusConflict},
		{"no rows", pgx.ErrNoRows, "NOT_FOUND", http.StatusNotFound},
		{"wrapped no rows", fmt.Errorf("get user: %w", pgx.ErrNoRows), "NOT_FOUND", http.StatusNotFound},
		{"plain", errors.New("boom"), "INTERNAL_ERROR", http.StatusInternalServerError},
		{"login", NewLoginRequired("login first", "/auth/login"), "LOGIN_REQUIRED", http.StatusUnauthorized},
	}

	for _, tc := range testCases {
		de := ToDomainError(tc.err)
		if de.Code != tc.wantCode {
			t.Errorf("%s: code = %q, want %q", tc.name, de.Code, tc.wantCode)
		}
		if de.HTTPStatus != tc.wantStatus {
			t.Errorf("%s: status = %d, want %d", tc.name, de.HTTPStatus, tc.wantStatus)
		}
	}

	if ToDomainError(nil) != nil {
		t.Error("ToDomainError(nil) should be nil")
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(NewNotFound("course", nil)) {
		t.Error("expected NOT_FOUND domain error to be not found")
	}
	if !IsNotFound(fmt.Errorf("lookup: %w", pgx.ErrNoRows)) {
		t.Error("expected wrapped pgx.ErrNoRows to be not found")
	}
	if IsNotFound(errors.New("other")) {
		t.Error("unexpected not found for plain error")
	}
	if IsNotFound(nil) {
		t.Error("nil is not a not-found error")
	}
}

func TestDomainErrorUnwrap(t *testing.T) {
	cause := errors.New("db down")
	err := NewInternalError(cause)
	if !errors.Is(err, cause) {
		t.Error("expected internal error to unwrap to its cause")
	}
	if err.Error() != "internal server error: db down" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestMapErrorNil(t *testing.T) {
	if err := MapError(nil); err != nil {
		t.Errorf("Expected nil, got %v", err)
	}
}
