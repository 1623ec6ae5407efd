package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/certdesk/course-storefront/internal/observability"
	apperrors "github.com/certdesk/course-storefront/pkg/util/errorutil"
)

func newMiddlewareApp(metrics *observability.Metrics) *fiber.App {
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), metrics, time.Second)
	app.Get("/domain", func(c *fiber.Ctx) error {
		return apperrors.NewConflict("taken", map[string]any{"field": "email"})
	})
	app.Get("/plain", func(c *fiber.Ctx) error {
		return errors.New("boom")
	})
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("unexpected")
	})
	app.Get("/deadline", func(c *fiber.Ctx) error {
		if _, ok := c.UserContext().Deadline(); !ok {
			return errors.New("no deadline")
		}
		return c.SendStatus(http.StatusNoContent)
	})
	return app
}

func TestErrorHandlingMiddleware(t *testing.T) {
	testCases := []struct {
		path       string
		wantStatus int
		wantCode   string
	}{
		{"/domain", http.StatusConflict, "CONFLICT"},
		{"/plain", http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"/panic", http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"/missing", http.StatusNotFound, "NOT_FOUND"},
	}

	metrics := observability.NewMetrics()
	app := newMiddlewareApp(metrics)
	for _, tc := range testCases {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, tc.path, nil))
		if err != nil {
			t.Fatalf("%s: app.Test returned error: %v", tc.path, err)
		}
		if resp.StatusCode != tc.wantStatus {
			t.Errorf("%s: status = %d, want %d", tc.path, resp.StatusCode, tc.wantStatus)
		}
		raw, _ := io.ReadAll(resp.Body)
		var body struct {
			Error struct {
				Code    string         `json:"code"`
				Details map[string]any `json:"details"`
			} `json:"error"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Fatalf("%s: invalid JSON %q", tc.path, raw)
		}
		if body.Error.Code != tc.wantCode {
			t.Errorf("%s: code = %q, want %q", tc.path, body.Error.Code, tc.wantCode)
		}
		if tc.path == "/domain" && body.Error.Details["field"] != "email" {
			t.Errorf("Expected details to be passed through, got %v", body.Error.Details)
		}
	}

	snap := metrics.Snapshot()
	if len(snap.Errors) == 0 {
		t.Error("Expected error counters")
	}
	var sawConflict bool
	for _, r := range snap.Requests {
		if r.Status == http.StatusConflict {
			sawConflict = true
		}
	}
	if !sawConflict {
		t.Errorf("Expected request logger to see the final 409, got %+v", snap.Requests)
	}
}

func TestRequestTimeoutSetsDeadline(t *testing.T) {
	app := newMiddlewareApp(nil)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/deadline", nil))
	if err != nil {
		t.Fatalf("app.Test returned error: %v", err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", resp.StatusCode)
	}
}
