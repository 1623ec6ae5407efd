package observability

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/courses/:id", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/courses/:id", "GET", 200, 30*time.Millisecond)
	m.RecordRequest("/cart", "GET", 200, time.Millisecond)
	m.RecordError("/checkout", "POST", "LOGIN_REQUIRED")

	snap := m.Snapshot()
	if len(snap.Requests) != 2 {
		t.Fatalf("Expected 2 request series, got %d", len(snap.Requests))
	}
	if snap.Requests[0].Route != "/cart" {
		t.Errorf("Expected sorted routes, got %q first", snap.Requests[0].Route)
	}
	course := snap.Requests[1]
	if course.Count != 2 || course.AvgDuration != 20*time.Millisecond {
		t.Errorf("Unexpected course stats %+v", course)
	}
	if len(snap.Errors) != 1 || snap.Errors[0].Code != "LOGIN_REQUIRED" {
		t.Errorf("Unexpected errors %+v", snap.Errors)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, 0)
	m.RecordError("/", "GET", "X")
	if snap := m.Snapshot(); len(snap.Requests) != 0 {
		t.Errorf("Expected empty snapshot, got %+v", snap)
	}
}

func TestRequestLoggerRecordsRoute(t *testing.T) {
	m := NewMetrics()
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop(), m))
	app.Get("/courses/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/courses/course-1", nil))
	if err != nil {
		t.Fatalf("app.Test returned error: %v", err)
	}
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("Expected 204, got %d", resp.StatusCode)
	}

	snap := m.Snapshot()
	if len(snap.Requests) != 1 {
		t.Fatalf("Expected one series, got %+v", snap.Requests)
	}
	if got := snap.Requests[0]; got.Route != "/courses/:id" || got.Status != fiber.StatusNoContent {
		t.Errorf("Unexpected series %+v", got)
	}
}
