package worker

import (
	"context"
	"testing"
	"time"

	"github.com/certdesk/course-storefront/internal/cart"
)

func TestCartSweeperEvictsIdleSessions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessions := cart.NewManager(time.Millisecond, nil)
	sessions.GetOrCreate("idle")

	StartCartSweeper(ctx, sessions, 5*time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for sessions.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if sessions.Len() != 0 {
		t.Errorf("Expected idle session evicted, %d left", sessions.Len())
	}
}

func TestCartSweeperDisabled(t *testing.T) {
	sessions := cart.NewManager(time.Millisecond, nil)
	sessions.GetOrCreate("kept")
	StartCartSweeper(context.Background(), sessions, 0)
	time.Sleep(10 * time.Millisecond)
	if sessions.Len() != 1 {
		t.Errorf("Expected sweeper disabled, got %d sessions", sessions.Len())
	}
}
