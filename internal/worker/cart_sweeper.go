package worker

import (
	"context"
	"time"

	"github.com/certdesk/course-storefront/internal/cart"
)

// StartCartSweeper evicts idle cart sessions every interval until ctx is done.
func StartCartSweeper(ctx context.Context, sessions *cart.Manager, interval time.Duration) {
	if sessions == nil || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sessions.Sweep()
			}
		}
	}()
}
