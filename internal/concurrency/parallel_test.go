package concurrency

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestProcessAllKeepsOrder(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	results := ProcessAll(context.Background(), items, Options{MaxWorkers: 3},
		func(ctx context.Context, index int, item int) (int, error) {
			time.Sleep(time.Duration(5-item) * time.Millisecond)
			return item * 2, nil
		})

	if len(results) != len(items) {
		t.Fatalf("expected %d results, got %d", len(items), len(results))
	}
	for i, res := range results {
		if res.Index != i {
			t.Errorf("result %d has index %d", i, res.Index)
		}
		if res.Value != items[i]*2 {
			t.Errorf("result %d = %d, want %d", i, res.Value, items[i]*2)
		}
	}
	if errs := Errors(results); len(errs) != 0 {
		t.Errorf("unexpected errors %v", errs)
	}
}

func TestProcessAllCollectsErrors(t *testing.T) {
	boom := errors.New("boom")
	items := []string{"ok", "fail", "ok", "fail"}
	results := ProcessAll(context.Background(), items, DefaultOptions(),
		func(ctx context.Context, index int, item string) (string, error) {
			if item == "fail" {
				return "", boom
			}
			return item, nil
		})

	errs := Errors(results)
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(errs))
	}
	if results[1].Err != boom || results[3].Err != boom {
		t.Error("errors must stay attached to their items")
	}
	if results[0].Value != "ok" {
		t.Errorf("results[0] = %q", results[0].Value)
	}
}

func TestProcessAllLimitsWorkers(t *testing.T) {
	var inFlight, peak int32
	items := make([]int, 20)
	ProcessAll(context.Background(), items, Options{MaxWorkers: 2},
		func(ctx context.Context, index int, item int) (struct{}, error) {
			n := atomic.AddInt32(&inFlight, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
			return struct{}{}, nil
		})

	if peak > 2 {
		t.Errorf("peak concurrency %d exceeds limit 2", peak)
	}
}

func TestProcessAllCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := ProcessAll(ctx, []int{1, 2, 3}, Options{MaxWorkers: 1},
		func(ctx context.Context, index int, item int) (int, error) {
			return item, nil
		})

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, res := range results {
		if !errors.Is(res.Err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", res.Err)
		}
	}
}

func TestProcessAllEmpty(t *testing.T) {
	results := ProcessAll(context.Background(), []int{}, DefaultOptions(),
		func(ctx context.Context, index int, item int) (int, error) {
			t.Fatal("fn must not be called")
			return 0, nil
		})
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}
