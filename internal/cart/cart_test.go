package cart

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/certdesk/course-storefront/internal/domain"
)

func course(id, price, currency string) domain.Course {
	return domain.Course{ID: id, Title: "Course " + id, Price: decimal.RequireFromString(price), Currency: currency}
}

func TestAddIsIdempotent(t *testing.T) {
	c := New()
	if !c.Add(course("course-1", "199", "USD")) {
		t.Error("first add should change the cart")
	}
	if c.Add(course("course-1", "199", "USD")) {
		t.Error("second add of the same id should be a no-op")
	}
	if c.Count() != 1 {
		t.Errorf("Count() = %d, want 1", c.Count())
	}
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	c := New()
	c.Add(course("course-1", "199", "USD"))
	if c.Remove("course-9") {
		t.Error("removing an absent id should report no change")
	}
	if c.Count() != 1 {
		t.Errorf("Count() = %d, want 1", c.Count())
	}
	if !c.Remove("course-1") || c.Contains("course-1") {
		t.Error("expected course-1 to be removed")
	}
}

func TestClear(t *testing.T) {
	for _, size := range []int{0, 1, 5} {
		c := New()
		for i := 0; i < size; i++ {
			c.Add(course(string(rune('a'+i)), "10", "USD"))
		}
		c.Clear()
		if c.Count() != 0 || len(c.Items()) != 0 {
			t.Errorf("size %d: cart not empty after Clear", size)
		}
	}
}

func TestItemsPreserveOrderAndCopy(t *testing.T) {
	c := New()
	c.Add(course("b", "1", "USD"))
	c.Add(course("a", "2", "USD"))
	items := c.Items()
	if items[0].ID != "b" || items[1].ID != "a" {
		t.Errorf("unexpected order %v", items)
	}
	items[0].ID = "changed"
	if !c.Contains("b") {
		t.Error("Items must return a copy")
	}
}

func TestTotal(t *testing.T) {
	c := New()
	c.Add(course("course-1", "199", "USD"))
	c.Add(course("course-2", "249", "USD"))

	total, currency, err := c.Total()
	if err != nil {
		t.Fatalf("Total returned error: %v", err)
	}
	if !total.Equal(decimal.NewFromInt(448)) {
		t.Errorf("total = %s, want 448", total)
	}
	if currency != "USD" {
		t.Errorf("currency = %q, want USD", currency)
	}

	c.Add(course("course-3", "10", "EUR"))
	if _, _, err := c.Total(); !errors.Is(err, ErrMixedCurrency) {
		t.Errorf("expected ErrMixedCurrency, got %v", err)
	}

	empty, cur, err := New().Total()
	if err != nil || !empty.IsZero() || cur != "" {
		t.Errorf("empty cart total = %s %q %v", empty, cur, err)
	}
}

func TestAddSameCurrency(t *testing.T) {
	c := New()
	if added, err := c.AddSameCurrency(course("course-1", "199", "USD")); !added || err != nil {
		t.Fatalf("first add = %v, %v", added, err)
	}
	if added, err := c.AddSameCurrency(course("course-1", "199", "USD")); added || err != nil {
		t.Errorf("repeat add = %v, %v, want no-op", added, err)
	}
	if _, err := c.AddSameCurrency(course("course-2", "10", "EUR")); !errors.Is(err, ErrMixedCurrency) {
		t.Errorf("expected ErrMixedCurrency, got %v", err)
	}
	if c.Count() != 1 || c.Currency() != "USD" {
		t.Errorf("cart = %d items in %q, want 1 in USD", c.Count(), c.Currency())
	}
}

func TestAddSameCurrencyConcurrent(t *testing.T) {
	for round := 0; round < 50; round++ {
		c := New()
		var wg sync.WaitGroup
		for i, currency := range []string{"USD", "EUR", "USD", "EUR"} {
			wg.Add(1)
			go func(id, currency string) {
				defer wg.Done()
				_, _ = c.AddSameCurrency(course(id, "10", currency))
			}(fmt.Sprintf("course-%d", i), currency)
		}
		wg.Wait()
		if _, _, err := c.Total(); err != nil {
			t.Fatalf("round %d: concurrent adds built a mixed cart: %v", round, err)
		}
	}
}
