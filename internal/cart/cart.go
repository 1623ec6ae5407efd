package cart

import (
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/certdesk/course-storefront/internal/domain"
)

// ErrMixedCurrency is returned when a cart total spans more than one currency.
var ErrMixedCurrency = errors.New("cart holds courses in more than one currency")

// Cart is a set of courses keyed by course ID, kept in insertion order.
type Cart struct {
	mu    sync.RWMutex
	items []domain.Course
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// Add appends course unless a course with the same ID is already present.
// It reports whether the cart changed.
func (c *Cart) Add(course domain.Course) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.indexOf(course.ID) >= 0 {
		return false
	}
	c.items = append(c.items, course)
	return true
}

// AddSameCurrency is Add for carts that must stay in one currency. The
// currency check and the insert happen under the same lock, so concurrent
// adds cannot build a mixed cart. It returns ErrMixedCurrency when course is
// priced in another currency than the courses already held.
func (c *Cart) AddSameCurrency(course domain.Course) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.indexOf(course.ID) >= 0 {
		return false, nil
	}
	if len(c.items) > 0 && c.items[0].Currency != course.Currency {
		return false, ErrMixedCurrency
	}
	c.items = append(c.items, course)
	return true, nil
}

// Currency returns the currency of the courses held, "" when empty.
func (c *Cart) Currency() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.items) == 0 {
		return ""
	}
	return c.items[0].Currency
}

// Remove drops the course with id. Absent ids are ignored.
func (c *Cart) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexOf(id)
	if idx < 0 {
		return false
	}
	c.items = append(c.items[:idx], c.items[idx+1:]...)
	return true
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

// Contains reports membership by course ID.
func (c *Cart) Contains(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.indexOf(id) >= 0
}

// Count returns the number of distinct courses.
func (c *Cart) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Items returns a copy of the cart contents.
func (c *Cart) Items() []domain.Course {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Course, len(c.items))
	copy(out, c.items)
	return out
}

// Total sums course prices. An empty cart totals zero with no currency.
func (c *Cart) Total() (decimal.Decimal, string, error) {
	return Total(c.Items())
}

// Total sums the prices of courses, which must share one currency.
func Total(courses []domain.Course) (decimal.Decimal, string, error) {
	total := decimal.Zero
	currency := ""
	for _, course := range courses {
		if currency == "" {
			currency = course.Currency
		} else if course.Currency != currency {
			return decimal.Zero, "", ErrMixedCurrency
		}
		total = total.Add(course.Price)
	}
	return total, currency, nil
}

func (c *Cart) indexOf(id string) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}
