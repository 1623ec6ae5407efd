package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/certdesk/course-storefront/internal/cart"
)

const sessionKey = "session_id"

// SessionMiddleware makes sure every request carries a shopper session id,
// issuing a cookie when the client has none. Carts and checkout state are
// keyed by this id.
func SessionMiddleware(cookieName string, secure bool) fiber.Handler {
	if cookieName == "" {
		cookieName = "session_id"
	}
	return func(c *fiber.Ctx) error {
		id := c.Cookies(cookieName)
		if !validSessionID(id) {
			id = cart.NewSessionID()
			c.Cookie(&fiber.Cookie{
				Name:     cookieName,
				Value:    id,
				Path:     "/",
				HTTPOnly: true,
				Secure:   secure,
				SameSite: fiber.CookieSameSiteLaxMode,
				Expires:  time.Now().Add(30 * 24 * time.Hour),
			})
		}
		c.Locals(sessionKey, id)
		return c.Next()
	}
}

// SessionID returns the id set by SessionMiddleware.
func SessionID(c *fiber.Ctx) string {
	id, _ := c.Locals(sessionKey).(string)
	return id
}

func validSessionID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	for _, r := range id {
		if !(r == '-' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
			return false
		}
	}
	return true
}
