package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/certdesk/course-storefront/internal/api/http/handlers"
	"github.com/certdesk/course-storefront/internal/auth"
	"github.com/certdesk/course-storefront/internal/repository"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Me             *handlers.MeHandler
	Catalog        *handlers.CatalogHandler
	Cart           *handlers.CartHandler
	Checkout       *handlers.CheckoutHandler
	Forms          *handlers.FormsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
	Roles          repository.RoleRepository
	SessionCookie  string
	SecureCookies  bool
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	session := handlers.SessionMiddleware(cfg.SessionCookie, cfg.SecureCookies)
	required := cfg.AuthMiddleware.Handle
	optional := cfg.AuthMiddleware.Optional

	authGroup := app.Group("/auth", session)
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)
	authGroup.Post("/logout", required, cfg.Auth.Logout)
	authGroup.Post("/password/change", required, auth.RequireUser(), cfg.Auth.ChangePassword)

	me := app.Group("/me", required, auth.RequireUser())
	me.Get("", cfg.Me.Get)
	me.Patch("", cfg.Me.Update)
	me.Get("/courses", cfg.Me.Courses)

	app.Get("/courses", cfg.Catalog.List)
	app.Get("/courses/:id", cfg.Catalog.Get)

	cartGroup := app.Group("/cart", session)
	cartGroup.Get("", cfg.Cart.View)
	cartGroup.Post("/items", cfg.Cart.Add)
	cartGroup.Delete("/items/:id", cfg.Cart.Remove)
	cartGroup.Delete("", cfg.Cart.Clear)

	checkout := app.Group("/checkout", session, optional)
	checkout.Get("", cfg.Checkout.Summary)
	checkout.Post("", cfg.Checkout.Submit)

	app.Post("/enrollment-requests", cfg.Forms.EnrollmentRequest)
	app.Post("/contact", cfg.Forms.Contact)
	app.Post("/newsletter", cfg.Forms.Newsletter)

	admin := app.Group("/admin", required, auth.RequireAdmin(cfg.Roles))
	admin.Post("/courses", cfg.Catalog.Create)
	admin.Put("/courses/:id", cfg.Catalog.Update)
	admin.Delete("/courses/:id", cfg.Catalog.Delete)

	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Get("/users/:id", cfg.Admin.GetUser)
	admin.Put("/users/:id/role", cfg.Admin.SetRole)

	admin.Get("/assignments", cfg.Admin.ListAssignments)
	admin.Put("/assignments", cfg.Admin.Assign)
	admin.Delete("/assignments", cfg.Admin.Unassign)
	admin.Put("/assignments/resource-link", cfg.Admin.SetResourceLink)

	admin.Get("/enrollment-requests", cfg.Admin.ListRequests)
	admin.Post("/enrollment-requests/:id/approve", cfg.Admin.ApproveRequest)
	admin.Post("/enrollment-requests/:id/deny", cfg.Admin.DenyRequest)
}
