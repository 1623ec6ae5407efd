package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	httptransport "github.com/certdesk/course-storefront/internal/api/http"
	"github.com/certdesk/course-storefront/internal/api/http/handlers"
	"github.com/certdesk/course-storefront/internal/auth"
	"github.com/certdesk/course-storefront/internal/cart"
	"github.com/certdesk/course-storefront/internal/config"
	"github.com/certdesk/course-storefront/internal/events"
	"github.com/certdesk/course-storefront/internal/mailer"
	"github.com/certdesk/course-storefront/internal/observability"
	"github.com/certdesk/course-storefront/internal/persistence"
	"github.com/certdesk/course-storefront/internal/repository"
	"github.com/certdesk/course-storefront/internal/service"
	"github.com/certdesk/course-storefront/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	roleRepo := repository.NewRoleRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)
	catalogRepo := repository.NewCatalogRepository(pool)
	assignmentRepo := repository.NewAssignmentRepository(pool)
	requestRepo := repository.NewEnrollmentRequestRepository(pool)
	newsletterRepo := repository.NewNewsletterRepository(pool)
	sessionStateRepo := repository.NewSessionStateRepository(redis.Client)
	revocationRepo := repository.NewTokenRevocationRepository(redis.Client)

	dispatcher := events.NewInMemoryDispatcher()
	mailClient := mailer.NewClient(mailer.Options{
		URL:           cfg.Notification.EmailFunctionURL,
		OperatorEmail: cfg.Notification.OperatorEmail,
		MaxAttempts:   cfg.Notification.MaxAttempts,
		Timeout:       time.Duration(cfg.Notification.TimeoutSeconds) * time.Second,
	}, logger)
	if !mailClient.Configured() {
		logger.Warn("NOTIFY_EMAIL_FUNCTION_URL not set; contact form and operator notifications are disabled")
	}

	sessions := cart.NewManager(cfg.Cart.IdleTTL(), logger)
	catalogService := service.NewCatalogService(catalogRepo, service.SeedCatalog(), logger)
	enrollmentService := service.NewEnrollmentService(service.EnrollmentDependencies{
		UserRepo:       userRepo,
		AssignmentRepo: assignmentRepo,
		RequestRepo:    requestRepo,
		Catalog:        catalogService,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})
	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:          userRepo,
		RoleRepo:          roleRepo,
		PasswordResetRepo: resetRepo,
		RevocationRepo:    revocationRepo,
		SessionStateRepo:  sessionStateRepo,
		Dispatcher:        dispatcher,
		Logger:            logger,
	})
	checkoutService := service.NewCheckoutService(*cfg, service.CheckoutDependencies{
		Sessions:     sessions,
		Catalog:      catalogService,
		Enrollments:  enrollmentService,
		SessionState: sessionStateRepo,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	cartService := service.NewCartService(sessions, catalogService)
	userService := service.NewUserService(userRepo, roleRepo, logger)
	contactService := service.NewContactService(mailClient, newsletterRepo, logger)
	notificationService := service.NewNotificationService(dispatcher, mailClient, logger)

	worker.StartNotificationWorker(ctx, notificationService)
	worker.StartCartSweeper(ctx, sessions, cfg.Cart.SweepInterval())

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo, revocationRepo)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.IsProduction(),
	})
	app.Use(requestid.New())
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:           handlers.NewAuthHandler(authService, !cfg.App.IsProduction()),
		Me:             handlers.NewMeHandler(authService, enrollmentService),
		Catalog:        handlers.NewCatalogHandler(catalogService),
		Cart:           handlers.NewCartHandler(cartService),
		Checkout:       handlers.NewCheckoutHandler(checkoutService),
		Forms:          handlers.NewFormsHandler(enrollmentService, contactService),
		Admin:          handlers.NewAdminHandler(userService, enrollmentService, authService),
		AuthMiddleware: authMiddleware,
		Roles:          roleRepo,
		SessionCookie:  cfg.Cart.SessionCookie,
		SecureCookies:  cfg.App.IsProduction(),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
