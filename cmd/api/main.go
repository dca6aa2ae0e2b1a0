package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticket-tracker/internal/api/http"
	"github.com/spec-kit/ticket-tracker/internal/api/http/handlers"
	"github.com/spec-kit/ticket-tracker/internal/auth"
	"github.com/spec-kit/ticket-tracker/internal/config"
	"github.com/spec-kit/ticket-tracker/internal/events"
	"github.com/spec-kit/ticket-tracker/internal/mail"
	"github.com/spec-kit/ticket-tracker/internal/observability"
	"github.com/spec-kit/ticket-tracker/internal/persistence"
	"github.com/spec-kit/ticket-tracker/internal/repository"
	"github.com/spec-kit/ticket-tracker/internal/service"
	"github.com/spec-kit/ticket-tracker/internal/worker"
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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	developerRepo := repository.NewDeveloperRepository(pool)
	customerRepo := repository.NewCustomerRepository(pool)
	departmentRepo := repository.NewDepartmentRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	customerTicketRepo := repository.NewCustomerTicketRepository(pool)
	fileRepo := repository.NewFileRepository(pool)
	meetingRepo := repository.NewMeetingRepository(pool)
	sessionRepo := repository.NewSessionRepository(redis.Client)

	dispatcher := events.NewInMemoryDispatcher()

	var mailer mail.Mailer
	if cfg.SMTP.Host != "" {
		mailer = mail.NewSMTPMailer(cfg.SMTP)
	} else {
		logger.Warn("SMTP_HOST not provided; email notifications disabled")
	}

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		DeveloperRepo:  developerRepo,
		CustomerRepo:   customerRepo,
		DepartmentRepo: departmentRepo,
		SessionRepo:    sessionRepo,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		DeveloperRepo:  developerRepo,
		DepartmentRepo: departmentRepo,
		FileRepo:       fileRepo,
		MeetingRepo:    meetingRepo,
		Dispatcher:     dispatcher,
	})
	customerTicketService := service.NewCustomerTicketService(service.CustomerTicketDependencies{
		CustomerTicketRepo: customerTicketRepo,
		CustomerRepo:       customerRepo,
		Dispatcher:         dispatcher,
	})
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		TicketRepo:         ticketRepo,
		DeveloperRepo:      developerRepo,
		CustomerTicketRepo: customerTicketRepo,
		CustomerRepo:       customerRepo,
		Mailer:             mailer,
		BaseURL:            cfg.App.BaseURL,
		Logger:             logger,
	})
	worker.StartNotificationWorker(dispatcher, notificationService)

	policy := auth.NewPolicy(cfg.Auth.AdminEmails)
	sessionMiddleware := auth.NewSessionMiddleware(authService.TokenManager(), sessionRepo, policy, logger)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: 32 * 1024 * 1024,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:          handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:            handlers.NewAuthHandler(authService, sessionMiddleware, cfg.App.IsProduction()),
		Departments:     handlers.NewDepartmentsHandler(departmentRepo),
		Developers:      handlers.NewDevelopersHandler(developerRepo, ticketService),
		Tickets:         handlers.NewTicketsHandler(ticketService),
		CustomerTickets: handlers.NewCustomerTicketsHandler(customerTicketService),
		Admin:           handlers.NewAdminHandler(developerRepo, customerRepo, departmentRepo, ticketRepo, customerTicketRepo),
		Session:         sessionMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
