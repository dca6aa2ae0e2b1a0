package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-tracker/internal/api/http/handlers"
	"github.com/spec-kit/ticket-tracker/internal/auth"
	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Auth            *handlers.AuthHandler
	Departments     *handlers.DepartmentsHandler
	Developers      *handlers.DevelopersHandler
	Tickets         *handlers.TicketsHandler
	CustomerTickets *handlers.CustomerTicketsHandler
	Admin           *handlers.AdminHandler
	Session         *auth.SessionMiddleware
}

// RegisterRoutes wires HTTP routes. The session middleware runs globally so
// every path goes through the route policy; per-route guards only narrow it.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.Session.Handle)

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/api/auth")
	authGroup.Post("/signup", cfg.Auth.Signup)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/logout", cfg.Auth.Logout)
	authGroup.Get("/parsecookie", cfg.Auth.ParseCookie)

	dept := app.Group("/api/dept")
	dept.Get("/", cfg.Departments.List)
	dept.Post("/", cfg.Departments.Create)
	dept.Get("/:deptId", cfg.Departments.Get)

	app.Get("/api/developer", cfg.Developers.List)
	app.Get("/api/dev/tickets/:devId", cfg.Developers.TicketsByDeveloper)

	tickets := app.Group("/api/tickets")
	tickets.Get("/", cfg.Tickets.List)
	tickets.Post("/", cfg.Tickets.Create)
	tickets.Get("/:ticketId", cfg.Tickets.Get)
	tickets.Post("/:ticketId/status", cfg.Tickets.SetStatus)
	tickets.Put("/:ticketId/progress", cfg.Tickets.SetProgress)
	tickets.Put("/:ticketId/dev", cfg.Tickets.AssignDevelopers)
	tickets.Put("/:ticketId/dept", cfg.Tickets.AssignDepartment)
	tickets.Post("/:ticketId/files", cfg.Tickets.UploadFile)
	tickets.Get("/:ticketId/files", cfg.Tickets.DownloadFile)
	tickets.Delete("/:ticketId/files", cfg.Tickets.DeleteFile)
	tickets.Get("/:ticketId/meetings", cfg.Tickets.ListMeetings)
	tickets.Post("/:ticketId/meetings", cfg.Tickets.AddMeeting)

	customer := app.Group("/api/customer")
	customer.Get("/tickets", cfg.CustomerTickets.List)
	customer.Post("/tickets", cfg.CustomerTickets.Create)
	customer.Patch("/tickets/:ticketId", auth.RequireRole(domain.RoleSupport), cfg.CustomerTickets.Update)
	customer.Get("/:custId", cfg.CustomerTickets.ListByCustomer)

	app.Get("/admin/overview", cfg.Admin.Overview)
}
