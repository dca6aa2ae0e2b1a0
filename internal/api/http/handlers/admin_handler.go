package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-tracker/internal/repository"
)

// AdminHandler serves the admin overview. Access is gated upstream by the
// route policy's email allow-list.
type AdminHandler struct {
	developers      repository.DeveloperRepository
	customers       repository.CustomerRepository
	departments     repository.DepartmentRepository
	tickets         repository.TicketRepository
	customerTickets repository.CustomerTicketRepository
}

// NewAdminHandler constructs handler.
func NewAdminHandler(
	developers repository.DeveloperRepository,
	customers repository.CustomerRepository,
	departments repository.DepartmentRepository,
	tickets repository.TicketRepository,
	customerTickets repository.CustomerTicketRepository,
) *AdminHandler {
	return &AdminHandler{
		developers:      developers,
		customers:       customers,
		departments:     departments,
		tickets:         tickets,
		customerTickets: customerTickets,
	}
}

// Overview handles GET /admin/overview with entity counts.
func (h *AdminHandler) Overview(c *fiber.Ctx) error {
	ctx := c.Context()

	developers, err := h.developers.Count(ctx)
	if err != nil {
		return err
	}
	customers, err := h.customers.Count(ctx)
	if err != nil {
		return err
	}
	departments, err := h.departments.Count(ctx)
	if err != nil {
		return err
	}
	tickets, err := h.tickets.Count(ctx)
	if err != nil {
		return err
	}
	customerTickets, err := h.customerTickets.Count(ctx)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"developers":       developers,
			"customers":        customers,
			"departments":      departments,
			"tickets":          tickets,
			"customer_tickets": customerTickets,
		},
	})
}
