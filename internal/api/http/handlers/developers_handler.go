package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-tracker/internal/api/dto"
	"github.com/spec-kit/ticket-tracker/internal/repository"
	"github.com/spec-kit/ticket-tracker/internal/service"
)

// DevelopersHandler exposes developer listing and per-developer tickets.
type DevelopersHandler struct {
	developers repository.DeveloperRepository
	tickets    *service.TicketService
}

// NewDevelopersHandler constructs handler.
func NewDevelopersHandler(developers repository.DeveloperRepository, tickets *service.TicketService) *DevelopersHandler {
	return &DevelopersHandler{developers: developers, tickets: tickets}
}

// List handles GET /api/developer. Only public profile fields are exposed.
func (h *DevelopersHandler) List(c *fiber.Ctx) error {
	developers, err := h.developers.List(c.Context())
	if err != nil {
		return err
	}
	items := make([]fiber.Map, 0, len(developers))
	for _, dev := range developers {
		items = append(items, fiber.Map{
			"id":         dev.ID,
			"name":       dev.Name,
			"email":      dev.Email,
			"department": dev.DepartmentName,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// TicketsByDeveloper handles GET /api/dev/tickets/:devId.
func (h *DevelopersHandler) TicketsByDeveloper(c *fiber.Ctx) error {
	tickets, err := h.tickets.ListByDeveloper(c.Context(), c.Params("devId"))
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
