package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-tracker/internal/api/dto"
	"github.com/spec-kit/ticket-tracker/internal/auth"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/service"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util"
)

// CustomerTicketsHandler manages customer-facing ticket endpoints.
type CustomerTicketsHandler struct {
	service *service.CustomerTicketService
}

// NewCustomerTicketsHandler constructs handler.
func NewCustomerTicketsHandler(customerTicketService *service.CustomerTicketService) *CustomerTicketsHandler {
	return &CustomerTicketsHandler{service: customerTicketService}
}

// List handles GET /api/customer/tickets. Customers see their own tickets;
// staff see all of them.
func (h *CustomerTicketsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var (
		tickets []domain.CustomerTicket
		err     error
	)
	if principal.Role == domain.RoleCustomer {
		tickets, err = h.service.ListByCustomer(c.Context(), principal.ID)
	} else {
		tickets, err = h.service.List(c.Context())
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": customerTicketResponses(tickets)})
}

// Create handles POST /api/customer/tickets. Customers always file under
// their own account; support may file on a customer's behalf.
func (h *CustomerTicketsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateCustomerTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	customerID := req.CustomerID
	if principal.Role == domain.RoleCustomer {
		customerID = principal.ID
	}

	ticket, err := h.service.Create(c.Context(), customerID, req.Title, req.Description)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": customerTicketResponse(ticket)})
}

// Update handles PATCH /api/customer/tickets/:ticketId. Support only; the
// route is registered behind the role guard.
func (h *CustomerTicketsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateCustomerTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.UpdateBySupport(c.Context(), c.Params("ticketId"), service.CustomerTicketUpdateInput{
		Status:   req.Status,
		Feedback: req.Feedback,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": customerTicketResponse(ticket)})
}

// ListByCustomer handles GET /api/customer/:custId. Support staff may read
// any customer's tickets; customers only their own.
func (h *CustomerTicketsHandler) ListByCustomer(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	custID := c.Params("custId")
	if principal.Role != domain.RoleSupport && principal.ID != custID {
		return apperrors.NewForbidden("insufficient role")
	}

	tickets, err := h.service.ListByCustomer(c.Context(), custID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": customerTicketResponses(tickets)})
}

func customerTicketResponses(tickets []domain.CustomerTicket) []dto.CustomerTicketResponse {
	items := make([]dto.CustomerTicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, customerTicketResponse(&tickets[i]))
	}
	return items
}

func customerTicketResponse(ticket *domain.CustomerTicket) dto.CustomerTicketResponse {
	return dto.CustomerTicketResponse{
		ID:            ticket.ID,
		Title:         ticket.Title,
		Description:   ticket.Description,
		Status:        ticket.Status,
		CustomerID:    ticket.CustomerID,
		CustomerEmail: ticket.CustomerEmail,
		Feedback:      ticket.Feedback,
		CreatedAt:     ticket.CreatedAt,
		UpdatedAt:     ticket.UpdatedAt,
	}
}
