package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/events"
	"github.com/spec-kit/ticket-tracker/internal/repository"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util"
)

// CustomerTicketService owns the customer ticket lifecycle. Customers create
// tickets; only the support-facing update path mutates them afterwards.
type CustomerTicketService struct {
	customerTickets repository.CustomerTicketRepository
	customers       repository.CustomerRepository
	dispatcher      events.Dispatcher
}

// CustomerTicketDependencies bundles repositories for the service.
type CustomerTicketDependencies struct {
	CustomerTicketRepo repository.CustomerTicketRepository
	CustomerRepo       repository.CustomerRepository
	Dispatcher         events.Dispatcher
}

// NewCustomerTicketService constructs the service.
func NewCustomerTicketService(deps CustomerTicketDependencies) *CustomerTicketService {
	return &CustomerTicketService{
		customerTickets: deps.CustomerTicketRepo,
		customers:       deps.CustomerRepo,
		dispatcher:      deps.Dispatcher,
	}
}

// CustomerTicketUpdateInput carries the optional fields support may change.
type CustomerTicketUpdateInput struct {
	Status   *domain.TicketStatus
	Feedback *string
}

// Create opens a new customer ticket. Status always starts at Todo.
func (s *CustomerTicketService) Create(ctx context.Context, customerID, title, description string) (*domain.CustomerTicket, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(description) == "" || customerID == "" {
		return nil, apperrors.NewValidationError("Missing required fields", nil)
	}
	if _, err := s.customers.GetByID(ctx, customerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("customer", map[string]any{"customer_id": customerID})
		}
		return nil, err
	}

	ticket := &domain.CustomerTicket{
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Status:      domain.TicketStatusTodo,
		CustomerID:  customerID,
	}
	if err := s.customerTickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// UpdateBySupport applies the present fields. Each present field triggers its
// own customer-facing notification: feedback and status are distinct messages.
func (s *CustomerTicketService) UpdateBySupport(ctx context.Context, ticketID string, input CustomerTicketUpdateInput) (*domain.CustomerTicket, error) {
	if input.Status == nil && input.Feedback == nil {
		return nil, apperrors.NewValidationError("nothing to update", nil)
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": *input.Status})
	}

	ticket, err := s.customerTickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("customer ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, err
	}

	if input.Status != nil {
		ticket.Status = *input.Status
	}
	if input.Feedback != nil {
		ticket.Feedback = input.Feedback
	}
	if err := s.customerTickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	if input.Feedback != nil {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventCustomerTicketFeedbackAdded,
			TicketID: ticket.ID,
		})
	}
	if input.Status != nil {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventCustomerTicketStatusChanged,
			TicketID: ticket.ID,
		})
	}
	return ticket, nil
}

// List returns every customer ticket with the owner's email joined.
func (s *CustomerTicketService) List(ctx context.Context) ([]domain.CustomerTicket, error) {
	return s.customerTickets.List(ctx)
}

// ListByCustomer returns one customer's tickets.
func (s *CustomerTicketService) ListByCustomer(ctx context.Context, customerID string) ([]domain.CustomerTicket, error) {
	return s.customerTickets.ListByCustomer(ctx, customerID)
}

func (s *CustomerTicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
