package service

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/events"
	"github.com/spec-kit/ticket-tracker/internal/mail"
	"github.com/spec-kit/ticket-tracker/internal/repository"
)

// NotificationService turns domain events into emails. Delivery is best
// effort: every failure is logged and swallowed so a broken relay never
// blocks or rolls back the mutation that raised the event.
type NotificationService struct {
	tickets         repository.TicketRepository
	developers      repository.DeveloperRepository
	customerTickets repository.CustomerTicketRepository
	customers       repository.CustomerRepository
	mailer          mail.Mailer
	baseURL         string
	logger          *zap.Logger
}

// NotificationDependencies bundles collaborators for the service. Mailer may
// be nil when no SMTP host is configured; notifications are then skipped.
type NotificationDependencies struct {
	TicketRepo         repository.TicketRepository
	DeveloperRepo      repository.DeveloperRepository
	CustomerTicketRepo repository.CustomerTicketRepository
	CustomerRepo       repository.CustomerRepository
	Mailer             mail.Mailer
	BaseURL            string
	Logger             *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	return &NotificationService{
		tickets:         deps.TicketRepo,
		developers:      deps.DeveloperRepo,
		customerTickets: deps.CustomerTicketRepo,
		customers:       deps.CustomerRepo,
		mailer:          deps.Mailer,
		baseURL:         strings.TrimRight(deps.BaseURL, "/"),
		logger:          deps.Logger,
	}
}

// Register subscribes the notification handlers on the dispatcher.
func (s *NotificationService) Register(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventTicketAssigned, s.HandleTicketAssigned)
	dispatcher.Subscribe(events.EventTicketModified, s.HandleTicketModified)
	dispatcher.Subscribe(events.EventCustomerTicketStatusChanged, s.HandleCustomerTicketStatusChanged)
	dispatcher.Subscribe(events.EventCustomerTicketFeedbackAdded, s.HandleCustomerTicketFeedbackAdded)
}

// HandleTicketAssigned emails each developer named in the event payload.
func (s *NotificationService) HandleTicketAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok {
		s.logger.Warn("unexpected assignment payload", zap.String("event_id", event.ID))
		return nil
	}
	ticket, err := s.tickets.GetByID(ctx, event.TicketID)
	if err != nil {
		s.logger.Error("load ticket for assignment notification",
			zap.String("ticket_id", event.TicketID), zap.Error(err))
		return nil
	}
	developers, err := s.developers.ListByIDs(ctx, payload.DeveloperIDs)
	if err != nil {
		s.logger.Error("load developers for assignment notification",
			zap.String("ticket_id", event.TicketID), zap.Error(err))
		return nil
	}

	subject := fmt.Sprintf("You've been assigned to ticket: %s", ticket.Title)
	body := s.assignmentBody(ticket)
	for _, dev := range developers {
		s.send(ctx, dev.Email, subject, body)
	}
	return nil
}

// HandleTicketModified emails every developer currently assigned, listing the
// changed fields.
func (s *NotificationService) HandleTicketModified(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketModifiedPayload)
	if !ok {
		s.logger.Warn("unexpected modification payload", zap.String("event_id", event.ID))
		return nil
	}
	ticket, err := s.tickets.GetByID(ctx, event.TicketID)
	if err != nil {
		s.logger.Error("load ticket for modification notification",
			zap.String("ticket_id", event.TicketID), zap.Error(err))
		return nil
	}
	if len(ticket.AssignedDeveloperIDs) == 0 {
		return nil
	}
	developers, err := s.developers.ListByIDs(ctx, ticket.AssignedDeveloperIDs)
	if err != nil {
		s.logger.Error("load developers for modification notification",
			zap.String("ticket_id", event.TicketID), zap.Error(err))
		return nil
	}

	subject := fmt.Sprintf("Ticket updated: %s", ticket.Title)
	body := s.modificationBody(ticket, payload.ChangedFields)
	for _, dev := range developers {
		s.send(ctx, dev.Email, subject, body)
	}
	return nil
}

// HandleCustomerTicketStatusChanged emails the owning customer.
func (s *NotificationService) HandleCustomerTicketStatusChanged(ctx context.Context, event events.Event) error {
	ticket, customer, ok := s.loadCustomerTicket(ctx, event.TicketID)
	if !ok {
		return nil
	}
	subject := fmt.Sprintf("Your ticket status has been updated: %s", ticket.Title)
	body := s.customerStatusBody(ticket)
	s.send(ctx, customer.Email, subject, body)
	return nil
}

// HandleCustomerTicketFeedbackAdded emails the owning customer.
func (s *NotificationService) HandleCustomerTicketFeedbackAdded(ctx context.Context, event events.Event) error {
	ticket, customer, ok := s.loadCustomerTicket(ctx, event.TicketID)
	if !ok {
		return nil
	}
	subject := fmt.Sprintf("New feedback on your ticket: %s", ticket.Title)
	body := s.customerFeedbackBody(ticket)
	s.send(ctx, customer.Email, subject, body)
	return nil
}

func (s *NotificationService) loadCustomerTicket(ctx context.Context, ticketID string) (*domain.CustomerTicket, *domain.Customer, bool) {
	ticket, err := s.customerTickets.GetByID(ctx, ticketID)
	if err != nil {
		s.logger.Error("load customer ticket for notification",
			zap.String("ticket_id", ticketID), zap.Error(err))
		return nil, nil, false
	}
	customer, err := s.customers.GetByID(ctx, ticket.CustomerID)
	if err != nil {
		s.logger.Error("load customer for notification",
			zap.String("customer_id", ticket.CustomerID), zap.Error(err))
		return nil, nil, false
	}
	return ticket, customer, true
}

func (s *NotificationService) send(ctx context.Context, to, subject, body string) {
	if s.mailer == nil {
		s.logger.Debug("mailer disabled, skipping notification",
			zap.String("to", to), zap.String("subject", subject))
		return
	}
	if err := s.mailer.Send(ctx, to, subject, body); err != nil {
		s.logger.Error("send notification email",
			zap.String("to", to), zap.String("subject", subject), zap.Error(err))
		return
	}
	s.logger.Info("notification email sent",
		zap.String("to", to), zap.String("subject", subject))
}

func (s *NotificationService) assignmentBody(ticket *domain.Ticket) string {
	var b strings.Builder
	b.WriteString("<h2>You have a new ticket assignment</h2>")
	fmt.Fprintf(&b, "<p><strong>%s</strong></p>", html.EscapeString(ticket.Title))
	fmt.Fprintf(&b, "<p>Priority: %s</p>", ticket.Priority)
	fmt.Fprintf(&b, "<p>Due date: %s</p>", ticket.DueDate.Format("Mon Jan 02 2006"))
	fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(ticket.Description))
	fmt.Fprintf(&b, `<p><a href="%s/tickets/%s">View ticket</a></p>`, s.baseURL, ticket.ID)
	return b.String()
}

func (s *NotificationService) modificationBody(ticket *domain.Ticket, changed map[string]any) string {
	keys := make([]string, 0, len(changed))
	for key := range changed {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("<h2>A ticket you are assigned to was updated</h2>")
	fmt.Fprintf(&b, "<p><strong>%s</strong></p>", html.EscapeString(ticket.Title))
	b.WriteString("<ul>")
	for _, key := range keys {
		fmt.Fprintf(&b, "<li>%s: %s</li>", html.EscapeString(key), html.EscapeString(fmt.Sprint(changed[key])))
	}
	b.WriteString("</ul>")
	fmt.Fprintf(&b, `<p><a href="%s/tickets/%s">View ticket</a></p>`, s.baseURL, ticket.ID)
	return b.String()
}

func (s *NotificationService) customerStatusBody(ticket *domain.CustomerTicket) string {
	var b strings.Builder
	b.WriteString("<h2>Your ticket status changed</h2>")
	fmt.Fprintf(&b, "<p><strong>%s</strong></p>", html.EscapeString(ticket.Title))
	fmt.Fprintf(&b, "<p>New status: %s</p>", ticket.Status)
	fmt.Fprintf(&b, `<p><a href="%s/customer/tickets/%s">View ticket</a></p>`, s.baseURL, ticket.ID)
	return b.String()
}

func (s *NotificationService) customerFeedbackBody(ticket *domain.CustomerTicket) string {
	var b strings.Builder
	b.WriteString("<h2>Support left feedback on your ticket</h2>")
	fmt.Fprintf(&b, "<p><strong>%s</strong></p>", html.EscapeString(ticket.Title))
	if ticket.Feedback != nil {
		fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(*ticket.Feedback))
	}
	fmt.Fprintf(&b, `<p><a href="%s/customer/tickets/%s">View ticket</a></p>`, s.baseURL, ticket.ID)
	return b.String()
}
