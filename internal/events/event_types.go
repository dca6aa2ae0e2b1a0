package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketAssigned              EventType = "ticket_assigned"
	EventTicketModified              EventType = "ticket_modified"
	EventCustomerTicketStatusChanged EventType = "customer_ticket_status_changed"
	EventCustomerTicketFeedbackAdded EventType = "customer_ticket_feedback_added"
)

// Event represents a domain event emitted after a successful mutation.
// TicketID refers to a Ticket for the ticket_* events and to a CustomerTicket
// for the customer_ticket_* events.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketAssignedPayload carries the developers newly connected to a ticket.
type TicketAssignedPayload struct {
	DeveloperIDs []string `json:"developer_ids"`
}

// TicketModifiedPayload enumerates the changed fields and their new values.
type TicketModifiedPayload struct {
	ChangedFields map[string]any `json:"changed_fields"`
}
