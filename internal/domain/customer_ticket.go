package domain

import "time"

// CustomerTicket is the customer-facing support request, distinct from the
// internal Ticket. Customers create them; only support mutates them.
type CustomerTicket struct {
	ID          string
	Title       string
	Description string
	Status      TicketStatus
	CustomerID  string
	// CustomerEmail is populated by listing queries that join the owner.
	CustomerEmail string
	Feedback      *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
