package domain

import "time"

// Meeting records a scheduled discussion attached to a ticket.
type Meeting struct {
	ID        string
	TicketID  string
	Date      time.Time
	Notes     string
	CreatedAt time.Time
}
