package domain

import "time"

// TicketStatus enumerates lifecycle states shared by tickets and customer
// tickets. Transitions are unguarded: any status may follow any other.
type TicketStatus string

const (
	TicketStatusTodo       TicketStatus = "Todo"
	TicketStatusInProgress TicketStatus = "InProgress"
	TicketStatusDone       TicketStatus = "Done"
)

// Valid reports whether the status is a known member of the set.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusTodo, TicketStatusInProgress, TicketStatusDone:
		return true
	}
	return false
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "Low"
	TicketPriorityMedium TicketPriority = "Medium"
	TicketPriorityHigh   TicketPriority = "High"
)

// Valid reports whether the priority is a known member of the set.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return true
	}
	return false
}

// Ticket is the internal engineering work item. Assignment sets are
// append-only unions; progress stays within [0,100].
type Ticket struct {
	ID                    string
	Title                 string
	Description           string
	Status                TicketStatus
	Priority              TicketPriority
	Progress              int
	DueDate               time.Time
	ParentID              *string
	AssignedDepartmentIDs []string
	AssignedDeveloperIDs  []string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}
