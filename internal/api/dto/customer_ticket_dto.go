package dto

import (
	"time"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// CreateCustomerTicketRequest payload. CustomerID is only honored for
// support callers; customers always file under their own account.
type CreateCustomerTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CustomerID  string `json:"customer_id"`
}

// UpdateCustomerTicketRequest payload for the support patch endpoint. Absent
// fields are left untouched.
type UpdateCustomerTicketRequest struct {
	Status   *domain.TicketStatus `json:"status"`
	Feedback *string              `json:"feedback"`
}

// CustomerTicketResponse shape.
type CustomerTicketResponse struct {
	ID            string              `json:"id"`
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	Status        domain.TicketStatus `json:"status"`
	CustomerID    string              `json:"customer_id"`
	CustomerEmail string              `json:"customer_email,omitempty"`
	Feedback      *string             `json:"feedback"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}
