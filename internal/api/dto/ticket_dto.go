package dto

import (
	"time"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// CreateTicketRequest payload. DueDate accepts RFC3339 or YYYY-MM-DD.
type CreateTicketRequest struct {
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	Status        domain.TicketStatus   `json:"status"`
	Priority      domain.TicketPriority `json:"priority"`
	Progress      int                   `json:"progress"`
	DueDate       string                `json:"due_date"`
	ParentID      *string               `json:"parent_id"`
	DepartmentIDs []string              `json:"department_ids"`
	DeveloperIDs  []string              `json:"developer_ids"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// UpdateProgressRequest payload.
type UpdateProgressRequest struct {
	Progress int `json:"progress"`
}

// AssignDevelopersRequest payload.
type AssignDevelopersRequest struct {
	DeveloperIDs []string `json:"developer_ids"`
}

// AssignDepartmentRequest payload.
type AssignDepartmentRequest struct {
	DepartmentID string `json:"department_id"`
}

// CreateMeetingRequest payload. Date accepts RFC3339 or YYYY-MM-DD.
type CreateMeetingRequest struct {
	Date  string `json:"date"`
	Notes string `json:"notes"`
}

// TicketResponse is the standard ticket shape.
type TicketResponse struct {
	ID                    string                `json:"id"`
	Title                 string                `json:"title"`
	Description           string                `json:"description"`
	Status                domain.TicketStatus   `json:"status"`
	Priority              domain.TicketPriority `json:"priority"`
	Progress              int                   `json:"progress"`
	DueDate               time.Time             `json:"due_date"`
	ParentID              *string               `json:"parent_id"`
	AssignedDepartmentIDs []string              `json:"assigned_department_ids,omitempty"`
	AssignedDeveloperIDs  []string              `json:"assigned_developer_ids,omitempty"`
	CreatedAt             time.Time             `json:"created_at"`
	UpdatedAt             time.Time             `json:"updated_at"`
}

// TicketDetailResponse adds owned sub-resources.
type TicketDetailResponse struct {
	TicketResponse
	Files      []FileResponse    `json:"files"`
	Meetings   []MeetingResponse `json:"meetings"`
	SubTickets []TicketResponse  `json:"sub_tickets"`
}

// FileResponse is attachment metadata; content is never inlined.
type FileResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	MimeType  string    `json:"mime_type"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// MeetingResponse shape.
type MeetingResponse struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}
