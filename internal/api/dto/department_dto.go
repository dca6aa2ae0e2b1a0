package dto

import "time"

// CreateDepartmentRequest payload.
type CreateDepartmentRequest struct {
	Name string `json:"name"`
}

// DepartmentResponse shape.
type DepartmentResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	TeamLeadID *string   `json:"team_lead_id"`
	CreatedAt  time.Time `json:"created_at"`
}
