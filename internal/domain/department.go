package domain

import "time"

// Department groups developers; at most one developer leads a department.
type Department struct {
	ID         string
	Name       string
	TeamLeadID *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
