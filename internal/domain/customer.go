package domain

import "time"

// Customer is an external account that files customer tickets.
type Customer struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
