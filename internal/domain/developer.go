package domain

import "time"

// SupportDepartmentName marks the department whose members act as support staff.
const SupportDepartmentName = "Support"

// Developer is an internal engineer, team lead, or support staff member.
type Developer struct {
	ID             string
	Name           string
	Email          string
	PasswordHash   string
	DepartmentID   string
	DepartmentName string
	// LeadOfDepartmentID holds the department this developer leads, if any.
	LeadOfDepartmentID *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// SessionRole computes the role fixed into this developer's session token.
// Support department membership wins over lead status.
func (d *Developer) SessionRole() Role {
	if d.DepartmentName == SupportDepartmentName {
		return RoleSupport
	}
	if d.LeadOfDepartmentID != nil {
		return RoleLead
	}
	return RoleDeveloper
}
