package domain

// Role enumerates the authorization roles embedded in session tokens.
// The role is fixed at token issuance and holds for the token's lifetime.
type Role string

const (
	RoleDeveloper Role = "developer"
	RoleLead      Role = "lead"
	RoleSupport   Role = "support"
	RoleCustomer  Role = "customer"
)

// Valid reports whether the role is a member of the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleDeveloper, RoleLead, RoleSupport, RoleCustomer:
		return true
	}
	return false
}
