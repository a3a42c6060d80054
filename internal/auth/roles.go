package auth

// Role represents a caller capability.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleBank   Role = "bank"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// NormalizeRole validates and normalizes a role string.
func NormalizeRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleBuyer, RoleBank, RoleSeller, RoleAdmin:
		return Role(value), true
	default:
		return "", false
	}
}
