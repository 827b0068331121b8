package domain

// Application roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Identity is the verified caller of an operation, as produced by the
// token verifier. A nil *Identity means the caller is anonymous.
type Identity struct {
	UserID string
	Role   string
}

// IsAdmin reports whether the identity is present and has the admin role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}
