package auth

// Role distinguishes the two account kinds.
type Role string

const (
	RoleReader Role = "reader"
	RoleAdmin  Role = "admin"
)

// Identity is the authenticated requester: a role tag plus the account
// name. There is no shared base type between readers and
// administrators; handlers check the tag explicitly.
type Identity struct {
	Role Role
	Name string
}

// IsReader reports whether the identity is a reader account.
func (i *Identity) IsReader() bool {
	return i != nil && i.Role == RoleReader
}

// IsAdmin reports whether the identity is an administrator account.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// RoleFlag returns the presentation flag used by the error pages:
// 0 anonymous, 1 reader, 2 administrator.
func (i *Identity) RoleFlag() int {
	switch {
	case i.IsReader():
		return 1
	case i.IsAdmin():
		return 2
	default:
		return 0
	}
}
