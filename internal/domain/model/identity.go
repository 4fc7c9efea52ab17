package model

// Identity is the decoded, verified contents of an auth token, carried
// per-request. Permissions are the merged table computed at issuance time;
// later role-table changes do not show up here until the token is reissued.
type Identity struct {
	ID          string          `json:"id"`
	Email       string          `json:"email"`
	FullName    string          `json:"fullName"`
	Role        []string        `json:"role"`
	Permissions map[string]bool `json:"permissions"`
}

// HasPermission reports whether the identity carries the named permission.
func (i *Identity) HasPermission(name string) bool {
	if i == nil || i.Permissions == nil {
		return false
	}
	return i.Permissions[name]
}

// Snapshot returns the reduced actor record stamped onto mutations.
func (i *Identity) Snapshot() *ActorSnapshot {
	if i == nil {
		return nil
	}
	return &ActorSnapshot{
		ID:       i.ID,
		Email:    i.Email,
		FullName: i.FullName,
		Role:     i.Role,
	}
}
