package domain

// User is the identity returned by the upstream login and /auth/me calls.
// Role is carried for display only; visibility decisions use presence alone.
type User struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role,omitempty"`
}

// DisplayName prefers the full name and falls back to the username.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}
