package domain

// AuthState is the Auth Gate's current mode.
type AuthState string

const (
	StateLoggedOut  AuthState = "logged_out"
	StateValidating AuthState = "validating"
	StateLoggedIn   AuthState = "logged_in"
)

// Session is the token/identity pair owned by one controller instance.
// It is replaced or cleared wholesale, never patched field by field.
type Session struct {
	Token string
	User  *User
}

// HasToken reports whether a persisted token is present.
func (s Session) HasToken() bool {
	return s.Token != ""
}

// Visibility is the full UI sync derived from an AuthState. Every
// visibility-dependent element of the page reads from here.
type Visibility struct {
	State           AuthState
	UserName        string
	UserPanel       bool
	LoginPanel      bool
	TeacherPanel    bool
	StudentNotice   bool
	RemovalControls bool
}

// VisibilityFor computes the UI sync for a state. Any authenticated user gets
// the teacher controls; the role is not consulted.
func VisibilityFor(state AuthState, user *User) Visibility {
	if state == StateLoggedIn && user != nil {
		return Visibility{
			State:           StateLoggedIn,
			UserName:        user.DisplayName(),
			UserPanel:       true,
			TeacherPanel:    true,
			RemovalControls: true,
		}
	}
	return Visibility{
		State:         StateLoggedOut,
		LoginPanel:    true,
		StudentNotice: true,
	}
}
