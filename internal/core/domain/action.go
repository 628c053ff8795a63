package domain

import "time"

// CommandKind identifies a user-triggered action.
type CommandKind string

const (
	CommandLogin      CommandKind = "login"
	CommandLogout     CommandKind = "logout"
	CommandSignup     CommandKind = "signup"
	CommandUnregister CommandKind = "unregister"
)

// Command carries the form input of one action. Only the fields relevant to
// Kind are read.
type Command struct {
	Kind     CommandKind
	Activity string
	Email    string
	Username string
	Password string
}

// Outcome tells the presentation layer what to do after a command.
type Outcome struct {
	Message   Message
	Succeeded bool
	// Refresh is set only on success; failures never refresh the board.
	Refresh bool
	// ResetForm clears the submitted form.
	ResetForm bool
	// ModalOpen keeps the login modal open.
	ModalOpen bool
}

// ActionResult labels an audited command.
type ActionResult string

const (
	ResultSuccess ActionResult = "success"
	ResultFailure ActionResult = "failure"
)

// ActionRecord is one entry of the action audit trail.
type ActionRecord struct {
	ClientID string
	Command  CommandKind
	Result   ActionResult
	Activity string
	Email    string
	Actor    string
	Message  string
	At       time.Time
}
