package view

import (
	"html/template"
	"time"

	"github.com/mergington/activity-board/internal/core/domain"
)

// Page is the data of the full board page.
type Page struct {
	Visibility   domain.Visibility
	Board        BoardData
	BoardMessage *Message
	LoginMessage *Message
	ModalOpen    bool
	Signup       SignupForm
	Login        LoginForm
	CSRF         template.HTML
}

// BoardData is the data of the board fragment.
type BoardData struct {
	domain.Board
	CSRF template.HTML
}

// SignupForm holds values kept after a failed signup.
type SignupForm struct {
	Activity string
	Email    string
}

// LoginForm holds values kept after a failed login.
type LoginForm struct {
	Username string
}

// Message is a transient message with the time it has left on screen.
type Message struct {
	Text        string
	Kind        domain.MessageKind
	RemainingMS int64
}

// NewMessage converts msg for rendering at now. Returns nil when msg is not
// visible any more.
func NewMessage(msg *domain.Message, now time.Time) *Message {
	if msg == nil || !msg.VisibleAt(now) {
		return nil
	}
	return &Message{
		Text:        msg.Text,
		Kind:        msg.Kind,
		RemainingMS: msg.Remaining(now).Milliseconds(),
	}
}

// ErrorPage is the data of the error page.
type ErrorPage struct {
	Status  int
	Message string
}
