package domain

import "time"

// MessageDisplayWindow is how long a transient message stays visible.
const MessageDisplayWindow = 5 * time.Second

// MessageKind selects the styling of a transient message.
type MessageKind string

const (
	KindSuccess MessageKind = "success"
	KindError   MessageKind = "error"
	KindInfo    MessageKind = "info"
)

// Surface names an independent message area. Each surface shows at most one
// message at a time.
type Surface string

const (
	SurfaceBoard Surface = "board"
	SurfaceLogin Surface = "login"
)

// Message is a transient notice produced by a completed action.
type Message struct {
	Text    string      `json:"text"`
	Kind    MessageKind `json:"kind"`
	Surface Surface     `json:"surface"`
	ShownAt time.Time   `json:"shown_at"`
}

// ExpiresAt is the instant the message hides.
func (m Message) ExpiresAt() time.Time {
	return m.ShownAt.Add(MessageDisplayWindow)
}

// VisibleAt reports whether the message is still on screen at now. The
// message hides at exactly ShownAt+MessageDisplayWindow.
func (m Message) VisibleAt(now time.Time) bool {
	return now.Before(m.ExpiresAt())
}

// Remaining is the display time left at now, never negative.
func (m Message) Remaining(now time.Time) time.Duration {
	left := m.ExpiresAt().Sub(now)
	if left < 0 {
		return 0
	}
	if left > MessageDisplayWindow {
		return MessageDisplayWindow
	}
	return left
}
