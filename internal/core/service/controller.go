package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/mergington/activity-board/internal/core/domain"
	"github.com/mergington/activity-board/internal/core/ports"
)

// Controller is the Session & Board Controller of one browser request. The
// Auth Gate is the single source of truth for visibility; the renderer and
// the dispatcher read it, never duplicate it.
type Controller struct {
	clientID   string
	gate       *AuthGate
	board      *BoardRenderer
	dispatcher *ActionDispatcher
	messages   ports.MessageStore
	log        zerolog.Logger
	now        func() time.Time
}

var _ ports.BoardController = (*Controller)(nil)

func (c *Controller) Resolve(ctx context.Context) domain.Visibility {
	return c.gate.Resolve(ctx)
}

func (c *Controller) Visibility() domain.Visibility {
	return c.gate.Visibility()
}

func (c *Controller) Refresh(ctx context.Context) domain.Board {
	return c.board.Refresh(ctx, c.gate.Visibility())
}

func (c *Controller) Dispatch(ctx context.Context, cmd domain.Command) domain.Outcome {
	return c.dispatcher.Dispatch(ctx, cmd)
}

// Message returns the surface's message while it is inside its display
// window. Store errors are logged and treated as "no message".
func (c *Controller) Message(ctx context.Context, surface domain.Surface) *domain.Message {
	msg, err := c.messages.Current(ctx, c.clientID, surface)
	if err != nil {
		c.log.Error().Err(err).Str("surface", string(surface)).Msg("failed to load message")
		return nil
	}
	if msg == nil || !msg.VisibleAt(c.now()) {
		return nil
	}
	return msg
}

// ControllerFactory wires shared collaborators into per-browser controllers.
type ControllerFactory struct {
	api      ports.BoardAPI
	messages ports.MessageStore
	audit    ports.AuditSink
	log      zerolog.Logger
	now      func() time.Time
}

// Option customises a ControllerFactory.
type Option func(*ControllerFactory)

// WithClock overrides the time source used for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(f *ControllerFactory) {
		f.now = now
	}
}

func NewControllerFactory(
	api ports.BoardAPI,
	messages ports.MessageStore,
	audit ports.AuditSink,
	log zerolog.Logger,
	opts ...Option,
) *ControllerFactory {
	f := &ControllerFactory{
		api:      api,
		messages: messages,
		audit:    audit,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.audit == nil {
		f.audit = DiscardAudit{}
	}
	return f
}

// ForClient builds a controller whose session is loaded from tokens.
func (f *ControllerFactory) ForClient(clientID string, tokens ports.TokenStore) ports.BoardController {
	log := f.log.With().Str("client_id", clientID).Logger()
	gate := NewAuthGate(f.api, tokens, log.With().Str("component", "auth_gate").Logger())
	return &Controller{
		clientID:   clientID,
		gate:       gate,
		board:      NewBoardRenderer(f.api, log.With().Str("component", "board_renderer").Logger()),
		dispatcher: NewActionDispatcher(clientID, gate, f.api, f.messages, f.audit, log.With().Str("component", "action_dispatcher").Logger(), f.now),
		messages:   f.messages,
		log:        log,
		now:        f.now,
	}
}
