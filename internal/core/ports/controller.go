package ports

import (
	"context"

	"github.com/mergington/activity-board/internal/core/domain"
)

// BoardController is the Session & Board Controller for one browser request.
type BoardController interface {
	// Resolve runs the Auth Gate startup transition and returns the UI sync.
	Resolve(ctx context.Context) domain.Visibility
	// Visibility returns the UI sync of the current state without network calls.
	Visibility() domain.Visibility
	// Refresh fetches the catalog and rebuilds the board.
	Refresh(ctx context.Context) domain.Board
	// Dispatch runs one user command.
	Dispatch(ctx context.Context, cmd domain.Command) domain.Outcome
	// Message returns the visible message of a surface, if any.
	Message(ctx context.Context, surface domain.Surface) *domain.Message
}

// ControllerFactory builds a controller bound to one browser.
type ControllerFactory interface {
	ForClient(clientID string, tokens TokenStore) BoardController
}
