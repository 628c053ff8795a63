package ports

import (
	"context"

	"github.com/mergington/activity-board/internal/core/domain"
)

// MessageStore holds the transient message of each browser surface.
// Show replaces whatever the surface displayed before.
type MessageStore interface {
	Show(ctx context.Context, clientID string, msg domain.Message) error
	// Current returns nil when the surface has nothing visible.
	Current(ctx context.Context, clientID string, surface domain.Surface) (*domain.Message, error)
}
