package ports

import (
	"context"

	"github.com/mergington/activity-board/internal/core/domain"
)

// LoginResult is the upstream answer to a successful login.
type LoginResult struct {
	Token string
	User  domain.User
}

// BoardAPI is the remote activities API. Implementations return
// *domain.APIError for non-2xx answers and wrap domain.ErrUpstreamUnavailable
// for transport failures.
type BoardAPI interface {
	// ListActivities returns the catalog in the order the server sent it.
	ListActivities(ctx context.Context) ([]domain.Activity, error)
	// Signup returns the server's success message.
	Signup(ctx context.Context, activity, email string) (string, error)
	// Unregister returns the server's success message.
	Unregister(ctx context.Context, token, activity, email string) (string, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	// Me resolves the identity behind token.
	Me(ctx context.Context, token string) (*domain.User, error)
}
