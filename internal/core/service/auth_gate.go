package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mergington/activity-board/internal/core/domain"
	"github.com/mergington/activity-board/internal/core/ports"
	"github.com/mergington/activity-board/internal/pkg/metrics"
)

// AuthGate owns the session of one browser and is the only writer of it.
//
//	LoggedOut ──Resolve(token)──▶ Validating ──2xx──▶ LoggedIn
//	                                  └──error──▶ LoggedOut (token cleared)
//	LoggedOut ──Login ok──▶ LoggedIn ──Logout──▶ LoggedOut
type AuthGate struct {
	api    ports.BoardAPI
	tokens ports.TokenStore
	log    zerolog.Logger

	session  domain.Session
	state    domain.AuthState
	resolved bool
}

// NewAuthGate loads the persisted token synchronously. No network call is
// made until Resolve.
func NewAuthGate(api ports.BoardAPI, tokens ports.TokenStore, log zerolog.Logger) *AuthGate {
	g := &AuthGate{
		api:    api,
		tokens: tokens,
		log:    log,
		state:  domain.StateLoggedOut,
	}
	if token, ok := tokens.Load(); ok {
		g.session.Token = token
	}
	return g
}

// State returns the current state.
func (g *AuthGate) State() domain.AuthState {
	return g.state
}

// Token returns the persisted token, which may not be validated yet.
func (g *AuthGate) Token() string {
	return g.session.Token
}

// User returns a copy of the identity, or nil when logged out.
func (g *AuthGate) User() *domain.User {
	if g.session.User == nil {
		return nil
	}
	u := *g.session.User
	return &u
}

// Visibility is the full UI sync for the current state.
func (g *AuthGate) Visibility() domain.Visibility {
	return domain.VisibilityFor(g.state, g.session.User)
}

// Resolve runs the startup transition. Without a token it settles on
// LoggedOut with no network call; with one it issues exactly one identity
// lookup. Later calls return the settled state.
func (g *AuthGate) Resolve(ctx context.Context) domain.Visibility {
	if g.resolved {
		return g.Visibility()
	}
	g.resolved = true

	if !g.session.HasToken() {
		g.transition(domain.StateLoggedOut)
		return g.Visibility()
	}

	g.transition(domain.StateValidating)
	user, err := g.api.Me(ctx, g.session.Token)
	if err != nil {
		g.log.Warn().Err(err).Msg("session validation failed, discarding token")
		g.clear()
		g.transition(domain.StateLoggedOut)
		return g.Visibility()
	}

	g.session.User = user
	g.transition(domain.StateLoggedIn)
	return g.Visibility()
}

// Login replaces the session with the one issued by the server and persists
// the token.
func (g *AuthGate) Login(ctx context.Context, username, password string) (*domain.User, error) {
	res, err := g.api.Login(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := g.tokens.Save(res.Token); err != nil {
		return nil, fmt.Errorf("login: persist token: %w", err)
	}

	user := res.User
	g.session = domain.Session{Token: res.Token, User: &user}
	g.resolved = true
	g.transition(domain.StateLoggedIn)
	return g.User(), nil
}

// Logout notifies the server on a best-effort basis and then clears the
// session unconditionally.
func (g *AuthGate) Logout(ctx context.Context) {
	if g.session.HasToken() {
		if err := g.api.Logout(ctx, g.session.Token); err != nil {
			g.log.Warn().Err(err).Msg("logout notification failed")
		}
	}
	g.clear()
	g.resolved = true
	g.transition(domain.StateLoggedOut)
}

func (g *AuthGate) clear() {
	g.session = domain.Session{}
	if err := g.tokens.Clear(); err != nil {
		g.log.Error().Err(err).Msg("failed to clear persisted token")
	}
}

func (g *AuthGate) transition(to domain.AuthState) {
	from := g.state
	g.state = to
	if from == to {
		return
	}
	metrics.AuthGateTransitionsTotal.WithLabelValues(string(from), string(to)).Inc()
	g.log.Debug().Str("from", string(from)).Str("to", string(to)).Msg("auth gate transition")
}
