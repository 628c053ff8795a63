package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mergington/activity-board/internal/core/domain"
	"github.com/mergington/activity-board/internal/core/ports"
)

func TestAuthGate_NoTokenMakesNoNetworkCall(t *testing.T) {
	api := newStubAPI()
	gate := NewAuthGate(api, &memTokens{}, zerolog.Nop())

	vis := gate.Resolve(context.Background())

	if api.calls["me"] != 0 {
		t.Fatalf("expected no identity lookup, got %d", api.calls["me"])
	}
	if gate.State() != domain.StateLoggedOut || !vis.LoginPanel || vis.RemovalControls {
		t.Fatalf("unexpected visibility: %+v", vis)
	}
}

func TestAuthGate_ValidTokenLogsIn(t *testing.T) {
	api := newStubAPI()
	api.meFn = func(_ context.Context, token string) (*domain.User, error) {
		if token != "tok-1" {
			t.Fatalf("unexpected token %q", token)
		}
		return &domain.User{Username: "mrodriguez", Name: "Ms. Rodriguez"}, nil
	}
	tokens := &memTokens{token: "tok-1"}
	gate := NewAuthGate(api, tokens, zerolog.Nop())

	vis := gate.Resolve(context.Background())

	if gate.State() != domain.StateLoggedIn {
		t.Fatalf("expected logged in, got %s", gate.State())
	}
	if !vis.TeacherPanel || !vis.RemovalControls || vis.UserName != "Ms. Rodriguez" {
		t.Fatalf("unexpected visibility: %+v", vis)
	}
	if tokens.clears != 0 {
		t.Fatalf("token must be kept")
	}
}

func TestAuthGate_InvalidTokenClearsStorage(t *testing.T) {
	api := newStubAPI()
	api.meFn = func(context.Context, string) (*domain.User, error) {
		return nil, &domain.APIError{Status: 401, Detail: "Not authenticated"}
	}
	tokens := &memTokens{token: "stale"}
	gate := NewAuthGate(api, tokens, zerolog.Nop())

	gate.Resolve(context.Background())
	gate.Resolve(context.Background())

	if api.calls["me"] != 1 {
		t.Fatalf("expected exactly one validation call, got %d", api.calls["me"])
	}
	if gate.State() != domain.StateLoggedOut {
		t.Fatalf("expected logged out, got %s", gate.State())
	}
	if tokens.token != "" || tokens.clears != 1 {
		t.Fatalf("persisted token should be cleared once: %+v", tokens)
	}
	if gate.Token() != "" {
		t.Fatalf("in-memory token should be discarded")
	}
}

func TestAuthGate_NetworkFailureClearsStorage(t *testing.T) {
	api := newStubAPI()
	api.meFn = func(context.Context, string) (*domain.User, error) {
		return nil, domain.ErrUpstreamUnavailable
	}
	tokens := &memTokens{token: "tok"}
	gate := NewAuthGate(api, tokens, zerolog.Nop())

	gate.Resolve(context.Background())

	if gate.State() != domain.StateLoggedOut || tokens.token != "" {
		t.Fatalf("expected logged out with cleared storage, state=%s token=%q", gate.State(), tokens.token)
	}
}

func TestAuthGate_LoginPersistsToken(t *testing.T) {
	api := newStubAPI()
	api.loginFn = func(_ context.Context, username, password string) (*ports.LoginResult, error) {
		return &ports.LoginResult{Token: "tok-new", User: domain.User{Username: username, Name: "Ms. Rodriguez"}}, nil
	}
	tokens := &memTokens{}
	gate := NewAuthGate(api, tokens, zerolog.Nop())

	user, err := gate.Login(context.Background(), "mrodriguez", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.Username != "mrodriguez" {
		t.Fatalf("unexpected user %+v", user)
	}
	if tokens.token != "tok-new" || gate.Token() != "tok-new" {
		t.Fatalf("token not persisted: store=%q gate=%q", tokens.token, gate.Token())
	}
	if !gate.Visibility().RemovalControls {
		t.Fatalf("removal controls should be visible after login")
	}
	// Already settled: no identity lookup.
	gate.Resolve(context.Background())
	if api.calls["me"] != 0 {
		t.Fatalf("resolve after login must not re-validate")
	}
}

func TestAuthGate_LoginFailureKeepsState(t *testing.T) {
	api := newStubAPI()
	api.loginFn = func(context.Context, string, string) (*ports.LoginResult, error) {
		return nil, &domain.APIError{Status: 401, Detail: "Invalid credentials"}
	}
	tokens := &memTokens{}
	gate := NewAuthGate(api, tokens, zerolog.Nop())

	if _, err := gate.Login(context.Background(), "x", "y"); err == nil {
		t.Fatalf("expected error")
	}
	if gate.State() != domain.StateLoggedOut || tokens.saves != 0 {
		t.Fatalf("failed login must not change state")
	}
}

func TestAuthGate_LoginPersistFailure(t *testing.T) {
	api := newStubAPI()
	api.loginFn = func(context.Context, string, string) (*ports.LoginResult, error) {
		return &ports.LoginResult{Token: "tok", User: domain.User{Username: "x"}}, nil
	}
	gate := NewAuthGate(api, &memTokens{saveErr: errors.New("cookie jar full")}, zerolog.Nop())

	if _, err := gate.Login(context.Background(), "x", "y"); err == nil {
		t.Fatalf("expected persist error")
	}
	if gate.State() != domain.StateLoggedOut {
		t.Fatalf("state must stay logged out when the token cannot be stored")
	}
}

func TestAuthGate_LogoutClearsEvenWhenServerFails(t *testing.T) {
	api := newStubAPI()
	api.meFn = func(context.Context, string) (*domain.User, error) {
		return &domain.User{Username: "mrodriguez"}, nil
	}
	var sentToken string
	api.logoutFn = func(_ context.Context, token string) error {
		sentToken = token
		return domain.ErrUpstreamUnavailable
	}
	tokens := &memTokens{token: "tok-1"}
	gate := NewAuthGate(api, tokens, zerolog.Nop())
	gate.Resolve(context.Background())

	gate.Logout(context.Background())

	if sentToken != "tok-1" {
		t.Fatalf("logout should carry the bearer token, got %q", sentToken)
	}
	if api.calls["logout"] != 1 {
		t.Fatalf("logout must not be retried, got %d calls", api.calls["logout"])
	}
	if gate.State() != domain.StateLoggedOut || tokens.token != "" || gate.User() != nil {
		t.Fatalf("local state must be cleared unconditionally")
	}
	if gate.Visibility().RemovalControls {
		t.Fatalf("removal controls must be hidden after logout")
	}
}

func TestAuthGate_LogoutWithoutTokenSkipsServer(t *testing.T) {
	api := newStubAPI()
	gate := NewAuthGate(api, &memTokens{}, zerolog.Nop())

	gate.Logout(context.Background())

	if api.calls["logout"] != 0 {
		t.Fatalf("no token, no server notification")
	}
}
