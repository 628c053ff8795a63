package service

import (
	"context"
	"sync"

	"github.com/mergington/activity-board/internal/core/domain"
	"github.com/mergington/activity-board/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubAPI struct {
	listFn       func(ctx context.Context) ([]domain.Activity, error)
	signupFn     func(ctx context.Context, activity, email string) (string, error)
	unregisterFn func(ctx context.Context, token, activity, email string) (string, error)
	loginFn      func(ctx context.Context, username, password string) (*ports.LoginResult, error)
	logoutFn     func(ctx context.Context, token string) error
	meFn         func(ctx context.Context, token string) (*domain.User, error)

	calls map[string]int
}

func newStubAPI() *stubAPI {
	return &stubAPI{calls: make(map[string]int)}
}

func (s *stubAPI) ListActivities(ctx context.Context) ([]domain.Activity, error) {
	s.calls["activities"]++
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx)
}

func (s *stubAPI) Signup(ctx context.Context, activity, email string) (string, error) {
	s.calls["signup"]++
	return s.signupFn(ctx, activity, email)
}

func (s *stubAPI) Unregister(ctx context.Context, token, activity, email string) (string, error) {
	s.calls["unregister"]++
	return s.unregisterFn(ctx, token, activity, email)
}

func (s *stubAPI) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	s.calls["login"]++
	return s.loginFn(ctx, username, password)
}

func (s *stubAPI) Logout(ctx context.Context, token string) error {
	s.calls["logout"]++
	if s.logoutFn == nil {
		return nil
	}
	return s.logoutFn(ctx, token)
}

func (s *stubAPI) Me(ctx context.Context, token string) (*domain.User, error) {
	s.calls["me"]++
	return s.meFn(ctx, token)
}

type memTokens struct {
	token   string
	saves   int
	clears  int
	saveErr error
}

func (m *memTokens) Load() (string, bool) {
	return m.token, m.token != ""
}

func (m *memTokens) Save(token string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.token = token
	return nil
}

func (m *memTokens) Clear() error {
	m.clears++
	m.token = ""
	return nil
}

type memMessages struct {
	mu    sync.Mutex
	byKey map[string]domain.Message
	err   error
}

func newMemMessages() *memMessages {
	return &memMessages{byKey: make(map[string]domain.Message)}
}

func (m *memMessages) Show(_ context.Context, clientID string, msg domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byKey[clientID+":"+string(msg.Surface)] = msg
	return nil
}

func (m *memMessages) Current(_ context.Context, clientID string, surface domain.Surface) (*domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	msg, ok := m.byKey[clientID+":"+string(surface)]
	if !ok {
		return nil, nil
	}
	return &msg, nil
}

type collectAudit struct {
	records []domain.ActionRecord
}

func (c *collectAudit) Enqueue(rec domain.ActionRecord) {
	c.records = append(c.records, rec)
}
