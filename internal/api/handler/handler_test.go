package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/mergington/activity-board/internal/api/middleware"
	"github.com/mergington/activity-board/internal/api/view"
	"github.com/mergington/activity-board/internal/core/domain"
	"github.com/mergington/activity-board/internal/core/ports"
)

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type stubController struct {
	vis      domain.Visibility
	board    domain.Board
	messages map[domain.Surface]*domain.Message
	outcome  domain.Outcome

	resolved   int
	refreshed  int
	dispatched []domain.Command
}

func (s *stubController) Resolve(context.Context) domain.Visibility {
	s.resolved++
	return s.vis
}

func (s *stubController) Visibility() domain.Visibility { return s.vis }

func (s *stubController) Refresh(context.Context) domain.Board {
	s.refreshed++
	return s.board
}

func (s *stubController) Dispatch(_ context.Context, cmd domain.Command) domain.Outcome {
	s.dispatched = append(s.dispatched, cmd)
	return s.outcome
}

func (s *stubController) Message(_ context.Context, surface domain.Surface) *domain.Message {
	return s.messages[surface]
}

type stubFactory struct {
	ctl      *stubController
	clientID string
}

func (f *stubFactory) ForClient(clientID string, _ ports.TokenStore) ports.BoardController {
	f.clientID = clientID
	return f.ctl
}

func newEcho(t *testing.T) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	r, err := view.NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	e.Renderer = r
	return e
}

// run executes h behind the session middleware.
func run(t *testing.T, e *echo.Echo, req *http.Request, h echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	sessions, err := middleware.NewSessions("handler-test-secret-0123", time.Hour, false, zerolog.Nop())
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := sessions.Middleware()(h)(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func formRequest(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

func loggedOutController() *stubController {
	return &stubController{
		vis: domain.VisibilityFor(domain.StateLoggedOut, nil),
		board: domain.Board{
			Cards: []domain.Card{{
				Name: "Chess Club", Schedule: "Fridays", SpotsLeft: 11,
				Participants: []domain.ParticipantRow{{Activity: "Chess Club", Email: "a@b.com"}},
			}},
			Options: []string{"Chess Club"},
		},
		messages: map[domain.Surface]*domain.Message{},
	}
}

func TestBoardHandler_PageLoggedOut(t *testing.T) {
	e := newEcho(t)
	ctl := loggedOutController()
	ctl.messages[domain.SurfaceBoard] = &domain.Message{
		Text: "Signed up", Kind: domain.KindSuccess, Surface: domain.SurfaceBoard, ShownAt: testNow.Add(-time.Second),
	}
	f := &stubFactory{ctl: ctl}
	h := NewBoardHandler(f, func() time.Time { return testNow })

	rec := run(t, e, httptest.NewRequest(http.MethodGet, "/", nil), h.Page)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ctl.resolved != 1 || ctl.refreshed != 1 {
		t.Fatalf("expected one resolve and one refresh, got %d/%d", ctl.resolved, ctl.refreshed)
	}
	if f.clientID == "" {
		t.Fatalf("controller must be bound to the browser id")
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Signed up") || !strings.Contains(body, "animation-delay: 4000ms") {
		t.Fatalf("expected board message with remaining time, got %s", body)
	}
	if strings.Contains(body, "delete-btn") {
		t.Fatalf("logged out page must not render removal controls")
	}
	if strings.Contains(body, `id="login-modal"`) {
		t.Fatalf("modal must be closed by default")
	}
	if rec.Header().Get(echo.HeaderCacheControl) != "no-store" {
		t.Fatalf("expected no-store cache control")
	}
}

func TestBoardHandler_PageWithOpenModal(t *testing.T) {
	e := newEcho(t)
	ctl := loggedOutController()
	ctl.messages[domain.SurfaceLogin] = &domain.Message{
		Text: "Invalid username or password", Kind: domain.KindError, Surface: domain.SurfaceLogin, ShownAt: testNow,
	}
	h := NewBoardHandler(&stubFactory{ctl: ctl}, func() time.Time { return testNow })

	rec := run(t, e, httptest.NewRequest(http.MethodGet, "/?login=open&username=teacher", nil), h.Page)

	body := rec.Body.String()
	if !strings.Contains(body, `id="login-modal"`) {
		t.Fatalf("expected open modal")
	}
	if !strings.Contains(body, "Invalid username or password") {
		t.Fatalf("expected login message")
	}
	if !strings.Contains(body, `value="teacher"`) {
		t.Fatalf("expected kept username")
	}
}

func TestBoardHandler_ModalIgnoredWhenLoggedIn(t *testing.T) {
	e := newEcho(t)
	ctl := loggedOutController()
	ctl.vis = domain.VisibilityFor(domain.StateLoggedIn, &domain.User{Username: "t", Name: "Teacher"})
	h := NewBoardHandler(&stubFactory{ctl: ctl}, func() time.Time { return testNow })

	rec := run(t, e, httptest.NewRequest(http.MethodGet, "/?login=open", nil), h.Page)

	if strings.Contains(rec.Body.String(), `id="login-modal"`) {
		t.Fatalf("modal must not open for a logged in user")
	}
}

func TestBoardHandler_ExpiredMessageHidden(t *testing.T) {
	e := newEcho(t)
	ctl := loggedOutController()
	ctl.messages[domain.SurfaceBoard] = &domain.Message{
		Text: "Old news", Kind: domain.KindInfo, Surface: domain.SurfaceBoard, ShownAt: testNow.Add(-domain.MessageDisplayWindow),
	}
	h := NewBoardHandler(&stubFactory{ctl: ctl}, func() time.Time { return testNow })

	rec := run(t, e, httptest.NewRequest(http.MethodGet, "/", nil), h.Page)

	if strings.Contains(rec.Body.String(), "Old news") {
		t.Fatalf("message must hide at exactly five seconds")
	}
}

func TestBoardHandler_Fragment(t *testing.T) {
	e := newEcho(t)
	ctl := loggedOutController()
	ctl.board = domain.Board{Failed: true}
	h := NewBoardHandler(&stubFactory{ctl: ctl}, nil)

	rec := run(t, e, httptest.NewRequest(http.MethodGet, "/board", nil), h.Board)

	body := rec.Body.String()
	if !strings.Contains(body, "Failed to load activities. Please try again later.") {
		t.Fatalf("expected failure notice, got %s", body)
	}
	if strings.Contains(body, "<html") {
		t.Fatalf("fragment must not render the page shell")
	}
}

func TestActionHandler_SignupSuccessRedirects(t *testing.T) {
	e := newEcho(t)
	ctl := loggedOutController()
	ctl.outcome = domain.Outcome{Succeeded: true, Refresh: true, ResetForm: true}
	h := NewActionHandler(&stubFactory{ctl: ctl})

	rec := run(t, e, formRequest("/activities/signup", url.Values{
		"activity": {"Chess Club"},
		"email":    {"a@b.com"},
	}), h.Signup)

	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != "/" {
		t.Fatalf("expected 303 to /, got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
	if len(ctl.dispatched) != 1 {
		t.Fatalf("expected one command, got %d", len(ctl.dispatched))
	}
	cmd := ctl.dispatched[0]
	if cmd.Kind != domain.CommandSignup || cmd.Activity != "Chess Club" || cmd.Email != "a@b.com" {
		t.Fatalf("unexpected command: %+v", cmd)
	}
}

func TestActionHandler_SignupFailureKeepsForm(t *testing.T) {
	e := newEcho(t)
	ctl := loggedOutController()
	ctl.outcome = domain.Outcome{}
	h := NewActionHandler(&stubFactory{ctl: ctl})

	rec := run(t, e, formRequest("/activities/signup", url.Values{
		"activity": {"Chess Club"},
		"email":    {"a@b.com"},
	}), h.Signup)

	loc, err := url.Parse(rec.Header().Get(echo.HeaderLocation))
	if err != nil {
		t.Fatalf("bad location: %v", err)
	}
	if loc.Path != "/" || loc.Query().Get("activity") != "Chess Club" || loc.Query().Get("email") != "a@b.com" {
		t.Fatalf("expected form values kept, got %s", loc)
	}
}

func TestActionHandler_SignupRejectsInvalidEmail(t *testing.T) {
	e := newEcho(t)
	ctl := loggedOutController()
	h := NewActionHandler(&stubFactory{ctl: ctl})

	req := formRequest("/activities/signup", url.Values{"activity": {"Chess Club"}, "email": {"nope"}})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	sessions, _ := middleware.NewSessions("handler-test-secret-0123", time.Hour, false, zerolog.Nop())

	err := sessions.Middleware()(h.Signup)(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
	if len(ctl.dispatched) != 0 {
		t.Fatalf("invalid form must not dispatch")
	}
}

func TestActionHandler_LoginFailureReopensModal(t *testing.T) {
	e := newEcho(t)
	ctl := loggedOutController()
	ctl.outcome = domain.Outcome{ModalOpen: true}
	h := NewActionHandler(&stubFactory{ctl: ctl})

	rec := run(t, e, formRequest("/auth/login", url.Values{
		"username": {"teacher"},
		"password": {"wrong"},
	}), h.Login)

	loc, _ := url.Parse(rec.Header().Get(echo.HeaderLocation))
	if loc.Query().Get("login") != "open" || loc.Query().Get("username") != "teacher" {
		t.Fatalf("expected modal reopened with username, got %s", loc)
	}
	if loc.Query().Get("password") != "" {
		t.Fatalf("password must never be echoed back")
	}
}

func TestActionHandler_LoginSuccessClosesModal(t *testing.T) {
	e := newEcho(t)
	ctl := loggedOutController()
	ctl.outcome = domain.Outcome{Succeeded: true, Refresh: true, ResetForm: true}
	h := NewActionHandler(&stubFactory{ctl: ctl})

	rec := run(t, e, formRequest("/auth/login", url.Values{
		"username": {"teacher"},
		"password": {"secret"},
	}), h.Login)

	if got := rec.Header().Get(echo.HeaderLocation); got != "/" {
		t.Fatalf("expected redirect to /, got %q", got)
	}
	if ctl.dispatched[0].Password != "secret" {
		t.Fatalf("password must reach the command")
	}
}

func TestActionHandler_UnregisterAndLogout(t *testing.T) {
	e := newEcho(t)
	ctl := loggedOutController()
	ctl.outcome = domain.Outcome{}
	h := NewActionHandler(&stubFactory{ctl: ctl})

	rec := run(t, e, formRequest("/activities/unregister", url.Values{
		"activity": {"Chess Club"},
		"email":    {"a@b.com"},
	}), h.Unregister)
	if got := rec.Header().Get(echo.HeaderLocation); got != "/" {
		t.Fatalf("unregister must not leak values into the signup form, got %q", got)
	}

	rec = run(t, e, formRequest("/auth/logout", nil), h.Logout)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}

	if len(ctl.dispatched) != 2 ||
		ctl.dispatched[0].Kind != domain.CommandUnregister ||
		ctl.dispatched[1].Kind != domain.CommandLogout {
		t.Fatalf("unexpected commands: %+v", ctl.dispatched)
	}
	if ctl.resolved != 2 {
		t.Fatalf("each action should resolve the session first, got %d resolves", ctl.resolved)
	}
}

func TestBoardLocation(t *testing.T) {
	keep := url.Values{"email": {"a@b.com"}}
	if got := boardLocation(domain.Outcome{ResetForm: true}, keep); got != "/" {
		t.Fatalf("reset form must drop values, got %q", got)
	}
	if got := boardLocation(domain.Outcome{}, keep); got != "/?email=a%40b.com" {
		t.Fatalf("unexpected location %q", got)
	}
	if got := boardLocation(domain.Outcome{ModalOpen: true}, nil); got != "/?login=open" {
		t.Fatalf("unexpected location %q", got)
	}
}

func TestCtxController_RequiresSession(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if _, err := ctxController(c, &stubFactory{ctl: loggedOutController()}); err == nil {
		t.Fatalf("expected error without session middleware")
	}
}
