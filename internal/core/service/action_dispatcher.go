package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/mergington/activity-board/internal/core/domain"
	"github.com/mergington/activity-board/internal/core/ports"
	"github.com/mergington/activity-board/internal/pkg/metrics"
)

const genericFailure = "An error occurred"

type commandHandler func(ctx context.Context, cmd domain.Command) domain.Outcome

// ActionDispatcher runs user commands through a typed dispatch table. Every
// command shows exactly one message and asks for a refresh only on success.
type ActionDispatcher struct {
	clientID string
	gate     *AuthGate
	api      ports.BoardAPI
	messages ports.MessageStore
	audit    ports.AuditSink
	log      zerolog.Logger
	now      func() time.Time

	handlers map[domain.CommandKind]commandHandler
}

func NewActionDispatcher(
	clientID string,
	gate *AuthGate,
	api ports.BoardAPI,
	messages ports.MessageStore,
	audit ports.AuditSink,
	log zerolog.Logger,
	now func() time.Time,
) *ActionDispatcher {
	if now == nil {
		now = time.Now
	}
	d := &ActionDispatcher{
		clientID: clientID,
		gate:     gate,
		api:      api,
		messages: messages,
		audit:    audit,
		log:      log,
		now:      now,
	}
	d.handlers = map[domain.CommandKind]commandHandler{
		domain.CommandLogin:      d.login,
		domain.CommandLogout:     d.logout,
		domain.CommandSignup:     d.signup,
		domain.CommandUnregister: d.unregister,
	}
	return d
}

// Dispatch runs cmd, shows its message and records it in the audit trail.
func (d *ActionDispatcher) Dispatch(ctx context.Context, cmd domain.Command) domain.Outcome {
	handle, ok := d.handlers[cmd.Kind]
	if !ok {
		d.log.Error().Err(domain.ErrUnknownCommand).Str("command", string(cmd.Kind)).Msg("dispatch failed")
		handle = func(context.Context, domain.Command) domain.Outcome {
			return failure(domain.SurfaceBoard, genericFailure)
		}
	}

	// Logout clears the user, so the actor is taken before the command runs.
	actor := d.actor(cmd)
	out := handle(ctx, cmd)
	out.Message.ShownAt = d.now()
	d.show(ctx, out.Message)
	d.record(cmd, out, actor)

	result := domain.ResultFailure
	if out.Succeeded {
		result = domain.ResultSuccess
	}
	metrics.CommandsTotal.WithLabelValues(string(cmd.Kind), string(result)).Inc()
	return out
}

func (d *ActionDispatcher) login(ctx context.Context, cmd domain.Command) domain.Outcome {
	if _, err := d.gate.Login(ctx, cmd.Username, cmd.Password); err != nil {
		d.log.Error().Err(err).Str("username", cmd.Username).Msg("login error")
		out := failure(domain.SurfaceLogin, failureText(err, "Login failed", "Login failed. Please try again."))
		out.ModalOpen = true
		return out
	}
	return domain.Outcome{
		Message:   domain.Message{Text: "Logged in successfully!", Kind: domain.KindSuccess, Surface: domain.SurfaceBoard},
		Succeeded: true,
		Refresh:   true,
		ResetForm: true,
	}
}

// logout always succeeds locally; the server call is best effort.
func (d *ActionDispatcher) logout(ctx context.Context, _ domain.Command) domain.Outcome {
	d.gate.Logout(ctx)
	return domain.Outcome{
		Message:   domain.Message{Text: "Logged out successfully!", Kind: domain.KindInfo, Surface: domain.SurfaceBoard},
		Succeeded: true,
		Refresh:   true,
	}
}

func (d *ActionDispatcher) signup(ctx context.Context, cmd domain.Command) domain.Outcome {
	msg, err := d.api.Signup(ctx, cmd.Activity, cmd.Email)
	if err != nil {
		d.log.Error().Err(err).Str("activity", cmd.Activity).Msg("error signing up")
		return failure(domain.SurfaceBoard, failureText(err, genericFailure, "Failed to sign up. Please try again."))
	}
	return success(msg, true)
}

func (d *ActionDispatcher) unregister(ctx context.Context, cmd domain.Command) domain.Outcome {
	msg, err := d.api.Unregister(ctx, d.gate.Token(), cmd.Activity, cmd.Email)
	if err != nil {
		d.log.Error().Err(err).Str("activity", cmd.Activity).Msg("error unregistering")
		return failure(domain.SurfaceBoard, failureText(err, genericFailure, "Failed to unregister. Please try again."))
	}
	return success(msg, false)
}

func (d *ActionDispatcher) show(ctx context.Context, msg domain.Message) {
	metrics.MessagesShownTotal.WithLabelValues(string(msg.Surface), string(msg.Kind)).Inc()
	if err := d.messages.Show(ctx, d.clientID, msg); err != nil {
		d.log.Error().Err(err).Str("surface", string(msg.Surface)).Msg("failed to store message")
	}
}

// actor names who issued cmd: the resolved user, or the submitted username
// for a login.
func (d *ActionDispatcher) actor(cmd domain.Command) string {
	if u := d.gate.User(); u != nil {
		return u.Username
	}
	if cmd.Kind == domain.CommandLogin {
		return cmd.Username
	}
	return ""
}

func (d *ActionDispatcher) record(cmd domain.Command, out domain.Outcome, actor string) {
	rec := domain.ActionRecord{
		ClientID: d.clientID,
		Command:  cmd.Kind,
		Result:   domain.ResultFailure,
		Activity: cmd.Activity,
		Email:    cmd.Email,
		Actor:    actor,
		Message:  out.Message.Text,
		At:       out.Message.ShownAt,
	}
	if out.Succeeded {
		rec.Result = domain.ResultSuccess
	}
	d.audit.Enqueue(rec)
}

func success(text string, resetForm bool) domain.Outcome {
	return domain.Outcome{
		Message:   domain.Message{Text: text, Kind: domain.KindSuccess, Surface: domain.SurfaceBoard},
		Succeeded: true,
		Refresh:   true,
		ResetForm: resetForm,
	}
}

func failure(surface domain.Surface, text string) domain.Outcome {
	return domain.Outcome{
		Message: domain.Message{Text: text, Kind: domain.KindError, Surface: surface},
	}
}

// failureText picks the server detail for application errors and the
// transport text for everything else.
func failureText(err error, apiFallback, transportText string) string {
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		return domain.DetailOf(err, apiFallback)
	}
	return transportText
}
