// Package upstream is the HTTP client for the remote activities API.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mergington/activity-board/internal/core/domain"
	"github.com/mergington/activity-board/internal/core/ports"
	"github.com/mergington/activity-board/internal/pkg/metrics"
)

const (
	defaultTimeout = 10 * time.Second
	// maxBodyBytes bounds how much of a response body is read.
	maxBodyBytes = 1 << 20
)

// Client implements ports.BoardAPI over HTTP.
type Client struct {
	base *url.URL
	http *http.Client
	log  zerolog.Logger
}

var _ ports.BoardAPI = (*Client)(nil)

// NewClient returns a Client for the API rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("upstream: parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("upstream: base url %q must be absolute", baseURL)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		base: u,
		http: &http.Client{Timeout: timeout},
		log:  log,
	}, nil
}

type activityPayload struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

type messagePayload struct {
	Message string `json:"message"`
}

type detailPayload struct {
	Detail json.RawMessage `json:"detail"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginPayload struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// ListActivities handles GET /activities. The response is a JSON object keyed
// by activity name; it is decoded token by token to keep the server's order.
func (c *Client) ListActivities(ctx context.Context) ([]domain.Activity, error) {
	var activities []domain.Activity
	err := c.do(ctx, "activities", http.MethodGet, c.endpoint(nil, "activities"), "", nil, func(body []byte) error {
		var err error
		activities, err = decodeCatalog(body)
		return err
	})
	if err != nil {
		return nil, err
	}
	return activities, nil
}

// Signup handles POST /activities/{name}/signup?email=.
func (c *Client) Signup(ctx context.Context, activity, email string) (string, error) {
	q := url.Values{"email": {email}}
	var msg messagePayload
	err := c.do(ctx, "signup", http.MethodPost, c.endpoint(q, "activities", activity, "signup"), "", nil, decodeInto(&msg))
	if err != nil {
		return "", err
	}
	return msg.Message, nil
}

// Unregister handles DELETE /activities/{name}/unregister?email=.
func (c *Client) Unregister(ctx context.Context, token, activity, email string) (string, error) {
	q := url.Values{"email": {email}}
	var msg messagePayload
	err := c.do(ctx, "unregister", http.MethodDelete, c.endpoint(q, "activities", activity, "unregister"), token, nil, decodeInto(&msg))
	if err != nil {
		return "", err
	}
	return msg.Message, nil
}

// Login handles POST /auth/login.
func (c *Client) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	body, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login: encode: %w", err)
	}
	var out loginPayload
	if err := c.do(ctx, "login", http.MethodPost, c.endpoint(nil, "auth", "login"), "", body, decodeInto(&out)); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, fmt.Errorf("login: %w: missing token", domain.ErrMalformedResponse)
	}
	return &ports.LoginResult{Token: out.Token, User: out.User}, nil
}

// Logout handles POST /auth/logout. The response body is ignored.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, "logout", http.MethodPost, c.endpoint(nil, "auth", "logout"), token, nil, nil)
}

// Me handles GET /auth/me. Any non-2xx answer is reported as
// domain.ErrSessionRejected wrapping the APIError.
func (c *Client) Me(ctx context.Context, token string) (*domain.User, error) {
	var user domain.User
	err := c.do(ctx, "me", http.MethodGet, c.endpoint(nil, "auth", "me"), token, nil, decodeInto(&user))
	if err != nil {
		var apiErr *domain.APIError
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("%w: %w", domain.ErrSessionRejected, apiErr)
		}
		return nil, err
	}
	return &user, nil
}

// Ping reports whether the API answers HTTP at all.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(nil, "activities"), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return &domain.APIError{Status: resp.StatusCode}
	}
	return nil
}

// endpoint joins escaped path segments onto the base URL.
func (c *Client) endpoint(query url.Values, segments ...string) string {
	u := *c.base
	raw := strings.TrimRight(u.EscapedPath(), "/")
	plain := strings.TrimRight(u.Path, "/")
	for _, s := range segments {
		raw += "/" + url.PathEscape(s)
		plain += "/" + s
	}
	u.Path = plain
	u.RawPath = raw
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do performs one request and hands a 2xx body to decode. Non-2xx answers
// become *domain.APIError; transport failures wrap ErrUpstreamUnavailable.
func (c *Client) do(ctx context.Context, endpoint, method, target, token string, body []byte, decode func([]byte) error) (err error) {
	start := time.Now()
	outcome := "ok"
	defer func() {
		metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
		metrics.UpstreamRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		outcome = "transport_error"
		return fmt.Errorf("%s: build request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		outcome = "transport_error"
		return fmt.Errorf("%s: %w: %v", endpoint, domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		outcome = "transport_error"
		return fmt.Errorf("%s: %w: read body: %v", endpoint, domain.ErrUpstreamUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome = "api_error"
		apiErr := &domain.APIError{Status: resp.StatusCode, Detail: detailOf(payload)}
		c.log.Debug().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("detail", apiErr.Detail).
			Msg("upstream returned error")
		return fmt.Errorf("%s: %w", endpoint, apiErr)
	}

	if decode == nil {
		return nil
	}
	if err := decode(payload); err != nil {
		outcome = "malformed"
		return fmt.Errorf("%s: %w: %v", endpoint, domain.ErrMalformedResponse, err)
	}
	return nil
}

func decodeInto(v any) func([]byte) error {
	return func(body []byte) error {
		return json.Unmarshal(body, v)
	}
}

// detailOf extracts a string "detail" field. Structured details (validation
// error lists) yield an empty string so callers fall back to generic text.
func detailOf(body []byte) string {
	var p detailPayload
	if err := json.Unmarshal(body, &p); err != nil || len(p.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(p.Detail, &s); err != nil {
		return ""
	}
	return s
}

func decodeCatalog(body []byte) ([]domain.Activity, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	activities := make([]domain.Activity, 0)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected activity name, got %v", tok)
		}
		var p activityPayload
		if err := dec.Decode(&p); err != nil {
			return nil, fmt.Errorf("activity %q: %w", name, err)
		}
		participants := p.Participants
		if participants == nil {
			participants = []string{}
		}
		activities = append(activities, domain.Activity{
			Name:            name,
			Description:     p.Description,
			Schedule:        p.Schedule,
			MaxParticipants: p.MaxParticipants,
			Participants:    participants,
		})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return activities, nil
}
