package middleware

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/hkdf"

	"github.com/mergington/activity-board/internal/core/ports"
)

const (
	// SessionCookie carries the signed browser session.
	SessionCookie = "board_session"

	ctxClientID   = "client_id"
	ctxTokenStore = "token_store"

	sessionKeyInfo = "activity-board session v1"
	csrfKeyInfo    = "activity-board csrf v1"
)

// sessionClaims is the cookie payload. The subject is the browser id and
// Token the opaque upstream token, empty while logged out.
type sessionClaims struct {
	Token string `json:"tok,omitempty"`
	jwt.RegisteredClaims
}

// Sessions issues and verifies the browser session cookie.
type Sessions struct {
	key    []byte
	maxAge time.Duration
	secure bool
	log    zerolog.Logger
	now    func() time.Time
}

// NewSessions derives the cookie signing key from secret.
func NewSessions(secret string, maxAge time.Duration, secure bool, log zerolog.Logger) (*Sessions, error) {
	key, err := DeriveKey(secret, sessionKeyInfo)
	if err != nil {
		return nil, err
	}
	return &Sessions{key: key, maxAge: maxAge, secure: secure, log: log, now: time.Now}, nil
}

// DeriveKey expands secret into a 32 byte key bound to info.
func DeriveKey(secret, info string) ([]byte, error) {
	if secret == "" {
		return nil, errors.New("derive key: empty secret")
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}

// CSRFKey derives the CSRF authentication key from secret.
func CSRFKey(secret string) ([]byte, error) {
	return DeriveKey(secret, csrfKeyInfo)
}

// Middleware attaches the browser id and a cookie-backed token store to the
// context. Browsers without a valid cookie get a fresh id. A cookie past half
// its lifetime is re-issued so active sessions slide forward.
func (s *Sessions) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := s.read(c.Request())
			if err != nil {
				if !errors.Is(err, http.ErrNoCookie) {
					s.log.Debug().Err(err).Msg("discarding invalid session cookie")
				}
				claims = &sessionClaims{}
				claims.Subject = uuid.NewString()
			}
			if s.stale(claims) {
				if err := s.write(c, claims); err != nil {
					return err
				}
			}

			c.Set(ctxClientID, claims.Subject)
			c.Set(ctxTokenStore, &cookieTokens{sessions: s, c: c, claims: claims})
			return next(c)
		}
	}
}

func (s *Sessions) read(r *http.Request) (*sessionClaims, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil, err
	}

	claims := &sessionClaims{}
	tkn, err := jwt.ParseWithClaims(cookie.Value, claims, func(*jwt.Token) (interface{}, error) {
		return s.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !tkn.Valid {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, fmt.Errorf("parse session subject: %w", err)
	}
	return claims, nil
}

// stale reports whether less than half of maxAge remains on claims.
func (s *Sessions) stale(claims *sessionClaims) bool {
	if claims.ExpiresAt == nil {
		return true
	}
	return claims.ExpiresAt.Time.Sub(s.now()) < s.maxAge/2
}

func (s *Sessions) write(c echo.Context, claims *sessionClaims) error {
	now := s.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.maxAge))

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(s.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// cookieTokens persists the upstream token inside the session cookie.
type cookieTokens struct {
	sessions *Sessions
	c        echo.Context
	claims   *sessionClaims
}

var _ ports.TokenStore = (*cookieTokens)(nil)

func (t *cookieTokens) Load() (string, bool) {
	return t.claims.Token, t.claims.Token != ""
}

func (t *cookieTokens) Save(token string) error {
	t.claims.Token = token
	return t.sessions.write(t.c, t.claims)
}

func (t *cookieTokens) Clear() error {
	t.claims.Token = ""
	return t.sessions.write(t.c, t.claims)
}

// ClientID returns the browser id set by Sessions.Middleware.
func ClientID(c echo.Context) string {
	id, _ := c.Get(ctxClientID).(string)
	return id
}

// TokenStoreFrom returns the token store set by Sessions.Middleware.
func TokenStoreFrom(c echo.Context) (ports.TokenStore, bool) {
	store, ok := c.Get(ctxTokenStore).(ports.TokenStore)
	return store, ok
}
