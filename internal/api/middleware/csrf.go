package middleware

import (
	"html/template"
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/labstack/echo/v4"
)

// CSRFFieldName is the hidden form field carrying the token.
const CSRFFieldName = "csrf_token"

// CSRF protects form posts. Without secure cookies requests are treated as
// plain HTTP so the origin check does not demand TLS.
func CSRF(authKey []byte, secure bool, trustedOrigins []string) echo.MiddlewareFunc {
	protect := csrf.Protect(
		authKey,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.FieldName(CSRFFieldName),
		csrf.TrustedOrigins(trustedOrigins),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "invalid form token, reload the page and try again", http.StatusForbidden)
		})),
	)

	return echo.WrapMiddleware(func(next http.Handler) http.Handler {
		wrapped := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !secure {
				r = csrf.PlaintextHTTPRequest(r)
			}
			wrapped.ServeHTTP(w, r)
		})
	})
}

// CSRFField renders the hidden token input, or nothing when CSRF is off.
func CSRFField(c echo.Context) template.HTML {
	if csrf.Token(c.Request()) == "" {
		return ""
	}
	return csrf.TemplateField(c.Request())
}
