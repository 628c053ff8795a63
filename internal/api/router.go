package api

import (
	"fmt"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/mergington/activity-board/internal/api/handler"
	"github.com/mergington/activity-board/internal/api/middleware"
	"github.com/mergington/activity-board/internal/api/view"
	"github.com/mergington/activity-board/internal/core/ports"
	infrahttp "github.com/mergington/activity-board/internal/infrastructure/http"
	"github.com/mergington/activity-board/internal/infrastructure/http/handlers"
)

// Dependencies are the collaborators the HTTP layer needs.
type Dependencies struct {
	Controllers ports.ControllerFactory
	Sessions    *middleware.Sessions
	// CSRFKey enables CSRF protection on form posts when non-nil.
	CSRFKey        []byte
	SecureCookies  bool
	TrustedOrigins []string
	Ready          *handlers.HealthDependenciesHandler
	// Registerer receives the HTTP metrics; nil means the default registry.
	Registerer prometheus.Registerer
	Log        zerolog.Logger
	Now        func() time.Time
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) (*echo.Echo, error) {
	renderer, err := view.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("new router: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "activity_board",
		Subsystem:  "http",
		Registerer: deps.Registerer,
		Skipper: func(c echo.Context) bool {
			return infrahttp.IsOpsPath(c.Request().URL.Path)
		},
	}))

	// --- Browser routes: session cookie and CSRF ---
	web := []echo.MiddlewareFunc{deps.Sessions.Middleware()}
	if deps.CSRFKey != nil {
		web = append(web, middleware.CSRF(deps.CSRFKey, deps.SecureCookies, deps.TrustedOrigins))
	}

	boardHandler := handler.NewBoardHandler(deps.Controllers, deps.Now)
	actionHandler := handler.NewActionHandler(deps.Controllers)

	e.GET("/", boardHandler.Page, web...)
	e.GET("/board", boardHandler.Board, web...)
	e.POST("/auth/login", actionHandler.Login, web...)
	e.POST("/auth/logout", actionHandler.Logout, web...)
	e.POST("/activities/signup", actionHandler.Signup, web...)
	e.POST("/activities/unregister", actionHandler.Unregister, web...)

	e.StaticFS("/static", view.Static())

	// --- Health, metrics and docs (no session) ---
	infrahttp.RegisterOps(e, deps.Ready)

	return e, nil
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		Skipper: func(c echo.Context) bool {
			return infrahttp.IsOpsPath(c.Request().URL.Path)
		},
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
