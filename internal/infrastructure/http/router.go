package http

import (
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	// Registers the OpenAPI document served under /swagger.
	_ "github.com/mergington/activity-board/docs"
	"github.com/mergington/activity-board/internal/infrastructure/http/handlers"
)

// OpsPaths are served without session handling or request metrics.
var OpsPaths = []string{"/health", "/health/ready", "/metrics"}

// RegisterOps adds the health checks, the Prometheus endpoint and the API
// docs to e.
func RegisterOps(e *echo.Echo, ready *handlers.HealthDependenciesHandler) {
	e.GET("/health", handlers.NewHealthHandler().Liveness)
	e.GET("/health/ready", ready.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)
}

// IsOpsPath reports whether path belongs to RegisterOps.
func IsOpsPath(path string) bool {
	for _, p := range OpsPaths {
		if path == p {
			return true
		}
	}
	return strings.HasPrefix(path, "/swagger/")
}
