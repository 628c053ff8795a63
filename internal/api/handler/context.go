package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mergington/activity-board/internal/api/middleware"
	"github.com/mergington/activity-board/internal/core/ports"
)

// ctxController builds the controller of the browser behind c. The session
// middleware must have run; without it the request cannot be served.
func ctxController(c echo.Context, controllers ports.ControllerFactory) (ports.BoardController, error) {
	clientID := middleware.ClientID(c)
	tokens, ok := middleware.TokenStoreFrom(c)
	if clientID == "" || !ok {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "session not initialised")
	}
	return controllers.ForClient(clientID, tokens), nil
}
