package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mergington/activity-board/internal/api/middleware"
	"github.com/mergington/activity-board/internal/api/view"
	"github.com/mergington/activity-board/internal/core/domain"
	"github.com/mergington/activity-board/internal/core/ports"
)

// Query parameters the board page understands. Action redirects use them to
// reopen the login modal and keep form values after a failure.
const (
	queryLogin    = "login"
	queryUsername = "username"
	queryActivity = "activity"
	queryEmail    = "email"

	loginOpen = "open"
)

type BoardHandler struct {
	controllers ports.ControllerFactory
	now         func() time.Time
}

func NewBoardHandler(controllers ports.ControllerFactory, now func() time.Time) *BoardHandler {
	if now == nil {
		now = time.Now
	}
	return &BoardHandler{controllers: controllers, now: now}
}

// Page renders the whole board: auth panels, activities, signup form and the
// messages still inside their display window.
//
// @Summary      Activity board page
// @Tags         board
// @Produce      html
// @Param        login     query  string  false  "open renders the login modal"
// @Param        username  query  string  false  "login form value"
// @Param        activity  query  string  false  "signup form value"
// @Param        email     query  string  false  "signup form value"
// @Success      200
// @Router       / [get]
func (h *BoardHandler) Page(c echo.Context) error {
	ctl, err := ctxController(c, h.controllers)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	vis := ctl.Resolve(ctx)
	board := ctl.Refresh(ctx)
	now := h.now()
	csrfField := middleware.CSRFField(c)
	q := c.QueryParams()

	page := view.Page{
		Visibility:   vis,
		Board:        view.BoardData{Board: board, CSRF: csrfField},
		BoardMessage: view.NewMessage(ctl.Message(ctx, domain.SurfaceBoard), now),
		ModalOpen:    vis.LoginPanel && q.Get(queryLogin) == loginOpen,
		Signup:       view.SignupForm{Activity: q.Get(queryActivity), Email: q.Get(queryEmail)},
		CSRF:         csrfField,
	}
	if page.ModalOpen {
		page.LoginMessage = view.NewMessage(ctl.Message(ctx, domain.SurfaceLogin), now)
		page.Login = view.LoginForm{Username: q.Get(queryUsername)}
	}

	noStore(c)
	return c.Render(http.StatusOK, view.PageTemplate, page)
}

// Board renders only the activity list for partial reloads.
//
// @Summary      Activity list fragment
// @Tags         board
// @Produce      html
// @Success      200
// @Router       /board [get]
func (h *BoardHandler) Board(c echo.Context) error {
	ctl, err := ctxController(c, h.controllers)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	ctl.Resolve(ctx)
	board := ctl.Refresh(ctx)

	noStore(c)
	return c.Render(http.StatusOK, view.BoardTemplate, view.BoardData{
		Board: board,
		CSRF:  middleware.CSRFField(c),
	})
}

// noStore keeps per-browser pages out of shared caches.
func noStore(c echo.Context) {
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
}
