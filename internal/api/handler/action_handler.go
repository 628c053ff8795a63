package handler

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/mergington/activity-board/internal/core/domain"
	"github.com/mergington/activity-board/internal/core/ports"
)

// ActionHandler turns form posts into controller commands and redirects back
// to the board, which shows the resulting message.
type ActionHandler struct {
	controllers ports.ControllerFactory
}

func NewActionHandler(controllers ports.ControllerFactory) *ActionHandler {
	return &ActionHandler{controllers: controllers}
}

type loginRequest struct {
	Username string `form:"username" validate:"required,notblank"`
	Password string `form:"password" validate:"required"`
}

type participantRequest struct {
	Activity string `form:"activity" validate:"required,notblank"`
	Email    string `form:"email" validate:"required,email"`
}

// Login authenticates a teacher against the activities API.
//
// @Summary      Login
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Param        username  formData  string  true  "Username"
// @Param        password  formData  string  true  "Password"
// @Success      303
// @Failure      400  {object}  errorResponse
// @Router       /auth/login [post]
func (h *ActionHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindForm(c, &req); err != nil {
		return err
	}
	return h.dispatch(c, domain.Command{
		Kind:     domain.CommandLogin,
		Username: req.Username,
		Password: req.Password,
	}, url.Values{queryUsername: {req.Username}})
}

// Logout ends the teacher session.
//
// @Summary      Logout
// @Tags         auth
// @Success      303
// @Router       /auth/logout [post]
func (h *ActionHandler) Logout(c echo.Context) error {
	return h.dispatch(c, domain.Command{Kind: domain.CommandLogout}, nil)
}

// Signup registers a student for an activity.
//
// @Summary      Sign up for an activity
// @Tags         activities
// @Accept       x-www-form-urlencoded
// @Param        activity  formData  string  true  "Activity name"
// @Param        email     formData  string  true  "Student email"
// @Success      303
// @Failure      400  {object}  errorResponse
// @Router       /activities/signup [post]
func (h *ActionHandler) Signup(c echo.Context) error {
	var req participantRequest
	if err := bindForm(c, &req); err != nil {
		return err
	}
	return h.dispatch(c, domain.Command{
		Kind:     domain.CommandSignup,
		Activity: req.Activity,
		Email:    req.Email,
	}, url.Values{queryActivity: {req.Activity}, queryEmail: {req.Email}})
}

// Unregister removes a participant from an activity.
//
// @Summary      Unregister a participant
// @Tags         activities
// @Accept       x-www-form-urlencoded
// @Param        activity  formData  string  true  "Activity name"
// @Param        email     formData  string  true  "Participant email"
// @Success      303
// @Failure      400  {object}  errorResponse
// @Router       /activities/unregister [post]
func (h *ActionHandler) Unregister(c echo.Context) error {
	var req participantRequest
	if err := bindForm(c, &req); err != nil {
		return err
	}
	return h.dispatch(c, domain.Command{
		Kind:     domain.CommandUnregister,
		Activity: req.Activity,
		Email:    req.Email,
	}, nil)
}

// dispatch resolves the session, runs cmd and redirects to the board. Form
// values in keep survive the redirect when the command asks not to reset its
// form.
func (h *ActionHandler) dispatch(c echo.Context, cmd domain.Command, keep url.Values) error {
	ctl, err := ctxController(c, h.controllers)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	ctl.Resolve(ctx)
	out := ctl.Dispatch(ctx, cmd)
	return c.Redirect(http.StatusSeeOther, boardLocation(out, keep))
}

func boardLocation(out domain.Outcome, keep url.Values) string {
	q := url.Values{}
	if out.ModalOpen {
		q.Set(queryLogin, loginOpen)
	}
	if !out.ResetForm {
		for k, v := range keep {
			q[k] = v
		}
	}
	if len(q) == 0 {
		return "/"
	}
	return "/?" + q.Encode()
}

type errorResponse struct {
	Error string `json:"error"`
}

func bindForm(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
