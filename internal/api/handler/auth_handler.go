package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vinodhini/portal/internal/api/middleware"
	"github.com/vinodhini/portal/internal/core/access"
	"github.com/vinodhini/portal/internal/core/domain"
	"github.com/vinodhini/portal/internal/pkg/metrics"
)

// AuthHandler serves the guest surfaces and the login/logout actions.
type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

type loginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=6,max=128"`
}

type loginResponse struct {
	User       domain.Identity  `json:"user"`
	Redirect   string           `json:"redirect"`
	Navigation []access.NavItem `json:"navigation"`
}

type surfaceResponse struct {
	Surface string   `json:"surface"`
	Fields  []string `json:"fields,omitempty"`
	Message string   `json:"message,omitempty"`
}

// LoginPage describes the login form.
//
// @Summary      Login surface
// @Tags         auth
// @Produce      json
// @Success      200  {object}  surfaceResponse
// @Success      303  "Already authenticated"
// @Router       /login [get]
func (h *AuthHandler) LoginPage(c echo.Context) error {
	return c.JSON(http.StatusOK, surfaceResponse{Surface: "login", Fields: []string{"email", "password"}})
}

// Login validates the form locally, then authenticates against the backend.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	if ws == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "session unavailable")
	}

	var req loginRequest
	if err := bindValid(c, &req); err != nil {
		metrics.LoginsTotal.WithLabelValues("invalid_form").Inc()
		return err
	}

	id, err := ws.Session.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	middleware.SetIdentity(c, id)

	return c.JSON(http.StatusOK, loginResponse{
		User:       *id,
		Redirect:   access.DefaultLanding(id.Role),
		Navigation: access.Navigation(id.Role),
	})
}

// Logout ends the session and sends the browser to login. Logging out twice
// is harmless.
//
// @Summary      Logout
// @Tags         auth
// @Success      303  "Redirect to /login"
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if ws := middleware.WorkspaceFrom(c); ws != nil {
		if err := ws.Session.Logout(c.Request().Context()); err != nil {
			c.Logger().Warnf("logout: %v", err)
		}
	}
	middleware.SetIdentity(c, nil)
	return c.Redirect(http.StatusSeeOther, access.LoginPath)
}

// ForgotPasswordPage describes the password reset form.
//
// @Summary      Forgot password surface
// @Tags         auth
// @Produce      json
// @Success      200  {object}  surfaceResponse
// @Router       /forgot-password [get]
func (h *AuthHandler) ForgotPasswordPage(c echo.Context) error {
	return c.JSON(http.StatusOK, surfaceResponse{Surface: "forgot-password", Fields: []string{"email"}})
}

type forgotPasswordRequest struct {
	Email string `json:"email" form:"email" validate:"required,email"`
}

// ForgotPassword acknowledges a reset request. The backend has no reset
// endpoint, so nothing is sent and the answer does not reveal whether the
// address exists.
//
// @Summary      Request a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      forgotPasswordRequest  true  "Account email"
// @Success      202   {object}  surfaceResponse
// @Failure      422   {object}  map[string]string
// @Router       /forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, surfaceResponse{
		Surface: "forgot-password",
		Message: "If an account exists for that email, your administrator will contact you to reset the password.",
	})
}

// Root sends the browser to its landing surface, or to login.
func (h *AuthHandler) Root(c echo.Context) error {
	if id := middleware.IdentityFrom(c); id != nil {
		return c.Redirect(http.StatusSeeOther, access.DefaultLanding(id.Role))
	}
	return c.Redirect(http.StatusSeeOther, access.LoginPath)
}
