package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vinodhini/portal/internal/core/access"
	"github.com/vinodhini/portal/internal/core/domain"
)

// NavigationHandler serves the shell around every authenticated surface:
// the role's menu and the dashboard statistics.
type NavigationHandler struct{}

func NewNavigationHandler() *NavigationHandler {
	return &NavigationHandler{}
}

type navigationResponse struct {
	User   domain.Identity  `json:"user"`
	Items  []access.NavItem `json:"items"`
	Unread int              `json:"unread"`
}

// Navigation returns the menu for the current role and, for clients, the
// unread notification count.
//
// @Summary      Navigation menu
// @Tags         shell
// @Produce      json
// @Success      200  {object}  navigationResponse
// @Success      303  "Redirect to /login"
// @Router       /navigation [get]
func (h *NavigationHandler) Navigation(c echo.Context) error {
	ws, id, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	resp := navigationResponse{User: id, Items: access.Navigation(id.Role)}
	if p := ws.Poller(); p != nil {
		resp.Unread = p.Unread()
	}
	return c.JSON(http.StatusOK, resp)
}

type dashboardResponse struct {
	Role  domain.Role           `json:"role"`
	Stats domain.DashboardStats `json:"stats"`
}

// Dashboard returns the backend's statistics for the current user.
//
// @Summary      Dashboard
// @Tags         shell
// @Produce      json
// @Success      200  {object}  dashboardResponse
// @Failure      502  {object}  map[string]string
// @Router       /dashboard [get]
func (h *NavigationHandler) Dashboard(c echo.Context) error {
	ws, id, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	stats, err := ws.Backend.DashboardStats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dashboardResponse{Role: id.Role, Stats: stats})
}
