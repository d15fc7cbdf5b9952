package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/vinodhini/portal/internal/api/middleware"
	"github.com/vinodhini/portal/internal/core/domain"
	"github.com/vinodhini/portal/internal/core/ports"
	"github.com/vinodhini/portal/internal/core/service"
)

// ctxWorkspace returns the caller's workspace and live identity. The Gate
// middleware has already admitted the request, so a missing identity here
// means the session was invalidated mid-request.
func ctxWorkspace(c echo.Context) (*service.Workspace, domain.Identity, error) {
	ws := middleware.WorkspaceFrom(c)
	if ws == nil {
		return nil, domain.Identity{}, domain.ErrUnauthenticated
	}
	id := ws.Session.Current()
	if id == nil {
		return nil, domain.Identity{}, domain.ErrUnauthenticated
	}
	return ws, *id, nil
}

// listParams reads the common list query parameters.
func listParams(c echo.Context) ports.ListParams {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("page_size"))
	return ports.ListParams{
		Page:     page,
		PageSize: size,
		Search:   c.QueryParam("search"),
		Status:   c.QueryParam("status"),
		Role:     c.QueryParam("role"),
		ClientID: c.QueryParam("client_id"),
	}
}

// listResponse wraps a page of items.
type listResponse[T any] struct {
	Items      []T         `json:"items"`
	Pagination domain.Page `json:"pagination"`
}

func bindValid(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}
