package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vinodhini/portal/internal/core/access"
	"github.com/vinodhini/portal/internal/core/domain"
	"github.com/vinodhini/portal/internal/pkg/metrics"
)

// Gate runs the authorization gate for the request path. Refusals become a
// 303 to the gate's target; paths outside the route table are 404.
func Gate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			decision := access.Resolve(path, IdentityFrom(c))

			surface := "unknown"
			if r, ok := access.Lookup(path); ok {
				surface = r.Path
			}
			metrics.GateDecisionsTotal.WithLabelValues(surface, decision.Action.String()).Inc()

			switch decision.Action {
			case access.Redirect:
				return c.Redirect(http.StatusSeeOther, decision.Target)
			case access.NotFound:
				return echo.ErrNotFound
			}
			return next(c)
		}
	}
}

// RequireRole narrows a surface to some of its roles for one action, such
// as project creation. It answers 403 rather than redirecting because the
// surface itself is reachable.
func RequireRole(roles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := IdentityFrom(c)
			if id == nil {
				return c.Redirect(http.StatusSeeOther, access.LoginPath)
			}
			if _, ok := allowed[id.Role]; !ok {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
