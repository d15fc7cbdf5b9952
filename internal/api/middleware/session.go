package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/vinodhini/portal/internal/core/domain"
	"github.com/vinodhini/portal/internal/core/service"
)

// Context keys set by Session.
const (
	workspaceKey = "workspace"
	identityKey  = "identity"
)

// WorkspaceProvider resolves a browser session id to its workspace.
type WorkspaceProvider interface {
	Get(ctx context.Context, id string) (*service.Workspace, error)
}

// CookieConfig shapes the browser session cookie.
type CookieConfig struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// Session loads the caller's workspace from the session cookie, issuing a
// fresh cookie when none (or a malformed one) is presented. The identity
// known at request start is stored under "identity".
func Session(workspaces WorkspaceProvider, cookie CookieConfig) echo.MiddlewareFunc {
	if cookie.Name == "" {
		cookie.Name = "portal_sid"
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := ""
			if ck, err := c.Cookie(cookie.Name); err == nil {
				if _, perr := uuid.Parse(ck.Value); perr == nil {
					id = ck.Value
				}
			}
			if id == "" {
				id = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     cookie.Name,
					Value:    id,
					Path:     "/",
					MaxAge:   int(cookie.TTL.Seconds()),
					HttpOnly: true,
					Secure:   cookie.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ws, err := workspaces.Get(c.Request().Context(), id)
			if err != nil {
				return err
			}
			c.Set(workspaceKey, ws)
			c.Set(identityKey, ws.Session.Current())
			return next(c)
		}
	}
}

// WorkspaceFrom returns the workspace loaded by Session, or nil.
func WorkspaceFrom(c echo.Context) *service.Workspace {
	ws, _ := c.Get(workspaceKey).(*service.Workspace)
	return ws
}

// IdentityFrom returns the identity known when the request started, or nil
// when logged out.
func IdentityFrom(c echo.Context) *domain.Identity {
	id, _ := c.Get(identityKey).(*domain.Identity)
	return id
}

// SetIdentity replaces the request's identity snapshot.
func SetIdentity(c echo.Context, id *domain.Identity) {
	c.Set(identityKey, id)
}
