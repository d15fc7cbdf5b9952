// Package access decides who may see which portal surface. Everything here
// is a pure function of the current identity and the route table, so the
// HTTP middleware and the tests share one source of truth.
package access

import (
	"github.com/vinodhini/portal/internal/core/domain"
)

// Action is what the caller must do with a navigation request.
type Action int

const (
	Render Action = iota
	Redirect
	NotFound
)

func (a Action) String() string {
	switch a {
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	case NotFound:
		return "not_found"
	}
	return "unknown"
}

// Decision is the gate's verdict. Target is set only for Redirect.
type Decision struct {
	Action Action
	Target string
}

// RenderDecision and RedirectTo build decisions.
func RenderDecision() Decision { return Decision{Action: Render} }

func RedirectTo(target string) Decision { return Decision{Action: Redirect, Target: target} }

const (
	LoginPath          = "/login"
	ForgotPasswordPath = "/forgot-password"
	DashboardPath      = "/dashboard"
)

// defaultLanding is the single fallback surface per role.
var defaultLanding = map[domain.Role]string{
	domain.RoleAdmin:    DashboardPath,
	domain.RoleEmployee: DashboardPath,
	domain.RoleClient:   DashboardPath,
}

// DefaultLanding returns the surface a role is sent to when it is refused.
func DefaultLanding(role domain.Role) string {
	if target, ok := defaultLanding[role]; ok {
		return target
	}
	return DashboardPath
}

// Evaluate decides whether id may view a surface guarded by allowed.
// A nil identity is always sent to login, whatever allowed says. An empty
// allowed set admits any authenticated role.
func Evaluate(id *domain.Identity, allowed []domain.Role) Decision {
	if id == nil || !id.Role.Valid() {
		return RedirectTo(LoginPath)
	}
	if len(allowed) == 0 {
		return RenderDecision()
	}
	for _, r := range allowed {
		if r == id.Role {
			return RenderDecision()
		}
	}
	return RedirectTo(DefaultLanding(id.Role))
}

// EvaluateGuest guards the login and forgot-password surfaces: an
// authenticated identity is sent to its landing surface instead.
func EvaluateGuest(id *domain.Identity) Decision {
	if id != nil && id.Role.Valid() {
		return RedirectTo(DefaultLanding(id.Role))
	}
	return RenderDecision()
}
