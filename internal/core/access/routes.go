package access

import (
	"strings"

	"github.com/vinodhini/portal/internal/core/domain"
)

// Route is one top-level portal surface and the roles allowed on it.
// An empty Allowed means any authenticated role.
type Route struct {
	Path      string
	Allowed   []domain.Role
	GuestOnly bool
}

var (
	adminOnly     = []domain.Role{domain.RoleAdmin}
	staff         = []domain.Role{domain.RoleAdmin, domain.RoleEmployee}
	everyone      = []domain.Role{domain.RoleAdmin, domain.RoleEmployee, domain.RoleClient}
	clientOnly    = []domain.Role{domain.RoleClient}
	authenticated []domain.Role
)

var routes = []Route{
	{Path: LoginPath, GuestOnly: true},
	{Path: ForgotPasswordPath, GuestOnly: true},
	{Path: DashboardPath, Allowed: authenticated},
	{Path: "/employees", Allowed: adminOnly},
	{Path: "/clients", Allowed: adminOnly},
	{Path: "/services", Allowed: adminOnly},
	{Path: "/users", Allowed: adminOnly},
	{Path: "/service-requests", Allowed: staff},
	{Path: "/projects", Allowed: everyone},
	{Path: "/messages", Allowed: everyone},
	{Path: "/profile", Allowed: everyone},
	{Path: "/request-service", Allowed: clientOnly},
	{Path: "/notifications", Allowed: clientOnly},
	{Path: "/navigation", Allowed: authenticated},
}

// Routes returns the route table in declaration order.
func Routes() []Route {
	out := make([]Route, len(routes))
	copy(out, routes)
	return out
}

// Lookup finds the route owning path. Sub-paths inherit their top-level
// surface, so "/projects/42/progress" resolves to "/projects".
func Lookup(path string) (Route, bool) {
	for _, r := range routes {
		if path == r.Path || strings.HasPrefix(path, r.Path+"/") {
			return r, true
		}
	}
	return Route{}, false
}

// Resolve runs the gate for a concrete path.
func Resolve(path string, id *domain.Identity) Decision {
	r, ok := Lookup(path)
	if !ok {
		return Decision{Action: NotFound}
	}
	if r.GuestOnly {
		return EvaluateGuest(id)
	}
	return Evaluate(id, r.Allowed)
}

// Reachable reports whether role is admitted to path.
func Reachable(role domain.Role, path string) bool {
	return Resolve(path, &domain.Identity{Role: role}).Action == Render
}
