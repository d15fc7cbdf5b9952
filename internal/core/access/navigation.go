package access

import (
	"fmt"

	"github.com/vinodhini/portal/internal/core/domain"
)

// NavItem is one entry of the sidebar menu.
type NavItem struct {
	Label  string `json:"label"`
	Target string `json:"target"`
	Icon   string `json:"icon"`
}

var navByRole = map[domain.Role][]NavItem{
	domain.RoleAdmin: {
		{Label: "Dashboard", Target: "/dashboard", Icon: "layout-dashboard"},
		{Label: "Employees", Target: "/employees", Icon: "users"},
		{Label: "Clients", Target: "/clients", Icon: "building-2"},
		{Label: "Services", Target: "/services", Icon: "briefcase"},
		{Label: "Projects", Target: "/projects", Icon: "folder-kanban"},
		{Label: "Service Requests", Target: "/service-requests", Icon: "file-text"},
		{Label: "Messages", Target: "/messages", Icon: "message-square"},
		{Label: "Users", Target: "/users", Icon: "settings"},
		{Label: "Profile", Target: "/profile", Icon: "user-circle"},
	},
	domain.RoleEmployee: {
		{Label: "Dashboard", Target: "/dashboard", Icon: "layout-dashboard"},
		{Label: "My Projects", Target: "/projects", Icon: "folder-kanban"},
		{Label: "Messages", Target: "/messages", Icon: "message-square"},
		{Label: "Profile", Target: "/profile", Icon: "user-circle"},
	},
	domain.RoleClient: {
		{Label: "Dashboard", Target: "/dashboard", Icon: "layout-dashboard"},
		{Label: "My Projects", Target: "/projects", Icon: "folder-kanban"},
		{Label: "Request Service", Target: "/request-service", Icon: "clipboard-list"},
		{Label: "Messages", Target: "/messages", Icon: "message-square"},
		{Label: "Profile", Target: "/profile", Icon: "user-circle"},
	},
}

// The table must cover every role, and every entry must pass the gate for
// the role it is listed under. A gap fails the package at load time.
func init() {
	if err := checkNavigation(); err != nil {
		panic(err)
	}
}

func checkNavigation() error {
	for _, role := range domain.Roles() {
		items := navByRole[role]
		if len(items) == 0 {
			return fmt.Errorf("access: no navigation for role %q", role)
		}
		for _, it := range items {
			if !Reachable(role, it.Target) {
				return fmt.Errorf("access: %q lists %s which its gate refuses", role, it.Target)
			}
		}
	}
	return nil
}

// Navigation returns the ordered menu for role. Unknown roles get nil.
func Navigation(role domain.Role) []NavItem {
	items := navByRole[role]
	out := make([]NavItem, len(items))
	copy(out, items)
	return out
}
