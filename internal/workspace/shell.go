package workspace

import "strings"

// Page identifies a routed view.
type Page int

const (
	PageNotFound Page = iota
	PageDashboard
	PageCET
	PageCase
	PageEngine
	PageCustomers
	PageSettings
)

// Route is a parsed navigation path.
type Route struct {
	Path   string
	Page   Page
	CaseID string
}

// NavItem is one sidebar entry.
type NavItem struct {
	Path  string
	Label string
	Icon  string
}

var navItems = []NavItem{
	{Path: "/", Label: "Dashboard", Icon: "⌂"},
	{Path: "/cet", Label: "CET", Icon: "≡"},
	{Path: "/enginep", Label: "Engine", Icon: "▤"},
	{Path: "/customers", Label: "Customers", Icon: "☺"},
	{Path: "/settings", Label: "Settings", Icon: "⚙"},
}

// NavItems returns the sidebar entries in display order.
func NavItems() []NavItem {
	out := make([]NavItem, len(navItems))
	copy(out, navItems)
	return out
}

// CasePath is the route of a case's detail page.
func CasePath(id string) string {
	return "/case/" + id
}

// ParseRoute maps a path onto a page. Unknown paths yield PageNotFound.
func ParseRoute(path string) Route {
	p := "/" + strings.Trim(strings.TrimSpace(path), "/")
	r := Route{Path: p}
	switch {
	case p == "/":
		r.Page = PageDashboard
	case p == "/cet":
		r.Page = PageCET
	case p == "/enginep":
		r.Page = PageEngine
	case p == "/customers":
		r.Page = PageCustomers
	case p == "/settings":
		r.Page = PageSettings
	case strings.HasPrefix(p, "/case/"):
		id := strings.TrimPrefix(p, "/case/")
		if id != "" && !strings.Contains(id, "/") {
			r.Page = PageCase
			r.CaseID = id
		}
	}
	return r
}

// PlaceholderTitle is the heading of pages that have no content yet.
func PlaceholderTitle(p Page) string {
	switch p {
	case PageDashboard:
		return "Dashboard"
	case PageEngine:
		return "Engine"
	case PageCustomers:
		return "Customers"
	case PageSettings:
		return "Settings"
	}
	return ""
}

// Shell is the navigation frame around every page. It is constructed
// explicitly and handed to whatever renders the pages.
type Shell struct {
	Sidebar *Sidebar
	Title   string
	User    string

	route Route
}

// NewShell returns a shell on the dashboard route.
func NewShell(sidebar *Sidebar) *Shell {
	if sidebar == nil {
		sidebar = NewSidebar()
	}
	return &Shell{
		Sidebar: sidebar,
		Title:   "Credit System",
		User:    "Admin User",
		route:   ParseRoute("/"),
	}
}

// Navigate switches to path and returns the parsed route.
func (s *Shell) Navigate(path string) Route {
	s.route = ParseRoute(path)
	return s.route
}

// Route returns the current route.
func (s *Shell) Route() Route {
	return s.route
}

// IsActive reports whether item is the current page. Case detail pages
// highlight nothing.
func (s *Shell) IsActive(item NavItem) bool {
	return item.Path == s.route.Path
}
