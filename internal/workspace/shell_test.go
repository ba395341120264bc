package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSidebarDefaults(t *testing.T) {
	s := NewSidebar()
	assert.True(t, s.Expanded())
	assert.False(t, s.HoverMode())
	assert.Equal(t, DefaultExpandedWidth, s.Width())
	assert.True(t, s.ShowHoverButton())
	assert.Equal(t, "Hover Mode: OFF", s.HoverLabel())
}

func TestSidebarHoverMode(t *testing.T) {
	s := NewSidebar()

	// pointer events are ignored until hover mode is on
	s.MouseLeave()
	assert.True(t, s.Expanded())

	s.SetHoverMode(true)
	assert.Equal(t, "Hover Mode: ON", s.HoverLabel())
	s.MouseLeave()
	assert.False(t, s.Expanded())
	assert.Equal(t, DefaultCollapsedWidth, s.Width())
	assert.False(t, s.ShowHoverButton())
	s.MouseEnter()
	assert.True(t, s.Expanded())
}

func TestSidebarToggleDisablesHover(t *testing.T) {
	s := NewSidebar()
	s.SetHoverMode(true)
	s.Toggle()
	assert.False(t, s.Expanded())
	assert.False(t, s.HoverMode())

	s.MouseEnter()
	assert.False(t, s.Expanded())

	s.SetWidths(30, 6)
	assert.Equal(t, 6, s.Width())
	s.Toggle()
	assert.Equal(t, 30, s.Width())
}

func TestParseRoute(t *testing.T) {
	tests := []struct {
		path string
		page Page
		id   string
	}{
		{"/", PageDashboard, ""},
		{"", PageDashboard, ""},
		{"/cet", PageCET, ""},
		{"/cet/", PageCET, ""},
		{"/case/CAS001", PageCase, "CAS001"},
		{"/case/", PageNotFound, ""},
		{"/case/a/b", PageNotFound, ""},
		{"/enginep", PageEngine, ""},
		{"/customers", PageCustomers, ""},
		{"/settings", PageSettings, ""},
		{"/nope", PageNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			r := ParseRoute(tt.path)
			assert.Equal(t, tt.page, r.Page)
			assert.Equal(t, tt.id, r.CaseID)
		})
	}
}

func TestShellNavigation(t *testing.T) {
	sb := NewSidebar()
	sh := NewShell(sb)
	assert.Same(t, sb, sh.Sidebar)
	assert.Equal(t, "Credit System", sh.Title)
	assert.Equal(t, "Admin User", sh.User)
	assert.Equal(t, PageDashboard, sh.Route().Page)

	items := NavItems()
	assert.Len(t, items, 5)
	assert.True(t, sh.IsActive(items[0]))

	sh.Navigate("/cet")
	assert.True(t, sh.IsActive(items[1]))
	assert.False(t, sh.IsActive(items[0]))

	r := sh.Navigate(CasePath("CAS002"))
	assert.Equal(t, "CAS002", r.CaseID)
	for _, it := range items {
		assert.False(t, sh.IsActive(it))
	}

	assert.Equal(t, "Engine", PlaceholderTitle(PageEngine))
	assert.NotNil(t, NewShell(nil).Sidebar)
}
