package workspace

// Default sidebar widths, in the renderer's units.
const (
	DefaultExpandedWidth  = 280
	DefaultCollapsedWidth = 80
)

// Sidebar is the navigation shell's expand/collapse state. It starts
// expanded with hover mode off. In hover mode, pointer enter and leave drive
// expansion; a manual toggle always turns hover mode off.
type Sidebar struct {
	expanded       bool
	hoverMode      bool
	expandedWidth  int
	collapsedWidth int
}

// NewSidebar returns an expanded sidebar with the default widths.
func NewSidebar() *Sidebar {
	return &Sidebar{
		expanded:       true,
		expandedWidth:  DefaultExpandedWidth,
		collapsedWidth: DefaultCollapsedWidth,
	}
}

// SetWidths overrides the expanded and collapsed widths.
func (s *Sidebar) SetWidths(expanded, collapsed int) {
	s.expandedWidth, s.collapsedWidth = expanded, collapsed
}

func (s *Sidebar) Expanded() bool  { return s.expanded }
func (s *Sidebar) HoverMode() bool { return s.hoverMode }

// Toggle flips the expanded state and disables hover mode.
func (s *Sidebar) Toggle() {
	s.expanded = !s.expanded
	s.hoverMode = false
}

// SetHoverMode enables or disables pointer-driven expansion.
func (s *Sidebar) SetHoverMode(on bool) {
	s.hoverMode = on
}

// MouseEnter expands the sidebar in hover mode.
func (s *Sidebar) MouseEnter() {
	if s.hoverMode {
		s.expanded = true
	}
}

// MouseLeave collapses the sidebar in hover mode.
func (s *Sidebar) MouseLeave() {
	if s.hoverMode {
		s.expanded = false
	}
}

// Width is the current width; page content is offset by it.
func (s *Sidebar) Width() int {
	if s.expanded {
		return s.expandedWidth
	}
	return s.collapsedWidth
}

// ShowHoverButton reports whether the hover-mode switch is visible. It is
// only drawn while expanded.
func (s *Sidebar) ShowHoverButton() bool {
	return s.expanded
}

// HoverLabel is the caption of the hover-mode switch.
func (s *Sidebar) HoverLabel() string {
	if s.hoverMode {
		return "Hover Mode: ON"
	}
	return "Hover Mode: OFF"
}
