package workspace

// Popover placement constants, in terminal cells.
const (
	PopoverGap    = 1
	PopoverMargin = 1
)

// Rect is a screen rectangle with its origin at the top-left.
type Rect struct {
	X, Y, W, H int
}

func (r Rect) Right() int  { return r.X + r.W }
func (r Rect) Bottom() int { return r.Y + r.H }

// Overlaps reports whether r and o share at least one cell.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Contains reports whether the point lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Size is a width and height.
type Size struct {
	W, H int
}

// Popover is the detail overlay of a summary tile.
type Popover struct {
	Tile  int
	Title string
	Lines []string
	Rect  Rect
}

// PlacePopover positions a box of size next to anchor. It prefers the right
// side of the anchor and flips to the left when that would cross the right
// margin; a side placement is pulled up when it would cross the bottom
// margin. When neither side has room the box goes below the anchor, or above
// it when below does not fit either.
func PlacePopover(anchor Rect, size Size, viewport Size) Rect {
	maxX := viewport.W - PopoverMargin
	maxY := viewport.H - PopoverMargin

	left := anchor.Right() + PopoverGap
	if left+size.W > maxX {
		left = anchor.X - size.W - PopoverGap
	}
	if left >= 0 {
		top := anchor.Y
		if top+size.H > maxY {
			top = maxY - size.H
		}
		return Rect{X: left, Y: clampZero(top), W: size.W, H: size.H}
	}

	left = anchor.X
	if left+size.W > maxX {
		left = maxX - size.W
	}
	top := anchor.Bottom() + PopoverGap
	if top+size.H > maxY {
		top = anchor.Y - size.H - PopoverGap
	}
	return Rect{X: clampZero(left), Y: clampZero(top), W: size.W, H: size.H}
}

func clampZero(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// OpenPopover shows the overlay for tile i, replacing any open one.
func (d *CaseDetail) OpenPopover(i int, anchor Rect, size Size, viewport Size) (Popover, bool) {
	tiles := d.Tiles()
	if i < 0 || i >= len(tiles) {
		return Popover{}, false
	}
	title := tiles[i].Title
	p := &Popover{
		Tile:  i,
		Title: title + " Details",
		Lines: []string{
			"Additional information for " + title + " will appear here.",
			"This data is dynamically updated based on the information entered in the tabs below.",
		},
		Rect: PlacePopover(anchor, size, viewport),
	}
	d.popover = p
	return *p, true
}

// Popover returns the open overlay.
func (d *CaseDetail) Popover() (Popover, bool) {
	if d.popover == nil {
		return Popover{}, false
	}
	return *d.popover, true
}

// ClosePopover dismisses the overlay.
func (d *CaseDetail) ClosePopover() {
	d.popover = nil
}

// ClickAt handles a pointer press. A press outside the open overlay closes
// it and ClickAt returns true.
func (d *CaseDetail) ClickAt(x, y int) bool {
	if d.popover == nil || d.popover.Rect.Contains(x, y) {
		return false
	}
	d.popover = nil
	return true
}
