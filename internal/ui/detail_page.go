package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/credit-eval/cet-console/internal/store"
	"github.com/credit-eval/cet-console/internal/workspace"
)

const (
	tileHeight     = 5
	popoverWidth   = 46
	popoverHeight  = 9
	visibleTabs    = 5
	noteFormWidth  = 64
	noteFormHeight = 14
)

// tabPane is the rendered form of one detail tab.
type tabPane struct {
	root   tview.Primitive
	focus  tview.Primitive
	render func()
}

// detailView renders an open case.
type detailView struct {
	ui *UI
	d  *workspace.CaseDetail

	root     *tview.Flex
	header   *tview.TextView
	tileRow  *tview.Flex
	tiles    []*tview.TextView
	tabBar   *tview.TextView
	tabPages *tview.Pages
	message  *tview.TextView

	panes    map[workspace.TabID]*tabPane
	layout   workspace.LoadState
	nextTile int
}

func newDetailView(ui *UI, d *workspace.CaseDetail) *detailView {
	v := &detailView{
		ui:       ui,
		d:        d,
		root:     tview.NewFlex().SetDirection(tview.FlexRow),
		header:   tview.NewTextView().SetDynamicColors(true),
		tileRow:  tview.NewFlex(),
		tabBar:   tview.NewTextView().SetDynamicColors(true).SetWrap(false),
		tabPages: tview.NewPages(),
		message:  tview.NewTextView().SetDynamicColors(true).SetTextAlign(tview.AlignCenter),
		panes:    make(map[workspace.TabID]*tabPane),
		layout:   -1,
	}

	for i := 0; i < 6; i++ {
		i := i
		tile := tview.NewTextView().SetDynamicColors(true)
		tile.SetBorder(true)
		tile.SetMouseCapture(func(action tview.MouseAction, event *tcell.EventMouse) (tview.MouseAction, *tcell.EventMouse) {
			if action == tview.MouseLeftClick && d.State() == workspace.StateLoaded {
				v.openPopover(i)
				return tview.MouseConsumed, nil
			}
			return action, event
		})
		v.tiles = append(v.tiles, tile)
		v.tileRow.AddItem(tile, 0, 1, false)
	}

	v.root.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if ui.isDialogActive() || d.State() != workspace.StateLoaded || event.Key() != tcell.KeyRune {
			return event
		}
		switch event.Rune() {
		case '[':
			v.selectTab(d.Tab() - 1)
		case ']':
			v.selectTab(d.Tab() + 1)
		case 's':
			v.save()
		case 'n':
			v.addNote()
		case 'p':
			v.openPopover(v.nextTile)
			v.nextTile = (v.nextTile + 1) % len(v.tiles)
		default:
			return event
		}
		return nil
	})

	v.applyTheme()
	return v
}

func (v *detailView) applyTheme() {
	t := v.ui.theme
	for _, tv := range append([]*tview.TextView{v.header, v.tabBar, v.message}, v.tiles...) {
		tv.SetBackgroundColor(t.Surface)
		tv.SetTextColor(t.TextPrimary)
		tv.SetBorderColor(t.Border)
	}
	v.tabPages.SetBackgroundColor(t.Surface)
	for _, p := range v.panes {
		p.render()
	}
	v.render()
}

// reset drops every tab pane after the case (re)loads.
func (v *detailView) reset() {
	for id := range v.panes {
		v.tabPages.RemovePage(paneName(id))
	}
	v.panes = make(map[workspace.TabID]*tabPane)
	v.nextTile = 0
	v.ui.popover = nil
}

func (v *detailView) setLayout(state workspace.LoadState) {
	if v.layout == state {
		return
	}
	v.layout = state
	v.root.Clear()
	if state != workspace.StateLoaded {
		v.root.AddItem(v.message, 0, 1, false)
		return
	}
	v.root.AddItem(v.header, 2, 0, false).
		AddItem(v.tileRow, tileHeight, 0, false).
		AddItem(v.tabBar, 2, 0, false).
		AddItem(v.tabPages, 0, 1, true)
}

func (v *detailView) render() {
	t, d := v.ui.theme, v.d
	v.setLayout(d.State())

	switch d.State() {
	case workspace.StateLoading:
		v.message.SetText(fmt.Sprintf("\n[%s]Loading case details...[-]", t.TagMuted))
		return
	case workspace.StateFailed:
		v.message.SetText(fmt.Sprintf("\n[%s]%s[-]\n\n[%s]Press Esc to go back to %s[-]",
			t.TagRed, d.ErrorMessage(), t.TagMuted, d.BackPath()))
		return
	}

	title, subtitle := d.Header()
	v.header.SetText(fmt.Sprintf("[%s::b]%s[-::-]   [%s]s: Save   n: Add Note[-]\n[%s]%s[-]",
		t.TagTextPrimary, title, t.TagAccent, t.TagMuted, subtitle))

	for i, tile := range d.Tiles() {
		v.tiles[i].SetTitle(" " + tile.Title + " ")
		v.tiles[i].SetText(fmt.Sprintf("[%s::b]%s[-::-]\n[%s]%s[-]",
			t.toneTag(tile.Tone), tile.Value, t.TagMuted, tile.Subvalue))
	}

	v.tabBar.SetText(v.renderTabs())
	v.showTab(d.Tab())
}

// renderTabs draws a window of the tab strip around the active tab.
func (v *detailView) renderTabs() string {
	labels := workspace.TabLabels()
	active := int(v.d.Tab())
	start := active - visibleTabs/2
	if start > len(labels)-visibleTabs {
		start = len(labels) - visibleTabs
	}
	if start < 0 {
		start = 0
	}
	end := start + visibleTabs
	if end > len(labels) {
		end = len(labels)
	}
	lines := strings.SplitN(renderTabBar(v.ui.theme, labels[start:end], active-start), "\n", 2)
	if start > 0 {
		lines[0] = "‹" + lines[0]
		lines[1] = " " + lines[1]
	}
	if end < len(labels) {
		lines[0] += " ›"
	}
	return strings.Join(lines, "\n")
}

func (v *detailView) selectTab(t workspace.TabID) {
	if v.d.SelectTab(t) {
		v.tabBar.SetText(v.renderTabs())
		v.showTab(t)
	}
}

// showTab switches to the pane of t, building it on first visit.
func (v *detailView) showTab(t workspace.TabID) {
	p, ok := v.panes[t]
	if !ok {
		p = v.newPane(t)
		v.panes[t] = p
		v.tabPages.AddPage(paneName(t), p.root, true, false)
	}
	p.render()
	v.tabPages.SwitchToPage(paneName(t))
	if v.ui.currentRoot == v.ui.layout {
		v.ui.app.SetFocus(p.focus)
	}
}

func paneName(t workspace.TabID) string {
	return fmt.Sprintf("tab-%d", t)
}

func (v *detailView) openPopover(i int) {
	ui := v.ui
	tile := v.tiles[i]
	x, y, w, h := tile.GetRect()
	_, _, sw, sh := ui.layout.GetRect()
	pop, ok := v.d.OpenPopover(i,
		workspace.Rect{X: x, Y: y, W: w, H: h},
		workspace.Size{W: popoverWidth, H: popoverHeight},
		workspace.Size{W: sw, H: sh})
	if !ok {
		return
	}
	tv := ui.newText(pop.Title)
	tv.SetBorderColor(ui.theme.FocusBorder)
	tv.SetText(fmt.Sprintf("[%s]%s[-]", ui.theme.TagTextPrimary, strings.Join(pop.Lines, "\n\n")))
	tv.SetRect(pop.Rect.X, pop.Rect.Y, pop.Rect.W, pop.Rect.H)
	ui.popover = tv
}

func (v *detailView) save() {
	v.ui.showMessage(v.d.Save())
	v.ui.recordAction(v.d.ID(), store.ActionSaved, nil)
}

// addNote shows the header note dialog.
func (v *detailView) addNote() {
	ui := v.ui
	form := tview.NewForm()
	form.AddTextArea("Note", "", 0, 6, 0, nil)
	form.AddButton("Save", func() {
		note := form.GetFormItemByLabel("Note").(*tview.TextArea).GetText()
		ui.popModalRoot()
		ui.showMessage(v.d.SaveNote(note))
		ui.recordAction(v.d.ID(), store.ActionNote, map[string]interface{}{"note": note})
	})
	form.AddButton("Cancel", ui.popModalRoot)
	ui.showForm("Add Note", form, noteFormWidth, noteFormHeight)
}
