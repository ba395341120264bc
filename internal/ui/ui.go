package ui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/credit-eval/cet-console/internal/client"
	"github.com/credit-eval/cet-console/internal/model"
	"github.com/credit-eval/cet-console/internal/store"
	"github.com/credit-eval/cet-console/internal/workspace"
)

// Terminal widths of the sidebar, in cells.
const (
	sidebarExpandedCells  = 26
	sidebarCollapsedCells = 6
)

// CaseSource fetches cases for the console.
type CaseSource interface {
	ListCases(ctx context.Context) ([]model.Case, error)
	GetCase(ctx context.Context, id string) (model.Case, error)
}

// AuditSink records console actions when the console runs next to the store.
type AuditSink interface {
	LogCaseAction(ctx context.Context, caseID, action, actor string, details map[string]interface{}) error
	LogAnalysisRun(ctx context.Context, caseID, actor, kind, model string, score int) error
}

// Options configure the console.
type Options struct {
	Theme     string
	Workspace workspace.Options
	Audit     AuditSink
	Actor     string
}

// UI represents the terminal user interface
type UI struct {
	app    *tview.Application
	source CaseSource
	audit  AuditSink
	actor  string
	logger *log.Logger
	wsOpts workspace.Options

	shell  *workspace.Shell
	list   *workspace.CaseList
	detail *workspace.CaseDetail

	// Layout components
	layout      *tview.Flex
	body        *tview.Flex
	sidebarPane *tview.Flex
	toggleBtn   *tview.Button
	menu        *tview.List
	hoverBtn    *tview.Button
	topBar      *tview.TextView
	pages       *tview.Pages
	statusBar   *tview.TextView

	cet     *cetView
	view    *detailView
	popover *tview.TextView

	// Theme state
	theme        Theme
	themeName    string
	hasTrueColor bool

	// Modal stack for nested dialogs
	modalStack  []tview.Primitive
	currentRoot tview.Primitive
	lastFocus   tview.Primitive

	pointerInSidebar bool
	running          atomic.Bool
	stopped          atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewUI creates the console over source. The sidebar state is created here
// and handed to the navigation shell.
func NewUI(ctx context.Context, source CaseSource, opts Options, logger *log.Logger) *UI {
	if logger == nil {
		logger = log.New(log.Writer(), "[UI] ", log.LstdFlags)
	}
	uiCtx, cancel := context.WithCancel(ctx)

	sidebar := workspace.NewSidebar()
	sidebar.SetWidths(sidebarExpandedCells, sidebarCollapsedCells)

	actor := opts.Actor
	if actor == "" {
		actor = "Admin User"
	}
	ui := &UI{
		app:          tview.NewApplication(),
		source:       source,
		audit:        opts.Audit,
		actor:        actor,
		logger:       logger,
		wsOpts:       opts.Workspace,
		shell:        workspace.NewShell(sidebar),
		hasTrueColor: detectTrueColor(),
		ctx:          uiCtx,
		cancel:       cancel,
	}
	ui.theme, ui.themeName = ThemeByName(opts.Theme)

	ui.setupLayout()
	ui.setupKeybindings()
	ui.applyTheme()
	return ui
}

// Start runs the TUI application until ctx is cancelled or the user quits.
func (ui *UI) Start(ctx context.Context) error {
	ui.logger.Println("Starting TUI application")

	go func() {
		select {
		case <-ctx.Done():
			ui.logger.Println("External context cancelled, stopping TUI")
		case <-ui.ctx.Done():
		}
		ui.cancel()
		ui.app.Stop()
	}()

	ui.startRedrawHeartbeat()

	ui.running.Store(true)
	ui.app.QueueUpdateDraw(func() { ui.navigate("/cet") })
	err := ui.app.EnableMouse(true).Run()
	ui.running.Store(false)
	ui.stopped.Store(true)
	ui.closeDetail()
	if err != nil {
		return fmt.Errorf("failed to run console: %w", err)
	}
	return nil
}

// Stop stops the TUI application
func (ui *UI) Stop() {
	ui.logger.Println("Stopping TUI application")
	ui.cancel()
	ui.app.Stop()
}

func (ui *UI) setupLayout() {
	ui.toggleBtn = tview.NewButton("«").SetSelectedFunc(func() {
		ui.shell.Sidebar.Toggle()
		ui.renderSidebar()
	})

	ui.menu = tview.NewList().ShowSecondaryText(false)
	ui.menu.SetSelectedFunc(func(index int, _, _ string, _ rune) {
		items := workspace.NavItems()
		if index >= 0 && index < len(items) {
			ui.navigate(items[index].Path)
		}
	})

	ui.hoverBtn = tview.NewButton("").SetSelectedFunc(func() {
		ui.shell.Sidebar.SetHoverMode(!ui.shell.Sidebar.HoverMode())
		ui.renderSidebar()
	})

	ui.sidebarPane = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(ui.toggleBtn, 1, 0, false).
		AddItem(ui.menu, 0, 1, false).
		AddItem(ui.hoverBtn, 1, 0, false)
	ui.sidebarPane.SetBorder(true)

	ui.topBar = tview.NewTextView().SetDynamicColors(true)
	ui.pages = tview.NewPages()

	main := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(ui.topBar, 1, 0, false).
		AddItem(ui.pages, 0, 1, true)

	ui.body = tview.NewFlex().
		AddItem(ui.sidebarPane, ui.shell.Sidebar.Width(), 0, false).
		AddItem(main, 0, 1, true)

	ui.statusBar = tview.NewTextView().SetDynamicColors(true)

	ui.layout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(ui.body, 0, 1, true).
		AddItem(ui.statusBar, 1, 0, false)

	ui.cet = newCETView(ui)
	ui.currentRoot = ui.layout
	ui.app.SetAfterDrawFunc(func(screen tcell.Screen) {
		if ui.popover != nil && ui.currentRoot == ui.layout {
			ui.popover.Draw(screen)
		}
	})
	ui.app.SetRoot(ui.layout, true)
	ui.renderSidebar()
	ui.renderTopBar()
}

func (ui *UI) setupKeybindings() {
	ui.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if ui.isDialogActive() {
			return event
		}
		switch event.Key() {
		case tcell.KeyEsc:
			if ui.view != nil {
				if _, open := ui.detail.Popover(); open {
					ui.closePopover()
					return nil
				}
				ui.navigate("/cet")
				return nil
			}
		case tcell.KeyRune:
			switch event.Rune() {
			case 'q':
				ui.Stop()
				return nil
			case 'b':
				ui.shell.Sidebar.Toggle()
				ui.renderSidebar()
				return nil
			case 'H':
				ui.shell.Sidebar.SetHoverMode(!ui.shell.Sidebar.HoverMode())
				ui.renderSidebar()
				return nil
			case 'm':
				ui.app.SetFocus(ui.menu)
				return nil
			case 't':
				ui.setTheme(nextThemeName(ui.themeName))
				return nil
			}
		}
		return event
	})

	ui.app.SetMouseCapture(func(event *tcell.EventMouse, action tview.MouseAction) (*tcell.EventMouse, tview.MouseAction) {
		x, y := event.Position()
		switch action {
		case tview.MouseMove:
			inside := x < ui.shell.Sidebar.Width()
			if inside != ui.pointerInSidebar {
				ui.pointerInSidebar = inside
				ui.onSidebarPointer(inside)
			}
		case tview.MouseLeftDown:
			if ui.detail != nil && ui.detail.ClickAt(x, y) {
				ui.popover = nil
			}
		}
		return event, action
	})
}

// closePopover dismisses the tile overlay.
func (ui *UI) closePopover() {
	if ui.detail != nil {
		ui.detail.ClosePopover()
	}
	ui.popover = nil
}

// onSidebarPointer forwards pointer enter and leave to the sidebar state.
func (ui *UI) onSidebarPointer(inside bool) {
	before := ui.shell.Sidebar.Expanded()
	if inside {
		ui.shell.Sidebar.MouseEnter()
	} else {
		ui.shell.Sidebar.MouseLeave()
	}
	if before != ui.shell.Sidebar.Expanded() {
		ui.renderSidebar()
	}
}

// renderSidebar redraws the menu for the current sidebar and route state.
func (ui *UI) renderSidebar() {
	sb := ui.shell.Sidebar
	ui.body.ResizeItem(ui.sidebarPane, sb.Width(), 0)

	current := 0
	ui.menu.Clear()
	for i, item := range workspace.NavItems() {
		text := item.Icon
		if sb.Expanded() {
			text = item.Icon + "  " + item.Label
		}
		if ui.shell.IsActive(item) {
			text = fmt.Sprintf("[%s::b]%s[-::-]", ui.theme.TagAccent, text)
			current = i
		}
		ui.menu.AddItem(text, "", 0, nil)
	}
	ui.menu.SetCurrentItem(current)

	if sb.Expanded() {
		ui.toggleBtn.SetLabel("«")
		ui.sidebarPane.SetTitle(" " + ui.shell.Title + " ")
	} else {
		ui.toggleBtn.SetLabel("»")
		ui.sidebarPane.SetTitle("")
	}
	if sb.ShowHoverButton() {
		ui.hoverBtn.SetLabel(sb.HoverLabel())
		ui.sidebarPane.ResizeItem(ui.hoverBtn, 1, 0)
	} else {
		ui.hoverBtn.SetLabel("")
		ui.sidebarPane.ResizeItem(ui.hoverBtn, 0, 0)
	}
}

func (ui *UI) renderTopBar() {
	ui.topBar.SetText(fmt.Sprintf(" [%s]Search...[-]%s[%s::b]%s[-::-] ",
		ui.theme.TagMuted, strings.Repeat(" ", 4), ui.theme.TagTextPrimary, ui.shell.User))
}

// navigate switches the routed page. Leaving a case page closes its
// workspace and cancels whatever it still has running.
func (ui *UI) navigate(path string) {
	route := ui.shell.Navigate(path)
	ui.logger.Printf("Navigate %s (page=%d)", route.Path, route.Page)

	if ui.detail != nil && (route.Page != workspace.PageCase || route.CaseID != ui.detail.ID()) {
		ui.closeDetail()
	}

	switch route.Page {
	case workspace.PageCET:
		ui.list = workspace.NewCaseList()
		ui.pages.AddPage(pageMain, ui.cet.root, true, true)
		ui.loadCases()
		ui.app.SetFocus(ui.cet.table)
	case workspace.PageCase:
		if ui.detail == nil {
			ui.openDetail(route.CaseID)
		}
	default:
		title := workspace.PlaceholderTitle(route.Page)
		if title == "" {
			title = "Page not found"
		}
		ph := tview.NewTextView().SetDynamicColors(true).SetTextAlign(tview.AlignCenter)
		ph.SetBorder(true)
		ph.SetTitle(" " + title + " ")
		ph.SetText(fmt.Sprintf("\n[%s::b]%s[-::-]", ui.theme.TagAccent, title))
		ph.SetBackgroundColor(ui.theme.Surface)
		ui.pages.AddPage(pageMain, ph, true, true)
	}
	ui.renderSidebar()
	ui.setStatusDirect("%s", route.Path)
}

// goFetch runs fn in the background while the application is running and
// inline otherwise.
func (ui *UI) goFetch(fn func()) {
	if ui.running.Load() {
		go fn()
		return
	}
	fn()
}

// queueUpdateDraw applies fn on the UI goroutine. Before Start it runs fn
// inline; once the application has stopped fn is dropped.
func (ui *UI) queueUpdateDraw(fn func()) {
	switch {
	case ui.running.Load():
		ui.app.QueueUpdateDraw(fn)
	case ui.stopped.Load():
	default:
		fn()
	}
}

// loadCases issues one fetch for the case list. A newer fetch or a new list
// supersedes it.
func (ui *UI) loadCases() {
	list := ui.list
	tok := list.BeginLoad()
	ui.cet.render()

	ui.goFetch(func() {
		cases, err := ui.source.ListCases(ui.ctx)
		if err != nil {
			ui.logger.Printf("Failed to load cases: %v", err)
		}
		ui.queueUpdateDraw(func() {
			if list.Apply(tok, cases, err) && ui.list == list {
				ui.cet.render()
			}
		})
	})
}

func (ui *UI) openDetail(id string) {
	d := workspace.NewCaseDetail(id, ui.wsOpts)
	ui.detail = d
	ui.view = newDetailView(ui, d)
	ui.pages.AddPage(pageMain, ui.view.root, true, true)
	ui.loadDetail()
}

// loadDetail fetches the open case. The fetch is bound to the view's
// lifetime and dropped if the view closes first.
func (ui *UI) loadDetail() {
	d := ui.detail
	tok := d.BeginLoad()
	ui.view.render()

	ui.goFetch(func() {
		c, err := ui.source.GetCase(d.Context(), d.ID())
		ui.queueUpdateDraw(func() {
			var applied bool
			switch {
			case errors.Is(err, client.ErrNotFound), errors.Is(err, store.ErrNotFound):
				applied = d.Apply(tok, nil, nil)
			case err != nil:
				ui.logger.Printf("Failed to load case %s: %v", d.ID(), err)
				applied = d.Apply(tok, nil, err)
			default:
				applied = d.Apply(tok, &c, nil)
			}
			if !applied || ui.detail != d {
				return
			}
			ui.view.reset()
			ui.view.render()
			if err == nil {
				id := d.ID()
				ui.goFetch(func() { ui.recordAction(id, store.ActionViewed, nil) })
			}
		})
	})
}

func (ui *UI) closeDetail() {
	if ui.detail == nil {
		return
	}
	ui.detail.Close()
	ui.popover = nil
	ui.detail = nil
	ui.view = nil
}

// recordAction writes an audit entry when an audit sink is configured.
func (ui *UI) recordAction(caseID, action string, details map[string]interface{}) {
	if ui.audit == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ui.ctx, 2*time.Second)
	defer cancel()
	if err := ui.audit.LogCaseAction(ctx, caseID, action, ui.actor, details); err != nil {
		ui.logger.Printf("Failed to record %s for case %s: %v", action, caseID, err)
	}
}

func (ui *UI) recordAnalysis(caseID string, res workspace.CreditResult) {
	if ui.audit == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ui.ctx, 2*time.Second)
	defer cancel()
	if err := ui.audit.LogAnalysisRun(ctx, caseID, ui.actor, "credit++", res.Model, res.Score); err != nil {
		ui.logger.Printf("Failed to record analysis for case %s: %v", caseID, err)
	}
}

var (
	_ AuditSink  = (*store.Store)(nil)
	_ CaseSource = (*store.Store)(nil)
	_ CaseSource = (*client.Client)(nil)
)

// isDialogActive returns true when a dialog or an editable field is focused
// so global shortcuts are bypassed.
func (ui *UI) isDialogActive() bool {
	if len(ui.modalStack) > 0 {
		return true
	}
	switch ui.app.GetFocus().(type) {
	case *tview.Form, *tview.Modal, *tview.InputField, *tview.TextArea, *tview.DropDown:
		return true
	}
	return false
}

func (ui *UI) startRedrawHeartbeat() {
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ui.ctx.Done():
				return
			case <-ticker.C:
				if ui.running.Load() {
					ui.app.QueueUpdate(func() {})
				}
			}
		}
	}()
}

// setStatusDirect updates the status bar. Call it from the UI goroutine only.
func (ui *UI) setStatusDirect(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	ui.statusBar.SetText(fmt.Sprintf("[%s]%s[-] [%s]|[-] %s [%s]|[-] %s",
		ui.theme.TagMuted, time.Now().Format("15:04:05"),
		ui.theme.TagTextPrimary, message,
		ui.theme.TagMuted, ui.shortcutHints()))
}

func (ui *UI) shortcutHints() string {
	hints := "q:quit b:sidebar H:hover m:menu t:theme"
	if ui.view != nil {
		hints += " [/]:tabs p:details s:save n:note Esc:back"
	} else if ui.shell.Route().Page == workspace.PageCET {
		hints += " ←/→:bucket Enter:open r:retry"
	}
	return hints
}

// pushModalRoot mounts p as the application root, remembering the previous
// root so nested dialogs unwind in order.
func (ui *UI) pushModalRoot(p tview.Primitive) {
	if len(ui.modalStack) == 0 {
		ui.lastFocus = ui.app.GetFocus()
	}
	ui.modalStack = append(ui.modalStack, ui.currentRoot)
	ui.currentRoot = p
	ui.app.SetRoot(p, true)
	ui.app.SetFocus(p)
}

// popModalRoot restores the previous root.
func (ui *UI) popModalRoot() {
	if len(ui.modalStack) == 0 {
		return
	}
	last := len(ui.modalStack) - 1
	prev := ui.modalStack[last]
	ui.modalStack = ui.modalStack[:last]
	ui.currentRoot = prev
	ui.app.SetRoot(prev, true)
	if prev == ui.layout && ui.lastFocus != nil {
		ui.app.SetFocus(ui.lastFocus)
	}
}

// showMessage shows an acknowledgement dialog.
func (ui *UI) showMessage(text string) {
	modal := tview.NewModal().
		SetText(text).
		AddButtons([]string{"OK"}).
		SetDoneFunc(func(int, string) { ui.popModalRoot() })
	ui.applyModalTheme(modal)
	ui.pushModalRoot(modal)
}

// showChoice shows a dialog with buttons; onDone receives the pressed label
// after the dialog closes.
func (ui *UI) showChoice(text string, buttons []string, onDone func(label string)) {
	modal := tview.NewModal().
		SetText(text).
		AddButtons(buttons).
		SetDoneFunc(func(_ int, label string) {
			ui.popModalRoot()
			if onDone != nil {
				onDone(label)
			}
		})
	ui.applyModalTheme(modal)
	ui.pushModalRoot(modal)
}

// showForm mounts form centred over the layout. Esc cancels.
func (ui *UI) showForm(title string, form *tview.Form, width, height int) {
	form.SetBorder(true)
	form.SetTitle(" " + title + " ")
	form.SetCancelFunc(ui.popModalRoot)
	ui.applyFormTheme(form)
	ui.pushModalRoot(center(form, width, height))
	ui.app.SetFocus(form)
}

func center(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 0, true).
			AddItem(nil, 0, 1, false), width, 0, true).
		AddItem(nil, 0, 1, false)
}

func (ui *UI) applyModalTheme(modal *tview.Modal) {
	modal.SetBackgroundColor(ui.theme.Surface)
	modal.SetTextColor(ui.theme.TextPrimary)
	modal.SetBorderColor(ui.theme.FocusBorder)
	modal.SetButtonBackgroundColor(ui.theme.SelectionBg)
	modal.SetButtonTextColor(ui.theme.SelectionFg)
}

func (ui *UI) applyFormTheme(form *tview.Form) {
	form.SetBackgroundColor(ui.theme.Surface)
	form.SetFieldBackgroundColor(ui.theme.SelectionBg)
	form.SetFieldTextColor(ui.theme.TextPrimary)
	form.SetLabelColor(ui.theme.TextPrimary)
	form.SetButtonBackgroundColor(ui.theme.SelectionBg)
	form.SetButtonTextColor(ui.theme.SelectionFg)
	form.SetBorderColor(ui.theme.FocusBorder)
}

func (ui *UI) applyTheme() {
	ui.logger.Printf("Applying theme: %s", ui.themeName)

	ui.sidebarPane.SetBackgroundColor(ui.theme.Surface)
	ui.sidebarPane.SetBorderColor(ui.theme.Border)
	ui.sidebarPane.SetTitleColor(ui.theme.Header)
	ui.menu.SetBackgroundColor(ui.theme.Surface)
	ui.menu.SetMainTextColor(ui.theme.TextPrimary)
	ui.menu.SetSelectedTextColor(ui.theme.SelectionFg)
	ui.menu.SetSelectedBackgroundColor(ui.theme.SelectionBg)
	for _, b := range []*tview.Button{ui.toggleBtn, ui.hoverBtn} {
		b.SetBackgroundColor(ui.theme.SelectionBg)
		b.SetLabelColor(ui.theme.SelectionFg)
	}

	ui.topBar.SetBackgroundColor(ui.theme.Surface)
	ui.statusBar.SetBackgroundColor(ui.theme.Surface)
	ui.statusBar.SetTextColor(ui.theme.TextPrimary)

	ui.cet.applyTheme()
	if ui.view != nil {
		ui.view.applyTheme()
	}
	ui.renderSidebar()
	ui.renderTopBar()
}

// setTheme applies a named theme
func (ui *UI) setTheme(name string) {
	ui.theme, ui.themeName = ThemeByName(name)
	ui.applyTheme()
	ui.setStatusDirect("[%s]Theme: %s[-]", ui.theme.TagAccent, ui.themeName)
}

// renderTabBar draws browser-style framed tabs. The active tab is bold with
// a gap in the underline beneath it.
func renderTabBar(theme Theme, names []string, active int) string {
	if active < 0 || active >= len(names) {
		active = 0
	}
	var top, underline strings.Builder
	for i, name := range names {
		var piece string
		if i == active {
			piece = fmt.Sprintf(" ╭─ %s ─╮ ", name)
			top.WriteString("[::b]" + piece + "[::-]")
			underline.WriteString(strings.Repeat(" ", len([]rune(piece))))
		} else {
			piece = fmt.Sprintf(" ┌ %s ┐ ", name)
			top.WriteString(fmt.Sprintf("[%s]%s[-]", theme.TagMuted, piece))
			underline.WriteString(strings.Repeat("─", len([]rune(piece))))
		}
	}
	return top.String() + "\n" + underline.String()
}

const pageMain = "main"

// setTableHeader writes a bold header row.
func (ui *UI) setTableHeader(table *tview.Table, headers ...string) {
	for col, h := range headers {
		table.SetCell(0, col, tview.NewTableCell(h).
			SetTextColor(ui.theme.TableHeader).
			SetBackgroundColor(ui.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold).
			SetSelectable(false))
	}
}

func (ui *UI) newTable(title string) *tview.Table {
	table := tview.NewTable().SetSelectable(true, false).SetFixed(1, 0)
	table.SetBorder(true)
	table.SetTitle(" " + title + " ")
	table.SetTitleAlign(tview.AlignLeft)
	table.SetBackgroundColor(ui.theme.Surface)
	table.SetBorderColor(ui.theme.Border)
	table.SetSelectedStyle(tcell.StyleDefault.Background(ui.theme.SelectionBg).Foreground(ui.theme.SelectionFg))
	return table
}

func (ui *UI) newText(title string) *tview.TextView {
	tv := tview.NewTextView().SetDynamicColors(true).SetWordWrap(true)
	tv.SetScrollable(true)
	if title != "" {
		tv.SetBorder(true)
		tv.SetTitle(" " + title + " ")
		tv.SetTitleAlign(tview.AlignLeft)
	}
	tv.SetBackgroundColor(ui.theme.Surface)
	tv.SetTextColor(ui.theme.TextPrimary)
	tv.SetBorderColor(ui.theme.Border)
	return tv
}

func cell(text string, color tcell.Color) *tview.TableCell {
	return tview.NewTableCell(text).SetTextColor(color)
}

// selectedID maps the selected table row onto a collection id via ids.
func selectedID(table *tview.Table, ids []int) (int, bool) {
	row, _ := table.GetSelection()
	if row < 1 || row > len(ids) {
		return 0, false
	}
	return ids[row-1], true
}
