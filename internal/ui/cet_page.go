package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/credit-eval/cet-console/internal/model"
	"github.com/credit-eval/cet-console/internal/workspace"
)

// cetView renders the case list page.
type cetView struct {
	ui      *UI
	root    *tview.Flex
	heading *tview.TextView
	tabBar  *tview.TextView
	table   *tview.Table
	message *tview.TextView
	ids     []string
}

func newCETView(ui *UI) *cetView {
	v := &cetView{ui: ui}

	v.heading = tview.NewTextView().SetDynamicColors(true)
	v.tabBar = tview.NewTextView().SetDynamicColors(true)
	v.table = ui.newTable("Cases")
	v.message = tview.NewTextView().SetDynamicColors(true).SetTextAlign(tview.AlignCenter)

	v.table.SetSelectedFunc(func(row, _ int) {
		if row >= 1 && row <= len(v.ids) && ui.list != nil {
			ui.navigate(ui.list.Open(v.ids[row-1]))
		}
	})
	v.table.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if ui.list == nil {
			return event
		}
		switch event.Key() {
		case tcell.KeyLeft:
			v.selectTab(ui.list.Tab() - 1)
			return nil
		case tcell.KeyRight:
			v.selectTab(ui.list.Tab() + 1)
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case '1', '2', '3':
				v.selectTab(int(event.Rune() - '1'))
				return nil
			case 'r':
				if ui.list.State() != workspace.StateLoading {
					ui.loadCases()
				}
				return nil
			}
		}
		return event
	})

	v.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(v.heading, 2, 0, false).
		AddItem(v.tabBar, 2, 0, false).
		AddItem(v.table, 0, 1, true).
		AddItem(v.message, 1, 0, false)
	v.applyTheme()
	return v
}

func (v *cetView) selectTab(i int) {
	if v.ui.list.SelectTab(i) {
		v.render()
	}
}

func (v *cetView) applyTheme() {
	t := v.ui.theme
	for _, tv := range []*tview.TextView{v.heading, v.tabBar, v.message} {
		tv.SetBackgroundColor(t.Surface)
		tv.SetTextColor(t.TextPrimary)
	}
	v.table.SetBackgroundColor(t.Surface)
	v.table.SetBorderColor(t.Border)
	v.table.SetSelectedStyle(tcell.StyleDefault.Background(t.SelectionBg).Foreground(t.SelectionFg))
	v.render()
}

// render redraws the page from the current list state.
func (v *cetView) render() {
	ui, t := v.ui, v.ui.theme
	v.heading.SetText(fmt.Sprintf("[%s::b]Credit Evaluation Tool[-::-]\n[%s]Manage and evaluate credit applications[-]",
		t.TagTextPrimary, t.TagMuted))

	v.table.Clear()
	v.ids = v.ids[:0]
	list := ui.list
	if list == nil {
		v.tabBar.SetText("")
		v.message.SetText("")
		return
	}

	labels := list.TabLabels()
	for i, s := range model.Statuses() {
		labels[i] = fmt.Sprintf("%s (%d)", labels[i], list.Count(s))
	}
	v.tabBar.SetText(renderTabBar(t, labels, list.Tab()))

	switch list.State() {
	case workspace.StateLoading:
		v.message.SetText(fmt.Sprintf("[%s]Loading cases...[-]", t.TagMuted))
		return
	case workspace.StateFailed:
		v.message.SetText(fmt.Sprintf("[%s]%s[-]  [%s]press r to retry[-]", t.TagRed, list.ErrorMessage(), t.TagMuted))
		return
	}

	cards := list.Cards()
	if len(cards) == 0 {
		v.message.SetText(fmt.Sprintf("[%s]%s[-]", t.TagMuted, list.EmptyMessage()))
		return
	}
	v.message.SetText("")

	ui.setTableHeader(v.table, "Case ID", "Customer", "Program Type", "Loan Amount", "Assigned")
	for i, c := range cards {
		row := i + 1
		v.table.SetCell(row, 0, cell(c.ID, t.Accent))
		v.table.SetCell(row, 1, cell(c.CustomerName, t.TableRow))
		v.table.SetCell(row, 2, cell(c.ProgramType, t.TableRowMuted))
		v.table.SetCell(row, 3, cell(c.LoanAmount, t.TableRow).SetAlign(tview.AlignRight))
		v.table.SetCell(row, 4, cell(c.AssignmentDate, t.TableRowMuted))
		v.ids = append(v.ids, c.ID)
	}
	v.table.Select(1, 0)
}
