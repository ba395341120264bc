package ui

import (
	"context"
	"errors"
	"io"
	"log"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credit-eval/cet-console/internal/client"
	"github.com/credit-eval/cet-console/internal/fixtures"
	"github.com/credit-eval/cet-console/internal/model"
	"github.com/credit-eval/cet-console/internal/store"
	"github.com/credit-eval/cet-console/internal/workspace"
)

// fakeSource serves cases from memory.
type fakeSource struct {
	cases   []model.Case
	listErr error
	calls   int
}

func (f *fakeSource) ListCases(ctx context.Context) ([]model.Case, error) {
	f.calls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.cases, nil
}

func (f *fakeSource) GetCase(ctx context.Context, id string) (model.Case, error) {
	for _, c := range f.cases {
		if c.ID == id {
			return c, nil
		}
	}
	return model.Case{}, client.ErrNotFound
}

// leavingSource runs onGet while a case fetch is in flight, standing in for
// a user who navigates away before the response arrives.
type leavingSource struct {
	*fakeSource
	onGet func()
}

func (s *leavingSource) GetCase(ctx context.Context, id string) (model.Case, error) {
	if s.onGet != nil {
		s.onGet()
	}
	return s.fakeSource.GetCase(ctx, id)
}

var fixedNow = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

func newTestUI(t *testing.T, src CaseSource, audit AuditSink) *UI {
	t.Helper()
	opts := Options{
		Theme: "dark",
		Workspace: workspace.Options{
			Now:           func() time.Time { return fixedNow },
			AnalysisDelay: 10 * time.Millisecond,
		},
		Audit: audit,
	}
	ui := NewUI(context.Background(), src, opts, log.New(io.Discard, "[TEST] ", 0))
	t.Cleanup(ui.Stop)
	return ui
}

func newStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.NewStore(filepath.Join(t.TempDir(), "cet.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestNewUIStartsExpandedOnDashboard(t *testing.T) {
	ui := newTestUI(t, &fakeSource{}, nil)

	assert.True(t, ui.shell.Sidebar.Expanded())
	assert.Equal(t, sidebarExpandedCells, ui.shell.Sidebar.Width())
	assert.Equal(t, "dark", ui.themeName)
	assert.Equal(t, len(workspace.NavItems()), ui.menu.GetItemCount())
	assert.Contains(t, ui.topBar.GetText(true), "Admin User")
}

func TestCETPageBucketsCases(t *testing.T) {
	ui := newTestUI(t, &fakeSource{cases: fixtures.MockCases()}, nil)
	ui.navigate("/cet")

	require.Equal(t, workspace.StateLoaded, ui.list.State())
	require.Equal(t, 2, ui.cet.table.GetRowCount())
	assert.Equal(t, "CAS001", ui.cet.table.GetCell(1, 0).Text)
	assert.Contains(t, ui.cet.tabBar.GetText(true), "Assigned (1)")

	ui.cet.selectTab(1)
	assert.Equal(t, "CAS002", ui.cet.table.GetCell(1, 0).Text)

	ui.cet.selectTab(2)
	assert.Equal(t, "CAS003", ui.cet.table.GetCell(1, 0).Text)
}

func TestCETPageEmptyBucket(t *testing.T) {
	cases := fixtures.MockCases()[:1]
	ui := newTestUI(t, &fakeSource{cases: cases}, nil)
	ui.navigate("/cet")
	ui.cet.selectTab(1)

	assert.Equal(t, 0, ui.cet.table.GetRowCount())
	assert.Contains(t, ui.cet.message.GetText(true), "No draft cases found.")
}

func TestCETPageFailureAndRetry(t *testing.T) {
	src := &fakeSource{cases: fixtures.MockCases(), listErr: errors.New("connection refused")}
	ui := newTestUI(t, src, nil)
	ui.navigate("/cet")

	require.Equal(t, workspace.StateFailed, ui.list.State())
	assert.Contains(t, ui.cet.message.GetText(true), "Failed to load cases: connection refused")

	src.listErr = nil
	ui.cet.table.GetInputCapture()(key('r'))

	assert.Equal(t, workspace.StateLoaded, ui.list.State())
	assert.Equal(t, 2, src.calls)
}

func TestSelectingCardOpensCase(t *testing.T) {
	ui := newTestUI(t, &fakeSource{cases: fixtures.MockCases()}, nil)
	ui.navigate("/cet")

	ui.cet.table.Select(1, 0)
	ui.cet.table.InputHandler()(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), func(tview.Primitive) {})

	require.NotNil(t, ui.detail)
	assert.Equal(t, "CAS001", ui.detail.ID())
	assert.Equal(t, workspace.PageCase, ui.shell.Route().Page)
}

func TestCaseDetailRendersTiles(t *testing.T) {
	ui := newTestUI(t, &fakeSource{cases: fixtures.MockCases()}, nil)
	ui.navigate("/case/CAS001")

	require.Equal(t, workspace.StateLoaded, ui.detail.State())
	assert.Contains(t, ui.view.header.GetText(true), "Case CAS001 - John Doe")
	assert.Equal(t, " Credit Score ", ui.view.tiles[2].GetTitle())
	assert.Contains(t, ui.view.tiles[2].GetText(true), "750")
	assert.Contains(t, ui.view.tiles[2].GetText(true), "Excellent")
	assert.Contains(t, ui.view.tiles[5].GetText(true), "5.0%")
	assert.Contains(t, ui.view.tabBar.GetText(true), "╭─ Customers ─╮")
}

func TestMissingCaseShowsNotFound(t *testing.T) {
	ui := newTestUI(t, &fakeSource{cases: fixtures.MockCases()}, nil)
	ui.navigate("/case/CAS999")

	require.Equal(t, workspace.StateFailed, ui.detail.State())
	assert.Contains(t, ui.view.message.GetText(true), "Failed to load case details: Case not found")
	assert.Contains(t, ui.view.message.GetText(true), "/cet")
}

func TestTabStateSurvivesTabSwitches(t *testing.T) {
	ui := newTestUI(t, &fakeSource{cases: fixtures.MockCases()}, nil)
	ui.navigate("/case/CAS001")
	v := ui.view

	customers := v.panes[workspace.TabCustomers]
	require.NotNil(t, customers)
	ui.detail.Customers().AddCustomer()
	customers.render()

	v.selectTab(workspace.TabBanking)
	assert.Contains(t, v.renderTabs(), "╭─ Banking ─╮")
	v.selectTab(workspace.TabCustomers)

	assert.Same(t, customers, v.panes[workspace.TabCustomers])
	assert.Len(t, ui.detail.Customers().Customers(), 2)
}

func TestDetailKeysSwitchTabs(t *testing.T) {
	ui := newTestUI(t, &fakeSource{cases: fixtures.MockCases()}, nil)
	ui.navigate("/case/CAS001")
	capture := ui.view.root.GetInputCapture()

	capture(key(']'))
	assert.Equal(t, workspace.TabDueDiligence, ui.detail.Tab())
	capture(key('['))
	capture(key('['))
	assert.Equal(t, workspace.TabCustomers, ui.detail.Tab())

	for i := 0; i < 12; i++ {
		capture(key(']'))
	}
	assert.Equal(t, workspace.TabReview, ui.detail.Tab())
	assert.Contains(t, ui.view.renderTabs(), "Review")
}

func TestEveryTabRenders(t *testing.T) {
	ui := newTestUI(t, &fakeSource{cases: fixtures.MockCases()}, nil)
	ui.navigate("/case/CAS002")

	for i := range workspace.TabLabels() {
		ui.view.selectTab(workspace.TabID(i))
		require.Contains(t, ui.view.panes, workspace.TabID(i))
	}
	banking := ui.view.panes[workspace.TabBanking].root
	assert.Contains(t, banking.(interface{ GetText(bool) string }).GetText(true), "HDFC Bank")
}

func TestSaveAcknowledgesAndAudits(t *testing.T) {
	st := newStore(t)
	ui := newTestUI(t, &fakeSource{cases: fixtures.MockCases()}, st)
	ui.navigate("/case/CAS001")

	ui.view.save()
	require.Len(t, ui.modalStack, 1)
	ui.popModalRoot()
	assert.Empty(t, ui.modalStack)
	assert.Same(t, ui.layout, ui.currentRoot)

	entries, err := st.GetAuditEntries(context.Background(), "CAS001", 10)
	require.NoError(t, err)
	var actions []string
	for _, e := range entries {
		actions = append(actions, e.Action)
	}
	assert.Contains(t, actions, store.ActionViewed)
	assert.Contains(t, actions, store.ActionSaved)
}

func TestAbandonedCaseIsNotAuditedAsViewed(t *testing.T) {
	st := newStore(t)
	src := &leavingSource{fakeSource: &fakeSource{cases: fixtures.MockCases()}}
	ui := newTestUI(t, src, st)
	src.onGet = func() { ui.navigate("/cet") }

	ui.navigate("/case/CAS001")
	assert.Nil(t, ui.detail)
	assert.Equal(t, workspace.PageCET, ui.shell.Route().Page)

	entries, err := st.GetAuditEntries(context.Background(), "CAS001", 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMissingCaseIsNotAuditedAsViewed(t *testing.T) {
	st := newStore(t)
	ui := newTestUI(t, &fakeSource{cases: fixtures.MockCases()}, st)
	ui.navigate("/case/CAS404")
	require.NotNil(t, ui.detail)
	assert.Equal(t, workspace.StateFailed, ui.detail.State())

	entries, err := st.GetAuditEntries(context.Background(), "CAS404", 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpdatesAfterStopAreDropped(t *testing.T) {
	ui := newTestUI(t, &fakeSource{}, nil)

	ran := false
	ui.queueUpdateDraw(func() { ran = true })
	assert.True(t, ran, "before Start updates apply inline")

	ui.stopped.Store(true)
	ran = false
	ui.queueUpdateDraw(func() { ran = true })
	assert.False(t, ran)
}

func TestCreditAnalysisCompletesAndAudits(t *testing.T) {
	st := newStore(t)
	ui := newTestUI(t, &fakeSource{cases: fixtures.MockCases()}, st)
	ui.navigate("/case/CAS001")
	ui.view.selectTab(workspace.TabCreditPlus)

	tab := ui.detail.CreditPlus()
	_, ok := tab.OpenConfirm()
	require.True(t, ok)
	ui.view.startAnalysis(tab, ui.view.panes[workspace.TabCreditPlus])

	res, ok := tab.Result()
	require.True(t, ok)
	assert.Equal(t, 82, res.Score)
	assert.Equal(t, workspace.StatusComplete, tab.StatusText())

	entries, err := st.GetAuditEntries(context.Background(), "CAS001", 10)
	require.NoError(t, err)
	found := false
	for _, e := range entries {
		found = found || e.Action == store.ActionAnalysis
	}
	assert.True(t, found, "analysis run should be audited")
}

func TestLeavingCaseCancelsAnalysis(t *testing.T) {
	ui := newTestUI(t, &fakeSource{cases: fixtures.MockCases()}, nil)
	ui.wsOpts.AnalysisDelay = time.Hour
	ui.navigate("/case/CAS001")

	task := ui.detail.CreditPlus().Confirm()
	ui.navigate("/cet")

	assert.Nil(t, ui.detail)
	assert.Nil(t, ui.view)
	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatal("analysis was not cancelled")
	}
	assert.True(t, task.Cancelled())
}

func TestEscapeClosesPopoverThenLeaves(t *testing.T) {
	ui := newTestUI(t, &fakeSource{cases: fixtures.MockCases()}, nil)
	ui.navigate("/case/CAS001")
	ui.layout.SetRect(0, 0, 120, 40)

	ui.view.openPopover(0)
	require.NotNil(t, ui.popover)
	pop, open := ui.detail.Popover()
	require.True(t, open)
	assert.Equal(t, "Customer Details", pop.Title)

	esc := tcell.NewEventKey(tcell.KeyEsc, 0, tcell.ModNone)
	ui.app.GetInputCapture()(esc)
	assert.Nil(t, ui.popover)
	require.NotNil(t, ui.detail)

	ui.app.GetInputCapture()(esc)
	assert.Nil(t, ui.detail)
	assert.Equal(t, workspace.PageCET, ui.shell.Route().Page)
}

func TestSidebarHoverMode(t *testing.T) {
	ui := newTestUI(t, &fakeSource{}, nil)
	sb := ui.shell.Sidebar

	ui.app.GetInputCapture()(key('H'))
	require.True(t, sb.HoverMode())

	ui.onSidebarPointer(false)
	assert.False(t, sb.Expanded())
	assert.Equal(t, sidebarCollapsedCells, sb.Width())

	ui.onSidebarPointer(true)
	assert.True(t, sb.Expanded())

	ui.app.GetInputCapture()(key('b'))
	assert.False(t, sb.HoverMode())
	assert.False(t, sb.Expanded())
}

func TestPlaceholderPages(t *testing.T) {
	ui := newTestUI(t, &fakeSource{}, nil)

	ui.navigate("/settings")
	assert.Equal(t, workspace.PageSettings, ui.shell.Route().Page)
	ui.navigate("/nowhere")
	assert.Equal(t, workspace.PageNotFound, ui.shell.Route().Page)
	assert.True(t, ui.pages.HasPage(pageMain))
}

func TestThemeCycle(t *testing.T) {
	ui := newTestUI(t, &fakeSource{}, nil)
	ui.app.GetInputCapture()(key('t'))
	assert.Equal(t, "light", ui.themeName)

	theme, name := ThemeByName("unknown")
	assert.Equal(t, "dark", name)
	assert.Equal(t, themeDark(), theme)
}

func TestRenderTabBarMarksActive(t *testing.T) {
	bar := renderTabBar(themeDark(), []string{"Assigned", "Draft"}, 1)
	lines := strings.Split(bar, "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "╭─ Draft ─╮")
	assert.Contains(t, lines[0], "┌ Assigned ┐")
	assert.True(t, strings.HasPrefix(lines[1], "─"))
	assert.True(t, strings.HasSuffix(lines[1], " "))
}
