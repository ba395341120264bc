package workspace

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/credit-eval/cet-console/internal/fixtures"
	"github.com/credit-eval/cet-console/internal/model"
)

var fixedNow = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

func testOptions() Options {
	return Options{Now: func() time.Time { return fixedNow }, AnalysisDelay: 20 * time.Millisecond}
}

func mockCase(t *testing.T, id string) model.Case {
	t.Helper()
	for _, c := range fixtures.MockCases() {
		if c.ID == id {
			return c
		}
	}
	t.Fatalf("no mock case %s", id)
	return model.Case{}
}

func loadedDetail(t *testing.T, id string) *CaseDetail {
	t.Helper()
	d := NewCaseDetail(id, testOptions())
	c := mockCase(t, id)
	require.True(t, d.Apply(d.BeginLoad(), &c, nil))
	t.Cleanup(d.Close)
	return d
}

func TestDetailHeaderAndTiles(t *testing.T) {
	d := loadedDetail(t, "CAS001")

	title, sub := d.Header()
	assert.Equal(t, "Case CAS001 - John Doe", title)
	assert.Equal(t, "Personal Loan · ₹500,000", sub)

	tiles := d.Tiles()
	require.Len(t, tiles, 6)
	assert.Equal(t, Tile{Title: "Customer", Value: "John Doe", Subvalue: "35 years", Tone: model.ToneNeutral}, tiles[0])
	assert.Equal(t, "750", tiles[2].Value)
	assert.Equal(t, "Excellent", tiles[2].Subvalue)
	assert.Equal(t, model.ToneGreen, tiles[2].Tone)
	assert.Equal(t, "85/100", tiles[3].Value)
	assert.Equal(t, "Low Risk", tiles[3].Subvalue)
	assert.Equal(t, "₹100,000", tiles[4].Value)
	assert.Equal(t, "5.0%", tiles[5].Value)
	assert.Equal(t, model.ToneYellow, tiles[5].Tone)
}

func TestDetailNotFoundAndFailure(t *testing.T) {
	d := NewCaseDetail("CAS404", testOptions())
	defer d.Close()

	d.Apply(d.BeginLoad(), nil, nil)
	assert.Equal(t, StateFailed, d.State())
	assert.Equal(t, "Failed to load case details: Case not found", d.ErrorMessage())
	assert.EqualError(t, ErrCaseNotFound, "case not found")
	assert.Equal(t, "/cet", d.BackPath())

	d.Apply(d.BeginLoad(), nil, errors.New("timeout"))
	assert.Equal(t, "Failed to load case details: timeout", d.ErrorMessage())
}

func TestDetailIgnoresResultsAfterClose(t *testing.T) {
	d := NewCaseDetail("CAS001", testOptions())
	tok := d.BeginLoad()
	d.Close()

	c := mockCase(t, "CAS001")
	assert.False(t, d.Apply(tok, &c, nil))
	assert.Equal(t, StateLoading, d.State())
	assert.True(t, d.Closed())
}

func TestDetailTabs(t *testing.T) {
	d := loadedDetail(t, "CAS001")
	assert.Len(t, TabLabels(), 10)
	assert.Equal(t, TabCustomers, d.Tab())
	assert.Equal(t, "Review & Submit", TabReview.String())

	require.True(t, d.SelectTab(TabRTR))
	assert.Equal(t, TabRTR, d.Tab())
	assert.False(t, d.SelectTab(TabID(10)))

	title, body, ok := d.Placeholder(TabEligibility)
	require.True(t, ok)
	assert.Equal(t, "Eligibility Analysis", title)
	assert.Equal(t, "Loan eligibility details will be shown here.", body)
	_, _, ok = d.Placeholder(TabBanking)
	assert.False(t, ok)

	assert.Equal(t, CaseSavedMessage, d.Save())
	assert.Equal(t, "Note saved successfully!", d.SaveNote("checked"))
}

func TestDetailTabStateSurvivesSwitching(t *testing.T) {
	d := loadedDetail(t, "CAS001")

	d.SelectTab(TabCustomers)
	id := d.Customers().AddCustomer()
	d.SelectTab(TabFinancials)
	d.SelectTab(TabCustomers)

	_, ok := d.Customers().Customer(id)
	assert.True(t, ok)
}

func TestCloseCancelsRunningAnalysis(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := NewCaseDetail("CAS001", Options{AnalysisDelay: time.Hour})
	c := mockCase(t, "CAS001")
	d.Apply(d.BeginLoad(), &c, nil)

	cp := d.CreditPlus()
	cp.OpenConfirm()
	task := cp.Confirm()
	require.True(t, cp.Processing())

	d.Close()
	<-task.Done()
	assert.True(t, task.Cancelled())
	_, ok := cp.Result()
	assert.False(t, ok)
}

func TestPlacePopover(t *testing.T) {
	vp := Size{W: 200, H: 60}
	size := Size{W: 40, H: 10}

	r := PlacePopover(Rect{X: 10, Y: 5, W: 30, H: 4}, size, vp)
	assert.Equal(t, Rect{X: 41, Y: 5, W: 40, H: 10}, r)

	// right overflow flips to the left of the anchor
	r = PlacePopover(Rect{X: 150, Y: 5, W: 30, H: 4}, size, vp)
	assert.Equal(t, 109, r.X)

	// bottom overflow is pulled up above the margin
	r = PlacePopover(Rect{X: 10, Y: 52, W: 30, H: 4}, size, vp)
	assert.Equal(t, 49, r.Y)

	// no room on either side: below the anchor
	r = PlacePopover(Rect{X: 30, Y: 3, W: 16, H: 5}, Size{W: 46, H: 9}, Size{W: 80, H: 24})
	assert.Equal(t, Rect{X: 30, Y: 9, W: 46, H: 9}, r)

	// no room below either: above the anchor
	r = PlacePopover(Rect{X: 30, Y: 14, W: 16, H: 5}, Size{W: 46, H: 9}, Size{W: 80, H: 24})
	assert.Equal(t, Rect{X: 30, Y: 4, W: 46, H: 9}, r)

	// never negative
	r = PlacePopover(Rect{X: 5, Y: 0, W: 10, H: 4}, Size{W: 300, H: 100}, vp)
	assert.Equal(t, 0, r.X)
	assert.Equal(t, 0, r.Y)
}

func TestPopoverClearsItsTileOnSmallTerminal(t *testing.T) {
	// 80x24 terminal, expanded sidebar, six tiles across the remaining width
	vp := Size{W: 80, H: 24}
	size := Size{W: 46, H: 9}
	for i := 0; i < 6; i++ {
		anchor := Rect{X: 26 + 9*i, Y: 3, W: 9, H: 5}
		r := PlacePopover(anchor, size, vp)
		assert.False(t, r.Overlaps(anchor), "tile %d: popover %+v covers anchor %+v", i, r, anchor)
		assert.LessOrEqual(t, r.Right(), vp.W, "tile %d", i)
		assert.LessOrEqual(t, r.Bottom(), vp.H, "tile %d", i)
	}

	r := PlacePopover(Rect{X: 30, Y: 3, W: 16, H: 5}, size, vp)
	assert.False(t, r.Overlaps(Rect{X: 30, Y: 3, W: 16, H: 5}))
}

func TestPopoverOutsideClickDismisses(t *testing.T) {
	d := loadedDetail(t, "CAS002")

	p, ok := d.OpenPopover(2, Rect{X: 10, Y: 5, W: 30, H: 4}, Size{W: 40, H: 10}, Size{W: 200, H: 60})
	require.True(t, ok)
	assert.Equal(t, "Credit Score Details", p.Title)
	assert.Equal(t, "Additional information for Credit Score will appear here.", p.Lines[0])

	assert.False(t, d.ClickAt(55, 8), "click inside keeps the popover")
	_, open := d.Popover()
	assert.True(t, open)

	assert.True(t, d.ClickAt(0, 0))
	_, open = d.Popover()
	assert.False(t, open)

	_, ok = d.OpenPopover(6, Rect{}, Size{}, Size{})
	assert.False(t, ok)
}

// A full pass through the list and the financials grid.
func TestListToFinancialsScenario(t *testing.T) {
	l := NewCaseList()
	l.Apply(l.BeginLoad(), fixtures.MockCases(), nil)
	for i := range model.Statuses() {
		l.SelectTab(i)
		assert.Len(t, l.Cards(), 1)
	}

	sh := NewShell(NewSidebar())
	l.SelectTab(0)
	route := sh.Navigate(l.Open(l.Cards()[0].ID))
	require.Equal(t, PageCase, route.Page)
	require.Equal(t, "CAS001", route.CaseID)

	d := loadedDetail(t, route.CaseID)
	require.True(t, d.SelectTab(TabFinancials))
	fin := d.Financials()
	require.True(t, fin.SetStatement(StatementPL))
	assert.Len(t, fin.Rows(), 15)
	assert.Len(t, fin.Columns(), 2)

	require.True(t, fin.AddColumn())
	assert.Len(t, fin.Columns(), 3)
}

func TestCreditPlusCompletesWithinDetail(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := NewCaseDetail("CAS003", testOptions())
	c := mockCase(t, "CAS003")
	d.Apply(d.BeginLoad(), &c, nil)
	defer d.Close()

	task := d.CreditPlus().Confirm()
	res, err := task.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 82, res.Score)
	assert.Equal(t, StatusComplete, d.CreditPlus().StatusText())
}
