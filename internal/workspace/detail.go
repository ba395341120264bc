package workspace

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/credit-eval/cet-console/internal/model"
)

// Messages shown by the detail header actions.
const (
	CaseSavedMessage = "Case saved successfully!"
	NoteSavedMessage = "Note saved successfully!"
	NotePlaceholder  = "Add notes about this case..."
)

const (
	DefaultFiscalYears   = 4
	DefaultAnalysisDelay = 2 * time.Second
)

// ErrCaseNotFound is reported when a fetch succeeds without a case.
var ErrCaseNotFound = errors.New("case not found")

// Options tune the detail workspace. Zero values pick the defaults.
type Options struct {
	Now           func() time.Time
	AnalysisDelay time.Duration
	FiscalYears   int
}

func (o Options) withDefaults() Options {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.AnalysisDelay <= 0 {
		o.AnalysisDelay = DefaultAnalysisDelay
	}
	if o.FiscalYears <= 0 {
		o.FiscalYears = DefaultFiscalYears
	}
	return o
}

// TabID indexes the detail workspace tabs.
type TabID int

const (
	TabCustomers TabID = iota
	TabDueDiligence
	TabBanking
	TabRTR
	TabFinancials
	TabPDPlus
	TabCreditPlus
	TabEligibility
	TabDeviations
	TabReview
)

var tabLabels = []string{
	"Customers", "Due diligence", "Banking", "RTR", "Financials",
	"PD++", "Credit++", "Eligibilty", "Deviations", "Review & Submit",
}

// TabLabels returns the detail tab captions in order.
func TabLabels() []string {
	out := make([]string, len(tabLabels))
	copy(out, tabLabels)
	return out
}

func (t TabID) String() string {
	if t < 0 || int(t) >= len(tabLabels) {
		return fmt.Sprintf("TabID(%d)", int(t))
	}
	return tabLabels[t]
}

// Tile is one summary metric above the tabs.
type Tile struct {
	Title    string
	Value    string
	Subvalue string
	Tone     model.Tone
}

// CaseDetail is the state of the case page for one case id.
type CaseDetail struct {
	id     string
	opts   Options
	ctx    context.Context
	cancel context.CancelFunc

	state LoadState
	err   error
	c     model.Case
	gen   uint64

	tab     TabID
	popover *Popover

	customers    *CustomersTab
	dueDiligence *DueDiligenceTab
	rtr          *RTRTab
	financials   *FinancialsTab
	pdPlus       *PDPlusTab
	creditPlus   *CreditPlusTab
	documents    *DocumentsTab
}

// NewCaseDetail returns a detail view for id in the loading state.
func NewCaseDetail(id string, opts Options) *CaseDetail {
	ctx, cancel := context.WithCancel(context.Background())
	return &CaseDetail{
		id:     id,
		opts:   opts.withDefaults(),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (d *CaseDetail) ID() string       { return d.id }
func (d *CaseDetail) State() LoadState { return d.state }
func (d *CaseDetail) Case() model.Case { return d.c }
func (d *CaseDetail) Tab() TabID       { return d.tab }

// Context is cancelled when the view closes.
func (d *CaseDetail) Context() context.Context {
	return d.ctx
}

// BeginLoad enters the loading state and returns the token of this fetch.
func (d *CaseDetail) BeginLoad() uint64 {
	d.gen++
	d.state = StateLoading
	d.err = nil
	return d.gen
}

// Apply stores a fetch outcome. A nil case with a nil error means the case
// does not exist. Stale tokens and results arriving after Close are dropped.
func (d *CaseDetail) Apply(token uint64, c *model.Case, err error) bool {
	if token != d.gen || d.ctx.Err() != nil {
		return false
	}
	if err == nil && c == nil {
		err = ErrCaseNotFound
	}
	if err != nil {
		d.state = StateFailed
		d.err = err
		return true
	}
	d.c = *c
	d.state = StateLoaded
	d.resetTabs()
	return true
}

// ErrorMessage is shown in the failed state; the only recovery is the list.
func (d *CaseDetail) ErrorMessage() string {
	if d.err == nil {
		return ""
	}
	if errors.Is(d.err, ErrCaseNotFound) {
		return "Failed to load case details: Case not found"
	}
	return "Failed to load case details: " + d.err.Error()
}

// BackPath is the route of the failed-state recovery action.
func (d *CaseDetail) BackPath() string { return "/cet" }

// Header returns the page title and subtitle.
func (d *CaseDetail) Header() (title, subtitle string) {
	title = fmt.Sprintf("Case %s - %s", d.c.ID, d.c.CustomerName)
	subtitle = fmt.Sprintf("%s · %s", d.c.Details.Basics.Occupation, model.FormatINR(d.c.LoanAmount))
	return title, subtitle
}

// Tiles returns the six summary metrics.
func (d *CaseDetail) Tiles() []Tile {
	det := d.c.Details
	score := det.Bureau.CreditScore
	pd := det.PDDetails.ProbabilityOfDefault
	return []Tile{
		{Title: "Customer", Value: d.c.CustomerName, Subvalue: fmt.Sprintf("%d years", det.Basics.Age), Tone: model.ToneNeutral},
		{Title: "Loan Amount", Value: model.FormatINR(d.c.LoanAmount), Subvalue: det.Basics.Occupation, Tone: model.ToneNeutral},
		{Title: "Credit Score", Value: fmt.Sprintf("%d", score), Subvalue: model.CreditBand(score), Tone: model.CreditTone(score)},
		{Title: "Risk Score", Value: fmt.Sprintf("%d/100", det.PDDetails.RiskScore), Subvalue: det.PDDetails.RiskCategory, Tone: model.ToneNeutral},
		{Title: "Monthly Income", Value: model.FormatINR(det.Financials.MonthlyIncome), Subvalue: "Net Income", Tone: model.ToneNeutral},
		{Title: "Default Probability", Value: model.FormatPercent(pd), Subvalue: "Estimated PD", Tone: model.PDTone(pd)},
	}
}

// SelectTab shows tab t. Tab state is kept across switches.
func (d *CaseDetail) SelectTab(t TabID) bool {
	if t < 0 || int(t) >= len(tabLabels) {
		return false
	}
	d.tab = t
	return true
}

// Placeholder returns the static content of tabs that have no workspace.
func (d *CaseDetail) Placeholder(t TabID) (title, body string, ok bool) {
	switch t {
	case TabEligibility:
		return "Eligibility Analysis", "Loan eligibility details will be shown here.", true
	case TabDeviations:
		return "Policy Deviations", "Any policy deviations will be listed here.", true
	}
	return "", "", false
}

func (d *CaseDetail) Customers() *CustomersTab {
	if d.customers == nil {
		d.customers = NewCustomersTab(d.c, d.opts.Now)
	}
	return d.customers
}

func (d *CaseDetail) DueDiligence() *DueDiligenceTab {
	if d.dueDiligence == nil {
		d.dueDiligence = NewDueDiligenceTab()
	}
	return d.dueDiligence
}

func (d *CaseDetail) Banking() BankingView {
	return NewBankingView(d.c)
}

func (d *CaseDetail) RTR() *RTRTab {
	if d.rtr == nil {
		d.rtr = NewRTRTab()
	}
	return d.rtr
}

func (d *CaseDetail) Financials() *FinancialsTab {
	if d.financials == nil {
		d.financials = NewFinancialsTab(d.c, d.opts.Now(), d.opts.FiscalYears)
	}
	return d.financials
}

func (d *CaseDetail) PDPlus() *PDPlusTab {
	if d.pdPlus == nil {
		d.pdPlus = NewPDPlusTab(d.c)
	}
	return d.pdPlus
}

func (d *CaseDetail) CreditPlus() *CreditPlusTab {
	if d.creditPlus == nil {
		d.creditPlus = NewCreditPlusTab(d.ctx, d.opts.AnalysisDelay)
	}
	return d.creditPlus
}

func (d *CaseDetail) Documents() *DocumentsTab {
	if d.documents == nil {
		d.documents = NewDocumentsTab(d.c)
	}
	return d.documents
}

// Save acknowledges the save action. Nothing is written back.
func (d *CaseDetail) Save() string {
	return CaseSavedMessage
}

// SaveNote acknowledges the header note dialog.
func (d *CaseDetail) SaveNote(string) string {
	return NoteSavedMessage
}

// Close cancels running tasks and discards every tab. Later fetch results
// for this view are ignored.
func (d *CaseDetail) Close() {
	d.cancel()
	d.resetTabs()
	d.popover = nil
}

// Closed reports whether Close has been called.
func (d *CaseDetail) Closed() bool {
	return d.ctx.Err() != nil
}

func (d *CaseDetail) resetTabs() {
	if d.creditPlus != nil {
		d.creditPlus.Cancel()
	}
	d.customers = nil
	d.dueDiligence = nil
	d.rtr = nil
	d.financials = nil
	d.pdPlus = nil
	d.creditPlus = nil
	d.documents = nil
}
