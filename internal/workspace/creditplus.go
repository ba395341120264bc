package workspace

import (
	"context"
	"fmt"
	"time"
)

// AnalysisModel is a selectable Credit++ model.
type AnalysisModel struct {
	ID          string
	Name        string
	Description string
}

var AnalysisModels = []AnalysisModel{
	{
		ID:          "deep-pattern",
		Name:        "Deep Pattern Model",
		Description: "Analyzes historical credit behavior across multiple dimensions to identify patterns invisible to traditional credit scoring models. Best for established credit histories with rich data points.",
	},
	{
		ID:          "portfolio-seeker",
		Name:        "Portfolio Seeker Model",
		Description: "Compares applicant profile against similar loan portfolios to predict performance based on cohort analysis. Ideal for less established credit histories or unique financial situations.",
	},
}

// Result sub-tabs.
const (
	ResultSummary         = "summary"
	ResultDetails         = "details"
	ResultRecommendations = "recommendations"
)

var ResultTabs = []Option{
	{Value: ResultSummary, Label: "Summary"},
	{Value: ResultDetails, Label: "Detailed Analysis"},
	{Value: ResultRecommendations, Label: "Recommendations"},
}

// Status captions under the SEEKER action.
const (
	StatusProcessing = "Connecting to data sources and analyzing patterns..."
	StatusComplete   = "Analysis complete. View results below."
	StatusIdle       = "Click SEEKER to initiate the Credit++ analysis"
)

// CreditResult is the outcome shown after an analysis.
type CreditResult struct {
	Model              string
	Score              int
	Rating             string
	Percentile         string
	RiskLevel          string
	DefaultProbability string
	Confidence         string
}

func fixedResult(model string) CreditResult {
	return CreditResult{
		Model:              model,
		Score:              82,
		Rating:             "Very Good",
		Percentile:         "Top 18% in this category",
		RiskLevel:          "Low Risk",
		DefaultProbability: "3.2%",
		Confidence:         "High (92%)",
	}
}

// ConfirmDialog asks before an analysis run.
type ConfirmDialog struct {
	Title    string
	Body     string
	Question string
}

// CreditPlusTab is the Credit++ analysis workflow.
type CreditPlusTab struct {
	ctx   context.Context
	delay time.Duration

	model       string
	confirmOpen bool
	task        *Task[CreditResult]
	resultTab   string
}

// NewCreditPlusTab returns an idle workflow. Analyses run under ctx and
// resolve after delay.
func NewCreditPlusTab(ctx context.Context, delay time.Duration) *CreditPlusTab {
	return &CreditPlusTab{
		ctx:       ctx,
		delay:     delay,
		model:     AnalysisModels[0].ID,
		resultTab: ResultSummary,
	}
}

func (t *CreditPlusTab) Model() string { return t.model }

// SelectModel picks the analysis model by id.
func (t *CreditPlusTab) SelectModel(id string) bool {
	if _, ok := modelByID(id); !ok {
		return false
	}
	t.model = id
	return true
}

func modelByID(id string) (AnalysisModel, bool) {
	for _, m := range AnalysisModels {
		if m.ID == id {
			return m, true
		}
	}
	return AnalysisModel{}, false
}

// OpenConfirm shows the confirmation dialog. It is refused while an analysis
// is running.
func (t *CreditPlusTab) OpenConfirm() (ConfirmDialog, bool) {
	if t.Processing() {
		return ConfirmDialog{}, false
	}
	t.confirmOpen = true
	kind := "Portfolio Seeker"
	if t.model == "deep-pattern" {
		kind = "Deep Pattern"
	}
	return ConfirmDialog{
		Title:    "Confirm Analysis",
		Body:     fmt.Sprintf("You are about to run a %s Model analysis on this customer's data. This process will analyze all available credit information.", kind),
		Question: "Would you like to proceed?",
	}, true
}

func (t *CreditPlusTab) ConfirmOpen() bool { return t.confirmOpen }

// DismissConfirm closes the dialog without running anything.
func (t *CreditPlusTab) DismissConfirm() { t.confirmOpen = false }

// Confirm closes the dialog and starts the analysis. The returned task
// completes after the configured delay unless the tab is cancelled first.
func (t *CreditPlusTab) Confirm() *Task[CreditResult] {
	t.confirmOpen = false
	if t.task != nil {
		t.task.Cancel()
	}
	m, _ := modelByID(t.model)
	t.task = After(t.ctx, t.delay, fixedResult(m.Name))
	t.resultTab = ResultSummary
	return t.task
}

// Task returns the latest analysis, if any.
func (t *CreditPlusTab) Task() *Task[CreditResult] { return t.task }

// Processing reports whether an analysis is in flight.
func (t *CreditPlusTab) Processing() bool {
	return t.task != nil && !t.task.Finished()
}

// Result returns the outcome of a completed, uncancelled analysis.
func (t *CreditPlusTab) Result() (CreditResult, bool) {
	if t.task == nil || !t.task.Finished() {
		return CreditResult{}, false
	}
	r, err := t.task.Result()
	if err != nil {
		return CreditResult{}, false
	}
	return r, true
}

// StatusText is the caption under the SEEKER action.
func (t *CreditPlusTab) StatusText() string {
	if t.Processing() {
		return StatusProcessing
	}
	if _, ok := t.Result(); ok {
		return StatusComplete
	}
	return StatusIdle
}

func (t *CreditPlusTab) ResultTab() string { return t.resultTab }

// SelectResultTab switches the results sub-tab.
func (t *CreditPlusTab) SelectResultTab(v string) bool {
	if !hasOption(ResultTabs, v) {
		return false
	}
	t.resultTab = v
	return true
}

// ResultText is the placeholder body of the non-summary sub-tabs.
func ResultText(tab string) string {
	switch tab {
	case ResultDetails:
		return "Detailed analysis content would appear here..."
	case ResultRecommendations:
		return "Recommendations content would appear here..."
	}
	return ""
}

// Cancel stops a running analysis so it never reports a result.
func (t *CreditPlusTab) Cancel() {
	if t.task != nil {
		t.task.Cancel()
	}
}
