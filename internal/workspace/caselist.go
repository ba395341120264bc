package workspace

import (
	"fmt"

	"github.com/credit-eval/cet-console/internal/model"
)

// LoadState is the lifecycle of a fetched view.
type LoadState int

const (
	StateLoading LoadState = iota
	StateFailed
	StateLoaded
)

// CaseCard is the list view's rendering of one case.
type CaseCard struct {
	ID             string
	CustomerName   string
	ProgramType    string
	LoanAmount     string
	AssignmentDate string
}

// CaseList is the CET page: one fetch of every case, bucketed by status and
// shown one bucket at a time.
type CaseList struct {
	state   LoadState
	err     error
	buckets map[model.Status][]model.Case
	tab     int
	gen     uint64
}

// NewCaseList returns a list in the loading state.
func NewCaseList() *CaseList {
	return &CaseList{buckets: map[model.Status][]model.Case{}}
}

// BeginLoad enters the loading state and returns a token identifying this
// fetch. Only the latest token's result is applied.
func (l *CaseList) BeginLoad() uint64 {
	l.gen++
	l.state = StateLoading
	l.err = nil
	return l.gen
}

// Apply stores the outcome of the fetch started with token. Results of
// superseded fetches are dropped and Apply returns false.
func (l *CaseList) Apply(token uint64, cases []model.Case, err error) bool {
	if token != l.gen {
		return false
	}
	if err != nil {
		l.state = StateFailed
		l.err = err
		return true
	}

	l.buckets = make(map[model.Status][]model.Case, 3)
	for _, c := range cases {
		// a case outside the three statuses belongs to no tab
		if c.Status.Valid() {
			l.buckets[c.Status] = append(l.buckets[c.Status], c)
		}
	}
	l.state = StateLoaded
	return true
}

func (l *CaseList) State() LoadState { return l.state }
func (l *CaseList) Tab() int         { return l.tab }

// SelectTab switches the visible bucket: 0 assigned, 1 draft, 2 submitted.
func (l *CaseList) SelectTab(i int) bool {
	if i < 0 || i >= len(model.Statuses()) {
		return false
	}
	l.tab = i
	return true
}

// TabLabels returns the bucket tab captions.
func (l *CaseList) TabLabels() []string {
	var labels []string
	for _, s := range model.Statuses() {
		labels = append(labels, s.Label())
	}
	return labels
}

// ActiveStatus is the status of the visible bucket.
func (l *CaseList) ActiveStatus() model.Status {
	return model.Statuses()[l.tab]
}

// Bucket returns the cases with status s.
func (l *CaseList) Bucket(s model.Status) []model.Case {
	return l.buckets[s]
}

// Count returns the size of the bucket for s.
func (l *CaseList) Count(s model.Status) int {
	return len(l.buckets[s])
}

// Cards renders the visible bucket.
func (l *CaseList) Cards() []CaseCard {
	cases := l.buckets[l.ActiveStatus()]
	cards := make([]CaseCard, 0, len(cases))
	for _, c := range cases {
		cards = append(cards, CaseCard{
			ID:             c.ID,
			CustomerName:   c.CustomerName,
			ProgramType:    c.Details.Basics.Occupation,
			LoanAmount:     model.FormatINR(c.LoanAmount),
			AssignmentDate: model.FormatDate(c.Timestamp),
		})
	}
	return cards
}

// EmptyMessage is shown when the visible bucket has no cases.
func (l *CaseList) EmptyMessage() string {
	return fmt.Sprintf("No %s cases found.", l.ActiveStatus())
}

// ErrorMessage is shown in the failed state alongside a retry action.
func (l *CaseList) ErrorMessage() string {
	if l.err == nil {
		return ""
	}
	return "Failed to load cases: " + l.err.Error()
}

// Open returns the route of the case with id.
func (l *CaseList) Open(id string) string {
	return CasePath(id)
}
