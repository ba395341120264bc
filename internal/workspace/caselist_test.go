package workspace

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credit-eval/cet-console/internal/fixtures"
	"github.com/credit-eval/cet-console/internal/model"
)

func TestCaseListBucketsMockCases(t *testing.T) {
	l := NewCaseList()
	assert.Equal(t, StateLoading, l.State())

	tok := l.BeginLoad()
	require.True(t, l.Apply(tok, fixtures.MockCases(), nil))
	assert.Equal(t, StateLoaded, l.State())

	for i, want := range []string{"CAS001", "CAS002", "CAS003"} {
		require.True(t, l.SelectTab(i))
		cards := l.Cards()
		require.Len(t, cards, 1)
		assert.Equal(t, want, cards[0].ID)
	}
	assert.Equal(t, []string{"Assigned", "Drafts", "Submitted"}, l.TabLabels())
	assert.False(t, l.SelectTab(3))
	assert.Equal(t, 2, l.Tab())
}

func TestCaseListCards(t *testing.T) {
	l := NewCaseList()
	l.Apply(l.BeginLoad(), fixtures.MockCases(), nil)

	card := l.Cards()[0]
	assert.Equal(t, CaseCard{
		ID:             "CAS001",
		CustomerName:   "John Doe",
		ProgramType:    "Personal Loan",
		LoanAmount:     "₹500,000",
		AssignmentDate: "15 Jan 2024",
	}, card)
	assert.Equal(t, "/case/CAS001", l.Open(card.ID))
}

func TestCaseListSkipsUnknownStatus(t *testing.T) {
	l := NewCaseList()
	cases := []model.Case{{ID: "X", Status: "approved"}, {ID: "Y", Status: model.StatusDraft}}
	l.Apply(l.BeginLoad(), cases, nil)

	total := 0
	for _, s := range model.Statuses() {
		total += l.Count(s)
	}
	assert.Equal(t, 1, total)
	assert.Equal(t, "No assigned cases found.", l.EmptyMessage())
}

func TestCaseListFailureAndRetry(t *testing.T) {
	l := NewCaseList()
	l.Apply(l.BeginLoad(), nil, errors.New("connection refused"))
	assert.Equal(t, StateFailed, l.State())
	assert.Equal(t, "Failed to load cases: connection refused", l.ErrorMessage())

	tok := l.BeginLoad()
	assert.Equal(t, StateLoading, l.State())
	assert.Empty(t, l.ErrorMessage())
	l.Apply(tok, fixtures.MockCases(), nil)
	assert.Equal(t, StateLoaded, l.State())
}

func TestCaseListIgnoresStaleResults(t *testing.T) {
	l := NewCaseList()
	stale := l.BeginLoad()
	fresh := l.BeginLoad()

	assert.True(t, l.Apply(fresh, fixtures.MockCases(), nil))
	assert.False(t, l.Apply(stale, nil, errors.New("late failure")))
	assert.Equal(t, StateLoaded, l.State())
	assert.Equal(t, 1, l.Count(model.StatusDraft))
}
