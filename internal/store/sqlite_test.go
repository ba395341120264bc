package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credit-eval/cet-console/internal/fixtures"
	"github.com/credit-eval/cet-console/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "nested", "cases.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNewStoreCreatesTables(t *testing.T) {
	s := newTestStore(t)

	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('cases','audit_entries')`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestUpsertAndGetRoundTripsDetails(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := fixtures.MockCases()[1]
	want.Details.Banking.Transactions = []model.Transaction{{Date: "2024-01-02", Amount: 1200, Type: "credit", Description: "salary"}}
	require.NoError(t, s.UpsertCase(ctx, want))

	got, err := s.GetCase(ctx, "CAS002")
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("case mismatch (-want +got):\n%s", diff)
	}
}

func TestUpsertReplacesExisting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c := fixtures.MockCases()[0]
	require.NoError(t, s.UpsertCase(ctx, c))
	c.Status = model.StatusSubmitted
	c.LoanAmount = 999
	require.NoError(t, s.UpsertCase(ctx, c))

	n, err := s.CountCases(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := s.GetCase(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSubmitted, got.Status)
	assert.Equal(t, 999.0, got.LoanAmount)
}

func TestUpsertRejectsInvalidCase(t *testing.T) {
	s := newTestStore(t)
	err := s.UpsertCase(context.Background(), model.Case{ID: "X", Status: "closed"})
	assert.True(t, errors.Is(err, model.ErrInvalidStatus))
}

func TestUpsertCasesIsAtomic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	batch := append(fixtures.MockCases(), model.Case{ID: "", Status: model.StatusDraft})
	require.Error(t, s.UpsertCases(ctx, batch))

	n, err := s.CountCases(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, s.UpsertCases(ctx, fixtures.MockCases()))
	n, err = s.CountCases(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestGetCaseNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetCase(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListAndCountByStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.UpsertCases(ctx, fixtures.MockCases()))
	require.NoError(t, s.UpsertCase(ctx, model.Case{ID: "CAS000", CustomerName: "Zed", Status: model.StatusDraft}))

	all, err := s.ListCases(ctx)
	require.NoError(t, err)
	ids := make([]string, len(all))
	for i, c := range all {
		ids[i] = c.ID
	}
	assert.Equal(t, []string{"CAS000", "CAS001", "CAS002", "CAS003"}, ids)

	drafts, err := s.ListCasesByStatus(ctx, model.StatusDraft)
	require.NoError(t, err)
	assert.Len(t, drafts, 2)

	counts, err := s.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[model.Status]int{
		model.StatusAssigned:  1,
		model.StatusDraft:     2,
		model.StatusSubmitted: 1,
	}, counts)
}

func TestListEmptyIsNotNil(t *testing.T) {
	s := newTestStore(t)
	cases, err := s.ListCases(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, cases)
	assert.Empty(t, cases)
}

func TestDeleteCase(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.UpsertCases(ctx, fixtures.MockCases()))
	require.NoError(t, s.LogCaseAction(ctx, "CAS001", ActionViewed, "tester", nil))

	require.NoError(t, s.DeleteCase(ctx, "CAS001"))
	_, err := s.GetCase(ctx, "CAS001")
	assert.True(t, errors.Is(err, ErrNotFound))

	entries, err := s.GetAuditEntries(ctx, "CAS001", 0)
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.True(t, errors.Is(s.DeleteCase(ctx, "CAS001"), ErrNotFound))
}
