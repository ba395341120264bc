package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditEntriesNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.AddAuditEntry(ctx, AuditEntry{CaseID: "CAS001", Action: ActionImported, Actor: "ingest", Timestamp: base}))
	require.NoError(t, s.AddAuditEntry(ctx, AuditEntry{CaseID: "CAS001", Action: ActionViewed, Actor: "analyst", Timestamp: base.Add(time.Minute)}))
	require.NoError(t, s.AddAuditEntry(ctx, AuditEntry{CaseID: "CAS002", Action: ActionSeeded, Actor: "seed", Timestamp: base}))

	entries, err := s.GetAuditEntries(ctx, "CAS001", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ActionViewed, entries[0].Action)
	assert.Equal(t, ActionImported, entries[1].Action)
	assert.NotEmpty(t, entries[0].ID)
	assert.True(t, entries[1].Timestamp.Equal(base))

	limited, err := s.GetAuditEntries(ctx, "CAS001", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestLogAnalysisRunStoresMetadata(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.LogAnalysisRun(ctx, "CAS003", "analyst", "credit++", "Deep Pattern", 82))

	entries, err := s.GetAuditEntries(ctx, "CAS003", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, ActionAnalysis, e.Action)
	assert.Equal(t, "82", e.Metadata["score"])
	assert.Equal(t, "Deep Pattern", e.Details["model"])
}
