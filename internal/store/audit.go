package store

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Audit actions recorded against a case.
const (
	ActionImported = "imported"
	ActionSeeded   = "seeded"
	ActionViewed   = "viewed"
	ActionSaved    = "saved"
	ActionNote     = "note_saved"
	ActionAnalysis = "analysis_run"
)

// AuditEntry is one row of a case's history.
type AuditEntry struct {
	ID        string                 `json:"id"`
	CaseID    string                 `json:"case_id"`
	Action    string                 `json:"action"`
	Actor     string                 `json:"actor"`
	Details   map[string]interface{} `json:"details"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (s *Store) setupAuditTables() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS audit_entries (
			id TEXT PRIMARY KEY,
			case_id TEXT NOT NULL,
			action TEXT NOT NULL,
			actor TEXT NOT NULL,
			details TEXT NOT NULL,
			metadata TEXT,
			timestamp INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_case_id ON audit_entries(case_id)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_entries(timestamp)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("failed to execute audit migration: %w", err)
		}
	}
	return nil
}

// AddAuditEntry appends an entry, filling in id and timestamp when unset.
func (s *Store) AddAuditEntry(ctx context.Context, entry AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if entry.Details == nil {
		entry.Details = map[string]interface{}{}
	}

	detailsJSON, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal audit details: %w", err)
	}
	var metadata interface{}
	if entry.Metadata != nil {
		b, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal audit metadata: %w", err)
		}
		metadata = string(b)
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO audit_entries (
		id, case_id, action, actor, details, metadata, timestamp
	) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.CaseID, entry.Action, entry.Actor,
		string(detailsJSON), metadata, entry.Timestamp.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// GetAuditEntries returns a case's entries newest first. limit <= 0 means all.
func (s *Store) GetAuditEntries(ctx context.Context, caseID string, limit int) ([]AuditEntry, error) {
	query := `SELECT id, case_id, action, actor, details, metadata, timestamp
		FROM audit_entries WHERE case_id = ? ORDER BY timestamp DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var entry AuditEntry
		var detailsJSON string
		var metadataJSON *string
		var ts int64
		if err := rows.Scan(&entry.ID, &entry.CaseID, &entry.Action, &entry.Actor,
			&detailsJSON, &metadataJSON, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entry.Timestamp = time.Unix(0, ts)

		if err := json.Unmarshal([]byte(detailsJSON), &entry.Details); err != nil {
			entry.Details = map[string]interface{}{"raw": detailsJSON}
		}
		if metadataJSON != nil {
			if err := json.Unmarshal([]byte(*metadataJSON), &entry.Metadata); err != nil {
				entry.Metadata = map[string]string{"raw": *metadataJSON}
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// LogCaseAction records action by actor on caseID.
func (s *Store) LogCaseAction(ctx context.Context, caseID, action, actor string, details map[string]interface{}) error {
	return s.AddAuditEntry(ctx, AuditEntry{
		CaseID:  caseID,
		Action:  action,
		Actor:   actor,
		Details: details,
	})
}

// LogAnalysisRun records a completed PD++ or Credit++ run with its result.
func (s *Store) LogAnalysisRun(ctx context.Context, caseID, actor, kind, model string, score int) error {
	return s.AddAuditEntry(ctx, AuditEntry{
		CaseID: caseID,
		Action: ActionAnalysis,
		Actor:  actor,
		Details: map[string]interface{}{
			"kind":  kind,
			"model": model,
		},
		Metadata: map[string]string{
			"score": fmt.Sprintf("%d", score),
		},
	})
}
