// Package bus fans case change notifications out over Redis Streams.
package bus

import (
	"context"
	"io"
	"log"
)

// CasesStream is the Redis stream carrying case notifications.
const CasesStream = "cases"

// Case notification actions.
const (
	ActionImported = "imported"
	ActionSeeded   = "seeded"
	ActionViewed   = "viewed"
	ActionSaved    = "saved"
)

// CaseMessage announces that a case was written or touched.
type CaseMessage struct {
	CaseID    string `json:"case_id"`
	Action    string `json:"action"`
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
}

// CaseHandler processes one case notification.
type CaseHandler func(ctx context.Context, msg CaseMessage) error

// Bus defines the interface for case notification transports.
type Bus interface {
	// PublishCaseEvent appends msg to the cases stream.
	PublishCaseEvent(ctx context.Context, msg CaseMessage) error

	// ReadCaseEvents consumes the cases stream until ctx is cancelled.
	ReadCaseEvents(ctx context.Context, group, consumer string, handler CaseHandler) error

	// GetStats returns basic statistics about the bus
	GetStats(ctx context.Context) (map[string]interface{}, error)

	// HealthCheck performs a health check on the bus connection
	HealthCheck(ctx context.Context) error

	// Close closes the bus connection
	Close() error
}

// NewBus returns a Redis-backed bus, or a NullBus when redisURL is empty or
// unreachable.
func NewBus(redisURL string, logger *log.Logger) Bus {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	if redisURL == "" {
		return NewNullBus(logger)
	}

	redisBus, err := NewRedisBus(redisURL, logger)
	if err == nil {
		return redisBus
	}
	logger.Printf("Redis unavailable, case notifications disabled: %v", err)
	return NewNullBus(logger)
}
