package bus

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestNewBusFallsBackToNull(t *testing.T) {
	b := NewBus("", nil)
	_, ok := b.(*NullBus)
	assert.True(t, ok)

	var buf bytes.Buffer
	b = NewBus("not a url", log.New(&buf, "", 0))
	_, ok = b.(*NullBus)
	assert.True(t, ok)
	assert.Contains(t, buf.String(), "Redis unavailable")
}

func TestNullBusReadBlocksUntilCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	var buf bytes.Buffer
	nb := NewNullBus(log.New(&buf, "", 0))
	require.NoError(t, nb.PublishCaseEvent(context.Background(), CaseMessage{CaseID: "CAS001", Action: ActionViewed}))
	assert.Contains(t, buf.String(), "viewed for case CAS001")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- nb.ReadCaseEvents(ctx, "g", "c", func(context.Context, CaseMessage) error { return nil })
	}()

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(time.Second):
		t.Fatal("ReadCaseEvents did not return after cancel")
	}

	stats, err := nb.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "null", stats["type"])
}

func TestCaseFieldsRoundTrip(t *testing.T) {
	msg := CaseMessage{CaseID: "CAS002", Action: ActionSaved, Status: "draft", Timestamp: 1705312800}

	fields := map[string]string{}
	for k, v := range caseFields(msg) {
		fields[k] = fmt.Sprint(v)
	}
	assert.Equal(t, msg, parseCaseFields(fields))
}

func TestParseTimestamp(t *testing.T) {
	ts, err := parseTimestamp("1705312800000")
	require.NoError(t, err)
	assert.Equal(t, int64(1705312800), ts)

	ts, err = parseTimestamp("2024-01-15T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, int64(1705312800), ts)

	_, err = parseTimestamp("yesterday")
	assert.Error(t, err)
}
