package bus

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// streamMaxLen caps the cases stream; XADD trims approximately.
const streamMaxLen = 10000

// RedisBus provides Redis Streams-based case notifications
type RedisBus struct {
	client *redis.Client
	logger *log.Logger
}

// StreamMessage represents a message in a Redis Stream
type StreamMessage struct {
	ID     string            `json:"id"`
	Fields map[string]string `json:"fields"`
}

// StreamHandler is a function that processes stream messages
type StreamHandler func(ctx context.Context, message StreamMessage) error

// NewRedisBus connects to redisURL and pings it.
func NewRedisBus(redisURL string, logger *log.Logger) (*RedisBus, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if logger == nil {
		logger = log.New(log.Writer(), "[RedisBus] ", log.LstdFlags)
	}

	return &RedisBus{client: client, logger: logger}, nil
}

// Close closes the Redis connection
func (rb *RedisBus) Close() error {
	return rb.client.Close()
}

// PublishCaseEvent appends msg to the cases stream.
func (rb *RedisBus) PublishCaseEvent(ctx context.Context, msg CaseMessage) error {
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().Unix()
	}
	result := rb.client.XAdd(ctx, &redis.XAddArgs{
		Stream: CasesStream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: caseFields(msg),
	})
	if err := result.Err(); err != nil {
		return fmt.Errorf("failed to publish case %s: %w", msg.CaseID, err)
	}

	rb.logger.Printf("Published %s for case %s", msg.Action, msg.CaseID)
	return nil
}

// CreateConsumerGroup creates a consumer group for a stream if it doesn't exist
func (rb *RedisBus) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	err := rb.client.XGroupCreateMkStream(ctx, stream, group, "$").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group %s for stream %s: %w", group, stream, err)
	}

	rb.logger.Printf("Consumer group %s ready for stream %s", group, stream)
	return nil
}

// ReadStream reads messages from a stream using consumer groups. Messages are
// acknowledged only when handler succeeds.
func (rb *RedisBus) ReadStream(ctx context.Context, stream, group, consumer string, handler StreamHandler) error {
	if err := rb.CreateConsumerGroup(ctx, stream, group); err != nil {
		return err
	}

	rb.logger.Printf("Starting stream reader for %s (group: %s, consumer: %s)", stream, group, consumer)

	for {
		select {
		case <-ctx.Done():
			rb.logger.Printf("Stream reader for %s stopping due to context cancellation", stream)
			return ctx.Err()
		default:
		}

		result := rb.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    group,
			Consumer: consumer,
			Streams:  []string{stream, ">"},
			Count:    10,
			Block:    1 * time.Second,
		})
		if err := result.Err(); err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			rb.logger.Printf("Error reading from stream %s: %v", stream, err)
			select {
			case <-ctx.Done():
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, xs := range result.Val() {
			for _, message := range xs.Messages {
				streamMsg := StreamMessage{ID: message.ID, Fields: make(map[string]string)}
				for key, value := range message.Values {
					if s, ok := value.(string); ok {
						streamMsg.Fields[key] = s
					}
				}

				if err := handler(ctx, streamMsg); err != nil {
					rb.logger.Printf("Error processing message %s: %v", message.ID, err)
					continue
				}
				if err := rb.client.XAck(ctx, xs.Stream, group, message.ID).Err(); err != nil {
					rb.logger.Printf("Error acknowledging message %s: %v", message.ID, err)
				}
			}
		}
	}
}

// ReadCaseEvents consumes the cases stream.
func (rb *RedisBus) ReadCaseEvents(ctx context.Context, group, consumer string, handler CaseHandler) error {
	return rb.ReadStream(ctx, CasesStream, group, consumer, func(ctx context.Context, m StreamMessage) error {
		return handler(ctx, parseCaseFields(m.Fields))
	})
}

// Flush deletes the cases stream and its consumer groups.
func (rb *RedisBus) Flush(ctx context.Context) error {
	if err := rb.client.Del(ctx, CasesStream).Err(); err != nil {
		return fmt.Errorf("failed to delete stream %s: %w", CasesStream, err)
	}
	return nil
}

// HealthCheck performs a health check on the Redis connection
func (rb *RedisBus) HealthCheck(ctx context.Context) error {
	return rb.client.Ping(ctx).Err()
}

// GetStats returns basic statistics about the cases stream
func (rb *RedisBus) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := map[string]interface{}{"type": "redis"}

	if info, err := rb.client.XInfoStream(ctx, CasesStream).Result(); err == nil {
		stats["cases_stream"] = map[string]interface{}{
			"length":         info.Length,
			"first_entry_id": info.FirstEntry.ID,
			"last_entry_id":  info.LastEntry.ID,
		}
	}
	if groups, err := rb.client.XInfoGroups(ctx, CasesStream).Result(); err == nil {
		stats["cases_consumer_groups"] = len(groups)
	}
	return stats, nil
}

func caseFields(msg CaseMessage) map[string]interface{} {
	return map[string]interface{}{
		"case_id":   msg.CaseID,
		"action":    msg.Action,
		"status":    msg.Status,
		"timestamp": msg.Timestamp,
	}
}

func parseCaseFields(fields map[string]string) CaseMessage {
	msg := CaseMessage{
		CaseID: fields["case_id"],
		Action: fields["action"],
		Status: fields["status"],
	}
	if ts, err := parseTimestamp(fields["timestamp"]); err == nil {
		msg.Timestamp = ts
	}
	return msg
}

// parseTimestamp accepts epoch seconds, epoch milliseconds or RFC3339.
func parseTimestamp(timestamp string) (int64, error) {
	if timestamp == "" {
		return time.Now().Unix(), nil
	}

	if n, err := strconv.ParseInt(timestamp, 10, 64); err == nil {
		// 13+ digits is milliseconds
		if n > 1_000_000_000_000 {
			return n / 1000, nil
		}
		return n, nil
	}

	if ts, err := time.Parse(time.RFC3339Nano, timestamp); err == nil {
		return ts.Unix(), nil
	}

	return time.Now().Unix(), fmt.Errorf("unable to parse timestamp: %s", timestamp)
}
