// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jason-s-yu/highcard/internal/game"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list (queue) name for round records.
const DefaultQueueName = "highcard_rounds"

// RoundFeed pushes round records onto a Redis list for external observers.
type RoundFeed struct {
	rdb   *redis.Client
	queue string
}

// Connect opens a Redis client for addr/db and verifies it with a ping.
func Connect(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// NewRoundFeed publishes to queue on rdb. An empty queue selects DefaultQueueName.
func NewRoundFeed(rdb *redis.Client, queue string) *RoundFeed {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &RoundFeed{rdb: rdb, queue: queue}
}

// Queue returns the list name records are pushed to.
func (f *RoundFeed) Queue() string {
	return f.queue
}

// PublishRound serializes the record to JSON, then pushes it to the Redis queue.
func (f *RoundFeed) PublishRound(ctx context.Context, rec game.RoundRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal RoundRecord: %w", err)
	}
	if err := f.rdb.RPush(ctx, f.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", f.queue, err)
	}
	return nil
}

// Close releases the Redis client.
func (f *RoundFeed) Close() error {
	return f.rdb.Close()
}

// Next blocks up to wait for the oldest record on the queue. It returns
// (nil, nil) when the wait elapses with nothing queued.
func (f *RoundFeed) Next(ctx context.Context, wait time.Duration) (*game.RoundRecord, error) {
	res, err := f.rdb.BLPop(ctx, wait, f.queue).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("BLPop %s: %w", f.queue, err)
	}
	// res[0] is the queue name and res[1] the payload.
	if len(res) < 2 {
		return nil, nil
	}
	var rec game.RoundRecord
	if err := json.Unmarshal([]byte(res[1]), &rec); err != nil {
		return nil, fmt.Errorf("invalid round record: %w", err)
	}
	return &rec, nil
}
