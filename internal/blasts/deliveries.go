package blasts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/troop78/troophub/internal/models"
	"github.com/troop78/troophub/internal/store"
)

// DeliveryRecorder persists the outcome of simulated deliveries.
type DeliveryRecorder interface {
	Record(ctx context.Context, logs ...models.DeliveryLog) error
	List(ctx context.Context, blastID string) ([]models.DeliveryLog, error)
}

// StoreRecorder keeps delivery logs in the in-memory store.
type StoreRecorder struct {
	store *store.Store
}

// NewStoreRecorder creates a recorder backed by s.
func NewStoreRecorder(s *store.Store) *StoreRecorder {
	return &StoreRecorder{store: s}
}

// Record appends logs.
func (r *StoreRecorder) Record(ctx context.Context, logs ...models.DeliveryLog) error {
	return r.store.Write(func(d *store.Data) error {
		d.Deliveries = append(d.Deliveries, logs...)
		return nil
	})
}

// List returns the logs of one blast in the order they were recorded.
func (r *StoreRecorder) List(ctx context.Context, blastID string) ([]models.DeliveryLog, error) {
	var out []models.DeliveryLog
	r.store.Read(func(d *store.Data) {
		for _, l := range d.Deliveries {
			if l.BlastID == blastID {
				out = append(out, l)
			}
		}
	})
	return out, nil
}

// RedisRecorder keeps delivery logs in a Redis list per blast so that a separate worker
// process and the API share them.
type RedisRecorder struct {
	client *redis.Client
}

// NewRedisRecorder creates a Redis-backed recorder.
func NewRedisRecorder(client *redis.Client) *RedisRecorder {
	return &RedisRecorder{client: client}
}

// DeliveriesKey is the Redis list holding the delivery logs of a blast.
func DeliveriesKey(blastID string) string {
	return "blast:deliveries:" + blastID
}

// Record appends logs, grouped by blast.
func (r *RedisRecorder) Record(ctx context.Context, logs ...models.DeliveryLog) error {
	if len(logs) == 0 {
		return nil
	}
	pipe := r.client.Pipeline()
	for _, l := range logs {
		raw, err := json.Marshal(l)
		if err != nil {
			return fmt.Errorf("marshal delivery log: %w", err)
		}
		pipe.RPush(ctx, DeliveriesKey(l.BlastID), raw)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record deliveries: %w", err)
	}
	return nil
}

// List returns the logs of one blast.
func (r *RedisRecorder) List(ctx context.Context, blastID string) ([]models.DeliveryLog, error) {
	raw, err := r.client.LRange(ctx, DeliveriesKey(blastID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange deliveries: %w", err)
	}
	out := make([]models.DeliveryLog, 0, len(raw))
	for _, s := range raw {
		var l models.DeliveryLog
		if err := json.Unmarshal([]byte(s), &l); err != nil {
			return nil, fmt.Errorf("unmarshal delivery log: %w", err)
		}
		out = append(out, l)
	}
	return out, nil
}
