package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/stealth-engine/pkg/dialogue"
	"github.com/redis/go-redis/v9"
)

// Record is one external effect waiting for the inventory or story system.
type Record struct {
	ActorID    string              `json:"actor_id"`
	Type       dialogue.EffectType `json:"type"`
	Value      string              `json:"value"`
	EnqueuedAt time.Time           `json:"enqueued_at"`
}

// EffectQueue holds external dialogue effects per world, oldest first.
type EffectQueue struct {
	client *Client
	now    func() time.Time
}

// NewEffectQueue creates an effect queue on the given client.
func NewEffectQueue(client *Client) *EffectQueue {
	return &EffectQueue{
		client: client,
		now:    time.Now,
	}
}

// Enqueue appends a record to the world's queue.
func (q *EffectQueue) Enqueue(ctx context.Context, worldID uuid.UUID, rec Record) error {
	if rec.EnqueuedAt.IsZero() {
		rec.EnqueuedAt = q.now()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal effect: %w", err)
	}

	key := q.queueKey(worldID)
	if err := q.client.rdb.RPush(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue effect: %w", err)
	}

	q.client.logger.Debug("Effect enqueued",
		"world_id", worldID.String(),
		"actor_id", rec.ActorID,
		"type", rec.Type,
		"value", rec.Value)
	return nil
}

// Dequeue removes and returns every record for a world. The read and the
// delete run in one transaction so a concurrent Enqueue is never lost.
func (q *EffectQueue) Dequeue(ctx context.Context, worldID uuid.UUID) ([]Record, error) {
	key := q.queueKey(worldID)

	var lrange *redis.StringSliceCmd
	_, err := q.client.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		lrange = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to dequeue effects: %w", err)
	}

	records, err := decode(lrange.Val())
	if err != nil {
		return nil, err
	}
	if len(records) > 0 {
		q.client.logger.Debug("Effects dequeued", "world_id", worldID.String(), "count", len(records))
	}
	return records, nil
}

// Depth returns the number of queued records.
func (q *EffectQueue) Depth(ctx context.Context, worldID uuid.UUID) (int, error) {
	n, err := q.client.rdb.LLen(ctx, q.queueKey(worldID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue depth: %w", err)
	}
	return int(n), nil
}

// Clear drops every queued record for a world.
func (q *EffectQueue) Clear(ctx context.Context, worldID uuid.UUID) error {
	if err := q.client.rdb.Del(ctx, q.queueKey(worldID)).Err(); err != nil {
		return fmt.Errorf("failed to clear effects: %w", err)
	}
	q.client.logger.Debug("Effect queue cleared", "world_id", worldID.String())
	return nil
}

// Sink binds the queue to one world so the dialogue engine can emit into it.
func (q *EffectQueue) Sink(worldID uuid.UUID) dialogue.EffectSink {
	return &worldSink{queue: q, worldID: worldID}
}

func (q *EffectQueue) queueKey(worldID uuid.UUID) string {
	return fmt.Sprintf("world-effects:%s", worldID.String())
}

type worldSink struct {
	queue   *EffectQueue
	worldID uuid.UUID
}

func (s *worldSink) Emit(ctx context.Context, actorID string, effect dialogue.Effect) error {
	return s.queue.Enqueue(ctx, s.worldID, Record{
		ActorID: actorID,
		Type:    effect.Type,
		Value:   effect.Value,
	})
}

func decode(raw []string) ([]Record, error) {
	records := make([]Record, 0, len(raw))
	for i, item := range raw {
		var rec Record
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal effect %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
