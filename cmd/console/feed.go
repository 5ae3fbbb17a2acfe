package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jwebster45206/stealth-engine/internal/services/queue"
	"github.com/jwebster45206/stealth-engine/pkg/dialogue"
)

// effectFeed collects item and event effects from dialogue so the console
// can report them once the current exchange is done.
type effectFeed interface {
	dialogue.EffectSink
	Drain(ctx context.Context) ([]queue.Record, error)
}

// memoryFeed is used when no Redis is configured.
type memoryFeed struct {
	pending []queue.Record
}

func (f *memoryFeed) Emit(_ context.Context, actorID string, effect dialogue.Effect) error {
	f.pending = append(f.pending, queue.Record{ActorID: actorID, Type: effect.Type, Value: effect.Value})
	return nil
}

func (f *memoryFeed) Drain(context.Context) ([]queue.Record, error) {
	out := f.pending
	f.pending = nil
	return out, nil
}

// redisFeed routes effects through the world's Redis effect queue.
type redisFeed struct {
	dialogue.EffectSink
	queue   *queue.EffectQueue
	worldID uuid.UUID
}

func newRedisFeed(q *queue.EffectQueue, worldID uuid.UUID) *redisFeed {
	return &redisFeed{
		EffectSink: q.Sink(worldID),
		queue:      q,
		worldID:    worldID,
	}
}

func (f *redisFeed) Drain(ctx context.Context) ([]queue.Record, error) {
	return f.queue.Dequeue(ctx, f.worldID)
}

// describe turns a drained effect into a log line.
func describe(rec queue.Record) string {
	switch rec.Type {
	case dialogue.EffectItem:
		return fmt.Sprintf("Received %s.", titleCase(rec.Value))
	case dialogue.EffectEvent:
		return fmt.Sprintf("Something has changed: %s.", titleCase(rec.Value))
	}
	return fmt.Sprintf("%s: %s", rec.Type, rec.Value)
}
