package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jwebster45206/stealth-engine/pkg/dialogue"
	"github.com/jwebster45206/stealth-engine/pkg/gameclock"
	"github.com/jwebster45206/stealth-engine/pkg/world"
	"github.com/redis/go-redis/v9"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeTick           EventType = "world.tick"
	EventTypePeriodChanged  EventType = "world.period_changed"
	EventTypeDialogueOpened EventType = "dialogue.opened"
	EventTypeDialogueClosed EventType = "dialogue.closed"
)

// Event represents a generic event structure
type Event struct {
	Type    EventType      `json:"type"`
	WorldID string         `json:"world_id,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// Broadcaster publishes simulation events to Redis Pub/Sub so observers
// outside the game loop can follow a world.
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// Channel returns the pub/sub channel for a world.
func Channel(worldID uuid.UUID) string {
	return fmt.Sprintf("game-events:%s", worldID.String())
}

// PublishTick publishes a world.tick event with the actors in the player's location
func (b *Broadcaster) PublishTick(ctx context.Context, worldID uuid.UUID, t gameclock.GameTime, location string, snaps []world.Snapshot) error {
	event := Event{
		Type:    EventTypeTick,
		WorldID: worldID.String(),
		Data: map[string]any{
			"time":     t.String(),
			"location": location,
			"actors":   snaps,
		},
	}
	return b.publishToWorld(ctx, worldID, event)
}

// PublishPeriodChanged publishes a world.period_changed event
func (b *Broadcaster) PublishPeriodChanged(ctx context.Context, worldID uuid.UUID, period string, t gameclock.GameTime) error {
	event := Event{
		Type:    EventTypePeriodChanged,
		WorldID: worldID.String(),
		Data: map[string]any{
			"period": period,
			"time":   t.String(),
		},
	}
	return b.publishToWorld(ctx, worldID, event)
}

// PublishDialogueOpened publishes a dialogue.opened event with the first frame
func (b *Broadcaster) PublishDialogueOpened(ctx context.Context, worldID uuid.UUID, frame dialogue.Frame) error {
	event := Event{
		Type:    EventTypeDialogueOpened,
		WorldID: worldID.String(),
		Data: map[string]any{
			"session_id": frame.SessionID.String(),
			"actor_id":   frame.ActorID,
			"node_id":    frame.NodeID,
			"speaker":    frame.Speaker,
			"text":       frame.Text,
			"responses":  frame.Responses,
		},
	}
	return b.publishToWorld(ctx, worldID, event)
}

// PublishDialogueClosed publishes a dialogue.closed event
func (b *Broadcaster) PublishDialogueClosed(ctx context.Context, worldID uuid.UUID, sessionID uuid.UUID, actorID string) error {
	event := Event{
		Type:    EventTypeDialogueClosed,
		WorldID: worldID.String(),
		Data: map[string]any{
			"session_id": sessionID.String(),
			"actor_id":   actorID,
		},
	}
	return b.publishToWorld(ctx, worldID, event)
}

// publishToWorld publishes an event to the world-specific channel
func (b *Broadcaster) publishToWorld(ctx context.Context, worldID uuid.UUID, event Event) error {
	channel := Channel(worldID)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
	)

	return nil
}
