package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/stealth-engine/internal/logger"
	"github.com/jwebster45206/stealth-engine/internal/services/queue"
	"github.com/jwebster45206/stealth-engine/pkg/gameclock"
	"github.com/jwebster45206/stealth-engine/pkg/sim"
)

const (
	defaultInterval = 100 * time.Millisecond
	cleanupTimeout  = 5 * time.Second
	// maxDialogueSteps bounds one automatic conversation so a cyclic tree
	// cannot stall the loop.
	maxDialogueSteps = 32
)

// EffectSource is where external dialogue effects are collected.
type EffectSource interface {
	Depth(ctx context.Context, worldID uuid.UUID) (int, error)
	Dequeue(ctx context.Context, worldID uuid.UUID) ([]queue.Record, error)
	Clear(ctx context.Context, worldID uuid.UUID) error
}

// Stats counts what the worker has done since it started.
type Stats struct {
	Ticks         int
	PeriodChanges int
	Conversations int
	Effects       int
}

// Worker runs a simulation without a terminal. Conversations that open are
// answered with the highlighted response so the world keeps moving.
type Worker struct {
	id       string
	game     *sim.Simulation
	effects  EffectSource
	interval time.Duration
	log      *slog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	stats    Stats
}

// New creates a new worker instance
func New(game *sim.Simulation, log *slog.Logger, workerID string) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	if workerID == "" {
		workerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &Worker{
		id:       workerID,
		game:     game,
		interval: defaultInterval,
		log:      logger.WithWorldID(log.With("worker_id", workerID), game.World().ID.String()),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// WithInterval sets the real time between ticks.
func (w *Worker) WithInterval(d time.Duration) *Worker {
	if d > 0 {
		w.interval = d
	}
	return w
}

// WithEffects sets where emitted effects are drained from after each
// conversation.
func (w *Worker) WithEffects(src EffectSource) *Worker {
	w.effects = src
	return w
}

func (w *Worker) ID() string   { return w.id }
func (w *Worker) Stats() Stats { return w.stats }

// Start ticks the simulation until Stop is called.
func (w *Worker) Start() error {
	w.log.Info("Worker starting", "interval", w.interval.String())

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-w.ctx.Done():
			w.log.Info("Worker shutting down",
				"ticks", w.stats.Ticks,
				"period_changes", w.stats.PeriodChanges,
				"conversations", w.stats.Conversations)
			w.clearEffects()
			return nil
		case now := <-ticker.C:
			elapsed := float64(now.Sub(last).Milliseconds())
			last = now
			if err := w.Step(elapsed); err != nil {
				if w.ctx.Err() != nil {
					continue
				}
				w.clearEffects()
				return err
			}
		}
	}
}

// Stop gracefully shuts down the worker
func (w *Worker) Stop() {
	w.log.Info("Worker stop requested")
	w.cancel()
}

// Step advances the simulation by elapsedMs and settles any conversation it
// started.
func (w *Worker) Step(elapsedMs float64) error {
	report, err := w.game.Tick(w.ctx, elapsedMs, gameclock.ModeExplore)
	if err != nil {
		return fmt.Errorf("failed to tick: %w", err)
	}
	w.stats.Ticks++

	if report.PeriodChanged {
		w.stats.PeriodChanges++
		w.log.Info("Period changed",
			"period", report.Period,
			"time", report.Time.String(),
			"schedule_changes", len(report.Schedule))
	}
	for _, c := range report.Schedule {
		if c.Deferred {
			w.log.Debug("Relocation deferred", "actor_id", c.ActorID, "to", c.To)
		}
	}

	if w.game.Dialogue().Active() {
		w.converse()
	}
	return nil
}

// converse answers the open conversation until it closes.
func (w *Worker) converse() {
	w.stats.Conversations++
	for range maxDialogueSteps {
		frame, ok := w.game.Dialogue().Current()
		if !ok {
			break
		}
		w.log.Debug("Dialogue",
			"actor_id", frame.ActorID,
			"node_id", frame.NodeID,
			"responses", len(frame.Responses))
		if err := w.game.Confirm(w.ctx); err != nil {
			logger.WithError(w.log, err).Warn("Failed to answer dialogue", "node_id", frame.NodeID)
			break
		}
	}
	if w.game.Dialogue().Active() {
		w.log.Warn("Conversation did not end, walking away")
		w.game.Cancel(w.ctx)
	}
	w.drainEffects()
}

func (w *Worker) drainEffects() {
	if w.effects == nil {
		return
	}
	worldID := w.game.World().ID
	depth, err := w.effects.Depth(w.ctx, worldID)
	if err != nil {
		logger.WithError(w.log, err).Error("Failed to read effect queue depth")
		return
	}
	if depth == 0 {
		return
	}
	records, err := w.effects.Dequeue(w.ctx, worldID)
	if err != nil {
		logger.WithError(w.log, err).Error("Failed to drain effects")
		return
	}
	for _, rec := range records {
		w.stats.Effects++
		w.log.Info("Effect delivered",
			"actor_id", rec.ActorID,
			"type", rec.Type,
			"value", rec.Value)
	}
}

// clearEffects drops whatever is still queued for the world. World ids are
// not reused, so anything left behind would never be read.
func (w *Worker) clearEffects() {
	if w.effects == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()
	if err := w.effects.Clear(ctx, w.game.World().ID); err != nil {
		logger.WithError(w.log, err).Warn("Failed to clear effect queue")
	}
}
