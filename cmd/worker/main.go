package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/stealth-engine/internal/config"
	"github.com/jwebster45206/stealth-engine/internal/game"
	"github.com/jwebster45206/stealth-engine/internal/logger"
	"github.com/jwebster45206/stealth-engine/internal/services/events"
	"github.com/jwebster45206/stealth-engine/internal/services/queue"
	"github.com/jwebster45206/stealth-engine/internal/storage"
	"github.com/jwebster45206/stealth-engine/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Stealth Engine Worker",
		"environment", cfg.Environment,
		"data_dir", cfg.DataDir,
		"time_scale", cfg.TimeScale)

	// Load content
	loadCtx, loadCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer loadCancel()
	content, err := storage.New(cfg.DataDir, log).LoadContent(loadCtx)
	if err != nil {
		log.Error("Failed to load content", "error", err)
		os.Exit(1)
	}

	simulation, err := game.New(cfg, content, log)
	if err != nil {
		log.Error("Failed to build simulation", "error", err)
		os.Exit(1)
	}

	w := worker.New(simulation, log, os.Getenv("WORKER_ID")).
		WithInterval(time.Duration(cfg.TickMs) * time.Millisecond)

	// Redis is optional; without it the world runs silently
	if cfg.RedisURL != "" {
		queueClient, err := queue.NewClient(context.Background(), cfg.RedisURL, log)
		if err != nil {
			log.Error("Failed to create queue client", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := queueClient.Close(); err != nil {
				log.Error("Error closing queue client", "error", err)
			}
		}()

		effects := queue.NewEffectQueue(queueClient)
		simulation.WithSink(effects.Sink(simulation.World().ID)).
			WithPublisher(events.NewBroadcaster(queueClient.Redis(), log))
		w.WithEffects(effects)
		log.Info("Redis connection established successfully",
			"channel", events.Channel(simulation.World().ID))
	}

	simulation.Start(context.Background())

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)
	go func() {
		done <- w.Start()
	}()

	log.Info("Worker started", "worker_id", w.ID(), "world_id", simulation.World().ID.String())

	select {
	case <-quit:
		log.Info("Worker shutdown signal received")
		w.Stop()
		<-done
	case err := <-done:
		if err != nil {
			log.Error("Worker error", "error", err)
			os.Exit(1)
		}
	}

	stats := w.Stats()
	log.Info("Worker exited",
		"ticks", stats.Ticks,
		"period_changes", stats.PeriodChanges,
		"conversations", stats.Conversations,
		"effects", stats.Effects)
}
