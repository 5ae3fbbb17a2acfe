package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jwebster45206/stealth-engine/internal/config"
	"github.com/jwebster45206/stealth-engine/internal/game"
	"github.com/jwebster45206/stealth-engine/internal/logger"
	"github.com/jwebster45206/stealth-engine/internal/services/events"
	"github.com/jwebster45206/stealth-engine/internal/services/queue"
	"github.com/jwebster45206/stealth-engine/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// The console owns the terminal, so logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer func() {
			_ = f.Close() // Ignore error in defer
		}()
		logOut = f
	}
	log := logger.SetupTo(cfg, logOut)

	ctx := context.Background()
	content, err := storage.New(cfg.DataDir, log).LoadContent(ctx)
	if err != nil {
		return err
	}

	simulation, err := game.New(cfg, content, log)
	if err != nil {
		return err
	}

	var feed effectFeed = &memoryFeed{}
	if cfg.RedisURL != "" {
		client, err := queue.NewClient(ctx, cfg.RedisURL, log)
		if err != nil {
			log.Warn("Redis unavailable, running offline", "error", err)
		} else {
			defer func() {
				_ = client.Close() // Ignore error in defer
			}()
			feed = newRedisFeed(queue.NewEffectQueue(client), simulation.World().ID)
			simulation.WithPublisher(events.NewBroadcaster(client.Redis(), log))
		}
	}
	simulation.WithSink(feed)

	changes := simulation.Start(ctx)
	log.Info("Game started",
		"world_id", simulation.World().ID.String(),
		"period", simulation.Clock().Period(),
		"schedule_changes", len(changes))

	p := tea.NewProgram(NewConsoleUI(ctx, cfg, simulation, feed, content.Rooms), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	if ui, ok := final.(ConsoleUI); ok && ui.err != nil {
		return ui.err
	}
	return nil
}
