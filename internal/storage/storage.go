package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jwebster45206/stealth-engine/pkg/actor"
	"github.com/jwebster45206/stealth-engine/pkg/dialogue"
	"github.com/jwebster45206/stealth-engine/pkg/gameclock"
	"github.com/jwebster45206/stealth-engine/pkg/room"
)

// Storage loads static game content from the filesystem. Content is read
// once at startup and treated as immutable afterwards.
type Storage struct {
	logger  *slog.Logger
	dataDir string
}

// Start is where and when a new game begins.
type Start struct {
	Location string              `json:"location"`
	Cell     actor.Cell          `json:"cell"`
	Day      int                 `json:"day"`
	Time     gameclock.ClockTime `json:"time"`
}

// GameTime returns the start as a point on the game calendar.
func (s Start) GameTime() gameclock.GameTime {
	return gameclock.At(s.Day, s.Time.Hour, s.Time.Minute)
}

// Content is everything a simulation is built from.
type Content struct {
	Actors  []actor.NPC
	Trees   map[string]*dialogue.Tree
	Rooms   room.Set
	Periods []gameclock.Period
	Start   Start
}

// New creates a filesystem store rooted at dataDir.
func New(dataDir string, logger *slog.Logger) *Storage {
	if dataDir == "" {
		dataDir = "./data"
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Storage{
		logger:  logger,
		dataDir: dataDir,
	}
}

// LoadContent loads every kind of content.
func (s *Storage) LoadContent(ctx context.Context) (*Content, error) {
	var c Content
	var err error

	if c.Actors, err = s.LoadActors(ctx); err != nil {
		return nil, err
	}
	if c.Trees, err = s.LoadDialogues(ctx); err != nil {
		return nil, err
	}
	if c.Rooms, err = s.LoadRooms(ctx); err != nil {
		return nil, err
	}
	if c.Periods, err = s.LoadPeriods(ctx); err != nil {
		return nil, err
	}
	if c.Start, err = s.LoadStart(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("Content loaded",
		"data_dir", s.dataDir,
		"actors", len(c.Actors),
		"dialogues", len(c.Trees),
		"rooms", len(c.Rooms),
		"periods", len(c.Periods))
	return &c, nil
}

// LoadActors reads actors/*.json, one actor per file. The file name is the
// actor id unless the file sets one.
func (s *Storage) LoadActors(ctx context.Context) ([]actor.NPC, error) {
	var npcs []actor.NPC
	err := s.eachJSON(ctx, "actors", func(id string, data []byte) error {
		var n actor.NPC
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		if n.ID == "" {
			n.ID = id
		}
		if err := n.BuildVitals(); err != nil {
			return err
		}
		npcs = append(npcs, n)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load actors: %w", err)
	}
	slices.SortFunc(npcs, func(a, b actor.NPC) int { return strings.Compare(a.ID, b.ID) })
	return npcs, nil
}

// LoadDialogues reads dialogues/*.json keyed by tree id.
func (s *Storage) LoadDialogues(ctx context.Context) (map[string]*dialogue.Tree, error) {
	trees := make(map[string]*dialogue.Tree)
	err := s.eachJSON(ctx, "dialogues", func(id string, data []byte) error {
		var t dialogue.Tree
		if err := json.Unmarshal(data, &t); err != nil {
			return err
		}
		if t.ID == "" {
			t.ID = id
		}
		trees[t.ID] = &t
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load dialogues: %w", err)
	}
	return trees, nil
}

// LoadRooms reads rooms/*.json keyed by location id.
func (s *Storage) LoadRooms(ctx context.Context) (room.Set, error) {
	rooms := make(room.Set)
	err := s.eachJSON(ctx, "rooms", func(id string, data []byte) error {
		var r room.Room
		if err := json.Unmarshal(data, &r); err != nil {
			return err
		}
		if r.ID == "" {
			r.ID = id
		}
		rooms[r.ID] = &r
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load rooms: %w", err)
	}
	return rooms, nil
}

// LoadPeriods reads periods.json. Order matters: the first matching window wins.
func (s *Storage) LoadPeriods(ctx context.Context) ([]gameclock.Period, error) {
	var periods []gameclock.Period
	if err := s.readJSON(ctx, "periods.json", &periods); err != nil {
		return nil, fmt.Errorf("failed to load periods: %w", err)
	}
	return periods, nil
}

// LoadStart reads start.json.
func (s *Storage) LoadStart(ctx context.Context) (Start, error) {
	st := Start{Day: 1}
	if err := s.readJSON(ctx, "start.json", &st); err != nil {
		return Start{}, fmt.Errorf("failed to load start: %w", err)
	}
	return st, nil
}

func (s *Storage) readJSON(ctx context.Context, name string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(s.dataDir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}
	return nil
}

// eachJSON calls fn for every .json file in dir, in name order. A missing
// directory holds no content.
func (s *Storage) eachJSON(ctx context.Context, dir string, fn func(id string, data []byte) error) error {
	path := filepath.Join(s.dataDir, dir)
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Debug("Content directory not found", "path", path)
			return nil
		}
		return fmt.Errorf("failed to read %s directory: %w", dir, err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		file := filepath.Join(path, entry.Name())
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		if err := fn(id, data); err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
	}
	return nil
}
