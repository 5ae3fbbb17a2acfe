package main

import (
	"context"
	"fmt"
	"maps"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/jwebster45206/stealth-engine/internal/storage"
	"github.com/jwebster45206/stealth-engine/pkg/actor"
	"github.com/jwebster45206/stealth-engine/pkg/behavior"
	"github.com/jwebster45206/stealth-engine/pkg/dialogue"
	"github.com/jwebster45206/stealth-engine/pkg/gameclock"
	"github.com/jwebster45206/stealth-engine/pkg/perception"
)

func main() {
	dataDir := "./data"
	if v := os.Getenv("DATA_DIR"); v != "" {
		dataDir = v
	}
	if len(os.Args) > 1 {
		dataDir = os.Args[1]
	}

	fmt.Printf("Validating %s...\n", dataDir)

	content, err := storage.New(dataDir, nil).LoadContent(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	validator := &ContentValidator{}
	if errs := validator.Validate(content); len(errs) > 0 {
		fmt.Fprintf(os.Stderr, "Validation errors in %s:\n%s\n", dataDir, strings.Join(errs, "\n"))
		os.Exit(1)
	}

	fmt.Printf("Content is valid! %d actors, %d dialogues, %d rooms, %d periods\n",
		len(content.Actors), len(content.Trees), len(content.Rooms), len(content.Periods))
}

// ContentValidator checks loaded content for cross references the loaders
// cannot see on their own.
type ContentValidator struct {
	errors []string
}

// Validate returns one line per problem found.
func (v *ContentValidator) Validate(c *storage.Content) []string {
	v.errors = nil

	periods := make(map[string]bool, len(c.Periods))
	wrapping := 0
	for _, p := range c.Periods {
		v.validateIDFormat("period ID", p.ID)
		if periods[p.ID] {
			v.addError(fmt.Sprintf("period '%s' is defined twice", p.ID))
		}
		periods[p.ID] = true
		if p.Wraps() {
			wrapping++
		}
	}
	if wrapping > 1 {
		v.addError(fmt.Sprintf("%d periods wrap past midnight, at most one may", wrapping))
	}

	for id := range c.Rooms {
		v.validateIDFormat("room ID", id)
	}

	for id, tree := range c.Trees {
		v.validateIDFormat("dialogue ID", id)
		v.validateTree(tree)
	}

	for _, n := range c.Actors {
		v.validateActor(c, n, periods)
	}

	v.validateStart(c)

	slices.Sort(v.errors)
	return v.errors
}

func (v *ContentValidator) validateActor(c *storage.Content, n actor.NPC, periods map[string]bool) {
	v.validateIDFormat("actor ID", n.ID)

	if _, ok := c.Rooms.Room(n.Location); !ok {
		v.addError(fmt.Sprintf("actor %s starts in unknown location '%s'", n.ID, n.Location))
	} else if r, _ := c.Rooms.Room(n.Location); !r.Walkable(n.Cell.Col, n.Cell.Row) {
		v.addError(fmt.Sprintf("actor %s starts on a wall at %d,%d", n.ID, n.Cell.Col, n.Cell.Row))
	}

	if n.DialogueTreeID != "" {
		if _, ok := c.Trees[n.DialogueTreeID]; !ok {
			v.addError(fmt.Sprintf("actor %s uses unknown dialogue tree '%s'", n.ID, n.DialogueTreeID))
		}
	}

	patrolIn := patrolLocations(n)
	for i, wp := range n.Route {
		for _, loc := range waypointLocations(wp, patrolIn) {
			r, ok := c.Rooms.Room(loc)
			if !ok {
				v.addError(fmt.Sprintf("actor %s waypoint %d is in unknown location '%s'", n.ID, i, loc))
				continue
			}
			if !r.Walkable(wp.Col, wp.Row) {
				v.addError(fmt.Sprintf("actor %s waypoint %d at %d,%d is not walkable in %s", n.ID, i, wp.Col, wp.Row, loc))
			}
		}
	}

	// Patrols walk straight lines between stops in the same room.
	if len(n.Route) > 1 {
		for i, from := range n.Route {
			j := (i + 1) % len(n.Route)
			to := n.Route[j]
			for _, loc := range waypointLocations(from, patrolIn) {
				if to.Location != "" && to.Location != loc {
					continue
				}
				r, ok := c.Rooms.Room(loc)
				if !ok || !r.Walkable(from.Col, from.Row) || !r.Walkable(to.Col, to.Row) {
					continue
				}
				if !perception.HasLineOfSight(from.Cell(), to.Cell(), r) {
					v.addError(fmt.Sprintf("actor %s route leg %d->%d crosses a wall in %s", n.ID, i, j, loc))
				}
			}
		}
	}

	// A relocated patrol appears at the room's spawn, then walks to the stop
	// after its first one in that room.
	for _, loc := range patrolTargets(n) {
		if len(n.Route) < 2 {
			break
		}
		r, ok := c.Rooms.Room(loc)
		spawn, hasSpawn := c.Rooms.Spawn(loc)
		if !ok || !hasSpawn {
			continue
		}
		first := slices.IndexFunc(n.Route, func(wp actor.Waypoint) bool {
			return wp.Location == loc || wp.Location == ""
		})
		if first < 0 {
			continue
		}
		j := (first + 1) % len(n.Route)
		next := n.Route[j]
		if (next.Location != "" && next.Location != loc) || !r.Walkable(next.Col, next.Row) {
			continue
		}
		if !perception.HasLineOfSight(spawn, next.Cell(), r) {
			v.addError(fmt.Sprintf("actor %s walks through a wall from the %s spawn to waypoint %d", n.ID, loc, j))
		}
	}

	for period, d := range n.Schedule {
		if !periods[period] {
			v.addError(fmt.Sprintf("actor %s schedules period '%s' which is not configured", n.ID, period))
		}
		if d.Location != "" {
			if _, ok := c.Rooms.Room(d.Location); !ok {
				v.addError(fmt.Sprintf("actor %s schedule for %s names unknown location '%s'", n.ID, period, d.Location))
			}
		}
	}
}

// patrolTargets returns every location a patrol directive sends the actor to.
func patrolTargets(n actor.NPC) []string {
	var locs []string
	for _, period := range slices.Sorted(maps.Keys(n.Schedule)) {
		d := n.Schedule[period]
		if d.Location != "" && behavior.Patrols(d.Behavior) && !slices.Contains(locs, d.Location) {
			locs = append(locs, d.Location)
		}
	}
	return locs
}

// patrolLocations returns where the actor can run its route: its starting
// location and every patrol target.
func patrolLocations(n actor.NPC) []string {
	locs := []string{n.Location}
	for _, loc := range patrolTargets(n) {
		if !slices.Contains(locs, loc) {
			locs = append(locs, loc)
		}
	}
	return locs
}

// waypointLocations returns the rooms a waypoint can be in. One without a
// location is in whichever room the actor is patrolling.
func waypointLocations(wp actor.Waypoint, patrolIn []string) []string {
	if wp.Location != "" {
		return []string{wp.Location}
	}
	return patrolIn
}

func (v *ContentValidator) validateTree(t *dialogue.Tree) {
	for _, err := range t.Validate() {
		v.addError(fmt.Sprintf("dialogue %s: %v", t.ID, err))
	}
	for id, node := range t.Nodes {
		v.validateIDFormat(fmt.Sprintf("dialogue %s node ID", t.ID), id)
		v.validateConditions(t.ID, id, node.When)
		for _, r := range node.Responses {
			v.validateConditions(t.ID, id, r.When)
		}
	}
}

func (v *ContentValidator) validateConditions(treeID, nodeID string, c *dialogue.Conditions) {
	if c == nil {
		return
	}
	where := fmt.Sprintf("dialogue %s node %s", treeID, nodeID)
	for name := range c.Flags {
		v.validateIDFormat(where+" flag", name)
	}
	for _, token := range append(slices.Clone(c.Knows), c.Missing...) {
		v.validateIDFormat(where+" knowledge token", token)
	}
	if c.MinRelationship != nil && c.MaxRelationship != nil && *c.MinRelationship > *c.MaxRelationship {
		v.addError(fmt.Sprintf("%s has min_relationship above max_relationship", where))
	}
}

func (v *ContentValidator) validateStart(c *storage.Content) {
	r, ok := c.Rooms.Room(c.Start.Location)
	if !ok {
		v.addError(fmt.Sprintf("start location '%s' has no room", c.Start.Location))
		return
	}
	if !r.Walkable(c.Start.Cell.Col, c.Start.Cell.Row) {
		v.addError(fmt.Sprintf("start cell %d,%d is not walkable", c.Start.Cell.Col, c.Start.Cell.Row))
	}
	if _, ok := gameclock.PeriodAt(c.Periods, c.Start.Time.Hour, c.Start.Time.Minute); !ok {
		v.addError(fmt.Sprintf("start time %s falls outside every period", c.Start.Time.String()))
	}
}

func (v *ContentValidator) validateIDFormat(fieldName, id string) {
	if id == "" {
		return
	}

	if !isValidID(id) {
		v.addError(fmt.Sprintf("%s '%s' should be lowercase snake_case", fieldName, id))
	}
}

func (v *ContentValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var validIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}
