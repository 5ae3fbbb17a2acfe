package dialogue

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jwebster45206/stealth-engine/pkg/actor"
)

// Errors returned to hosts. The text is suitable to show the player.
var (
	ErrTooFarAway     = errors.New("they're too far away")
	ErrUnavailable    = errors.New("they're in no state to talk")
	ErrBusy           = errors.New("they're not stopping to talk")
	ErrNoDialogue     = errors.New("they have nothing to say")
	ErrSessionActive  = errors.New("already in a conversation")
	ErrNoSession      = errors.New("no conversation in progress")
	ErrNoSuchResponse = errors.New("no such response")
)

// World is the state the engine reads and mutates.
type World interface {
	StateView
	Actor(id string) (actor.NPC, bool)
	Mutate(id string, fn func(*actor.NPC)) bool
	PlayerLocation() (string, actor.Cell)
	Learn(token string) bool
}

// EffectSink receives effects the core does not handle itself, such as
// items and story events.
type EffectSink interface {
	Emit(ctx context.Context, actorID string, effect Effect) error
}

// Session is the one active conversation.
type Session struct {
	ID       uuid.UUID `json:"id"`
	TreeID   string    `json:"tree_id"`
	NodeID   string    `json:"node_id"`
	ActorID  string    `json:"actor_id"`
	Selected int       `json:"selected"`

	restore     actor.Behavior
	nodeApplied bool
}

// Frame is what a host renders for the current node.
type Frame struct {
	SessionID uuid.UUID `json:"session_id"`
	ActorID   string    `json:"actor_id"`
	NodeID    string    `json:"node_id"`
	Speaker   string    `json:"speaker"`
	Text      string    `json:"text"`
	Responses []string  `json:"responses"`
	Selected  int       `json:"selected"`
}

// Engine drives at most one conversation at a time.
type Engine struct {
	world   World
	trees   map[string]*Tree
	sink    EffectSink
	logger  *slog.Logger
	session *Session
	onClose func(Session)
}

// NewEngine creates an engine over the given trees, keyed by tree id.
func NewEngine(w World, trees map[string]*Tree, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{world: w, trees: trees, logger: logger}
}

// WithSink sets where item and event effects go.
// Returns the Engine for method chaining
func (e *Engine) WithSink(sink EffectSink) *Engine {
	e.sink = sink
	return e
}

// OnClose registers a callback run after every session closes.
func (e *Engine) OnClose(fn func(Session)) *Engine {
	e.onClose = fn
	return e
}

// Active reports whether a conversation is open.
func (e *Engine) Active() bool {
	return e.session != nil
}

// Session returns a copy of the active session.
func (e *Engine) Session() (Session, bool) {
	if e.session == nil {
		return Session{}, false
	}
	return *e.session, true
}

// Start opens a conversation with actorID. On error nothing is changed.
func (e *Engine) Start(actorID string) error {
	if e.session != nil {
		return ErrSessionActive
	}

	npc, ok := e.world.Actor(actorID)
	if !ok {
		return ErrTooFarAway
	}
	loc, cell := e.world.PlayerLocation()
	if npc.Location != loc || npc.Cell.Manhattan(cell) > 1 {
		return ErrTooFarAway
	}
	if !npc.Responsive() {
		return ErrUnavailable
	}
	switch npc.Behavior {
	case actor.BehaviorChase:
		return ErrBusy
	case actor.BehaviorIdle, actor.BehaviorPatrol, actor.BehaviorAlert, actor.BehaviorConversation:
	}
	if npc.DialogueTreeID == "" {
		return ErrNoDialogue
	}
	tree, ok := e.trees[npc.DialogueTreeID]
	if !ok {
		e.logger.Warn("Dialogue tree not found", "actor_id", actorID, "tree_id", npc.DialogueTreeID)
		return ErrNoDialogue
	}

	start, ok := e.startNode(tree, npc)
	if !ok {
		e.logger.Warn("Dialogue tree has no enterable start node", "actor_id", actorID, "tree_id", tree.ID)
		return ErrNoDialogue
	}

	e.world.Mutate(actorID, func(n *actor.NPC) {
		n.TalkedTo = true
		n.Behavior = actor.BehaviorConversation
	})
	e.session = &Session{
		ID:      uuid.New(),
		TreeID:  tree.ID,
		NodeID:  start,
		ActorID: actorID,
		restore: npc.Behavior,
	}
	e.logger.Debug("Dialogue started",
		"session_id", e.session.ID.String(),
		"actor_id", actorID,
		"node_id", start)
	return nil
}

func (e *Engine) startNode(tree *Tree, npc actor.NPC) (string, bool) {
	if npc.TalkedTo {
		if n, ok := tree.Node(ReturnGreetingNode); ok && n.When.Met(e.world, npc.ID) {
			return ReturnGreetingNode, true
		}
	}
	n, ok := tree.Node(tree.Start)
	if !ok || !n.When.Met(e.world, npc.ID) {
		return "", false
	}
	return tree.Start, true
}

// Current returns the active node for rendering.
func (e *Engine) Current() (Frame, bool) {
	node, ok := e.node()
	if !ok {
		return Frame{}, false
	}

	speaker := node.Speaker
	if speaker == "" {
		if npc, ok := e.world.Actor(e.session.ActorID); ok && npc.Name != "" {
			speaker = npc.Name
		} else {
			speaker = e.session.ActorID
		}
	}

	visible := e.visible(node)
	texts := make([]string, len(visible))
	for i, r := range visible {
		texts[i] = r.Text
	}
	return Frame{
		SessionID: e.session.ID,
		ActorID:   e.session.ActorID,
		NodeID:    node.ID,
		Speaker:   speaker,
		Text:      node.Text,
		Responses: texts,
		Selected:  e.session.Selected,
	}, true
}

// Up moves the selection up, wrapping around.
func (e *Engine) Up() {
	e.moveSelection(-1)
}

// Down moves the selection down, wrapping around.
func (e *Engine) Down() {
	e.moveSelection(1)
}

func (e *Engine) moveSelection(step int) {
	node, ok := e.node()
	if !ok {
		return
	}
	count := len(e.visible(node))
	if count == 0 {
		return
	}
	e.session.Selected = ((e.session.Selected+step)%count + count) % count
}

// Confirm selects the highlighted response.
func (e *Engine) Confirm(ctx context.Context) error {
	if e.session == nil {
		return ErrNoSession
	}
	return e.Select(ctx, e.session.Selected)
}

// Select chooses the response at index among the visible responses. A node
// without responses ends the conversation whatever the index, and a terminal
// node ends it after the chosen response's effects.
func (e *Engine) Select(ctx context.Context, index int) error {
	if e.session == nil {
		return ErrNoSession
	}
	node, ok := e.node()
	if !ok {
		e.logger.Warn("Dialogue node not found, closing",
			"tree_id", e.session.TreeID,
			"node_id", e.session.NodeID)
		e.close()
		return nil
	}

	visible := e.visible(node)
	if len(visible) == 0 {
		e.leave(ctx, node)
		e.close()
		return nil
	}
	if index < 0 || index >= len(visible) {
		return ErrNoSuchResponse
	}

	chosen := visible[index]
	e.leave(ctx, node)
	e.apply(ctx, chosen.Effects)

	if chosen.Next == "" || node.Terminal {
		e.close()
		return nil
	}
	next, ok := e.trees[e.session.TreeID].Node(chosen.Next)
	if !ok {
		e.logger.Warn("Dialogue next node not found, closing",
			"tree_id", e.session.TreeID,
			"node_id", chosen.Next)
		e.close()
		return nil
	}
	if !next.When.Met(e.world, e.session.ActorID) {
		e.close()
		return nil
	}

	e.session.NodeID = next.ID
	e.session.Selected = 0
	e.session.nodeApplied = false
	return nil
}

// Cancel closes the conversation. Effects already applied stay applied.
func (e *Engine) Cancel() {
	if e.session == nil {
		return
	}
	e.close()
}

func (e *Engine) node() (Node, bool) {
	if e.session == nil {
		return Node{}, false
	}
	return e.trees[e.session.TreeID].Node(e.session.NodeID)
}

func (e *Engine) visible(node Node) []Response {
	var out []Response
	for _, r := range node.Responses {
		if r.When.Met(e.world, e.session.ActorID) {
			out = append(out, r)
		}
	}
	return out
}

// leave applies the node's own effects, once per visit.
func (e *Engine) leave(ctx context.Context, node Node) {
	if e.session.nodeApplied {
		return
	}
	e.session.nodeApplied = true
	e.apply(ctx, node.Effects)
}

func (e *Engine) apply(ctx context.Context, effects []Effect) {
	actorID := e.session.ActorID
	for _, eff := range effects {
		if eff.External() {
			e.emit(ctx, actorID, eff)
			continue
		}
		switch eff.Type {
		case EffectKnowledge:
			e.world.Learn(eff.Value)
		case EffectRelationship:
			e.world.Mutate(actorID, func(n *actor.NPC) { n.AdjustRelationship(eff.Delta) })
		case EffectFlag:
			e.world.Mutate(actorID, func(n *actor.NPC) { n.SetFlag(eff.Value) })
		default:
			e.logger.Warn("Unknown effect type", "type", string(eff.Type))
		}
	}
}

// emit hands an item or event effect to the sink.
func (e *Engine) emit(ctx context.Context, actorID string, eff Effect) {
	if e.sink == nil {
		e.logger.Debug("No effect sink, dropping effect", "type", string(eff.Type), "value", eff.Value)
		return
	}
	if err := e.sink.Emit(ctx, actorID, eff); err != nil {
		e.logger.Error("Failed to emit dialogue effect",
			"error", err,
			"actor_id", actorID,
			"type", string(eff.Type),
			"value", eff.Value)
	}
}

func (e *Engine) close() {
	s := *e.session
	e.session = nil
	e.world.Mutate(s.ActorID, func(n *actor.NPC) {
		if n.Behavior == actor.BehaviorConversation {
			n.Behavior = s.restore
		}
	})
	e.logger.Debug("Dialogue closed", "session_id", s.ID.String(), "actor_id", s.ActorID)
	if e.onClose != nil {
		e.onClose(s)
	}
}
