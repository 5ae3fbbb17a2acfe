// Package dialogue runs branching conversations between the player and NPCs.
//
// A Tree is an immutable graph of nodes addressed by id. Responses point at
// other nodes by id, so cycles are fine: traversal only ever looks up the
// next id.
package dialogue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// ReturnGreetingNode is the node used instead of the start node when the
// player has already spoken to the actor, if the tree defines it.
const ReturnGreetingNode = "return_greeting"

// Tree is one conversation graph.
type Tree struct {
	ID    string  `json:"id"`
	Start string  `json:"start"`
	Nodes NodeMap `json:"nodes"`
}

// Node is one conversational beat.
type Node struct {
	ID        string      `json:"id"`
	Speaker   string      `json:"speaker,omitempty"` // Defaults to the actor's name
	Text      string      `json:"text"`
	Responses []Response  `json:"responses,omitempty"`
	When      *Conditions `json:"when,omitempty"`    // Node cannot be entered unless met
	Effects   []Effect    `json:"effects,omitempty"` // Applied once when the player leaves the node
	Terminal  bool        `json:"terminal,omitempty"` // Conversation ends after any reply
}

// Response is one selectable player reply.
type Response struct {
	Text    string      `json:"text"`
	Next    string      `json:"next,omitempty"` // Empty ends the conversation
	When    *Conditions `json:"when,omitempty"` // Hidden unless met
	Effects []Effect    `json:"effects,omitempty"`
}

// NodeMap holds a tree's nodes by id.
type NodeMap map[string]Node

// UnmarshalJSON accepts either an object keyed by node id or an array of
// nodes carrying their own ids.
func (m *NodeMap) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || trimmed[0] != '[' {
		var asMap map[string]Node
		if err := json.Unmarshal(data, &asMap); err != nil {
			return fmt.Errorf("nodes: %w", err)
		}
		for id, n := range asMap {
			if n.ID == "" {
				n.ID = id
				asMap[id] = n
			}
		}
		*m = asMap
		return nil
	}

	var asArray []Node
	if err := json.Unmarshal(data, &asArray); err != nil {
		return fmt.Errorf("nodes: %w", err)
	}
	result := make(map[string]Node, len(asArray))
	for _, n := range asArray {
		if n.ID == "" {
			return fmt.Errorf("nodes: node without id: %q", n.Text)
		}
		if _, dup := result[n.ID]; dup {
			return fmt.Errorf("nodes: duplicate node id %q", n.ID)
		}
		result[n.ID] = n
	}
	*m = result
	return nil
}

// Node looks up a node by id.
func (t *Tree) Node(id string) (Node, bool) {
	if t == nil {
		return Node{}, false
	}
	n, ok := t.Nodes[id]
	return n, ok
}

// Validate reports structural problems: a missing start node, responses
// pointing at nodes that do not exist and terminal nodes whose responses
// lead on.
func (t *Tree) Validate() []error {
	var errs []error
	if _, ok := t.Nodes[t.Start]; !ok {
		errs = append(errs, fmt.Errorf("tree %s: start node %q not found", t.ID, t.Start))
	}

	ids := make([]string, 0, len(t.Nodes))
	for id := range t.Nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		for i, r := range t.Nodes[id].Responses {
			if r.Next == "" {
				continue
			}
			if t.Nodes[id].Terminal {
				errs = append(errs, fmt.Errorf("tree %s: terminal node %s response %d leads to %q", t.ID, id, i, r.Next))
				continue
			}
			if _, ok := t.Nodes[r.Next]; !ok {
				errs = append(errs, fmt.Errorf("tree %s: node %s response %d: next node %q not found", t.ID, id, i, r.Next))
			}
		}
	}
	return errs
}
