package graph

import "backend/internal/models"

// Arena holds a mind map's topics in a flat id-keyed table with a
// parent -> children index. The index is built once per mutation batch
// instead of re-filtering the node list on every traversal.
type Arena struct {
	nodes    map[string]*models.DiagramNode
	children map[string][]string
	order    []string // insertion order, kept for deterministic output
}

// NewArena indexes the given nodes. Non-mind-topic nodes are ignored.
func NewArena(nodes []models.DiagramNode) *Arena {
	a := &Arena{
		nodes:    make(map[string]*models.DiagramNode, len(nodes)),
		children: make(map[string][]string),
	}
	for i := range nodes {
		n := &nodes[i]
		if n.Kind != models.KindMindTopic || n.Data.MindTopic == nil {
			continue
		}
		if _, dup := a.nodes[n.ID]; dup {
			continue
		}
		a.nodes[n.ID] = n
		a.order = append(a.order, n.ID)
	}
	a.reindex()
	return a
}

func (a *Arena) reindex() {
	a.children = make(map[string][]string, len(a.nodes))
	for _, id := range a.order {
		n := a.nodes[id]
		parent := n.Data.MindTopic.ParentID
		if parent == "" {
			continue
		}
		// Topics pointing at a missing parent are treated as detached
		// roots rather than dropped.
		if _, ok := a.nodes[parent]; !ok {
			continue
		}
		a.children[parent] = append(a.children[parent], id)
	}
}

// Node returns the topic with the given id, or nil.
func (a *Arena) Node(id string) *models.DiagramNode {
	return a.nodes[id]
}

// Children returns the direct child ids of a topic in insertion order.
func (a *Arena) Children(id string) []string {
	return a.children[id]
}

// Descendants returns every topic id below the given one, depth-first,
// excluding the topic itself.
func (a *Arena) Descendants(id string) []string {
	var out []string
	stack := append([]string(nil), a.children[id]...)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, cur)
		kids := a.children[cur]
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	return out
}

// Attach reparents a topic and rebuilds the child index. Attaching a
// node under one of its own descendants is refused.
func (a *Arena) Attach(id, parentID string) error {
	n := a.nodes[id]
	if n == nil {
		return ErrUnresolvedReference
	}
	if parentID != "" {
		if a.nodes[parentID] == nil {
			return ErrUnresolvedReference
		}
		for _, d := range a.Descendants(id) {
			if d == parentID {
				return ErrInvalidArgument
			}
		}
		if parentID == id {
			return ErrInvalidArgument
		}
	}
	n.Data.MindTopic.ParentID = parentID
	a.reindex()
	return nil
}

// Detach removes a topic and its whole subtree, returning the removed
// ids (the topic first, then its descendants).
func (a *Arena) Detach(id string) []string {
	if a.nodes[id] == nil {
		return nil
	}
	removed := append([]string{id}, a.Descendants(id)...)
	drop := make(map[string]bool, len(removed))
	for _, r := range removed {
		drop[r] = true
		delete(a.nodes, r)
	}
	kept := a.order[:0]
	for _, o := range a.order {
		if !drop[o] {
			kept = append(kept, o)
		}
	}
	a.order = kept
	a.reindex()
	return removed
}

// Len reports the number of indexed topics.
func (a *Arena) Len() int { return len(a.nodes) }
