package flow

// SelectNodes selects the given nodes. Unless additive, every other node and
// every edge is unselected. Nodes that are not selectable are skipped.
func (s *Store) SelectNodes(ids []string, additive bool) {
	s.applySelection(want(ids, true), nil, !additive)
}

// SelectEdges selects the given edges. Unless additive, every other edge and
// every node is unselected.
func (s *Store) SelectEdges(ids []string, additive bool) {
	s.applySelection(nil, want(ids, true), !additive)
}

// UnselectNodes unselects the given nodes.
func (s *Store) UnselectNodes(ids ...string) {
	s.applySelection(want(ids, false), nil, false)
}

// UnselectEdges unselects the given edges.
func (s *Store) UnselectEdges(ids ...string) {
	s.applySelection(nil, want(ids, false), false)
}

// SetSelection makes exactly the given nodes and edges selected.
func (s *Store) SetSelection(nodeIDs, edgeIDs []string) {
	s.applySelection(want(nodeIDs, true), want(edgeIDs, true), true)
}

// UnselectAll clears the selection.
func (s *Store) UnselectAll() {
	s.applySelection(nil, nil, true)
}

// SelectAll selects every selectable node and every edge.
func (s *Store) SelectAll() {
	nodes := make(map[string]bool, len(s.nodes))
	for _, n := range s.nodes {
		nodes[n.ID] = true
	}
	edges := make(map[string]bool, len(s.edges))
	for _, e := range s.edges {
		edges[e.ID] = true
	}
	s.applySelection(nodes, edges, true)
}

// SelectedNodes returns the selected nodes in list order.
func (s *Store) SelectedNodes() []Node {
	var out []Node
	for _, n := range s.nodes {
		if n.Selected {
			out = append(out, n.clone())
		}
	}
	return out
}

// SelectedEdges returns the selected edges in list order.
func (s *Store) SelectedEdges() []Edge {
	var out []Edge
	for _, e := range s.edges {
		if e.Selected {
			out = append(out, e.clone())
		}
	}
	return out
}

func want(ids []string, selected bool) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = selected
	}
	return m
}

// applySelection sets the selected flag of listed elements to the mapped
// value. With clearOthers, unlisted elements are unselected.
func (s *Store) applySelection(nodes, edges map[string]bool, clearOthers bool) {
	var changes []Change
	for i := range s.nodes {
		n := &s.nodes[i]
		sel, listed := nodes[n.ID]
		if !listed && !clearOthers {
			continue
		}
		if sel && !n.IsSelectable() {
			continue
		}
		if n.Selected != sel {
			n.Selected = sel
			changes = append(changes, Change{Kind: KindNode, Type: ChangeSelect, ID: n.ID, Selected: sel})
		}
	}
	for i := range s.edges {
		e := &s.edges[i]
		sel, listed := edges[e.ID]
		if !listed && !clearOthers {
			continue
		}
		if e.Selected != sel {
			e.Selected = sel
			changes = append(changes, Change{Kind: KindEdge, Type: ChangeSelect, ID: e.ID, Selected: sel})
		}
	}
	s.commit(changes)
}
