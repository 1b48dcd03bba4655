package flow

import (
	"io"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/MomoChenisMe/xyflow-sub001/pkg/geometry"
)

// SelectedZBoost is added to the stacking order of selected nodes when
// [WithElevateNodesOnSelect] is on.
const SelectedZBoost = 1000

// Option configures a [Store].
type Option func(*Store)

// WithLogger sets the logger used for debug output and integrity warnings.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDefaultNodeSize sets the size assumed for unmeasured nodes.
func WithDefaultNodeSize(width, height float64) Option {
	return func(s *Store) {
		if width > 0 && height > 0 {
			s.defaultSize = geometry.Dimensions{Width: width, Height: height}
		}
	}
}

// WithStrictEdges drops edges whose endpoints do not exist, both on insert and
// when the node list is replaced.
func WithStrictEdges(strict bool) Option {
	return func(s *Store) { s.strictEdges = strict }
}

// WithElevateNodesOnSelect raises selected nodes above unselected ones.
func WithElevateNodesOnSelect(on bool) Option {
	return func(s *Store) { s.elevateOnSelect = on }
}

type listenerEntry struct {
	id int
	fn Listener
}

// Store owns nodes, edges and the derived node lookup.
type Store struct {
	nodes []Node
	edges []Edge

	nodeIndex map[string]int
	edgeIndex map[string]int
	lookup    map[string]*InternalNode

	defaultSize     geometry.Dimensions
	strictEdges     bool
	elevateOnSelect bool
	logger          *log.Logger

	listeners    []listenerEntry
	nextListener int
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		nodeIndex:   map[string]int{},
		edgeIndex:   map[string]int{},
		lookup:      map[string]*InternalNode{},
		defaultSize: geometry.Dimensions{Width: DefaultNodeWidth, Height: DefaultNodeHeight},
		logger:      log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultNodeSize returns the size assumed for unmeasured nodes.
func (s *Store) DefaultNodeSize() geometry.Dimensions { return s.defaultSize }

// Subscribe registers fn to receive every applied change set. The returned
// function removes the registration.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	id := s.nextListener
	s.nextListener++
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: fn})
	return func() {
		s.listeners = slices.DeleteFunc(s.listeners, func(e listenerEntry) bool { return e.id == id })
	}
}

// commit rebuilds derived state and then notifies listeners.
func (s *Store) commit(changes []Change) {
	s.rebuild()
	if len(changes) == 0 {
		return
	}
	for _, l := range slices.Clone(s.listeners) {
		l.fn(changes)
	}
}

func (s *Store) rebuild() {
	s.nodeIndex = make(map[string]int, len(s.nodes))
	for i, n := range s.nodes {
		s.nodeIndex[n.ID] = i
	}
	s.edgeIndex = make(map[string]int, len(s.edges))
	for i, e := range s.edges {
		s.edgeIndex[e.ID] = i
	}

	lookup := make(map[string]*InternalNode, len(s.nodes))
	for _, n := range s.nodes {
		dims := s.defaultSize
		if n.Measured() {
			dims = geometry.Dimensions{Width: n.Width, Height: n.Height}
		}
		lookup[n.ID] = &InternalNode{Node: n, Internals: Internals{Dimensions: dims}}
	}

	done := make(map[string]bool, len(lookup))
	var resolve func(id string, depth int) *InternalNode
	resolve = func(id string, depth int) *InternalNode {
		in := lookup[id]
		if done[id] {
			return in
		}
		pos := in.Node.Position
		z := in.Node.ZIndex
		if s.elevateOnSelect && in.Node.Selected {
			z += SelectedZBoost
		}
		// depth bounds parent cycles, which resolve as if rooted.
		if pid := in.Node.ParentID; pid != "" && pid != id && depth < len(lookup) {
			if _, ok := lookup[pid]; ok {
				parent := resolve(pid, depth+1)
				pos = pos.Add(parent.Internals.PositionAbsolute)
				z = max(z, parent.Internals.Z+1)
			}
		}
		in.Internals.PositionAbsolute = pos
		in.Internals.Z = z
		done[id] = true
		return in
	}
	for _, n := range s.nodes {
		resolve(n.ID, 0)
	}
	s.lookup = lookup
}

// ============================================================================
// Reads
// ============================================================================

// Nodes returns a copy of the node list.
func (s *Store) Nodes() []Node {
	out := make([]Node, len(s.nodes))
	for i, n := range s.nodes {
		out[i] = n.clone()
	}
	return out
}

// Edges returns a copy of the edge list.
func (s *Store) Edges() []Edge {
	out := make([]Edge, len(s.edges))
	for i, e := range s.edges {
		out[i] = e.clone()
	}
	return out
}

// Node returns the node with the given id.
func (s *Store) Node(id string) (Node, bool) {
	i, ok := s.nodeIndex[id]
	if !ok {
		return Node{}, false
	}
	return s.nodes[i].clone(), true
}

// Edge returns the edge with the given id.
func (s *Store) Edge(id string) (Edge, bool) {
	i, ok := s.edgeIndex[id]
	if !ok {
		return Edge{}, false
	}
	return s.edges[i].clone(), true
}

// InternalNode returns the derived view of a node.
func (s *Store) InternalNode(id string) (InternalNode, bool) {
	in, ok := s.lookup[id]
	if !ok {
		return InternalNode{}, false
	}
	return *in, true
}

// InternalNodes returns the derived view of every node in list order.
func (s *Store) InternalNodes() []InternalNode {
	out := make([]InternalNode, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, *s.lookup[n.ID])
	}
	return out
}

// NodeCount returns the number of nodes.
func (s *Store) NodeCount() int { return len(s.nodes) }

// EdgeCount returns the number of edges.
func (s *Store) EdgeCount() int { return len(s.edges) }

// RenderableEdges returns the visible edges whose endpoints both exist and are
// visible.
func (s *Store) RenderableEdges() []Edge {
	var out []Edge
	for _, e := range s.edges {
		if e.Hidden || !s.visibleNode(e.Source) || !s.visibleNode(e.Target) {
			continue
		}
		out = append(out, e.clone())
	}
	return out
}

func (s *Store) visibleNode(id string) bool {
	in, ok := s.lookup[id]
	return ok && !in.Node.Hidden
}

// NodesBounds returns the union of the boxes of visible nodes accepted by
// filter. A nil filter accepts every visible node.
func (s *Store) NodesBounds(filter func(InternalNode) bool) geometry.Rect {
	return geometry.GetNodesBounds(s.InternalNodes(), func(n InternalNode) bool {
		return !n.Node.Hidden && (filter == nil || filter(n))
	})
}

// ConnectedEdges returns the edges touching any of the given nodes.
func (s *Store) ConnectedEdges(nodeIDs ...string) []Edge {
	ids := make(map[string]bool, len(nodeIDs))
	for _, id := range nodeIDs {
		ids[id] = true
	}
	var out []Edge
	for _, e := range s.edges {
		if ids[e.Source] || ids[e.Target] {
			out = append(out, e.clone())
		}
	}
	return out
}

// Incomers returns the nodes with an edge into id.
func (s *Store) Incomers(id string) []Node {
	return s.neighbours(id, func(e Edge) (string, bool) { return e.Source, e.Target == id })
}

// Outgoers returns the nodes id has an edge to.
func (s *Store) Outgoers(id string) []Node {
	return s.neighbours(id, func(e Edge) (string, bool) { return e.Target, e.Source == id })
}

func (s *Store) neighbours(id string, pick func(Edge) (string, bool)) []Node {
	seen := map[string]bool{}
	var out []Node
	for _, e := range s.edges {
		other, ok := pick(e)
		if !ok || seen[other] {
			continue
		}
		if i, exists := s.nodeIndex[other]; exists {
			seen[other] = true
			out = append(out, s.nodes[i].clone())
		}
	}
	return out
}

// ============================================================================
// Replace and insert
// ============================================================================

// SetNodes replaces the node list. Nodes without an id get a generated one;
// later duplicates of an id are dropped.
func (s *Store) SetNodes(nodes []Node) {
	s.nodes = s.nodes[:0:0]
	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		n = n.clone()
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		if seen[n.ID] {
			s.logger.Warn("duplicate node id dropped", "id", n.ID)
			continue
		}
		seen[n.ID] = true
		s.nodes = append(s.nodes, n)
	}
	changes := []Change{{Kind: KindNode, Type: ChangeReset}}

	if s.strictEdges {
		before := len(s.edges)
		s.edges = slices.DeleteFunc(s.edges, func(e Edge) bool { return !seen[e.Source] || !seen[e.Target] })
		if len(s.edges) != before {
			changes = append(changes, Change{Kind: KindEdge, Type: ChangeReset})
		}
	}
	s.logger.Debug("nodes replaced", "count", len(s.nodes))
	s.commit(changes)
}

// SetEdges replaces the edge list.
func (s *Store) SetEdges(edges []Edge) {
	s.edges = s.edges[:0:0]
	s.edgeIndex = map[string]int{}
	for _, e := range edges {
		if e, ok := s.acceptEdge(e); ok {
			s.edgeIndex[e.ID] = len(s.edges)
			s.edges = append(s.edges, e)
		}
	}
	s.logger.Debug("edges replaced", "count", len(s.edges))
	s.commit([]Change{{Kind: KindEdge, Type: ChangeReset}})
}

// AddNodes appends nodes and returns the ones actually added. Ids already in
// the store are skipped.
func (s *Store) AddNodes(nodes ...Node) []Node {
	var added []Node
	var changes []Change
	for _, n := range nodes {
		n = n.clone()
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		if _, exists := s.nodeIndex[n.ID]; exists {
			s.logger.Warn("node already exists", "id", n.ID)
			continue
		}
		s.nodeIndex[n.ID] = len(s.nodes)
		s.nodes = append(s.nodes, n)
		added = append(added, n.clone())
		c := n.clone()
		changes = append(changes, Change{Kind: KindNode, Type: ChangeAdd, ID: n.ID, Node: &c})
	}
	s.commit(changes)
	return added
}

// AddEdges appends edges and returns the ones actually added.
func (s *Store) AddEdges(edges ...Edge) []Edge {
	added := make([]Edge, 0, len(edges))
	for _, e := range edges {
		e, ok := s.acceptEdge(e)
		if !ok {
			continue
		}
		s.edgeIndex[e.ID] = len(s.edges)
		s.edges = append(s.edges, e)
		added = append(added, e.clone())
	}
	changes := make([]Change, len(added))
	for i := range added {
		c := added[i].clone()
		changes[i] = Change{Kind: KindEdge, Type: ChangeAdd, ID: c.ID, Edge: &c}
	}
	s.commit(changes)
	return added
}

// AddEdge creates an edge from a connection. It reports false when an edge
// joining the same handles already exists or the connection is incomplete.
func (s *Store) AddEdge(c Connection) (Edge, bool) {
	if c.Source == "" || c.Target == "" {
		return Edge{}, false
	}
	for _, e := range s.edges {
		if c.connects(e) {
			return Edge{}, false
		}
	}
	added := s.AddEdges(Edge{
		ID:           c.EdgeID(),
		Source:       c.Source,
		Target:       c.Target,
		SourceHandle: c.SourceHandle,
		TargetHandle: c.TargetHandle,
	})
	if len(added) == 0 {
		return Edge{}, false
	}
	return added[0], true
}

// acceptEdge validates e for insertion and fills in a missing id.
func (s *Store) acceptEdge(e Edge) (Edge, bool) {
	e = e.clone()
	if e.Source == "" || e.Target == "" {
		s.logger.Warn("edge without source or target dropped", "id", e.ID)
		return e, false
	}
	if e.ID == "" {
		e.ID = Connection{Source: e.Source, Target: e.Target, SourceHandle: e.SourceHandle, TargetHandle: e.TargetHandle}.EdgeID()
	}
	if _, exists := s.edgeIndex[e.ID]; exists {
		s.logger.Warn("edge already exists", "id", e.ID)
		return e, false
	}
	if s.strictEdges {
		_, okS := s.nodeIndex[e.Source]
		_, okT := s.nodeIndex[e.Target]
		if !okS || !okT {
			s.logger.Warn("dangling edge dropped", "id", e.ID, "source", e.Source, "target", e.Target)
			return e, false
		}
	}
	return e, true
}

// ============================================================================
// Updates
// ============================================================================

// UpdateNode applies p to the node with the given id. Unknown ids are ignored.
func (s *Store) UpdateNode(id string, p NodePatch) bool {
	i, ok := s.nodeIndex[id]
	if !ok {
		return false
	}
	n := &s.nodes[i]
	var changes []Change

	if p.Position != nil && *p.Position != n.Position {
		n.Position = *p.Position
		pos := n.Position
		changes = append(changes, Change{Kind: KindNode, Type: ChangePosition, ID: id, Position: &pos})
	}
	if p.Selected != nil && *p.Selected != n.Selected {
		n.Selected = *p.Selected
		changes = append(changes, Change{Kind: KindNode, Type: ChangeSelect, ID: id, Selected: n.Selected})
	}
	if p.Width != nil || p.Height != nil {
		if p.Width != nil {
			n.Width = *p.Width
		}
		if p.Height != nil {
			n.Height = *p.Height
		}
		dims := geometry.Dimensions{Width: n.Width, Height: n.Height}
		changes = append(changes, Change{Kind: KindNode, Type: ChangeDimensions, ID: id, Dimensions: &dims})
	}

	replaced := false
	set := func(apply func()) {
		apply()
		replaced = true
	}
	if p.Type != nil {
		set(func() { n.Type = *p.Type })
	}
	if p.Data != nil {
		set(func() {
			if n.Data == nil {
				n.Data = make(map[string]any, len(p.Data))
			}
			for k, v := range p.Data {
				n.Data[k] = v
			}
		})
	}
	if p.Draggable != nil {
		set(func() { n.Draggable = Ptr(*p.Draggable) })
	}
	if p.Selectable != nil {
		set(func() { n.Selectable = Ptr(*p.Selectable) })
	}
	if p.Connectable != nil {
		set(func() { n.Connectable = Ptr(*p.Connectable) })
	}
	if p.Hidden != nil {
		set(func() { n.Hidden = *p.Hidden })
	}
	if p.ParentID != nil {
		set(func() { n.ParentID = *p.ParentID })
	}
	if p.ZIndex != nil {
		set(func() { n.ZIndex = *p.ZIndex })
	}
	if replaced {
		c := n.clone()
		changes = append(changes, Change{Kind: KindNode, Type: ChangeReplace, ID: id, Node: &c})
	}
	s.commit(changes)
	return true
}

// UpdateNodeFunc builds a patch from a copy of the current node and applies it
// like [Store.UpdateNode]. Fields the patch leaves nil are kept.
func (s *Store) UpdateNodeFunc(id string, fn func(Node) NodePatch) bool {
	i, ok := s.nodeIndex[id]
	if !ok {
		return false
	}
	return s.UpdateNode(id, fn(s.nodes[i].clone()))
}

// replaceNode swaps in fn's result wholesale. The id cannot change.
func (s *Store) replaceNode(id string, fn func(Node) Node) bool {
	i, ok := s.nodeIndex[id]
	if !ok {
		return false
	}
	n := fn(s.nodes[i].clone()).clone()
	n.ID = id
	s.nodes[i] = n
	c := n.clone()
	s.commit([]Change{{Kind: KindNode, Type: ChangeReplace, ID: id, Node: &c}})
	return true
}

// UpdateNodeData merges data into the node's data, or replaces it when
// replace is true.
func (s *Store) UpdateNodeData(id string, data map[string]any, replace bool) bool {
	if !replace {
		return s.UpdateNode(id, NodePatch{Data: data})
	}
	return s.replaceNode(id, func(n Node) Node {
		n.Data = data
		return n
	})
}

// UpdateEdge applies p to the edge with the given id.
func (s *Store) UpdateEdge(id string, p EdgePatch) bool {
	i, ok := s.edgeIndex[id]
	if !ok {
		return false
	}
	e := &s.edges[i]
	var changes []Change
	if p.Selected != nil && *p.Selected != e.Selected {
		e.Selected = *p.Selected
		changes = append(changes, Change{Kind: KindEdge, Type: ChangeSelect, ID: id, Selected: e.Selected})
	}

	replaced := p.Type != nil || p.Label != nil || p.Animated != nil || p.Hidden != nil || p.Data != nil || p.Style != nil
	if p.Type != nil {
		e.Type = *p.Type
	}
	if p.Label != nil {
		e.Label = *p.Label
	}
	if p.Animated != nil {
		e.Animated = *p.Animated
	}
	if p.Hidden != nil {
		e.Hidden = *p.Hidden
	}
	if p.Data != nil {
		if e.Data == nil {
			e.Data = make(map[string]any, len(p.Data))
		}
		for k, v := range p.Data {
			e.Data[k] = v
		}
	}
	if p.Style != nil {
		if e.Style == nil {
			e.Style = make(map[string]string, len(p.Style))
		}
		for k, v := range p.Style {
			e.Style[k] = v
		}
	}
	if replaced {
		c := e.clone()
		changes = append(changes, Change{Kind: KindEdge, Type: ChangeReplace, ID: id, Edge: &c})
	}
	s.commit(changes)
	return true
}

// UpdateEdgeFunc replaces the edge with fn's result. The id cannot change.
func (s *Store) UpdateEdgeFunc(id string, fn func(Edge) Edge) bool {
	i, ok := s.edgeIndex[id]
	if !ok {
		return false
	}
	e := fn(s.edges[i].clone()).clone()
	e.ID = id
	s.edges[i] = e
	c := e.clone()
	s.commit([]Change{{Kind: KindEdge, Type: ChangeReplace, ID: id, Edge: &c}})
	return true
}

// SetNodePositions moves nodes to the given positions, which are relative to
// each node's parent. Unknown ids are ignored.
func (s *Store) SetNodePositions(positions map[string]geometry.XY) {
	var changes []Change
	for i := range s.nodes {
		n := &s.nodes[i]
		pos, ok := positions[n.ID]
		if !ok || pos == n.Position {
			continue
		}
		n.Position = pos
		changes = append(changes, Change{Kind: KindNode, Type: ChangePosition, ID: n.ID, Position: &pos})
	}
	s.commit(changes)
}

// TranslateNodes moves each listed node by its delta.
func (s *Store) TranslateNodes(deltas map[string]geometry.XY) {
	positions := make(map[string]geometry.XY, len(deltas))
	for id, d := range deltas {
		if i, ok := s.nodeIndex[id]; ok {
			positions[id] = s.nodes[i].Position.Add(d)
		}
	}
	s.SetNodePositions(positions)
}

// SetDimensions records measured node sizes. It is the measure phase: call it
// once nodes have been laid out by the adapter.
func (s *Store) SetDimensions(dims map[string]geometry.Dimensions) {
	var changes []Change
	for i := range s.nodes {
		n := &s.nodes[i]
		d, ok := dims[n.ID]
		if !ok || (d.Width == n.Width && d.Height == n.Height) {
			continue
		}
		n.Width, n.Height = d.Width, d.Height
		changes = append(changes, Change{Kind: KindNode, Type: ChangeDimensions, ID: n.ID, Dimensions: &d})
	}
	s.commit(changes)
}

// SetHandles records the measured handles of a node.
func (s *Store) SetHandles(id string, handles []Handle) bool {
	return s.replaceNode(id, func(n Node) Node {
		n.Handles = handles
		return n
	})
}

// ============================================================================
// Delete
// ============================================================================

// Deleted lists what a [Store.DeleteElements] call removed.
type Deleted struct {
	Nodes []Node
	Edges []Edge
}

// DeleteElements removes the given nodes and edges. Removing a node also
// removes its descendants and every edge touching a removed node. Unknown ids
// are ignored.
func (s *Store) DeleteElements(nodeIDs, edgeIDs []string) Deleted {
	removeNode := make(map[string]bool, len(nodeIDs))
	for _, id := range nodeIDs {
		if _, ok := s.nodeIndex[id]; ok {
			removeNode[id] = true
		}
	}
	for grew := len(removeNode) > 0; grew; {
		grew = false
		for _, n := range s.nodes {
			if !removeNode[n.ID] && n.ParentID != "" && removeNode[n.ParentID] {
				removeNode[n.ID] = true
				grew = true
			}
		}
	}

	removeEdge := make(map[string]bool, len(edgeIDs))
	for _, id := range edgeIDs {
		removeEdge[id] = true
	}

	var deleted Deleted
	var changes []Change
	s.nodes = slices.DeleteFunc(s.nodes, func(n Node) bool {
		if !removeNode[n.ID] {
			return false
		}
		deleted.Nodes = append(deleted.Nodes, n)
		changes = append(changes, Change{Kind: KindNode, Type: ChangeRemove, ID: n.ID})
		return true
	})
	s.edges = slices.DeleteFunc(s.edges, func(e Edge) bool {
		if !removeEdge[e.ID] && !removeNode[e.Source] && !removeNode[e.Target] {
			return false
		}
		deleted.Edges = append(deleted.Edges, e)
		changes = append(changes, Change{Kind: KindEdge, Type: ChangeRemove, ID: e.ID})
		return true
	})

	if len(changes) > 0 {
		s.logger.Debug("elements deleted", "nodes", len(deleted.Nodes), "edges", len(deleted.Edges))
	}
	s.commit(changes)
	return deleted
}
