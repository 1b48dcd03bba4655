package flow

import "github.com/MomoChenisMe/xyflow-sub001/pkg/geometry"

// HandlePoint is a handle resolved to absolute flow coordinates. X and Y are
// the point edges attach to.
type HandlePoint struct {
	NodeID   string
	HandleID string
	Type     HandleType
	Position geometry.Position
	X        float64
	Y        float64
}

// XY returns the anchor point.
func (h HandlePoint) XY() geometry.XY { return geometry.XY{X: h.X, Y: h.Y} }

// Handles returns every handle of a node in absolute coordinates.
//
// Measured handles are used when the node has any. Otherwise the node gets the
// built-in handles of its type: a target on top and a source at the bottom,
// input nodes have only the source, output nodes only the target and group
// nodes none.
func (s *Store) Handles(nodeID string) []HandlePoint {
	in, ok := s.lookup[nodeID]
	if !ok {
		return nil
	}
	abs := in.Internals.PositionAbsolute

	if len(in.Node.Handles) > 0 {
		out := make([]HandlePoint, 0, len(in.Node.Handles))
		for _, h := range in.Node.Handles {
			r := geometry.Rect{X: abs.X + h.X, Y: abs.Y + h.Y, Width: h.Width, Height: h.Height}
			p := geometry.HandleAnchor(r, h.Position)
			out = append(out, HandlePoint{NodeID: nodeID, HandleID: h.ID, Type: h.Type, Position: h.Position, X: p.X, Y: p.Y})
		}
		return out
	}

	rect := in.Rect()
	var out []HandlePoint
	add := func(t HandleType, side geometry.Position) {
		p := geometry.HandleAnchor(rect, side)
		out = append(out, HandlePoint{NodeID: nodeID, Type: t, Position: side, X: p.X, Y: p.Y})
	}
	switch in.Node.Type {
	case NodeTypeGroup:
	case NodeTypeInput:
		add(HandleSource, geometry.Bottom)
	case NodeTypeOutput:
		add(HandleTarget, geometry.Top)
	default:
		add(HandleTarget, geometry.Top)
		add(HandleSource, geometry.Bottom)
	}
	return out
}

// GetHandlePosition resolves one handle of a node. An empty handleID picks
// the first handle of type t. Built-in handles have no id, so handleID only
// matters for nodes with measured handles.
func (s *Store) GetHandlePosition(nodeID string, t HandleType, handleID string) (HandlePoint, bool) {
	in, ok := s.lookup[nodeID]
	if !ok {
		return HandlePoint{}, false
	}
	measured := len(in.Node.Handles) > 0
	for _, h := range s.Handles(nodeID) {
		if h.Type != t {
			continue
		}
		if !measured || handleID == "" || h.HandleID == handleID {
			return h, true
		}
	}
	return HandlePoint{}, false
}

// EdgePosition returns the endpoints of an edge. It reports false when either
// endpoint node or handle cannot be resolved.
func (s *Store) EdgePosition(e Edge) (geometry.PathParams, bool) {
	src, ok := s.GetHandlePosition(e.Source, HandleSource, e.SourceHandle)
	if !ok {
		return geometry.PathParams{}, false
	}
	tgt, ok := s.GetHandlePosition(e.Target, HandleTarget, e.TargetHandle)
	if !ok {
		return geometry.PathParams{}, false
	}
	return geometry.PathParams{
		SourceX: src.X, SourceY: src.Y, SourcePosition: src.Position,
		TargetX: tgt.X, TargetY: tgt.Y, TargetPosition: tgt.Position,
	}, true
}

// EdgePath computes the SVG path of an edge from its current endpoints.
func (s *Store) EdgePath(e Edge) (geometry.EdgePath, bool) {
	params, ok := s.EdgePosition(e)
	if !ok {
		return geometry.EdgePath{}, false
	}
	return geometry.GetEdgePath(e.Type, params), true
}
