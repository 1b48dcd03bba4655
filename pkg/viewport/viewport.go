// Package viewport holds the pan and zoom state of a flow canvas.
//
// A [Model] stores the transform {x, y, zoom} that maps flow coordinates to
// screen coordinates:
//
//	screen = flow*zoom + (x, y)
//
// Zoom is always clamped to [MinZoom, MaxZoom]; requests outside the range
// are clamped, never rejected. Every change notifies the listeners registered
// with [Model.OnChange] after the new value is in place.
//
// The container size is reported by the rendering adapter through
// [Model.SetDimensions]. Operations that need it (zooming around the center,
// fitting content) are no-ops while the container has no area.
package viewport

import (
	"io"
	"math"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/MomoChenisMe/xyflow-sub001/pkg/geometry"
)

// Defaults.
const (
	DefaultMinZoom        = 0.5
	DefaultMaxZoom        = 2.0
	DefaultFitViewPadding = 0.1
	ZoomStep              = 1.2
)

// Listener is called with the previous and the current viewport.
type Listener func(prev, next geometry.Viewport)

// Option configures a [Model].
type Option func(*Model)

// WithZoomRange sets the zoom bounds.
func WithZoomRange(minZoom, maxZoom float64) Option {
	return func(m *Model) {
		if minZoom > 0 && maxZoom >= minZoom {
			m.minZoom, m.maxZoom = minZoom, maxZoom
		}
	}
}

// WithInitial sets the initial viewport. Its zoom is clamped.
func WithInitial(vp geometry.Viewport) Option {
	return func(m *Model) { m.vp = vp }
}

// WithSnapGrid enables snapping for [Model.ScreenToFlowPositionSnapped].
func WithSnapGrid(grid geometry.XY) Option {
	return func(m *Model) { m.snapGrid = grid }
}

// WithLogger sets the debug logger.
func WithLogger(l *log.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.logger = l
		}
	}
}

type listenerEntry struct {
	id int
	fn Listener
}

// Model is the viewport state. It is not safe for concurrent use.
type Model struct {
	vp       geometry.Viewport
	width    float64
	height   float64
	minZoom  float64
	maxZoom  float64
	snapGrid geometry.XY
	logger   *log.Logger

	listeners    []listenerEntry
	nextListener int
}

// New returns a model at {0, 0, 1}.
func New(opts ...Option) *Model {
	m := &Model{
		vp:      geometry.Viewport{Zoom: 1},
		minZoom: DefaultMinZoom,
		maxZoom: DefaultMaxZoom,
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.vp.Zoom == 0 || !finite(m.vp.Zoom) {
		m.vp.Zoom = 1
	}
	if !finite(m.vp.X) {
		m.vp.X = 0
	}
	if !finite(m.vp.Y) {
		m.vp.Y = 0
	}
	m.vp.Zoom = m.clamp(m.vp.Zoom)
	return m
}

// Viewport returns the current transform.
func (m *Model) Viewport() geometry.Viewport { return m.vp }

// Zoom returns the current zoom.
func (m *Model) Zoom() float64 { return m.vp.Zoom }

// MinZoom returns the lower zoom bound.
func (m *Model) MinZoom() float64 { return m.minZoom }

// MaxZoom returns the upper zoom bound.
func (m *Model) MaxZoom() float64 { return m.maxZoom }

// Dimensions returns the container size.
func (m *Model) Dimensions() (width, height float64) { return m.width, m.height }

// SnapGrid returns the grid used for snapped conversions.
func (m *Model) SnapGrid() geometry.XY { return m.snapGrid }

// OnChange registers fn and returns a function removing it.
func (m *Model) OnChange(fn Listener) (unsubscribe func()) {
	id := m.nextListener
	m.nextListener++
	m.listeners = append(m.listeners, listenerEntry{id: id, fn: fn})
	return func() {
		m.listeners = slices.DeleteFunc(m.listeners, func(e listenerEntry) bool { return e.id == id })
	}
}

func (m *Model) clamp(z float64) float64 { return geometry.Clamp(z, m.minZoom, m.maxZoom) }

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// SetDimensions records the container size.
func (m *Model) SetDimensions(width, height float64) {
	m.width, m.height = width, height
}

// SetMinZoom changes the lower bound and re-clamps the current zoom.
func (m *Model) SetMinZoom(z float64) {
	if z <= 0 || z > m.maxZoom {
		return
	}
	m.minZoom = z
	m.SetViewport(m.vp)
}

// SetMaxZoom changes the upper bound and re-clamps the current zoom.
func (m *Model) SetMaxZoom(z float64) {
	if z < m.minZoom {
		return
	}
	m.maxZoom = z
	m.SetViewport(m.vp)
}

// SetViewport replaces the transform. Zoom is clamped; a non-finite component
// keeps its current value. It reports whether the viewport changed.
func (m *Model) SetViewport(vp geometry.Viewport) bool {
	if !finite(vp.X) {
		vp.X = m.vp.X
	}
	if !finite(vp.Y) {
		vp.Y = m.vp.Y
	}
	if !finite(vp.Zoom) {
		vp.Zoom = m.vp.Zoom
	}
	vp.Zoom = m.clamp(vp.Zoom)
	if vp == m.vp {
		return false
	}
	prev := m.vp
	m.vp = vp
	m.logger.Debug("viewport changed", "x", vp.X, "y", vp.Y, "zoom", vp.Zoom)
	for _, l := range slices.Clone(m.listeners) {
		l.fn(prev, vp)
	}
	return true
}

// ScreenToFlowPosition converts a container-relative screen point to flow
// coordinates.
func (m *Model) ScreenToFlowPosition(p geometry.XY) geometry.XY {
	return geometry.PointToRendererPoint(p, m.vp, false, geometry.XY{})
}

// ScreenToFlowPositionSnapped is ScreenToFlowPosition snapped to the model's
// grid.
func (m *Model) ScreenToFlowPositionSnapped(p geometry.XY) geometry.XY {
	return geometry.PointToRendererPoint(p, m.vp, true, m.snapGrid)
}

// FlowToScreenPosition converts a flow point to screen coordinates.
func (m *Model) FlowToScreenPosition(p geometry.XY) geometry.XY {
	return geometry.RendererPointToPoint(p, m.vp)
}

// VisibleBounds returns the flow-space rectangle shown in the container.
func (m *Model) VisibleBounds() geometry.Rect {
	return geometry.VisibleRect(m.vp, m.width, m.height)
}

// PanBy moves the viewport by a screen-space delta.
func (m *Model) PanBy(dx, dy float64) bool {
	return m.SetViewport(geometry.Viewport{X: m.vp.X + dx, Y: m.vp.Y + dy, Zoom: m.vp.Zoom})
}

// ScaleAt sets the zoom while keeping the flow point under screen point p
// fixed.
func (m *Model) ScaleAt(p geometry.XY, zoom float64) bool {
	if !finite(zoom) {
		return false
	}
	zoom = m.clamp(zoom)
	anchor := m.ScreenToFlowPosition(p)
	return m.SetViewport(geometry.Viewport{
		X:    p.X - anchor.X*zoom,
		Y:    p.Y - anchor.Y*zoom,
		Zoom: zoom,
	})
}

// ScaleBy multiplies the zoom by factor around screen point p.
func (m *Model) ScaleBy(p geometry.XY, factor float64) bool {
	return m.ScaleAt(p, m.vp.Zoom*factor)
}

func (m *Model) center() geometry.XY {
	return geometry.XY{X: m.width / 2, Y: m.height / 2}
}

// ZoomTo sets the zoom around the container center.
func (m *Model) ZoomTo(level float64) bool {
	return m.ScaleAt(m.center(), level)
}

// ZoomIn multiplies the zoom by [ZoomStep] around the container center.
func (m *Model) ZoomIn() bool { return m.ZoomTo(m.vp.Zoom * ZoomStep) }

// ZoomOut divides the zoom by [ZoomStep] around the container center.
func (m *Model) ZoomOut() bool { return m.ZoomTo(m.vp.Zoom / ZoomStep) }

// SetCenter centers flow point (x, y) in the container. A positive zoom
// replaces the current one.
func (m *Model) SetCenter(x, y, zoom float64) bool {
	if zoom <= 0 {
		zoom = m.vp.Zoom
	}
	zoom = m.clamp(zoom)
	c := m.center()
	return m.SetViewport(geometry.Viewport{X: c.X - x*zoom, Y: c.Y - y*zoom, Zoom: zoom})
}
