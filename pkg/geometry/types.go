package geometry

import (
	"math"
	"strconv"
)

// Position names the side of a node box a handle sits on.
type Position string

const (
	Left   Position = "left"
	Top    Position = "top"
	Right  Position = "right"
	Bottom Position = "bottom"
)

// Opposite returns the side facing p.
func (p Position) Opposite() Position {
	switch p {
	case Left:
		return Right
	case Right:
		return Left
	case Top:
		return Bottom
	default:
		return Top
	}
}

// Horizontal reports whether p is the left or right side.
func (p Position) Horizontal() bool { return p == Left || p == Right }

// direction is the unit vector pointing out of a box through side p.
func (p Position) direction() XY {
	switch p {
	case Left:
		return XY{X: -1}
	case Right:
		return XY{X: 1}
	case Top:
		return XY{Y: -1}
	default:
		return XY{Y: 1}
	}
}

// XY is a point or a vector.
type XY struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p+q.
func (p XY) Add(q XY) XY { return XY{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p-q.
func (p XY) Sub(q XY) XY { return XY{X: p.X - q.X, Y: p.Y - q.Y} }

// Scale returns p*k.
func (p XY) Scale(k float64) XY { return XY{X: p.X * k, Y: p.Y * k} }

// Distance returns the euclidean distance between p and q.
func Distance(p, q XY) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Dimensions is a measured width and height.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect is an axis-aligned rectangle given by its top-left corner and size.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Box is an axis-aligned rectangle given by two corners.
type Box struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Box converts r to corner form.
func (r Rect) Box() Box {
	return Box{X: r.X, Y: r.Y, X2: r.X + r.Width, Y2: r.Y + r.Height}
}

// Rect converts b to origin/size form.
func (b Box) Rect() Rect {
	return Rect{X: b.X, Y: b.Y, Width: b.X2 - b.X, Height: b.Y2 - b.Y}
}

// Center returns the midpoint of r.
func (r Rect) Center() XY {
	return XY{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// IsEmpty reports whether r has no area.
func (r Rect) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// ContainsPoint reports whether p lies inside r, edges included.
func (r Rect) ContainsPoint(p XY) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// ContainsRect reports whether o lies entirely inside r.
func (r Rect) ContainsRect(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y &&
		o.X+o.Width <= r.X+r.Width &&
		o.Y+o.Height <= r.Y+r.Height
}

// Intersects reports whether r and o share a region of positive area.
func (r Rect) Intersects(o Rect) bool {
	return OverlapArea(r, o) > 0
}

// Viewport is the pan/zoom transform mapping flow to screen coordinates.
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// ftoa formats a coordinate for SVG path data: at most two decimals and no
// trailing zeros.
func ftoa(v float64) string {
	v = math.Round(v*100) / 100
	if v == 0 {
		v = 0 // normalise -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
