package geometry

import (
	"fmt"
	"math"
	"strings"
)

// Edge type names understood by [GetEdgePath].
const (
	EdgeTypeDefault      = "default"
	EdgeTypeBezier       = "bezier"
	EdgeTypeSimpleBezier = "simplebezier"
	EdgeTypeStraight     = "straight"
	EdgeTypeStep         = "step"
	EdgeTypeSmoothStep   = "smoothstep"
)

// Defaults for path builders.
const (
	DefaultCurvature    = 0.25
	DefaultBorderRadius = 5.0
	DefaultStepOffset   = 20.0
)

// EdgeTypes lists every supported edge type.
var EdgeTypes = []string{
	EdgeTypeDefault,
	EdgeTypeBezier,
	EdgeTypeSimpleBezier,
	EdgeTypeStraight,
	EdgeTypeStep,
	EdgeTypeSmoothStep,
}

// ValidEdgeType reports whether name is a supported edge type. The empty
// string means the default type and is valid.
func ValidEdgeType(name string) bool {
	if name == "" {
		return true
	}
	for _, t := range EdgeTypes {
		if t == name {
			return true
		}
	}
	return false
}

// PathParams are the endpoints shared by every path builder.
type PathParams struct {
	SourceX        float64
	SourceY        float64
	SourcePosition Position
	TargetX        float64
	TargetY        float64
	TargetPosition Position
}

func (p PathParams) source() XY { return XY{X: p.SourceX, Y: p.SourceY} }
func (p PathParams) target() XY { return XY{X: p.TargetX, Y: p.TargetY} }

func (p PathParams) withDefaults() PathParams {
	if p.SourcePosition == "" {
		p.SourcePosition = Bottom
	}
	if p.TargetPosition == "" {
		p.TargetPosition = Top
	}
	return p
}

// EdgePath is SVG path data plus the label anchor. OffsetX/OffsetY are the
// distances from the source point to the label anchor.
type EdgePath struct {
	Path    string  `json:"path"`
	LabelX  float64 `json:"label_x"`
	LabelY  float64 `json:"label_y"`
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
}

// edgeCenter returns the linear midpoint of the endpoints and its offset from
// the source.
func edgeCenter(p PathParams) (cx, cy, ox, oy float64) {
	cx = (p.SourceX + p.TargetX) / 2
	cy = (p.SourceY + p.TargetY) / 2
	return cx, cy, math.Abs(cx - p.SourceX), math.Abs(cy - p.SourceY)
}

// BezierParams configures [GetBezierPath]. A zero Curvature means
// [DefaultCurvature].
type BezierParams struct {
	PathParams
	Curvature float64
}

// GetBezierPath returns a cubic bezier between the endpoints. Each control
// point sits distance(source, target)*curvature away from its endpoint along
// the direction its handle faces.
func GetBezierPath(p BezierParams) EdgePath {
	pp := p.PathParams.withDefaults()
	curvature := p.Curvature
	if curvature == 0 {
		curvature = DefaultCurvature
	}

	s, t := pp.source(), pp.target()
	d := Distance(s, t) * curvature
	c1 := s.Add(pp.SourcePosition.direction().Scale(d))
	c2 := t.Add(pp.TargetPosition.direction().Scale(d))

	lx, ly, ox, oy := edgeCenter(pp)
	return EdgePath{
		Path:   fmt.Sprintf("M %s,%s C %s,%s %s,%s %s,%s", ftoa(s.X), ftoa(s.Y), ftoa(c1.X), ftoa(c1.Y), ftoa(c2.X), ftoa(c2.Y), ftoa(t.X), ftoa(t.Y)),
		LabelX: lx, LabelY: ly,
		OffsetX: ox, OffsetY: oy,
	}
}

// simpleControl places a control point on the mid line between the two
// endpoints, moving only along the axis the handle faces.
func simpleControl(pos Position, from, to XY) XY {
	if pos.Horizontal() {
		return XY{X: 0.5 * (from.X + to.X), Y: from.Y}
	}
	return XY{X: from.X, Y: 0.5 * (from.Y + to.Y)}
}

// GetSimpleBezierPath returns a cubic bezier whose control points move along a
// single axis. The label sits on the curve at t=0.5.
func GetSimpleBezierPath(p PathParams) EdgePath {
	pp := p.withDefaults()
	s, t := pp.source(), pp.target()
	c1 := simpleControl(pp.SourcePosition, s, t)
	c2 := simpleControl(pp.TargetPosition, t, s)

	lx := s.X*0.125 + c1.X*0.375 + c2.X*0.375 + t.X*0.125
	ly := s.Y*0.125 + c1.Y*0.375 + c2.Y*0.375 + t.Y*0.125
	return EdgePath{
		Path:    fmt.Sprintf("M %s,%s C %s,%s %s,%s %s,%s", ftoa(s.X), ftoa(s.Y), ftoa(c1.X), ftoa(c1.Y), ftoa(c2.X), ftoa(c2.Y), ftoa(t.X), ftoa(t.Y)),
		LabelX:  lx,
		LabelY:  ly,
		OffsetX: math.Abs(lx - s.X),
		OffsetY: math.Abs(ly - s.Y),
	}
}

// GetStraightPath returns a single line segment.
func GetStraightPath(p PathParams) EdgePath {
	lx, ly, ox, oy := edgeCenter(p)
	return EdgePath{
		Path:   fmt.Sprintf("M %s,%s L %s,%s", ftoa(p.SourceX), ftoa(p.SourceY), ftoa(p.TargetX), ftoa(p.TargetY)),
		LabelX: lx, LabelY: ly,
		OffsetX: ox, OffsetY: oy,
	}
}

// SmoothStepParams configures orthogonal routing. BorderRadius rounds the
// corners, Offset is the straight run leaving each handle before the first
// turn. CenterX/CenterY pin the middle segment when set.
type SmoothStepParams struct {
	PathParams
	BorderRadius float64
	Offset       float64
	CenterX      *float64
	CenterY      *float64
}

// GetStepPath is [GetSmoothStepPath] with square corners.
func GetStepPath(p SmoothStepParams) EdgePath {
	p.BorderRadius = 0
	return smoothStep(p)
}

// GetSmoothStepPath routes an orthogonal path with rounded corners. A zero
// BorderRadius or Offset takes the package default.
func GetSmoothStepPath(p SmoothStepParams) EdgePath {
	if p.BorderRadius == 0 {
		p.BorderRadius = DefaultBorderRadius
	}
	return smoothStep(p)
}

func smoothStep(p SmoothStepParams) EdgePath {
	if p.Offset == 0 {
		p.Offset = DefaultStepOffset
	}
	p.PathParams = p.PathParams.withDefaults()
	points, lx, ly, ox, oy := stepPoints(p)

	var b strings.Builder
	for i, pt := range points {
		switch {
		case i == 0:
			fmt.Fprintf(&b, "M %s,%s", ftoa(pt.X), ftoa(pt.Y))
		case i == len(points)-1:
			fmt.Fprintf(&b, " L %s,%s", ftoa(pt.X), ftoa(pt.Y))
		default:
			b.WriteString(bend(points[i-1], pt, points[i+1], p.BorderRadius))
		}
	}
	return EdgePath{Path: b.String(), LabelX: lx, LabelY: ly, OffsetX: ox, OffsetY: oy}
}

// axis picks the x or y component of v.
func axis(v XY, horizontal bool) float64 {
	if horizontal {
		return v.X
	}
	return v.Y
}

func setAxis(v *XY, horizontal bool, val float64) {
	if horizontal {
		v.X = val
	} else {
		v.Y = val
	}
}

// stepDirection is the main travel direction between the gapped endpoints.
func stepDirection(source XY, sourcePos Position, target XY) XY {
	if sourcePos.Horizontal() {
		if source.X < target.X {
			return XY{X: 1}
		}
		return XY{X: -1}
	}
	if source.Y < target.Y {
		return XY{Y: 1}
	}
	return XY{Y: -1}
}

// stepPoints computes the corner points of an orthogonal route and the label
// anchor.
func stepPoints(p SmoothStepParams) (points []XY, lx, ly, ox, oy float64) {
	source, target := p.source(), p.target()
	sourceDir := p.SourcePosition.direction()
	targetDir := p.TargetPosition.direction()
	sourceGapped := source.Add(sourceDir.Scale(p.Offset))
	targetGapped := target.Add(targetDir.Scale(p.Offset))

	dir := stepDirection(sourceGapped, p.SourcePosition, targetGapped)
	horiz := dir.X != 0
	currDir := axis(dir, horiz)

	var sourceGapOffset, targetGapOffset XY
	var mid []XY
	defX, defY, defOX, defOY := edgeCenter(p.PathParams)
	ox, oy = defOX, defOY

	if axis(sourceDir, horiz)*axis(targetDir, horiz) == -1 {
		lx, ly = defX, defY
		if p.CenterX != nil {
			lx = *p.CenterX
		}
		if p.CenterY != nil {
			ly = *p.CenterY
		}
		verticalSplit := []XY{{X: lx, Y: sourceGapped.Y}, {X: lx, Y: targetGapped.Y}}
		horizontalSplit := []XY{{X: sourceGapped.X, Y: ly}, {X: targetGapped.X, Y: ly}}
		if axis(sourceDir, horiz) == currDir {
			mid = horizontalSplit
			if horiz {
				mid = verticalSplit
			}
		} else {
			mid = verticalSplit
			if horiz {
				mid = horizontalSplit
			}
		}
	} else {
		sourceTarget := []XY{{X: sourceGapped.X, Y: targetGapped.Y}}
		targetSource := []XY{{X: targetGapped.X, Y: sourceGapped.Y}}
		if horiz {
			mid = sourceTarget
			if sourceDir.X == currDir {
				mid = targetSource
			}
		} else {
			mid = targetSource
			if sourceDir.Y == currDir {
				mid = sourceTarget
			}
		}

		if p.SourcePosition == p.TargetPosition {
			diff := math.Abs(axis(source, horiz) - axis(target, horiz))
			if diff <= p.Offset {
				gap := math.Min(p.Offset-1, p.Offset-diff)
				if axis(sourceDir, horiz) == currDir {
					sign := 1.0
					if axis(sourceGapped, horiz) > axis(source, horiz) {
						sign = -1
					}
					setAxis(&sourceGapOffset, horiz, sign*gap)
				} else {
					sign := 1.0
					if axis(targetGapped, horiz) > axis(target, horiz) {
						sign = -1
					}
					setAxis(&targetGapOffset, horiz, sign*gap)
				}
			}
		} else {
			// Handles on perpendicular sides: flip the corner when the
			// endpoints sit on the far side of each other.
			isSameDir := axis(sourceDir, horiz) == axis(targetDir, !horiz)
			gt := axis(sourceGapped, !horiz) > axis(targetGapped, !horiz)
			lt := axis(sourceGapped, !horiz) < axis(targetGapped, !horiz)
			var flip bool
			if axis(sourceDir, horiz) == 1 {
				flip = (!isSameDir && gt) || (isSameDir && lt)
			} else {
				flip = (!isSameDir && lt) || (isSameDir && gt)
			}
			if flip {
				mid = targetSource
				if horiz {
					mid = sourceTarget
				}
			}
		}

		sourceGapPoint := sourceGapped.Add(sourceGapOffset)
		targetGapPoint := targetGapped.Add(targetGapOffset)
		maxX := math.Max(math.Abs(sourceGapPoint.X-mid[0].X), math.Abs(targetGapPoint.X-mid[0].X))
		maxY := math.Max(math.Abs(sourceGapPoint.Y-mid[0].Y), math.Abs(targetGapPoint.Y-mid[0].Y))
		if maxX >= maxY {
			lx = (sourceGapPoint.X + targetGapPoint.X) / 2
			ly = mid[0].Y
		} else {
			lx = mid[0].X
			ly = (sourceGapPoint.Y + targetGapPoint.Y) / 2
		}
	}

	points = make([]XY, 0, len(mid)+4)
	points = append(points, source, sourceGapped.Add(sourceGapOffset))
	points = append(points, mid...)
	points = append(points, targetGapped.Add(targetGapOffset), target)
	return points, lx, ly, ox, oy
}

// bend draws the segment into corner b and, when the path turns there, a
// quadratic curve of at most size around it.
func bend(a, b, c XY, size float64) string {
	bendSize := math.Min(math.Min(Distance(a, b)/2, Distance(b, c)/2), size)
	if (a.X == b.X && b.X == c.X) || (a.Y == b.Y && b.Y == c.Y) || bendSize == 0 {
		return fmt.Sprintf(" L %s,%s", ftoa(b.X), ftoa(b.Y))
	}
	if a.Y == b.Y {
		xDir, yDir := 1.0, -1.0
		if a.X < c.X {
			xDir = -1
		}
		if a.Y < c.Y {
			yDir = 1
		}
		return fmt.Sprintf(" L %s,%s Q %s,%s %s,%s",
			ftoa(b.X+bendSize*xDir), ftoa(b.Y), ftoa(b.X), ftoa(b.Y), ftoa(b.X), ftoa(b.Y+bendSize*yDir))
	}
	xDir, yDir := -1.0, 1.0
	if a.X < c.X {
		xDir = 1
	}
	if a.Y < c.Y {
		yDir = -1
	}
	return fmt.Sprintf(" L %s,%s Q %s,%s %s,%s",
		ftoa(b.X), ftoa(b.Y+bendSize*yDir), ftoa(b.X), ftoa(b.Y), ftoa(b.X+bendSize*xDir), ftoa(b.Y))
}

// GetEdgePath builds the path for an edge of the named type. Unknown and
// empty types fall back to the bezier path.
func GetEdgePath(edgeType string, p PathParams) EdgePath {
	switch edgeType {
	case EdgeTypeStraight:
		return GetStraightPath(p)
	case EdgeTypeStep:
		return GetStepPath(SmoothStepParams{PathParams: p})
	case EdgeTypeSmoothStep:
		return GetSmoothStepPath(SmoothStepParams{PathParams: p})
	case EdgeTypeSimpleBezier:
		return GetSimpleBezierPath(p)
	default:
		return GetBezierPath(BezierParams{PathParams: p})
	}
}
