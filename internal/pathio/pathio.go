// Package pathio provides the verb-stream path representation consumed by
// the edge builder: a sequence of Move/Line/Quad/Conic/Cubic/Close verbs
// with their associated points, plus per-path metadata (convexity,
// segment mask, conic weights).
package pathio

import "github.com/gogpu/vgraster/internal/geom"

// SegmentMask is a bitmask of the verb kinds present in a path. The edge
// builder does not consult it.
type SegmentMask uint8

// Segment mask bits.
const (
	SegmentLine SegmentMask = 1 << iota
	SegmentQuad
	SegmentConic
	SegmentCubic
)

// Convexity describes what is known about a path's shape.
type Convexity uint8

// Convexity values.
const (
	ConvexityUnknown Convexity = iota
	Convex
	Concave
)

// Path is an in-memory verb stream: a sequence of Move/Line/Quad/Conic/
// Cubic/Close verbs paired with their points, plus conic weights.
type Path struct {
	verbs       []geom.Verb
	points      []geom.Point
	conicWeight []float64
	segmentMask SegmentMask
	convexity   Convexity
}

// NewPath returns an empty path builder.
func NewPath() *Path {
	return &Path{convexity: ConvexityUnknown}
}

// MoveTo starts a new subpath at p.
func (b *Path) MoveTo(p geom.Point) *Path {
	b.verbs = append(b.verbs, geom.Move)
	b.points = append(b.points, p)
	return b
}

// LineTo appends a line segment to p.
func (b *Path) LineTo(p geom.Point) *Path {
	b.verbs = append(b.verbs, geom.Line)
	b.points = append(b.points, p)
	b.segmentMask |= SegmentLine
	return b
}

// QuadTo appends a quadratic Bezier with control point c and end point p.
func (b *Path) QuadTo(c, p geom.Point) *Path {
	b.verbs = append(b.verbs, geom.Quad)
	b.points = append(b.points, c, p)
	b.segmentMask |= SegmentQuad
	return b
}

// ConicTo appends a conic (rational quadratic) with control point c, end
// point p, and weight w. w must be > 0; w == 1 is equivalent to a Quad.
func (b *Path) ConicTo(c, p geom.Point, w float64) *Path {
	b.verbs = append(b.verbs, geom.Conic)
	b.points = append(b.points, c, p)
	b.conicWeight = append(b.conicWeight, w)
	b.segmentMask |= SegmentConic
	return b
}

// CubicTo appends a cubic Bezier with two control points and an end point.
func (b *Path) CubicTo(c1, c2, p geom.Point) *Path {
	b.verbs = append(b.verbs, geom.Cubic)
	b.points = append(b.points, c1, c2, p)
	b.segmentMask |= SegmentCubic
	return b
}

// Close closes the current subpath back to its starting point.
func (b *Path) Close() *Path {
	b.verbs = append(b.verbs, geom.Close)
	return b
}

// SetConvexity records a known convexity for the path. The builder trusts
// this hint when deciding whether clipped edges can cull to the right.
func (b *Path) SetConvexity(c Convexity) *Path {
	b.convexity = c
	return b
}

// IsConvex reports whether the path is known to be convex.
func (b *Path) IsConvex() bool {
	return b.convexity == Convex
}

// SegmentMasks returns the OR of all verb kinds present in the path.
func (b *Path) SegmentMasks() SegmentMask {
	return b.segmentMask
}

// CountPoints returns the total number of points in the path.
func (b *Path) CountPoints() int {
	return len(b.points)
}

// CountVerbs returns the total number of verbs in the path.
func (b *Path) CountVerbs() int {
	return len(b.verbs)
}

// Cursor returns a fresh iteration cursor over the path's verb stream.
func (b *Path) Cursor() *Cursor {
	return &Cursor{path: b}
}

// Cursor walks a Path's verb stream, tracking the current point and the
// start of the active subpath the way a PathEdgeIter needs to (so Close
// always knows where to return to).
type Cursor struct {
	path       *Path
	verbIdx    int
	pointIdx   int
	conicIdx   int
	current    geom.Point
	subpathPt0 geom.Point
}

// Next returns the next verb and up to four associated points, populated
// according to verb.PointCount() plus the leading current point (so a Line
// fills pts[0:2], a Quad pts[0:3], a Cubic pts[0:4]). Conic also returns
// its weight. It returns geom.Done when the stream is exhausted.
func (c *Cursor) Next() (verb geom.Verb, pts [4]geom.Point, weight float64) {
	if c.verbIdx >= len(c.path.verbs) {
		return geom.Done, pts, 0
	}
	v := c.path.verbs[c.verbIdx]
	c.verbIdx++

	switch v {
	case geom.Move:
		p := c.path.points[c.pointIdx]
		c.pointIdx++
		c.current = p
		c.subpathPt0 = p
		pts[0] = p
		return geom.Move, pts, 0

	case geom.Line:
		p := c.path.points[c.pointIdx]
		c.pointIdx++
		pts[0], pts[1] = c.current, p
		c.current = p
		return geom.Line, pts, 0

	case geom.Quad:
		ctrl, p := c.path.points[c.pointIdx], c.path.points[c.pointIdx+1]
		c.pointIdx += 2
		pts[0], pts[1], pts[2] = c.current, ctrl, p
		c.current = p
		return geom.Quad, pts, 0

	case geom.Conic:
		ctrl, p := c.path.points[c.pointIdx], c.path.points[c.pointIdx+1]
		c.pointIdx += 2
		w := c.path.conicWeight[c.conicIdx]
		c.conicIdx++
		pts[0], pts[1], pts[2] = c.current, ctrl, p
		c.current = p
		return geom.Conic, pts, w

	case geom.Cubic:
		c1, c2, p := c.path.points[c.pointIdx], c.path.points[c.pointIdx+1], c.path.points[c.pointIdx+2]
		c.pointIdx += 3
		pts[0], pts[1], pts[2], pts[3] = c.current, c1, c2, p
		c.current = p
		return geom.Cubic, pts, 0

	case geom.Close:
		p := c.subpathPt0
		pts[0], pts[1] = c.current, p
		c.current = p
		return geom.Close, pts, 0
	}
	return geom.Done, pts, 0
}
