// Package clipper clips path segments (lines, quads, cubics) against an
// integer clip rectangle before they reach the edge builder, so the
// builder never has to special-case coordinates outside its scanline
// range.
//
// Segments arriving here are assumed already Y-monotonic (the builder
// chops curves at their Y extrema before clipping, unless WithChopCubics
// turned chopping off). Clipping in X does not
// need to preserve curve shape: once a segment's X range lies entirely to
// one side of the clip rect, only its contribution to the crossing count
// at that side matters, so it is replaced with a vertical edge at the
// clip boundary. Clipping in Y does need to preserve curve shape near the
// boundary, so out-of-range curve segments are subdivided at the clip
// plane and only the in-range remainder is kept.
package clipper

import (
	"github.com/gogpu/vgraster/internal/geom"
)

// Piece is one clipped, monotone output segment.
type Piece struct {
	Verb geom.Verb // Line, Quad, or Cubic
	Pts  [4]geom.Point
}

// EdgeClipper clips a stream of segments against a fixed clip rect and
// drains the results through Next.
type EdgeClipper struct {
	clip    geom.Rect
	convex  bool
	pending []Piece
}

// NewEdgeClipper returns a clipper bound to clip. convex should reflect
// whatever is known about the source path's convexity; it controls
// whether segments fully outside the clip's right edge can be dropped
// entirely (CanCullToTheRight).
func NewEdgeClipper(clip geom.Rect, convex bool) *EdgeClipper {
	return &EdgeClipper{clip: clip, convex: convex}
}

// CanCullToTheRight reports whether a segment whose entire X range lies to
// the right of the clip rect can be dropped outright. Convex paths need
// both edges at every scanline even when one falls past the clip, so they
// report false (the edge is instead clamped to a vertical edge at the
// clip's right boundary to preserve the pairing); everything else reports
// true, since a dropped edge that never crosses within the clip can't
// change the in-window winding count.
func (c *EdgeClipper) CanCullToTheRight() bool {
	return !c.convex
}

// Next drains the next clipped piece, or reports ok=false when empty.
func (c *EdgeClipper) Next() (p Piece, ok bool) {
	if len(c.pending) == 0 {
		return Piece{}, false
	}
	p = c.pending[0]
	c.pending = c.pending[1:]
	return p, true
}

// ClipLine clips a line segment against the clip rect, queuing zero or one
// output pieces.
func (c *EdgeClipper) ClipLine(p0, p1 geom.Point) {
	lo, hi := p0, p1
	flip := false
	if lo.Y > hi.Y {
		lo, hi = hi, lo
		flip = true
	}

	if hi.Y <= c.clip.Top || lo.Y >= c.clip.Bottom {
		return // entirely outside the Y range
	}
	if lo.Y < c.clip.Top {
		lo = lerpAtY(lo, hi, c.clip.Top)
	}
	if hi.Y > c.clip.Bottom {
		hi = lerpAtY(lo, hi, c.clip.Bottom)
	}

	if lo.X > c.clip.Right && hi.X > c.clip.Right && c.CanCullToTheRight() {
		return // entirely past the right clip edge, and safe to drop
	}

	lo = c.clampX(lo)
	hi = c.clampX(hi)

	if flip {
		lo, hi = hi, lo
	}
	if lo == hi {
		return
	}
	c.emit(geom.Line, lo, hi, geom.Point{}, geom.Point{})
}

// clampX clamps a single point's X into the clip rect's horizontal range.
// Only valid once the caller knows the segment can be represented as a
// vertical edge at the boundary without changing the winding count — true
// for points that individually fall outside the clip's X range on an
// already-Y-clipped line.
func (c *EdgeClipper) clampX(p geom.Point) geom.Point {
	if p.X < c.clip.Left {
		return geom.Point{X: c.clip.Left, Y: p.Y}
	}
	if p.X > c.clip.Right {
		return geom.Point{X: c.clip.Right, Y: p.Y}
	}
	return p
}

// ClipQuad clips a Y-monotonic quadratic Bezier against the clip rect's Y
// range, subdividing at the boundary when the curve crosses it, and clamps
// X the same way ClipLine does.
func (c *EdgeClipper) ClipQuad(pts [3]geom.Point) {
	c.clipMonotoneCurve(geom.Quad, pts[:])
}

// ClipCubic clips a Y-monotonic cubic Bezier the same way ClipQuad does.
func (c *EdgeClipper) ClipCubic(pts [4]geom.Point) {
	c.clipMonotoneCurve(geom.Cubic, pts[:])
}

func (c *EdgeClipper) clipMonotoneCurve(verb geom.Verb, pts []geom.Point) {
	p0, p3 := pts[0], pts[len(pts)-1]
	minY, maxY := p0.Y, p3.Y
	if minY > maxY {
		minY, maxY = maxY, minY
	}
	if maxY <= c.clip.Top || minY >= c.clip.Bottom {
		return
	}

	lo, hi := 0.0, 1.0
	if minY < c.clip.Top {
		lo = findYCrossing(pts, c.clip.Top)
	}
	if maxY > c.clip.Bottom {
		hi = findYCrossing(pts, c.clip.Bottom)
	}
	if lo > hi {
		lo, hi = hi, lo
	}

	sub := subCurve(pts, lo, hi)
	for i := range sub {
		sub[i] = c.clampX(sub[i])
	}

	switch verb {
	case geom.Quad:
		c.emit(geom.Quad, sub[0], sub[1], sub[2], geom.Point{})
	case geom.Cubic:
		c.emit(geom.Cubic, sub[0], sub[1], sub[2], sub[3])
	}
}

func (c *EdgeClipper) emit(verb geom.Verb, a, b, cc, d geom.Point) {
	c.pending = append(c.pending, Piece{Verb: verb, Pts: [4]geom.Point{a, b, cc, d}})
}

func lerpAtY(p0, p1 geom.Point, y float64) geom.Point {
	if p1.Y == p0.Y {
		return geom.Point{X: p0.X, Y: y}
	}
	t := (y - p0.Y) / (p1.Y - p0.Y)
	return p0.Lerp(p1, t)
}

// findYCrossing bisects for the t in [0, 1] where the curve's Y equals
// target. The curve is assumed Y-monotonic, so bisection converges to the
// unique crossing.
func findYCrossing(pts []geom.Point, target float64) float64 {
	lo, hi := 0.0, 1.0
	loY := evalY(pts, lo)
	increasing := evalY(pts, hi) >= loY

	for i := 0; i < 32; i++ {
		mid := (lo + hi) / 2
		y := evalY(pts, mid)
		if (y < target) == increasing {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

func evalY(pts []geom.Point, t float64) float64 {
	switch len(pts) {
	case 3:
		p0, p1, p2 := pts[0], pts[1], pts[2]
		mt := 1 - t
		return mt*mt*p0.Y + 2*mt*t*p1.Y + t*t*p2.Y
	case 4:
		p0, p1, p2, p3 := pts[0], pts[1], pts[2], pts[3]
		mt := 1 - t
		return mt*mt*mt*p0.Y + 3*mt*mt*t*p1.Y + 3*mt*t*t*p2.Y + t*t*t*p3.Y
	}
	return 0
}

// subCurve returns the portion of the curve (quad: 3 points, cubic: 4
// points) spanning parameter range [lo, hi], via two De Casteljau chops.
func subCurve(pts []geom.Point, lo, hi float64) []geom.Point {
	trimmed := chopBefore(pts, lo)
	// Re-express hi relative to the trimmed curve's remaining span.
	hiRel := 1.0
	if lo < 1 {
		hiRel = (hi - lo) / (1 - lo)
	}
	return chopAfter(trimmed, hiRel)
}

// chopBefore returns the sub-curve spanning [t, 1].
func chopBefore(pts []geom.Point, t float64) []geom.Point {
	if t <= 0 {
		return pts
	}
	switch len(pts) {
	case 3:
		ab := pts[0].Lerp(pts[1], t)
		bc := pts[1].Lerp(pts[2], t)
		abc := ab.Lerp(bc, t)
		return []geom.Point{abc, bc, pts[2]}
	case 4:
		ab := pts[0].Lerp(pts[1], t)
		bc := pts[1].Lerp(pts[2], t)
		cd := pts[2].Lerp(pts[3], t)
		abbc := ab.Lerp(bc, t)
		bccd := bc.Lerp(cd, t)
		abcd := abbc.Lerp(bccd, t)
		return []geom.Point{abcd, bccd, cd, pts[3]}
	}
	return pts
}

// chopAfter returns the sub-curve spanning [0, t].
func chopAfter(pts []geom.Point, t float64) []geom.Point {
	if t >= 1 {
		return pts
	}
	switch len(pts) {
	case 3:
		ab := pts[0].Lerp(pts[1], t)
		bc := pts[1].Lerp(pts[2], t)
		abc := ab.Lerp(bc, t)
		return []geom.Point{pts[0], ab, abc}
	case 4:
		ab := pts[0].Lerp(pts[1], t)
		bc := pts[1].Lerp(pts[2], t)
		cd := pts[2].Lerp(pts[3], t)
		abbc := ab.Lerp(bc, t)
		bccd := bc.Lerp(cd, t)
		abcd := abbc.Lerp(bccd, t)
		return []geom.Point{pts[0], ab, abbc, abcd}
	}
	return pts
}
