// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package raster builds Y-monotonic scanline edges from a path's verb
// stream: lines, forward-differenced quadratics and cubics, clipped to a
// bounding rectangle and with coincident vertical edges fused together.
package raster

import (
	"math/bits"

	"github.com/gogpu/vgraster/internal/fixed"
)

// MaxCoeffShift limits curve subdivision: 1<<shift is stored in a signed
// byte, so the largest usable value is 1<<6 = 64 segments.
const MaxCoeffShift = 6

// CurveEdger is implemented by the curve edge types (quadratic, cubic) so
// the builder can step them polymorphically while scanning.
type CurveEdger interface {
	Update() bool
	Line() *LineEdge
	CurveCount() int8
	Winding() int8
}

// CurvePoint is a 2D point in the coordinate space the builder scales into
// fixed point.
type CurvePoint struct {
	X, Y float64
}

// LineEdge is a single line segment in the active edge table; it is also
// embedded by QuadraticEdge and CubicEdge for their current segment.
type LineEdge struct {
	Prev, Next int32 // linked-list indices into an edge arena, -1 if none

	X  fixed.Dot16 // current X position
	DX fixed.Dot16 // slope: change in X per scanline

	FirstY int32 // first scanline this edge covers
	LastY  int32 // last scanline this edge covers (inclusive)

	Winding int8 // +1 downward, -1 upward
}

// NewLineEdge builds a line edge from two points, or nil if the line has
// no vertical extent at the given shift.
func NewLineEdge(p0, p1 CurvePoint, shift int) *LineEdge {
	scale := float64(int32(1) << uint(shift+fixed.Dot6Shift))
	x0 := int32(p0.X * scale)
	y0 := int32(p0.Y * scale)
	x1 := int32(p1.X * scale)
	y1 := int32(p1.Y * scale)

	winding := int8(1)
	if y0 > y1 {
		x0, x1 = x1, x0
		y0, y1 = y1, y0
		winding = -1
	}

	top := fixed.Dot6Round(y0)
	bottom := fixed.Dot6Round(y1)
	if top == bottom {
		return nil
	}

	slope := fixed.Dot6Div(x1-x0, y1-y0)
	dy := computeDY(top, y0)

	return &LineEdge{
		Prev:    -1,
		Next:    -1,
		X:       fixed.Dot6ToDot16(x0 + fixed.Dot16Mul(slope, dy)),
		DX:      slope,
		FirstY:  top,
		LastY:   bottom - 1,
		Winding: winding,
	}
}

// IsVertical reports whether the edge has zero slope.
func (e *LineEdge) IsVertical() bool {
	return e.DX == 0
}

func (e *LineEdge) update(x0, y0, x1, y1 fixed.Dot16) bool {
	y0 >>= fixed.Dot16Shift - fixed.Dot6Shift
	y1 >>= fixed.Dot16Shift - fixed.Dot6Shift

	top := fixed.Dot6Round(y0)
	bottom := fixed.Dot6Round(y1)
	if top == bottom {
		return false
	}

	x0 >>= fixed.Dot16Shift - fixed.Dot6Shift
	x1 >>= fixed.Dot16Shift - fixed.Dot6Shift

	slope := fixed.Dot6Div(x1-x0, y1-y0)
	dy := computeDY(top, y0)

	e.X = fixed.Dot6ToDot16(x0 + fixed.Dot16Mul(slope, dy))
	e.DX = slope
	e.FirstY = top
	e.LastY = bottom - 1
	return true
}

// QuadraticEdge steps a quadratic Bezier via forward differencing, O(1)
// per generated line segment.
//
//	p(t) = A*t^2 + B*t + C,  A = p0 - 2*p1 + p2,  B = 2*(p1 - p0),  C = p0
type QuadraticEdge struct {
	TopY    int32
	BottomY int32

	line LineEdge

	curveCount int8
	curveShift uint8

	qx, qy     fixed.Dot16
	qdx, qdy   fixed.Dot16
	qddx, qddy fixed.Dot16

	qLastX, qLastY fixed.Dot16
}

// NewQuadraticEdge builds a quadratic edge, or nil if it has no vertical
// extent (or degenerates on its first step).
func NewQuadraticEdge(p0, p1, p2 CurvePoint, shift int) *QuadraticEdge {
	scale := float64(int32(1) << uint(shift+fixed.Dot6Shift))
	x0 := int32(p0.X * scale)
	y0 := int32(p0.Y * scale)
	x1 := int32(p1.X * scale)
	y1 := int32(p1.Y * scale)
	x2 := int32(p2.X * scale)
	y2 := int32(p2.Y * scale)

	winding := int8(1)
	if y0 > y2 {
		x0, x2 = x2, x0
		y0, y2 = y2, y0
		winding = -1
	}

	top := fixed.Dot6Round(y0)
	bottom := fixed.Dot6Round(y2)
	if top == bottom {
		return nil
	}

	dx := (fixed.LeftShift(x1, 1) - x0 - x2) >> 2
	dy := (fixed.LeftShift(y1, 1) - y0 - y2) >> 2

	curveShift := diffToShift(dx, dy, shift)
	if curveShift < 0 {
		curveShift = 0
	}
	if curveShift == 0 {
		curveShift = 1
	} else if curveShift > MaxCoeffShift {
		curveShift = MaxCoeffShift
	}
	curveCount := int8(1 << uint(curveShift))
	coeffShift := curveShift - 1

	a := fixed.Dot6ToDot16Div2(x0 - x1 - x1 + x2)
	b := fixed.Dot6ToDot16(x1 - x0)
	qx := fixed.Dot6ToDot16(x0)
	qdx := b + (a >> uint(curveShift))
	var qddx fixed.Dot16
	if coeffShift >= 1 {
		qddx = a >> uint(coeffShift-1)
	} else {
		qddx = a << 1
	}

	a = fixed.Dot6ToDot16Div2(y0 - y1 - y1 + y2)
	b = fixed.Dot6ToDot16(y1 - y0)
	qy := fixed.Dot6ToDot16(y0)
	qdy := b + (a >> uint(curveShift))
	var qddy fixed.Dot16
	if coeffShift >= 1 {
		qddy = a >> uint(coeffShift-1)
	} else {
		qddy = a << 1
	}

	storedShift := coeffShift
	if storedShift < 0 {
		storedShift = 0
	}

	edge := &QuadraticEdge{
		TopY:    top,
		BottomY: bottom,
		line: LineEdge{
			Prev: -1, Next: -1,
			FirstY: top, LastY: bottom - 1,
			Winding: winding,
		},
		curveCount: curveCount,
		curveShift: uint8(storedShift),
		qx:         qx,
		qy:         qy,
		qdx:        qdx,
		qdy:        qdy,
		qddx:       qddx,
		qddy:       qddy,
		qLastX:     fixed.Dot6ToDot16(x2),
		qLastY:     fixed.Dot6ToDot16(y2),
	}

	if !edge.Update() {
		return nil
	}
	return edge
}

// Update advances the curve to its next line segment.
func (q *QuadraticEdge) Update() bool {
	count := q.curveCount
	if count <= 0 {
		return false
	}

	oldx, oldy := q.qx, q.qy
	dx, dy := q.qdx, q.qdy
	shift := q.curveShift

	var newx, newy fixed.Dot16
	var success bool
	for {
		count--
		if count > 0 {
			newx = oldx + (dx >> shift)
			dx += q.qddx
			newy = oldy + (dy >> shift)
			dy += q.qddy
		} else {
			newx = q.qLastX
			newy = q.qLastY
		}

		success = q.line.update(oldx, oldy, newx, newy)
		oldx, oldy = newx, newy
		if count == 0 || success {
			break
		}
	}

	q.qx, q.qy = newx, newy
	q.qdx, q.qdy = dx, dy
	q.curveCount = count
	return success
}

// Line returns the current line segment.
func (q *QuadraticEdge) Line() *LineEdge { return &q.line }

// CurveCount returns the remaining segment count.
func (q *QuadraticEdge) CurveCount() int8 { return q.curveCount }

// Winding returns the edge's winding direction.
func (q *QuadraticEdge) Winding() int8 { return q.line.Winding }

// CubicEdge steps a cubic Bezier via forward differencing.
//
//	p(t) = A*t^3 + B*t^2 + C*t + D
type CubicEdge struct {
	TopY    int32
	BottomY int32

	line LineEdge

	curveCount int8 // counts UP toward 0 (negative initial value)
	curveShift uint8
	dshift     uint8

	cx, cy       fixed.Dot16
	cdx, cdy     fixed.Dot16
	cddx, cddy   fixed.Dot16
	cdddx, cdddy fixed.Dot16

	cLastX, cLastY fixed.Dot16
}

// NewCubicEdge builds a cubic edge, or nil if it has no vertical extent or
// degenerates on its first step.
func NewCubicEdge(p0, p1, p2, p3 CurvePoint, shift int) *CubicEdge {
	cubic := newCubicEdgeSetup(p0, p1, p2, p3, shift, true)
	if cubic == nil {
		return nil
	}
	if cubic.Update() {
		return cubic
	}
	return nil
}

func newCubicEdgeSetup(p0, p1, p2, p3 CurvePoint, shift int, sortY bool) *CubicEdge {
	scale := float64(int32(1) << uint(shift+fixed.Dot6Shift))
	x0 := int32(p0.X * scale)
	y0 := int32(p0.Y * scale)
	x1 := int32(p1.X * scale)
	y1 := int32(p1.Y * scale)
	x2 := int32(p2.X * scale)
	y2 := int32(p2.Y * scale)
	x3 := int32(p3.X * scale)
	y3 := int32(p3.Y * scale)

	winding := int8(1)
	if sortY && y0 > y3 {
		x0, x3 = x3, x0
		x1, x2 = x2, x1
		y0, y3 = y3, y0
		y1, y2 = y2, y1
		winding = -1
	}

	top := fixed.Dot6Round(y0)
	bot := fixed.Dot6Round(y3)
	if sortY && top == bot {
		return nil
	}

	dx := cubicDeltaFromLine(x0, x1, x2, x3)
	dy := cubicDeltaFromLine(y0, y1, y2, y3)

	curveShift := diffToShift(dx, dy, 2) + 1
	if curveShift < 1 {
		curveShift = 1
	}
	if curveShift > MaxCoeffShift {
		curveShift = MaxCoeffShift
	}

	upShift := 6
	downShift := curveShift + upShift - 10
	if downShift < 0 {
		downShift = 0
		upShift = 10 - curveShift
	}

	curveCount := int8(fixed.LeftShift(-1, curveShift))
	dshift := uint8(downShift)

	b := fixed.Dot6UpShift(3*(x1-x0), upShift)
	c := fixed.Dot6UpShift(3*(x0-x1-x1+x2), upShift)
	d := fixed.Dot6UpShift(x3+3*(x1-x2)-x0, upShift)

	cx := fixed.Dot6ToDot16(x0)
	cdx := b + (c >> uint(curveShift)) + (d >> uint(2*curveShift))
	cddx := 2*c + ((3 * d) >> uint(curveShift-1))
	cdddx := (3 * d) >> uint(curveShift-1)

	b = fixed.Dot6UpShift(3*(y1-y0), upShift)
	c = fixed.Dot6UpShift(3*(y0-y1-y1+y2), upShift)
	d = fixed.Dot6UpShift(y3+3*(y1-y2)-y0, upShift)

	cy := fixed.Dot6ToDot16(y0)
	cdy := b + (c >> uint(curveShift)) + (d >> uint(2*curveShift))
	cddy := 2*c + ((3 * d) >> uint(curveShift-1))
	cdddy := (3 * d) >> uint(curveShift-1)

	return &CubicEdge{
		TopY:    top,
		BottomY: bot,
		line: LineEdge{
			Prev: -1, Next: -1,
			FirstY: top, LastY: bot - 1,
			Winding: winding,
		},
		curveCount: curveCount,
		curveShift: uint8(curveShift),
		dshift:     dshift,
		cx:         cx,
		cy:         cy,
		cdx:        cdx,
		cdy:        cdy,
		cddx:       cddx,
		cddy:       cddy,
		cdddx:      cdddx,
		cdddy:      cdddy,
		cLastX:     fixed.Dot6ToDot16(x3),
		cLastY:     fixed.Dot6ToDot16(y3),
	}
}

// Update advances the curve to its next line segment.
func (c *CubicEdge) Update() bool {
	count := c.curveCount
	if count >= 0 {
		return false
	}

	oldx, oldy := c.cx, c.cy
	ddshift := c.curveShift
	dshift := c.dshift

	var newx, newy fixed.Dot16
	var success bool
	for {
		count++
		if count < 0 {
			newx = oldx + (c.cdx >> dshift)
			c.cdx += c.cddx >> ddshift
			c.cddx += c.cdddx

			newy = oldy + (c.cdy >> dshift)
			c.cdy += c.cddy >> ddshift
			c.cddy += c.cdddy
		} else {
			newx = c.cLastX
			newy = c.cLastY
		}

		if newy < oldy {
			newy = oldy // guard against precision-induced backward step
		}

		success = c.line.update(oldx, oldy, newx, newy)
		oldx, oldy = newx, newy
		if count == 0 || success {
			break
		}
	}

	c.cx, c.cy = newx, newy
	c.curveCount = count
	return success
}

// Line returns the current line segment.
func (c *CubicEdge) Line() *LineEdge { return &c.line }

// CurveCount returns the remaining segment count (negative, counting up
// toward 0).
func (c *CubicEdge) CurveCount() int8 { return c.curveCount }

// Winding returns the edge's winding direction.
func (c *CubicEdge) Winding() int8 { return c.line.Winding }

func computeDY(top int32, y0 fixed.Dot6) fixed.Dot6 {
	return fixed.LeftShift(top, fixed.Dot6Shift) + fixed.Dot6Half - y0
}

// diffToShift picks the subdivision count needed for sub-pixel accuracy
// given a curve's deviation (dx, dy) from its chord.
func diffToShift(dx, dy fixed.Dot6, shiftAA int) int {
	dist := cheapDistance(dx, dy)
	dist = (dist + (1 << uint(2+shiftAA))) >> uint(3+shiftAA)
	if dist <= 0 {
		return 0
	}
	return (32 - bits.LeadingZeros32(uint32(dist))) >> 1
}

func cheapDistance(dx, dy fixed.Dot6) fixed.Dot6 {
	dx = fixed.AbsInt32(dx)
	dy = fixed.AbsInt32(dy)
	if dx > dy {
		return dx + (dy >> 1)
	}
	return dy + (dx >> 1)
}

// cubicDeltaFromLine estimates a cubic's maximum deviation from its
// baseline by sampling at t=1/3 and t=2/3.
func cubicDeltaFromLine(a, b, c, d fixed.Dot6) fixed.Dot6 {
	oneThird := ((a*8 - b*15 + 6*c + d) * 19) >> 9
	twoThird := ((a + 6*b - c*15 + d*8) * 19) >> 9
	return fixed.MaxInt32(fixed.AbsInt32(oneThird), fixed.AbsInt32(twoThird))
}

// EdgeType identifies which concrete edge a CurveEdgeVariant holds.
type EdgeType int

// Edge type constants.
const (
	EdgeTypeLine EdgeType = iota
	EdgeTypeQuadratic
	EdgeTypeCubic
)

// CurveEdgeVariant wraps whichever edge type is present for uniform
// handling while draining sorted edges.
type CurveEdgeVariant struct {
	Type      EdgeType
	Line      *LineEdge
	Quadratic *QuadraticEdge
	Cubic     *CubicEdge
}

// AsLine returns the current line segment, whatever the underlying type.
func (e *CurveEdgeVariant) AsLine() *LineEdge {
	switch e.Type {
	case EdgeTypeLine:
		return e.Line
	case EdgeTypeQuadratic:
		return &e.Quadratic.line
	case EdgeTypeCubic:
		return &e.Cubic.line
	default:
		return nil
	}
}

// TopY returns the edge's overall top scanline.
func (e *CurveEdgeVariant) TopY() int32 {
	switch e.Type {
	case EdgeTypeLine:
		return e.Line.FirstY
	case EdgeTypeQuadratic:
		return e.Quadratic.TopY
	case EdgeTypeCubic:
		return e.Cubic.TopY
	default:
		return 0
	}
}

// BottomY returns the edge's overall bottom scanline.
func (e *CurveEdgeVariant) BottomY() int32 {
	switch e.Type {
	case EdgeTypeLine:
		return e.Line.LastY + 1
	case EdgeTypeQuadratic:
		return e.Quadratic.BottomY
	case EdgeTypeCubic:
		return e.Cubic.BottomY
	default:
		return 0
	}
}

// Update advances a curve edge; line edges always report false (no more
// segments to generate).
func (e *CurveEdgeVariant) Update() bool {
	switch e.Type {
	case EdgeTypeQuadratic:
		return e.Quadratic.Update()
	case EdgeTypeCubic:
		return e.Cubic.Update()
	default:
		return false
	}
}

// NewLineEdgeVariant wraps a new line edge, or nil if degenerate.
func NewLineEdgeVariant(p0, p1 CurvePoint, shift int) *CurveEdgeVariant {
	line := NewLineEdge(p0, p1, shift)
	if line == nil {
		return nil
	}
	return &CurveEdgeVariant{Type: EdgeTypeLine, Line: line}
}

// NewQuadraticEdgeVariant wraps a new quadratic edge, or nil if degenerate.
func NewQuadraticEdgeVariant(p0, p1, p2 CurvePoint, shift int) *CurveEdgeVariant {
	quad := NewQuadraticEdge(p0, p1, p2, shift)
	if quad == nil {
		return nil
	}
	return &CurveEdgeVariant{Type: EdgeTypeQuadratic, Quadratic: quad}
}

// NewCubicEdgeVariant wraps a new cubic edge, or nil if degenerate.
func NewCubicEdgeVariant(p0, p1, p2, p3 CurvePoint, shift int) *CurveEdgeVariant {
	cubic := NewCubicEdge(p0, p1, p2, p3, shift)
	if cubic == nil {
		return nil
	}
	return &CurveEdgeVariant{Type: EdgeTypeCubic, Cubic: cubic}
}

// combineResult is the outcome of attempting to fuse two vertical edges.
type combineResult int

// Combine outcomes.
const (
	combineNo combineResult = iota
	combinePartial
	combineTotal
)

// combineVertical attempts to fuse a new vertical edge into the previously
// added one, reducing edge count for paths with coincident vertical
// segments (e.g. rectangle stacks, stroked outlines).
func combineVertical(edge, last *LineEdge) combineResult {
	if last.DX != 0 || edge.X != last.X {
		return combineNo
	}

	if edge.Winding == last.Winding {
		if edge.LastY+1 == last.FirstY {
			last.FirstY = edge.FirstY
			return combinePartial
		}
		if edge.FirstY == last.LastY+1 {
			last.LastY = edge.LastY
			return combinePartial
		}
		return combineNo
	}

	if edge.FirstY == last.FirstY {
		if edge.LastY == last.LastY {
			return combineTotal
		}
		if edge.LastY < last.LastY {
			last.FirstY = edge.LastY + 1
			return combinePartial
		}
		last.FirstY = last.LastY + 1
		last.LastY = edge.LastY
		last.Winding = edge.Winding
		return combinePartial
	}

	if edge.LastY == last.LastY {
		if edge.FirstY > last.FirstY {
			last.LastY = edge.FirstY - 1
			return combinePartial
		}
		last.LastY = last.FirstY - 1
		last.FirstY = edge.FirstY
		last.Winding = edge.Winding
		return combinePartial
	}

	return combineNo
}
