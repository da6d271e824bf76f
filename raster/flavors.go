package raster

import (
	"github.com/gogpu/vgraster/internal/curvechop"
	"github.com/gogpu/vgraster/internal/geom"
)

func toCurvePoint(p geom.Point) CurvePoint {
	return CurvePoint{X: p.X, Y: p.Y}
}

// basicOps flattens every curve down to line segments: the cheapest
// flavor, for fills that don't need curve-aware coverage.
type basicOps struct {
	eb *EdgeBuilder
}

func (o *basicOps) addLine(p0, p1 geom.Point) {
	o.eb.addLineEdge(toCurvePoint(p0), toCurvePoint(p1))
}

func (o *basicOps) addQuad(pts [3]geom.Point) {
	for _, seg := range chopQuadMonotone(pts, o.eb.cfg.chopCubics) {
		flattenQuadToLines(seg, o.eb)
	}
}

func (o *basicOps) addCubic(pts [4]geom.Point) {
	for _, seg := range chopCubicMonotone(pts, o.eb.cfg.chopCubics) {
		flattenCubicToLines(seg, o.eb)
	}
}

// bezierOps preserves quadratics and cubics as forward-differenced curve
// edges, for curve-aware antialiased coverage.
type bezierOps struct {
	eb *EdgeBuilder
}

func (o *bezierOps) addLine(p0, p1 geom.Point) {
	o.eb.addLineEdge(toCurvePoint(p0), toCurvePoint(p1))
}

func (o *bezierOps) addQuad(pts [3]geom.Point) {
	for _, seg := range chopQuadMonotone(pts, o.eb.cfg.chopCubics) {
		o.eb.addQuadEdge(toCurvePoint(seg[0]), toCurvePoint(seg[1]), toCurvePoint(seg[2]))
	}
}

func (o *bezierOps) addCubic(pts [4]geom.Point) {
	for _, seg := range chopCubicMonotone(pts, o.eb.cfg.chopCubics) {
		o.eb.addCubicEdge(toCurvePoint(seg[0]), toCurvePoint(seg[1]), toCurvePoint(seg[2]), toCurvePoint(seg[3]))
	}
}

// analyticOps preserves quadratics but approximates cubics with a short
// run of quadratics (tol = 0.25, the same tolerance used for conics), so
// downstream analytic-coverage code only ever has to reason about lines
// and quadratics.
type analyticOps struct {
	eb *EdgeBuilder
}

func (o *analyticOps) addLine(p0, p1 geom.Point) {
	o.eb.addLineEdge(toCurvePoint(p0), toCurvePoint(p1))
}

func (o *analyticOps) addQuad(pts [3]geom.Point) {
	for _, seg := range chopQuadMonotone(pts, o.eb.cfg.chopCubics) {
		o.eb.addQuadEdge(toCurvePoint(seg[0]), toCurvePoint(seg[1]), toCurvePoint(seg[2]))
	}
}

func (o *analyticOps) addCubic(pts [4]geom.Point) {
	for _, mono := range chopCubicMonotone(pts, o.eb.cfg.chopCubics) {
		for _, quad := range approximateCubicAsQuads(mono) {
			for _, seg := range chopQuadMonotone(quad, o.eb.cfg.chopCubics) {
				o.eb.addQuadEdge(toCurvePoint(seg[0]), toCurvePoint(seg[1]), toCurvePoint(seg[2]))
			}
		}
	}
}

// chopQuadMonotone splits pts at its Y extremum when needed, returning one
// or two monotone quads. chopEnabled lets callers route through
// WithChopCubics(false) to skip this for already-monotone input.
func chopQuadMonotone(pts [3]geom.Point, chopEnabled bool) [][3]geom.Point {
	if !chopEnabled {
		return [][3]geom.Point{pts}
	}
	var dst [5]geom.Point
	if n := curvechop.ChopQuadAtYExtrema(pts, &dst); n == 0 {
		return [][3]geom.Point{{dst[0], dst[1], dst[2]}}
	}
	return [][3]geom.Point{
		{dst[0], dst[1], dst[2]},
		{dst[2], dst[3], dst[4]},
	}
}

// chopCubicMonotone splits pts at its Y extrema (up to two), returning one
// to three monotone cubics.
func chopCubicMonotone(pts [4]geom.Point, chopEnabled bool) [][4]geom.Point {
	if !chopEnabled {
		return [][4]geom.Point{pts}
	}
	var dst [10]geom.Point
	n := curvechop.ChopCubicAtYExtrema(pts, &dst)
	segs := make([][4]geom.Point, 0, n+1)
	segs = append(segs, [4]geom.Point{dst[0], dst[1], dst[2], dst[3]})
	if n >= 1 {
		segs = append(segs, [4]geom.Point{dst[3], dst[4], dst[5], dst[6]})
	}
	if n >= 2 {
		segs = append(segs, [4]geom.Point{dst[6], dst[7], dst[8], dst[9]})
	}
	return segs
}

// approximateCubicAsQuads converts a cubic to a short run of quadratics by
// treating it as a weight-1 conic is not valid (conics are rational
// quadratics, cubics are not); instead this subdivides the cubic
// recursively until each piece is close enough to its own quadratic
// approximation (control point = the average of (3*p1-p0)/2 and
// (3*p2-p3)/2, the cubic's control points projected from its endpoints),
// in the same flatness-testing spirit as flattenQuadraticRec.
func approximateCubicAsQuads(pts [4]geom.Point) [][3]geom.Point {
	const tol = 0.25
	return subdivideCubicToQuads(pts, tol, 0)
}

func subdivideCubicToQuads(pts [4]geom.Point, tol float64, depth int) [][3]geom.Point {
	p0, p1, p2, p3 := pts[0], pts[1], pts[2], pts[3]
	// Candidate quadratic control point: intersection-free approximation,
	// the midpoint of the two cubic control points projected from the
	// endpoints (3/2 scale is the standard cubic->quadratic control point
	// estimate when the cubic was itself promoted from a quadratic).
	approxCtrl := geom.Point{
		X: (3*p1.X + 3*p2.X - p0.X - p3.X) / 4,
		Y: (3*p1.Y + 3*p2.Y - p0.Y - p3.Y) / 4,
	}

	if depth >= 4 || cubicCloseToQuad(pts, approxCtrl, tol) {
		return [][3]geom.Point{{p0, approxCtrl, p3}}
	}

	left, right := splitCubicAtHalf(pts)
	out := subdivideCubicToQuads(left, tol, depth+1)
	out = append(out, subdivideCubicToQuads(right, tol, depth+1)...)
	return out
}

func cubicCloseToQuad(pts [4]geom.Point, ctrl geom.Point, tol float64) bool {
	// Sample the true cubic and the candidate quadratic at t=0.5 and
	// compare; close enough when within tol.
	cubicMid := evalCubic(pts, 0.5)
	quadMid := evalQuad(pts[0], ctrl, pts[3], 0.5)
	dx := cubicMid.X - quadMid.X
	dy := cubicMid.Y - quadMid.Y
	return dx*dx+dy*dy <= tol*tol
}

func evalCubic(pts [4]geom.Point, t float64) geom.Point {
	mt := 1 - t
	p0, p1, p2, p3 := pts[0], pts[1], pts[2], pts[3]
	return geom.Point{
		X: mt*mt*mt*p0.X + 3*mt*mt*t*p1.X + 3*mt*t*t*p2.X + t*t*t*p3.X,
		Y: mt*mt*mt*p0.Y + 3*mt*mt*t*p1.Y + 3*mt*t*t*p2.Y + t*t*t*p3.Y,
	}
}

func evalQuad(p0, p1, p2 geom.Point, t float64) geom.Point {
	mt := 1 - t
	return geom.Point{
		X: mt*mt*p0.X + 2*mt*t*p1.X + t*t*p2.X,
		Y: mt*mt*p0.Y + 2*mt*t*p1.Y + t*t*p2.Y,
	}
}

func splitCubicAtHalf(pts [4]geom.Point) (left, right [4]geom.Point) {
	p0, p1, p2, p3 := pts[0], pts[1], pts[2], pts[3]
	ab := p0.Lerp(p1, 0.5)
	bc := p1.Lerp(p2, 0.5)
	cd := p2.Lerp(p3, 0.5)
	abbc := ab.Lerp(bc, 0.5)
	bccd := bc.Lerp(cd, 0.5)
	mid := abbc.Lerp(bccd, 0.5)
	return [4]geom.Point{p0, ab, abbc, mid}, [4]geom.Point{mid, bccd, cd, p3}
}

// flattenQuadToLines emits straight-line edges approximating pts to
// within a fixed tolerance, in the same recursive-midpoint idiom as
// internal/path/flatten.go's flattenQuadraticRec.
func flattenQuadToLines(pts [3]geom.Point, eb *EdgeBuilder) {
	const tol = 0.1
	flattenQuadRec(pts[0], pts[1], pts[2], tol, 0, eb)
}

func flattenQuadRec(p0, p1, p2 geom.Point, tol float64, depth int, eb *EdgeBuilder) {
	mid := p0.Lerp(p2, 0.5)
	dx := p1.X - mid.X
	dy := p1.Y - mid.Y
	if depth >= 10 || dx*dx+dy*dy <= tol*tol {
		eb.addLineEdge(toCurvePoint(p0), toCurvePoint(p2))
		return
	}
	p01 := p0.Lerp(p1, 0.5)
	p12 := p1.Lerp(p2, 0.5)
	split := p01.Lerp(p12, 0.5)
	flattenQuadRec(p0, p01, split, tol, depth+1, eb)
	flattenQuadRec(split, p12, p2, tol, depth+1, eb)
}

func flattenCubicToLines(pts [4]geom.Point, eb *EdgeBuilder) {
	const tol = 0.1
	flattenCubicRec(pts[0], pts[1], pts[2], pts[3], tol, 0, eb)
}

func flattenCubicRec(p0, p1, p2, p3 geom.Point, tol float64, depth int, eb *EdgeBuilder) {
	if depth >= 10 || cubicFlatEnough(p0, p1, p2, p3, tol) {
		eb.addLineEdge(toCurvePoint(p0), toCurvePoint(p3))
		return
	}
	left, right := splitCubicAtHalf([4]geom.Point{p0, p1, p2, p3})
	flattenCubicRec(left[0], left[1], left[2], left[3], tol, depth+1, eb)
	flattenCubicRec(right[0], right[1], right[2], right[3], tol, depth+1, eb)
}

func cubicFlatEnough(p0, p1, p2, p3 geom.Point, tol float64) bool {
	d1 := pointLineDistSq(p1, p0, p3)
	d2 := pointLineDistSq(p2, p0, p3)
	return d1 <= tol*tol && d2 <= tol*tol
}

func pointLineDistSq(p, a, b geom.Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		px := p.X - a.X
		py := p.Y - a.Y
		return px*px + py*py
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	proj := geom.Point{X: a.X + t*dx, Y: a.Y + t*dy}
	ex := p.X - proj.X
	ey := p.Y - proj.Y
	return ex*ex + ey*ey
}
