// Package curvechop splits quadratic and cubic Bezier curves at their Y
// extrema so that every resulting segment is Y-monotonic, and approximates
// conic (rational quadratic) segments with a short run of ordinary
// quadratics so the rest of the pipeline never has to deal with weights.
//
// Reference: tiny-skia/src/path_geometry.rs, ported here to float64 scalar
// coordinates ahead of the fixed-point conversion the edge builder performs.
package curvechop

import (
	"math"

	"github.com/gogpu/vgraster/internal/geom"
)

// ChopQuadAtYExtrema chops a quadratic Bezier at its Y extremum, if any.
//
// Returns 0 if dst[0:3] already holds a monotonic curve, or 1 if dst[0:3]
// and dst[2:5] hold two monotonic curves sharing the split point dst[2].
func ChopQuadAtYExtrema(src [3]geom.Point, dst *[5]geom.Point) int {
	a := src[0].Y
	b := src[1].Y
	c := src[2].Y

	if isNotMonotonic(a, b, c) {
		t := validUnitDivide(a-b, a-2*b+c)
		if t > 0 && t < 1 {
			chopQuadAt(src, t, dst)

			minY1, maxY1 := minMax(dst[0].Y, dst[2].Y)
			dst[1].Y = clamp(dst[1].Y, minY1, maxY1)

			minY2, maxY2 := minMax(dst[2].Y, dst[4].Y)
			dst[3].Y = clamp(dst[3].Y, minY2, maxY2)
			return 1
		}
		if math.Abs(a-b) < math.Abs(b-c) {
			b = a
		} else {
			b = c
		}
	}

	dst[0] = geom.Point{X: src[0].X, Y: a}
	dst[1] = geom.Point{X: src[1].X, Y: b}
	dst[2] = geom.Point{X: src[2].X, Y: c}
	return 0
}

// ChopCubicAtYExtrema chops a cubic Bezier at its Y extrema (up to two).
//
// Returns the number of chops (0, 1, or 2). dst[0:4] always holds the first
// segment; dst[3:7] the second (if numChops >= 1); dst[6:10] the third (if
// numChops == 2).
func ChopCubicAtYExtrema(src [4]geom.Point, dst *[10]geom.Point) int {
	a := src[0].Y
	b := src[1].Y
	c := src[2].Y
	d := src[3].Y

	tValues := findCubicExtrema(a, b, c, d)
	numChops := len(tValues)

	chopCubicAt(src, tValues, dst)

	clampSegment := func(start int) {
		p0Y := dst[start].Y
		p3Y := dst[start+3].Y
		minY, maxY := minMax(p0Y, p3Y)
		dst[start+1].Y = clamp(dst[start+1].Y, minY, maxY)
		dst[start+2].Y = clamp(dst[start+2].Y, minY, maxY)
	}

	clampSegment(0)
	if numChops >= 1 {
		clampSegment(3)
	}
	if numChops >= 2 {
		clampSegment(6)
	}
	return numChops
}

// QuadIsYMonotonic reports whether the quadratic's control point Y lies
// within the range spanned by its endpoints.
func QuadIsYMonotonic(p0, p1, p2 geom.Point) bool {
	minY, maxY := minMax(p0.Y, p2.Y)
	return p1.Y >= minY && p1.Y <= maxY
}

// CubicIsYMonotonic reports whether the cubic has no Y extrema in (0, 1).
func CubicIsYMonotonic(p0, p1, p2, p3 geom.Point) bool {
	return len(findCubicExtrema(p0.Y, p1.Y, p2.Y, p3.Y)) == 0
}

func isNotMonotonic(a, b, c float64) bool {
	ab := a - b
	bc := b - c
	if ab < 0 {
		bc = -bc
	}
	return ab == 0 || bc < 0
}

func validUnitDivide(numer, denom float64) float64 {
	if denom == 0 {
		return 0
	}
	t := numer / denom
	if t > 0 && t < 1 {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0
		}
		return t
	}
	return 0
}

func chopQuadAt(src [3]geom.Point, t float64, dst *[5]geom.Point) {
	ab := src[0].Lerp(src[1], t)
	bc := src[1].Lerp(src[2], t)
	abbc := ab.Lerp(bc, t)

	dst[0] = src[0]
	dst[1] = ab
	dst[2] = abbc
	dst[3] = bc
	dst[4] = src[2]
}

func chopCubicAt(src [4]geom.Point, tValues []float64, dst *[10]geom.Point) {
	if len(tValues) == 0 {
		dst[0], dst[1], dst[2], dst[3] = src[0], src[1], src[2], src[3]
		return
	}

	t := tValues[0]
	chopCubicAtSingle(src, t, dst)

	if len(tValues) == 1 {
		return
	}

	t2 := tValues[1]
	newT := validUnitDivide(t2-t, 1-t)
	if newT <= 0 {
		dst[7], dst[8], dst[9] = src[3], src[3], src[3]
		return
	}

	remaining := [4]geom.Point{dst[3], dst[4], dst[5], dst[6]}
	var secondHalf [10]geom.Point
	chopCubicAtSingle(remaining, newT, &secondHalf)

	dst[4] = secondHalf[1]
	dst[5] = secondHalf[2]
	dst[6] = secondHalf[3]
	dst[7] = secondHalf[4]
	dst[8] = secondHalf[5]
	dst[9] = secondHalf[6]
}

func chopCubicAtSingle(src [4]geom.Point, t float64, dst *[10]geom.Point) {
	ab := src[0].Lerp(src[1], t)
	bc := src[1].Lerp(src[2], t)
	cd := src[2].Lerp(src[3], t)

	abbc := ab.Lerp(bc, t)
	bccd := bc.Lerp(cd, t)

	abbcbccd := abbc.Lerp(bccd, t)

	dst[0] = src[0]
	dst[1] = ab
	dst[2] = abbc
	dst[3] = abbcbccd

	dst[4] = bccd
	dst[5] = cd
	dst[6] = src[3]
}

func findCubicExtrema(a, b, c, d float64) []float64 {
	na := d - a + 3*(b-c)
	nb := 2 * (a - 2*b + c)
	nc := b - a
	return findUnitQuadRoots(na, nb, nc)
}

func findUnitQuadRoots(a, b, c float64) []float64 {
	const epsilon = 1e-9

	if math.Abs(a) < epsilon {
		if math.Abs(b) < epsilon {
			return nil
		}
		t := -c / b
		if t > 0 && t < 1 {
			return []float64{t}
		}
		return nil
	}

	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return nil
	}

	sqrtD := math.Sqrt(discriminant)
	inv2a := 1.0 / (2 * a)

	t1 := (-b - sqrtD) * inv2a
	t2 := (-b + sqrtD) * inv2a
	if t1 > t2 {
		t1, t2 = t2, t1
	}

	var roots []float64
	if t1 > epsilon && t1 < 1-epsilon {
		roots = append(roots, t1)
	}
	if t2 > epsilon && t2 < 1-epsilon && math.Abs(t2-t1) > epsilon {
		roots = append(roots, t2)
	}
	return roots
}

func minMax(a, b float64) (float64, float64) {
	if a < b {
		return a, b
	}
	return b, a
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// MaxConicToQuadCount bounds how many quadratics ApproximateConic can ever
// emit (2^5, for subdivideConic's recursion depth limit of 5).
const MaxConicToQuadCount = 1 << 5

// ApproximateConic subdivides a conic (weighted quadratic with control
// point c and weight w) into a short run of ordinary quadratic Beziers
// accurate to within tol of the true conic, and appends their control and
// end points to dst (dst grows by 2 points per emitted quadratic; the
// shared start point p0 is not re-emitted).
//
// The subdivision follows the same recursive-midpoint strategy as a curve
// flattener: at each level it compares the conic's true midpoint against
// the midpoint of the naive quadratic approximation, and keeps splitting
// while the two disagree by more than tol.
func ApproximateConic(p0, c, p1 geom.Point, w float64, tol float64, dst []geom.Point) []geom.Point {
	return subdivideConic(p0, c, p1, w, tol, dst, 0)
}

func subdivideConic(p0, c, p1 geom.Point, w float64, tol float64, dst []geom.Point, depth int) []geom.Point {
	if depth >= 5 || conicFlatEnough(p0, c, p1, w, tol) {
		return append(dst, c, p1)
	}

	// Evaluate the conic's true midpoint via the rational de Casteljau
	// step, then recurse on each half (each half is itself a conic with
	// weight sqrt((1+w)/2), per Lee's conic-subdivision identity).
	midW := math.Sqrt(0.5 + 0.5*w)

	p01 := geom.Point{X: (p0.X + w*c.X) / (1 + w), Y: (p0.Y + w*c.Y) / (1 + w)}
	p12 := geom.Point{X: (w*c.X + p1.X) / (1 + w), Y: (w*c.Y + p1.Y) / (1 + w)}

	mid := geom.Point{
		X: (p0.X + 2*w*c.X + p1.X) / (2 + 2*w),
		Y: (p0.Y + 2*w*c.Y + p1.Y) / (2 + 2*w),
	}

	dst = subdivideConic(p0, p01, mid, midW, tol, dst, depth+1)
	dst = subdivideConic(mid, p12, p1, midW, tol, dst, depth+1)
	return dst
}

func conicFlatEnough(p0, c, p1 geom.Point, w float64, tol float64) bool {
	mid := geom.Point{
		X: (p0.X + 2*w*c.X + p1.X) / (2 + 2*w),
		Y: (p0.Y + 2*w*c.Y + p1.Y) / (2 + 2*w),
	}
	naive := p0.Lerp(p1, 0.5).Lerp(c, 0.5)
	dx := mid.X - naive.X
	dy := mid.Y - naive.Y
	return dx*dx+dy*dy <= tol*tol
}

// CountConicQuads estimates, without actually subdividing, how many
// quadratics ApproximateConic will emit for the given weight and tolerance.
// Used by callers that need to size a buffer up front.
func CountConicQuads(w float64, tol float64) int {
	// A conic with w close to 1 behaves like a single quadratic; sharper
	// weights (closer to 0 or far above 1) need more subdivisions to stay
	// within tolerance. This mirrors the heuristic power used by
	// SkConic::computeQuadPow2 without requiring a full subdivision pass.
	deviation := math.Abs(w - 1)
	if deviation < 1e-4 {
		return 1
	}
	pow := int(math.Ceil(math.Log2(1 + deviation/tol)))
	if pow < 0 {
		pow = 0
	}
	if pow > 5 {
		pow = 5
	}
	return 1 << pow
}
