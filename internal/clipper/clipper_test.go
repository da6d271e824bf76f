package clipper

import (
	"math"
	"testing"

	"github.com/gogpu/vgraster/internal/geom"
)

func rect(l, t, r, b float64) geom.Rect {
	return geom.Rect{Left: l, Top: t, Right: r, Bottom: b}
}

func TestClipLineFullyInside(t *testing.T) {
	c := NewEdgeClipper(rect(0, 0, 100, 100), false)
	c.ClipLine(geom.Point{X: 10, Y: 10}, geom.Point{X: 20, Y: 20})
	p, ok := c.Next()
	if !ok {
		t.Fatal("expected one piece")
	}
	if p.Verb != geom.Line || p.Pts[0] != (geom.Point{X: 10, Y: 10}) || p.Pts[1] != (geom.Point{X: 20, Y: 20}) {
		t.Errorf("got %+v", p)
	}
	if _, ok := c.Next(); ok {
		t.Error("expected no more pieces")
	}
}

func TestClipLineOutsideYRange(t *testing.T) {
	c := NewEdgeClipper(rect(0, 0, 100, 100), false)
	c.ClipLine(geom.Point{X: 10, Y: 200}, geom.Point{X: 20, Y: 300})
	if _, ok := c.Next(); ok {
		t.Error("expected no pieces for a line entirely below the clip")
	}
}

func TestClipLineClampsYAtBoundary(t *testing.T) {
	c := NewEdgeClipper(rect(0, 0, 100, 100), false)
	c.ClipLine(geom.Point{X: 10, Y: -10}, geom.Point{X: 10, Y: 110})
	p, ok := c.Next()
	if !ok {
		t.Fatal("expected a clipped piece")
	}
	if p.Pts[0].Y != 0 || p.Pts[1].Y != 100 {
		t.Errorf("expected Y clamped to [0,100], got %+v", p)
	}
}

func TestClipLineClampsXAtRightBoundary(t *testing.T) {
	// convex=true: CanCullToTheRight is false, so the out-of-range segment
	// is clamped to a vertical edge rather than dropped.
	c := NewEdgeClipper(rect(0, 0, 100, 100), true)
	c.ClipLine(geom.Point{X: 150, Y: 10}, geom.Point{X: 200, Y: 20})
	p, ok := c.Next()
	if !ok {
		t.Fatal("expected a clamped vertical piece")
	}
	if p.Pts[0].X != 100 || p.Pts[1].X != 100 {
		t.Errorf("expected both X clamped to the clip's right edge, got %+v", p)
	}
}

func TestCanCullToTheRight(t *testing.T) {
	convex := NewEdgeClipper(rect(0, 0, 100, 100), true)
	if convex.CanCullToTheRight() {
		t.Error("convex path must not cull to the right: it needs both edges at every scanline")
	}
	concave := NewEdgeClipper(rect(0, 0, 100, 100), false)
	if !concave.CanCullToTheRight() {
		t.Error("non-convex path should allow culling to the right")
	}
}

func TestClipLineCullsPastRightEdgeForNonConvexPath(t *testing.T) {
	c := NewEdgeClipper(rect(0, 0, 100, 100), false)
	c.ClipLine(geom.Point{X: 150, Y: 10}, geom.Point{X: 200, Y: 20})
	if _, ok := c.Next(); ok {
		t.Error("expected the segment entirely past the right clip edge to be culled")
	}
}

func TestClipQuadInsideUnchanged(t *testing.T) {
	c := NewEdgeClipper(rect(0, 0, 100, 100), false)
	pts := [3]geom.Point{{X: 10, Y: 10}, {X: 20, Y: 30}, {X: 30, Y: 50}}
	c.ClipQuad(pts)
	p, ok := c.Next()
	if !ok {
		t.Fatal("expected one piece")
	}
	if p.Verb != geom.Quad {
		t.Fatalf("expected Quad verb, got %v", p.Verb)
	}
	const eps = 1e-6
	for i := 0; i < 3; i++ {
		if math.Abs(p.Pts[i].X-pts[i].X) > eps || math.Abs(p.Pts[i].Y-pts[i].Y) > eps {
			t.Errorf("point %d changed: got %+v, want %+v", i, p.Pts[i], pts[i])
		}
	}
}

func TestClipQuadCrossingBottom(t *testing.T) {
	c := NewEdgeClipper(rect(0, 0, 100, 50), false)
	pts := [3]geom.Point{{X: 0, Y: 0}, {X: 50, Y: 50}, {X: 100, Y: 100}}
	c.ClipQuad(pts)
	p, ok := c.Next()
	if !ok {
		t.Fatal("expected one piece")
	}
	if p.Pts[2].Y > 50.0001 {
		t.Errorf("chopped quad end point Y = %v, want <= 50", p.Pts[2].Y)
	}
}

func TestClipCubicOutsideEntirely(t *testing.T) {
	c := NewEdgeClipper(rect(0, 0, 100, 100), false)
	pts := [4]geom.Point{{X: 0, Y: 200}, {X: 10, Y: 210}, {X: 20, Y: 220}, {X: 30, Y: 230}}
	c.ClipCubic(pts)
	if _, ok := c.Next(); ok {
		t.Error("expected no pieces for a cubic entirely below the clip")
	}
}
