package pathio

import (
	"testing"

	"github.com/gogpu/vgraster/internal/geom"
)

func TestCursorTriangle(t *testing.T) {
	p := NewPath().
		MoveTo(geom.Point{X: 0, Y: 0}).
		LineTo(geom.Point{X: 10, Y: 0}).
		LineTo(geom.Point{X: 10, Y: 10}).
		Close()

	c := p.Cursor()

	v, pts, _ := c.Next()
	if v != geom.Move || pts[0] != (geom.Point{X: 0, Y: 0}) {
		t.Fatalf("verb 0 = %v %v", v, pts[0])
	}
	v, pts, _ = c.Next()
	if v != geom.Line || pts[0] != (geom.Point{X: 0, Y: 0}) || pts[1] != (geom.Point{X: 10, Y: 0}) {
		t.Fatalf("verb 1 = %v %v %v", v, pts[0], pts[1])
	}
	v, pts, _ = c.Next()
	if v != geom.Line || pts[1] != (geom.Point{X: 10, Y: 10}) {
		t.Fatalf("verb 2 = %v %v", v, pts[1])
	}
	v, pts, _ = c.Next()
	if v != geom.Close || pts[1] != (geom.Point{X: 0, Y: 0}) {
		t.Fatalf("close should return to moveTo point, got %v", pts[1])
	}
	if v, _, _ := c.Next(); v != geom.Done {
		t.Fatalf("expected Done, got %v", v)
	}
}

func TestCursorConicWeight(t *testing.T) {
	p := NewPath().
		MoveTo(geom.Point{X: 0, Y: 0}).
		ConicTo(geom.Point{X: 5, Y: 5}, geom.Point{X: 10, Y: 0}, 0.75)

	c := p.Cursor()
	c.Next() // Move
	v, pts, w := c.Next()
	if v != geom.Conic {
		t.Fatalf("expected Conic, got %v", v)
	}
	if w != 0.75 {
		t.Errorf("weight = %v, want 0.75", w)
	}
	if pts[1] != (geom.Point{X: 5, Y: 5}) || pts[2] != (geom.Point{X: 10, Y: 0}) {
		t.Errorf("conic points = %v", pts)
	}
}

func TestCursorCubicFourPoints(t *testing.T) {
	p := NewPath().
		MoveTo(geom.Point{X: 0, Y: 0}).
		CubicTo(geom.Point{X: 1, Y: 1}, geom.Point{X: 2, Y: 2}, geom.Point{X: 3, Y: 0})

	c := p.Cursor()
	c.Next()
	v, pts, _ := c.Next()
	if v != geom.Cubic {
		t.Fatalf("expected Cubic, got %v", v)
	}
	want := [4]geom.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 0}}
	if pts != want {
		t.Errorf("cubic points = %v, want %v", pts, want)
	}
}

func TestSegmentMasks(t *testing.T) {
	p := NewPath().
		MoveTo(geom.Point{}).
		LineTo(geom.Point{X: 1}).
		QuadTo(geom.Point{X: 2}, geom.Point{X: 3}).
		CubicTo(geom.Point{X: 4}, geom.Point{X: 5}, geom.Point{X: 6})

	mask := p.SegmentMasks()
	if mask&SegmentLine == 0 || mask&SegmentQuad == 0 || mask&SegmentCubic == 0 {
		t.Errorf("segment mask = %b, missing expected bits", mask)
	}
	if mask&SegmentConic != 0 {
		t.Errorf("segment mask = %b, unexpected conic bit", mask)
	}
}

func TestConvexityDefaultUnknown(t *testing.T) {
	p := NewPath()
	if p.IsConvex() {
		t.Error("new path should not report convex by default")
	}
	p.SetConvexity(Convex)
	if !p.IsConvex() {
		t.Error("SetConvexity(Convex) should make IsConvex true")
	}
}

func TestCloseWithoutMoveIsOrigin(t *testing.T) {
	// A Close with no prior MoveTo degenerates to the zero point; this
	// exercises the zero-value subpathPt0 path rather than a real use case.
	p := NewPath().Close()
	c := p.Cursor()
	v, pts, _ := c.Next()
	if v != geom.Close {
		t.Fatalf("expected Close, got %v", v)
	}
	if pts[1] != (geom.Point{}) {
		t.Errorf("close target = %v, want zero point", pts[1])
	}
}
