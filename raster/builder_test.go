package raster

import (
	"math"
	"testing"

	"github.com/gogpu/vgraster/internal/geom"
	"github.com/gogpu/vgraster/internal/pathio"
)

func unitSquare() *pathio.Path {
	p := pathio.NewPath()
	p.MoveTo(geom.Point{X: 0, Y: 0})
	p.LineTo(geom.Point{X: 10, Y: 0})
	p.LineTo(geom.Point{X: 10, Y: 10})
	p.LineTo(geom.Point{X: 0, Y: 10})
	p.Close()
	return p
}

func TestBuildFromPathBasicSquareProducesLineEdges(t *testing.T) {
	eb := NewEdgeBuilder(FlavorBasic, 0)
	eb.BuildFromPath(unitSquare(), geom.Identity())

	if eb.IsEmpty() {
		t.Fatal("expected edges for a closed square")
	}
	if eb.LineEdgeCount() == 0 {
		t.Errorf("expected line edges, got 0")
	}
	if eb.QuadraticEdgeCount() != 0 || eb.CubicEdgeCount() != 0 {
		t.Errorf("basic flavor must not emit curve edges, got quad=%d cubic=%d",
			eb.QuadraticEdgeCount(), eb.CubicEdgeCount())
	}
}

func TestBuildFromPathBezierQuadPreservesCurveEdge(t *testing.T) {
	p := pathio.NewPath()
	p.MoveTo(geom.Point{X: 0, Y: 0})
	p.QuadTo(geom.Point{X: 5, Y: 10}, geom.Point{X: 10, Y: 0})
	p.Close()

	eb := NewEdgeBuilder(FlavorBezier, 0)
	eb.BuildFromPath(p, geom.Identity())

	if eb.QuadraticEdgeCount() == 0 {
		t.Error("expected at least one quadratic edge under FlavorBezier")
	}
}

func TestBuildFromPathAnalyticApproximatesCubicAsQuads(t *testing.T) {
	p := pathio.NewPath()
	p.MoveTo(geom.Point{X: 0, Y: 0})
	p.CubicTo(geom.Point{X: 3, Y: 10}, geom.Point{X: 7, Y: -10}, geom.Point{X: 10, Y: 0})
	p.Close()

	eb := NewEdgeBuilder(FlavorAnalytic, 0)
	eb.BuildFromPath(p, geom.Identity())

	if eb.CubicEdgeCount() != 0 {
		t.Errorf("analytic flavor must not emit cubic edges, got %d", eb.CubicEdgeCount())
	}
	if eb.QuadraticEdgeCount() == 0 && eb.LineEdgeCount() == 0 {
		t.Error("expected the cubic to be approximated into quadratic (or degenerate line) edges")
	}
}

func TestBuildFromPathAbortsOnNonFiniteCoordinate(t *testing.T) {
	p := pathio.NewPath()
	p.MoveTo(geom.Point{X: 0, Y: 0})
	p.LineTo(geom.Point{X: math.Inf(1), Y: 0})

	eb := NewEdgeBuilder(FlavorBasic, 0)
	eb.BuildFromPath(p, geom.Identity())

	if eb.LastError() != ErrNonFiniteCoordinate {
		t.Errorf("expected ErrNonFiniteCoordinate, got %v", eb.LastError())
	}
}

func TestBuildFromPathWithClipRectDropsOutOfBoundsGeometry(t *testing.T) {
	p := pathio.NewPath()
	p.MoveTo(geom.Point{X: 200, Y: 200})
	p.LineTo(geom.Point{X: 300, Y: 200})
	p.LineTo(geom.Point{X: 300, Y: 300})
	p.Close()

	eb := NewEdgeBuilder(FlavorBasic, 0, WithClipRect(geom.Rect{Left: 0, Top: 0, Right: 10, Bottom: 10}))
	eb.BuildFromPath(p, geom.Identity())

	if !eb.IsEmpty() {
		t.Errorf("expected all geometry to be clipped away, got %d edges", eb.EdgeCount())
	}
}

func TestResetClearsBuilderState(t *testing.T) {
	eb := NewEdgeBuilder(FlavorBasic, 0)
	eb.BuildFromPath(unitSquare(), geom.Identity())
	if eb.IsEmpty() {
		t.Fatal("expected edges before reset")
	}
	eb.Reset()
	if !eb.IsEmpty() {
		t.Error("expected builder to be empty after Reset")
	}
}

func TestAllEdgesYieldsInTopYOrder(t *testing.T) {
	p := pathio.NewPath()
	p.MoveTo(geom.Point{X: 0, Y: 20})
	p.LineTo(geom.Point{X: 10, Y: 0})
	p.LineTo(geom.Point{X: 20, Y: 20})
	p.Close()

	eb := NewEdgeBuilder(FlavorBasic, 0)
	eb.BuildFromPath(p, geom.Identity())

	var lastTop int32 = -1 << 30
	for e := range eb.AllEdges() {
		if e.TopY() < lastTop {
			t.Errorf("edges out of order: got topY=%d after %d", e.TopY(), lastTop)
		}
		lastTop = e.TopY()
	}
}

func TestEdgeListYieldsInSourceTraversalOrderAcrossKinds(t *testing.T) {
	p := pathio.NewPath()
	p.MoveTo(geom.Point{X: 0, Y: 0})
	p.LineTo(geom.Point{X: 10, Y: 5})
	p.QuadTo(geom.Point{X: 15, Y: 15}, geom.Point{X: 20, Y: 25})
	p.LineTo(geom.Point{X: 0, Y: 30})
	p.Close()

	eb := NewEdgeBuilder(FlavorBezier, 0)
	eb.BuildFromPath(p, geom.Identity())

	var kinds []EdgeType
	for e := range eb.EdgeList() {
		kinds = append(kinds, e.Type)
	}

	want := []EdgeType{EdgeTypeLine, EdgeTypeQuadratic, EdgeTypeLine}
	if len(kinds) < len(want) {
		t.Fatalf("got %d edges, want at least %d matching the line/quad/line traversal", len(kinds), len(want))
	}
	for i, k := range want {
		if kinds[i] != k {
			t.Errorf("edge %d: got kind %v, want %v (source traversal order)", i, kinds[i], k)
		}
	}
}
