package raster

import (
	"testing"

	"github.com/gogpu/vgraster/internal/fixed"
	"github.com/gogpu/vgraster/internal/geom"
	"github.com/gogpu/vgraster/internal/pathio"
)

func buildEdges(t *testing.T, p *pathio.Path, flavor Flavor) []CurveEdgeVariant {
	t.Helper()
	eb := NewEdgeBuilder(flavor, 0)
	eb.BuildFromPath(p, geom.Identity())
	if err := eb.LastError(); err != nil {
		t.Fatalf("build failed: %v", err)
	}
	edges := make([]CurveEdgeVariant, 0, eb.EdgeCount())
	for e := range eb.AllEdges() {
		edges = append(edges, e)
	}
	return edges
}

func TestActiveEdgeTableSquareHasOneSpanPerRow(t *testing.T) {
	p := pathio.NewPath()
	p.MoveTo(geom.Point{X: 0, Y: 0})
	p.LineTo(geom.Point{X: 10, Y: 0})
	p.LineTo(geom.Point{X: 10, Y: 10})
	p.LineTo(geom.Point{X: 0, Y: 10})
	p.Close()

	edges := buildEdges(t, p, FlavorBasic)
	table := NewActiveEdgeTable(edges)

	sawSpan := false
	for y := int32(0); y < 10*64 && !table.Done(); y++ {
		table.AdvanceTo(y)
		rowSpans := 0
		table.Spans(func(xStart, xEnd fixed.Dot16) bool {
			sawSpan = true
			rowSpans++
			if xEnd <= xStart {
				t.Errorf("span at y=%d has non-positive width: [%d, %d]", y, xStart, xEnd)
			}
			return true
		})
		if table.Len() > 0 && rowSpans != 1 {
			t.Errorf("row %d has %d spans, want 1", y, rowSpans)
		}
	}
	if !sawSpan {
		t.Error("expected at least one inside span for a filled square")
	}
}

func TestActiveEdgeTableDoneAfterAllEdgesConsumed(t *testing.T) {
	p := pathio.NewPath()
	p.MoveTo(geom.Point{X: 0, Y: 0})
	p.LineTo(geom.Point{X: 4, Y: 0})
	p.LineTo(geom.Point{X: 4, Y: 4})
	p.Close()

	edges := buildEdges(t, p, FlavorBasic)
	table := NewActiveEdgeTable(edges)
	for y := int32(0); y < 4*64+10; y++ {
		if table.Done() {
			return
		}
		table.AdvanceTo(y)
	}
	if !table.Done() {
		t.Error("expected table to be exhausted well past the shape's bottom")
	}
}

func TestRasterizeInvokesSpanFuncForFilledTriangle(t *testing.T) {
	p := pathio.NewPath()
	p.MoveTo(geom.Point{X: 0, Y: 0})
	p.LineTo(geom.Point{X: 10, Y: 0})
	p.LineTo(geom.Point{X: 5, Y: 10})
	p.Close()

	count := 0
	err := Rasterize(p, geom.Identity(), FlavorBasic, 0, func(y int32, xStart, xEnd fixed.Dot16) {
		count++
	})
	if err != nil {
		t.Fatalf("Rasterize returned error: %v", err)
	}
	if count == 0 {
		t.Error("expected Rasterize to invoke the span callback at least once")
	}
}
