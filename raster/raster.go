package raster

import (
	"github.com/gogpu/vgraster/internal/fixed"
	"github.com/gogpu/vgraster/internal/geom"
	"github.com/gogpu/vgraster/internal/pathio"
)

// SpanFunc receives one nonzero-winding span at integer scanline y (a
// pixel row when clipShift is 0), with Dot16 X coordinates.
type SpanFunc func(y int32, xStart, xEnd fixed.Dot16)

// Rasterize builds edges for p under ctm and flavor, then walks every
// scanline in the builder's bounds invoking fn for each inside span. It
// is a convenience wrapper around EdgeBuilder and ActiveEdgeTable for
// callers that don't need to drive the scanline loop themselves.
func Rasterize(p *pathio.Path, ctm geom.Matrix, flavor Flavor, clipShift int, fn SpanFunc, opts ...Option) error {
	eb := NewEdgeBuilder(flavor, clipShift, opts...)
	eb.BuildFromPath(p, ctm)
	if err := eb.LastError(); err != nil {
		return err
	}
	if eb.IsEmpty() {
		return nil
	}

	edges := make([]CurveEdgeVariant, 0, eb.EdgeCount())
	for e := range eb.AllEdges() {
		edges = append(edges, e)
	}

	table := NewActiveEdgeTable(edges)
	bounds := eb.Bounds()
	top := int32(bounds.Top)
	bottom := int32(bounds.Bottom) + 1

	for y := top; y < bottom && !table.Done(); y++ {
		table.AdvanceTo(y)
		table.Spans(func(xStart, xEnd fixed.Dot16) bool {
			fn(y, xStart, xEnd)
			return true
		})
	}
	return nil
}
