package filter

import "github.com/gogpu/vgraster/internal/geom"

// OffsetNode translates its single input by (Dx, Dy) in the node's local
// (pre-CTM) coordinate space, without resampling any pixels.
type OffsetNode struct {
	baseNode
	Dx, Dy float64
}

// NewOffsetNode builds an offset node over input.
func NewOffsetNode(input FilterNode, dx, dy float64, crop CropRect) *OffsetNode {
	return &OffsetNode{baseNode: newBaseNode([]FilterNode{input}, crop), Dx: dx, Dy: dy}
}

func (n *OffsetNode) onFilterBounds(src geom.Rect, ctm geom.Matrix, dir direction) geom.Rect {
	delta := ctm.TransformPoint(geom.Point{X: n.Dx, Y: n.Dy})
	origin := ctm.TransformPoint(geom.Point{})
	vx, vy := delta.X-origin.X, delta.Y-origin.Y
	if dir == kReverse {
		vx, vy = -vx, -vy
	}
	return geom.Rect{Left: src.Left + vx, Top: src.Top + vy, Right: src.Right + vx, Bottom: src.Bottom + vy}
}

func (n *OffsetNode) compute(e *FilterEvaluator, src *RasterImage, ctx Context, offset *geom.Point) *RasterImage {
	var inputOffset geom.Point
	input := e.filterInput(n, 0, src, ctx, &inputOffset)
	if input == nil {
		return nil
	}

	shifted := n.onFilterBounds(geom.Rect{Left: inputOffset.X, Top: inputOffset.Y}, ctx.CTM, kForward)
	*offset = geom.Point{X: shifted.Left, Y: shifted.Top}
	return input
}
