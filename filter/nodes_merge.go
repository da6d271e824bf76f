package filter

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/gogpu/vgraster/internal/geom"
)

// MergeNode composites its inputs in order, each painted straight over
// the accumulated result (painter's algorithm). Where a FilterChain
// applies filters to one image in sequence, MergeNode combines several
// independently-evaluated images into one.
type MergeNode struct {
	baseNode
}

// NewMergeNode builds a node that composites inputs, in order, over one
// another. A nil input means "use the dynamic source image" at that
// position, same as any other node.
func NewMergeNode(inputs []FilterNode, crop CropRect) *MergeNode {
	return &MergeNode{baseNode: newBaseNode(inputs, crop)}
}

// computeFastBounds-relevant: MergeNode uses the base pass-through
// onFilterBounds/mapNodeBounds; its output bounds are the union of its
// inputs' bounds, which computeFastBounds already captures generically.

func (n *MergeNode) compute(e *FilterEvaluator, src *RasterImage, ctx Context, offset *geom.Point) *RasterImage {
	inputs := n.Inputs()
	if len(inputs) == 0 {
		return nil
	}

	type resolved struct {
		img *RasterImage
		off geom.Point
	}
	results := make([]resolved, 0, len(inputs))
	union := geom.Rect{}

	for i := range inputs {
		var off geom.Point
		img := e.filterInput(n, i, src, ctx, &off)
		if img == nil {
			return nil
		}
		results = append(results, resolved{img: img, off: off})
		r := geom.Rect{Left: off.X, Top: off.Y, Right: off.X + float64(img.Width()), Bottom: off.Y + float64(img.Height())}
		union = union.Union(r)
	}

	clip := union.RoundOut()
	out := image.NewNRGBA(image.Rect(0, 0, int(clip.Width()), int(clip.Height())))
	for _, r := range results {
		pt := image.Pt(int(r.off.X)-int(clip.Left), int(r.off.Y)-int(clip.Top))
		dstRect := image.Rect(pt.X, pt.Y, pt.X+r.img.Width(), pt.Y+r.img.Height())
		draw.Draw(out, dstRect, r.img.Pixels(), r.img.Pixels().Bounds().Min, draw.Over)
	}

	*offset = geom.Point{X: float64(clip.Left), Y: float64(clip.Top)}
	return NewRasterImage(out)
}
