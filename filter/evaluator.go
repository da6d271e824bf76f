package filter

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/gogpu/vgraster/internal/filtercache"
	"github.com/gogpu/vgraster/internal/geom"
)

// FilterEvaluator drives a FilterNode graph to a result image, threading
// a Context through recursive input evaluation and memoizing every
// node's result in ctx.Cache.
type FilterEvaluator struct{}

// NewFilterEvaluator constructs a FilterEvaluator. It carries no state of
// its own; every Apply call is independent.
func NewFilterEvaluator() *FilterEvaluator { return &FilterEvaluator{} }

// Apply evaluates node against src under ctx, returning the result image
// and, via offset, the result's position relative to src's coordinate
// space. A nil result means the evaluation failed (an empty clip
// intersection, or a consulted input that itself failed); failures are
// never cached.
//
// src and offset must be non-nil; violating that is a programmer error
// and panics rather than returning an error, per the package's
// precondition-violation policy.
func (e *FilterEvaluator) Apply(node FilterNode, src *RasterImage, ctx Context, offset *geom.Point) *RasterImage {
	if src == nil {
		panic(ErrNilSource)
	}
	if offset == nil {
		panic(ErrNilOffset)
	}

	srcImageID := uint32(0)
	srcSubset := geom.ClipRect{}
	if node.UsesSource() {
		srcImageID = src.UniqueID()
		srcSubset = src.Subset()
	}

	key := filtercache.CacheKey{
		NodeID:     node.UniqueID(),
		CTM:        ctx.CTM,
		ClipBounds: ctx.ClipBounds,
		SrcImageID: srcImageID,
		SrcSubset:  srcSubset,
	}

	if ctx.Cache != nil {
		if entry, ok := ctx.Cache.Get(key); ok {
			*offset = entry.Offset
			if entry.Image == nil {
				return nil
			}
			return entry.Image.(*RasterImage)
		}
	}

	result := node.compute(e, src, ctx, offset)
	if result != nil && ctx.Cache != nil {
		ctx.Cache.Set(key, result, *offset, result.SizeBytes())
		node.recordKey(key)
	}
	return result
}

// filterInput evaluates node's i'th input. A nil input means "use src
// directly, without recursing" — the common case for a leaf node that
// consumes the dynamic source image.
func (e *FilterEvaluator) filterInput(node FilterNode, i int, src *RasterImage, ctx Context, offset *geom.Point) *RasterImage {
	inputs := node.Inputs()
	if i >= len(inputs) || inputs[i] == nil {
		*offset = geom.Point{}
		return src
	}
	inputCtx := e.mapContext(node, ctx)
	return e.Apply(inputs[i], src, inputCtx, offset)
}

// mapContext derives the Context an input should be evaluated under:
// same transform and cache, with the clip bounds pulled back through
// node's reverse bounds mapping.
func (e *FilterEvaluator) mapContext(node FilterNode, ctx Context) Context {
	mapped := node.mapNodeBounds(ctx.ClipBounds.ToScalar(), ctx.CTM, kReverse)
	return Context{CTM: ctx.CTM, ClipBounds: mapped.RoundOut(), Cache: ctx.Cache}
}

// filterBounds computes node's output bounds from src, in the given
// direction. Forward bounds additionally apply node's crop rectangle;
// reverse bounds pull a destination requirement back through the node
// to find the source region that could affect it.
func (e *FilterEvaluator) filterBounds(node FilterNode, src geom.Rect, ctm geom.Matrix, dir direction) geom.Rect {
	if dir == kReverse {
		mapped := node.mapNodeBounds(src, ctm, kReverse)
		return node.onFilterBounds(mapped, ctm, kReverse)
	}
	a := node.onFilterBounds(src, ctm, kForward)
	b := node.mapNodeBounds(a, ctm, kForward)
	return node.Crop().ApplyTo(b, ctm)
}

// computeFastBounds returns a conservative (possibly oversized) output
// bounds estimate for node given src, without the cost of a full
// evaluation: the union of every input's own fast bounds, with src
// standing in for each nil input, or src unchanged for a leaf with no
// inputs.
func (e *FilterEvaluator) computeFastBounds(node FilterNode, src geom.Rect) geom.Rect {
	inputs := node.Inputs()
	if len(inputs) == 0 {
		return src
	}
	out := geom.Rect{}
	for _, in := range inputs {
		if in == nil {
			out = out.Union(src)
			continue
		}
		out = out.Union(e.computeFastBounds(in, src))
	}
	return out
}

// applyCropRect clamps src (whose top-left corner is at *srcOffset) to
// node's crop rectangle intersected with ctx.ClipBounds, returning the
// (possibly padded) image and updating *srcOffset to match. A nil
// result means the intersection was empty.
func (e *FilterEvaluator) applyCropRect(node FilterNode, ctx Context, src *RasterImage, srcOffset *geom.Point) *RasterImage {
	srcBounds := geom.Rect{
		Left: srcOffset.X, Top: srcOffset.Y,
		Right: srcOffset.X + float64(src.Width()), Bottom: srcOffset.Y + float64(src.Height()),
	}

	dstBounds := node.onFilterBounds(srcBounds, ctx.CTM, kForward)
	bounds := node.Crop().ApplyTo(dstBounds, ctx.CTM)
	bounds = bounds.Intersect(ctx.ClipBounds.ToScalar())
	if bounds.IsEmpty() {
		return nil
	}

	if srcBounds.Contains(bounds) {
		return src
	}

	clip := bounds.RoundOut()
	width := int(clip.Width())
	height := int(clip.Height())
	if width <= 0 || height <= 0 {
		return nil
	}

	out := image.NewNRGBA(image.Rect(0, 0, width, height))
	srcRectClip := srcBounds.RoundOut()

	// src.Pixels() is itself zero-based (its Bounds().Min is (0,0)); the
	// sampling point must be expressed in that local space, offset by how
	// far clip's origin sits from srcOffset's.
	samplePt := image.Pt(int(clip.Left)-int(srcRectClip.Left), int(clip.Top)-int(srcRectClip.Top))
	draw.Draw(out, out.Bounds(), src.Pixels(), samplePt, draw.Src)

	*srcOffset = geom.Point{X: float64(clip.Left), Y: float64(clip.Top)}
	return NewRasterImage(out)
}
