package filter

import "github.com/gogpu/vgraster/internal/geom"

// cropRectFlags selects which edges of a CropRect override the node's
// computed output bounds. Width and height, when present, are sizes
// measured from the (possibly also overridden) left/top edge, not
// independent right/bottom positions.
type cropRectFlags uint32

const (
	hasLeft cropRectFlags = 1 << iota
	hasTop
	hasWidth
	hasHeight
)

// CropRect optionally overrides part of a filter node's output bounds.
// Any subset of its four edges may be present; absent edges fall back
// to the node's own computed bounds.
type CropRect struct {
	Rect  geom.Rect
	flags cropRectFlags
}

// NewCropRect builds a CropRect with all four edges present.
func NewCropRect(r geom.Rect) CropRect {
	return CropRect{Rect: r, flags: hasLeft | hasTop | hasWidth | hasHeight}
}

// NewPartialCropRect builds a CropRect overriding only the named edges.
// Width and height are sizes taken from r; ApplyTo measures them from the
// resulting left/top edge, which comes from r only when that edge is
// present too and from the incoming bounds otherwise.
func NewPartialCropRect(r geom.Rect, left, top, width, height bool) CropRect {
	var flags cropRectFlags
	if left {
		flags |= hasLeft
	}
	if top {
		flags |= hasTop
	}
	if width {
		flags |= hasWidth
	}
	if height {
		flags |= hasHeight
	}
	return CropRect{Rect: r, flags: flags}
}

// HasLeft reports whether the left edge is overridden.
func (c CropRect) HasLeft() bool { return c.flags&hasLeft != 0 }

// HasTop reports whether the top edge is overridden.
func (c CropRect) HasTop() bool { return c.flags&hasTop != 0 }

// HasWidth reports whether the width is overridden.
func (c CropRect) HasWidth() bool { return c.flags&hasWidth != 0 }

// HasHeight reports whether the height is overridden.
func (c CropRect) HasHeight() bool { return c.flags&hasHeight != 0 }

// IsEmpty reports whether no edge is overridden, i.e. the crop rect is
// a no-op.
func (c CropRect) IsEmpty() bool { return c.flags == 0 }

// ApplyTo overrides bounds's edges with c's present edges, transforming
// c's scalar rect through ctm first. Width/height overrides are sizes,
// computed from the (possibly also overridden) left/top after it has
// already been applied, not from bounds's original left/top.
func (c CropRect) ApplyTo(bounds geom.Rect, ctm geom.Matrix) geom.Rect {
	if c.IsEmpty() {
		return bounds
	}

	transformed := ctm.TransformRect(c.Rect)
	out := bounds

	if c.HasLeft() {
		out.Left = transformed.Left
	}
	if c.HasTop() {
		out.Top = transformed.Top
	}
	if c.HasWidth() {
		out.Right = out.Left + transformed.Width()
	}
	if c.HasHeight() {
		out.Bottom = out.Top + transformed.Height()
	}
	return out
}
