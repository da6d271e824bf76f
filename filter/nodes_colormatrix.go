package filter

import (
	"image"

	"github.com/gogpu/vgraster/internal/geom"
)

// ColorMatrixNode applies a 4x5 row-major color transformation matrix to
// its single input, per pixel:
//
//	[R']   [a00 a01 a02 a03 a04]   [R]
//	[G'] = [a10 a11 a12 a13 a14] * [G]
//	[B']   [a20 a21 a22 a23 a24]   [B]
//	[A']   [a30 a31 a32 a33 a34]   [A]
//	                               [1]
//
// The fifth column of each row is a bias added after the dot product.
// A color matrix never changes its output bounds relative to its input.
type ColorMatrixNode struct {
	baseNode
	Matrix [20]float32
}

// NewColorMatrixNode builds a color matrix node over input.
func NewColorMatrixNode(input FilterNode, matrix [20]float32, crop CropRect) *ColorMatrixNode {
	return &ColorMatrixNode{baseNode: newBaseNode([]FilterNode{input}, crop), Matrix: matrix}
}

// NewBrightnessNode scales R/G/B by factor, leaving alpha untouched.
func NewBrightnessNode(input FilterNode, factor float32, crop CropRect) *ColorMatrixNode {
	return NewColorMatrixNode(input, [20]float32{
		factor, 0, 0, 0, 0,
		0, factor, 0, 0, 0,
		0, 0, factor, 0, 0,
		0, 0, 0, 1, 0,
	}, crop)
}

// NewSaturationNode blends between the Rec. 709 luminance of a pixel (at
// factor 0) and its original color (at factor 1).
func NewSaturationNode(input FilterNode, factor float32, crop CropRect) *ColorMatrixNode {
	const lumR, lumG, lumB = 0.2126, 0.7152, 0.0722
	inv := 1 - factor
	return NewColorMatrixNode(input, [20]float32{
		lumR*inv + factor, lumG * inv, lumB * inv, 0, 0,
		lumR * inv, lumG*inv + factor, lumB * inv, 0, 0,
		lumR * inv, lumG * inv, lumB*inv + factor, 0, 0,
		0, 0, 0, 1, 0,
	}, crop)
}

func (n *ColorMatrixNode) compute(e *FilterEvaluator, src *RasterImage, ctx Context, offset *geom.Point) *RasterImage {
	var inputOffset geom.Point
	input := e.filterInput(n, 0, src, ctx, &inputOffset)
	if input == nil {
		return nil
	}

	padded := e.applyCropRect(n, ctx, input, &inputOffset)
	if padded == nil {
		return nil
	}

	srcPix := padded.Pixels()
	bounds := srcPix.Bounds()
	out := image.NewNRGBA(bounds)
	m := n.Matrix

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			si := srcPix.PixOffset(x, y)
			r := float32(srcPix.Pix[si+0])
			g := float32(srcPix.Pix[si+1])
			b := float32(srcPix.Pix[si+2])
			a := float32(srcPix.Pix[si+3])

			di := out.PixOffset(x, y)
			out.Pix[di+0] = clampUint8(m[0]*r + m[1]*g + m[2]*b + m[3]*a + m[4])
			out.Pix[di+1] = clampUint8(m[5]*r + m[6]*g + m[7]*b + m[8]*a + m[9])
			out.Pix[di+2] = clampUint8(m[10]*r + m[11]*g + m[12]*b + m[13]*a + m[14])
			out.Pix[di+3] = clampUint8(m[15]*r + m[16]*g + m[17]*b + m[18]*a + m[19])
		}
	}

	*offset = inputOffset
	return NewRasterImage(out)
}
