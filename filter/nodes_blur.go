package filter

import (
	"image"

	"github.com/gogpu/vgraster/internal/geom"
)

// BlurNode applies a separable Gaussian blur to its single input. Its
// two-pass horizontal/vertical convolution and edge-clamped sampling
// follow the same approach as a flat (non-graph) blur filter, adapted
// here to operate on a graph input rather than a fixed pixmap pair.
type BlurNode struct {
	baseNode
	RadiusX, RadiusY float64
}

// NewBlurNode builds a blur node with equal radius in both directions.
// A nil input means the node consumes the dynamic source image.
func NewBlurNode(input FilterNode, radius float64, crop CropRect) *BlurNode {
	return NewBlurNodeXY(input, radius, radius, crop)
}

// NewBlurNodeXY builds a blur node with independent X/Y radii.
func NewBlurNodeXY(input FilterNode, radiusX, radiusY float64, crop CropRect) *BlurNode {
	return &BlurNode{
		baseNode: newBaseNode([]FilterNode{input}, crop),
		RadiusX:  radiusX,
		RadiusY:  radiusY,
	}
}

// onFilterBounds expands the bounds by three standard deviations in
// each direction: the region a Gaussian kernel of this radius can
// actually influence.
func (n *BlurNode) onFilterBounds(src geom.Rect, _ geom.Matrix, _ direction) geom.Rect {
	ex := kernelRadiusFor3Sigma(n.RadiusX)
	ey := kernelRadiusFor3Sigma(n.RadiusY)
	return geom.Rect{
		Left: src.Left - ex, Top: src.Top - ey,
		Right: src.Right + ex, Bottom: src.Bottom + ey,
	}
}

func (n *BlurNode) compute(e *FilterEvaluator, src *RasterImage, ctx Context, offset *geom.Point) *RasterImage {
	var inputOffset geom.Point
	input := e.filterInput(n, 0, src, ctx, &inputOffset)
	if input == nil {
		return nil
	}

	padded := e.applyCropRect(n, ctx, input, &inputOffset)
	if padded == nil {
		return nil
	}

	if n.RadiusX <= 0 && n.RadiusY <= 0 {
		*offset = inputOffset
		return padded
	}

	kernelX := cachedGaussianKernel(n.RadiusX)
	kernelY := cachedGaussianKernel(n.RadiusY)

	pix := padded.Pixels()
	bounds := pix.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	temp := make([]float32, width*height*4)
	blurHorizontalNRGBA(pix, temp, width, height, kernelX)

	out := image.NewNRGBA(image.Rect(0, 0, width, height))
	blurVerticalFromTemp(temp, out, width, height, kernelY)

	*offset = inputOffset
	return NewRasterImage(out)
}

func blurHorizontalNRGBA(src *image.NRGBA, temp []float32, width, height int, kernel []float32) {
	half := len(kernel) / 2
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var r, g, b, a float32
			for k, weight := range kernel {
				sx := x + k - half
				if sx < 0 {
					sx = 0
				} else if sx >= width {
					sx = width - 1
				}
				off := src.PixOffset(src.Rect.Min.X+sx, src.Rect.Min.Y+y)
				r += float32(src.Pix[off+0]) * weight
				g += float32(src.Pix[off+1]) * weight
				b += float32(src.Pix[off+2]) * weight
				a += float32(src.Pix[off+3]) * weight
			}
			idx := (y*width + x) * 4
			temp[idx+0], temp[idx+1], temp[idx+2], temp[idx+3] = r, g, b, a
		}
	}
}

func blurVerticalFromTemp(temp []float32, dst *image.NRGBA, width, height int, kernel []float32) {
	half := len(kernel) / 2
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var r, g, b, a float32
			for k, weight := range kernel {
				sy := y + k - half
				if sy < 0 {
					sy = 0
				} else if sy >= height {
					sy = height - 1
				}
				idx := (sy*width + x) * 4
				r += temp[idx+0] * weight
				g += temp[idx+1] * weight
				b += temp[idx+2] * weight
				a += temp[idx+3] * weight
			}
			off := dst.PixOffset(x, y)
			dst.Pix[off+0] = clampUint8(r)
			dst.Pix[off+1] = clampUint8(g)
			dst.Pix[off+2] = clampUint8(b)
			dst.Pix[off+3] = clampUint8(a)
		}
	}
}

func clampUint8(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
