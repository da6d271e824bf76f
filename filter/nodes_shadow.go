package filter

import (
	"image"
	"image/color"

	"github.com/gogpu/vgraster/internal/geom"
)

// DropShadowNode renders a drop shadow beneath its single input: extract
// the input's alpha channel, blur it, tint it with Color, offset it, and
// composite the original input on top.
type DropShadowNode struct {
	baseNode
	OffsetX, OffsetY float64
	BlurRadius       float64
	Color            color.NRGBA
}

// NewDropShadowNode builds a drop shadow node over input.
func NewDropShadowNode(input FilterNode, offsetX, offsetY, blurRadius float64, shadowColor color.NRGBA, crop CropRect) *DropShadowNode {
	return &DropShadowNode{
		baseNode:   newBaseNode([]FilterNode{input}, crop),
		OffsetX:    offsetX,
		OffsetY:    offsetY,
		BlurRadius: blurRadius,
		Color:      shadowColor,
	}
}

// onFilterBounds grows the input bounds to cover the offset shadow and
// its blur skirt.
func (n *DropShadowNode) onFilterBounds(src geom.Rect, _ geom.Matrix, _ direction) geom.Rect {
	ex := kernelRadiusFor3Sigma(n.BlurRadius)
	shadow := geom.Rect{
		Left: src.Left + n.OffsetX - ex, Top: src.Top + n.OffsetY - ex,
		Right: src.Right + n.OffsetX + ex, Bottom: src.Bottom + n.OffsetY + ex,
	}
	return src.Union(shadow)
}

func (n *DropShadowNode) compute(e *FilterEvaluator, src *RasterImage, ctx Context, offset *geom.Point) *RasterImage {
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
	width, height := bounds.Dx(), bounds.Dy()

	alpha := make([]float32, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			off := srcPix.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)
			alpha[y*width+x] = float32(srcPix.Pix[off+3])
		}
	}

	if n.BlurRadius > 0 {
		kernel := cachedGaussianKernel(n.BlurRadius)
		alpha = blurAlphaPlane(alpha, width, height, kernel)
	}

	dx := int(n.OffsetX)
	dy := int(n.OffsetY)

	out := image.NewNRGBA(bounds)
	// Paint the offset, tinted shadow first.
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			sx, sy := x-dx, y-dy
			if sx < 0 || sx >= width || sy < 0 || sy >= height {
				continue
			}
			a := alpha[sy*width+sx] / 255
			if a <= 0 {
				continue
			}
			off := out.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)
			out.Pix[off+0] = clampUint8(float32(n.Color.R) * a)
			out.Pix[off+1] = clampUint8(float32(n.Color.G) * a)
			out.Pix[off+2] = clampUint8(float32(n.Color.B) * a)
			out.Pix[off+3] = clampUint8(float32(n.Color.A) * a)
		}
	}
	// Composite the original input on top, straight alpha over.
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			si := srcPix.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)
			sa := float32(srcPix.Pix[si+3]) / 255
			if sa <= 0 {
				continue
			}
			di := out.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)
			out.Pix[di+0] = blendOver(srcPix.Pix[si+0], out.Pix[di+0], sa)
			out.Pix[di+1] = blendOver(srcPix.Pix[si+1], out.Pix[di+1], sa)
			out.Pix[di+2] = blendOver(srcPix.Pix[si+2], out.Pix[di+2], sa)
			out.Pix[di+3] = clampUint8(float32(srcPix.Pix[si+3]) + float32(out.Pix[di+3])*(1-sa))
		}
	}

	*offset = inputOffset
	return NewRasterImage(out)
}

func blendOver(src, dst uint8, srcAlpha float32) uint8 {
	return clampUint8(float32(src)*srcAlpha + float32(dst)*(1-srcAlpha))
}

func blurAlphaPlane(alpha []float32, width, height int, kernel []float32) []float32 {
	half := len(kernel) / 2
	temp := make([]float32, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sum float32
			for k, weight := range kernel {
				sx := x + k - half
				if sx < 0 {
					sx = 0
				} else if sx >= width {
					sx = width - 1
				}
				sum += alpha[y*width+sx] * weight
			}
			temp[y*width+x] = sum
		}
	}

	out := make([]float32, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sum float32
			for k, weight := range kernel {
				sy := y + k - half
				if sy < 0 {
					sy = 0
				} else if sy >= height {
					sy = height - 1
				}
				sum += temp[sy*width+x] * weight
			}
			out[y*width+x] = sum
		}
	}
	return out
}
