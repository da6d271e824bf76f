package filter

import (
	"image"

	"github.com/gogpu/vgraster/internal/geom"
	"github.com/gogpu/vgraster/internal/idgen"
)

// RasterImage is an image backed by image.NRGBA: the
// external pixel-buffer collaborator the graph operates on, carrying a
// stable identity and a live subset independent of its backing storage.
type RasterImage struct {
	id     uint32
	pix    *image.NRGBA
	subset geom.ClipRect
}

// NewRasterImage wraps pix with a fresh identity and a subset covering
// the whole image.
func NewRasterImage(pix *image.NRGBA) *RasterImage {
	b := pix.Bounds()
	return &RasterImage{
		id:  idgen.Next(),
		pix: pix,
		subset: geom.ClipRect{
			Left: int32(b.Min.X), Top: int32(b.Min.Y),
			Right: int32(b.Max.X), Bottom: int32(b.Max.Y),
		},
	}
}

// NewBlankRasterImage allocates a transparent image of the given size.
func NewBlankRasterImage(width, height int) *RasterImage {
	return NewRasterImage(image.NewNRGBA(image.Rect(0, 0, width, height)))
}

// UniqueID returns the image's stable process-wide identity.
func (r *RasterImage) UniqueID() uint32 { return r.id }

// Width returns the image's pixel width.
func (r *RasterImage) Width() int { return r.pix.Bounds().Dx() }

// Height returns the image's pixel height.
func (r *RasterImage) Height() int { return r.pix.Bounds().Dy() }

// Subset returns the portion of the image that is logically live.
func (r *RasterImage) Subset() geom.ClipRect { return r.subset }

// Pixels returns the backing image.NRGBA for direct pixel access by
// concrete filter nodes.
func (r *RasterImage) Pixels() *image.NRGBA { return r.pix }

// SizeBytes estimates the image's memory footprint, used for cache
// budget accounting: four bytes per pixel (NRGBA), ignoring stride
// padding since image.NewNRGBA never pads.
func (r *RasterImage) SizeBytes() int64 {
	return int64(r.Width()) * int64(r.Height()) * 4
}

// Bounds returns the image's pixel bounds as a scalar Rect.
func (r *RasterImage) Bounds() geom.Rect {
	b := r.pix.Bounds()
	return geom.Rect{Left: float64(b.Min.X), Top: float64(b.Min.Y), Right: float64(b.Max.X), Bottom: float64(b.Max.Y)}
}
