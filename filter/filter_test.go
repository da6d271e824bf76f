package filter

import (
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/vgraster/internal/filtercache"
	"github.com/gogpu/vgraster/internal/geom"
)

func solidSource(width, height int, c color.NRGBA) *RasterImage {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return NewRasterImage(img)
}

func testContext(cache *filtercache.Cache) Context {
	return Context{
		CTM:        geom.Identity(),
		ClipBounds: geom.ClipRect{Left: 0, Top: 0, Right: 16, Bottom: 16},
		Cache:      cache,
	}
}

func TestRasterImageIdentityAndSize(t *testing.T) {
	img := solidSource(4, 4, color.NRGBA{R: 255, A: 255})
	if img.Width() != 4 || img.Height() != 4 {
		t.Fatalf("got %dx%d, want 4x4", img.Width(), img.Height())
	}
	if img.SizeBytes() != 64 {
		t.Errorf("SizeBytes() = %d, want 64", img.SizeBytes())
	}
	other := solidSource(4, 4, color.NRGBA{R: 255, A: 255})
	if img.UniqueID() == other.UniqueID() {
		t.Error("expected distinct unique ids for distinct images")
	}
}

func TestCropRectApplyToOverridesOnlyPresentEdges(t *testing.T) {
	bounds := geom.Rect{Left: 0, Top: 0, Right: 10, Bottom: 10}
	c := NewPartialCropRect(geom.Rect{Left: 2, Top: 3, Right: 5, Bottom: 7}, true, false, true, false)

	out := c.ApplyTo(bounds, geom.Identity())
	if out.Left != 2 {
		t.Errorf("Left = %v, want 2 (overridden)", out.Left)
	}
	if out.Top != 0 {
		t.Errorf("Top = %v, want 0 (untouched)", out.Top)
	}
	// width = transformed.Width() = 5-2 = 3, measured from the (overridden) new left.
	if out.Right != 5 {
		t.Errorf("Right = %v, want 5 (left=2 + width=3)", out.Right)
	}
	if out.Bottom != 10 {
		t.Errorf("Bottom = %v, want 10 (untouched)", out.Bottom)
	}
}

func TestCropRectEmptyIsNoOp(t *testing.T) {
	bounds := geom.Rect{Left: 1, Top: 2, Right: 3, Bottom: 4}
	var c CropRect
	if !c.IsEmpty() {
		t.Fatal("zero-value CropRect should be empty")
	}
	if got := c.ApplyTo(bounds, geom.Identity()); got != bounds {
		t.Errorf("ApplyTo of empty crop = %+v, want unchanged %+v", got, bounds)
	}
}

func TestApplyColorMatrixInvertsColor(t *testing.T) {
	src := solidSource(2, 2, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	invert := NewColorMatrixNode(nil, [20]float32{
		-1, 0, 0, 0, 255,
		0, -1, 0, 0, 255,
		0, 0, -1, 0, 255,
		0, 0, 0, 1, 0,
	}, CropRect{})

	cache := filtercache.NewCache(filtercache.DefaultCacheBytes)
	eval := NewFilterEvaluator()
	ctx := testContext(cache)

	var offset geom.Point
	result := eval.Apply(invert, src, ctx, &offset)
	if result == nil {
		t.Fatal("expected non-nil result")
	}
	r, g, b, a := result.Pixels().NRGBAAt(0, 0).R, result.Pixels().NRGBAAt(0, 0).G, result.Pixels().NRGBAAt(0, 0).B, result.Pixels().NRGBAAt(0, 0).A
	if r != 245 || g != 235 || b != 225 || a != 255 {
		t.Errorf("got rgba(%d,%d,%d,%d), want rgba(245,235,225,255)", r, g, b, a)
	}
}

func TestApplyMemoizesResultInCache(t *testing.T) {
	src := solidSource(2, 2, color.NRGBA{A: 255})
	node := NewColorMatrixNode(nil, [20]float32{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
	}, CropRect{})

	cache := filtercache.NewCache(filtercache.DefaultCacheBytes)
	eval := NewFilterEvaluator()
	ctx := testContext(cache)

	var offset1, offset2 geom.Point
	first := eval.Apply(node, src, ctx, &offset1)
	if first == nil {
		t.Fatal("expected non-nil result")
	}
	statsAfterFirst := cache.Stats()
	if statsAfterFirst.Misses != 1 || statsAfterFirst.Hits != 0 {
		t.Fatalf("after first Apply: %+v, want 1 miss 0 hits", statsAfterFirst)
	}

	second := eval.Apply(node, src, ctx, &offset2)
	if second != first {
		t.Error("expected second Apply to return the cached image")
	}
	statsAfterSecond := cache.Stats()
	if statsAfterSecond.Hits != 1 {
		t.Fatalf("after second Apply: %+v, want 1 hit", statsAfterSecond)
	}
}

func TestReleasePurgesNodeOwnCacheEntries(t *testing.T) {
	src := solidSource(2, 2, color.NRGBA{A: 255})
	node := NewOffsetNode(nil, 1, 1, CropRect{})

	cache := filtercache.NewCache(filtercache.DefaultCacheBytes)
	eval := NewFilterEvaluator()
	ctx := testContext(cache)

	var offset geom.Point
	if eval.Apply(node, src, ctx, &offset) == nil {
		t.Fatal("expected non-nil result")
	}
	if cache.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", cache.Len())
	}

	Release(node, cache)
	if cache.Len() != 0 {
		t.Errorf("Len() after Release = %d, want 0", cache.Len())
	}
}

func TestMergeNodeRequiresAllInputsToSucceed(t *testing.T) {
	src := solidSource(2, 2, color.NRGBA{A: 255})
	failing := NewMergeNode(nil, CropRect{}) // zero inputs: compute returns nil
	outer := NewMergeNode([]FilterNode{nil, failing}, CropRect{})

	cache := filtercache.NewCache(filtercache.DefaultCacheBytes)
	eval := NewFilterEvaluator()
	ctx := testContext(cache)

	var offset geom.Point
	if got := eval.Apply(outer, src, ctx, &offset); got != nil {
		t.Error("expected nil result for a merge node whose second input fails")
	}
}

func TestApplyPanicsOnNilSource(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on nil source")
		}
	}()
	eval := NewFilterEvaluator()
	node := NewOffsetNode(nil, 0, 0, CropRect{})
	var offset geom.Point
	eval.Apply(node, nil, testContext(filtercache.NewCache(1024)), &offset)
}

func TestEncodeDecodeRoundTripsBlurNode(t *testing.T) {
	original := NewBlurNodeXY(nil, 3, 5, NewCropRect(geom.Rect{Left: 1, Top: 2, Right: 9, Bottom: 9}))
	data := Encode(original)

	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	blur, ok := decoded.(*BlurNode)
	if !ok {
		t.Fatalf("decoded type = %T, want *BlurNode", decoded)
	}
	if blur.RadiusX != 3 || blur.RadiusY != 5 {
		t.Errorf("got radius (%v,%v), want (3,5)", blur.RadiusX, blur.RadiusY)
	}
	if !blur.Crop().HasLeft() || blur.Crop().Rect.Right != 9 {
		t.Errorf("crop rect did not round-trip: %+v", blur.Crop())
	}
}

func TestDecodeRejectsInvalidTag(t *testing.T) {
	data := Encode(NewOffsetNode(nil, 0, 0, CropRect{}))
	// Byte 1 is the tag, right after the 1-byte "present" flag; corrupt it.
	data[1] = 0
	if _, err := Decode(data); err != ErrInvalidEncoding {
		t.Fatalf("err = %v, want ErrInvalidEncoding", err)
	}
}
