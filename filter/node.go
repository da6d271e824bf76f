package filter

import (
	"sync"

	"github.com/gogpu/vgraster/internal/filtercache"
	"github.com/gogpu/vgraster/internal/geom"
	"github.com/gogpu/vgraster/internal/idgen"
)

// FilterNode is one node of an immutable image-filter DAG. A nil entry in
// Inputs() means "substitute the evaluator's dynamic source image here"
// rather than recursing into a child node.
//
// compute, onFilterBounds and mapNodeBounds are invoked only by
// FilterEvaluator and are intentionally unexported: a FilterNode is
// implemented, not driven, from outside this package.
type FilterNode interface {
	UniqueID() uint32
	Inputs() []FilterNode
	Crop() CropRect
	UsesSource() bool

	compute(e *FilterEvaluator, src *RasterImage, ctx Context, offset *geom.Point) *RasterImage
	onFilterBounds(src geom.Rect, ctm geom.Matrix, dir direction) geom.Rect
	mapNodeBounds(bounds geom.Rect, ctm geom.Matrix, dir direction) geom.Rect
	recordKey(key filtercache.CacheKey)
	purgeKeys(cache *filtercache.Cache)
}

// baseNode is embedded by every concrete filter node. It supplies the
// identity, input vector, crop rectangle and the recorded-keys set that
// must be purged from the cache when the node goes away, along with
// default (pass-through) bounds-mapping behavior that most nodes never
// need to override.
type baseNode struct {
	id     uint32
	inputs []FilterNode
	crop   CropRect

	keysMu       sync.Mutex
	recordedKeys []filtercache.CacheKey
}

// newBaseNode constructs a baseNode with a fresh process-wide identity.
func newBaseNode(inputs []FilterNode, crop CropRect) baseNode {
	return baseNode{id: idgen.Next(), inputs: inputs, crop: crop}
}

// UniqueID returns the node's stable process-wide identity.
func (b *baseNode) UniqueID() uint32 { return b.id }

// Inputs returns the node's input vector. A nil entry means "use the
// dynamic source image".
func (b *baseNode) Inputs() []FilterNode { return b.inputs }

// Crop returns the node's optional output-bounds override.
func (b *baseNode) Crop() CropRect { return b.crop }

// UsesSource reports whether any of the node's inputs is nil or itself
// uses the source, meaning the node (or one consulted through it)
// consumes the dynamic source image rather than exclusively other nodes.
func (b *baseNode) UsesSource() bool {
	if len(b.inputs) == 0 {
		return true
	}
	for _, in := range b.inputs {
		if in == nil || in.UsesSource() {
			return true
		}
	}
	return false
}

// onFilterBounds is the default, pass-through bounds transform: a node
// that doesn't grow or shrink its output relative to its input (a color
// matrix, a merge) never needs to override this.
func (b *baseNode) onFilterBounds(src geom.Rect, _ geom.Matrix, _ direction) geom.Rect {
	return src
}

// mapNodeBounds is the default, pass-through clip-bounds transform.
func (b *baseNode) mapNodeBounds(bounds geom.Rect, _ geom.Matrix, _ direction) geom.Rect {
	return bounds
}

// recordKey notes that cache key was produced by evaluating this node,
// so it can be purged from the cache when the node is released.
func (b *baseNode) recordKey(key filtercache.CacheKey) {
	b.keysMu.Lock()
	defer b.keysMu.Unlock()
	b.recordedKeys = append(b.recordedKeys, key)
}

// purgeKeys evicts every cache entry this node has ever produced, and
// clears the recorded set. Called by Release.
func (b *baseNode) purgeKeys(cache *filtercache.Cache) {
	b.keysMu.Lock()
	keys := b.recordedKeys
	b.recordedKeys = nil
	b.keysMu.Unlock()

	if len(keys) > 0 {
		cache.PurgeByKeys(keys)
	}
}

// Release purges every cache entry node has ever produced from cache.
// A node carries no finalizer; callers that want prompt cache cleanup
// on node destruction must call Release explicitly.
func Release(node FilterNode, cache *filtercache.Cache) {
	node.purgeKeys(cache)
}
