package filter

import (
	"github.com/gogpu/vgraster/internal/filtercache"
	"github.com/gogpu/vgraster/internal/geom"
)

// direction selects whether mapNodeBounds and onFilterBounds compute a
// forward (source-to-destination) or reverse (destination-to-source)
// bounds mapping.
type direction int

const (
	kForward direction = iota
	kReverse
)

// Context carries the state threaded through a filter graph evaluation:
// the current transform, the clip the result must fit within, and the
// cache results are memoized in.
type Context struct {
	CTM        geom.Matrix
	ClipBounds geom.ClipRect
	Cache      *filtercache.Cache
}

// NewContext builds a Context against the default process-wide cache.
func NewContext(ctm geom.Matrix, clipBounds geom.ClipRect) Context {
	return Context{CTM: ctm, ClipBounds: clipBounds, Cache: filtercache.Default()}
}

// WithCache returns a copy of ctx using cache instead of its current one.
func (ctx Context) WithCache(cache *filtercache.Cache) Context {
	ctx.Cache = cache
	return ctx
}

// WithNewBounds returns a copy of ctx with clipBounds replaced.
func (ctx Context) WithNewBounds(clipBounds geom.ClipRect) Context {
	ctx.ClipBounds = clipBounds
	return ctx
}
