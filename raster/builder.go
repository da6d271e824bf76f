package raster

import (
	"errors"
	"iter"
	"log/slog"
	"math"
	"slices"

	"github.com/gogpu/vgraster"
	"github.com/gogpu/vgraster/internal/clipper"
	"github.com/gogpu/vgraster/internal/curvechop"
	"github.com/gogpu/vgraster/internal/geom"
	"github.com/gogpu/vgraster/internal/pathio"
)

func logger() *slog.Logger { return vgraster.Logger() }

// ErrNonFiniteCoordinate marks a path coordinate as NaN or infinite. The
// builder does not return it to callers directly; BuildFromPath aborts
// (producing zero edges) and logs it at Debug. Exported so callers and
// tests can assert on it via LastError.
var ErrNonFiniteCoordinate = errors.New("raster: non-finite coordinate in path")

// kMaxClippedLineSegments bounds how many line segments a single clipped
// source segment can expand into. Matches SkEdgeBuilder's corresponding
// constant. The builder does not reference it: there is no separate
// all-lines path, and the edge arena is pre-sized from WithCapacityHint.
const kMaxClippedLineSegments = 10

// Flavor selects which edge representation the builder produces.
type Flavor int

const (
	// FlavorBasic flattens every curve into straight LineEdges. Cheapest
	// option; appropriate when curve-aware coverage isn't needed.
	FlavorBasic Flavor = iota
	// FlavorBezier preserves quadratics and cubics as forward-differenced
	// curve edges.
	FlavorBezier
	// FlavorAnalytic preserves quadratics but approximates cubics with a
	// short run of quadratics, so downstream analytic coverage code only
	// ever has to handle lines and quadratics.
	FlavorAnalytic
)

// builderOps is implemented by each flavor's edge-construction strategy.
// EdgeBuilder dispatches path segments to the active flavor through this
// interface rather than branching on Flavor throughout.
type builderOps interface {
	addLine(p0, p1 geom.Point)
	addQuad(pts [3]geom.Point)
	addCubic(pts [4]geom.Point)
}

// Option configures an EdgeBuilder at construction time.
type Option func(*config)

type config struct {
	chopCubics   bool
	capacityHint int
	clip         *geom.Rect
	convexHint   bool
}

// WithChopCubics controls whether quadratics and cubics are chopped at
// their Y extrema before clipping and edge construction. Default true;
// disabling is only safe when the caller has already guaranteed
// Y-monotonic quadratics and cubics.
func WithChopCubics(v bool) Option {
	return func(c *config) { c.chopCubics = v }
}

// WithCapacityHint pre-sizes the edge arena for approximately n segments,
// avoiding reallocation during a large build.
func WithCapacityHint(n int) Option {
	return func(c *config) { c.capacityHint = n }
}

// WithClipRect clips all incoming segments to r before edge construction.
func WithClipRect(r geom.Rect) Option {
	return func(c *config) { c.clip = &r }
}

// WithConvexHint records that the source path is known convex. A convex
// path (by this hint or by the path's own convexity) turns off the
// clipper's CanCullToTheRight culling, so segments right of the clip rect
// are kept as vertical edges at its right side.
func WithConvexHint(v bool) Option {
	return func(c *config) { c.convexHint = v }
}

// EdgeBuilder converts a verb-stream path into a sorted list of Y-monotonic
// edges ready for scanline conversion.
type EdgeBuilder struct {
	flavor  Flavor
	shift   int // clipShift; no separate AA shift is added
	cfg     config
	ops     builderOps
	logger  *slog.Logger
	lastErr error

	lineEdges      []LineEdge
	quadraticEdges []*QuadraticEdge
	cubicEdges     []*CubicEdge

	// order records the source-path traversal order of every edge that
	// survives construction, as (kind, index-within-its-kind-slice) tags
	// rather than pointers, since the kind slices can still reallocate
	// later in the build. EdgeList replays this to honor the documented
	// insertion-order contract; AllEdges instead sorts by top scanline
	// for the active edge table's own consumption order.
	order []edgeTag

	bounds geom.Rect
}

type edgeTag struct {
	kind EdgeType
	idx  int
}

// NewEdgeBuilder constructs a builder for the given flavor. clipShift lets
// callers pre-scale coordinates for large canvases (0 for most uses); it
// is the only shift applied to edge coordinates, for every flavor.
func NewEdgeBuilder(flavor Flavor, clipShift int, opts ...Option) *EdgeBuilder {
	cfg := config{chopCubics: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	cap := cfg.capacityHint
	if cap <= 0 {
		cap = 64
	}

	eb := &EdgeBuilder{
		flavor:         flavor,
		shift:          clipShift,
		cfg:            cfg,
		logger:         logger(),
		lineEdges:      make([]LineEdge, 0, cap),
		quadraticEdges: make([]*QuadraticEdge, 0, cap/4+1),
		cubicEdges:     make([]*CubicEdge, 0, cap/4+1),
		order:          make([]edgeTag, 0, cap),
		bounds:         geom.Rect{Left: math.MaxFloat64, Top: math.MaxFloat64, Right: -math.MaxFloat64, Bottom: -math.MaxFloat64},
	}

	switch flavor {
	case FlavorBasic:
		eb.ops = &basicOps{eb: eb}
	case FlavorAnalytic:
		eb.ops = &analyticOps{eb: eb}
	default:
		eb.ops = &bezierOps{eb: eb}
	}
	return eb
}

// Reset clears the builder for reuse without releasing its arenas.
func (eb *EdgeBuilder) Reset() {
	eb.lineEdges = eb.lineEdges[:0]
	eb.quadraticEdges = eb.quadraticEdges[:0]
	eb.cubicEdges = eb.cubicEdges[:0]
	eb.order = eb.order[:0]
	eb.bounds = geom.Rect{Left: math.MaxFloat64, Top: math.MaxFloat64, Right: -math.MaxFloat64, Bottom: -math.MaxFloat64}
	eb.lastErr = nil
}

// LastError returns the last abort reason recorded by BuildFromPath, or
// nil if the last build completed without one.
func (eb *EdgeBuilder) LastError() error {
	return eb.lastErr
}

// BuildFromPath walks p's verb stream, transforms each point by ctm,
// chops curves at Y extrema, clips against the configured clip rect (if
// any), and appends edges. On the first non-finite coordinate it stops and
// discards every edge in the builder, so EdgeCount reports zero and
// LastError reports ErrNonFiniteCoordinate.
func (eb *EdgeBuilder) BuildFromPath(p *pathio.Path, ctm geom.Matrix) {
	eb.lastErr = nil
	if p == nil || p.CountVerbs() == 0 {
		return
	}

	var clip *clipper.EdgeClipper
	if eb.cfg.clip != nil {
		clip = clipper.NewEdgeClipper(*eb.cfg.clip, eb.cfg.convexHint || p.IsConvex())
	}

	var current, subpathStart geom.Point
	needsClose := false

	c := p.Cursor()
	for {
		verb, pts, weight := c.Next()
		if verb == geom.Done {
			break
		}

		switch verb {
		case geom.Move:
			if needsClose {
				eb.closeSubpath(current, subpathStart, ctm, clip)
			}
			current = ctm.TransformPoint(pts[0])
			subpathStart = current
			if !finite(current) {
				eb.abort()
				return
			}
			needsClose = false

		case geom.Line:
			p1 := ctm.TransformPoint(pts[1])
			if !finite(p1) {
				eb.abort()
				return
			}
			eb.emitLine(current, p1, clip)
			current = p1
			needsClose = true

		case geom.Quad:
			c1 := ctm.TransformPoint(pts[1])
			p2 := ctm.TransformPoint(pts[2])
			if !finite(c1) || !finite(p2) {
				eb.abort()
				return
			}
			eb.emitQuad(current, c1, p2, clip)
			current = p2
			needsClose = true

		case geom.Conic:
			c1 := ctm.TransformPoint(pts[1])
			p2 := ctm.TransformPoint(pts[2])
			if !finite(c1) || !finite(p2) {
				eb.abort()
				return
			}
			eb.emitConic(current, c1, p2, weight, clip)
			current = p2
			needsClose = true

		case geom.Cubic:
			c1 := ctm.TransformPoint(pts[1])
			c2 := ctm.TransformPoint(pts[2])
			p3 := ctm.TransformPoint(pts[3])
			if !finite(c1) || !finite(c2) || !finite(p3) {
				eb.abort()
				return
			}
			eb.emitCubic(current, c1, c2, p3, clip)
			current = p3
			needsClose = true

		case geom.Close:
			eb.closeSubpath(current, subpathStart, ctm, clip)
			current = subpathStart
			needsClose = false
		}
	}

	if needsClose {
		eb.closeSubpath(current, subpathStart, ctm, clip)
	}
}

func (eb *EdgeBuilder) closeSubpath(current, start geom.Point, _ geom.Matrix, clip *clipper.EdgeClipper) {
	if current != start {
		eb.emitLine(current, start, clip)
	}
}

func (eb *EdgeBuilder) abort() {
	eb.lineEdges = eb.lineEdges[:0]
	eb.quadraticEdges = eb.quadraticEdges[:0]
	eb.cubicEdges = eb.cubicEdges[:0]
	eb.order = eb.order[:0]
	eb.lastErr = ErrNonFiniteCoordinate
	eb.logger.Debug("raster: aborting build on non-finite coordinate")
}

func finite(p geom.Point) bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

func (eb *EdgeBuilder) emitLine(p0, p1 geom.Point, clip *clipper.EdgeClipper) {
	if clip == nil {
		eb.bounds = eb.bounds.Union(geom.Rect{Left: minF(p0.X, p1.X), Top: minF(p0.Y, p1.Y), Right: maxF(p0.X, p1.X), Bottom: maxF(p0.Y, p1.Y)})
		eb.ops.addLine(p0, p1)
		return
	}
	clip.ClipLine(p0, p1)
	for piece, ok := clip.Next(); ok; piece, ok = clip.Next() {
		a, b := piece.Pts[0], piece.Pts[1]
		eb.bounds = eb.bounds.Union(geom.Rect{Left: minF(a.X, b.X), Top: minF(a.Y, b.Y), Right: maxF(a.X, b.X), Bottom: maxF(a.Y, b.Y)})
		eb.ops.addLine(a, b)
	}
}

func (eb *EdgeBuilder) emitQuad(p0, c1, p2 geom.Point, clip *clipper.EdgeClipper) {
	pts := [3]geom.Point{p0, c1, p2}
	eb.unionQuadBounds(pts)
	if clip == nil {
		eb.ops.addQuad(pts)
		return
	}
	for _, seg := range chopQuadMonotone(pts, eb.cfg.chopCubics) {
		clip.ClipQuad(seg)
		for piece, ok := clip.Next(); ok; piece, ok = clip.Next() {
			eb.ops.addQuad([3]geom.Point{piece.Pts[0], piece.Pts[1], piece.Pts[2]})
		}
	}
}

func (eb *EdgeBuilder) emitCubic(p0, c1, c2, p3 geom.Point, clip *clipper.EdgeClipper) {
	pts := [4]geom.Point{p0, c1, c2, p3}
	eb.unionCubicBounds(pts)
	if clip == nil {
		eb.ops.addCubic(pts)
		return
	}
	for _, seg := range chopCubicMonotone(pts, eb.cfg.chopCubics) {
		clip.ClipCubic(seg)
		for piece, ok := clip.Next(); ok; piece, ok = clip.Next() {
			eb.ops.addCubic(piece.Pts)
		}
	}
}

// emitConic approximates a conic with quadratics (tol chosen for sub-pixel
// accuracy) and feeds each piece through the same path as a Quad.
func (eb *EdgeBuilder) emitConic(p0, c1, p2 geom.Point, weight float64, clip *clipper.EdgeClipper) {
	const tol = 0.25
	quadPts := curvechop.ApproximateConic(p0, c1, p2, weight, tol, nil)

	prev := p0
	for i := 0; i+1 < len(quadPts); i += 2 {
		ctrl, end := quadPts[i], quadPts[i+1]
		eb.emitQuad(prev, ctrl, end, clip)
		prev = end
	}
}

func (eb *EdgeBuilder) unionQuadBounds(pts [3]geom.Point) {
	r := geom.Rect{Left: math.MaxFloat64, Top: math.MaxFloat64, Right: -math.MaxFloat64, Bottom: -math.MaxFloat64}
	for _, p := range pts {
		r = r.Union(geom.Rect{Left: p.X, Top: p.Y, Right: p.X, Bottom: p.Y})
	}
	eb.bounds = eb.bounds.Union(r)
}

func (eb *EdgeBuilder) unionCubicBounds(pts [4]geom.Point) {
	r := geom.Rect{Left: math.MaxFloat64, Top: math.MaxFloat64, Right: -math.MaxFloat64, Bottom: -math.MaxFloat64}
	for _, p := range pts {
		r = r.Union(geom.Rect{Left: p.X, Top: p.Y, Right: p.X, Bottom: p.Y})
	}
	eb.bounds = eb.bounds.Union(r)
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// addLineEdge adds a line edge, fusing it with the previously added
// vertical edge where possible.
func (eb *EdgeBuilder) addLineEdge(p0, p1 CurvePoint) {
	edge := NewLineEdge(p0, p1, eb.shift)
	if edge == nil {
		return
	}
	if edge.IsVertical() && len(eb.order) > 0 && eb.order[len(eb.order)-1].kind == EdgeTypeLine {
		last := &eb.lineEdges[len(eb.lineEdges)-1]
		switch combineVertical(edge, last) {
		case combineTotal:
			eb.lineEdges = eb.lineEdges[:len(eb.lineEdges)-1]
			eb.order = eb.order[:len(eb.order)-1]
			return
		case combinePartial:
			return
		case combineNo:
		}
	}
	eb.lineEdges = append(eb.lineEdges, *edge)
	eb.order = append(eb.order, edgeTag{kind: EdgeTypeLine, idx: len(eb.lineEdges) - 1})
}

func (eb *EdgeBuilder) addQuadEdge(p0, p1, p2 CurvePoint) {
	edge := NewQuadraticEdge(p0, p1, p2, eb.shift)
	if edge != nil {
		eb.quadraticEdges = append(eb.quadraticEdges, edge)
		eb.order = append(eb.order, edgeTag{kind: EdgeTypeQuadratic, idx: len(eb.quadraticEdges) - 1})
	}
}

func (eb *EdgeBuilder) addCubicEdge(p0, p1, p2, p3 CurvePoint) {
	edge := NewCubicEdge(p0, p1, p2, p3, eb.shift)
	if edge != nil {
		eb.cubicEdges = append(eb.cubicEdges, edge)
		eb.order = append(eb.order, edgeTag{kind: EdgeTypeCubic, idx: len(eb.cubicEdges) - 1})
	}
}

// Bounds returns the accumulated bounding box of every segment seen,
// including segments that were clipped away or degenerate.
func (eb *EdgeBuilder) Bounds() geom.Rect { return eb.bounds }

// IsEmpty reports whether no edges were produced.
func (eb *EdgeBuilder) IsEmpty() bool {
	return len(eb.lineEdges) == 0 && len(eb.quadraticEdges) == 0 && len(eb.cubicEdges) == 0
}

// EdgeCount returns the total edge count across all three kinds.
func (eb *EdgeBuilder) EdgeCount() int {
	return len(eb.lineEdges) + len(eb.quadraticEdges) + len(eb.cubicEdges)
}

// LineEdgeCount returns the number of line edges.
func (eb *EdgeBuilder) LineEdgeCount() int { return len(eb.lineEdges) }

// QuadraticEdgeCount returns the number of quadratic edges.
func (eb *EdgeBuilder) QuadraticEdgeCount() int { return len(eb.quadraticEdges) }

// CubicEdgeCount returns the number of cubic edges.
func (eb *EdgeBuilder) CubicEdgeCount() int { return len(eb.cubicEdges) }

// Flavor returns the builder's edge flavor.
func (eb *EdgeBuilder) Flavor() Flavor { return eb.flavor }

// edgeAt resolves a tag to the concrete edge it was recorded for.
func (eb *EdgeBuilder) edgeAt(t edgeTag) CurveEdgeVariant {
	switch t.kind {
	case EdgeTypeQuadratic:
		return CurveEdgeVariant{Type: EdgeTypeQuadratic, Quadratic: eb.quadraticEdges[t.idx]}
	case EdgeTypeCubic:
		return CurveEdgeVariant{Type: EdgeTypeCubic, Cubic: eb.cubicEdges[t.idx]}
	default:
		return CurveEdgeVariant{Type: EdgeTypeLine, Line: &eb.lineEdges[t.idx]}
	}
}

// EdgeList returns every surviving edge in source-path traversal order:
// the order segments were fed to the builder, regardless of kind. This is
// the builder's public edge-enumeration contract; callers that need edges
// grouped by top scanline for active-edge-table insertion should use
// AllEdges instead.
func (eb *EdgeBuilder) EdgeList() iter.Seq[CurveEdgeVariant] {
	return func(yield func(CurveEdgeVariant) bool) {
		for _, t := range eb.order {
			if !yield(eb.edgeAt(t)) {
				return
			}
		}
	}
}

type sortableEdge struct {
	topY    int32
	variant CurveEdgeVariant
}

// AllEdges returns edges sorted by top scanline, the order the active
// edge table needs them inserted in. This is a consumption-order view for
// the AET, not the builder's insertion-order contract; see EdgeList for
// that.
func (eb *EdgeBuilder) AllEdges() iter.Seq[CurveEdgeVariant] {
	return func(yield func(CurveEdgeVariant) bool) {
		edges := make([]sortableEdge, 0, eb.EdgeCount())

		for i := range eb.lineEdges {
			edges = append(edges, sortableEdge{topY: eb.lineEdges[i].FirstY, variant: CurveEdgeVariant{Type: EdgeTypeLine, Line: &eb.lineEdges[i]}})
		}
		for _, q := range eb.quadraticEdges {
			edges = append(edges, sortableEdge{topY: q.line.FirstY, variant: CurveEdgeVariant{Type: EdgeTypeQuadratic, Quadratic: q}})
		}
		for _, cu := range eb.cubicEdges {
			edges = append(edges, sortableEdge{topY: cu.line.FirstY, variant: CurveEdgeVariant{Type: EdgeTypeCubic, Cubic: cu}})
		}

		slices.SortStableFunc(edges, func(a, b sortableEdge) int {
			switch {
			case a.topY < b.topY:
				return -1
			case a.topY > b.topY:
				return 1
			default:
				return 0
			}
		})

		for _, e := range edges {
			if !yield(e.variant) {
				return
			}
		}
	}
}
