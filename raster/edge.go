// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"slices"

	"github.com/gogpu/vgraster/internal/fixed"
)

// ActiveEdgeTable walks a scanline's worth of edges at a time, in the
// order a scanline rasterizer consumes them: edges enter when their
// FirstY reaches the current scanline, leave once LastY passes it, and
// stay sorted by current X in between.
type ActiveEdgeTable struct {
	pending []CurveEdgeVariant // not yet reached their FirstY, sorted by TopY
	active  []*CurveEdgeVariant
	y       int32
}

// NewActiveEdgeTable builds a table over edges, which must already be
// sorted by TopY (as returned by EdgeBuilder.AllEdges).
func NewActiveEdgeTable(edges []CurveEdgeVariant) *ActiveEdgeTable {
	return &ActiveEdgeTable{pending: edges}
}

// AdvanceTo moves the table to scanline y, activating newly-reached edges
// and dropping ones that have ended.
func (t *ActiveEdgeTable) AdvanceTo(y int32) {
	t.y = y

	for len(t.pending) > 0 && t.pending[0].TopY() <= y {
		e := &t.pending[0]
		t.pending = t.pending[1:]
		if e.BottomY() > y {
			t.active = append(t.active, e)
		}
	}

	for _, e := range t.active {
		for e.AsLine().LastY < y {
			if !e.Update() {
				break
			}
		}
	}

	j := 0
	for _, e := range t.active {
		if e.AsLine().LastY >= y {
			t.active[j] = e
			j++
		}
	}
	t.active = t.active[:j]

	slices.SortFunc(t.active, func(a, b *CurveEdgeVariant) int {
		ax, bx := a.AsLine().X, b.AsLine().X
		switch {
		case ax < bx:
			return -1
		case ax > bx:
			return 1
		default:
			return 0
		}
	})
}

// Active returns the edges intersecting the current scanline, sorted
// left to right by X.
func (t *ActiveEdgeTable) Active() []*CurveEdgeVariant { return t.active }

// Len reports how many edges are currently active.
func (t *ActiveEdgeTable) Len() int { return len(t.active) }

// Done reports whether every edge has been consumed.
func (t *ActiveEdgeTable) Done() bool { return len(t.pending) == 0 && len(t.active) == 0 }

// Spans yields (xStart, xEnd) pairs covered by the active edges at the
// current scanline under the nonzero winding rule: a span is inside
// whenever the accumulated winding is nonzero between two edge crossings.
func (t *ActiveEdgeTable) Spans(yield func(xStart, xEnd fixed.Dot16) bool) {
	winding := 0
	var spanStart fixed.Dot16
	inSpan := false

	for _, e := range t.active {
		line := e.AsLine()
		wasInside := winding != 0
		winding += int(line.Winding)
		nowInside := winding != 0

		switch {
		case !wasInside && nowInside:
			spanStart = line.X
			inSpan = true
		case wasInside && !nowInside && inSpan:
			if !yield(spanStart, line.X) {
				return
			}
			inSpan = false
		}
	}
}
