// Package idgen generates process-wide unique identifiers for filter
// nodes and raster images. Zero is reserved to mean "unassigned", so the
// generator skips it.
package idgen

import "sync/atomic"

var counter atomic.Uint32

// Next returns a monotonically increasing, process-wide unique id. The
// returned value is never zero.
func Next() uint32 {
	for {
		id := counter.Add(1)
		if id != 0 {
			return id
		}
		// Wrapped around to zero; try again for the next value.
	}
}
