// Package filter implements an image-filter graph: an immutable DAG of
// FilterNode values, each mapping an input raster image to an output
// raster image under a current transform and clip, evaluated by a
// FilterEvaluator that propagates context through the graph and
// memoizes results in a bounded, process-wide LRU cache.
package filter
