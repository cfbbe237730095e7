// Package locator implements a uniform bucket grid over the nodes and edges
// of a graph, answering "what is near here" faster than a linear scan.
//
// Every element is inserted into each square cell its (padded) bounding box
// overlaps. Box queries collect the contents of the cells covering the query
// box; radius queries turn the point, node or edge plus radius into an
// enclosing square box. Results are therefore a conservative superset of
// the exact answer and callers filter by true distance themselves.
//
// [Partial] and [Inside] box queries return the same result. Both report
// every element whose cells intersect the query box; constraint terms rely
// on the looser reading.
//
// The grid is kept in sync either by calling [Locator.Rebuild] (the layout
// engine does this once per iteration, since nearly every position changes)
// or by [Locator.AutoSync], which re-indexes only the elements reported by
// the graph's change notifications. [Locator.Close] releases the
// subscriptions.
package locator
