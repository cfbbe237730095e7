// Package impred implements the ImPrEd force-directed layout engine.
//
// An [Engine] improves node positions of a graph iteratively. Each
// iteration sums the vectors produced by the registered [Force] terms,
// limits every node's movement by the minimum of the caps produced by the
// [Constraint] terms, optionally regularizes the result with [PreMovement]
// steps, applies it, and runs [PostProcessor] steps such as bend
// insertion. A [Thermostat] anneals a temperature from 1 toward 0 across a
// planned run; terms use it to fade exponents, distances and caps.
//
// # Mirror Graph
//
// The engine never moves curved edges directly. It works on a
// bend-explicit mirror (package bends) in which every control point is a
// node, so constraint terms that prevent crossings see only straight
// segments. Terms are configured with handles of the original graph and
// translate them with [Context.MirrorNodes] and [Context.Segments].
//
// # Iteration Protocol
//
// [Engine.Step] runs one iteration in a fixed order:
//
//  1. push original → mirror
//  2. open a notification batch on mirror positions
//  3. reset forces to zero and caps to +∞
//  4. rebuild the spatial locator
//  5. advance the temperature
//  6. sum forces
//  7. combine constraints by minimum
//  8. clip each force to SafetyFactor × its cap
//  9. run pre-movement steps
//  10. apply movements
//  11. run post-processing steps
//  12. close the notification batch
//  13. pull mirror → original
//
// There is no convergence test. [Engine.Iterate] runs a fixed number of
// iterations and stops early only when its context is cancelled; callers
// that want to drive the engine themselves use [Engine.Plan] and
// [Engine.Step].
//
// # Terms
//
// Terms live in the subpackages force, constraint, premove and
// postprocess. A term holding per-run state embeds [Attachment]; the
// engine attaches it on construction and using it with a different engine
// panics.
package impred
