// Package constraint provides the movement caps of the layout engine.
//
// A constraint term returns a cap per node and a default cap. The engine
// keeps the minimum over all terms, so a term can only tighten what the
// others allow. Caps are distances; the engine moves a node by at most
// impred.SafetyFactor times its cap.
package constraint
