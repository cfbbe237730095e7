// Package config reads engine configurations from TOML files and turns them
// into [impred.Options].
//
// A configuration names the iteration count, the thermostat, and ordered
// lists of terms for each phase of an iteration:
//
//	iterations = 200
//
//	[thermostat]
//	kind = "linear"
//
//	[[force]]
//	kind = "edge-attraction"
//	desired = 50
//
//	[[force]]
//	kind = "curve-smoothing"
//	gate_below = 0.5
//
//	[[constraint]]
//	kind = "surrounding-edges"
//
// Terms are built fresh by [Config.Build] for every engine, so one Config can
// configure any number of engines. Numeric parameters left at zero take the
// term's default. Terms that need per-node data read it from the graph's
// well-known attributes: pinned nodes, attraction targets and flexible edges.
//
// [Default] returns the ImPrEd preset used when no file is given.
package config
