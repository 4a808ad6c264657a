// Package scenario groups the building blocks of the Dresden scenario tooling.
//
// # Reading Guide
//
// The file formats live in their own packages and are independent of each other:
//   - matsim/: shared XML primitives (attributes, gzip-aware IO, times, floats)
//   - population/: persons, plans, activities, legs and trip structure
//   - network/: nodes, links, allowed modes and connectivity cleaning
//   - vehicles/, facilities/, transit/: the remaining scenario inputs
//   - config/: the generic module/param/parameterset configuration document
//
// Computation builds on top of them:
//   - geo/: study areas, buffers, projections and nearest-point lookups
//   - routing/: free-speed shortest paths on a single-mode subnetwork
//   - prepare/: input transformations (cut-out, mode conversion, network fixes)
//   - analysis/: population checks and TSV summaries
//   - dresden/: base scenario configuration and network/vehicle preparation
//   - variant/: policy variants applied on top of the base scenario
//
// Scenario constants (modes, subpopulations, fares, emission tables) are read
// from defaults.yaml through defaults/.
package scenario
