// Package stratify draws reproducible, proportionally stratified samples.
//
// A [Pool] partitions records by group. [Allocate] turns group sizes and a
// target into an integer count per group using capped largest-remainder
// apportionment, and [Assemble] draws that many records from each group and
// shuffles the result into one ordered [Sample].
//
// # Usage
//
//	pool, err := stratify.NewPool(records)
//	if err != nil {
//	    return err
//	}
//	sample, err := stratify.Build(pool, 100, stratify.Int64Seed(42))
//	if err != nil {
//	    return err
//	}
//	for _, sel := range sample.Selections {
//	    fmt.Println(sel.InstanceIndex, sel.Record.ID, sel.Stratum)
//	}
//
// # Determinism
//
// Every pseudorandom choice comes from a ChaCha stream keyed by the seed.
// Each group draws from its own stream keyed by (seed, group), so changing
// the records of one group never changes which records another group draws.
// The final ordering uses a separate stream keyed by the seed alone.
//
// All functions are pure: they keep no package state and never mutate their
// inputs, so they are safe to call concurrently.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// See version.go for version constants that can be used programmatically.
package stratify
