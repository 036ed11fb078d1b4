// Package replicate drives one Seq-Gen simulation per (tree, sample, seed) triple.
//
// Replicates is the serial, pull-based form: each call to Next translates one
// sample, checks it, runs the simulator, and stops at the first error.
// Ordered is the same contract with bounded parallelism and input-order delivery.
package replicate
