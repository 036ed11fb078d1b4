// Package seqgen is the boundary to the Seq-Gen executable.
//
// The only contract callers depend on is Simulator. Exec is the production
// implementation; tests substitute a fake.
package seqgen
