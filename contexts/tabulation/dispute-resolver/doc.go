// Package disputeresolver handles contestations raised by candidate
// representatives against station tallies. Accepting a dispute invalidates
// the tally in the same transaction, which pulls it out of every aggregate.
package disputeresolver
