// Package tallyledger owns station tallies: per-candidate counters, final
// counts, the supervisor validation gate and invalidation after an accepted
// dispute.
package tallyledger
