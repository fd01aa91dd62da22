// Package ballotbox implements the ballot casting core inside the
// polling-operations context.
//
// The module owns the voter roll (enrollment and the one-time-voting
// guarantee), the ballot-cast transaction that atomically marks a voter as
// having voted while incrementing the station tally, and the append-only vote
// journal. Business rules live in application/domain layers; infrastructure
// stays behind ports and adapters.
package ballotbox
