package entities

import "time"

type BallotKind string

const (
	BallotKindCandidate BallotKind = "candidate"
	BallotKindBlank     BallotKind = "blank"
)

// VoterRoll is the list of voters registered to vote at one station.
// A station has at most one roll.
type VoterRoll struct {
	RollID    string
	StationID string
	Code      string
	CreatedAt time.Time
}

// RollEntry is one registered voter on a roll. HasVoted is monotonic: it
// flips false to true exactly once and is never reset. An entry with
// HasVoted set cannot be removed from its roll.
type RollEntry struct {
	VoterNumber string
	RollID      string
	StationID   string
	HasVoted    bool
	Archived    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// VoteLogEntry is the append-only audit record of a single cast event.
// Existence of an entry for a voter number is equivalent to "has voted".
type VoteLogEntry struct {
	EntryID     string
	StationID   string
	VoterNumber string
	CastAt      time.Time
	SourceIP    string
}

type EligibilityReason string

const (
	EligibilityOK           EligibilityReason = "eligible"
	EligibilityNotFound     EligibilityReason = "voter_not_found"
	EligibilityWrongStation EligibilityReason = "wrong_station"
	EligibilityVoted        EligibilityReason = "already_voted"
)

type Eligibility struct {
	Eligible bool
	Reason   EligibilityReason
}
