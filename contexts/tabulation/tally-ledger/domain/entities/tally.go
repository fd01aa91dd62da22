package entities

import "time"

// StationTally is the counting sheet of one station for one election. A
// validated tally is immutable; an invalidated tally can never be validated
// again.
type StationTally struct {
	TallyID           string
	StationID         string
	ElectionID        string
	VotersCount       int
	SpoiledCount      int
	BlankCount        int
	ValidCount        int
	Observations      string
	ValidationComment string
	MinutesRef        string
	Validated         bool
	ValidatedBy       string
	ValidatedAt       *time.Time
	InvalidatedAt     *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type CandidateVoteCount struct {
	CountID     string
	TallyID     string
	CandidacyID string
	Votes       int
	UpdatedAt   time.Time
}

// CandidateShare is a per-candidate line in station statistics.
type CandidateShare struct {
	CandidacyID string
	Votes       int
	Percent     float64
}

type StationStatistics struct {
	TallyID           string
	StationID         string
	RegisteredCount   int
	VotersCount       int
	ParticipationRate float64
	Candidates        []CandidateShare
}
