package ports

import "context"

// TallyFact is the flat read shape the aggregator folds over. One row per
// station tally, geography denormalized in; no entity graphs cross the
// module boundary.
type TallyFact struct {
	TallyID      string
	StationID    string
	ElectionID   string
	CommuneID    string
	DepartmentID string
	RegionID     string
	Registered   int
	Voters       int
	Spoiled      int
	Blank        int
	Valid        int
	Validated    bool
	Reported     bool
}

type CandidateVoteFact struct {
	TallyID     string
	CandidacyID string
	Votes       int
}

type ResultsReader interface {
	// ElectionExists distinguishes an empty election from an unknown one.
	ElectionExists(ctx context.Context, electionID string) (bool, error)
	ListTallyFacts(ctx context.Context, electionID string) ([]TallyFact, error)
	ListVoteFacts(ctx context.Context, electionID string) ([]CandidateVoteFact, error)
}
