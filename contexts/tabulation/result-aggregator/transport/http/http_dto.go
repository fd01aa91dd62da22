package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CandidateTotal struct {
	CandidacyID string  `json:"candidacy_id"`
	Votes       int     `json:"votes"`
	Percent     float64 `json:"percent"`
}

type AggregateBucket struct {
	UnitID            string           `json:"unit_id,omitempty"`
	Registered        int              `json:"registered"`
	Voters            int              `json:"voters"`
	Blank             int              `json:"blank"`
	Spoiled           int              `json:"spoiled"`
	Valid             int              `json:"valid"`
	TalliesCounted    int              `json:"tallies_counted"`
	ParticipationRate float64          `json:"participation_rate"`
	Candidates        []CandidateTotal `json:"candidates"`
}

type AggregateResponse struct {
	ElectionID string            `json:"election_id"`
	Level      string            `json:"level"`
	Buckets    []AggregateBucket `json:"buckets"`
}

type ProgressResponse struct {
	ElectionID        string  `json:"election_id"`
	StationsTotal     int     `json:"stations_total"`
	StationsReported  int     `json:"stations_reported"`
	Registered        int     `json:"registered"`
	Voters            int     `json:"voters"`
	ParticipationRate float64 `json:"participation_rate"`
}
