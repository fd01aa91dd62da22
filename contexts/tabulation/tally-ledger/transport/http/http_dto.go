package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type IncrementCandidateRequest struct {
	CandidacyID string `json:"candidacy_id"`
}

type SetFinalCountsRequest struct {
	Voters       int    `json:"voters"`
	Spoiled      int    `json:"spoiled"`
	Blank        int    `json:"blank"`
	Observations string `json:"observations,omitempty"`
}

type ValidateTallyRequest struct {
	Comment string `json:"comment,omitempty"`
}

type CandidateCount struct {
	CandidacyID string `json:"candidacy_id"`
	Votes       int    `json:"votes"`
}

type TallyResponse struct {
	TallyID           string           `json:"tally_id"`
	StationID         string           `json:"station_id"`
	ElectionID        string           `json:"election_id"`
	Voters            int              `json:"voters"`
	Spoiled           int              `json:"spoiled"`
	Blank             int              `json:"blank"`
	Valid             int              `json:"valid"`
	Observations      string           `json:"observations,omitempty"`
	Validated         bool             `json:"validated"`
	ValidationComment string           `json:"validation_comment,omitempty"`
	MinutesRef        string           `json:"minutes_ref,omitempty"`
	Counts            []CandidateCount `json:"counts"`
}

type CandidateShare struct {
	CandidacyID string  `json:"candidacy_id"`
	Votes       int     `json:"votes"`
	Percent     float64 `json:"percent"`
}

type StatisticsResponse struct {
	TallyID           string           `json:"tally_id"`
	StationID         string           `json:"station_id"`
	RegisteredCount   int              `json:"registered_count"`
	VotersCount       int              `json:"voters_count"`
	ParticipationRate float64          `json:"participation_rate"`
	Candidates        []CandidateShare `json:"candidates"`
}
