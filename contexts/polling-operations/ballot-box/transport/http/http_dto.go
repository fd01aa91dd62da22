package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CastBallotRequest struct {
	ElectionID  string `json:"election_id,omitempty"`
	VoterNumber string `json:"voter_number"`
	StationID   string `json:"station_id"`
	CandidacyID string `json:"candidacy_id,omitempty"`
	Blank       bool   `json:"blank,omitempty"`
}

type CastBallotResponse struct {
	LogEntryID string `json:"log_entry_id"`
	Kind       string `json:"kind"`
	CastAt     string `json:"cast_at"`
}

type EligibilityResponse struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason"`
}

type RegisterRollRequest struct {
	StationID string `json:"station_id"`
	Code      string `json:"code,omitempty"`
}

type RollResponse struct {
	RollID    string `json:"roll_id"`
	StationID string `json:"station_id"`
	Code      string `json:"code"`
	CreatedAt string `json:"created_at"`
}

type AddVoterRequest struct {
	VoterNumber string `json:"voter_number"`
}

type RollEntryResponse struct {
	VoterNumber string `json:"voter_number"`
	RollID      string `json:"roll_id"`
	StationID   string `json:"station_id"`
	HasVoted    bool   `json:"has_voted"`
}

type RollEntriesResponse struct {
	RollID string              `json:"roll_id"`
	Items  []RollEntryResponse `json:"items"`
}

type JournalEntry struct {
	EntryID     string `json:"entry_id"`
	StationID   string `json:"station_id"`
	VoterNumber string `json:"voter_number"`
	CastAt      string `json:"cast_at"`
	SourceIP    string `json:"source_ip,omitempty"`
}

type JournalResponse struct {
	StationID string         `json:"station_id"`
	Items     []JournalEntry `json:"items"`
}
