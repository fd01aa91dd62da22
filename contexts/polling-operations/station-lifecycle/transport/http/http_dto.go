package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ScheduleElectionRequest struct {
	Name         string `json:"name"`
	ScheduledFor string `json:"scheduled_for,omitempty"`
}

type ElectionResponse struct {
	ElectionID   string `json:"election_id"`
	Name         string `json:"name"`
	Status       string `json:"status"`
	StartedAt    string `json:"started_at,omitempty"`
	EndedAt      string `json:"ended_at,omitempty"`
	CancelReason string `json:"cancel_reason,omitempty"`
}

type StartElectionResponse struct {
	ElectionID    string `json:"election_id"`
	Status        string `json:"status"`
	StartedAt     string `json:"started_at"`
	StationsReady int    `json:"stations_ready"`
}

type CancelElectionRequest struct {
	Reason string `json:"reason,omitempty"`
}

type RegisterStationRequest struct {
	ElectionID      string `json:"election_id"`
	Name            string `json:"name"`
	CommuneID       string `json:"commune_id,omitempty"`
	RegisteredCount int    `json:"registered_count"`
}

type OpenStationRequest struct {
	ElectionID string `json:"election_id"`
}

type CloseStationRequest struct {
	ElectionID   string `json:"election_id"`
	Voters       int    `json:"voters"`
	Spoiled      int    `json:"spoiled"`
	Blank        int    `json:"blank"`
	Observations string `json:"observations,omitempty"`
}

type CloseStationResponse struct {
	StationID  string `json:"station_id"`
	ValidCount int    `json:"valid_count"`
	MinutesRef string `json:"minutes_ref"`
	ClosedAt   string `json:"closed_at"`
}

type StationResponse struct {
	StationID       string `json:"station_id"`
	ElectionID      string `json:"election_id"`
	Name            string `json:"name"`
	CommuneID       string `json:"commune_id,omitempty"`
	RegisteredCount int    `json:"registered_count"`
	Status          string `json:"status"`
	OpenedAt        string `json:"opened_at,omitempty"`
	ClosedAt        string `json:"closed_at,omitempty"`
	MinutesRef      string `json:"minutes_ref,omitempty"`
}

type StationListResponse struct {
	ElectionID string            `json:"election_id"`
	Items      []StationResponse `json:"items"`
}
