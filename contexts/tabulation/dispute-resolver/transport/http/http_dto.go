package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SubmitDisputeRequest struct {
	TallyID          string `json:"tally_id"`
	CandidacyID      string `json:"candidacy_id"`
	RepresentativeID string `json:"representative_id"`
	Motif            string `json:"motif"`
	Description      string `json:"description,omitempty"`
}

type ResolveDisputeRequest struct {
	Decision string `json:"decision"`
	Comment  string `json:"comment,omitempty"`
}

type DisputeResponse struct {
	DisputeID        string `json:"dispute_id"`
	TallyID          string `json:"tally_id"`
	CandidacyID      string `json:"candidacy_id"`
	RepresentativeID string `json:"representative_id"`
	Motif            string `json:"motif"`
	Description      string `json:"description,omitempty"`
	Status           string `json:"status"`
	DecisionComment  string `json:"decision_comment,omitempty"`
	SubmittedAt      string `json:"submitted_at"`
	ResolvedAt       string `json:"resolved_at,omitempty"`
}

type DisputeListResponse struct {
	Disputes []DisputeResponse `json:"disputes"`
}
