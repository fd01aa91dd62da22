package entities

import "time"

type DisputeStatus string

const (
	DisputeStatusPending  DisputeStatus = "pending"
	DisputeStatusAccepted DisputeStatus = "accepted"
	DisputeStatusRejected DisputeStatus = "rejected"
)

type DisputeDecision string

const (
	DecisionAccepted DisputeDecision = "accepted"
	DecisionRejected DisputeDecision = "rejected"
)

// Dispute is one representative's contestation of one candidate's count on
// one tally. At most one pending dispute may exist per such triple.
type Dispute struct {
	DisputeID        string
	TallyID          string
	CandidacyID      string
	RepresentativeID string
	Motif            string
	Description      string
	Status           DisputeStatus
	DecisionComment  string
	SubmittedAt      time.Time
	ResolvedAt       *time.Time
}
