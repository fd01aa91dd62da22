package entities

import "time"

type ElectionStatus string

const (
	ElectionStatusPlanned   ElectionStatus = "planned"
	ElectionStatusRunning   ElectionStatus = "running"
	ElectionStatusFinished  ElectionStatus = "finished"
	ElectionStatusCancelled ElectionStatus = "cancelled"
)

type Election struct {
	ElectionID   string
	Name         string
	Status       ElectionStatus
	ScheduledFor time.Time
	StartedAt    *time.Time
	EndedAt      *time.Time
	CancelReason string
	Archived     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
