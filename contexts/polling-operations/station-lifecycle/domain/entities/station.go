package entities

import "time"

type StationStatus string

const (
	StationStatusInactive StationStatus = "inactive"
	StationStatusOpen     StationStatus = "open"
	StationStatusClosed   StationStatus = "closed"
)

// Station is a polling station. RegisteredCount caps the voters a close can
// report; the archived flag soft-deletes the station without losing history.
type Station struct {
	StationID       string
	ElectionID      string
	Name            string
	CommuneID       string
	RegisteredCount int
	Status          StationStatus
	OpenedAt        *time.Time
	ClosedAt        *time.Time
	MinutesRef      string
	Archived        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// FinalCounts is what a station president reports at close. ValidCount is
// always derived, never accepted from the caller.
type FinalCounts struct {
	Voters       int
	Spoiled      int
	Blank        int
	Observations string
}

func (c FinalCounts) ValidCount() int {
	return c.Voters - c.Spoiled - c.Blank
}
