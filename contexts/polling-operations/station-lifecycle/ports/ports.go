package ports

import (
	"context"
	"time"

	"scrutin/contexts/polling-operations/station-lifecycle/domain/entities"
)

type ElectionRepository interface {
	SaveElection(ctx context.Context, election entities.Election) error
	GetElection(ctx context.Context, electionID string) (entities.Election, error)
	// ApplyStart flips the election from planned to running and seeds one
	// zero tally per active station plus one zero vote line per approved
	// candidacy, all in a single transaction. Returns the number of
	// stations seeded.
	ApplyStart(ctx context.Context, electionID string, startedAt time.Time) (int, error)
	// ApplyFinish moves running to finished; ApplyCancel moves planned or
	// running to cancelled. Both are conditional updates that fail with a
	// state error when the election is elsewhere in the machine.
	ApplyFinish(ctx context.Context, electionID string, endedAt time.Time) error
	ApplyCancel(ctx context.Context, electionID string, reason string, endedAt time.Time) error
}

type StationRepository interface {
	SaveStation(ctx context.Context, station entities.Station) error
	GetStation(ctx context.Context, stationID string) (entities.Station, error)
	ListStationsByElection(ctx context.Context, electionID string) ([]entities.Station, error)
	// MarkOpen is a conditional update guarded on the current status. Zero
	// rows means the station was already open or closed.
	MarkOpen(ctx context.Context, stationID string, openedAt time.Time) error
	// FinalizeClose freezes the final counts on the station's open tally,
	// stamps the station closed and stores the minutes reference, in one
	// transaction.
	FinalizeClose(ctx context.Context, record CloseRecord) error
}

// CloseRecord is the full outcome of a station close procedure.
type CloseRecord struct {
	StationID    string
	Voters       int
	Spoiled      int
	Blank        int
	Valid        int
	Observations string
	MinutesRef   string
	ClosedAt     time.Time
}

// MinutesData is what the external renderer receives. Rendering itself is a
// black box; only the returned reference is stored.
type MinutesData struct {
	StationID    string
	StationName  string
	ElectionID   string
	Voters       int
	Spoiled      int
	Blank        int
	Valid        int
	Observations string
	ClosedAt     time.Time
}

type MinutesRenderer interface {
	Render(ctx context.Context, minutes MinutesData) (string, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
