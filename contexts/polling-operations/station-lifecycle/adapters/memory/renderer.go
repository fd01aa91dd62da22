package memory

import (
	"context"
	"fmt"

	"scrutin/contexts/polling-operations/station-lifecycle/ports"
)

// StaticMinutesRenderer returns a deterministic reference without producing
// a document. Used by the in-memory module and by tests.
type StaticMinutesRenderer struct{}

func (StaticMinutesRenderer) Render(_ context.Context, minutes ports.MinutesData) (string, error) {
	return fmt.Sprintf("minutes/%s/%s", minutes.ElectionID, minutes.StationID), nil
}

var _ ports.MinutesRenderer = StaticMinutesRenderer{}
