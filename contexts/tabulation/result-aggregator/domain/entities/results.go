package entities

type AggregationLevel string

const (
	LevelGlobal     AggregationLevel = "global"
	LevelCommune    AggregationLevel = "commune"
	LevelDepartment AggregationLevel = "department"
	LevelRegion     AggregationLevel = "region"
)

type CandidateTotal struct {
	CandidacyID string
	Votes       int
	Percent     float64
}

// AggregateResult is one fold bucket: the whole election for the global
// level, one geographic unit otherwise. Percentages use the bucket's own
// denominators and report 0 when a denominator is 0.
type AggregateResult struct {
	ElectionID        string
	Level             AggregationLevel
	UnitID            string
	Registered        int
	Voters            int
	Blank             int
	Spoiled           int
	Valid             int
	TalliesCounted    int
	ParticipationRate float64
	Candidates        []CandidateTotal
}

type Progress struct {
	ElectionID        string
	StationsTotal     int
	StationsReported  int
	Registered        int
	Voters            int
	ParticipationRate float64
}
