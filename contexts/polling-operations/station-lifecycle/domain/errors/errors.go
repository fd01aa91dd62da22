package errors

import "errors"

var (
	ErrInvalidElectionInput = errors.New("station lifecycle: invalid election input")
	ErrInvalidStationInput  = errors.New("station lifecycle: invalid station input")
	ErrInvalidCounts        = errors.New("station lifecycle: invalid final counts")
	ErrElectionNotFound     = errors.New("station lifecycle: election not found")
	ErrStationNotFound      = errors.New("station lifecycle: station not found")
	ErrElectionNotPlanned   = errors.New("station lifecycle: election is not planned")
	ErrElectionNotRunning   = errors.New("station lifecycle: election is not running")
	ErrElectionTerminal     = errors.New("station lifecycle: election already finished or cancelled")
	ErrStationAlreadyOpen   = errors.New("station lifecycle: station already open")
	ErrStationNotOpen       = errors.New("station lifecycle: station is not open")
	ErrVotersExceedRoll     = errors.New("station lifecycle: voters exceed registered count")
	ErrNoOpenTally          = errors.New("station lifecycle: no open tally for station")
	ErrMinutesRender        = errors.New("station lifecycle: minutes rendering failed")
	ErrConflict             = errors.New("station lifecycle: conflicting concurrent update")
)
