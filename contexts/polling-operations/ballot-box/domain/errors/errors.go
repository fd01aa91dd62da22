package errors

import "errors"

var (
	ErrInvalidCastInput     = errors.New("invalid cast input")
	ErrVoterNotFound        = errors.New("voter not found on any roll")
	ErrWrongStation         = errors.New("voter is not enrolled at this station")
	ErrAlreadyVoted         = errors.New("voter has already voted")
	ErrElectionNotRunning   = errors.New("election is not running")
	ErrStationNotOpen       = errors.New("station is not open")
	ErrStationNotFound      = errors.New("station not found")
	ErrElectionNotFound     = errors.New("election not found")
	ErrNoOpenTally          = errors.New("no open tally for this station")
	ErrCandidateNotOnBallot = errors.New("candidacy is not on this station's ballot")
	ErrRollNotFound         = errors.New("voter roll not found")
	ErrRollExists           = errors.New("station already has a voter roll")
	ErrVoterEnrolled        = errors.New("voter is already enrolled on a roll")
	ErrVoterLocked          = errors.New("voter has voted and cannot be removed")
	ErrInvalidRollInput     = errors.New("invalid roll input")
	ErrConflict             = errors.New("ballot conflict")
)
