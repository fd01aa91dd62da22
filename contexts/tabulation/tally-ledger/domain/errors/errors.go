package errors

import "errors"

var (
	ErrInvalidTallyInput     = errors.New("tally ledger: invalid input")
	ErrInvalidCounts         = errors.New("tally ledger: invalid final counts")
	ErrTallyNotFound         = errors.New("tally ledger: tally not found")
	ErrCandidateNotFound     = errors.New("tally ledger: candidate not on tally")
	ErrStationNotFound       = errors.New("tally ledger: station not found")
	ErrTallyValidated        = errors.New("tally ledger: tally already validated")
	ErrAlreadyValidated      = errors.New("tally ledger: tally already validated by a supervisor")
	ErrNotAuthorized         = errors.New("tally ledger: validator role not authorized")
	ErrPreviouslyInvalidated = errors.New("tally ledger: tally was invalidated and cannot be validated")
	ErrSumExceedsValid       = errors.New("tally ledger: candidate votes exceed valid ballots")
	ErrConflict              = errors.New("tally ledger: conflicting concurrent update")
)
