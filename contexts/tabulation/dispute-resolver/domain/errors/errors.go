package errors

import "errors"

var (
	ErrInvalidDisputeInput = errors.New("dispute resolver: invalid input")
	ErrInvalidDecision     = errors.New("dispute resolver: decision must be accepted or rejected")
	ErrDisputeNotFound     = errors.New("dispute resolver: dispute not found")
	ErrTallyNotFound       = errors.New("dispute resolver: tally not found")
	ErrDuplicateDispute    = errors.New("dispute resolver: pending dispute already exists for this triple")
	ErrAlreadyResolved     = errors.New("dispute resolver: dispute already resolved")
	ErrConflict            = errors.New("dispute resolver: conflicting concurrent update")
)
