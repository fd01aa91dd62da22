package errors

import "errors"

var (
	ErrInvalidAggregateInput = errors.New("result aggregator: invalid input")
	ErrUnknownLevel          = errors.New("result aggregator: unknown aggregation level")
	ErrElectionNotFound      = errors.New("result aggregator: election not found")
)
