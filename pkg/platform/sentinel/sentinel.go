package sentinel

import "errors"

// Sentinel errors for storage facts. Stores return these (optionally wrapped)
// and services decide which domain error they become:
// - ErrNotFound: no row for the id or reference
// - ErrAlreadyUsed: a unique key (reference number, staff email) is taken
// - ErrInvalidState: a conditional write lost because the row's status moved on
// - ErrConflict: generic optimistic-concurrency loss
// - ErrUnavailable: backing service is down (cache, broker)
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
