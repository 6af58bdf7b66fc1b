package models

import "errors"

var (
	// ErrNoData is returned when a fetch or an alignment yields no rows.
	ErrNoData = errors.New("no data found")
	// ErrInvalidInput is returned for malformed symbols, periods, intervals or windows.
	ErrInvalidInput = errors.New("invalid input")
)
