package contracts

import "errors"

var (
	// ErrMissingData marks an absent frame, price series or factor series
	ErrMissingData = errors.New("missing data")

	// ErrNumericGuard marks a computation that would divide by zero or go non-finite
	ErrNumericGuard = errors.New("numeric guard")

	// ErrInsufficientData aborts a valuation: no price, no shares or FCF <= 0
	ErrInsufficientData = errors.New("insufficient data for valuation")
)
