package interfaces

import "errors"

// Errors repositories return for conditional-write outcomes.
var (
	ErrSlotTaken           = errors.New("an active meal change already holds this date and slot")
	ErrVersionConflict     = errors.New("meal change request was modified concurrently")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
)
