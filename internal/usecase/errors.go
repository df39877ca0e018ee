package usecase

import (
	"errors"

	"mealchange_service/internal/domain/policy"
)

// Validation.
var (
	ErrInvalidDate        = policy.ErrInvalidDate
	ErrInvalidSlot        = errors.New("invalid delivery slot, expected lunch or dinner")
	ErrInvalidTier        = errors.New("invalid plan tier, expected low, basic or premium")
	ErrInvalidReason      = errors.New("invalid change reason")
	ErrInvalidRequestID   = errors.New("invalid request id")
	ErrInvalidUserID      = errors.New("invalid user id")
	ErrInvalidAddon       = errors.New("invalid add-on")
	ErrInvalidPaymentRail = errors.New("invalid payment method")
	ErrInvalidStatus      = errors.New("invalid status filter")
	ErrNothingToChange    = errors.New("requested meal is identical to the scheduled meal")
)

// Temporal ineligibility.
var (
	ErrPastDate     = policy.ErrPastDate
	ErrCutoffPassed = policy.ErrCutoffPassed
)

// Missing collaborators' data.
var (
	ErrNoMenu          = errors.New("no menu published for this date and slot")
	ErrNoSubscription  = errors.New("no active subscription for this date")
	ErrRequestNotFound = errors.New("meal change request not found")
	ErrForbidden       = errors.New("meal change request belongs to another user")
)

// State machine violations.
var (
	ErrDuplicateRequest = errors.New("a meal change already exists for this date and slot")
	ErrNotPending       = errors.New("meal change request is no longer pending")
	ErrNotCancellable   = errors.New("only pending meal change requests can be cancelled")
	ErrNotPayable       = errors.New("meal change request cannot be paid in its current state")
	ErrAlreadyPaid      = errors.New("meal change request is already paid")
	ErrConflict         = errors.New("meal change request was modified concurrently, retry")
)

// Payment rails. These are never retried automatically.
var (
	ErrInsufficientFunds     = errors.New("insufficient wallet balance")
	ErrGatewayDeclined       = errors.New("payment declined by gateway")
	ErrGatewayUnavailable    = errors.New("payment gateway did not answer in time")
	ErrGatewayNotConfigured  = errors.New("payment gateway not configured")
	ErrReconciliationPending = errors.New("payment captured but not recorded, flagged for reconciliation")
)
