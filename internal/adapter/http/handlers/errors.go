package handlers

import (
	"errors"
	"net/http"
	"strings"

	"mealchange_service/internal/usecase"
	"mealchange_service/pkg"
)

func mapMealChangeError(err error) *pkg.AppError {
	switch {
	case errors.Is(err, usecase.ErrInvalidDate), errors.Is(err, usecase.ErrInvalidSlot),
		errors.Is(err, usecase.ErrInvalidTier), errors.Is(err, usecase.ErrInvalidReason),
		errors.Is(err, usecase.ErrInvalidRequestID), errors.Is(err, usecase.ErrInvalidAddon),
		errors.Is(err, usecase.ErrInvalidPaymentRail), errors.Is(err, usecase.ErrInvalidStatus):
		return pkg.NewDomainErrorSimple("VALIDATION_ERROR", capitalize(err.Error()), http.StatusBadRequest)
	case errors.Is(err, usecase.ErrInvalidUserID):
		return pkg.NewDomainErrorSimple("UNAUTHENTICATED", "Missing caller identity", http.StatusUnauthorized)
	case errors.Is(err, usecase.ErrNothingToChange):
		return pkg.NewDomainErrorSimple("NOTHING_TO_CHANGE", "Requested meal is identical to the scheduled meal", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrPastDate):
		return pkg.NewDomainErrorSimple("PAST_DATE", "Cannot change meals for past dates", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrCutoffPassed):
		return pkg.NewDomainErrorSimple("CUTOFF_PASSED", "Meal changes for this date closed at 06:00", http.StatusUnprocessableEntity)
	case errors.Is(err, usecase.ErrNoMenu):
		return pkg.NewDomainErrorSimple("NO_MENU", "No menu available for this date and slot", http.StatusNotFound)
	case errors.Is(err, usecase.ErrNoSubscription):
		return pkg.NewDomainErrorSimple("NO_SUBSCRIPTION", "No active subscription for this date", http.StatusNotFound)
	case errors.Is(err, usecase.ErrRequestNotFound):
		return pkg.NewDomainErrorSimple("MEAL_CHANGE_NOT_FOUND", "Meal change request not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrForbidden):
		return pkg.NewDomainErrorSimple("FORBIDDEN", "Meal change request belongs to another user", http.StatusForbidden)
	case errors.Is(err, usecase.ErrDuplicateRequest):
		return pkg.NewDomainErrorSimple("DUPLICATE_REQUEST", "A meal change already exists for this date and slot", http.StatusConflict)
	case errors.Is(err, usecase.ErrNotPending):
		return pkg.NewDomainErrorSimple("NOT_PENDING", "Meal change request is no longer pending", http.StatusConflict)
	case errors.Is(err, usecase.ErrNotCancellable):
		return pkg.NewDomainErrorSimple("NOT_CANCELLABLE", "Only pending meal change requests can be cancelled", http.StatusConflict)
	case errors.Is(err, usecase.ErrNotPayable):
		return pkg.NewDomainErrorSimple("NOT_PAYABLE", "Meal change request cannot be paid in its current state", http.StatusConflict)
	case errors.Is(err, usecase.ErrAlreadyPaid):
		return pkg.NewDomainErrorSimple("ALREADY_PAID", "Meal change request is already paid", http.StatusConflict)
	case errors.Is(err, usecase.ErrConflict):
		return pkg.NewDomainErrorSimple("CONFLICT", "Meal change request was modified concurrently, retry", http.StatusConflict)
	case errors.Is(err, usecase.ErrInsufficientFunds):
		return pkg.NewDomainErrorSimple("INSUFFICIENT_FUNDS", "Insufficient wallet balance", http.StatusPaymentRequired)
	case errors.Is(err, usecase.ErrGatewayDeclined):
		return pkg.NewDomainError("PAYMENT_DECLINED", "Payment declined", err, http.StatusPaymentRequired).WithMessage(capitalize(err.Error()))
	case errors.Is(err, usecase.ErrGatewayUnavailable):
		return pkg.NewDomainError("PAYMENT_PROVIDER_TIMEOUT", "Payment provider did not answer in time", err, http.StatusGatewayTimeout)
	case errors.Is(err, usecase.ErrGatewayNotConfigured):
		return pkg.NewDomainError("PAYMENT_PROVIDER_UNAVAILABLE", "Payment provider not configured", err, http.StatusServiceUnavailable)
	case errors.Is(err, usecase.ErrReconciliationPending):
		return pkg.NewDomainError("RECONCILIATION_PENDING", "Payment captured but not recorded, support has been notified", err, http.StatusBadGateway)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
