package interfaces

import (
	"context"

	"mealchange_service/internal/domain/entities"

	"github.com/shopspring/decimal"
)

// IWalletRepository is the internal balance rail.
//
// Debit and Credit each move the balance and append one immutable ledger line
// atomically. Debit never takes the balance below zero and reports
// ErrInsufficientBalance instead.
type IWalletRepository interface {
	GetBalance(ctx context.Context, userID string) (decimal.Decimal, error)
	Debit(ctx context.Context, userID string, amount decimal.Decimal, note, refID string) (entities.LedgerEntry, error)
	Credit(ctx context.Context, userID string, amount decimal.Decimal, note, refID string) (entities.LedgerEntry, error)
}
