package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type LedgerEntryType string

const (
	LedgerDebit  LedgerEntryType = "debit"
	LedgerCredit LedgerEntryType = "credit"
)

// LedgerEntry is an immutable line of the wallet ledger.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI (user_id-index): user_id
type LedgerEntry struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Type      LedgerEntryType `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Note      string          `json:"note"`
	RefID     string          `json:"ref_id"`
	CreatedAt time.Time       `json:"created_at"`
}
