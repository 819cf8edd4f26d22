package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction moves value between two distinct accounts. Immutable once
// recorded; amounts are fixed-point decimals stored as NUMERIC(20,2).
type Transaction struct {
	TransactionID   int             `json:"transaction_id" db:"transaction_id"`
	Reference       string          `json:"reference" db:"reference"`
	Date            time.Time       `json:"date" db:"date"`
	AccountDebitID  int             `json:"-" db:"account_debit_id"`
	AccountCreditID int             `json:"-" db:"account_credit_id"`
	Debit           Account         `json:"debit"`
	Credit          Account         `json:"credit"`
	Amount          decimal.Decimal `json:"amount" db:"amount"`
	Summary         string          `json:"summary" db:"summary"`
	Description     string          `json:"description" db:"description"`
	CreatedAt       time.Time       `json:"-" db:"created_at"`
}
