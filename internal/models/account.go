package models

import (
	"time"
)

// AccountType is a category label ("Expense", "Asset") grouping accounts.
type AccountType struct {
	AccountTypeID int    `json:"account_type_id" db:"account_type_id"`
	Name          string `json:"name" db:"name"`
}

// Account represents a ledger account
type Account struct {
	AccountID     int       `json:"account_id" db:"account_id"`
	Name          string    `json:"name" db:"name"`
	AccountTypeID int       `json:"-" db:"account_type_id"`
	AccountType   string    `json:"account_type" db:"account_type"` // resolved type name
	Description   string    `json:"description" db:"description"`
	CreatedAt     time.Time `json:"-" db:"created_at"`
	UpdatedAt     time.Time `json:"-" db:"updated_at"`
}
