package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openledger/finance-api/internal/models"
)

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `
	t.transaction_id, t.reference, t.date, t.amount, t.summary, t.description,
	d.account_id, d.name, dt.name, d.description,
	c.account_id, c.name, ct.name, c.description`

const transactionJoins = `
	FROM transactions t
	JOIN accounts d ON d.account_id = t.account_debit_id
	JOIN accounts c ON c.account_id = t.account_credit_id
	JOIN account_types dt ON dt.account_type_id = d.account_type_id
	JOIN account_types ct ON ct.account_type_id = c.account_type_id`

func scanTransaction(row interface {
	Scan(dest ...any) error
}) (*models.Transaction, error) {
	var tx models.Transaction
	var amount string
	err := row.Scan(
		&tx.TransactionID, &tx.Reference, &tx.Date, &amount, &tx.Summary, &tx.Description,
		&tx.Debit.AccountID, &tx.Debit.Name, &tx.Debit.AccountType, &tx.Debit.Description,
		&tx.Credit.AccountID, &tx.Credit.Name, &tx.Credit.AccountType, &tx.Credit.Description,
	)
	if err != nil {
		return nil, err
	}
	tx.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	tx.AccountDebitID = tx.Debit.AccountID
	tx.AccountCreditID = tx.Credit.AccountID
	return &tx, nil
}

// Create records a new transaction. The amount check, distinct-account check
// and reference uniqueness are enforced by the schema and surface as
// ErrConstraint.
func (r *TransactionRepository) Create(ctx context.Context, reference string, date time.Time, debitID, creditID int, amount decimal.Decimal, summary, description string) (int, error) {
	var id int
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO transactions (reference, date, account_debit_id, account_credit_id, amount, summary, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING transaction_id`,
		reference, date, debitID, creditID, amount.StringFixed(2), summary, description).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create transaction: %w", constraintError(err))
	}
	return id, nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id int) (*models.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT`+transactionColumns+transactionJoins+`
		WHERE t.transaction_id = $1`, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return tx, nil
}

func (r *TransactionRepository) List(ctx context.Context) ([]models.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT`+transactionColumns+transactionJoins+`
		ORDER BY t.date, t.transaction_id`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// ListForAccount returns every transaction where the account is either the
// debit or the credit side, as one date-ordered sequence.
func (r *TransactionRepository) ListForAccount(ctx context.Context, accountID int) ([]models.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT`+transactionColumns+transactionJoins+`
		WHERE t.account_debit_id = $1 OR t.account_credit_id = $1
		ORDER BY t.date, t.transaction_id`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list transactions for account %d: %w", accountID, err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func collectTransactions(rows *sql.Rows) ([]models.Transaction, error) {
	transactions := []models.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, *tx)
	}
	return transactions, rows.Err()
}
