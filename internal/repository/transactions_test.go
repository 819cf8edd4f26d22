package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var transactionRowColumns = []string{
	"transaction_id", "reference", "date", "amount", "summary", "description",
	"debit_id", "debit_name", "debit_type", "debit_description",
	"credit_id", "credit_name", "credit_type", "credit_description",
}

func TestTransactionRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewTransactionRepository(db)
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("returns new id", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO transactions").
			WithArgs("3f1d1de1-57a8-4b2f-9f30-1c2f8b6a9a01", date, 1, 2, "10.00", "Stationery", "").
			WillReturnRows(sqlmock.NewRows([]string{"transaction_id"}).AddRow(3))

		id, err := repo.Create(context.Background(),
			"3f1d1de1-57a8-4b2f-9f30-1c2f8b6a9a01", date, 1, 2,
			decimal.RequireFromString("10"), "Stationery", "")
		assert.NoError(t, err)
		assert.Equal(t, 3, id)
	})

	t.Run("same debit and credit account maps to ErrConstraint", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO transactions").
			WillReturnError(&pq.Error{Code: "23514", Constraint: "transactions_check"})

		_, err := repo.Create(context.Background(),
			"3f1d1de1-57a8-4b2f-9f30-1c2f8b6a9a02", date, 1, 1,
			decimal.RequireFromString("10"), "Stationery", "")
		assert.ErrorIs(t, err, ErrConstraint)
	})

	t.Run("duplicate reference maps to ErrConstraint", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO transactions").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "transactions_reference_key"})

		_, err := repo.Create(context.Background(),
			"3f1d1de1-57a8-4b2f-9f30-1c2f8b6a9a01", date, 1, 2,
			decimal.RequireFromString("10"), "Stationery", "")
		assert.ErrorIs(t, err, ErrConstraint)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewTransactionRepository(db)
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("found with both account sides", func(t *testing.T) {
		mock.ExpectQuery("WHERE t.transaction_id = \\$1").
			WithArgs(3).
			WillReturnRows(sqlmock.NewRows(transactionRowColumns).
				AddRow(3, "3f1d1de1-57a8-4b2f-9f30-1c2f8b6a9a01", date, "10.00", "Stationery", "",
					1, "Checking", "Asset", "",
					2, "Supplies", "Expense", "Getting things done"))

		tx, err := repo.GetByID(context.Background(), 3)
		require.NoError(t, err)
		assert.Equal(t, 3, tx.TransactionID)
		assert.True(t, tx.Amount.Equal(decimal.RequireFromString("10.00")))
		assert.Equal(t, "Checking", tx.Debit.Name)
		assert.Equal(t, "Supplies", tx.Credit.Name)
		assert.Equal(t, 1, tx.AccountDebitID)
		assert.Equal(t, 2, tx.AccountCreditID)
	})

	t.Run("missing id yields ErrNotFound", func(t *testing.T) {
		mock.ExpectQuery("WHERE t.transaction_id = \\$1").
			WithArgs(999).
			WillReturnRows(sqlmock.NewRows(transactionRowColumns))

		_, err := repo.GetByID(context.Background(), 999)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_ListForAccount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewTransactionRepository(db)

	t.Run("unions debit and credit sides date-ordered", func(t *testing.T) {
		early := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
		late := time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery("t.account_debit_id = \\$1 OR t.account_credit_id = \\$1").
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows(transactionRowColumns).
				AddRow(4, "3f1d1de1-57a8-4b2f-9f30-1c2f8b6a9a04", early, "25.50", "Rent", "",
					1, "Checking", "Asset", "",
					3, "Rent", "Expense", "").
				AddRow(5, "3f1d1de1-57a8-4b2f-9f30-1c2f8b6a9a05", late, "10.00", "Refund", "",
					2, "Supplies", "Expense", "",
					1, "Checking", "Asset", ""))

		transactions, err := repo.ListForAccount(context.Background(), 1)
		require.NoError(t, err)
		require.Len(t, transactions, 2)
		assert.Equal(t, 1, transactions[0].AccountDebitID)
		assert.Equal(t, 1, transactions[1].AccountCreditID)
		assert.True(t, transactions[0].Date.Before(transactions[1].Date))
	})

	t.Run("account without transactions returns empty slice", func(t *testing.T) {
		mock.ExpectQuery("t.account_debit_id = \\$1 OR t.account_credit_id = \\$1").
			WithArgs(9).
			WillReturnRows(sqlmock.NewRows(transactionRowColumns))

		transactions, err := repo.ListForAccount(context.Background(), 9)
		require.NoError(t, err)
		assert.Empty(t, transactions)
		assert.NotNil(t, transactions)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
