package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAccountRepository(db)

	t.Run("returns new id", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO accounts").
			WithArgs("Supplies", 1, "Getting things done").
			WillReturnRows(sqlmock.NewRows([]string{"account_id"}).AddRow(7))

		id, err := repo.Create(context.Background(), "Supplies", 1, "Getting things done")
		assert.NoError(t, err)
		assert.Equal(t, 7, id)
	})

	t.Run("duplicate name maps to ErrConstraint", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO accounts").
			WithArgs("Supplies", 1, "").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "accounts_name_key"})

		_, err := repo.Create(context.Background(), "Supplies", 1, "")
		assert.ErrorIs(t, err, ErrConstraint)
	})

	t.Run("unknown account type maps to ErrConstraint", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO accounts").
			WithArgs("Supplies", 99, "").
			WillReturnError(&pq.Error{Code: "23503", Constraint: "accounts_account_type_id_fkey"})

		_, err := repo.Create(context.Background(), "Supplies", 99, "")
		assert.ErrorIs(t, err, ErrConstraint)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAccountRepository(db)

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("WHERE a.account_id = \\$1").
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows([]string{"account_id", "name", "account_type_id", "name", "description"}).
				AddRow(7, "Supplies", 1, "Expense", "Getting things done"))

		account, err := repo.GetByID(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, 7, account.AccountID)
		assert.Equal(t, "Supplies", account.Name)
		assert.Equal(t, "Expense", account.AccountType)
		assert.Equal(t, "Getting things done", account.Description)
	})

	t.Run("missing id yields ErrNotFound", func(t *testing.T) {
		mock.ExpectQuery("WHERE a.account_id = \\$1").
			WithArgs(999).
			WillReturnRows(sqlmock.NewRows([]string{"account_id", "name", "account_type_id", "name", "description"}))

		_, err := repo.GetByID(context.Background(), 999)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAccountRepository(db)

	mock.ExpectQuery("ORDER BY a.name").
		WillReturnRows(sqlmock.NewRows([]string{"account_id", "name", "account_type_id", "name", "description"}).
			AddRow(2, "Rent", 1, "Expense", "").
			AddRow(1, "Supplies", 1, "Expense", "Getting things done"))

	accounts, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "Rent", accounts[0].Name)
	assert.Equal(t, "Supplies", accounts[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAccountRepository(db)

	t.Run("updates all three fields", func(t *testing.T) {
		mock.ExpectExec("UPDATE accounts").
			WithArgs("Office Supplies", 2, "Restocked", 7).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Update(context.Background(), 7, "Office Supplies", 2, "Restocked")
		assert.NoError(t, err)
	})

	t.Run("missing id yields ErrNotFound", func(t *testing.T) {
		mock.ExpectExec("UPDATE accounts").
			WithArgs("Office Supplies", 2, "", 999).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(context.Background(), 999, "Office Supplies", 2, "")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAccountRepository(db)

	t.Run("deletes", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM accounts").
			WithArgs(7).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(context.Background(), 7))
	})

	t.Run("missing id yields ErrNotFound", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM accounts").
			WithArgs(999).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(context.Background(), 999), ErrNotFound)
	})

	t.Run("referenced account maps to ErrConstraint", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM accounts").
			WithArgs(7).
			WillReturnError(&pq.Error{Code: "23503", Constraint: "transactions_account_debit_id_fkey"})

		assert.ErrorIs(t, repo.Delete(context.Background(), 7), ErrConstraint)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_Exists(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAccountRepository(db)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.Exists(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
