package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/openledger/finance-api/internal/models"
)

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, name string, accountTypeID int, description string) (int, error) {
	var id int
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO accounts (name, account_type_id, description)
		VALUES ($1, $2, $3)
		RETURNING account_id`,
		name, accountTypeID, description).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create account: %w", constraintError(err))
	}
	return id, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id int) (*models.Account, error) {
	var a models.Account
	err := r.db.QueryRowContext(ctx, `
		SELECT a.account_id, a.name, a.account_type_id, t.name, a.description
		FROM accounts a
		JOIN account_types t ON t.account_type_id = a.account_type_id
		WHERE a.account_id = $1`,
		id).Scan(&a.AccountID, &a.Name, &a.AccountTypeID, &a.AccountType, &a.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account %d: %w", id, err)
	}
	return &a, nil
}

// List returns all accounts ordered by name, each carrying its resolved
// account type name.
func (r *AccountRepository) List(ctx context.Context) ([]models.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT a.account_id, a.name, a.account_type_id, t.name, a.description
		FROM accounts a
		JOIN account_types t ON t.account_type_id = a.account_type_id
		ORDER BY a.name`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.AccountID, &a.Name, &a.AccountTypeID, &a.AccountType, &a.Description); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// Update overwrites name, account type and description in one statement.
func (r *AccountRepository) Update(ctx context.Context, id int, name string, accountTypeID int, description string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET name = $1, account_type_id = $2, description = $3, updated_at = NOW()
		WHERE account_id = $4`,
		name, accountTypeID, description, id)
	if err != nil {
		return fmt.Errorf("update account %d: %w", id, constraintError(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an account. Accounts referenced by transactions are
// rejected with ErrConstraint by the foreign keys on transactions.
func (r *AccountRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM accounts
		WHERE account_id = $1`,
		id)
	if err != nil {
		return fmt.Errorf("delete account %d: %w", id, constraintError(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AccountRepository) Exists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM accounts WHERE account_id = $1)`,
		id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("account exists %d: %w", id, err)
	}
	return exists, nil
}
