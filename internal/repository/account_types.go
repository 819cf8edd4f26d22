package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/openledger/finance-api/internal/models"
)

type AccountTypeRepository struct {
	db *sql.DB
}

func NewAccountTypeRepository(db *sql.DB) *AccountTypeRepository {
	return &AccountTypeRepository{db: db}
}

func (r *AccountTypeRepository) Create(ctx context.Context, name string) (int, error) {
	var id int
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO account_types (name)
		VALUES ($1)
		RETURNING account_type_id`,
		name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create account type: %w", constraintError(err))
	}
	return id, nil
}

func (r *AccountTypeRepository) GetByID(ctx context.Context, id int) (*models.AccountType, error) {
	var at models.AccountType
	err := r.db.QueryRowContext(ctx, `
		SELECT account_type_id, name
		FROM account_types
		WHERE account_type_id = $1`,
		id).Scan(&at.AccountTypeID, &at.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account type %d: %w", id, err)
	}
	return &at, nil
}

// GetByName resolves an account type by its exact, case-sensitive name.
func (r *AccountTypeRepository) GetByName(ctx context.Context, name string) (*models.AccountType, error) {
	var at models.AccountType
	err := r.db.QueryRowContext(ctx, `
		SELECT account_type_id, name
		FROM account_types
		WHERE name = $1`,
		name).Scan(&at.AccountTypeID, &at.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account type %q: %w", name, err)
	}
	return &at, nil
}

func (r *AccountTypeRepository) List(ctx context.Context) ([]models.AccountType, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT account_type_id, name
		FROM account_types
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list account types: %w", err)
	}
	defer rows.Close()

	types := []models.AccountType{}
	for rows.Next() {
		var at models.AccountType
		if err := rows.Scan(&at.AccountTypeID, &at.Name); err != nil {
			return nil, fmt.Errorf("scan account type: %w", err)
		}
		types = append(types, at)
	}
	return types, rows.Err()
}

// Delete removes an account type. Types still referenced by accounts are
// rejected with ErrConstraint by the foreign key.
func (r *AccountTypeRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM account_types
		WHERE account_type_id = $1`,
		id)
	if err != nil {
		return fmt.Errorf("delete account type %d: %w", id, constraintError(err))
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
