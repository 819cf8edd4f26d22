package services

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/openledger/finance-api/internal/repository"
)

type AccountService struct {
	db           *sql.DB
	accounts     *repository.AccountRepository
	types        *repository.AccountTypeRepository
	transactions *repository.TransactionRepository
	validator    *ValidationHelper
}

func NewAccountService(db *sql.DB) *AccountService {
	return &AccountService{
		db:           db,
		accounts:     repository.NewAccountRepository(db),
		types:        repository.NewAccountTypeRepository(db),
		transactions: repository.NewTransactionRepository(db),
		validator:    NewValidationHelper(),
	}
}

// ListAccounts returns all accounts ordered by name.
func (s *AccountService) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.accounts.List(r.Context())
	if err != nil {
		log.Printf("[ACCOUNT] Failed to list accounts: %v", err)
		http.Error(w, "Failed to fetch accounts", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"accounts": accounts,
	})
}

// GetAccount returns a single account or 404.
func (s *AccountService) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "accountID"))
	if err != nil {
		http.Error(w, "Account not found", http.StatusNotFound)
		return
	}

	account, err := s.accounts.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "Account not found", http.StatusNotFound)
		} else {
			log.Printf("[ACCOUNT] Failed to fetch account %d: %v", id, err)
			http.Error(w, "Failed to fetch account", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, account)
}

// CreateAccount validates the payload, resolves the account type name and
// inserts the account.
func (s *AccountService) CreateAccount(w http.ResponseWriter, r *http.Request) {
	form, err := decodeAccountForm(w, r)
	if err != nil {
		SendValidationErrors(w, map[string]string{"request": "Invalid request body."})
		return
	}

	ok, errs := form.Validate(r.Context(), s.validator, s.types)
	if !ok {
		SendValidationErrors(w, errs)
		return
	}

	id, err := s.accounts.Create(r.Context(), form.Name, form.AccountTypeID(), form.Description)
	if err != nil {
		if errors.Is(err, repository.ErrConstraint) {
			SendValidationErrors(w, map[string]string{"name": "Account name already exists."})
			return
		}
		log.Printf("[ACCOUNT] Failed to create account: %v", err)
		http.Error(w, "Failed to create account", http.StatusInternalServerError)
		return
	}

	log.Printf("[ACCOUNT] Created account %d (%s)", id, form.Name)
	writeJSON(w, http.StatusOK, map[string]any{
		"message":    "Successfully added Account",
		"account_id": id,
	})
}

// UpdateAccount overwrites name, account type and description of an
// existing account.
func (s *AccountService) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "accountID"))
	if err != nil {
		http.Error(w, "Account not found", http.StatusNotFound)
		return
	}

	if _, err := s.accounts.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "Account not found", http.StatusNotFound)
		} else {
			log.Printf("[ACCOUNT] Failed to fetch account %d: %v", id, err)
			http.Error(w, "Failed to fetch account", http.StatusInternalServerError)
		}
		return
	}

	form, err := decodeAccountForm(w, r)
	if err != nil {
		SendValidationErrors(w, map[string]string{"request": "Invalid request body."})
		return
	}

	ok, errs := form.Validate(r.Context(), s.validator, s.types)
	if !ok {
		SendValidationErrors(w, errs)
		return
	}

	if err := s.accounts.Update(r.Context(), id, form.Name, form.AccountTypeID(), form.Description); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			http.Error(w, "Account not found", http.StatusNotFound)
		case errors.Is(err, repository.ErrConstraint):
			SendValidationErrors(w, map[string]string{"name": "Account name already exists."})
		default:
			log.Printf("[ACCOUNT] Failed to update account %d: %v", id, err)
			http.Error(w, "Failed to update account", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Successfully updated Account",
	})
}

// DeleteAccount removes an account. Accounts still referenced by
// transactions are rejected.
func (s *AccountService) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "accountID"))
	if err != nil {
		http.Error(w, "Account not found", http.StatusNotFound)
		return
	}

	if err := s.accounts.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			http.Error(w, "Account not found", http.StatusNotFound)
		case errors.Is(err, repository.ErrConstraint):
			SendValidationErrors(w, map[string]string{"account": "Account has transactions and cannot be deleted."})
		default:
			log.Printf("[ACCOUNT] Failed to delete account %d: %v", id, err)
			http.Error(w, "Failed to delete account", http.StatusInternalServerError)
		}
		return
	}

	log.Printf("[ACCOUNT] Deleted account %d", id)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Successfully deleted Account",
	})
}

// ListAccountTransactions returns every transaction touching the account,
// debit or credit side, ordered by date.
func (s *AccountService) ListAccountTransactions(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "accountID"))
	if err != nil {
		http.Error(w, "Account not found", http.StatusNotFound)
		return
	}

	exists, err := s.accounts.Exists(r.Context(), id)
	if err != nil {
		log.Printf("[ACCOUNT] Failed to check account %d: %v", id, err)
		http.Error(w, "Failed to fetch transactions", http.StatusInternalServerError)
		return
	}
	if !exists {
		http.Error(w, "Account not found", http.StatusNotFound)
		return
	}

	transactions, err := s.transactions.ListForAccount(r.Context(), id)
	if err != nil {
		log.Printf("[ACCOUNT] Failed to list transactions for account %d: %v", id, err)
		http.Error(w, "Failed to fetch transactions", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": transactions,
		"count":        len(transactions),
	})
}
