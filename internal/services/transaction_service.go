package services

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/openledger/finance-api/internal/repository"
)

type TransactionService struct {
	db           *sql.DB
	accounts     *repository.AccountRepository
	transactions *repository.TransactionRepository
	validator    *ValidationHelper
}

func NewTransactionService(db *sql.DB) *TransactionService {
	return &TransactionService{
		db:           db,
		accounts:     repository.NewAccountRepository(db),
		transactions: repository.NewTransactionRepository(db),
		validator:    NewValidationHelper(),
	}
}

// ListTransactions returns all transactions ordered by date.
func (s *TransactionService) ListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := s.transactions.List(r.Context())
	if err != nil {
		log.Printf("[TRANSACTION] Failed to list transactions: %v", err)
		http.Error(w, "Failed to fetch transactions", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": transactions,
		"count":        len(transactions),
	})
}

// GetTransaction returns a single transaction or 404.
func (s *TransactionService) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "transactionID"))
	if err != nil {
		http.Error(w, "Transaction not found", http.StatusNotFound)
		return
	}

	tx, err := s.transactions.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "Transaction not found", http.StatusNotFound)
		} else {
			log.Printf("[TRANSACTION] Failed to fetch transaction %d: %v", id, err)
			http.Error(w, "Failed to fetch transaction", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, tx)
}

// CreateTransaction records a movement of value between two distinct
// accounts. Transactions are immutable once created.
func (s *TransactionService) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	form, err := decodeTransactionForm(w, r)
	if err != nil {
		SendValidationErrors(w, map[string]string{"request": "Invalid request body."})
		return
	}

	ok, errs := form.Validate(r.Context(), s.validator, s.accounts)
	if !ok {
		SendValidationErrors(w, errs)
		return
	}

	id, err := s.transactions.Create(
		r.Context(),
		form.ReferenceUUID().String(),
		form.ParsedDate(),
		form.Debit,
		form.Credit,
		form.ParsedAmount(),
		form.Summary,
		form.Description,
	)
	if err != nil {
		if errors.Is(err, repository.ErrConstraint) {
			if strings.Contains(err.Error(), "reference") {
				SendValidationErrors(w, map[string]string{"reference": "Transaction has already been recorded."})
			} else {
				SendValidationErrors(w, map[string]string{"transaction": "Transaction violates ledger constraints."})
			}
			return
		}
		log.Printf("[TRANSACTION] Failed to create transaction: %v", err)
		http.Error(w, "Failed to create transaction", http.StatusInternalServerError)
		return
	}

	log.Printf("[TRANSACTION] Created transaction %d (%s)", id, form.ReferenceUUID())
	writeJSON(w, http.StatusOK, map[string]any{
		"message":        "Successfully added Transaction",
		"transaction_id": id,
		"reference":      form.ReferenceUUID().String(),
	})
}
