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

type AccountTypeService struct {
	types     *repository.AccountTypeRepository
	validator *ValidationHelper
}

func NewAccountTypeService(db *sql.DB) *AccountTypeService {
	return &AccountTypeService{
		types:     repository.NewAccountTypeRepository(db),
		validator: NewValidationHelper(),
	}
}

// ListAccountTypes returns all account types ordered by name.
func (s *AccountTypeService) ListAccountTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.types.List(r.Context())
	if err != nil {
		log.Printf("[ACCOUNT_TYPE] Failed to list account types: %v", err)
		http.Error(w, "Failed to fetch account types", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"account_types": types,
	})
}

// GetAccountType returns a single account type or 404.
func (s *AccountTypeService) GetAccountType(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "accountTypeID"))
	if err != nil {
		http.Error(w, "Account type not found", http.StatusNotFound)
		return
	}

	at, err := s.types.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "Account type not found", http.StatusNotFound)
		} else {
			log.Printf("[ACCOUNT_TYPE] Failed to fetch account type %d: %v", id, err)
			http.Error(w, "Failed to fetch account type", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, at)
}

// CreateAccountType adds a new category label for accounts.
func (s *AccountTypeService) CreateAccountType(w http.ResponseWriter, r *http.Request) {
	form, err := decodeAccountTypeForm(w, r)
	if err != nil {
		SendValidationErrors(w, map[string]string{"request": "Invalid request body."})
		return
	}

	ok, errs := form.Validate(s.validator)
	if !ok {
		SendValidationErrors(w, errs)
		return
	}

	id, err := s.types.Create(r.Context(), form.Name)
	if err != nil {
		if errors.Is(err, repository.ErrConstraint) {
			SendValidationErrors(w, map[string]string{"name": "Account type name already exists."})
			return
		}
		log.Printf("[ACCOUNT_TYPE] Failed to create account type: %v", err)
		http.Error(w, "Failed to create account type", http.StatusInternalServerError)
		return
	}

	log.Printf("[ACCOUNT_TYPE] Created account type %d (%s)", id, form.Name)
	writeJSON(w, http.StatusOK, map[string]any{
		"message":         "Successfully added Account Type",
		"account_type_id": id,
	})
}

// DeleteAccountType removes an unreferenced account type.
func (s *AccountTypeService) DeleteAccountType(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "accountTypeID"))
	if err != nil {
		http.Error(w, "Account type not found", http.StatusNotFound)
		return
	}

	if err := s.types.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			http.Error(w, "Account type not found", http.StatusNotFound)
		case errors.Is(err, repository.ErrConstraint):
			SendValidationErrors(w, map[string]string{"account_type": "Account type is referenced by accounts and cannot be deleted."})
		default:
			log.Printf("[ACCOUNT_TYPE] Failed to delete account type %d: %v", id, err)
			http.Error(w, "Failed to delete account type", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Successfully deleted Account Type",
	})
}
