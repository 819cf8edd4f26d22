package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openledger/finance-api/internal/models"
	"github.com/openledger/finance-api/internal/repository"
)

const maxRequestBytes = 1_048_576 // 1 MB

// accountTypeResolver resolves an account type by exact name.
type accountTypeResolver interface {
	GetByName(ctx context.Context, name string) (*models.AccountType, error)
}

// accountChecker reports whether an account id exists.
type accountChecker interface {
	Exists(ctx context.Context, id int) (bool, error)
}

// AccountForm is the write payload for accounts, accepted as JSON or as
// form-encoded key/value pairs.
type AccountForm struct {
	Name        string `json:"name" validate:"required,max=100"`
	AccountType string `json:"account_type" validate:"required,max=20"`
	Description string `json:"description" validate:"max=500"`

	accountTypeID int
}

// AccountTypeID returns the id resolved during Validate.
func (f *AccountForm) AccountTypeID() int {
	return f.accountTypeID
}

// Validate applies field rules and resolves the account type name. It
// returns a validity flag and the per-field error map.
func (f *AccountForm) Validate(ctx context.Context, vh *ValidationHelper, types accountTypeResolver) (bool, map[string]string) {
	errs := map[string]string{}
	if err := vh.ValidateStruct(f); err != nil {
		errs = fieldErrors(err)
	}

	if _, seen := errs["account_type"]; !seen {
		at, err := types.GetByName(ctx, f.AccountType)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			errs["account_type"] = fmt.Sprintf("Account type %q does not exist.", f.AccountType)
		case err != nil:
			errs["account_type"] = "Unable to verify account type."
		default:
			f.accountTypeID = at.AccountTypeID
		}
	}
	return len(errs) == 0, errs
}

// AccountTypeForm is the write payload for account types.
type AccountTypeForm struct {
	Name string `json:"name" validate:"required,max=20"`
}

func (f *AccountTypeForm) Validate(vh *ValidationHelper) (bool, map[string]string) {
	if err := vh.ValidateStruct(f); err != nil {
		errs := fieldErrors(err)
		return len(errs) == 0, errs
	}
	return true, map[string]string{}
}

// TransactionForm is the write payload for transactions. Reference is an
// optional client-supplied idempotency key.
type TransactionForm struct {
	Reference   string `json:"reference" validate:"omitempty,uuid"`
	Date        string `json:"date" validate:"required"`
	Debit       int    `json:"debit" validate:"required,gt=0"`
	Credit      int    `json:"credit" validate:"required,gt=0"`
	Amount      string `json:"amount" validate:"required"`
	Summary     string `json:"summary" validate:"required,max=50"`
	Description string `json:"description" validate:"max=500"`

	reference uuid.UUID
	date      time.Time
	amount    decimal.Decimal
}

func (f *TransactionForm) ReferenceUUID() uuid.UUID { return f.reference }

func (f *TransactionForm) ParsedDate() time.Time { return f.date }

func (f *TransactionForm) ParsedAmount() decimal.Decimal { return f.amount }

// Validate applies field rules, parses date/amount/reference and checks that
// both accounts exist and differ.
func (f *TransactionForm) Validate(ctx context.Context, vh *ValidationHelper, accounts accountChecker) (bool, map[string]string) {
	errs := map[string]string{}
	if err := vh.ValidateStruct(f); err != nil {
		errs = fieldErrors(err)
	}

	if _, seen := errs["date"]; !seen {
		parsed, err := parseDate(f.Date)
		if err != nil {
			errs["date"] = "Date must be RFC 3339 or YYYY-MM-DD."
		} else {
			f.date = parsed
		}
	}

	if _, seen := errs["amount"]; !seen {
		amount, err := decimal.NewFromString(f.Amount)
		switch {
		case err != nil:
			errs["amount"] = "Amount must be a decimal number."
		case !amount.IsPositive():
			errs["amount"] = "Amount must be greater than zero."
		default:
			f.amount = amount
		}
	}

	if f.Debit > 0 && f.Debit == f.Credit {
		errs["credit"] = "Debit and credit accounts must differ."
	}

	for field, id := range map[string]int{"debit": f.Debit, "credit": f.Credit} {
		if _, seen := errs[field]; seen || id <= 0 {
			continue
		}
		exists, err := accounts.Exists(ctx, id)
		switch {
		case err != nil:
			errs[field] = "Unable to verify account."
		case !exists:
			errs[field] = fmt.Sprintf("Account %d does not exist.", id)
		}
	}

	if f.Reference == "" {
		f.reference = uuid.New()
	} else if _, seen := errs["reference"]; !seen {
		f.reference, _ = uuid.Parse(f.Reference)
	}

	return len(errs) == 0, errs
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// decodeJSON reads a single JSON object into dst, in the strict style used
// across the handlers.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxRequestBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("request body must only contain a single JSON object")
	}
	return nil
}

func isFormEncoded(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(ct, "multipart/form-data")
}

func decodeAccountForm(w http.ResponseWriter, r *http.Request) (*AccountForm, error) {
	if isFormEncoded(r) {
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		return &AccountForm{
			Name:        r.PostFormValue("name"),
			AccountType: r.PostFormValue("account_type"),
			Description: r.PostFormValue("description"),
		}, nil
	}
	var form AccountForm
	if err := decodeJSON(w, r, &form); err != nil {
		return nil, err
	}
	return &form, nil
}

func decodeAccountTypeForm(w http.ResponseWriter, r *http.Request) (*AccountTypeForm, error) {
	if isFormEncoded(r) {
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		return &AccountTypeForm{Name: r.PostFormValue("name")}, nil
	}
	var form AccountTypeForm
	if err := decodeJSON(w, r, &form); err != nil {
		return nil, err
	}
	return &form, nil
}

func decodeTransactionForm(w http.ResponseWriter, r *http.Request) (*TransactionForm, error) {
	if isFormEncoded(r) {
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		debit, _ := strconv.Atoi(r.PostFormValue("debit"))
		credit, _ := strconv.Atoi(r.PostFormValue("credit"))
		return &TransactionForm{
			Reference:   r.PostFormValue("reference"),
			Date:        r.PostFormValue("date"),
			Debit:       debit,
			Credit:      credit,
			Amount:      r.PostFormValue("amount"),
			Summary:     r.PostFormValue("summary"),
			Description: r.PostFormValue("description"),
		}, nil
	}
	var form TransactionForm
	if err := decodeJSON(w, r, &form); err != nil {
		return nil, err
	}
	return &form, nil
}
