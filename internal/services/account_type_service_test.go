package services

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccountTypeTestServer(t *testing.T) (http.Handler, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	service := NewAccountTypeService(db)
	r := chi.NewRouter()
	r.Route("/account_types", func(r chi.Router) {
		r.Get("/", service.ListAccountTypes)
		r.Post("/", service.CreateAccountType)
		r.Get("/{accountTypeID}", service.GetAccountType)
		r.Delete("/{accountTypeID}", service.DeleteAccountType)
	})
	return r, mock
}

func TestAccountTypeService_CreateAccountType(t *testing.T) {
	t.Run("creates", func(t *testing.T) {
		handler, mock := newAccountTypeTestServer(t)

		mock.ExpectQuery("INSERT INTO account_types").
			WithArgs("Expense").
			WillReturnRows(sqlmock.NewRows([]string{"account_type_id"}).AddRow(1))

		w := postJSON(t, handler, "/account_types/", map[string]string{"name": "Expense"})

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "Successfully added Account Type", body["message"])
		assert.Equal(t, float64(1), body["account_type_id"])
	})

	t.Run("name longer than 20 characters is rejected", func(t *testing.T) {
		handler, _ := newAccountTypeTestServer(t)

		w := postJSON(t, handler, "/account_types/", map[string]string{
			"name": "An account type name far too long",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		errs := decodeBody(t, w)["errors"].(map[string]any)
		assert.Contains(t, errs, "name")
	})

	t.Run("duplicate name", func(t *testing.T) {
		handler, mock := newAccountTypeTestServer(t)

		mock.ExpectQuery("INSERT INTO account_types").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "account_types_name_key"})

		w := postJSON(t, handler, "/account_types/", map[string]string{"name": "Expense"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		errs := decodeBody(t, w)["errors"].(map[string]any)
		assert.Contains(t, errs, "name")
	})
}

func TestAccountTypeService_ListAccountTypes(t *testing.T) {
	handler, mock := newAccountTypeTestServer(t)

	mock.ExpectQuery("ORDER BY name").
		WillReturnRows(sqlmock.NewRows([]string{"account_type_id", "name"}).
			AddRow(2, "Asset").
			AddRow(1, "Expense"))

	req := httptest.NewRequest("GET", "/account_types/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	types := decodeBody(t, w)["account_types"].([]any)
	require.Len(t, types, 2)
	assert.Equal(t, "Asset", types[0].(map[string]any)["name"])
}

func TestAccountTypeService_DeleteAccountType(t *testing.T) {
	t.Run("referenced type is rejected", func(t *testing.T) {
		handler, mock := newAccountTypeTestServer(t)

		mock.ExpectExec("DELETE FROM account_types").
			WithArgs(1).
			WillReturnError(&pq.Error{Code: "23503", Constraint: "accounts_account_type_id_fkey"})

		req := httptest.NewRequest("DELETE", "/account_types/1", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		errs := decodeBody(t, w)["errors"].(map[string]any)
		assert.Contains(t, errs, "account_type")
	})

	t.Run("missing id yields 404", func(t *testing.T) {
		handler, mock := newAccountTypeTestServer(t)

		mock.ExpectExec("DELETE FROM account_types").
			WithArgs(99).
			WillReturnResult(sqlmock.NewResult(0, 0))

		req := httptest.NewRequest("DELETE", "/account_types/99", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
