package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse is the body of every 400 response: one message per field.
type ErrorResponse struct {
	Errors map[string]string `json:"errors"`
}

// ValidationHelper provides shared validation functionality
type ValidationHelper struct {
	validator *validator.Validate
}

// NewValidationHelper creates a new validation helper. Field names in
// validation errors follow the json tags so they match the wire format.
func NewValidationHelper() *ValidationHelper {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &ValidationHelper{validator: v}
}

// ValidateStruct validates a struct and returns validation errors
func (vh *ValidationHelper) ValidateStruct(s any) error {
	return vh.validator.Struct(s)
}

// fieldErrors flattens validator errors into the field->message map used in
// 400 responses.
func fieldErrors(err error) map[string]string {
	errs := make(map[string]string)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errs
	}
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			errs[fe.Field()] = "This field is required."
		case "max":
			errs[fe.Field()] = fmt.Sprintf("Field cannot be longer than %s characters.", fe.Param())
		case "min":
			errs[fe.Field()] = fmt.Sprintf("Field must be at least %s characters long.", fe.Param())
		case "gt":
			errs[fe.Field()] = fmt.Sprintf("Value must be greater than %s.", fe.Param())
		case "uuid":
			errs[fe.Field()] = "Value must be a valid UUID."
		default:
			errs[fe.Field()] = fmt.Sprintf("Field validation failed on '%s'.", fe.Tag())
		}
	}
	return errs
}

// SendValidationErrors sends the per-field error map with a 400 status.
func SendValidationErrors(w http.ResponseWriter, errs map[string]string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Errors: errs})
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}
