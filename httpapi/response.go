package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/acksell/catalog"
	"github.com/acksell/catalog/logger"
	"github.com/go-playground/validator/v10"
)

// Response is the JSON envelope of every endpoint.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// headers are sent, an encoding failure cannot be reported
	_ = json.NewEncoder(w).Encode(v)
}

func writeBadRequest(w http.ResponseWriter, r *http.Request, code, message string) {
	writeJSON(w, http.StatusBadRequest, Response{Error: &ErrorResponse{
		Code:      code,
		Message:   message,
		RequestID: logger.CorrelationIDFromContext(r.Context()),
	}})
}

// writeError maps a catalog error to a status code. Unexpected errors are
// logged and hidden from the client.
func writeError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"
	message := "an internal error occurred"

	var hydration *catalog.HydrationError
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		status, code, message = http.StatusNotFound, "NOT_FOUND", "product not found"
	case errors.Is(err, catalog.ErrAlreadyExists):
		status, code, message = http.StatusConflict, "ALREADY_EXISTS", "product already exists"
	case errors.Is(err, catalog.ErrNoFilter):
		status, code, message = http.StatusBadRequest, "FILTER_REQUIRED", catalog.ErrNoFilter.Error()
	case errors.Is(err, catalog.ErrInvalidInput):
		status, code, message = http.StatusBadRequest, "INVALID_INPUT", err.Error()
	case errors.As(err, &hydration):
		status, code, message = http.StatusBadGateway, "STORE_UNAVAILABLE", "failed to read products from the store"
	}

	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context(), fallback).ErrorContext(r.Context(), "request failed",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path))
	}
	writeJSON(w, status, Response{Error: &ErrorResponse{
		Code:      code,
		Message:   message,
		RequestID: logger.CorrelationIDFromContext(r.Context()),
	}})
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeAndValidate reads a JSON body into dst and checks its validate tags.
func decodeAndValidate(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return validate.Struct(dst)
}

func writeValidationError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		writeBadRequest(w, r, "INVALID_INPUT", err.Error())
		return
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[jsonName(fe.Field())] = msgForTag(fe)
	}
	writeJSON(w, http.StatusBadRequest, Response{Error: &ErrorResponse{
		Code:      "VALIDATION_ERROR",
		Message:   "request validation failed",
		Fields:    fields,
		RequestID: logger.CorrelationIDFromContext(r.Context()),
	}})
}

func jsonName(field string) string {
	if field == "" {
		return field
	}
	if field == "SKU" {
		return "sku"
	}
	return strings.ToLower(field[:1]) + field[1:]
}

func msgForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "excludes":
		return fmt.Sprintf("must not contain %q", fe.Param())
	}
	return fmt.Sprintf("failed on '%s' validation", fe.Tag())
}
