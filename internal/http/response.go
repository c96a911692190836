package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"simahasiswa-backend-go/internal/services"
	"simahasiswa-backend-go/internal/validate"
)

type ErrorResponse struct {
	Message string `json:"message"`
}

type FieldErrorResponse struct {
	Message string          `json:"message"`
	Errors  validate.Errors `json:"errors"`
}

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Message: message})
}

func WriteFieldErrors(w http.ResponseWriter, errs validate.Errors) {
	WriteJSON(w, http.StatusBadRequest, FieldErrorResponse{Message: "Validation failed", Errors: errs})
}

// WriteServiceError renders a ServiceError with its own status; any other
// error becomes a plain 500.
func WriteServiceError(w http.ResponseWriter, err error) {
	var serr services.ServiceError
	if errors.As(err, &serr) {
		WriteError(w, serr.Status, serr.Message)
		return
	}
	WriteError(w, http.StatusInternalServerError, "Internal server error")
}
