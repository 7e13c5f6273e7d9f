package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"agentbuilder/internal/domain"
)

// Envelope codes returned to API clients.
const (
	CodeNotFound        = "NOT_FOUND"
	CodeValidation      = "VALIDATION_ERROR"
	CodeConflict        = "CONFLICT"
	CodeUpstreamService = "UPSTREAM_SERVICE_ERROR"
	CodeInternal        = "INTERNAL_ERROR"
)

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error errorDetail `json:"error"`
}

// StatusFor maps a domain error to its HTTP status and envelope code.
func StatusFor(err error) (int, string) {
	code, _ := domain.CodeFrom(err)
	switch code {
	case domain.CodeNotFound:
		return http.StatusNotFound, CodeNotFound
	case domain.CodeInvalidArgument:
		return http.StatusUnprocessableEntity, CodeValidation
	case domain.CodeAlreadyExists:
		return http.StatusConflict, CodeConflict
	case domain.CodeUpstream:
		return http.StatusBadGateway, CodeUpstreamService
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, code := StatusFor(err)
	message := "Internal server error"
	if status != http.StatusInternalServerError {
		message = errorMessage(err)
	}
	writeJSON(w, status, errorEnvelope{Error: errorDetail{Code: code, Message: message}})
}

func errorMessage(err error) string {
	var domainErr *domain.Error
	if errors.As(err, &domainErr) && domainErr.Message != "" {
		return domainErr.Message
	}
	return err.Error()
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
