package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/stake-dashboard/internal/types"
)

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error types.ServiceError `json:"error"`
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, statusCode int, code, message string, details map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error: types.ServiceError{
			Code:    code,
			Message: message,
			Details: details,
		},
	}

	json.NewEncoder(w).Encode(response)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// Common error codes
const (
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// respondServiceError maps a service-layer error to an HTTP response.
// Validation failures surface as 400, tracking state conflicts as 409, and
// upstream collaborator failures as 502 carrying a truncated body snippet.
func respondServiceError(w http.ResponseWriter, err error) {
	var serviceErr *types.ServiceError
	if errors.As(err, &serviceErr) {
		switch serviceErr.Code {
		case types.ErrMissingAddresses, types.ErrInvalidAddress, types.ErrInvalidSince:
			respondError(w, http.StatusBadRequest, serviceErr.Code, serviceErr.Message, serviceErr.Details)
		case types.ErrTrackingActive, types.ErrTrackingInactive:
			respondError(w, http.StatusConflict, serviceErr.Code, serviceErr.Message, serviceErr.Details)
		default:
			respondError(w, http.StatusInternalServerError, ErrCodeInternalError, "An internal error occurred", nil)
		}
		return
	}

	var upstreamErr *types.UpstreamError
	if errors.As(err, &upstreamErr) {
		details := map[string]interface{}{"endpoint": upstreamErr.Endpoint}
		if upstreamErr.Status != 0 {
			details["status"] = upstreamErr.Status
		}
		if upstreamErr.Snippet != "" {
			details["body"] = upstreamErr.Snippet
		}
		respondError(w, http.StatusBadGateway, types.ErrUpstream, "Upstream request failed", details)
		return
	}

	respondError(w, http.StatusInternalServerError, ErrCodeInternalError, "An internal error occurred", nil)
}
