package http

import (
	"encoding/json"
	"net/http"

	"fdms-kiosk-backend/internal/logger"
)

// The kiosk UI already speaks the FDMS envelope dialect, so this API answers
// in the same shape: {isSuccess, content} on success, {hasError, message} on
// failure.

type successEnvelope struct {
	IsSuccess bool `json:"isSuccess"`
	Content   any  `json:"content"`
}

type errorEnvelope struct {
	HasError bool   `json:"hasError"`
	Message  string `json:"message"`
}

func writeContent(w http.ResponseWriter, status int, content any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(successEnvelope{IsSuccess: true, Content: content}); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(errorEnvelope{HasError: true, Message: message}); err != nil {
		logger.Error("Failed to encode error response", "error", err)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request body")
		return false
	}
	return true
}
