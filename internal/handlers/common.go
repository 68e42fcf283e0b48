package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jsonblog/backend/internal/models"
)

const storeTimeout = 10 * time.Second

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func sendSuccess(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, models.NewSuccessEnvelope(data))
}

func sendWarning(w http.ResponseWriter, message string, code int) {
	writeJSON(w, http.StatusOK, models.NewWarningEnvelope(message, code))
}

func sendError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, models.NewErrorEnvelope(message))
}

func sendForbidden(w http.ResponseWriter) {
	sendError(w, "permission denied", http.StatusForbidden)
}

func contextWithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, storeTimeout)
}
