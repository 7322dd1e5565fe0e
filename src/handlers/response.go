package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/username/finapp/finsync/src/logger"
)

func writeJSON(w http.ResponseWriter, r *http.Request, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.FromContext(r.Context()).Error("Failed to encode JSON response", "path", r.URL.Path, "error", err)
	}
}

// sendJSONError writes {"error": message}, plus the request id when one was assigned
// so a dashboard bug report can be matched with the log line.
func sendJSONError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	body := map[string]string{"error": message}
	if id, ok := GetRequestIDFromContext(r.Context()); ok {
		body["requestID"] = id
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	logger.FromContext(r.Context()).Warn("Sending JSON error to client", "message", message, "statusCode", statusCode)
	json.NewEncoder(w).Encode(body)
}
