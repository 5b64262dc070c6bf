package http

import (
	"encoding/json"
	"net/http"

	"shiftboard-backend/internal/domain"
	"shiftboard-backend/internal/logger"
)

// envelope is the uniform response body: message plus optional payload.
type envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Message: message, Data: data}); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

// writeError maps domain error kinds to HTTP statuses. Capacity, duplicate
// and state-machine violations are all conflicts (409); an exhausted retry
// is 503 so clients know the request itself was fine.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch domain.KindOf(err) {
	case domain.KindValidation:
		status = http.StatusBadRequest
		message = err.Error()
	case domain.KindNotFound:
		status = http.StatusNotFound
		message = err.Error()
	case domain.KindCapacityExceeded, domain.KindDuplicateBooking, domain.KindInvalidStateTransition:
		status = http.StatusConflict
		message = err.Error()
	case domain.KindConflict:
		status = http.StatusServiceUnavailable
		message = err.Error()
	default:
		logger.Error("unhandled error", "error", err)
	}

	writeJSON(w, status, message, nil)
}
