package common

import (
	"encoding/json"
	"net/http"
	"time"

	"helping-hands/shiftdesk/internal/constants"
	"helping-hands/shiftdesk/internal/logging"
	"helping-hands/shiftdesk/internal/models/dtos/responses"
)

// RespondSuccess writes data inside the standard success envelope.
func RespondSuccess[T any](w http.ResponseWriter, statusCode int, data *T) {
	writeJSON(w, statusCode, responses.APIResponse[T]{
		Status:    string(constants.APIStatusSuccess),
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
}

// RespondError writes the standard error envelope. code is one of the
// constants.ErrCode* values.
func RespondError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, responses.APIResponse[any]{
		Status:    string(constants.APIStatusError),
		Timestamp: time.Now().UTC(),
		Error:     message,
		Code:      code,
	})
}

func writeJSON[T any](w http.ResponseWriter, statusCode int, body responses.APIResponse[T]) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error("JSON encode failed", "error", err)
	}
}
