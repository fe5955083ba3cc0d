package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"helping-hands/shiftdesk/internal/common"
	"helping-hands/shiftdesk/internal/constants"
	"helping-hands/shiftdesk/internal/logging"
	"helping-hands/shiftdesk/internal/services"
)

func respondWithSuccess[T any](w http.ResponseWriter, statusCode int, data *T) {
	common.RespondSuccess(w, statusCode, data)
}

func respondWithError(w http.ResponseWriter, statusCode int, code, message string) {
	common.RespondError(w, statusCode, code, message)
}

// respondWithServiceError maps a service failure onto its HTTP status and
// stable error code.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		logging.Error("Unclassified handler error", "path", r.URL.Path, "error", err)
		respondWithError(w, http.StatusInternalServerError, constants.ErrCodeStoreFailure, constants.MsgStoreFailure)
		return
	}

	status, code := http.StatusInternalServerError, constants.ErrCodeStoreFailure
	switch svcErr.Kind {
	case services.KindForbidden:
		status, code = http.StatusForbidden, constants.ErrCodeForbidden
	case services.KindInvalidActor:
		status, code = http.StatusForbidden, constants.ErrCodeInvalidActor
	case services.KindPermanentlyBarred:
		status, code = http.StatusForbidden, constants.ErrCodePermanentlyBarred
	case services.KindNotFound:
		status, code = http.StatusNotFound, constants.ErrCodeNotFound
	case services.KindNoCapacity:
		status, code = http.StatusConflict, constants.ErrCodeNoCapacity
	case services.KindAlreadyActive:
		status, code = http.StatusConflict, constants.ErrCodeAlreadyActive
	case services.KindAlreadyProcessed:
		status, code = http.StatusConflict, constants.ErrCodeAlreadyProcessed
	case services.KindWindowExpired:
		status, code = http.StatusConflict, constants.ErrCodeWindowExpired
	case services.KindInvalidInput:
		status, code = http.StatusBadRequest, constants.ErrCodeInvalidInput
	}

	if status == http.StatusInternalServerError {
		logging.Error("Store failure", "path", r.URL.Path, "error", err)
		respondWithError(w, status, code, constants.MsgStoreFailure)
		return
	}
	respondWithError(w, status, code, svcErr.Message)
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// pathID parses a positive integer URL parameter.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
