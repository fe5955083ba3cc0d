package api

import (
	"net/http"

	"helping-hands/shiftdesk/internal/auth"
	"helping-hands/shiftdesk/internal/constants"
	"helping-hands/shiftdesk/internal/models/dtos/requests"
	"helping-hands/shiftdesk/internal/models/dtos/responses"
)

// CreateShift handles POST /api/shifts
func (h *Handlers) CreateShift() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.GetUserClaims(r.Context())

		var req requests.CreateShiftRequest
		if err := decodeJSON(r, &req); err != nil {
			respondWithError(w, http.StatusBadRequest, constants.ErrCodeInvalidInput, constants.MsgInvalidJSON)
			return
		}

		shift, err := h.deps.Services.Shifts.Create(r.Context(), claims.Username(), req)
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}

		respondWithSuccess(w, http.StatusCreated, &responses.ShiftCreatedResponse{
			ID:      shift.ID,
			Status:  string(shift.Status),
			Message: constants.MsgShiftCreated,
		})
	}
}

// CreateShiftSeries handles POST /api/shifts/series
func (h *Handlers) CreateShiftSeries() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.GetUserClaims(r.Context())

		var req requests.CreateShiftSeriesRequest
		if err := decodeJSON(r, &req); err != nil {
			respondWithError(w, http.StatusBadRequest, constants.ErrCodeInvalidInput, constants.MsgInvalidJSON)
			return
		}

		shifts, err := h.deps.Services.Shifts.CreateSeries(r.Context(), claims.Username(), req)
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}

		ids := make([]int64, len(shifts))
		for i, s := range shifts {
			ids[i] = s.ID
		}
		respondWithSuccess(w, http.StatusCreated, &responses.ShiftSeriesCreatedResponse{
			IDs:     ids,
			Status:  string(constants.ShiftDraft),
			Message: constants.MsgShiftSeriesCreated,
		})
	}
}

// ValidateShift handles POST /api/shifts/{id}/validate
func (h *Handlers) ValidateShift() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.GetUserClaims(r.Context())
		id, ok := pathID(r, "id")
		if !ok {
			respondWithError(w, http.StatusBadRequest, constants.ErrCodeInvalidInput, "invalid shift id")
			return
		}

		if err := h.deps.Services.Shifts.Validate(r.Context(), id, claims.Username()); err != nil {
			respondWithServiceError(w, r, err)
			return
		}

		respondWithSuccess(w, http.StatusOK, &responses.ShiftValidatedResponse{
			ID:          id,
			Status:      string(constants.ShiftValidated),
			ValidatedBy: claims.Username(),
		})
	}
}

// PublishShift handles POST /api/shifts/{id}/publish
func (h *Handlers) PublishShift() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.GetUserClaims(r.Context())
		id, ok := pathID(r, "id")
		if !ok {
			respondWithError(w, http.StatusBadRequest, constants.ErrCodeInvalidInput, "invalid shift id")
			return
		}

		if err := h.deps.Services.Shifts.Publish(r.Context(), id, claims.Username()); err != nil {
			respondWithServiceError(w, r, err)
			return
		}

		respondWithSuccess(w, http.StatusOK, &responses.ShiftPublishedResponse{
			ID:          id,
			Status:      string(constants.ShiftPublished),
			PublishedBy: claims.Username(),
		})
	}
}

// RemoveShift handles DELETE /api/shifts/{id}
func (h *Handlers) RemoveShift() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.GetUserClaims(r.Context())
		id, ok := pathID(r, "id")
		if !ok {
			respondWithError(w, http.StatusBadRequest, constants.ErrCodeInvalidInput, "invalid shift id")
			return
		}

		if err := h.deps.Services.Shifts.Remove(r.Context(), id, claims.Role()); err != nil {
			respondWithServiceError(w, r, err)
			return
		}

		respondWithSuccess(w, http.StatusOK, &responses.MessageResponse{Message: constants.MsgShiftRemoved})
	}
}

// ListShifts handles GET /api/shifts?status=
func (h *Handlers) ListShifts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.GetUserClaims(r.Context())

		listings, err := h.deps.Services.Shifts.List(r.Context(), claims.Role(), r.URL.Query().Get("status"))
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}

		respondWithSuccess(w, http.StatusOK, &listings)
	}
}
