package api

import (
	"net/http"

	"helping-hands/shiftdesk/internal/auth"
	"helping-hands/shiftdesk/internal/constants"
	"helping-hands/shiftdesk/internal/models/dtos/requests"
	"helping-hands/shiftdesk/internal/models/dtos/responses"
)

// RequestCommitment handles POST /api/shifts/{id}/volunteer. An overlap is
// a 200 with status "overlap" and the alternatives.
func (h *Handlers) RequestCommitment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.GetUserClaims(r.Context())
		id, ok := pathID(r, "id")
		if !ok {
			respondWithError(w, http.StatusBadRequest, constants.ErrCodeInvalidInput, "invalid shift id")
			return
		}

		result, err := h.deps.Services.Commitments.Request(r.Context(), claims.Username(), id)
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}

		status := http.StatusCreated
		if result.CommitmentID == 0 {
			status = http.StatusOK
		}
		respondWithSuccess(w, status, result)
	}
}

// DecideCommitment handles POST /api/volunteer-commitments/{id}/approve
func (h *Handlers) DecideCommitment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.GetUserClaims(r.Context())
		id, ok := pathID(r, "id")
		if !ok {
			respondWithError(w, http.StatusBadRequest, constants.ErrCodeInvalidInput, "invalid commitment id")
			return
		}

		var req requests.DecideCommitmentRequest
		if err := decodeJSON(r, &req); err != nil {
			respondWithError(w, http.StatusBadRequest, constants.ErrCodeInvalidInput, constants.MsgInvalidJSON)
			return
		}
		if req.Approved == nil {
			respondWithError(w, http.StatusBadRequest, constants.ErrCodeInvalidInput, "approved is required")
			return
		}

		result, err := h.deps.Services.Commitments.Decide(r.Context(), id, claims.Username(), *req.Approved)
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}

		respondWithSuccess(w, http.StatusOK, result)
	}
}

// CancelCommitment handles POST /api/volunteer-commitments/{id}/cancel
func (h *Handlers) CancelCommitment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.GetUserClaims(r.Context())
		id, ok := pathID(r, "id")
		if !ok {
			respondWithError(w, http.StatusBadRequest, constants.ErrCodeInvalidInput, "invalid commitment id")
			return
		}

		if err := h.deps.Services.Commitments.Cancel(r.Context(), id, claims.Username()); err != nil {
			respondWithServiceError(w, r, err)
			return
		}

		respondWithSuccess(w, http.StatusOK, &responses.CommitmentCancelledResponse{
			Status:  string(constants.CommitmentCancelled),
			Message: constants.MsgCommitmentCanceled,
		})
	}
}

// ListCommitments handles GET /api/volunteer-commitments
func (h *Handlers) ListCommitments() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.GetUserClaims(r.Context())

		rows, err := h.deps.Services.Commitments.ListForVolunteer(r.Context(), claims.Username())
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}

		respondWithSuccess(w, http.StatusOK, &rows)
	}
}
