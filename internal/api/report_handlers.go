package api

import (
	"net/http"

	"helping-hands/shiftdesk/internal/constants"
	"helping-hands/shiftdesk/internal/models/dtos/requests"
	"helping-hands/shiftdesk/internal/services"
)

// ShiftRoster handles GET /api/reports/shifts?status=
func (h *Handlers) ShiftRoster() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := constants.ShiftStatus(r.URL.Query().Get("status"))
		if status != "" && !status.Valid() {
			respondWithError(w, http.StatusBadRequest, constants.ErrCodeInvalidInput, "unknown status "+string(status))
			return
		}

		roster, err := h.deps.Repo.Reports.ShiftRoster(r.Context(), status)
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}

		respondWithSuccess(w, http.StatusOK, &roster)
	}
}

// CoverageReport handles POST /api/reports/coverage
func (h *Handlers) CoverageReport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req requests.CoverageReportRequest
		if err := decodeJSON(r, &req); err != nil {
			respondWithError(w, http.StatusBadRequest, constants.ErrCodeInvalidInput, constants.MsgInvalidJSON)
			return
		}

		report, err := h.deps.Services.Coverage.Generate(r.Context(), req)
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}

		respondWithSuccess(w, http.StatusOK, report)
	}
}

// ExportCoverageReport handles POST /api/reports/coverage/export
func (h *Handlers) ExportCoverageReport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req requests.CoverageReportRequest
		if err := decodeJSON(r, &req); err != nil {
			respondWithError(w, http.StatusBadRequest, constants.ErrCodeInvalidInput, constants.MsgInvalidJSON)
			return
		}

		report, err := h.deps.Services.Coverage.Generate(r.Context(), req)
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}

		body, err := services.ExportCSV(report)
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", "attachment; filename=coverage_report.csv")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}
}
