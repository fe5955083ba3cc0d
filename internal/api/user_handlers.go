package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"helping-hands/shiftdesk/internal/auth"
	"helping-hands/shiftdesk/internal/constants"
	"helping-hands/shiftdesk/internal/models/dtos/responses"
)

// CurrentUser handles GET /api/me. Credits come from the directory, not
// the claims, so a fresh approval shows up once the cache entry drops.
func (h *Handlers) CurrentUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.GetUserClaims(r.Context())

		user, err := h.deps.Services.Users.LookupUser(r.Context(), claims.Username())
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}

		respondWithSuccess(w, http.StatusOK, &responses.CurrentUserResponse{
			Username: user.Username,
			Role:     string(user.Role),
			Credits:  user.Credits,
			Source:   claims.Source(),
		})
	}
}

// RolePermissions handles GET /api/rbac/roles/{role}/permissions
func (h *Handlers) RolePermissions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := constants.Role(chi.URLParam(r, "role"))

		actions, ok := auth.Permissions(role)
		if !ok {
			respondWithError(w, http.StatusNotFound, constants.ErrCodeNotFound, constants.MsgRoleNotFound)
			return
		}

		names := make([]string, len(actions))
		for i, a := range actions {
			names[i] = string(a)
		}
		respondWithSuccess(w, http.StatusOK, &responses.RolePermissionsResponse{Role: string(role), Permissions: names})
	}
}

// CheckPermission handles GET /api/rbac/check?action=
func (h *Handlers) CheckPermission() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.GetUserClaims(r.Context())
		action := r.URL.Query().Get("action")
		if action == "" {
			respondWithError(w, http.StatusBadRequest, constants.ErrCodeInvalidInput, "action is required")
			return
		}

		respondWithSuccess(w, http.StatusOK, &responses.PermissionCheckResponse{
			Username: claims.Username(),
			Role:     string(claims.Role()),
			Action:   action,
			Allowed:  claims.HasPermission(auth.Action(action)),
		})
	}
}
