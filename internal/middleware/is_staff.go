package middleware

import (
	"net/http"

	"helping-hands/shiftdesk/internal/auth"
	"helping-hands/shiftdesk/internal/common"
	"helping-hands/shiftdesk/internal/constants"
)

// RequirePermission lets the request through only when the caller's role
// is granted action in the policy table.
func RequirePermission(action auth.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			claims := auth.GetUserClaims(r.Context())
			if claims == nil {
				common.RespondError(w, http.StatusUnauthorized, constants.ErrCodeUnauthorized, constants.MsgUnauthorized)
				return
			}

			if claims.HasPermission(action) {
				next.ServeHTTP(w, r)
				return
			}
			common.RespondError(w, http.StatusForbidden, constants.ErrCodeForbidden, "Forbidden. Missing permission "+string(action))
		})
	}
}

// IsStaffMiddleware admits managers and admins.
func IsStaffMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			claims := auth.GetUserClaims(r.Context())
			if claims != nil && claims.Role().IsStaff() {
				next.ServeHTTP(w, r)
				return
			}
			common.RespondError(w, http.StatusForbidden, constants.ErrCodeForbidden, "Forbidden. Need staff role")
		})
	}
}
