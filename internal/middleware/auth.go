package middleware

import (
	"context"
	"net/http"
	"strings"

	"helping-hands/shiftdesk/internal/auth"
	"helping-hands/shiftdesk/internal/common"
	"helping-hands/shiftdesk/internal/constants"
	"helping-hands/shiftdesk/internal/logging"
	"helping-hands/shiftdesk/internal/services"
)

// TokenVerifier checks a bearer token and returns its subject and id.
type TokenVerifier interface {
	Verify(token string) (subject string, tokenID string, err error)
}

// UserLookup resolves the acting user.
type UserLookup interface {
	LookupUser(ctx context.Context, username string) (*services.UserRecord, error)
}

// AuthMiddleware resolves the caller from a bearer token or, when
// trustHeader is set, from X-Username, and stores the claims in the request
// context. Unknown users get 401.
func AuthMiddleware(users UserLookup, tokens TokenVerifier, trustHeader bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			authHeader := r.Header.Get("Authorization")
			headerUser := strings.TrimSpace(r.Header.Get("X-Username"))

			var (
				username string
				tokenID  string
				viaToken bool
			)

			switch {
			case strings.HasPrefix(authHeader, "Bearer "):
				sub, id, err := tokens.Verify(strings.TrimPrefix(authHeader, "Bearer "))
				if err != nil {
					logging.Debug("Rejected bearer token", "error", err)
					common.RespondError(w, http.StatusUnauthorized, constants.ErrCodeUnauthorized, "Unauthorized. Invalid token")
					return
				}
				username, tokenID, viaToken = sub, id, true

			case trustHeader && headerUser != "":
				username = headerUser

			default:
				common.RespondError(w, http.StatusUnauthorized, constants.ErrCodeUnauthorized, "Unauthorized. Missing credentials")
				return
			}

			user, err := users.LookupUser(r.Context(), username)
			if err != nil {
				if services.KindOf(err) == services.KindNotFound {
					common.RespondError(w, http.StatusUnauthorized, constants.ErrCodeUnauthorized, "Unauthorized. Unknown user")
					return
				}
				logging.Error("User lookup failed", "username", username, "error", err)
				common.RespondError(w, http.StatusInternalServerError, constants.ErrCodeStoreFailure, constants.MsgStoreFailure)
				return
			}

			var claims auth.UserClaims
			if viaToken {
				claims = &auth.TokenClaims{User: user.Username, RoleValue: user.Role, TokenID: tokenID}
			} else {
				claims = &auth.HeaderClaims{User: user.Username, RoleValue: user.Role}
			}

			recordClaims(r, claims)
			ctx := auth.SetUserClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
