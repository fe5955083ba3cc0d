package middleware

import (
	"context"
	"net/http"

	"helping-hands/shiftdesk/internal/auth"
)

type holderKey struct{}

// claimsHolder carries the resolved caller back up to outer middleware.
type claimsHolder struct {
	claims auth.UserClaims
}

func withClaimsHolder(ctx context.Context, h *claimsHolder) context.Context {
	return context.WithValue(ctx, holderKey{}, h)
}

// recordClaims publishes claims to an enclosing MetricsMiddleware, if any.
func recordClaims(r *http.Request, claims auth.UserClaims) {
	if h, ok := r.Context().Value(holderKey{}).(*claimsHolder); ok {
		h.claims = claims
	}
}
