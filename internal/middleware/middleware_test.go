package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helping-hands/shiftdesk/internal/auth"
	"helping-hands/shiftdesk/internal/config"
	"helping-hands/shiftdesk/internal/constants"
	"helping-hands/shiftdesk/internal/metrics"
	"helping-hands/shiftdesk/internal/services"
)

type stubUsers map[string]constants.Role

func (s stubUsers) LookupUser(_ context.Context, username string) (*services.UserRecord, error) {
	role, ok := s[username]
	if !ok {
		return nil, services.ErrNotFound
	}
	return &services.UserRecord{Username: username, Role: role}, nil
}

type stubTokens struct {
	subject string
	err     error
}

func (s stubTokens) Verify(string) (string, string, error) {
	return s.subject, "jti-1", s.err
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func claimsEcho(t *testing.T, want string, source string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := auth.GetUserClaims(r.Context())
		require.NotNil(t, claims)
		assert.Equal(t, want, claims.Username())
		assert.Equal(t, source, claims.Source())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestFixedWindowLimiter_BlocksAfterLimitAndRollsOver(t *testing.T) {
	l := NewFixedWindowLimiter(3, time.Minute)
	now := time.Date(2025, 6, 1, 12, 0, 5, 0, time.UTC)
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("10.0.0.1"), "request %d", i+1)
	}
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"), "other clients keep their own quota")

	now = now.Add(time.Minute)
	assert.True(t, l.Allow("10.0.0.1"))
}

func TestFixedWindowLimiter_Reset(t *testing.T) {
	l := NewFixedWindowLimiter(1, time.Minute)
	require.True(t, l.Allow("a"))
	require.False(t, l.Allow("a"))

	l.Reset()
	assert.True(t, l.Allow("a"))
}

func TestTokenBucketLimiter_Burst(t *testing.T) {
	l := NewTokenBucketLimiter(2, time.Hour)
	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))

	l.Reset()
	assert.True(t, l.Allow("a"))
}

func TestNewRateLimiter_Strategy(t *testing.T) {
	_, ok := NewRateLimiter(config.RateLimitConfig{Strategy: "token_bucket", Requests: 1, Window: time.Second}).(*TokenBucketLimiter)
	assert.True(t, ok)
	_, ok = NewRateLimiter(config.RateLimitConfig{Strategy: "fixed_window", Requests: 1, Window: time.Second}).(*FixedWindowLimiter)
	assert.True(t, ok)
}

func TestRateLimitMiddleware_Returns429(t *testing.T) {
	m := metrics.NewMetricsRegistry(prometheus.NewRegistry())
	h := RateLimitMiddleware(NewFixedWindowLimiter(1, time.Minute), m)(okHandler)

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/api/shifts/1/volunteer", nil))
	assert.Equal(t, http.StatusNoContent, first.Code)

	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/api/shifts/1/volunteer", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Contains(t, second.Body.String(), constants.ErrCodeRateLimited)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimitedTotal.WithLabelValues("/api/shifts/1/volunteer")))
}

func TestClientAddress_StripsPort(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.7:51234"
	assert.Equal(t, "192.0.2.7", ClientAddress(r))
}

func TestAuthMiddleware_HeaderIdentity(t *testing.T) {
	users := stubUsers{"manager": constants.RoleManager}
	h := AuthMiddleware(users, stubTokens{}, true)(claimsEcho(t, "manager", "HEADER"))

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("X-Username", "manager")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestAuthMiddleware_HeaderIgnoredWhenUntrusted(t *testing.T) {
	h := AuthMiddleware(stubUsers{"manager": constants.RoleManager}, stubTokens{}, false)(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("X-Username", "manager")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthMiddleware_UnknownUser(t *testing.T) {
	h := AuthMiddleware(stubUsers{}, stubTokens{}, true)(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("X-Username", "ghost")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthMiddleware_BearerToken(t *testing.T) {
	users := stubUsers{"volunteer": constants.RoleVolunteer}

	h := AuthMiddleware(users, stubTokens{subject: "volunteer"}, false)(claimsEcho(t, "volunteer", "JWT"))
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer abc")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	h = AuthMiddleware(users, stubTokens{err: errors.New("expired")}, true)(okHandler)
	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer abc")
	req.Header.Set("X-Username", "volunteer")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "a bad token is not rescued by the header")
}

func TestRequirePermission(t *testing.T) {
	h := RequirePermission(auth.ActionReportView)(okHandler)

	cases := []struct {
		name   string
		claims auth.UserClaims
		want   int
	}{
		{"no claims", nil, http.StatusUnauthorized},
		{"volunteer", &auth.HeaderClaims{User: "v", RoleValue: constants.RoleVolunteer}, http.StatusForbidden},
		{"manager", &auth.HeaderClaims{User: "m", RoleValue: constants.RoleManager}, http.StatusNoContent},
		{"admin", &auth.TokenClaims{User: "a", RoleValue: constants.RoleAdmin}, http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/reports/coverage", nil)
			if tc.claims != nil {
				req = req.WithContext(auth.SetUserClaims(req.Context(), tc.claims))
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			assert.Equal(t, tc.want, rr.Code)
		})
	}
}

func TestIsStaffMiddleware(t *testing.T) {
	h := IsStaffMiddleware()(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(auth.SetUserClaims(req.Context(), &auth.HeaderClaims{User: "v", RoleValue: constants.RoleVolunteer}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = auth.GetRequestID(r.Context())
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rr.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "given")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "given", seen)
}

func TestMetricsMiddleware_CountsRequests(t *testing.T) {
	m := metrics.NewMetricsRegistry(prometheus.NewRegistry())
	h := MetricsMiddleware(m)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/shifts/42", nil))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("/api/shifts/{id}", "GET", "418")))

	// nil registry is allowed
	MetricsMiddleware(nil)(okHandler).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestNormalizeEndpoint(t *testing.T) {
	assert.Equal(t, "/api/shifts/{id}/volunteer", NormalizeEndpoint("/api/shifts/17/volunteer"))
	assert.Equal(t, "/api/commitments/{id}", NormalizeEndpoint("/api/commitments/550e8400-e29b-41d4-a716-446655440000"))
	assert.Equal(t, "/api/me", NormalizeEndpoint("/api/me"))
}
