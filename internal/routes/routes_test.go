package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helping-hands/shiftdesk/internal/api"
	"helping-hands/shiftdesk/internal/config"
	"helping-hands/shiftdesk/internal/constants"
	"helping-hands/shiftdesk/internal/db/dbtest"
	"helping-hands/shiftdesk/internal/db/repositories"
	"helping-hands/shiftdesk/internal/metrics"
	gormModels "helping-hands/shiftdesk/internal/models/gorm"
)

type envelope struct {
	Status string          `json:"status"`
	Error  string          `json:"error"`
	Code   string          `json:"code"`
	Data   json.RawMessage `json:"data"`
}

type testServer struct {
	t       *testing.T
	handler http.Handler
	deps    *api.Dependencies
}

func newTestServer(t *testing.T, mutate func(cfg *config.Config)) *testServer {
	t.Helper()

	orm, sx := dbtest.NewWithSQLX(t)
	users := repositories.NewUserRepositoryGORM(orm)
	for _, u := range []gormModels.User{
		{Username: "admin", Password: "x", Role: constants.RoleAdmin},
		{Username: "manager", Password: "x", Role: constants.RoleManager},
		{Username: "volunteer", Password: "x", Role: constants.RoleVolunteer},
		{Username: "testuser", Password: "x", Role: constants.RoleVolunteer},
	} {
		_, err := users.EnsureUser(context.Background(), &u)
		require.NoError(t, err)
	}

	cfg := config.DefaultConfig()
	cfg.RateLimit.Requests = 100
	if mutate != nil {
		mutate(cfg)
	}

	reg := prometheus.NewRegistry()
	deps, err := api.InitDependencies(cfg, orm, sx, nil, metrics.NewMetricsRegistry(reg))
	require.NoError(t, err)
	t.Cleanup(deps.Services.Dispatcher.Wait)

	return &testServer{t: t, handler: RegisterRoutes(deps, reg, time.Now()), deps: deps}
}

func (s *testServer) do(method, path, user string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Username", user)
	}

	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)

	var env envelope
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		require.NoError(s.t, json.Unmarshal(rr.Body.Bytes(), &env))
	}
	return rr, env
}

func (s *testServer) data(env envelope) map[string]interface{} {
	s.t.Helper()
	out := map[string]interface{}{}
	require.NoError(s.t, json.Unmarshal(env.Data, &out))
	return out
}

func (s *testServer) publishedShift(date, start, end string, spots int) int64 {
	s.t.Helper()

	rr, env := s.do(http.MethodPost, "/api/shifts", "manager", map[string]interface{}{
		"title": "Food bank " + start, "date": date, "start_time": start, "end_time": end, "spots": spots,
	})
	require.Equal(s.t, http.StatusCreated, rr.Code, rr.Body.String())
	id := int64(s.data(env)["id"].(float64))

	rr, _ = s.do(http.MethodPost, "/api/shifts/"+itoa(id)+"/validate", "admin", nil)
	require.Equal(s.t, http.StatusOK, rr.Code)
	rr, _ = s.do(http.MethodPost, "/api/shifts/"+itoa(id)+"/publish", "manager", nil)
	require.Equal(s.t, http.StatusOK, rr.Code)
	return id
}

func itoa(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}

func TestRoutes_RequireIdentity(t *testing.T) {
	s := newTestServer(t, nil)

	rr, env := s.do(http.MethodGet, "/api/shifts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, constants.ErrCodeUnauthorized, env.Code)

	rr, _ = s.do(http.MethodGet, "/api/shifts", "nobody", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRoutes_BearerToken(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) { cfg.Auth.TrustHeader = false })

	token, _, err := s.deps.Services.Tokens.Issue("manager")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"source":"JWT"`)
}

func TestRoutes_ShiftLifecycleAndCommitment(t *testing.T) {
	s := newTestServer(t, nil)

	rr, env := s.do(http.MethodPost, "/api/shifts", "volunteer", map[string]interface{}{
		"title": "Nope", "date": "2025-06-01", "start_time": "09:00", "end_time": "12:00", "spots": 1,
	})
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, constants.ErrCodeForbidden, env.Code)

	id := s.publishedShift("2025-06-01", "09:00", "13:00", 1)

	rr, env = s.do(http.MethodGet, "/api/shifts", "volunteer", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var listed []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "published", listed[0]["status"])

	rr, env = s.do(http.MethodPost, "/api/shifts/"+itoa(id)+"/volunteer", "volunteer", nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	signup := s.data(env)
	assert.Equal(t, "pending", signup["status"])
	commitmentID := int64(signup["commitment_id"].(float64))

	rr, env = s.do(http.MethodPost, "/api/shifts/"+itoa(id)+"/volunteer", "volunteer", nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, constants.ErrCodeAlreadyActive, env.Code)

	rr, env = s.do(http.MethodPost, "/api/volunteer-commitments/"+itoa(commitmentID)+"/approve", "admin", map[string]bool{"approved": true})
	assert.Equal(t, http.StatusForbidden, rr.Code, "admins do not decide commitments")

	rr, env = s.do(http.MethodPost, "/api/volunteer-commitments/"+itoa(commitmentID)+"/approve", "manager", map[string]bool{"approved": true})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	decision := s.data(env)
	assert.Equal(t, "approved", decision["status"])
	assert.NotEmpty(t, decision["can_cancel_until"])

	rr, env = s.do(http.MethodGet, "/api/me", "volunteer", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1.0, s.data(env)["credits"])

	rr, env = s.do(http.MethodPost, "/api/shifts/"+itoa(id)+"/volunteer", "testuser", nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, constants.ErrCodeNoCapacity, env.Code)

	rr, _ = s.do(http.MethodPost, "/api/volunteer-commitments/"+itoa(commitmentID)+"/cancel", "testuser", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code, "only the owner may cancel")

	rr, env = s.do(http.MethodPost, "/api/volunteer-commitments/"+itoa(commitmentID)+"/cancel", "volunteer", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "cancelled", s.data(env)["status"])

	rr, env = s.do(http.MethodGet, "/api/volunteer-commitments", "volunteer", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var mine []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, "cancelled", mine[0]["status"])

	rr, _ = s.do(http.MethodDelete, "/api/shifts/"+itoa(id), "volunteer", nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	rr, _ = s.do(http.MethodDelete, "/api/shifts/"+itoa(id), "admin", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	rr, _ = s.do(http.MethodDelete, "/api/shifts/"+itoa(id), "admin", nil)
	assert.Equal(t, http.StatusOK, rr.Code, "removal is idempotent")
}

func TestRoutes_OverlapIsSuccessOutcome(t *testing.T) {
	s := newTestServer(t, nil)

	first := s.publishedShift("2025-06-02", "09:00", "13:00", 2)
	second := s.publishedShift("2025-06-02", "12:00", "16:00", 2)
	alt := s.publishedShift("2025-06-02", "17:00", "19:00", 2)

	rr, _ := s.do(http.MethodPost, "/api/shifts/"+itoa(first)+"/volunteer", "volunteer", nil)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr, env := s.do(http.MethodPost, "/api/shifts/"+itoa(second)+"/volunteer", "volunteer", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	out := s.data(env)
	assert.Equal(t, "overlap", out["status"])
	alts := out["alternative_shifts"].([]interface{})
	ids := make([]float64, 0, len(alts))
	for _, a := range alts {
		ids = append(ids, a.(map[string]interface{})["id"].(float64))
	}
	assert.Contains(t, ids, float64(alt))
}

func TestRoutes_SignupRateLimited(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) { cfg.RateLimit.Requests = 2 })

	id := s.publishedShift("2025-06-03", "09:00", "10:00", 5)
	s.do(http.MethodPost, "/api/shifts/"+itoa(id)+"/volunteer", "volunteer", nil)
	s.do(http.MethodPost, "/api/shifts/"+itoa(id)+"/volunteer", "testuser", nil)

	rr, env := s.do(http.MethodPost, "/api/shifts/"+itoa(id)+"/volunteer", "volunteer", nil)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, constants.ErrCodeRateLimited, env.Code)
}

func TestRoutes_SeriesCreatesDrafts(t *testing.T) {
	s := newTestServer(t, nil)

	rr, env := s.do(http.MethodPost, "/api/shifts/series", "manager", map[string]interface{}{
		"title": "Saturday sort", "start_date": "2025-06-07", "rrule": "FREQ=WEEKLY;COUNT=3",
		"start_time": "09:00", "end_time": "12:00", "spots": 4,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Len(t, s.data(env)["ids"], 3)

	rr, env = s.do(http.MethodGet, "/api/shifts?status=draft", "manager", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var listed []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Len(t, listed, 3)
	assert.Equal(t, "2025-06-14", listed[1]["date"])
}

func TestRoutes_Reports(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.publishedShift("2025-06-04", "09:00", "12:00", 2)

	rr, env := s.do(http.MethodPost, "/api/shifts/"+itoa(id)+"/volunteer", "volunteer", nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	cid := itoa(int64(s.data(env)["commitment_id"].(float64)))
	rr, _ = s.do(http.MethodPost, "/api/volunteer-commitments/"+cid+"/approve", "manager", map[string]bool{"approved": true})
	require.Equal(t, http.StatusOK, rr.Code)

	rr, _ = s.do(http.MethodGet, "/api/reports/shifts", "volunteer", nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr, env = s.do(http.MethodGet, "/api/reports/shifts?status=published", "manager", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, string(env.Data), `"volunteer"`)

	rr, env = s.do(http.MethodPost, "/api/reports/coverage", "admin", map[string]string{"start_date": "2025-06-01", "end_date": "2025-06-30"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1.0, s.data(env)["total_shifts"])

	rr, _ = s.do(http.MethodPost, "/api/reports/coverage/export", "manager", map[string]string{})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "attachment; filename=coverage_report.csv", rr.Header().Get("Content-Disposition"))
	assert.Contains(t, rr.Body.String(), "staff_id,assigned,rate\nvolunteer,1,1.0000\n")
}

func TestRoutes_Permissions(t *testing.T) {
	s := newTestServer(t, nil)

	rr, env := s.do(http.MethodGet, "/api/rbac/roles/manager/permissions", "volunteer", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, string(env.Data), "commitment.decide")

	rr, env = s.do(http.MethodGet, "/api/rbac/roles/ghost/permissions", "volunteer", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, constants.ErrCodeNotFound, env.Code)

	rr, env = s.do(http.MethodGet, "/api/rbac/check?action=shift.validate", "manager", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, false, s.data(env)["allowed"])
}

func TestRoutes_HealthAndMetrics(t *testing.T) {
	s := newTestServer(t, nil)

	rr, _ := s.do(http.MethodGet, "/healthCheck", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"database":{"status":"ok"`)

	rr, _ = s.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "shiftdesk_http_requests_total")
}
