package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"parish-app-go/internal/config"
	donationsdomain "parish-app-go/internal/domain/donations"
	priestsdomain "parish-app-go/internal/domain/priests"
	statisticsdomain "parish-app-go/internal/domain/statistics"
	"parish-app-go/internal/metrics"
	"parish-app-go/internal/repository/inmemory"
	"parish-app-go/internal/transport/httpserver"
	"parish-app-go/internal/transport/httpserver/handler"
	"parish-app-go/pkg/logger"
)

var fixedNow = time.Date(2024, 5, 12, 9, 30, 0, 0, time.UTC)

type fakePriestRepo struct {
	mu      sync.Mutex
	priests map[int64]priestsdomain.Priest
	err     error
}

func newFakePriestRepo() *fakePriestRepo {
	return &fakePriestRepo{priests: map[int64]priestsdomain.Priest{}}
}

func (r *fakePriestRepo) Transaction(ctx context.Context, fn func(priestsdomain.Repository) error) error {
	return fn(r)
}

func (r *fakePriestRepo) List(ctx context.Context, filter priestsdomain.ListFilter) ([]priestsdomain.Priest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var items []priestsdomain.Priest
	for _, priest := range r.priests {
		if filter.Type != "" && priest.PriestType != filter.Type {
			continue
		}
		items = append(items, priest)
	}
	return items, nil
}

func (r *fakePriestRepo) GetByID(ctx context.Context, id int64) (*priestsdomain.Priest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	priest, ok := r.priests[id]
	if !ok {
		return nil, priestsdomain.ErrPriestNotFound
	}
	return &priest, nil
}

func (r *fakePriestRepo) GetByEmail(ctx context.Context, email string) (*priestsdomain.Priest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, priest := range r.priests {
		if priest.Email != nil && *priest.Email == email {
			return &priest, nil
		}
	}
	return nil, priestsdomain.ErrPriestNotFound
}

func (r *fakePriestRepo) Exists(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.priests[id]
	return ok, nil
}

func (r *fakePriestRepo) Create(ctx context.Context, priest *priestsdomain.Priest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.priests[priest.ID] = *priest
	return nil
}

func (r *fakePriestRepo) Update(ctx context.Context, priest *priestsdomain.Priest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.priests[priest.ID] = *priest
	return nil
}

func (r *fakePriestRepo) Delete(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.priests[id]; !ok {
		return false, nil
	}
	delete(r.priests, id)
	return true, nil
}

type testServer struct {
	router     http.Handler
	priests    *fakePriestRepo
	donations  *fakeDonationRepo
	metrics    *metrics.Metrics
	dashboards *inmemory.DashboardCache
}

func newTestServer(t *testing.T, ping handler.PingFunc) *testServer {
	t.Helper()
	return newTestServerWithLogger(t, ping, logger.Nop())
}

func newTestServerWithLogger(t *testing.T, ping handler.PingFunc, log logger.Logger) *testServer {
	t.Helper()

	repo := newFakePriestRepo()
	donations := &fakeDonationRepo{}
	m := metrics.New()
	dashboards := inmemory.NewDashboardCache()
	clock := func() time.Time { return fixedNow }
	services := handler.Services{
		Priests:    priestsdomain.NewService(repo, clock),
		Donations:  donationsdomain.NewService(donations, clock),
		Statistics: statisticsdomain.NewServiceWithCache(nil, dashboards, time.Minute, clock),
	}
	if ping == nil {
		ping = func(context.Context) error { return nil }
	}
	h := handler.New(services, ping, m, log)
	router := httpserver.NewRouter(config.Config{AllowedOrigins: []string{"http://localhost:3000"}}, h, m, log)
	return &testServer{router: router, priests: repo, donations: donations, metrics: m, dashboards: dashboards}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		switch v := body.(type) {
		case string:
			payload.WriteString(v)
		default:
			require.NoError(t, json.NewEncoder(&payload).Encode(v))
		}
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func errorField(t *testing.T, rec *httptest.ResponseRecorder, key string) interface{} {
	t.Helper()
	body := decodeBody(t, rec)
	envelope, ok := body["error"].(map[string]interface{})
	require.True(t, ok, "expected error envelope, got %s", rec.Body.String())
	return envelope[key]
}

func TestHelloEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)

	for _, path := range []string{"/hello", "/api/hello"} {
		rec := srv.do(t, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "Hello, Most welcomed User of Parish Management System application !", decodeBody(t, rec)["message"])
	}

	rec := srv.do(t, http.MethodGet, "/api/hello/greet?name=Marie", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Greetings, Marie! Yezu Akuzwe iteka ryose.", body["message"])
	assert.Equal(t, "Marie", body["name"])

	rec = srv.do(t, http.MethodGet, "/hello/greet", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Christ's Faithful", decodeBody(t, rec)["name"])
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := srv.do(t, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])

	down := newTestServer(t, func(context.Context) error { return errors.New("connection refused") })
	rec = down.do(t, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unavailable", decodeBody(t, rec)["status"])
}

func TestCreatePriestDefaultsToActive(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(t, http.MethodPost, "/api/priests", map[string]interface{}{
		"id":             7,
		"names":          "Fr. Jean Bosco",
		"priestType":     "DIOCESAN",
		"ordinationDate": "2010-07-15",
		"email":          "Bosco@Parish.rw",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, float64(7), body["id"])
	assert.Equal(t, true, body["isActive"])
	assert.Equal(t, "2010-07-15", body["ordinationDate"])
	assert.Equal(t, "bosco@parish.rw", body["email"])
	assert.Equal(t, "2024-05-12 09:30:00", body["createdAt"])

	stored, ok := srv.priests.priests[7]
	require.True(t, ok)
	assert.True(t, stored.IsActive)
}

func TestCreatePriestAcceptsLowerCaseType(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(t, http.MethodPost, "/api/priests", map[string]interface{}{
		"id":         12,
		"names":      "Fr. Innocent",
		"priestType": "religious",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "RELIGIOUS", decodeBody(t, rec)["priestType"])
	assert.Equal(t, priestsdomain.TypeReligious, srv.priests.priests[12].PriestType)
}

func TestCreatePriestValidation(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(t, http.MethodPost, "/api/priests", map[string]interface{}{
		"id":         1,
		"priestType": "CARDINAL",
		"email":      "not-an-email",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_failed", errorField(t, rec, "code"))

	fields, ok := errorField(t, rec, "fields").(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "is required", fields["names"])
	assert.Contains(t, fields["priestType"], "must be one of")
	assert.Equal(t, "must be a valid email", fields["email"])
}

func TestCreatePriestRequiresID(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(t, http.MethodPost, "/api/priests", map[string]interface{}{
		"names":      "Fr. Paul",
		"priestType": "RELIGIOUS",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields, ok := errorField(t, rec, "fields").(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "must be greater than 0", fields["id"])
}

func TestCreatePriestRejectsUnknownFields(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(t, http.MethodPost, "/api/priests", `{"id":1,"names":"Fr. Paul","priestType":"RELIGIOUS","rank":"high"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_json", errorField(t, rec, "code"))
}

func TestCreatePriestDuplicateIDIsConflict(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.priests.priests[3] = priestsdomain.Priest{ID: 3, Names: "Fr. Existing", PriestType: priestsdomain.TypeDiocesan}

	rec := srv.do(t, http.MethodPost, "/api/priests", map[string]interface{}{
		"id":         3,
		"names":      "Fr. Other",
		"priestType": "DIOCESAN",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", errorField(t, rec, "code"))
}

func TestGetPriestErrors(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(t, http.MethodGet, "/api/priests/42", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", errorField(t, rec, "code"))

	rec = srv.do(t, http.MethodGet, "/api/priests/abc", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", errorField(t, rec, "code"))

	srv.priests.err = errors.New("connection reset")
	rec = srv.do(t, http.MethodGet, "/api/priests/42", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Ikosa ritunguranye: connection reset", errorField(t, rec, "message"))
}

func TestListPriestsFiltersByType(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.priests.priests[1] = priestsdomain.Priest{ID: 1, Names: "Fr. A", PriestType: priestsdomain.TypeDiocesan}
	srv.priests.priests[2] = priestsdomain.Priest{ID: 2, Names: "Fr. B", PriestType: priestsdomain.TypeReligious}

	rec := srv.do(t, http.MethodGet, "/api/priests?type=religious", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Fr. B", items[0]["names"])

	rec = srv.do(t, http.MethodGet, "/api/priests?active=maybe", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeletePriest(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.priests.priests[5] = priestsdomain.Priest{ID: 5, Names: "Fr. C", PriestType: priestsdomain.TypeExtern}

	rec := srv.do(t, http.MethodDelete, "/api/priests/5", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, srv.priests.priests)

	rec = srv.do(t, http.MethodDelete, "/api/priests/5", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpointCountsRoutes(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.do(t, http.MethodGet, "/api/priests/9", nil)

	rec := srv.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/api/priests/{id}"`)
}

func TestFailureLogsCarryRequestID(t *testing.T) {
	var buf bytes.Buffer
	srv := newTestServerWithLogger(t, nil, logger.New(&buf, slog.LevelDebug, "text"))

	req := httptest.NewRequest(http.MethodGet, "/api/priests/42", nil)
	req.Header.Set("X-Request-Id", "req-77")
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var failureLine string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, "priests.get: not found") {
			failureLine = line
		}
	}
	require.NotEmpty(t, failureLine, "expected a not found log line, got %s", buf.String())
	assert.Contains(t, failureLine, "request_id=req-77")
	assert.Contains(t, failureLine, "priest_id=42")
}

func TestDuplicateEmailLogIsMasked(t *testing.T) {
	var buf bytes.Buffer
	srv := newTestServerWithLogger(t, nil, logger.New(&buf, slog.LevelDebug, "text"))
	email := "gakwaya@parish.rw"
	srv.priests.priests[3] = priestsdomain.Priest{ID: 3, Names: "Fr. Gakwaya", PriestType: priestsdomain.TypeDiocesan, Email: &email}

	rec := srv.do(t, http.MethodPost, "/api/priests", map[string]interface{}{
		"id":         4,
		"names":      "Fr. Mugisha",
		"priestType": "DIOCESAN",
		"email":      email,
	})
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	out := buf.String()
	assert.Contains(t, out, "resource=priests operation=create")
	assert.Contains(t, out, "email=g****************")
	assert.NotContains(t, out, email)
}

func TestPriestWritesDropCachedDashboards(t *testing.T) {
	srv := newTestServer(t, nil)
	expires := fixedNow.Add(time.Hour)
	srv.dashboards.Set("dashboard:2024-05-01_2024-05-31:2024-05-12", statisticsdomain.Dashboard{TotalPriests: 1}, expires)

	rec := srv.do(t, http.MethodPost, "/api/priests", map[string]interface{}{
		"id":         8,
		"names":      "Fr. Emmanuel",
		"priestType": "RELIGIOUS",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	_, ok := srv.dashboards.Get("dashboard:2024-05-01_2024-05-31:2024-05-12", fixedNow)
	assert.False(t, ok, "expected dashboard cache cleared after a priest write")

	srv.dashboards.Set("dashboard:2024-05-01_2024-05-31:2024-05-12", statisticsdomain.Dashboard{TotalPriests: 2}, expires)
	rec = srv.do(t, http.MethodGet, "/api/priests/8", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	_, ok = srv.dashboards.Get("dashboard:2024-05-01_2024-05-31:2024-05-12", fixedNow)
	assert.True(t, ok, "expected reads to leave the cache alone")
}
