//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"
	"parish-app-go/internal/app"
	"parish-app-go/internal/config"
	"parish-app-go/internal/db"
	"parish-app-go/internal/metrics"
	"parish-app-go/internal/transport/httpserver"
	"parish-app-go/internal/transport/httpserver/handler"
	"parish-app-go/pkg/logger"
)

type testEnv struct {
	server *httptest.Server
	db     *gorm.DB
	client *http.Client
}

// startPostgres returns E2E_DB_DSN when set, otherwise a throwaway container.
func startPostgres(t *testing.T) string {
	t.Helper()

	if dsn := os.Getenv("E2E_DB_DSN"); dsn != "" {
		return dsn
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("parish"),
		tcpostgres.WithUsername("parish"),
		tcpostgres.WithPassword("parish"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("terminate postgres: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("postgres dsn: %v", err)
	}
	return dsn
}

func setupE2E(t *testing.T) *testEnv {
	t.Helper()

	decimal.MarshalJSONWithoutQuotes = true
	log := logger.Nop()
	cfg := config.Config{
		AllowedOrigins: []string{"http://localhost:3000"},
		StatsCacheTTL:  time.Minute,
		DB:             config.DBConfig{DSN: startPostgres(t)},
	}

	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		t.Fatalf("db connect: %v", err)
	}
	if err := db.Migrate(dbConn, log); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := cleanDB(dbConn); err != nil {
		t.Fatalf("clean db: %v", err)
	}

	m := metrics.New()
	handlers := handler.New(app.NewServices(dbConn, cfg, m), handler.PingFunc(func(ctx context.Context) error {
		return db.Ping(ctx, dbConn)
	}), m, log)
	server := httptest.NewServer(httpserver.NewRouter(cfg, handlers, m, log))

	env := &testEnv{server: server, db: dbConn, client: &http.Client{Timeout: 10 * time.Second}}
	t.Cleanup(env.Close)
	return env
}

func (e *testEnv) Close() {
	e.server.Close()
	if sqlDB, err := e.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func cleanDB(dbConn *gorm.DB) error {
	return dbConn.WithContext(context.Background()).Exec(
		"TRUNCATE TABLE donations, intentions, mass_concelebrants, events, priests, lapse_events, ministries, faithfuls RESTART IDENTITY CASCADE",
	).Error
}

func (e *testEnv) request(t *testing.T, method, path string, payload interface{}) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.server.URL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp, respBody
}

func (e *testEnv) expect(t *testing.T, method, path string, payload interface{}, status int, out interface{}) {
	t.Helper()

	resp, body := e.request(t, method, path, payload)
	if resp.StatusCode != status {
		t.Fatalf("%s %s: expected %d, got %d: %s", method, path, status, resp.StatusCode, string(body))
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type idResponse struct {
	ID int64 `json:"id"`
}

type massResponse struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	EventType  string `json:"eventType"`
	MassType   string `json:"massType"`
	Intentions []struct {
		ID int64 `json:"id"`
	} `json:"intentions"`
}

type intentionResponse struct {
	ID             int64           `json:"id"`
	IsPaid         bool            `json:"isPaid"`
	OfferingAmount decimal.Decimal `json:"offeringAmount"`
}

func TestE2EHealth(t *testing.T) {
	env := setupE2E(t)

	var health map[string]string
	env.expect(t, http.MethodGet, "/api/health", nil, http.StatusOK, &health)
	if health["status"] != "ok" {
		t.Fatalf("expected ok, got %q", health["status"])
	}
}

func TestE2EMassIntentionFlow(t *testing.T) {
	env := setupE2E(t)

	env.expect(t, http.MethodPost, "/api/priests", map[string]interface{}{
		"id":         101,
		"names":      "Fr. Jean Bosco Ntirenganya",
		"priestType": "DIOCESAN",
	}, http.StatusCreated, nil)

	var faithful idResponse
	env.expect(t, http.MethodPost, "/api/faithful", map[string]interface{}{
		"firstname":     "Marie",
		"name":          "Uwase",
		"baptismId":     "BAP-" + uuid.NewString()[:8],
		"dateOfBaptism": "2001-04-15",
		"parish":        "Regina Pacis",
		"subparish":     "Remera",
	}, http.StatusCreated, &faithful)
	if faithful.ID == 0 {
		t.Fatalf("expected faithful id")
	}

	var mass massResponse
	env.expect(t, http.MethodPost, "/api/masses", map[string]interface{}{
		"eventDate":       "2024-03-10",
		"location":        "Main church",
		"massType":        "SUNDAY",
		"mainCelebrantId": 101,
	}, http.StatusCreated, &mass)
	if mass.Title != "SUNDAY Mass" {
		t.Fatalf("expected default title, got %q", mass.Title)
	}

	var intention intentionResponse
	env.expect(t, http.MethodPost, "/api/intentions", map[string]interface{}{
		"intentionType":  "THANKSGIVING",
		"intentionText":  "For the family",
		"offeringAmount": 5000,
		"massId":         mass.ID,
		"faithfulId":     faithful.ID,
	}, http.StatusCreated, &intention)
	if intention.IsPaid {
		t.Fatalf("expected unpaid intention")
	}

	var paid intentionResponse
	env.expect(t, http.MethodPatch, "/api/intentions/"+itoa(intention.ID)+"/payment", map[string]bool{"isPaid": true}, http.StatusOK, &paid)
	if !paid.IsPaid {
		t.Fatalf("expected paid intention")
	}

	var stats struct {
		TotalMasses  int64            `json:"totalMasses"`
		MassesByType map[string]int64 `json:"massesByType"`
	}
	env.expect(t, http.MethodGet, "/api/statistics/masses?startDate=2024-03-01&endDate=2024-03-31", nil, http.StatusOK, &stats)
	if stats.TotalMasses != 1 || stats.MassesByType["SUNDAY"] != 1 {
		t.Fatalf("unexpected mass statistics: %+v", stats)
	}

	resp, body := env.request(t, http.MethodDelete, "/api/priests/101", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 deleting a celebrating priest, got %d: %s", resp.StatusCode, string(body))
	}

	env.expect(t, http.MethodDelete, "/api/masses/"+itoa(mass.ID), nil, http.StatusNoContent, nil)

	var orphan intentionResponse
	env.expect(t, http.MethodGet, "/api/intentions/"+itoa(intention.ID), nil, http.StatusOK, &orphan)
}

func TestE2EDonationFlow(t *testing.T) {
	env := setupE2E(t)

	var faithful, other idResponse
	env.expect(t, http.MethodPost, "/api/faithful", map[string]interface{}{
		"firstname": "Eric",
		"name":      "Habimana",
		"subparish": "Kicukiro",
	}, http.StatusCreated, &faithful)
	env.expect(t, http.MethodPost, "/api/faithful", map[string]interface{}{
		"firstname": "Claudine",
		"name":      "Mukeshimana",
		"subparish": "Gikondo",
	}, http.StatusCreated, &other)

	donations := []struct {
		faithfulID int64
		amount     string
	}{
		{faithful.ID, "150.00"},
		{faithful.ID, "50.50"},
		{other.ID, "99.50"},
	}
	for _, d := range donations {
		env.expect(t, http.MethodPost, "/api/donations", map[string]interface{}{
			"faithfulId":       d.faithfulID,
			"year":             2024,
			"amount":           json.Number(d.amount),
			"date":             "2024-06-02",
			"contributionType": "TITHE",
		}, http.StatusCreated, nil)
	}

	type totalResponse struct {
		Total decimal.Decimal `json:"total"`
	}

	var byFaithful, byOther, overall totalResponse
	env.expect(t, http.MethodGet, "/api/donations/statistics/faithful/"+itoa(faithful.ID)+"/total", nil, http.StatusOK, &byFaithful)
	if !byFaithful.Total.Equal(decimal.RequireFromString("200.50")) {
		t.Fatalf("expected 200.50 for faithful, got %s", byFaithful.Total)
	}
	env.expect(t, http.MethodGet, "/api/donations/statistics/faithful/"+itoa(other.ID)+"/total", nil, http.StatusOK, &byOther)
	env.expect(t, http.MethodGet, "/api/donations/statistics/total", nil, http.StatusOK, &overall)
	if !byFaithful.Total.Add(byOther.Total).Equal(overall.Total) {
		t.Fatalf("expected per-faithful totals %s + %s to equal overall %s", byFaithful.Total, byOther.Total, overall.Total)
	}

	var total struct {
		Total decimal.Decimal `json:"total"`
		Year  decimal.Decimal `json:"year"`
	}
	env.expect(t, http.MethodGet, "/api/donations/statistics/year/2024/total", nil, http.StatusOK, &total)
	if !total.Total.Equal(decimal.RequireFromString("300.00")) {
		t.Fatalf("expected 300.00, got %s", total.Total)
	}

	var years []int
	env.expect(t, http.MethodGet, "/api/donations/statistics/available-years", nil, http.StatusOK, &years)
	if len(years) != 1 || years[0] != 2024 {
		t.Fatalf("expected [2024], got %v", years)
	}

	resp, body := env.request(t, http.MethodDelete, "/api/faithful/"+itoa(faithful.ID), nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 deleting a donor, got %d: %s", resp.StatusCode, string(body))
	}
	var errResp errorEnvelope
	if err := json.Unmarshal(body, &errResp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errResp.Error.Code != "conflict" {
		t.Fatalf("expected conflict, got %q", errResp.Error.Code)
	}

	env.expect(t, http.MethodDelete, "/api/donations/faithful/"+itoa(faithful.ID), nil, http.StatusNoContent, nil)
	env.expect(t, http.MethodDelete, "/api/faithful/"+itoa(faithful.ID), nil, http.StatusNoContent, nil)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
