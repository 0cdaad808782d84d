package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adlytics/funnel-api/internal/analytics"
	"github.com/adlytics/funnel-api/internal/auth"
	"github.com/adlytics/funnel-api/internal/config"
	"github.com/adlytics/funnel-api/internal/warehouse"
)

func testRecoConfig() config.RecoConfig {
	return config.RecoConfig{
		TargetROAS: 3.0,
		KillROAS:   0.8,
		MinLeads:   5,
		MinSpend:   100,
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, WeekStart: "monday"},
		Warehouse: config.WarehouseConfig{
			Driver:              "postgres",
			QueryTimeoutSeconds: 5,
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
		Reco: testRecoConfig(),
		Anomaly: config.AnomalyConfig{
			BaselineDays:     30,
			MinBaselineDays:  7,
			SpikeSigma:       2,
			HighSigma:        3,
			DropRatio:        0.5,
			HighDropRatio:    0.3,
			SpendSurgeFactor: 2,
		},
	}
}

func newTestServer(t *testing.T, cfg *config.Config, verifier auth.Verifier) (http.Handler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	wh := warehouse.NewWithDB(db, warehouse.DialectPostgres)
	svc := analytics.NewService(wh, log, cfg.Anomaly, cfg.Server.WeekStartDay())
	handlers := NewHandlers(svc, wh, cfg, log)
	router := SetupRoutes(handlers, verifier, cfg, log)

	return router, mock, func() { db.Close() }
}

func doGet(t *testing.T, h http.Handler, url string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", url, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) Problem {
	t.Helper()
	var p Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func TestKPIEndpoint(t *testing.T) {
	h, mock, cleanup := newTestServer(t, testConfig(), nil)
	defer cleanup()

	cols := []string{"leads", "n_contracts", "revenue", "spend", "cpl", "roas"}
	mock.ExpectQuery("FROM v8_platform_daily_full").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(120, 4, 2400.0, 480.0, 4.0, 5.0))

	rec := doGet(t, h, "/v5/kpi?date_from=2025-01-01&date_to=2025-01-07&platforms=google,meta")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(120), body["leads"])
	assert.Equal(t, float64(4), body["n_contracts"])
	assert.Equal(t, 4.0, body["cpl"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKPIEmptyWindowEndpoint(t *testing.T) {
	h, mock, cleanup := newTestServer(t, testConfig(), nil)
	defer cleanup()

	cols := []string{"leads", "n_contracts", "revenue", "spend", "cpl", "roas"}
	mock.ExpectQuery("FROM v8_platform_daily_full").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(0, 0, 0.0, 0.0, nil, nil))

	rec := doGet(t, h, "/v5/kpi?date_from=2099-01-01&date_to=2099-01-07&platforms=google,meta")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(0), body["leads"])
	// Null, not zero and not an error.
	assert.Nil(t, body["cpl"])
	assert.Nil(t, body["roas"])
}

func TestBadRequestProblemDocs(t *testing.T) {
	h, _, cleanup := newTestServer(t, testConfig(), nil)
	defer cleanup()

	cases := []string{
		"/v5/kpi",                                                     // missing dates
		"/v5/kpi?date_from=2025-01-07&date_to=2025-01-01",             // inverted window
		"/v5/kpi?date_from=2025-01-01&date_to=2025-01-07&platforms=x", // unknown platform
		"/v5/campaigns?date_from=2025-01-01&date_to=2025-01-07&limit=0",
		"/v8/contracts/timeline?date_from=2025-01-01&date_to=2025-01-07&group_by=hour",
		"/v5/kpi/compare?date_from=2025-01-01&date_to=2025-01-07&compare_mode=yoy",
		"/v5/kpi/compare?date_from=2025-01-01&date_to=2025-01-07&compare_mode=custom",
	}
	for _, url := range cases {
		rec := doGet(t, h, url)
		require.Equalf(t, http.StatusBadRequest, rec.Code, "url %s", url)
		p := decodeProblem(t, rec)
		assert.Equal(t, "about:blank", p.Type)
		assert.Equal(t, "Bad Request", p.Title)
		assert.Equal(t, 400, p.Status)
		assert.NotEmpty(t, p.Detail)
	}
}

func TestWarehouseDownReturns503(t *testing.T) {
	h, mock, cleanup := newTestServer(t, testConfig(), nil)
	defer cleanup()

	mock.ExpectQuery("FROM v8_platform_daily_full").
		WillReturnError(&netOpError{})

	rec := doGet(t, h, "/v5/kpi?date_from=2025-01-01&date_to=2025-01-07")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	p := decodeProblem(t, rec)
	assert.Equal(t, 503, p.Status)
	// No driver detail may leak.
	assert.NotContains(t, p.Detail, "connection refused")
}

// netOpError mimics a refused TCP dial from the driver.
type netOpError struct{}

func (e *netOpError) Error() string { return "dial tcp 10.0.0.1:5432: connection refused" }

func TestInternalErrorsAreSanitized(t *testing.T) {
	h, mock, cleanup := newTestServer(t, testConfig(), nil)
	defer cleanup()

	mock.ExpectQuery("FROM v8_platform_daily_full").
		WillReturnError(errSecret{})

	rec := doGet(t, h, "/v5/kpi?date_from=2025-01-01&date_to=2025-01-07")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	p := decodeProblem(t, rec)
	assert.Equal(t, "an internal error occurred", p.Detail)
	assert.NotContains(t, rec.Body.String(), "users_secret_table")
}

type errSecret struct{}

func (errSecret) Error() string { return `pq: permission denied for table "users_secret_table"` }

func TestCreativesByCampaignNotFound(t *testing.T) {
	h, mock, cleanup := newTestServer(t, testConfig(), nil)
	defer cleanup()

	cols := []string{
		"creative_id", "campaign_id", "title", "body", "cta_type", "link_url",
		"total_spend", "total_impressions", "total_clicks", "leads", "contracts",
		"revenue", "first_seen", "last_seen", "days_active", "performance_status",
	}
	mock.ExpectQuery("FROM v6_creative_performance").
		WillReturnRows(sqlmock.NewRows(cols))

	rec := doGet(t, h, "/v6/creatives/by-campaign/ghost?date_from=2025-01-01&date_to=2025-01-07")
	require.Equal(t, http.StatusNotFound, rec.Code)
	p := decodeProblem(t, rec)
	assert.Equal(t, 404, p.Status)
}

func TestAuthMiddleware(t *testing.T) {
	cfg := testConfig()
	cfg.Auth = config.AuthConfig{Enabled: true, StaticToken: "test-token"}
	verifier := &auth.StaticVerifier{Token: "test-token"}

	h, mock, cleanup := newTestServer(t, cfg, verifier)
	defer cleanup()

	// No credentials.
	rec := doGet(t, h, "/v5/kpi?date_from=2025-01-01&date_to=2025-01-07")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Wrong token.
	req := httptest.NewRequest("GET", "/v5/kpi?date_from=2025-01-01&date_to=2025-01-07", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Health stays open.
	rec = doGet(t, h, "/health")
	assert.NotEqual(t, http.StatusUnauthorized, rec.Code)

	// Valid token.
	cols := []string{"leads", "n_contracts", "revenue", "spend", "cpl", "roas"}
	mock.ExpectQuery("FROM v8_platform_daily_full").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(1, 0, 0.0, 0.0, nil, nil))
	req = httptest.NewRequest("GET", "/v5/kpi?date_from=2025-01-01&date_to=2025-01-07", nil)
	req.Header.Set("Authorization", "Bearer test-token")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestTopMoversEndpoint(t *testing.T) {
	h, mock, cleanup := newTestServer(t, testConfig(), nil)
	defer cleanup()

	cols := []string{"platform", "campaign_id", "campaign_name", "leads", "n_contracts", "revenue", "spend"}
	// Current window: one strong campaign, one zero-lead spender.
	mock.ExpectQuery("FROM v8_campaigns_daily_full").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("google", "g1", "Winner", 50, 3, 2000.0, 400.0).
			AddRow("meta", "m1", "Burner", 0, 0, 0.0, 300.0))
	// Previous window.
	mock.ExpectQuery("FROM v8_campaigns_daily_full").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("google", "g1", "Winner", 40, 2, 1500.0, 380.0))

	rec := doGet(t, h, "/v5/campaigns/top-movers?date_from=2025-01-08&date_to=2025-01-14")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Winners []map[string]interface{} `json:"winners"`
		Losers  []map[string]interface{} `json:"losers"`
		Watch   []map[string]interface{} `json:"watch"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Winners, 1)
	assert.Equal(t, "g1", body.Winners[0]["campaign_id"])
	assert.Equal(t, "scale", body.Winners[0]["action"])
	require.Len(t, body.Losers, 1)
	assert.Equal(t, "m1", body.Losers[0]["campaign_id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlatformShareCompareEndpoint(t *testing.T) {
	h, mock, cleanup := newTestServer(t, testConfig(), nil)
	defer cleanup()

	cols := []string{"platform", "leads"}
	mock.ExpectQuery("FROM v5_bi_platform_daily").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("google", 60).AddRow("meta", 40))
	mock.ExpectQuery("FROM v5_bi_platform_daily").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("google", 50).AddRow("meta", 50))

	rec := doGet(t, h, "/v5/share/platforms/compare?date_from=2025-01-08&date_to=2025-01-14")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []struct {
			Platform    string   `json:"platform"`
			ShareDiffPP *float64 `json:"share_diff_pp"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
	require.NotNil(t, body.Data[0].ShareDiffPP)
	assert.Equal(t, 10.0, *body.Data[0].ShareDiffPP)
}

func TestMetricsEndpointExposed(t *testing.T) {
	h, _, cleanup := newTestServer(t, testConfig(), nil)
	defer cleanup()

	// Counters only appear once at least one labelled request has been
	// served, so hit the health endpoint before scraping.
	doGet(t, h, "/health")

	rec := doGet(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "funnel_api_requests_total")
}
