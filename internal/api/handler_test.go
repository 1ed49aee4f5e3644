package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rentscore/rentscore/internal/dispatch"
	"github.com/rentscore/rentscore/internal/intake"
	"github.com/rentscore/rentscore/internal/roster"
	"github.com/rentscore/rentscore/pkg/scoring"
)

type testServer struct {
	*httptest.Server
	logs *observer.ObservedLogs
}

func newTestServer(t *testing.T, engine dispatch.Engine, opts ...Option) *testServer {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	reg := intake.NewRegistry(intake.Defaults{
		Now: func() time.Time { return time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC) },
	})
	opts = append([]Option{WithLogger(zap.New(core))}, opts...)
	h := NewHandler(engine, reg, opts...)
	srv := httptest.NewServer(h.Routes(nil))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, logs: logs}
}

type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func do(t *testing.T, method, url, body string) (*http.Response, response) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out response
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &out), "body: %s", raw)
	}
	return resp, out
}

func TestCalculateSuccess(t *testing.T) {
	srv := newTestServer(t, dispatch.NewLocal(2))

	resp, out := do(t, http.MethodPost, srv.URL+"/api/v1/calculators/deal-score",
		`{"current_rent":2000,"market_rent":2000}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, out.Success)

	var res scoring.DealScoreResult
	require.NoError(t, json.Unmarshal(out.Data, &res))
	assert.InDelta(t, 45.5, res.Score, 0.05)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))
}

func TestCalculateErrors(t *testing.T) {
	srv := newTestServer(t, dispatch.NewLocal(2))

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		errMsg string
	}{
		{"missing field", "/api/v1/calculators/deal-score", `{"current_rent":2000}`, http.StatusBadRequest, "market_rent"},
		{"domain violation", "/api/v1/calculators/tenant-risk", `{"renter_id":"r","rent_amount":-1}`, http.StatusBadRequest, "rent_amount"},
		{"bad month", "/api/v1/calculators/negotiation", `{"current_rent":1,"market_rent":1,"month":13}`, http.StatusBadRequest, "month"},
		{"malformed json", "/api/v1/calculators/deal-score", `{"current_rent":`, http.StatusBadRequest, "body"},
		{"unknown calculator", "/api/v1/calculators/horoscope", `{}`, http.StatusNotFound, "unknown calculator"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, out := do(t, http.MethodPost, srv.URL+tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.False(t, out.Success)
			assert.Contains(t, out.Error, tt.errMsg)
		})
	}
}

// failingEngine fails every tenant risk call with an internal error.
type failingEngine struct{ *dispatch.Local }

func (failingEngine) TenantRisk(context.Context, scoring.TenantRiskInput) (scoring.TenantRiskResult, error) {
	return scoring.TenantRiskResult{}, errors.New("connection reset by peer")
}

func TestCalculateInternalErrorIsLogged(t *testing.T) {
	srv := newTestServer(t, failingEngine{dispatch.NewLocal(1)})

	resp, out := do(t, http.MethodPost, srv.URL+"/api/v1/calculators/tenant-risk",
		`{"renter_id":"r-1","rent_amount":1200}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "internal error", out.Error)

	errs := srv.logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].ContextMap()["error"], "connection reset")
}

func TestListCalculators(t *testing.T) {
	srv := newTestServer(t, dispatch.NewLocal(2))

	resp, out := do(t, http.MethodGet, srv.URL+"/api/v1/calculators", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var calcs []intake.Calculator
	require.NoError(t, json.Unmarshal(out.Data, &calcs))
	assert.Len(t, calcs, 12)
}

func TestRemoteEngineAgainstAPI(t *testing.T) {
	srv := newTestServer(t, dispatch.NewLocal(2))
	remote := dispatch.NewRemote(srv.URL, time.Second)
	ctx := context.Background()

	res, err := remote.TenantRisk(ctx, scoring.TenantRiskInput{RenterID: "r-1", RentAmount: 1500, OnTimePayments: 12})
	require.NoError(t, err)
	local, err := scoring.CalculateTenantRisk(scoring.TenantRiskInput{RenterID: "r-1", RentAmount: 1500, OnTimePayments: 12})
	require.NoError(t, err)
	assert.Equal(t, local, res)

	_, err = remote.TenantRisk(ctx, scoring.TenantRiskInput{RenterID: "r-1", RentAmount: -1})
	require.Error(t, err)
	assert.True(t, scoring.IsInvalidInput(err))
}

func TestRosterEndpoints(t *testing.T) {
	rosters := roster.NewService(roster.NewDocumentStore(roster.NewLocalStorage(t.TempDir())), roster.NewCache(4, 0))
	srv := newTestServer(t, dispatch.NewLocal(2), WithRosters(rosters))

	resp, out := do(t, http.MethodPut, srv.URL+"/api/v1/orgs/acme/roster", `{"tenants":[
		{"renter_id":"a","rent_amount":1000,"on_time_payments":10},
		{"renter_id":"b","rent_amount":2000,"on_time_payments":5,"late_payments":5}
	]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, out.Error)
	var info rosterInfo
	require.NoError(t, json.Unmarshal(out.Data, &info))
	assert.Equal(t, 2, info.TenantCount)
	assert.NotEmpty(t, info.DocumentID)

	resp, out = do(t, http.MethodPost, srv.URL+"/api/v1/orgs/acme/portfolio-summary", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, out.Error)
	var summary scoring.PortfolioSummary
	require.NoError(t, json.Unmarshal(out.Data, &summary))
	assert.Equal(t, 2, summary.TenantCount)
	assert.InDelta(t, 3000, summary.TotalMonthlyRent, 0.001)
	assert.InDelta(t, 75, summary.OnTimePaymentRate, 0.001)

	resp, out = do(t, http.MethodPost, srv.URL+"/api/v1/orgs/acme/collection-forecast", `{"forecast_month":"2026-04"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, out.Error)
	var forecast scoring.CollectionForecastResult
	require.NoError(t, json.Unmarshal(out.Data, &forecast))
	assert.Equal(t, "2026-04", forecast.ForecastMonth)
	assert.Len(t, forecast.Tenants, 2)

	resp, _ = do(t, http.MethodPost, srv.URL+"/api/v1/orgs/globex/portfolio-summary", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, srv.URL+"/api/v1/orgs/acme/deal-score", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, out = do(t, http.MethodPut, srv.URL+"/api/v1/orgs/acme/roster", `{"tenants":[]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, out.Error, "tenants")

	resp, out = do(t, http.MethodPut, srv.URL+"/api/v1/orgs/acme/roster", `{"tenants":[{"renter_id":"c","rent_amount":900}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, out.Error)

	resp, out = do(t, http.MethodGet, srv.URL+"/api/v1/orgs/acme/roster/"+info.DocumentID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, out.Error)
	var old roster.Roster
	require.NoError(t, json.Unmarshal(out.Data, &old))
	assert.Len(t, old.Tenants, 2)

	resp, out = do(t, http.MethodGet, srv.URL+"/api/v1/orgs/acme/roster", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, out.Error)
	var current roster.Roster
	require.NoError(t, json.Unmarshal(out.Data, &current))
	assert.Len(t, current.Tenants, 1)

	resp, _ = do(t, http.MethodGet, srv.URL+"/api/v1/orgs/acme/roster/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, http.MethodGet, srv.URL+"/api/v1/orgs/acme/roster/5f0c6f1e-2c52-4c1b-9a49-5b6f4f1c2a77", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestErrorBodyCarriesOnlyError(t *testing.T) {
	srv := newTestServer(t, dispatch.NewLocal(2))

	resp, err := http.Post(srv.URL+"/api/v1/calculators/deal-score", "application/json", strings.NewReader(`{"current_rent":2000}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body, 1)
	assert.Contains(t, body["error"], "market_rent")
}

func TestRosterWithoutBackend(t *testing.T) {
	srv := newTestServer(t, dispatch.NewLocal(2))
	resp, _ := do(t, http.MethodPost, srv.URL+"/api/v1/orgs/acme/portfolio-summary", "")
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	engine := dispatch.New(dispatch.NewLocal(2), nil, dispatch.WithMetrics(dispatch.NewMetrics(reg)))
	srv := newTestServer(t, engine, WithGatherer(reg))

	resp, out := do(t, http.MethodGet, srv.URL+"/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, out.Success)

	resp, _ = do(t, http.MethodPost, srv.URL+"/api/v1/calculators/renter-score", `{"renter_id":"r-1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	mresp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer mresp.Body.Close()
	body, err := io.ReadAll(mresp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `rentscore_calculations_total{calculator="renter-score",path="primary"} 1`)
}

func TestRequestIDPropagated(t *testing.T) {
	srv := newTestServer(t, dispatch.NewLocal(1))

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, dispatch.NewLocal(1))

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/v1/calculators/deal-score", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
