package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rentscore/rentscore/pkg/config"
	"github.com/rentscore/rentscore/pkg/scoring"
)

// stubEngine fails TenantRisk on demand and delegates everything else.
type stubEngine struct {
	*Local
	err    error
	panics bool
	calls  int
}

func (s *stubEngine) TenantRisk(ctx context.Context, in scoring.TenantRiskInput) (scoring.TenantRiskResult, error) {
	s.calls++
	if s.panics {
		panic("native library not loaded")
	}
	if s.err != nil {
		return scoring.TenantRiskResult{}, s.err
	}
	return s.Local.TenantRisk(ctx, in)
}

func newStub(err error) *stubEngine {
	return &stubEngine{Local: NewLocal(2), err: err}
}

func validTenant() scoring.TenantRiskInput {
	return scoring.TenantRiskInput{RenterID: "r-1", RentAmount: 1500, OnTimePayments: 12}
}

func newTestDispatcher(primary, fallback Engine) (*Dispatcher, *Metrics, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	m := NewMetrics(prometheus.NewRegistry())
	return New(primary, fallback, WithMetrics(m), WithLogger(zap.New(core))), m, logs
}

func TestDispatcherPrimarySuccess(t *testing.T) {
	primary, fallback := newStub(nil), newStub(nil)
	d, m, logs := newTestDispatcher(primary, fallback)

	res, err := d.TenantRisk(context.Background(), validTenant())
	require.NoError(t, err)
	assert.Equal(t, "r-1", res.RenterID)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, fallback.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.calculations.WithLabelValues(scoring.CalcTenantRisk, PathPrimary)))
	assert.Equal(t, 0, logs.Len())
}

func TestDispatcherFallsBackOnce(t *testing.T) {
	primary, fallback := newStub(errors.New("engine unavailable")), newStub(nil)
	d, m, logs := newTestDispatcher(primary, fallback)

	res, err := d.TenantRisk(context.Background(), validTenant())
	require.NoError(t, err)

	want, err := scoring.CalculateTenantRisk(validTenant())
	require.NoError(t, err)
	assert.Equal(t, want, res)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fallbacks.WithLabelValues(scoring.CalcTenantRisk)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.calculations.WithLabelValues(scoring.CalcTenantRisk, PathFallback)))

	warnings := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "calculation fallback", warnings[0].Message)
	assert.Equal(t, scoring.CalcTenantRisk, warnings[0].ContextMap()["calculator"])
}

func TestDispatcherRecoversPanic(t *testing.T) {
	primary := newStub(nil)
	primary.panics = true
	fallback := newStub(nil)
	d, _, _ := newTestDispatcher(primary, fallback)

	_, err := d.TenantRisk(context.Background(), validTenant())
	require.NoError(t, err)
	assert.Equal(t, 1, fallback.calls)
}

func TestDispatcherInvalidInputNotRetried(t *testing.T) {
	primary, fallback := NewLocal(2), newStub(nil)
	d, m, _ := newTestDispatcher(primary, fallback)

	_, err := d.TenantRisk(context.Background(), scoring.TenantRiskInput{RenterID: "r-1", RentAmount: -10})
	require.Error(t, err)
	assert.True(t, scoring.IsInvalidInput(err))
	assert.Equal(t, 0, fallback.calls)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.fallbacks.WithLabelValues(scoring.CalcTenantRisk)))
}

func TestDispatcherDoubleFailure(t *testing.T) {
	primary, fallback := newStub(errors.New("remote down")), newStub(errors.New("also down"))
	d, m, logs := newTestDispatcher(primary, fallback)

	_, err := d.TenantRisk(context.Background(), validTenant())
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrDoubleFailure))
	assert.False(t, scoring.IsInvalidInput(err))
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.doubleFailures.WithLabelValues(scoring.CalcTenantRisk)))
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestDispatcherWithoutFallback(t *testing.T) {
	primary := newStub(errors.New("boom"))
	d, _, _ := newTestDispatcher(primary, nil)

	_, err := d.TenantRisk(context.Background(), validTenant())
	require.Error(t, err)
	assert.False(t, eris.Is(err, ErrDoubleFailure))
	assert.Equal(t, 1, primary.calls)
}

func TestDispatcherDelegatesEveryCalculator(t *testing.T) {
	d, m, _ := newTestDispatcher(NewLocal(2), nil)
	ctx := context.Background()

	_, err := d.Creditworthiness(ctx, scoring.CreditworthinessInput{RenterID: "r-1"})
	assert.NoError(t, err)
	_, err = d.DealScore(ctx, scoring.DealScoreInput{CurrentRent: 1000, MarketRent: 1000})
	assert.NoError(t, err)
	_, err = d.PortfolioSummary(ctx, scoring.PortfolioSummaryInput{Tenants: []scoring.TenantRiskInput{validTenant()}})
	assert.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.calculations.WithLabelValues(scoring.CalcCreditworthiness, PathPrimary)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.calculations.WithLabelValues(scoring.CalcDealScore, PathPrimary)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.calculations.WithLabelValues(scoring.CalcPortfolioSummary, PathPrimary)))
}

func TestFromConfig(t *testing.T) {
	local := FromConfig(config.EngineConfig{}, 2).(*Dispatcher)
	assert.IsType(t, &Local{}, local.primary)
	assert.Nil(t, local.fallback)

	remote := FromConfig(config.EngineConfig{RemoteURL: "http://scoring:8080/", TimeoutSecs: 3}, 2).(*Dispatcher)
	require.IsType(t, &Remote{}, remote.primary)
	assert.Equal(t, "http://scoring:8080", remote.primary.(*Remote).baseURL)
	assert.Equal(t, 3*time.Second, remote.primary.(*Remote).httpClient.Timeout)
	assert.IsType(t, &Local{}, remote.fallback)
}
