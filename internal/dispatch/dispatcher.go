package dispatch

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/rentscore/rentscore/pkg/scoring"
)

// ErrDoubleFailure marks a calculation where both engines failed.
var ErrDoubleFailure = eris.New("calculation failed")

// Dispatcher tries the primary engine and, when it fails for any reason other
// than invalid input, runs the fallback exactly once.
type Dispatcher struct {
	primary  Engine
	fallback Engine
	metrics  *Metrics
	logger   *zap.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMetrics records executions on m.
func WithMetrics(m *Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithLogger sets the logger used for fallback warnings.
func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// New creates a dispatcher. fallback may be nil, in which case primary errors
// are returned as-is.
func New(primary, fallback Engine, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		primary:  primary,
		fallback: fallback,
		metrics:  NewMetrics(nil),
		logger:   zap.L(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var _ Engine = (*Dispatcher)(nil)

func run[T any](ctx context.Context, d *Dispatcher, calculator string, fn func(Engine) (T, error)) (T, error) {
	out, err := safeCall(d.primary, fn)
	if err == nil {
		d.metrics.success(calculator, PathPrimary)
		return out, nil
	}
	if scoring.IsInvalidInput(err) || d.fallback == nil || ctx.Err() != nil {
		return out, err
	}

	d.logger.Warn("calculation fallback",
		zap.String("calculator", calculator),
		zap.Error(err),
	)
	d.metrics.fallback(calculator)

	out, ferr := safeCall(d.fallback, fn)
	if ferr == nil {
		d.metrics.success(calculator, PathFallback)
		return out, nil
	}
	if scoring.IsInvalidInput(ferr) {
		return out, ferr
	}

	d.metrics.doubleFailure(calculator)
	d.logger.Error("calculation failed on both engines",
		zap.String("calculator", calculator),
		zap.NamedError("primary_error", err),
		zap.NamedError("fallback_error", ferr),
	)
	return out, eris.Wrapf(ErrDoubleFailure, "%s: primary: %v; fallback: %v", calculator, err, ferr)
}

// safeCall turns a panic in an engine into an error.
func safeCall[T any](e Engine, fn func(Engine) (T, error)) (out T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("engine panic: %v", r)
		}
	}()
	return fn(e)
}

func (d *Dispatcher) TenantRisk(ctx context.Context, in scoring.TenantRiskInput) (scoring.TenantRiskResult, error) {
	return run(ctx, d, scoring.CalcTenantRisk, func(e Engine) (scoring.TenantRiskResult, error) {
		return e.TenantRisk(ctx, in)
	})
}

func (d *Dispatcher) TenantRiskBatch(ctx context.Context, in scoring.TenantRiskBatchInput) ([]scoring.TenantRiskResult, error) {
	return run(ctx, d, scoring.CalcTenantRiskBatch, func(e Engine) ([]scoring.TenantRiskResult, error) {
		return e.TenantRiskBatch(ctx, in)
	})
}

func (d *Dispatcher) Creditworthiness(ctx context.Context, in scoring.CreditworthinessInput) (scoring.CreditworthinessResult, error) {
	return run(ctx, d, scoring.CalcCreditworthiness, func(e Engine) (scoring.CreditworthinessResult, error) {
		return e.Creditworthiness(ctx, in)
	})
}

func (d *Dispatcher) CollectionForecast(ctx context.Context, in scoring.CollectionForecastInput) (scoring.CollectionForecastResult, error) {
	return run(ctx, d, scoring.CalcCollectionForecast, func(e Engine) (scoring.CollectionForecastResult, error) {
		return e.CollectionForecast(ctx, in)
	})
}

func (d *Dispatcher) PortfolioRisk(ctx context.Context, in scoring.PortfolioRiskInput) (scoring.PortfolioRiskResult, error) {
	return run(ctx, d, scoring.CalcPortfolioRisk, func(e Engine) (scoring.PortfolioRiskResult, error) {
		return e.PortfolioRisk(ctx, in)
	})
}

func (d *Dispatcher) PortfolioSummary(ctx context.Context, in scoring.PortfolioSummaryInput) (scoring.PortfolioSummary, error) {
	return run(ctx, d, scoring.CalcPortfolioSummary, func(e Engine) (scoring.PortfolioSummary, error) {
		return e.PortfolioSummary(ctx, in)
	})
}

func (d *Dispatcher) Desirability(ctx context.Context, in scoring.DesirabilityInput) (scoring.DesirabilityResult, error) {
	return run(ctx, d, scoring.CalcDesirability, func(e Engine) (scoring.DesirabilityResult, error) {
		return e.Desirability(ctx, in)
	})
}

func (d *Dispatcher) Negotiation(ctx context.Context, in scoring.NegotiationInput) (scoring.NegotiationResult, error) {
	return run(ctx, d, scoring.CalcNegotiation, func(e Engine) (scoring.NegotiationResult, error) {
		return e.Negotiation(ctx, in)
	})
}

func (d *Dispatcher) RenterScore(ctx context.Context, in scoring.RenterScoreInput) (scoring.RenterScoreResult, error) {
	return run(ctx, d, scoring.CalcRenterScore, func(e Engine) (scoring.RenterScoreResult, error) {
		return e.RenterScore(ctx, in)
	})
}

func (d *Dispatcher) DealScore(ctx context.Context, in scoring.DealScoreInput) (scoring.DealScoreResult, error) {
	return run(ctx, d, scoring.CalcDealScore, func(e Engine) (scoring.DealScoreResult, error) {
		return e.DealScore(ctx, in)
	})
}

func (d *Dispatcher) LeverageScore(ctx context.Context, in scoring.LeverageScoreInput) (scoring.LeverageScoreResult, error) {
	return run(ctx, d, scoring.CalcLeverageScore, func(e Engine) (scoring.LeverageScoreResult, error) {
		return e.LeverageScore(ctx, in)
	})
}

func (d *Dispatcher) RenewalStrategy(ctx context.Context, in scoring.RenewalStrategyInput) (scoring.RenewalStrategyResult, error) {
	return run(ctx, d, scoring.CalcRenewalStrategy, func(e Engine) (scoring.RenewalStrategyResult, error) {
		return e.RenewalStrategy(ctx, in)
	})
}
