// Package dispatch runs calculators through a primary engine with a single
// fallback attempt.
package dispatch

import (
	"context"

	"github.com/rentscore/rentscore/pkg/scoring"
)

// Engine is the contract every scoring backend satisfies. Implementations
// return errors wrapping scoring.ErrInvalidInput for bad input.
type Engine interface {
	TenantRisk(ctx context.Context, in scoring.TenantRiskInput) (scoring.TenantRiskResult, error)
	TenantRiskBatch(ctx context.Context, in scoring.TenantRiskBatchInput) ([]scoring.TenantRiskResult, error)
	Creditworthiness(ctx context.Context, in scoring.CreditworthinessInput) (scoring.CreditworthinessResult, error)
	CollectionForecast(ctx context.Context, in scoring.CollectionForecastInput) (scoring.CollectionForecastResult, error)
	PortfolioRisk(ctx context.Context, in scoring.PortfolioRiskInput) (scoring.PortfolioRiskResult, error)
	PortfolioSummary(ctx context.Context, in scoring.PortfolioSummaryInput) (scoring.PortfolioSummary, error)
	Desirability(ctx context.Context, in scoring.DesirabilityInput) (scoring.DesirabilityResult, error)
	Negotiation(ctx context.Context, in scoring.NegotiationInput) (scoring.NegotiationResult, error)
	RenterScore(ctx context.Context, in scoring.RenterScoreInput) (scoring.RenterScoreResult, error)
	DealScore(ctx context.Context, in scoring.DealScoreInput) (scoring.DealScoreResult, error)
	LeverageScore(ctx context.Context, in scoring.LeverageScoreInput) (scoring.LeverageScoreResult, error)
	RenewalStrategy(ctx context.Context, in scoring.RenewalStrategyInput) (scoring.RenewalStrategyResult, error)
}

// Local runs calculators in process.
type Local struct {
	engine *scoring.Engine
}

// NewLocal creates an in-process engine. concurrency bounds the tenants
// scored at once in batch and portfolio calls.
func NewLocal(concurrency int) *Local {
	return &Local{engine: scoring.NewEngine(scoring.WithConcurrency(concurrency))}
}

var _ Engine = (*Local)(nil)

func (l *Local) TenantRisk(_ context.Context, in scoring.TenantRiskInput) (scoring.TenantRiskResult, error) {
	return scoring.CalculateTenantRisk(in)
}

func (l *Local) TenantRiskBatch(ctx context.Context, in scoring.TenantRiskBatchInput) ([]scoring.TenantRiskResult, error) {
	return l.engine.TenantRiskBatch(ctx, in)
}

func (l *Local) Creditworthiness(_ context.Context, in scoring.CreditworthinessInput) (scoring.CreditworthinessResult, error) {
	return scoring.CalculateCreditworthiness(in)
}

func (l *Local) CollectionForecast(ctx context.Context, in scoring.CollectionForecastInput) (scoring.CollectionForecastResult, error) {
	return l.engine.CollectionForecast(ctx, in)
}

func (l *Local) PortfolioRisk(ctx context.Context, in scoring.PortfolioRiskInput) (scoring.PortfolioRiskResult, error) {
	return l.engine.PortfolioRisk(ctx, in)
}

func (l *Local) PortfolioSummary(ctx context.Context, in scoring.PortfolioSummaryInput) (scoring.PortfolioSummary, error) {
	return l.engine.PortfolioSummary(ctx, in)
}

func (l *Local) Desirability(_ context.Context, in scoring.DesirabilityInput) (scoring.DesirabilityResult, error) {
	return scoring.CalculateDesirability(in)
}

func (l *Local) Negotiation(_ context.Context, in scoring.NegotiationInput) (scoring.NegotiationResult, error) {
	return scoring.CalculateNegotiation(in)
}

func (l *Local) RenterScore(_ context.Context, in scoring.RenterScoreInput) (scoring.RenterScoreResult, error) {
	return scoring.CalculateRenterScore(in)
}

func (l *Local) DealScore(_ context.Context, in scoring.DealScoreInput) (scoring.DealScoreResult, error) {
	return scoring.CalculateDealScore(in)
}

func (l *Local) LeverageScore(_ context.Context, in scoring.LeverageScoreInput) (scoring.LeverageScoreResult, error) {
	return scoring.CalculateLeverageScore(in)
}

func (l *Local) RenewalStrategy(_ context.Context, in scoring.RenewalStrategyInput) (scoring.RenewalStrategyResult, error) {
	return scoring.CalculateRenewalStrategy(in)
}
