package scoring

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Engine runs the multi-tenant calculators. Tenants are scored in parallel
// and results keep input order.
type Engine struct {
	concurrency int
}

// Option configures an Engine.
type Option func(*Engine)

// WithConcurrency bounds the number of tenants scored at once. Values below
// one fall back to GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// NewEngine creates an engine with the given options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{concurrency: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// TenantRiskBatchInput is the body of a batch tenant risk request.
type TenantRiskBatchInput struct {
	Tenants []TenantRiskInput `json:"tenants"`
}

// TenantRiskBatch scores every tenant independently. result[i] corresponds
// to in.Tenants[i].
func (e *Engine) TenantRiskBatch(ctx context.Context, in TenantRiskBatchInput) ([]TenantRiskResult, error) {
	if len(in.Tenants) == 0 {
		return nil, InvalidField("tenants", "must not be empty")
	}
	return e.scoreTenants(ctx, in.Tenants)
}

// scoreTenants validates every tenant in order, so the first invalid record
// is the one reported, then scores them in parallel.
func (e *Engine) scoreTenants(ctx context.Context, tenants []TenantRiskInput) ([]TenantRiskResult, error) {
	for i, t := range tenants {
		if err := t.Validate(); err != nil {
			return nil, indexed("tenants", i, err)
		}
	}

	results := make([]TenantRiskResult, len(tenants))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i := range tenants {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := CalculateTenantRisk(tenants[i])
			if err != nil {
				return indexed("tenants", i, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
