package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/rentscore/rentscore/pkg/scoring"
)

// ErrRemote marks a failure talking to a remote engine.
var ErrRemote = eris.New("remote engine failure")

// Remote calls a rentscored instance over HTTP. It posts to
// {baseURL}/api/v1/calculators/{name} and unwraps the response envelope.
type Remote struct {
	baseURL    string
	httpClient *http.Client
}

// NewRemote creates a remote engine.
func NewRemote(baseURL string, timeout time.Duration) *Remote {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Remote{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

var _ Engine = (*Remote)(nil)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func post[T any](ctx context.Context, r *Remote, name string, in any) (T, error) {
	var zero T

	body, err := json.Marshal(in)
	if err != nil {
		return zero, eris.Wrap(err, "marshal request")
	}
	url := fmt.Sprintf("%s/api/v1/calculators/%s", r.baseURL, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return zero, eris.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return zero, eris.Wrapf(ErrRemote, "post %s: %v", name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return zero, eris.Wrapf(ErrRemote, "read %s response: %v", name, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return zero, eris.Wrapf(ErrRemote, "decode %s response (status %d): %v", name, resp.StatusCode, err)
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return zero, eris.Wrap(scoring.ErrInvalidInput, strings.TrimSuffix(env.Error, ": invalid input"))
	case resp.StatusCode != http.StatusOK || !env.Success:
		return zero, eris.Wrapf(ErrRemote, "%s returned status %d: %s", name, resp.StatusCode, env.Error)
	}

	var out T
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return zero, eris.Wrapf(ErrRemote, "decode %s result: %v", name, err)
	}
	return out, nil
}

func (r *Remote) TenantRisk(ctx context.Context, in scoring.TenantRiskInput) (scoring.TenantRiskResult, error) {
	return post[scoring.TenantRiskResult](ctx, r, scoring.CalcTenantRisk, in)
}

func (r *Remote) TenantRiskBatch(ctx context.Context, in scoring.TenantRiskBatchInput) ([]scoring.TenantRiskResult, error) {
	return post[[]scoring.TenantRiskResult](ctx, r, scoring.CalcTenantRiskBatch, in)
}

func (r *Remote) Creditworthiness(ctx context.Context, in scoring.CreditworthinessInput) (scoring.CreditworthinessResult, error) {
	return post[scoring.CreditworthinessResult](ctx, r, scoring.CalcCreditworthiness, in)
}

func (r *Remote) CollectionForecast(ctx context.Context, in scoring.CollectionForecastInput) (scoring.CollectionForecastResult, error) {
	return post[scoring.CollectionForecastResult](ctx, r, scoring.CalcCollectionForecast, in)
}

func (r *Remote) PortfolioRisk(ctx context.Context, in scoring.PortfolioRiskInput) (scoring.PortfolioRiskResult, error) {
	return post[scoring.PortfolioRiskResult](ctx, r, scoring.CalcPortfolioRisk, in)
}

func (r *Remote) PortfolioSummary(ctx context.Context, in scoring.PortfolioSummaryInput) (scoring.PortfolioSummary, error) {
	return post[scoring.PortfolioSummary](ctx, r, scoring.CalcPortfolioSummary, in)
}

func (r *Remote) Desirability(ctx context.Context, in scoring.DesirabilityInput) (scoring.DesirabilityResult, error) {
	return post[scoring.DesirabilityResult](ctx, r, scoring.CalcDesirability, in)
}

func (r *Remote) Negotiation(ctx context.Context, in scoring.NegotiationInput) (scoring.NegotiationResult, error) {
	return post[scoring.NegotiationResult](ctx, r, scoring.CalcNegotiation, in)
}

func (r *Remote) RenterScore(ctx context.Context, in scoring.RenterScoreInput) (scoring.RenterScoreResult, error) {
	return post[scoring.RenterScoreResult](ctx, r, scoring.CalcRenterScore, in)
}

func (r *Remote) DealScore(ctx context.Context, in scoring.DealScoreInput) (scoring.DealScoreResult, error) {
	return post[scoring.DealScoreResult](ctx, r, scoring.CalcDealScore, in)
}

func (r *Remote) LeverageScore(ctx context.Context, in scoring.LeverageScoreInput) (scoring.LeverageScoreResult, error) {
	return post[scoring.LeverageScoreResult](ctx, r, scoring.CalcLeverageScore, in)
}

func (r *Remote) RenewalStrategy(ctx context.Context, in scoring.RenewalStrategyInput) (scoring.RenewalStrategyResult, error) {
	return post[scoring.RenewalStrategyResult](ctx, r, scoring.CalcRenewalStrategy, in)
}
