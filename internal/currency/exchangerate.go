package currency

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"winrate/internal/logger"
	"winrate/internal/ratelimit"
)

// DefaultBaseURL is the public exchangerate-api endpoint
const DefaultBaseURL = "https://api.exchangerate-api.com/v4"

// ExchangeRateAPI implements Provider on top of exchangerate-api.com
type ExchangeRateAPI struct {
	client  *resty.Client
	limiter *ratelimit.Limiter
	log     *logger.Logger
}

type latestResponse struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

// NewExchangeRateAPI creates a client for baseURL (DefaultBaseURL when empty)
func NewExchangeRateAPI(baseURL string, timeout time.Duration, perMinute int, log *logger.Logger) *ExchangeRateAPI {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = logger.Nop()
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &ExchangeRateAPI{
		client:  client,
		limiter: ratelimit.NewLimiter("exchangerate-api", perMinute),
		log:     log.Named("rates").With(zap.String("base_url", baseURL)),
	}
}

// Name returns the provider name
func (p *ExchangeRateAPI) Name() string {
	return "exchangerate-api"
}

// Rate fetches the latest table for base and picks target from it
func (p *ExchangeRateAPI) Rate(ctx context.Context, base, target string) (float64, error) {
	base, target = Normalize(base), Normalize(target)
	if base == target {
		return 1, nil
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	var data latestResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetPathParam("base", base).
		SetResult(&data).
		ForceContentType("application/json").
		Get("/latest/{base}")
	if err != nil {
		return 0, &ProviderError{Provider: p.Name(), Err: err, Retryable: true}
	}

	switch {
	case resp.StatusCode() == http.StatusTooManyRequests:
		p.limiter.SignalRateLimited()
		p.log.Warn("rate limited", zap.String("limiter", p.limiter.Name()), zap.Duration("backoff", p.limiter.Backoff()))
		return 0, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("rate limited"), Retryable: true}
	case resp.StatusCode() >= http.StatusInternalServerError:
		return 0, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("status %d", resp.StatusCode()), Retryable: true}
	case resp.StatusCode() != http.StatusOK:
		return 0, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("status %d", resp.StatusCode()), Retryable: false}
	}

	p.limiter.ResetBackoff()

	rate, ok := data.Rates[target]
	if !ok || rate <= 0 {
		return 0, &ProviderError{
			Provider: p.Name(),
			Err:      fmt.Errorf("%s/%s: %w", base, target, ErrRateNotFound),
		}
	}

	p.log.Debug("fetched rate",
		zap.String("base", base),
		zap.String("target", target),
		zap.Float64("rate", rate),
		zap.String("date", data.Date))
	return rate, nil
}
