// Package di provides dependency injection factories for creating application components.
package di

import (
	"fmt"
	"log/slog"
	"strings"

	"symbol_backend/internal/app/config"
	"symbol_backend/internal/feature/exchanges/adapters/breaker"
	"symbol_backend/internal/feature/exchanges/adapters/twelvedata"
	"symbol_backend/internal/feature/exchanges/adapters/yahoo"
	"symbol_backend/internal/feature/exchanges/domain"
	"symbol_backend/internal/feature/exchanges/usecase"
	infrahttp "symbol_backend/internal/platform/http"
)

// 対応する銘柄照会プロバイダー
const (
	ProviderYahoo      = "yahoo"
	ProviderTwelveData = "twelvedata"
)

// NewTickerLookup creates the configured provider lookup wrapped in a circuit breaker.
func NewTickerLookup(cfg config.Config, logger *slog.Logger) (*breaker.Lookup, error) {
	var (
		inner usecase.TickerLookup
		name  string
	)
	switch strings.ToLower(cfg.Validator.Provider) {
	case "", ProviderYahoo:
		inner, name = yahoo.NewLookup(nil), ProviderYahoo
	case ProviderTwelveData:
		if cfg.TwelveData.APIKey == "" {
			return nil, fmt.Errorf("%w: twelvedata.api_key is required", domain.ErrConfiguration)
		}
		inner, name = newTwelveData(cfg.TwelveData), ProviderTwelveData
	default:
		return nil, fmt.Errorf("%w: unknown validator provider %q", domain.ErrConfiguration, cfg.Validator.Provider)
	}

	bc := breaker.DefaultConfig(name)
	if cfg.Validator.BreakerThreshold > 0 {
		bc.ReadyToTrip = cfg.Validator.BreakerThreshold
	}
	if cfg.Validator.BreakerTimeout > 0 {
		bc.Timeout = cfg.Validator.BreakerTimeout
	}
	return breaker.NewLookup(inner, bc, logger), nil
}

// newTwelveData creates a fully configured Twelve Data lookup with its own HTTP client.
func newTwelveData(c config.TwelveDataConfig) *twelvedata.TwelveDataLookup {
	tc := twelvedata.Config{APIKey: c.APIKey, BaseURL: c.BaseURL, Timeout: c.Timeout}
	return twelvedata.NewTwelveDataLookup(tc, infrahttp.NewHTTPClient(tc.Timeout))
}
