// Package entity defines the domain models for the exchanges feature.
package entity

import (
	"fmt"
	"path/filepath"
	"strings"

	"symbol_backend/internal/feature/exchanges/domain"
)

// ExchangeProfile describes where an exchange's constituent table lives and how
// its ticker cells are rewritten. Profiles are built once and never mutated.
type ExchangeProfile struct {
	Name          string     // Unique identifier (e.g., "FTSE_100")
	SourceURL     string     // Page holding the constituent table
	TableIndex    int        // 0-based index among all tables parsed from the page
	TickerColumn  string     // Column holding the raw ticker text
	NameColumn    string     // Optional company-name column, aligned with the tickers
	CacheFilename string     // File name of the cached table under the raw-data directory
	Rule          TickerRule // Ticker rewrite applied before validation
}

// NewExchangeProfile builds a validated profile.
func NewExchangeProfile(name, sourceURL string, tableIndex int, tickerColumn, cacheFilename string, rule TickerRule) (ExchangeProfile, error) {
	p := ExchangeProfile{
		Name:          name,
		SourceURL:     sourceURL,
		TableIndex:    tableIndex,
		TickerColumn:  tickerColumn,
		CacheFilename: cacheFilename,
		Rule:          rule,
	}
	if err := p.Validate(); err != nil {
		return ExchangeProfile{}, err
	}
	return p, nil
}

// WithNameColumn returns a copy of p that reads company names from column.
func (p ExchangeProfile) WithNameColumn(column string) ExchangeProfile {
	p.NameColumn = column
	return p
}

// Validate reports whether p is usable. All failures wrap domain.ErrConfiguration.
func (p ExchangeProfile) Validate() error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("%w: exchange name is required", domain.ErrConfiguration)
	case strings.TrimSpace(p.SourceURL) == "":
		return fmt.Errorf("%w: %s: source url is required", domain.ErrConfiguration, p.Name)
	case p.TableIndex < 0:
		return fmt.Errorf("%w: %s: table index %d is negative", domain.ErrConfiguration, p.Name, p.TableIndex)
	case strings.TrimSpace(p.TickerColumn) == "":
		return fmt.Errorf("%w: %s: ticker column is required", domain.ErrConfiguration, p.Name)
	case p.CacheFilename == "" || filepath.Base(p.CacheFilename) != p.CacheFilename || p.CacheFilename == "." || p.CacheFilename == "..":
		return fmt.Errorf("%w: %s: cache filename %q must be a bare file name", domain.ErrConfiguration, p.Name, p.CacheFilename)
	case p.Rule == nil:
		return fmt.Errorf("%w: %s: ticker rule is required", domain.ErrConfiguration, p.Name)
	}
	return nil
}
