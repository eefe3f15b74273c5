// Package yahoo resolves tickers against Yahoo Finance through piquette/finance-go.
package yahoo

import (
	"context"
	"fmt"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/quote"

	"symbol_backend/internal/feature/exchanges/domain/entity"
	"symbol_backend/internal/feature/exchanges/usecase"
)

// QuoteFunc fetches a single quote. It returns (nil, nil) when the symbol is unknown.
type QuoteFunc func(symbol string) (*finance.Quote, error)

// Lookup is a TickerLookup backed by the Yahoo Finance quote endpoint.
type Lookup struct {
	get QuoteFunc
}

var _ usecase.TickerLookup = (*Lookup)(nil)

// NewLookup returns a Lookup using quote.Get. Pass a non-nil get to replace the backend.
func NewLookup(get QuoteFunc) *Lookup {
	if get == nil {
		get = quote.Get
	}
	return &Lookup{get: get}
}

// LookupTicker returns the metadata of symbol, or nil when Yahoo does not know it.
// The finance-go client has no context support, so cancellation abandons the
// in-flight request instead of aborting it.
func (l *Lookup) LookupTicker(ctx context.Context, symbol string) (*entity.TickerInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type result struct {
		q   *finance.Quote
		err error
	}
	ch := make(chan result, 1)
	go func() {
		q, err := l.get(symbol)
		ch <- result{q: q, err: err}
	}()

	var r result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r = <-ch:
	}

	if r.err != nil {
		return nil, fmt.Errorf("yahoo quote %s: %w", symbol, r.err)
	}
	if r.q == nil || r.q.Symbol == "" {
		return nil, nil
	}

	name := r.q.ShortName
	if name == "" {
		name = r.q.LongName
	}
	return &entity.TickerInfo{
		Symbol:   r.q.Symbol,
		Name:     name,
		Exchange: r.q.FullExchangeName,
		Currency: r.q.CurrencyID,
	}, nil
}
