package breaker_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"symbol_backend/internal/feature/exchanges/adapters/breaker"
	"symbol_backend/internal/feature/exchanges/domain/entity"
)

// mockTickerLookup is a mock implementation of the TickerLookup interface.
type mockTickerLookup struct {
	LookupTickerFunc func(ctx context.Context, symbol string) (*entity.TickerInfo, error)
	Calls            int
}

func (m *mockTickerLookup) LookupTicker(ctx context.Context, symbol string) (*entity.TickerInfo, error) {
	m.Calls++
	return m.LookupTickerFunc(ctx, symbol)
}

func testConfig() breaker.Config {
	cfg := breaker.DefaultConfig("test")
	cfg.ReadyToTrip = 2
	cfg.Timeout = time.Hour
	return cfg
}

func TestLookup_PassesThrough(t *testing.T) {
	t.Parallel()

	next := &mockTickerLookup{LookupTickerFunc: func(_ context.Context, symbol string) (*entity.TickerInfo, error) {
		if symbol == "NOPE" {
			return nil, nil
		}
		return &entity.TickerInfo{Symbol: symbol}, nil
	}}
	l := breaker.NewLookup(next, testConfig(), nil)

	info, err := l.LookupTicker(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", info.Symbol)

	info, err = l.LookupTicker(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.Nil(t, info)
	assert.Equal(t, "closed", l.State())
}

func TestLookup_OpensAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()

	errProvider := errors.New("provider down")
	next := &mockTickerLookup{LookupTickerFunc: func(context.Context, string) (*entity.TickerInfo, error) {
		return nil, errProvider
	}}
	l := breaker.NewLookup(next, testConfig(), nil)

	for i := 0; i < 2; i++ {
		_, err := l.LookupTicker(context.Background(), "AAPL")
		assert.ErrorIs(t, err, errProvider)
	}
	assert.Equal(t, "open", l.State())

	_, err := l.LookupTicker(context.Background(), "AAPL")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, next.Calls, "open breaker does not call the provider")
}

func TestLookup_CallerCancellationDoesNotTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
	}{
		{name: "canceled", err: context.Canceled},
		{name: "deadline exceeded", err: context.DeadlineExceeded},
		{name: "wrapped cancellation", err: fmt.Errorf("quote AAPL: %w", context.Canceled)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			next := &mockTickerLookup{LookupTickerFunc: func(context.Context, string) (*entity.TickerInfo, error) {
				return nil, tt.err
			}}
			l := breaker.NewLookup(next, testConfig(), nil)

			for i := 0; i < 5; i++ {
				_, err := l.LookupTicker(context.Background(), "AAPL")
				assert.ErrorIs(t, err, tt.err, "the error still reaches the caller")
			}
			assert.Equal(t, "closed", l.State())
			assert.Equal(t, 5, next.Calls)
		})
	}
}
