package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"symbol_backend/internal/feature/exchanges/domain/entity"
	"symbol_backend/internal/feature/exchanges/usecase"
)

func TestTickerValidator_Exists(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		ticker      string
		lookup      func(ctx context.Context, symbol string) (*entity.TickerInfo, error)
		want        bool
		wantLookups int
		wantLog     string
	}{
		{
			name:   "success: metadata found",
			ticker: "BARC.L",
			lookup: func(_ context.Context, symbol string) (*entity.TickerInfo, error) {
				return &entity.TickerInfo{Symbol: symbol, Name: "Barclays PLC"}, nil
			},
			want:        true,
			wantLookups: 1,
		},
		{
			name:   "not found: nil metadata",
			ticker: "NOPE.L",
			lookup: func(context.Context, string) (*entity.TickerInfo, error) {
				return nil, nil
			},
			want:        false,
			wantLookups: 1,
		},
		{
			name:   "lookup error becomes false and is logged",
			ticker: "ERR.L",
			lookup: func(context.Context, string) (*entity.TickerInfo, error) {
				return nil, errors.New("provider timeout")
			},
			want:        false,
			wantLookups: 1,
			wantLog:     "ticker=ERR.L",
		},
		{
			name:        "empty ticker is rejected without lookup",
			ticker:      "",
			want:        false,
			wantLookups: 0,
		},
		{
			name:        "sentinel is rejected without lookup",
			ticker:      entity.InvalidTicker,
			want:        false,
			wantLookups: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			lookup := &mockTickerLookup{LookupTickerFunc: tt.lookup}
			limiter := &mockRateLimiter{}
			logger, logs := newCaptureLogger()
			v := usecase.NewTickerValidator(lookup, limiter, logger)

			got := v.Exists(context.Background(), tt.ticker)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantLookups, lookup.Calls)
			assert.Equal(t, tt.wantLookups, limiter.WaitIfNeededCalls, "every lookup waits on the limiter")
			if tt.wantLog != "" {
				assert.Contains(t, logs.String(), tt.wantLog)
				assert.Equal(t, 1, strings.Count(logs.String(), "level=ERROR"))
			} else {
				assert.NotContains(t, logs.String(), "level=ERROR")
			}
		})
	}
}

func TestTickerValidator_LimiterCancelled(t *testing.T) {
	t.Parallel()

	lookup := &mockTickerLookup{}
	v := usecase.NewTickerValidator(lookup, &mockRateLimiter{Err: context.Canceled}, nil)

	assert.False(t, v.Exists(context.Background(), "AAPL"))
	assert.Zero(t, lookup.Calls)
}
