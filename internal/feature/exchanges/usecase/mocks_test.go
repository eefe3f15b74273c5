package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"

	"symbol_backend/internal/feature/exchanges/domain/entity"
)

// mockTableSource is a mock implementation of the TableSource interface.
type mockTableSource struct {
	mu              sync.Mutex
	FetchTablesFunc func(ctx context.Context, url string) ([]entity.SymbolTable, error)
	Calls           int
}

func (m *mockTableSource) FetchTables(ctx context.Context, url string) ([]entity.SymbolTable, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	if m.FetchTablesFunc != nil {
		return m.FetchTablesFunc(ctx, url)
	}
	return nil, errors.New("FetchTablesFunc is not implemented")
}

func (m *mockTableSource) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}

// memoryCache is an in-memory SymbolCache keyed by cache filename.
type memoryCache struct {
	mu            sync.Mutex
	entries       map[string]entity.SymbolTable
	ReadErr       error
	// Stored は設定されていれば加工せずそのまま返す（不正な表の再現用）
	Stored        *entity.SymbolTable
	WriteErr      error
	Writes        int
	Invalidations int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]entity.SymbolTable{}}
}

func (c *memoryCache) Read(_ context.Context, p entity.ExchangeProfile) (entity.SymbolTable, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ReadErr != nil {
		return entity.SymbolTable{}, false, c.ReadErr
	}
	if c.Stored != nil {
		return *c.Stored, true, nil
	}
	t, ok := c.entries[p.CacheFilename]
	if !ok {
		return entity.SymbolTable{}, false, nil
	}
	return t.Clone(), true, nil
}

func (c *memoryCache) Write(_ context.Context, p entity.ExchangeProfile, t entity.SymbolTable) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Writes++
	if c.WriteErr != nil {
		return c.WriteErr
	}
	c.entries[p.CacheFilename] = t.Clone()
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context, p entity.ExchangeProfile) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Invalidations++
	delete(c.entries, p.CacheFilename)
	return nil
}

// mockChecker accepts the tickers in valid.
type mockChecker struct {
	mu      sync.Mutex
	valid   map[string]bool
	Checked []string
}

func newMockChecker(valid ...string) *mockChecker {
	m := &mockChecker{valid: map[string]bool{}}
	for _, v := range valid {
		m.valid[v] = true
	}
	return m
}

func (m *mockChecker) Exists(_ context.Context, ticker string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Checked = append(m.Checked, ticker)
	return m.valid[ticker]
}

func (m *mockChecker) checked() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Checked...)
}

// mockTickerLookup is a mock implementation of the TickerLookup interface.
type mockTickerLookup struct {
	LookupTickerFunc func(ctx context.Context, symbol string) (*entity.TickerInfo, error)
	Calls            int
}

func (m *mockTickerLookup) LookupTicker(ctx context.Context, symbol string) (*entity.TickerInfo, error) {
	m.Calls++
	if m.LookupTickerFunc != nil {
		return m.LookupTickerFunc(ctx, symbol)
	}
	return nil, nil
}

// mockRateLimiter is a mock implementation of the RateLimiterInterface.
type mockRateLimiter struct {
	WaitIfNeededCalls int
	Err               error
}

func (m *mockRateLimiter) WaitIfNeeded(context.Context) error {
	m.WaitIfNeededCalls++
	return m.Err
}

// lockedBuffer is a bytes.Buffer safe for concurrent log writes.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newCaptureLogger() (*slog.Logger, *lockedBuffer) {
	buf := &lockedBuffer{}
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}
