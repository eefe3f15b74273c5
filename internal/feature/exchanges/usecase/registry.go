package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"symbol_backend/internal/feature/exchanges/domain"
	"symbol_backend/internal/feature/exchanges/domain/entity"
)

// ExchangeFetcher is the per-exchange pipeline the registry drives.
type ExchangeFetcher interface {
	Fetch(ctx context.Context, profile entity.ExchangeProfile) (entity.SymbolList, error)
	Refresh(ctx context.Context, profile entity.ExchangeProfile) (entity.SymbolList, error)
	CompanyNames(ctx context.Context, profile entity.ExchangeProfile) ([]string, error)
}

var _ ExchangeFetcher = (*SymbolFetcher)(nil)

// BatchResult holds the outcome of a FetchAll run.
// Every configured exchange has an entry in Symbols; failed ones also appear in Failures.
type BatchResult struct {
	Symbols  map[string]entity.SymbolList
	Failures map[string]error
	order    []string
}

// Names returns the exchange names in configured order.
func (b BatchResult) Names() []string {
	return append([]string(nil), b.order...)
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithConcurrency bounds how many exchanges FetchAll processes at once. Values below 1 mean 1.
func WithConcurrency(n int) RegistryOption {
	return func(r *Registry) {
		if n < 1 {
			n = 1
		}
		r.concurrency = n
	}
}

// WithLogger sets the registry logger.
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Registry owns the configured exchange profiles and dispatches fetches by name.
type Registry struct {
	profiles    []entity.ExchangeProfile
	byName      map[string]int
	fetcher     ExchangeFetcher
	concurrency int
	logger      *slog.Logger
}

// NewRegistry validates profiles and builds a Registry.
// Duplicate names and invalid profiles fail with domain.ErrConfiguration.
func NewRegistry(profiles []entity.ExchangeProfile, fetcher ExchangeFetcher, opts ...RegistryOption) (*Registry, error) {
	r := &Registry{
		profiles:    make([]entity.ExchangeProfile, 0, len(profiles)),
		byName:      make(map[string]int, len(profiles)),
		fetcher:     fetcher,
		concurrency: 1,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, p := range profiles {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.byName[p.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate exchange name %q", domain.ErrConfiguration, p.Name)
		}
		r.byName[p.Name] = len(r.profiles)
		r.profiles = append(r.profiles, p)
	}
	return r, nil
}

// Profiles returns the configured profiles in order.
func (r *Registry) Profiles() []entity.ExchangeProfile {
	return append([]entity.ExchangeProfile(nil), r.profiles...)
}

// Names returns the configured exchange names in order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p.Name)
	}
	return out
}

// Profile looks up a profile by name.
func (r *Registry) Profile(name string) (entity.ExchangeProfile, error) {
	i, ok := r.byName[name]
	if !ok {
		return entity.ExchangeProfile{}, fmt.Errorf("%w: %q", domain.ErrUnknownExchange, name)
	}
	return r.profiles[i], nil
}

// FetchOne runs the pipeline for a single exchange.
func (r *Registry) FetchOne(ctx context.Context, name string) (entity.SymbolList, error) {
	p, err := r.Profile(name)
	if err != nil {
		return entity.SymbolList{}, err
	}
	return r.fetcher.Fetch(ctx, p)
}

// Refresh drops the cached table of an exchange and fetches it again.
func (r *Registry) Refresh(ctx context.Context, name string) (entity.SymbolList, error) {
	p, err := r.Profile(name)
	if err != nil {
		return entity.SymbolList{}, err
	}
	return r.fetcher.Refresh(ctx, p)
}

// CompanyNames returns the cached company names of an exchange, aligned with its symbol list.
func (r *Registry) CompanyNames(ctx context.Context, name string) ([]string, error) {
	p, err := r.Profile(name)
	if err != nil {
		return nil, err
	}
	return r.fetcher.CompanyNames(ctx, p)
}

// FetchAll runs every configured exchange. A failing exchange gets an empty list
// and an entry in Failures; the rest of the batch continues.
func (r *Registry) FetchAll(ctx context.Context) BatchResult {
	res := BatchResult{
		Symbols:  make(map[string]entity.SymbolList, len(r.profiles)),
		Failures: make(map[string]error),
		order:    r.Names(),
	}

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(r.concurrency)
	for _, p := range r.profiles {
		g.Go(func() error {
			list, err := r.fetcher.Fetch(ctx, p)
			if list == nil {
				list = entity.SymbolList{}
			}

			mu.Lock()
			defer mu.Unlock()
			res.Symbols[p.Name] = list
			if err != nil {
				res.Failures[p.Name] = err
			}
			return nil
		})
	}
	_ = g.Wait()

	r.logger.Info("batch fetch finished", "exchanges", len(r.profiles), "failures", len(res.Failures))
	return res
}
