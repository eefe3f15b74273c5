package di

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"gorm.io/gorm"

	"symbol_backend/internal/app/config"
	"symbol_backend/internal/feature/exchanges/adapters/breaker"
	"symbol_backend/internal/feature/exchanges/adapters/wikitable"
	"symbol_backend/internal/feature/exchanges/usecase"
	symbolentity "symbol_backend/internal/feature/symbollist/domain/entity"
	"symbol_backend/internal/platform/db"
	infrahttp "symbol_backend/internal/platform/http"
	"symbol_backend/internal/platform/http/handler"
	"symbol_backend/internal/platform/paths"
	infraredis "symbol_backend/internal/platform/redis"
	"symbol_backend/internal/shared/ratelimiter"
)

// Pipeline bundles the wired symbol-acquisition components.
type Pipeline struct {
	Config   config.Config
	Layout   paths.Layout
	Registry *usecase.Registry
	Breaker  *breaker.Lookup
	Redis    *redis.Client // nil when Redis is not configured or unreachable
	DB       *gorm.DB      // nil when no database driver is configured

	closers []func() error
	logger  *slog.Logger
}

// Options overrides parts of the wiring, mainly for tests and the CLI.
type Options struct {
	Fs       afero.Fs             // defaults to the OS filesystem
	Source   usecase.TableSource  // defaults to the wikitable source
	Lookup   usecase.TickerLookup // bypasses the configured provider and breaker
	Database bool                 // open the database when a driver is configured
}

// NewPipeline は設定からパイプライン全体を組み立てます。
// Redis に接続できない場合はキャッシュなしで続行します。
func NewPipeline(ctx context.Context, cfg config.Config, opts Options, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{Config: cfg, Layout: paths.NewLayout(cfg.DataDir), logger: logger}

	profiles, err := cfg.BuildProfiles()
	if err != nil {
		return nil, err
	}

	fsys := opts.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if err := p.Layout.Ensure(fsys); err != nil {
		return nil, err
	}

	// Redis
	if cfg.Redis.Addr != "" {
		rdb, err := infraredis.NewRedisClient(ctx, infraredis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logger.Warn("Redis unavailable. Running without shared cache.", "error", err)
		} else {
			p.Redis = rdb
			p.closers = append(p.closers, rdb.Close)
		}
	}

	// Source
	source := opts.Source
	if source == nil {
		source = wikitable.NewSource(infrahttp.NewHTTPClient(cfg.HTTP.Timeout), cfg.HTTP.UserAgent, logger)
	}

	// Validator
	lookup := opts.Lookup
	if lookup == nil {
		b, err := NewTickerLookup(cfg, logger)
		if err != nil {
			p.Close()
			return nil, err
		}
		p.Breaker = b
		lookup = b
	}
	limiter := ratelimiter.NewIntervalLimiter(cfg.Validator.Delay).WithLogger(logger)
	validator := usecase.NewTickerValidator(lookup, limiter, logger)

	policy := usecase.RevalidateNever
	if cfg.Validator.RevalidateCached {
		policy = usecase.RevalidateOnRead
	}
	symbolCache, err := NewSymbolCache(fsys, p.Layout.Raw, p.Redis, cfg.Redis, logger)
	if err != nil {
		p.Close()
		return nil, err
	}
	fetcher := usecase.NewSymbolFetcher(source, symbolCache, validator, policy, logger)

	registry, err := usecase.NewRegistry(profiles, fetcher,
		usecase.WithConcurrency(cfg.Batch.Concurrency),
		usecase.WithLogger(logger),
	)
	if err != nil {
		p.Close()
		return nil, err
	}
	p.Registry = registry

	// DB
	if opts.Database && cfg.Database.Driver != "" {
		gdb, err := OpenDatabase(cfg.Database)
		if err != nil {
			p.Close()
			return nil, err
		}
		p.DB = gdb
		if sqlDB, err := gdb.DB(); err == nil {
			p.closers = append(p.closers, sqlDB.Close)
		}
	}

	return p, nil
}

// OpenDatabase connects with the configured driver and migrates the symbol table.
func OpenDatabase(c config.DatabaseConfig) (*gorm.DB, error) {
	gdb, err := db.Open(db.Config{
		Driver:       c.Driver,
		Path:         c.Path,
		User:         c.User,
		Password:     c.Password,
		Name:         c.Name,
		Host:         c.Host,
		Port:         c.Port,
		InstanceName: c.InstanceName,
		Timeout:      c.Timeout,
	}, &symbolentity.Symbol{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return gdb, nil
}

// HealthChecks returns a check for every optional dependency that is wired.
func (p *Pipeline) HealthChecks() []handler.HealthCheck {
	var checks []handler.HealthCheck
	if p.Redis != nil {
		checks = append(checks, handler.HealthCheck{Name: "redis", Check: func(ctx context.Context) error {
			return p.Redis.Ping(ctx).Err()
		}})
	}
	if p.DB != nil {
		checks = append(checks, handler.HealthCheck{Name: "database", Check: func(ctx context.Context) error {
			sqlDB, err := p.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}})
	}
	if p.Breaker != nil {
		checks = append(checks, handler.HealthCheck{Name: "validator", Check: func(context.Context) error {
			if p.Breaker.State() == "open" {
				return errors.New("circuit breaker open")
			}
			return nil
		}})
	}
	return checks
}

// Close releases every resource opened by NewPipeline.
func (p *Pipeline) Close() {
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i](); err != nil {
			p.logger.Error("failed to close resource", "error", err)
		}
	}
	p.closers = nil
}
