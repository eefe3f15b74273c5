package di

import (
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"

	"symbol_backend/internal/app/config"
	"symbol_backend/internal/feature/exchanges/adapters/filecache"
	"symbol_backend/internal/feature/exchanges/domain"
	"symbol_backend/internal/feature/exchanges/usecase"
	"symbol_backend/internal/platform/cache"
)

// NewSymbolCache creates a SymbolCache implementation.
// The CSV file store under dir is always the source of truth.
// If Redis is available, it is layered in front of the file store and checks the
// file's stamp on every read.
func NewSymbolCache(fsys afero.Fs, dir string, rdb *redis.Client, rc config.RedisConfig, logger *slog.Logger) (usecase.SymbolCache, error) {
	store := filecache.NewStore(fsys, dir, logger)
	if rdb == nil {
		return store, nil
	}

	c := cache.NewCachingSymbolCache(rdb, rc.TTL, store, rc.Namespace)
	if rc.ResetAt != "" {
		ttl, err := cache.ParseDailyReset(rc.ResetAt, rc.Timezone)
		if err != nil {
			return nil, fmt.Errorf("%w: redis.reset_at: %v", domain.ErrConfiguration, err)
		}
		c.WithTTLFunc(ttl)
	}
	return c, nil
}
