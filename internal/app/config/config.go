// Package config loads application settings with viper.
// Values come from config.yaml in the config directory, then SYMBOLS_* environment
// variables (dots become underscores), then the defaults below.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"symbol_backend/internal/feature/exchanges/domain"
	"symbol_backend/internal/feature/exchanges/domain/entity"
)

// EnvPrefix is the prefix of every environment override, e.g. SYMBOLS_DATA_DIR.
const EnvPrefix = "SYMBOLS"

// Config is the root of the application settings.
type Config struct {
	DataDir    string           `mapstructure:"data_dir"`
	Log        LogConfig        `mapstructure:"log"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Validator  ValidatorConfig  `mapstructure:"validator"`
	TwelveData TwelveDataConfig `mapstructure:"twelvedata"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Server     ServerConfig     `mapstructure:"server"`
	Batch      BatchConfig      `mapstructure:"batch"`
	Exchanges  []ExchangeConfig `mapstructure:"exchanges"`
}

// LogConfig はログ出力の設定です。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Dir        string `mapstructure:"dir"` // 空の場合はファイル出力なし
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// HTTPConfig は外部取得用HTTPクライアントの設定です。
type HTTPConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// ValidatorConfig controls ticker validation.
type ValidatorConfig struct {
	Provider         string        `mapstructure:"provider"` // "yahoo" or "twelvedata"
	Delay            time.Duration `mapstructure:"delay"`
	RevalidateCached bool          `mapstructure:"revalidate_cached"`
	BreakerThreshold uint32        `mapstructure:"breaker_threshold"`
	BreakerTimeout   time.Duration `mapstructure:"breaker_timeout"`
}

// TwelveDataConfig holds the Twelve Data API settings.
type TwelveDataConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// RedisConfig は共有キャッシュの設定です。Addr が空の場合は使用しません。
type RedisConfig struct {
	Addr      string        `mapstructure:"addr"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	TTL       time.Duration `mapstructure:"ttl"`
	ResetAt   string        `mapstructure:"reset_at"` // "HH:MM"; overrides TTL when set
	Timezone  string        `mapstructure:"timezone"`
	Namespace string        `mapstructure:"namespace"`
}

// DatabaseConfig はDB接続の設定です。Driver が空の場合は永続化を行いません。
type DatabaseConfig struct {
	Driver       string        `mapstructure:"driver"`
	Path         string        `mapstructure:"path"`
	User         string        `mapstructure:"user"`
	Password     string        `mapstructure:"password"`
	Name         string        `mapstructure:"name"`
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	InstanceName string        `mapstructure:"instance_name"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// ServerConfig はHTTP APIサーバーの設定です。
type ServerConfig struct {
	Addr      string        `mapstructure:"addr"`
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
	// 空の場合 CORS ヘッダーを付けない
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// BatchConfig controls FetchAll.
type BatchConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// ExchangeConfig is the file form of an exchange profile.
type ExchangeConfig struct {
	Name         string     `mapstructure:"name"`
	URL          string     `mapstructure:"url"`
	Table        int        `mapstructure:"table"`
	TickerColumn string     `mapstructure:"ticker_column"`
	NameColumn   string     `mapstructure:"name_column"`
	CacheFile    string     `mapstructure:"cache_file"`
	Rule         RuleConfig `mapstructure:"rule"`
}

// RuleConfig selects the ticker rule. Suffix and Patterns are mutually exclusive;
// with neither set the rule appends nothing.
type RuleConfig struct {
	Suffix   string          `mapstructure:"suffix"`
	Patterns []PatternConfig `mapstructure:"patterns"`
}

// PatternConfig is one rewrite case.
type PatternConfig struct {
	Pattern     string `mapstructure:"pattern"`
	Replacement string `mapstructure:"replacement"`
}

// Load reads <dir>/.env and <dir>/config.yaml when present, applies environment overrides and defaults.
// dir may be empty, in which case only the environment and defaults are used.
func Load(dir string, logger *slog.Logger) (Config, error) {
	if logger == nil {
		logger = slog.Default()
	}

	envFile := ".env"
	if dir != "" {
		envFile = filepath.Join(dir, ".env")
	}
	// .envを読み込む
	if err := godotenv.Load(envFile); err != nil {
		logger.Debug(".env not found; using system environment variables", "path", envFile)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if dir != "" {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("%w: read config: %v", domain.ErrConfiguration, err)
			}
			logger.Info("config file not found; using defaults", "dir", dir)
		} else {
			logger.Info("config loaded", "file", v.ConfigFileUsed())
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: decode config: %v", domain.ErrConfiguration, err)
	}
	if len(cfg.Exchanges) == 0 {
		cfg.Exchanges = DefaultExchanges()
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "data")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.file", "symbols.log")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 5)

	v.SetDefault("http.timeout", 30*time.Second)
	v.SetDefault("http.user_agent", "")

	v.SetDefault("validator.provider", "yahoo")
	v.SetDefault("validator.delay", 100*time.Millisecond)
	v.SetDefault("validator.revalidate_cached", false)
	v.SetDefault("validator.breaker_threshold", 5)
	v.SetDefault("validator.breaker_timeout", 30*time.Second)

	v.SetDefault("twelvedata.api_key", "")
	v.SetDefault("twelvedata.base_url", "https://api.twelvedata.com")
	v.SetDefault("twelvedata.timeout", 10*time.Second)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 0)
	v.SetDefault("redis.reset_at", "")
	v.SetDefault("redis.timezone", "UTC")
	v.SetDefault("redis.namespace", "symbols")

	v.SetDefault("database.driver", "")
	v.SetDefault("database.path", "")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "")
	v.SetDefault("database.instance_name", "")
	v.SetDefault("database.timeout", 60*time.Second)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.jwt_secret", "")
	v.SetDefault("server.token_ttl", 24*time.Hour)
	v.SetDefault("server.cors_origins", []string{})

	v.SetDefault("batch.concurrency", 1)
}

// BuildRule converts a RuleConfig into a ticker rule.
func (r RuleConfig) BuildRule() (entity.TickerRule, error) {
	if len(r.Patterns) == 0 {
		return entity.Suffix(r.Suffix), nil
	}
	if r.Suffix != "" {
		return nil, fmt.Errorf("%w: rule sets both suffix and patterns", domain.ErrConfiguration)
	}
	cases := make([]entity.RewriteCase, 0, len(r.Patterns))
	for _, p := range r.Patterns {
		cases = append(cases, entity.RewriteCase{Pattern: p.Pattern, Replacement: p.Replacement})
	}
	return entity.NewRoutingRule(cases...)
}

// BuildProfiles validates every exchange entry and returns the profiles in order.
func (c Config) BuildProfiles() ([]entity.ExchangeProfile, error) {
	out := make([]entity.ExchangeProfile, 0, len(c.Exchanges))
	for _, e := range c.Exchanges {
		rule, err := e.Rule.BuildRule()
		if err != nil {
			return nil, fmt.Errorf("exchange %s: %w", e.Name, err)
		}
		p, err := entity.NewExchangeProfile(e.Name, e.URL, e.Table, e.TickerColumn, e.CacheFile, rule)
		if err != nil {
			return nil, err
		}
		out = append(out, p.WithNameColumn(e.NameColumn))
	}
	return out, nil
}
