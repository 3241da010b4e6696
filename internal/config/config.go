package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"

	"marketpulse/internal/aggregate"
)

type Server struct {
	Port              string `mapstructure:"port"`
	RequestTimeoutSec int    `mapstructure:"request_timeout_sec"`
}

type Yahoo struct {
	BaseURL   string `mapstructure:"base_url"`
	UserAgent string `mapstructure:"user_agent"`
	// Cookie and Crumb carry a Yahoo session when the deployment needs one.
	Cookie               string `mapstructure:"cookie"`
	Crumb                string `mapstructure:"crumb"`
	TimeoutSec           int    `mapstructure:"timeout_sec"`
	MaxRequestsPerMinute int    `mapstructure:"max_requests_per_minute"`
	Burst                int    `mapstructure:"burst"`
	MinRequestIntervalMs int    `mapstructure:"min_request_interval_ms"`
	Retries              int    `mapstructure:"retries"`
	RetryBackoffMs       int    `mapstructure:"retry_backoff_ms"`
}

type Aggregate struct {
	MaxConcurrency  int `mapstructure:"max_concurrency"`
	BuildTimeoutSec int `mapstructure:"build_timeout_sec"`
	ScreenerCount   int `mapstructure:"screener_count"`
}

type Auth struct {
	// Tokens are the accepted bearer tokens. Empty leaves the API open.
	Tokens []string `mapstructure:"tokens"`
}

type Log struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type Config struct {
	Server    Server              `mapstructure:"server"`
	Yahoo     Yahoo               `mapstructure:"yahoo"`
	Aggregate Aggregate           `mapstructure:"aggregate"`
	WatchList aggregate.WatchList `mapstructure:"watchlist"`
	Auth      Auth                `mapstructure:"auth"`
	Log       Log                 `mapstructure:"log"`
}

func Default() Config {
	return Config{
		Server: Server{Port: "8080", RequestTimeoutSec: 30},
		Yahoo: Yahoo{
			BaseURL:              "https://query1.finance.yahoo.com",
			UserAgent:            "Mozilla/5.0 (compatible; marketpulse/1.0)",
			TimeoutSec:           8,
			MaxRequestsPerMinute: 120,
			Burst:                20,
			Retries:              1,
			RetryBackoffMs:       250,
		},
		Aggregate: Aggregate{
			MaxConcurrency:  0,
			BuildTimeoutSec: 25,
			ScreenerCount:   aggregate.MaxMovers,
		},
		WatchList: aggregate.DefaultWatchList(),
		Auth:      Auth{Tokens: []string{}},
		Log:       Log{Level: "info"},
	}
}

// Load reads config from path (JSON, YAML or TOML by extension). With an
// empty path it looks for config.* in the working directory. A missing file
// yields defaults. Environment variables override file values: the key with
// dots replaced by underscores (YAHOO_MAX_REQUESTS_PER_MINUTE), plus the
// short aliases bound below.
func Load(path string) (Config, error) {
	def := Default()
	v := viper.New()
	setDefaults(v, def)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return def, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, envs := range aliases {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return def, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return def, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

var aliases = map[string][]string{
	"server.port":                   {"SERVER_PORT", "PORT"},
	"yahoo.max_requests_per_minute": {"YAHOO_MAX_REQUESTS_PER_MINUTE", "YAHOO_MAX_RPM"},
	"yahoo.min_request_interval_ms": {"YAHOO_MIN_REQUEST_INTERVAL_MS", "YAHOO_MIN_INTERVAL_MS"},
	"auth.tokens":                   {"AUTH_TOKENS", "API_TOKENS"},
	"log.level":                     {"LOG_LEVEL"},
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.request_timeout_sec", d.Server.RequestTimeoutSec)

	v.SetDefault("yahoo.base_url", d.Yahoo.BaseURL)
	v.SetDefault("yahoo.user_agent", d.Yahoo.UserAgent)
	v.SetDefault("yahoo.cookie", d.Yahoo.Cookie)
	v.SetDefault("yahoo.crumb", d.Yahoo.Crumb)
	v.SetDefault("yahoo.timeout_sec", d.Yahoo.TimeoutSec)
	v.SetDefault("yahoo.max_requests_per_minute", d.Yahoo.MaxRequestsPerMinute)
	v.SetDefault("yahoo.burst", d.Yahoo.Burst)
	v.SetDefault("yahoo.min_request_interval_ms", d.Yahoo.MinRequestIntervalMs)
	v.SetDefault("yahoo.retries", d.Yahoo.Retries)
	v.SetDefault("yahoo.retry_backoff_ms", d.Yahoo.RetryBackoffMs)

	v.SetDefault("aggregate.max_concurrency", d.Aggregate.MaxConcurrency)
	v.SetDefault("aggregate.build_timeout_sec", d.Aggregate.BuildTimeoutSec)
	v.SetDefault("aggregate.screener_count", d.Aggregate.ScreenerCount)

	v.SetDefault("watchlist.indices", d.WatchList.Indices)
	v.SetDefault("watchlist.sectors", d.WatchList.Sectors)

	v.SetDefault("auth.tokens", d.Auth.Tokens)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.development", d.Log.Development)
}

// Validate rejects settings the service cannot run with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Port) == "" {
		errs = append(errs, errors.New("server.port is empty"))
	}
	if c.Yahoo.BaseURL == "" {
		errs = append(errs, errors.New("yahoo.base_url is empty"))
	}
	if c.Yahoo.Retries < 0 {
		errs = append(errs, fmt.Errorf("yahoo.retries must be >= 0, got %d", c.Yahoo.Retries))
	}
	if c.Aggregate.MaxConcurrency < 0 {
		errs = append(errs, fmt.Errorf("aggregate.max_concurrency must be >= 0, got %d", c.Aggregate.MaxConcurrency))
	}
	if len(c.WatchList.Indices) == 0 && len(c.WatchList.Sectors) == 0 {
		errs = append(errs, errors.New("watchlist has no symbols"))
	}
	for _, s := range append(append([]aggregate.Symbol{}, c.WatchList.Indices...), c.WatchList.Sectors...) {
		if strings.TrimSpace(s.Symbol) == "" {
			errs = append(errs, errors.New("watchlist entry without symbol"))
			break
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
