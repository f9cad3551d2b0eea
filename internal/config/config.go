// Package config loads readersrealm settings from defaults, an optional YAML
// file and READERSREALM_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// READERSREALM_SERVER_ADDR for server.addr.
const EnvPrefix = "READERSREALM"

// Config is the full application configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	OpenLibrary OpenLibraryConfig `mapstructure:"openlibrary"`
	NLP         NLPConfig         `mapstructure:"nlp"`
	Recommend   RecommendConfig   `mapstructure:"recommend"`
	Catalog     CatalogConfig     `mapstructure:"catalog"`
	Log         LogConfig         `mapstructure:"log"`
}

type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
}

type OpenLibraryConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	CoversURL         string        `mapstructure:"covers_url"`
	UserAgent         string        `mapstructure:"user_agent"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	MaxRetries        int           `mapstructure:"max_retries"`
	BreakerFailures   uint32        `mapstructure:"breaker_failures"`
	BreakerTimeout    time.Duration `mapstructure:"breaker_timeout"`
}

type NLPConfig struct {
	// Extractor is "heuristic" or "prose".
	Extractor       string  `mapstructure:"extractor"`
	StopwordsFile   string  `mapstructure:"stopwords_file"`
	AuthorThreshold float64 `mapstructure:"author_threshold"`
	GenreThreshold  float64 `mapstructure:"genre_threshold"`
	TopGenres       int     `mapstructure:"top_genres"`
}

type RecommendConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	TopK           int  `mapstructure:"top_k"`
	CandidateLimit int  `mapstructure:"candidate_limit"`
}

type CatalogConfig struct {
	PlaceholderRating float64 `mapstructure:"placeholder_rating"`
	HighestRatedQuery string  `mapstructure:"highest_rated_query"`
	HighestRatedLimit int     `mapstructure:"highest_rated_limit"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// SetDefaults registers every key with its default value.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":5000")
	v.SetDefault("server.read_timeout", "5s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("openlibrary.base_url", "https://openlibrary.org")
	v.SetDefault("openlibrary.covers_url", "https://covers.openlibrary.org")
	v.SetDefault("openlibrary.user_agent", "readersrealm/1.0")
	v.SetDefault("openlibrary.timeout", "10s")
	v.SetDefault("openlibrary.requests_per_second", 5)
	v.SetDefault("openlibrary.max_retries", 2)
	v.SetDefault("openlibrary.breaker_failures", 5)
	v.SetDefault("openlibrary.breaker_timeout", "30s")

	v.SetDefault("nlp.extractor", "heuristic")
	v.SetDefault("nlp.stopwords_file", "")
	v.SetDefault("nlp.author_threshold", 0.85)
	v.SetDefault("nlp.genre_threshold", 0.80)
	v.SetDefault("nlp.top_genres", 5)

	v.SetDefault("recommend.enabled", true)
	v.SetDefault("recommend.top_k", 5)
	v.SetDefault("recommend.candidate_limit", 10)

	v.SetDefault("catalog.placeholder_rating", 4.5)
	v.SetDefault("catalog.highest_rated_query", "fiction")
	v.SetDefault("catalog.highest_rated_limit", 10)

	v.SetDefault("log.level", "info")
}

// Load reads the configuration. With an empty path, config.yaml in the
// working directory is used when it exists; an explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Debug("Config file not found, using defaults and environment")
	} else {
		slog.Debug("Loaded config file", "path", v.ConfigFileUsed())
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the components cannot run with.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Server.Addr != "", "server.addr must be set")
	check(c.Server.ReadTimeout > 0, "server.read_timeout must be positive")
	check(c.Server.WriteTimeout > 0, "server.write_timeout must be positive")

	check(c.OpenLibrary.BaseURL != "", "openlibrary.base_url must be set")
	check(c.OpenLibrary.Timeout > 0, "openlibrary.timeout must be positive")
	check(c.OpenLibrary.RequestsPerSecond >= 0, "openlibrary.requests_per_second must not be negative")
	check(c.OpenLibrary.MaxRetries >= 0, "openlibrary.max_retries must not be negative")
	check(c.OpenLibrary.BreakerFailures > 0, "openlibrary.breaker_failures must be positive")
	check(c.OpenLibrary.BreakerTimeout > 0, "openlibrary.breaker_timeout must be positive")

	check(c.NLP.Extractor == "prose" || c.NLP.Extractor == "heuristic",
		"nlp.extractor must be prose or heuristic, got %q", c.NLP.Extractor)
	check(inUnitInterval(c.NLP.AuthorThreshold), "nlp.author_threshold must be in (0, 1], got %v", c.NLP.AuthorThreshold)
	check(inUnitInterval(c.NLP.GenreThreshold), "nlp.genre_threshold must be in (0, 1], got %v", c.NLP.GenreThreshold)
	check(c.NLP.TopGenres > 0, "nlp.top_genres must be positive")

	check(c.Recommend.TopK > 0, "recommend.top_k must be positive")
	check(c.Recommend.CandidateLimit > 0, "recommend.candidate_limit must be positive")

	check(c.Catalog.PlaceholderRating >= 0, "catalog.placeholder_rating must not be negative")
	check(c.Catalog.HighestRatedLimit > 0, "catalog.highest_rated_limit must be positive")

	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// SlogLevel parses the configured level name.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

func inUnitInterval(v float64) bool {
	return v > 0 && v <= 1
}
