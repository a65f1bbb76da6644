// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Places    PlacesConfig    `mapstructure:"places"`
	Storage   StorageConfig   `mapstructure:"storage"`
	DB        DBConfig        `mapstructure:"db"`
	PubSub    PubSubConfig    `mapstructure:"pubsub"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// AuthConfig defines API authentication toggles.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// DiscoveryConfig governs the discovery loop's defaults and limits.
type DiscoveryConfig struct {
	TargetDefault        int     `mapstructure:"target_default"`
	MaxIterations        int     `mapstructure:"max_iterations"`
	MaxVariations        int     `mapstructure:"max_variations"`
	MinRatingDefault     float64 `mapstructure:"min_rating_default"`
	MaxResultsPerQuery   int     `mapstructure:"max_results_per_query"`
	SearchConcurrency    int     `mapstructure:"search_concurrency"`
	MinSpacingMs         int     `mapstructure:"min_spacing_ms"`
	GeoExpansionAfter    int     `mapstructure:"geo_expansion_after"`
	CostPerSearch        float64 `mapstructure:"cost_per_search"`
	CostPerExpansion     float64 `mapstructure:"cost_per_expansion"`
	MaxCostDefault       float64 `mapstructure:"max_cost_default"`
	RequestTimeoutSecond int     `mapstructure:"request_timeout_seconds"`
}

// OpenAIConfig configures the query-expansion provider.
type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
}

// PlacesConfig configures the entity-search provider.
type PlacesConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Provider     string `mapstructure:"provider"`
	HistoryTable string `mapstructure:"history_table"`
	DedupTable   string `mapstructure:"dedup_table"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	DSN             string `mapstructure:"dsn"`
	MaxConns        int    `mapstructure:"max_conns"`
	MinConns        int    `mapstructure:"min_conns"`
	ConnLifetimeMin int    `mapstructure:"conn_lifetime_minutes"`
}

// PubSubConfig holds metadata for run-completion notifications.
type PubSubConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DISCOVERY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("discovery.target_default", 20)
	v.SetDefault("discovery.max_iterations", 5)
	v.SetDefault("discovery.max_variations", 3)
	v.SetDefault("discovery.min_rating_default", 0)
	v.SetDefault("discovery.max_results_per_query", 20)
	v.SetDefault("discovery.search_concurrency", 2)
	v.SetDefault("discovery.min_spacing_ms", 1000)
	v.SetDefault("discovery.geo_expansion_after", 2)
	v.SetDefault("discovery.cost_per_search", 0.032)
	v.SetDefault("discovery.cost_per_expansion", 0.002)
	v.SetDefault("discovery.max_cost_default", 0)
	v.SetDefault("discovery.request_timeout_seconds", 300)
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.temperature", 0.7)
	v.SetDefault("storage.provider", "postgres")
	v.SetDefault("storage.history_table", "discovery_queries")
	v.SetDefault("storage.dedup_table", "known_entities")
	v.SetDefault("db.max_conns", 8)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Discovery.MaxIterations <= 0 {
		return fmt.Errorf("discovery.max_iterations must be > 0")
	}
	if c.Discovery.MaxVariations <= 0 {
		return fmt.Errorf("discovery.max_variations must be > 0")
	}
	if c.Discovery.SearchConcurrency <= 0 {
		return fmt.Errorf("discovery.search_concurrency must be > 0")
	}
	switch c.Storage.Provider {
	case "postgres":
		if c.DB.DSN == "" {
			return fmt.Errorf("db.dsn must be set when storage.provider is postgres")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown storage provider %q", c.Storage.Provider)
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth is enabled")
	}
	if c.PubSub.Enabled && (c.PubSub.ProjectID == "" || c.PubSub.TopicName == "") {
		return fmt.Errorf("pubsub.project_id and pubsub.topic_name must be set when pubsub is enabled")
	}
	return nil
}

// MinSpacing converts the configured spacing into a duration.
func (c DiscoveryConfig) MinSpacing() time.Duration {
	return time.Duration(c.MinSpacingMs) * time.Millisecond
}

// RequestTimeout converts the configured run timeout into a duration.
func (c DiscoveryConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSecond) * time.Second
}

// ConnLifetime converts the configured connection lifetime into a duration.
func (c DBConfig) ConnLifetime() time.Duration {
	return time.Duration(c.ConnLifetimeMin) * time.Minute
}
