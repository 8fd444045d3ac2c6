package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides (PROP_EDGE_APP_LOG_LEVEL)
const EnvPrefix = "PROP_EDGE"

// DefaultConfigPath is used when no path is given
const DefaultConfigPath = "config/config.yaml"

// Load reads and parses the configuration from file and environment variables.
// It expands environment variable placeholders in the YAML file (${VAR_NAME}).
// A .env file in the working directory is loaded first when present.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	_ = godotenv.Load()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	if err := readExpanded(v, data); err != nil {
		return nil, err
	}
	return unmarshal(v)
}

// LoadWithDefaults loads configuration with default values for every field.
// A missing file is not an error: defaults and environment variables apply.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	_ = godotenv.Load()

	v := newViper()
	if data, err := os.ReadFile(configPath); err == nil {
		if err := readExpanded(v, data); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)
	return v
}

func readExpanded(v *viper.Viper, data []byte) error {
	// Expand environment variables in the configuration (${VAR} syntax)
	expanded := os.ExpandEnv(string(data))
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "prop-edge")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "prop_edge")
	v.SetDefault("database.user", "prop_edge")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_idle_connections", 2)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.stream_prefix", "board.published")
	v.SetDefault("redis.max_len", 10000)

	v.SetDefault("odds_api.base_url", "https://api.the-odds-api.com")
	v.SetDefault("odds_api.sport", "basketball_nba")
	v.SetDefault("odds_api.regions", "us")
	v.SetDefault("odds_api.markets", []string{
		"player_points", "player_rebounds", "player_assists", "player_threes", "player_points_rebounds_assists",
	})
	v.SetDefault("odds_api.requests_per_minute", 30)
	v.SetDefault("odds_api.timeout_seconds", 30)
	v.SetDefault("odds_api.retry_attempts", 3)

	v.SetDefault("model.version", "nba_v0_market_normal_001")
	v.SetDefault("model.stdev_priors", map[string]float64{"PTS": 5.5, "REB": 2.2, "AST": 1.8, "PRA": 6.8})
	v.SetDefault("model.default_stdev", 5.0)
	v.SetDefault("model.clamp_epsilon", 1e-6)
	v.SetDefault("model.freshness_decay", 1e-4)
	v.SetDefault("model.consensus_mode", "representative")

	v.SetDefault("settlement.tie_policy", "under-wins-ties")
	v.SetDefault("settlement.workers", 8)
	v.SetDefault("settlement.stop_loss_threshold", 0.05)

	v.SetDefault("board.workers", 8)
	v.SetDefault("board.min_edge_pct", 0.0)
	v.SetDefault("board.min_freshness", 0.0)
	v.SetDefault("board.lookback_hours", 24)

	v.SetDefault("schedule.board_cron", "*/30 * * * *")
	v.SetDefault("schedule.grade_cron", "0 9 * * *")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cache_ttl_seconds", 300)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("output.dir", "output")
	v.SetDefault("output.s3.prefix", "artifacts")
}
