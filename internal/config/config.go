// Package config provides configuration management for the prop-edge application.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	Redis      RedisConfig      `mapstructure:"redis"`
	OddsAPI    OddsAPIConfig    `mapstructure:"odds_api" validate:"required"`
	Model      ModelConfig      `mapstructure:"model" validate:"required"`
	Settlement SettlementConfig `mapstructure:"settlement" validate:"required"`
	Board      BoardConfig      `mapstructure:"board" validate:"required"`
	Schedule   ScheduleConfig   `mapstructure:"schedule"`
	Server     ServerConfig     `mapstructure:"server"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Output     OutputConfig     `mapstructure:"output" validate:"required"`
	Secrets    SecretsConfig    `mapstructure:"secrets"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// RedisConfig represents the board publisher connection
type RedisConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Addr         string `mapstructure:"addr"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db" validate:"gte=0"`
	StreamPrefix string `mapstructure:"stream_prefix"`
	MaxLen       int64  `mapstructure:"max_len" validate:"gte=0"`
}

// OddsAPIConfig represents The Odds API ingestion configuration
type OddsAPIConfig struct {
	BaseURL           string   `mapstructure:"base_url" validate:"required,url"`
	APIKey            string   `mapstructure:"api_key"`
	Sport             string   `mapstructure:"sport" validate:"required"`
	Regions           string   `mapstructure:"regions" validate:"required"`
	Markets           []string `mapstructure:"markets" validate:"required,min=1"`
	Bookmakers        []string `mapstructure:"bookmakers"`
	RequestsPerMinute int      `mapstructure:"requests_per_minute" validate:"required,gt=0"`
	TimeoutSeconds    int      `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RetryAttempts     int      `mapstructure:"retry_attempts" validate:"gte=0"`
}

// ModelConfig represents projection and edge model parameters
type ModelConfig struct {
	Version        string             `mapstructure:"version" validate:"required"`
	StdevPriors    map[string]float64 `mapstructure:"stdev_priors" validate:"required,statpriors"`
	DefaultStdev   float64            `mapstructure:"default_stdev" validate:"gt=0"`
	ClampEpsilon   float64            `mapstructure:"clamp_epsilon" validate:"gt=0,lt=0.5"`
	FreshnessDecay float64            `mapstructure:"freshness_decay" validate:"gte=0"`
	ConsensusMode  string             `mapstructure:"consensus_mode" validate:"required,oneof=representative weighted"`
	BookWeights    map[string]float64 `mapstructure:"book_weights" validate:"omitempty,statpriors"`
}

// SettlementConfig represents grading configuration
type SettlementConfig struct {
	TiePolicy         string  `mapstructure:"tie_policy" validate:"required,tiepolicy"`
	Workers           int     `mapstructure:"workers" validate:"required,gt=0"`
	StopLossThreshold float64 `mapstructure:"stop_loss_threshold" validate:"gte=0,lte=1"`
}

// BoardConfig represents board build configuration
type BoardConfig struct {
	Workers       int     `mapstructure:"workers" validate:"required,gt=0"`
	MinEdgePct    float64 `mapstructure:"min_edge_pct"`
	MinFreshness  float64 `mapstructure:"min_freshness" validate:"gte=0,lte=1"`
	LookbackHours int     `mapstructure:"lookback_hours" validate:"gt=0"`
}

// ScheduleConfig represents cron schedules for recurring runs
type ScheduleConfig struct {
	BoardCron string `mapstructure:"board_cron"`
	GradeCron string `mapstructure:"grade_cron"`
}

// ServerConfig represents the status HTTP server
type ServerConfig struct {
	Port            int      `mapstructure:"port" validate:"required,min=1,max=65535"`
	CORSOrigins     []string `mapstructure:"cors_origins"`
	CacheTTLSeconds int      `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required"`
}

// OutputConfig represents artifact output configuration
type OutputConfig struct {
	Dir string         `mapstructure:"dir" validate:"required"`
	S3  S3MirrorConfig `mapstructure:"s3"`
}

// S3MirrorConfig mirrors written artifacts to an S3-compatible bucket
type S3MirrorConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Bucket         string `mapstructure:"bucket"`
	Region         string `mapstructure:"region"`
	Prefix         string `mapstructure:"prefix"`
	Endpoint       string `mapstructure:"endpoint"`
	ForcePathStyle bool   `mapstructure:"force_path_style"`
}

// SecretsConfig selects the AWS Secrets Manager overlay
type SecretsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Region     string `mapstructure:"region"`
	SecretName string `mapstructure:"secret_name"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// OddsAPITimeout returns the per-request timeout for the odds feed
func (c *Config) OddsAPITimeout() time.Duration {
	return time.Duration(c.OddsAPI.TimeoutSeconds) * time.Second
}

// BoardLookback returns how far back stored quotes are read for a board run
func (c *Config) BoardLookback() time.Duration {
	return time.Duration(c.Board.LookbackHours) * time.Hour
}

// ServerAddr returns the listen address of the status server
func (c *Config) ServerAddr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
