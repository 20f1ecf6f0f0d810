// Package config loads application settings from YAML, environment variables
// (prefix TPC_, dots replaced by underscores) and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. TPC_MODEL_MODEL_PATH.
const EnvPrefix = "TPC"

// Config is the application configuration.
type Config struct {
	Model      ModelConfig      `mapstructure:"model" yaml:"model"`
	Input      InputConfig      `mapstructure:"input" yaml:"input"`
	Output     OutputConfig     `mapstructure:"output" yaml:"output"`
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
	Postgres   PostgresConfig   `mapstructure:"postgres" yaml:"postgres"`
	ClickHouse ClickHouseConfig `mapstructure:"clickhouse" yaml:"clickhouse"`
	Redis      RedisConfig      `mapstructure:"redis" yaml:"redis"`
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
}

// ModelConfig locates the trained artifacts.
type ModelConfig struct {
	ModelPath  string `mapstructure:"model_path" yaml:"model_path" validate:"required"`
	ScalerPath string `mapstructure:"scaler_path" yaml:"scaler_path" validate:"required"`
}

// InputConfig locates the raw trade payload.
type InputConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// OutputConfig controls where run output goes.
type OutputConfig struct {
	Dir             string `mapstructure:"dir" yaml:"dir"`                           // reports, empty disables
	PredictionsPath string `mapstructure:"predictions_path" yaml:"predictions_path"` // JSON payload, empty means stdout
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=console json"`
	Dir    string `mapstructure:"dir" yaml:"dir"`
}

// PostgresConfig enables the trade and prediction stores when DSN is set.
type PostgresConfig struct {
	DSN string `mapstructure:"dsn" yaml:"dsn"`
}

// ClickHouseConfig enables the feature snapshot store when DSN is set.
type ClickHouseConfig struct {
	DSN string `mapstructure:"dsn" yaml:"dsn"`
}

// RedisConfig enables the latest-prediction cache when Addr is set.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr" yaml:"addr"`
	Password string        `mapstructure:"password" yaml:"password"`
	DB       int           `mapstructure:"db" yaml:"db" validate:"gte=0,lte=15"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl" validate:"gte=0"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr" validate:"required"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			ModelPath:  "models/model.json",
			ScalerPath: "models/scaler.json",
		},
		Input:  InputConfig{Path: "data/sample_raw_trades.json"},
		Output: OutputConfig{Dir: "output"},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
			Dir:    "logs",
		},
		Redis:  RedisConfig{TTL: 24 * time.Hour},
		Server: ServerConfig{Addr: ":8080"},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("model.model_path", d.Model.ModelPath)
	v.SetDefault("model.scaler_path", d.Model.ScalerPath)
	v.SetDefault("input.path", d.Input.Path)
	v.SetDefault("output.dir", d.Output.Dir)
	v.SetDefault("output.predictions_path", d.Output.PredictionsPath)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.dir", d.Log.Dir)
	v.SetDefault("postgres.dsn", d.Postgres.DSN)
	v.SetDefault("clickhouse.dsn", d.ClickHouse.DSN)
	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("redis.ttl", d.Redis.TTL)
	v.SetDefault("server.addr", d.Server.Addr)
}

// Load reads configuration from path. An empty path uses defaults and the
// environment only; a path that does not exist is an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, len(verrs))
			for i, fe := range verrs {
				fields[i] = fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag())
			}
			return fmt.Errorf("invalid config: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Save writes cfg to path as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
