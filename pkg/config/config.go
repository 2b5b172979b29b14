package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. COINSCOPE_DATA_DIR.
const EnvPrefix = "COINSCOPE"

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Logging     struct {
		Level      string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format     string `yaml:"format" default:"console" validate:"oneof=json console"`
		Output     string `yaml:"output" default:"stdout" validate:"required"`
		TimeFormat string `yaml:"time_format"`
	} `yaml:"logging"`
	Data struct {
		Source     string `yaml:"source" default:"csv" validate:"oneof=csv sqlite clickhouse"`
		Dir        string `yaml:"dir" default:"data" validate:"required_if=Source csv"`
		Pattern    string `yaml:"pattern" default:"coin_*.csv"`
		SQLitePath string `yaml:"sqlite_path" validate:"required_if=Source sqlite"`
		Table      string `yaml:"table" default:"candles" validate:"required"`
	} `yaml:"data"`
	ClickHouse struct {
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"coinscope"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
	} `yaml:"clickhouse"`
	Analysis struct {
		Join              string `yaml:"join" default:"inner" validate:"oneof=inner outer"`
		ReturnMethod      string `yaml:"return_method" default:"simple" validate:"oneof=simple log"`
		Percent           bool   `yaml:"percent"`
		Window            int    `yaml:"window" default:"30"`
		SeasonalityWindow int    `yaml:"seasonality_window" default:"30"`
	} `yaml:"analysis"`
	Server struct {
		Port            int           `yaml:"port" default:"8080" validate:"gt=0,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		CORSOrigins     []string      `yaml:"cors_origins" default:"[\"*\"]"`
		RateLimit       struct {
			Capacity     float64 `yaml:"capacity" default:"20" validate:"gte=0"`
			RefillPerSec float64 `yaml:"refill_per_sec" default:"10" validate:"gte=0"`
		} `yaml:"rate_limit"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Cache struct {
		Backend         string        `yaml:"backend" default:"memory" validate:"oneof=none memory redis"`
		TTL             time.Duration `yaml:"ttl" default:"60s"`
		MaxEntries      int           `yaml:"max_entries" default:"1000" validate:"gte=0"`
		CleanupInterval time.Duration `yaml:"cleanup_interval" default:"5m"`
		Redis           struct {
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Reload struct {
		// Cron is a robfig/cron spec such as "@every 1h"; empty disables scheduled reloads.
		Cron string `yaml:"cron"`
	} `yaml:"reload"`
	Charts struct {
		OutputDir string `yaml:"output_dir" default:"charts" validate:"required"`
		Width     int    `yaml:"width" default:"900" validate:"gte=200"`
		Height    int    `yaml:"height" default:"500" validate:"gte=200"`
	} `yaml:"charts"`
}

// Overrides are the environment variables applied on top of the YAML file.
// Empty values leave the file setting untouched.
type Overrides struct {
	Environment        string `envconfig:"ENVIRONMENT"`
	LogLevel           string `envconfig:"LOG_LEVEL"`
	DataSource         string `envconfig:"DATA_SOURCE"`
	DataDir            string `envconfig:"DATA_DIR"`
	SQLitePath         string `envconfig:"SQLITE_PATH"`
	ClickHouseHost     string `envconfig:"CLICKHOUSE_HOST"`
	ClickHousePassword string `envconfig:"CLICKHOUSE_PASSWORD"`
	ServerPort         int    `envconfig:"SERVER_PORT"`
	CacheBackend       string `envconfig:"CACHE_BACKEND"`
	RedisAddr          string `envconfig:"REDIS_ADDR"`
	RedisPassword      string `envconfig:"REDIS_PASSWORD"`
	ReloadCron         string `envconfig:"RELOAD_CRON"`
	ChartsDir          string `envconfig:"CHARTS_DIR"`
}

// Default returns a configuration populated only from default tags.
func Default() *Config {
	var c Config
	_ = defaults.Set(&c)
	return &c
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
// A missing file falls back to defaults so the tool runs with env vars alone.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		c, err = Default(), nil
	}
	if err != nil {
		return nil, err
	}

	var o Overrides
	if err := envconfig.Process(EnvPrefix, &o); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}
	c.Apply(o)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Apply copies every non-empty override into c.
func (c *Config) Apply(o Overrides) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.Environment, o.Environment)
	set(&c.Logging.Level, o.LogLevel)
	set(&c.Data.Source, o.DataSource)
	set(&c.Data.Dir, o.DataDir)
	set(&c.Data.SQLitePath, o.SQLitePath)
	set(&c.ClickHouse.Host, o.ClickHouseHost)
	set(&c.ClickHouse.Password, o.ClickHousePassword)
	set(&c.Cache.Backend, o.CacheBackend)
	set(&c.Cache.Redis.Addr, o.RedisAddr)
	set(&c.Cache.Redis.Password, o.RedisPassword)
	set(&c.Reload.Cron, o.ReloadCron)
	set(&c.Charts.OutputDir, o.ChartsDir)
	if o.ServerPort > 0 {
		c.Server.Port = o.ServerPort
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}
