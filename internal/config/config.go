// Package config loads the service configuration. Sources are layered
// defaults < config file < environment < flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"tender-cost-engine/internal/model"
)

const envPrefix = "TCE"

type Config struct {
	Port      int    `mapstructure:"port"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	RateCard            string        `mapstructure:"rate_card"`
	RateRegistryURL     string        `mapstructure:"rate_registry_url"`
	RateRegistryTimeout time.Duration `mapstructure:"rate_registry_timeout"`

	// BatchConcurrency bounds how many requests of a batch run at once.
	BatchConcurrency int `mapstructure:"batch_concurrency"`

	Engine Engine `mapstructure:"engine"`
}

// Engine holds the defaults for plan settings a request leaves unset.
type Engine struct {
	DaysPerFTE             int     `mapstructure:"days_per_fte"`
	DefaultDailyRate       float64 `mapstructure:"default_daily_rate"`
	GovernancePct          float64 `mapstructure:"governance_pct"`
	RiskContingencyPct     float64 `mapstructure:"risk_contingency_pct"`
	CatalogTargetMarginPct float64 `mapstructure:"catalog_target_margin_pct"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("rate_card", "")
	v.SetDefault("rate_registry_url", "")
	v.SetDefault("rate_registry_timeout", 2*time.Second)
	v.SetDefault("batch_concurrency", 8)
	v.SetDefault("engine.days_per_fte", 220)
	v.SetDefault("engine.default_daily_rate", 250.0)
	v.SetDefault("engine.governance_pct", 0.04)
	v.SetDefault("engine.risk_contingency_pct", 0.03)
	v.SetDefault("engine.catalog_target_margin_pct", 20.0)
}

// Load reads .env when present, then parses args (without the program
// name) and resolves the configuration.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	fs := pflag.NewFlagSet("tender-cost-engine", pflag.ContinueOnError)
	configFile := fs.String("config", "", "path to a YAML/JSON/TOML config file")
	fs.Int("port", 8080, "HTTP listen port")
	fs.String("log-level", "info", "log level: error, warn, info, debug, trace")
	fs.String("log-format", "json", "log encoding: json or console")
	fs.String("rate-card", "", "path to the YAML rate card")
	fs.String("rate-registry-url", "", "base URL of the remote rate registry")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("port", envPrefix+"_PORT", "PORT"); err != nil {
		return nil, err
	}

	for key, flag := range map[string]string{
		"port":              "port",
		"log_level":         "log-level",
		"log_format":        "log-format",
		"rate_card":         "rate-card",
		"rate_registry_url": "rate-registry-url",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return nil, fmt.Errorf("binding flag %s: %w", flag, err)
		}
	}

	if *configFile != "" {
		v.SetConfigFile(*configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", *configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.BatchConcurrency <= 0 {
		errs = append(errs, fmt.Errorf("batch_concurrency must be positive, got %d", c.BatchConcurrency))
	}
	if c.Engine.DaysPerFTE <= 0 {
		errs = append(errs, fmt.Errorf("engine.days_per_fte must be positive, got %d", c.Engine.DaysPerFTE))
	}
	if c.Engine.DefaultDailyRate <= 0 {
		errs = append(errs, fmt.Errorf("engine.default_daily_rate must be positive, got %v", c.Engine.DefaultDailyRate))
	}
	if c.Engine.GovernancePct < 0 || c.Engine.RiskContingencyPct < 0 {
		errs = append(errs, errors.New("engine overhead percentages must not be negative"))
	}
	return errors.Join(errs...)
}

// Defaults converts the engine section for the model.
func (c *Config) Defaults() model.Defaults {
	return model.Defaults{
		DaysPerFTE:             c.Engine.DaysPerFTE,
		DefaultDailyRate:       c.Engine.DefaultDailyRate,
		GovernancePct:          c.Engine.GovernancePct,
		RiskContingencyPct:     c.Engine.RiskContingencyPct,
		CatalogTargetMarginPct: c.Engine.CatalogTargetMarginPct,
	}
}
