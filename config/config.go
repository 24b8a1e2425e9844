// Package config loads the settings of the contentops tooling from a file and the environment.
//
// Every key can be overridden by an environment variable named CONTENTOPS_ followed by the upper
// cased key path, e.g. CONTENTOPS_STORE_DSN for store.dsn.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"time"

	"github.com/spf13/viper"

	"github.com/smartcontractkit/content-operations-framework/contentstore/sqlstore"
	"github.com/smartcontractkit/content-operations-framework/metrics"
	"github.com/smartcontractkit/content-operations-framework/pkg/logger"
	"github.com/smartcontractkit/content-operations-framework/report"
)

type LogConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`             // debug, info, warn or error
	Development bool   `mapstructure:"development" yaml:"development"` // Console encoder with coloured levels
}

type StoreConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"` // ramsql or postgres
	DSN    string `mapstructure:"dsn" yaml:"dsn"`       // Secret: The data source name passed to the driver
}

type RollbackConfig struct {
	User     string        `mapstructure:"user" yaml:"user"`         // The user that checks out resources during rollback
	Attempts uint          `mapstructure:"attempts" yaml:"attempts"` // Attempts per resource. Only transient store errors are retried.
	Delay    time.Duration `mapstructure:"delay" yaml:"delay"`       // Delay between attempts
}

type ReportConfig struct {
	Format         string `mapstructure:"format" yaml:"format"`                   // html, text, json, yaml or toml
	OverviewLayout string `mapstructure:"overview_layout" yaml:"overview_layout"` // Go time layout of the overview timestamps
	DetailsLayout  string `mapstructure:"details_layout" yaml:"details_layout"`   // Go time layout of the message timestamps
	Timezone       string `mapstructure:"timezone" yaml:"timezone"`               // IANA zone the timestamps are rendered in. Empty keeps the recorded zone.
}

type HTTPConfig struct {
	ListenAddress string `mapstructure:"listen_address" yaml:"listen_address"`
}

type MetricsConfig struct {
	Namespace string `mapstructure:"namespace" yaml:"namespace"`
}

type Config struct {
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Store    StoreConfig    `mapstructure:"store" yaml:"store"`
	Rollback RollbackConfig `mapstructure:"rollback" yaml:"rollback"`
	Report   ReportConfig   `mapstructure:"report" yaml:"report"`
	HTTP     HTTPConfig     `mapstructure:"http" yaml:"http"`
	Metrics  MetricsConfig  `mapstructure:"metrics" yaml:"metrics"`
}

// Load reads the config file at filePath, if it exists, and applies environment overrides.
func Load(filePath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(filePath)

	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	if _, err := os.Stat(filePath); !errors.Is(err, fs.ErrNotExist) {
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	return unmarshal(v)
}

// LoadEnv builds the config from defaults and environment variables only.
func LoadEnv() (*Config, error) {
	v := newViper()

	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	return unmarshal(v)
}

// LoadFile reads the config file at filePath without environment overrides. The file must exist.
func LoadFile(filePath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(filePath)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	return unmarshal(v)
}

// Default returns the config used when nothing is configured.
func Default() *Config {
	cfg, err := unmarshal(newViper())
	if err != nil {
		// defaults are static and always decode
		panic(err)
	}

	return cfg
}

// Validate checks the values that are parsed by other packages.
func (c *Config) Validate() error {
	var errs []error

	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if !slices.Contains([]string{sqlstore.DriverRamSQL, sqlstore.DriverPostgres}, c.Store.Driver) {
		errs = append(errs, fmt.Errorf("unsupported store driver %q", c.Store.Driver))
	}
	if c.Store.DSN == "" {
		errs = append(errs, errors.New("store dsn is required"))
	}
	if c.Rollback.User == "" {
		errs = append(errs, errors.New("rollback user is required"))
	}
	if c.Rollback.Delay < 0 {
		errs = append(errs, errors.New("rollback delay must not be negative"))
	}
	if _, err := report.ParseFormat(c.Report.Format); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Location resolves Report.Timezone. An empty timezone yields nil.
func (c *Config) Location() (*time.Location, error) {
	if c.Report.Timezone == "" {
		return nil, nil //nolint:nilnil // nil keeps timestamps in their recorded zone
	}

	loc, err := time.LoadLocation(c.Report.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid report timezone %q: %w", c.Report.Timezone, err)
	}

	return loc, nil
}

// ReportOptions converts the report settings into render options.
func (c *Config) ReportOptions() (report.Options, error) {
	loc, err := c.Location()
	if err != nil {
		return report.Options{}, err
	}

	return report.Options{
		OverviewLayout: c.Report.OverviewLayout,
		DetailsLayout:  c.Report.DetailsLayout,
		Location:       loc,
	}, nil
}

var (
	defaults = map[string]any{
		"log.level":              "info",
		"log.development":        false,
		"store.driver":           sqlstore.DriverRamSQL,
		"store.dsn":              "contentops",
		"rollback.user":          "contentops",
		"rollback.attempts":      1,
		"rollback.delay":         "0s",
		"report.format":          string(report.FormatHTML),
		"report.overview_layout": report.DefaultOverviewLayout,
		"report.details_layout":  report.DefaultDetailsLayout,
		"report.timezone":        "",
		"http.listen_address":    ":8080",
		"metrics.namespace":      metrics.DefaultNamespace,
	}

	envBindings = map[string][]string{
		"log.level":              {"CONTENTOPS_LOG_LEVEL"},
		"log.development":        {"CONTENTOPS_LOG_DEVELOPMENT"},
		"store.driver":           {"CONTENTOPS_STORE_DRIVER"},
		"store.dsn":              {"CONTENTOPS_STORE_DSN", "DATABASE_URL"},
		"rollback.user":          {"CONTENTOPS_ROLLBACK_USER"},
		"rollback.attempts":      {"CONTENTOPS_ROLLBACK_ATTEMPTS"},
		"rollback.delay":         {"CONTENTOPS_ROLLBACK_DELAY"},
		"report.format":          {"CONTENTOPS_REPORT_FORMAT"},
		"report.overview_layout": {"CONTENTOPS_REPORT_OVERVIEW_LAYOUT"},
		"report.details_layout":  {"CONTENTOPS_REPORT_DETAILS_LAYOUT"},
		"report.timezone":        {"CONTENTOPS_REPORT_TIMEZONE"},
		"http.listen_address":    {"CONTENTOPS_HTTP_LISTEN_ADDRESS"},
		"metrics.namespace":      {"CONTENTOPS_METRICS_NAMESPACE"},
	}
)

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	return v
}

func bindEnvs(v *viper.Viper) error {
	for key, envs := range envBindings {
		inputs := slices.Insert(envs, 0, key)

		if err := v.BindEnv(inputs...); err != nil {
			return err
		}
	}

	return nil
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}
