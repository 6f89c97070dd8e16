// Package config loads memstore configuration from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-memstore/pkg/logging"
	"github.com/dd0wney/cluso-memstore/pkg/metrics"
	"github.com/dd0wney/cluso-memstore/pkg/record"
	"github.com/dd0wney/cluso-memstore/pkg/store"
	"github.com/dd0wney/cluso-memstore/pkg/txn"
	"github.com/dd0wney/cluso-memstore/pkg/validation"
)

// Defaults
const (
	DefaultLogLevel    = "info"
	DefaultMetricsAddr = "localhost:9090"
	MaxNestingDepth    = 64
)

var logLevels = []string{"debug", "info", "warn", "warning", "error"}

// Config is the root configuration document.
type Config struct {
	Log          LogConfig          `yaml:"log"`
	Store        StoreConfig        `yaml:"store"`
	Transactions TransactionsConfig `yaml:"transactions"`
	Metrics      MetricsConfig      `yaml:"metrics"`
}

// LogConfig configures the JSON logger.
type LogConfig struct {
	Level string `yaml:"level" validate:"required"`
}

// StoreConfig configures the MainStore.
type StoreConfig struct {
	// DefaultIDKey is used by record types declaring no id or primary key.
	DefaultIDKey string `yaml:"default_id_key" validate:"required"`
	// ForeignKeys maps a record type name to fields registered when its
	// store is created.
	ForeignKeys map[string][]string `yaml:"foreign_keys"`
}

// TransactionsConfig configures the transaction manager.
type TransactionsConfig struct {
	// MaxDepth limits child nesting; 0 means unlimited.
	MaxDepth int `yaml:"max_depth" validate:"gte=0"`
}

// MetricsConfig configures the prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr" validate:"omitempty,hostname_port"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads and validates the YAML file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes, defaults and validates a YAML document. Unknown keys are
// rejected. An empty document yields the defaults.
func Parse(data []byte) (*Config, error) {
	c := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode: %w", err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	c.Log.Level = validation.DefaultOr(c.Log.Level, DefaultLogLevel)
	c.Store.DefaultIDKey = validation.DefaultOr(c.Store.DefaultIDKey, record.DefaultIDKey)
	if c.Metrics.Enabled {
		c.Metrics.Addr = validation.DefaultOr(c.Metrics.Addr, DefaultMetricsAddr)
	}
}

// Validate checks struct tags first, then cross-field rules.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return err
	}

	cv := validation.NewConfigValidator("Config")
	cv.OneOf("Log.Level", c.Log.Level, logLevels...)
	cv.Name("Store.DefaultIDKey", c.Store.DefaultIDKey)
	cv.Range("Transactions.MaxDepth", c.Transactions.MaxDepth, 0, MaxNestingDepth)
	cv.When(c.Metrics.Enabled, func(cv *validation.ConfigValidator) {
		cv.Required("Metrics.Addr", c.Metrics.Addr)
	})
	for _, typeName := range c.foreignKeyTypes() {
		cv.Custom("Store.ForeignKeys", func() error {
			if err := validation.ValidateName(typeName); err != nil {
				return fmt.Errorf("type: %w", err)
			}
			for _, field := range c.Store.ForeignKeys[typeName] {
				if err := validation.ValidateName(field); err != nil {
					return fmt.Errorf("%s: %w", typeName, err)
				}
			}
			return nil
		})
	}
	return cv.Err()
}

func (c *Config) foreignKeyTypes() []string {
	types := make([]string, 0, len(c.Store.ForeignKeys))
	for t := range c.Store.ForeignKeys {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// NewLogger returns a JSON logger writing to w at the configured level.
func (c *Config) NewLogger(w io.Writer) logging.Logger {
	return logging.NewJSONLogger(w, logging.ParseLevel(c.Log.Level))
}

// StoreOptions translates the store section into MainStore options.
func (c *Config) StoreOptions(logger logging.Logger, reg *metrics.Registry) []store.Option {
	opts := []store.Option{
		store.WithLogger(logger),
		store.WithDefaultIDKey(c.Store.DefaultIDKey),
	}
	if reg != nil {
		opts = append(opts, store.WithMetrics(reg))
	}
	for _, typeName := range c.foreignKeyTypes() {
		opts = append(opts, store.WithForeignKeys(typeName, c.Store.ForeignKeys[typeName]...))
	}
	return opts
}

// ManagerOptions translates the transactions section into Manager options.
func (c *Config) ManagerOptions(logger logging.Logger, reg *metrics.Registry) []txn.ManagerOption {
	opts := []txn.ManagerOption{
		txn.WithLogger(logger),
		txn.WithMaxDepth(c.Transactions.MaxDepth),
	}
	if reg != nil {
		opts = append(opts, txn.WithMetrics(reg))
	}
	return opts
}
