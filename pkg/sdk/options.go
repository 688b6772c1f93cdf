package mapdex

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

// Storage drivers.
const (
	driverValkey = "valkey"
	driverRedis  = "redis"
	driverSQLite = "sqlite"
)

type clientConfig struct {
	driver   string
	addrs    []string
	password string
	path     string

	keyPrefix string
	maxRows   int
	completer Completer

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithValkey stores mappings and datasets in a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverValkey
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis stores mappings and datasets in a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverRedis
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithSQLite stores mappings and datasets in a SQLite file.
// ":memory:" keeps everything in process.
func WithSQLite(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverSQLite
		c.path = path
	})
}

// WithKeyPrefix namespaces every storage key. Default: "mapdex:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithMaxRows limits the number of rows per dataset. Default: unlimited.
func WithMaxRows(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxRows = n
	})
}

// WithCompleter enables field description suggestions.
func WithCompleter(c Completer) Option {
	return optionFunc(func(cfg *clientConfig) {
		cfg.completer = c
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
