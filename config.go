package halcyon

import "time"

// Config is the set of tunables exposed by spec.md §6. It is held by the
// Builder and copied into the Server at Build time; per spec.md's Design
// Notes, there is no global/singleton configuration — every Server owns its
// own Config value.
type Config struct {
	// MaxHeaderBytes is the budget for a request's header block.
	//
	// Default value: 8192
	MaxHeaderBytes int `mapstructure:"max_header_bytes"`

	// MaxBodyBytes is the default per-request body budget; 0 means
	// unbounded. Individual routes may override it via
	// RouteSpec.MaxBodyBytes.
	//
	// Default value: 0 (unbounded)
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`

	// HeaderReadTimeout bounds how long the connection state machine
	// waits to finish reading a request head.
	//
	// Default value: 30s
	HeaderReadTimeout time.Duration `mapstructure:"header_read_timeout"`

	// BodyReadTimeout bounds reading a request body into a handler. A
	// single read deadline, BodyReadTimeout after dispatch begins, covers
	// every read of the body; it is not re-armed per read.
	//
	// Default value: 30s
	BodyReadTimeout time.Duration `mapstructure:"body_read_timeout"`

	// WriteTimeout bounds each individual write while streaming a
	// response.
	//
	// Default value: 30s
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// KeepAliveIdleTimeout bounds how long a connection may sit idle
	// between successive requests.
	//
	// Default value: 5s
	KeepAliveIdleTimeout time.Duration `mapstructure:"keep_alive_idle_timeout"`

	// ShutdownGrace bounds how long Server.Shutdown waits for in-flight
	// requests to complete before cancelling them.
	//
	// Default value: 10s
	ShutdownGrace time.Duration `mapstructure:"shutdown_grace"`

	// Workers is carried in the Config but not read by the Server: every
	// accepted connection is served on its own goroutine by net/http, so
	// this value does not bound concurrency.
	//
	// Default value: 1
	Workers int `mapstructure:"workers"`

	// WatchConfigFile enables live-reload of a config file loaded via
	// Builder.LoadConfigFile, re-decoding it whenever it changes on
	// disk (SPEC_FULL.md §4.10).
	//
	// Default value: false
	WatchConfigFile bool `mapstructure:"watch_config_file"`

	// LogLevel is the minimum Logger level that is emitted.
	//
	// Default value: "info"
	LogLevel string `mapstructure:"log_level"`
}

// DefaultConfig returns the Config populated with the default values
// documented on each field above.
func DefaultConfig() Config {
	return Config{
		MaxHeaderBytes:       8192,
		HeaderReadTimeout:    30 * time.Second,
		BodyReadTimeout:      30 * time.Second,
		WriteTimeout:         30 * time.Second,
		KeepAliveIdleTimeout: 5 * time.Second,
		ShutdownGrace:        10 * time.Second,
		Workers:              1,
		LogLevel:             "info",
	}
}
