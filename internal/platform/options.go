package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/blockedit/pkg/core"
	"github.com/aretw0/blockedit/pkg/session"
)

// options holds the internal configuration for a blockedit session.
type options struct {
	logger *slog.Logger
	parser core.Parser
	hooks  session.Hooks
	// config holds explicitly set values; they override the config file.
	config     map[string]interface{}
	configFile string
}

// Option defines a functional option for configuring a session.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		config: make(map[string]interface{}),
	}
}

// WithLogger sets the logger for the session.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithParser replaces the default markdown parser.
func WithParser(p core.Parser) Option {
	return func(o *options) {
		o.parser = p
	}
}

// WithHooks registers the document-switch and diff-created callbacks.
func WithHooks(h session.Hooks) Option {
	return func(o *options) {
		o.hooks = h
	}
}

// WithMaxBatch sets how many items of a tool call are processed. Zero means default (25).
func WithMaxBatch(n int) Option {
	return func(o *options) {
		o.config["max_batch"] = n
	}
}

// WithMaxContent sets the per-item content limit in characters. Zero means default (50000).
func WithMaxContent(n int) Option {
	return func(o *options) {
		o.config["max_content"] = n
	}
}

// WithContextSize sets how many neighbours read_blocks returns on each side.
// Values below 1 select tools.DefaultContextSize.
func WithContextSize(n int) Option {
	return func(o *options) {
		o.config["context_size"] = n
	}
}

// WithTraceCapacity sets the number of tool calls kept for stuck detection.
func WithTraceCapacity(n int) Option {
	return func(o *options) {
		o.config["trace_capacity"] = n
	}
}

// WithSwitchTimeout bounds how long a document switch may hold the switch lock.
func WithSwitchTimeout(d time.Duration) Option {
	return func(o *options) {
		o.config["switch_timeout"] = d
	}
}

// WithCacheSize sets the number of cached read results.
func WithCacheSize(n int) Option {
	return func(o *options) {
		o.config["cache_size"] = n
	}
}

// WithConfigFile loads defaults from a YAML file (see FileConfig).
// Options passed explicitly take precedence over the file.
func WithConfigFile(path string) Option {
	return func(o *options) {
		o.configFile = path
	}
}

func (o *options) intValue(key string) int {
	v, _ := o.config[key].(int)
	return v
}
