package platform

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig is the layout of .blockedit.yaml.
//
//	limits:
//	  max_batch: 25
//	  max_content: 50000
//	  context_size: 2
//	trace:
//	  capacity: 30
//	switch:
//	  timeout: 2s
//	cache:
//	  size: 512
type FileConfig struct {
	Limits struct {
		MaxBatch    int `yaml:"max_batch"`
		MaxContent  int `yaml:"max_content"`
		ContextSize int `yaml:"context_size"`
	} `yaml:"limits"`
	Trace struct {
		Capacity int `yaml:"capacity"`
	} `yaml:"trace"`
	Switch struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"switch"`
	Cache struct {
		Size int `yaml:"size"`
	} `yaml:"cache"`
}

// LoadConfig reads and validates a config file.
func LoadConfig(path string) (FileConfig, error) {
	var cfg FileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	if cfg.Switch.Timeout != "" {
		if _, err := time.ParseDuration(cfg.Switch.Timeout); err != nil {
			return cfg, fmt.Errorf("invalid switch.timeout %q: %w", cfg.Switch.Timeout, err)
		}
	}
	return cfg, nil
}

// apply copies file values into o for every key not set explicitly.
func (c FileConfig) apply(o *options) {
	setDefault := func(key string, v interface{}, set bool) {
		if _, explicit := o.config[key]; !explicit && set {
			o.config[key] = v
		}
	}
	setDefault("max_batch", c.Limits.MaxBatch, c.Limits.MaxBatch > 0)
	setDefault("max_content", c.Limits.MaxContent, c.Limits.MaxContent > 0)
	setDefault("context_size", c.Limits.ContextSize, c.Limits.ContextSize > 0)
	setDefault("trace_capacity", c.Trace.Capacity, c.Trace.Capacity > 0)
	setDefault("cache_size", c.Cache.Size, c.Cache.Size > 0)
	if c.Switch.Timeout != "" {
		d, _ := time.ParseDuration(c.Switch.Timeout)
		setDefault("switch_timeout", d, true)
	}
}
