package platform

import (
	"time"

	"github.com/aretw0/blockedit/pkg/adapters/markdown"
	"github.com/aretw0/blockedit/pkg/session"
	"github.com/aretw0/blockedit/pkg/tools"
)

// New builds an editing session from options.
//
//	s, err := platform.New(platform.WithConfigFile(".blockedit.yaml"), platform.WithMaxBatch(10))
func New(opts ...Option) (*session.Session, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	if o.configFile != "" {
		fileCfg, err := LoadConfig(o.configFile)
		if err != nil {
			return nil, err
		}
		fileCfg.apply(o)
	}

	parser := o.parser
	if parser == nil {
		parser = markdown.New()
	}
	timeout, _ := o.config["switch_timeout"].(time.Duration)

	return session.New(session.Config{
		Parser: parser,
		Limits: tools.Limits{
			MaxBatch:    o.intValue("max_batch"),
			MaxContent:  o.intValue("max_content"),
			ContextSize: o.intValue("context_size"),
		},
		CacheSize:     o.intValue("cache_size"),
		TraceCapacity: o.intValue("trace_capacity"),
		SwitchTimeout: timeout,
		Logger:        o.logger,
		Hooks:         o.hooks,
	})
}
