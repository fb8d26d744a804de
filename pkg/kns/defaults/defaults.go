// Package defaults builds the complete node catalogue from configuration and
// installs the standard middleware chain.
package defaults

import (
	"github.com/karlmeister/kns/pkg/config"
	"github.com/karlmeister/kns/pkg/kns/choose"
	"github.com/karlmeister/kns/pkg/kns/filename"
	"github.com/karlmeister/kns/pkg/kns/sampler"
	"github.com/karlmeister/kns/pkg/kns/text"
	"github.com/karlmeister/kns/pkg/nodes/registry"
	"go.uber.org/zap"
)

// New merges every node family into one Registry. Handlers run under
// Recovery, Logger and, when the configured call timeout is positive, Timeout.
func New(cfg config.Config, log *zap.Logger) (*registry.Registry, error) {
	loc, err := cfg.FilenameLocation()
	if err != nil {
		return nil, err
	}

	r := Merge(
		text.Nodes(),
		sampler.Nodes(cfg.SamplerEnums()),
		choose.Nodes(),
		filename.Nodes(filename.Generator{Location: loc}, cfg.FilenameDefaults()),
	)

	r.Use(registry.Recovery(), registry.Logger(log))
	if cfg.Server.CallTimeout > 0 {
		r.Use(registry.Timeout(cfg.Server.CallTimeout))
	}

	return r, nil
}

// Merge builds a registry by merging the given registries in order, so later
// entries overwrite earlier ones when node names collide.
func Merge(registries ...*registry.Registry) *registry.Registry {
	r := registry.New()
	for _, other := range registries {
		r.Merge(other)
	}

	return r
}
