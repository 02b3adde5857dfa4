package paths

import (
	"fmt"

	"github.com/phrazzld/scry-insights/internal/domain"
)

// Params defines all configurable parameters for path and transition mining
type Params struct {
	// MinPathLength is the minimum number of events a session needs to
	// contribute paths and transitions.
	MinPathLength int

	// PathDepth (K) is the number of leading slugs that form a path key.
	PathDepth int

	// CompletionThresholdSeconds marks a session as completed when its final
	// event lasted strictly longer than this.
	CompletionThresholdSeconds int

	// TopPaths and TopTransitions truncate the ranked output.
	TopPaths       int
	TopTransitions int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance
type ParamsConfig struct {
	MinPathLength              int
	PathDepth                  int
	CompletionThresholdSeconds int
	TopPaths                   int
	TopTransitions             int
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		MinPathLength:              2,
		PathDepth:                  3,
		CompletionThresholdSeconds: 30,
		TopPaths:                   10,
		TopTransitions:             15,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MinPathLength > 0 {
		params.MinPathLength = config.MinPathLength
	}
	if config.PathDepth > 0 {
		params.PathDepth = config.PathDepth
	}
	if config.CompletionThresholdSeconds > 0 {
		params.CompletionThresholdSeconds = config.CompletionThresholdSeconds
	}
	if config.TopPaths > 0 {
		params.TopPaths = config.TopPaths
	}
	if config.TopTransitions > 0 {
		params.TopTransitions = config.TopTransitions
	}

	return params
}

// Validate reports whether the parameters can be used for mining.
func (p *Params) Validate() error {
	switch {
	case p.MinPathLength < 1:
		return fmt.Errorf("%w: minimum path length must be at least 1, got %d",
			domain.ErrConfiguration, p.MinPathLength)
	case p.PathDepth < 1:
		return fmt.Errorf("%w: path depth must be at least 1, got %d",
			domain.ErrConfiguration, p.PathDepth)
	case p.CompletionThresholdSeconds < 0:
		return fmt.Errorf("%w: completion threshold cannot be negative, got %d",
			domain.ErrConfiguration, p.CompletionThresholdSeconds)
	case p.TopPaths < 1 || p.TopTransitions < 1:
		return fmt.Errorf("%w: top-N limits must be at least 1", domain.ErrConfiguration)
	}
	return nil
}
