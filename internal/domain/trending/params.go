package trending

import (
	"fmt"
	"time"

	"github.com/phrazzld/scry-insights/internal/domain"
)

// Params defines all configurable parameters for trending scores.
//
// The score is ViewsWeight*recentViews + UniqueViewersWeight*uniqueViewers +
// VelocityWeight*velocity. Unique viewers and growth weigh more than raw
// volume so that one user re-opening an item cannot push it up the list.
type Params struct {
	// Window is the lookback length. The prior window is the equal-length
	// window immediately before it.
	Window time.Duration

	ViewsWeight         float64
	UniqueViewersWeight float64
	VelocityWeight      float64

	// Velocity is clamped to [MinVelocity, MaxVelocity].
	MinVelocity float64
	MaxVelocity float64

	// DirectionThreshold is the velocity magnitude beyond which an item is
	// moving up or down rather than stable.
	DirectionThreshold float64

	// Limit truncates the ranked list. Zero keeps every ranked item.
	Limit int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance
type ParamsConfig struct {
	Window              time.Duration
	ViewsWeight         float64
	UniqueViewersWeight float64
	VelocityWeight      float64
	DirectionThreshold  float64
	Limit               int
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		Window:              24 * time.Hour,
		ViewsWeight:         1.0,
		UniqueViewersWeight: 1.5,
		VelocityWeight:      20.0,
		MinVelocity:         -1,
		MaxVelocity:         3,
		DirectionThreshold:  0.1,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.Window > 0 {
		params.Window = config.Window
	}
	if config.ViewsWeight > 0 {
		params.ViewsWeight = config.ViewsWeight
	}
	if config.UniqueViewersWeight > 0 {
		params.UniqueViewersWeight = config.UniqueViewersWeight
	}
	if config.VelocityWeight > 0 {
		params.VelocityWeight = config.VelocityWeight
	}
	if config.DirectionThreshold > 0 {
		params.DirectionThreshold = config.DirectionThreshold
	}
	if config.Limit > 0 {
		params.Limit = config.Limit
	}

	return params
}

// Validate reports whether the parameters can be used for scoring.
func (p *Params) Validate() error {
	switch {
	case p.Window <= 0:
		return fmt.Errorf("%w: trending window must be positive, got %s", domain.ErrConfiguration, p.Window)
	case p.ViewsWeight < 0 || p.UniqueViewersWeight < 0 || p.VelocityWeight < 0:
		return fmt.Errorf("%w: trending weights cannot be negative", domain.ErrConfiguration)
	case p.MinVelocity > p.MaxVelocity:
		return fmt.Errorf("%w: velocity bounds are inverted (%g > %g)",
			domain.ErrConfiguration, p.MinVelocity, p.MaxVelocity)
	case p.DirectionThreshold < 0:
		return fmt.Errorf("%w: direction threshold cannot be negative", domain.ErrConfiguration)
	case p.Limit < 0:
		return fmt.Errorf("%w: trending limit cannot be negative", domain.ErrConfiguration)
	}
	return nil
}

// Lookback returns how far before now events are needed: the recent window
// plus the prior comparison window.
func (p *Params) Lookback() time.Duration {
	return 2 * p.Window
}
