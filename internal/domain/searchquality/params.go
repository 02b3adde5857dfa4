package searchquality

import (
	"fmt"

	"github.com/phrazzld/scry-insights/internal/domain"
)

// Params defines all configurable parameters for search quality scoring.
//
// Each component is normalized to 0-100 before weighting, so the weights
// should sum to 1 for the composite to stay on the same scale.
type Params struct {
	CTRWeight       float64
	SpeedWeight     float64
	SuccessWeight   float64
	RelevanceWeight float64

	// SpeedDivisorMs converts the average time to click into speed points:
	// speed = max(0, 100 - avgTimeToClickMs/SpeedDivisorMs).
	SpeedDivisorMs float64

	// RelevanceSaturation is the average result count that earns the full
	// relevance score.
	RelevanceSaturation float64
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance
type ParamsConfig struct {
	CTRWeight           float64
	SpeedWeight         float64
	SuccessWeight       float64
	RelevanceWeight     float64
	SpeedDivisorMs      float64
	RelevanceSaturation float64
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		CTRWeight:           0.4,
		SpeedWeight:         0.2,
		SuccessWeight:       0.3,
		RelevanceWeight:     0.1,
		SpeedDivisorMs:      100,
		RelevanceSaturation: 10,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.CTRWeight > 0 {
		params.CTRWeight = config.CTRWeight
	}
	if config.SpeedWeight > 0 {
		params.SpeedWeight = config.SpeedWeight
	}
	if config.SuccessWeight > 0 {
		params.SuccessWeight = config.SuccessWeight
	}
	if config.RelevanceWeight > 0 {
		params.RelevanceWeight = config.RelevanceWeight
	}
	if config.SpeedDivisorMs > 0 {
		params.SpeedDivisorMs = config.SpeedDivisorMs
	}
	if config.RelevanceSaturation > 0 {
		params.RelevanceSaturation = config.RelevanceSaturation
	}

	return params
}

// Validate reports whether the parameters can be used for scoring.
func (p *Params) Validate() error {
	weights := p.CTRWeight + p.SpeedWeight + p.SuccessWeight + p.RelevanceWeight
	switch {
	case p.CTRWeight < 0 || p.SpeedWeight < 0 || p.SuccessWeight < 0 || p.RelevanceWeight < 0:
		return fmt.Errorf("%w: search quality weights cannot be negative", domain.ErrConfiguration)
	case weights <= 0:
		return fmt.Errorf("%w: at least one search quality weight must be positive", domain.ErrConfiguration)
	case p.SpeedDivisorMs <= 0:
		return fmt.Errorf("%w: speed divisor must be positive, got %g", domain.ErrConfiguration, p.SpeedDivisorMs)
	case p.RelevanceSaturation <= 0:
		return fmt.Errorf("%w: relevance saturation must be positive, got %g",
			domain.ErrConfiguration, p.RelevanceSaturation)
	}
	return nil
}
