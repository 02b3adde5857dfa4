package session

import (
	"fmt"
	"time"

	"github.com/phrazzld/scry-insights/internal/domain"
)

// Params defines all configurable parameters for session reconstruction
type Params struct {
	// InactivityGap is the largest gap between two events of one session.
	// A strictly larger gap starts a new session.
	InactivityGap time.Duration

	// Location defines calendar-day boundaries. A new session starts when two
	// consecutive events fall on different days in this location.
	Location *time.Location
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance
type ParamsConfig struct {
	InactivityGap time.Duration
	Location      *time.Location
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		InactivityGap: 30 * time.Minute,
		Location:      time.UTC,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.InactivityGap > 0 {
		params.InactivityGap = config.InactivityGap
	}
	if config.Location != nil {
		params.Location = config.Location
	}

	return params
}

// Validate reports whether the parameters can be used for reconstruction.
func (p *Params) Validate() error {
	if p.InactivityGap <= 0 {
		return fmt.Errorf("%w: session inactivity gap must be positive, got %s",
			domain.ErrConfiguration, p.InactivityGap)
	}
	if p.Location == nil {
		return fmt.Errorf("%w: session location cannot be nil", domain.ErrConfiguration)
	}
	return nil
}
