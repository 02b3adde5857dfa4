package session

import (
	"testing"
	"time"
)

func TestNewParams(t *testing.T) {
	params := NewParams(ParamsConfig{})
	if params.InactivityGap != 30*time.Minute {
		t.Errorf("Expected default gap of 30m, got %s", params.InactivityGap)
	}
	if params.Location != time.UTC {
		t.Errorf("Expected UTC location, got %v", params.Location)
	}

	params = NewParams(ParamsConfig{InactivityGap: time.Hour})
	if params.InactivityGap != time.Hour {
		t.Errorf("Expected overridden gap of 1h, got %s", params.InactivityGap)
	}
	if err := params.Validate(); err != nil {
		t.Errorf("Expected valid params, got %v", err)
	}
}
