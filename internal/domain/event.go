package domain

import (
	"strings"
	"time"
)

// SourceChannel identifies how a user arrived at a piece of content.
type SourceChannel string

// Possible source channel values
const (
	SourceSearch         SourceChannel = "search"
	SourceTrending       SourceChannel = "trending"
	SourceDirect         SourceChannel = "direct"
	SourceRecommendation SourceChannel = "recommendation"
	SourceUnknown        SourceChannel = "unknown"
)

// ParseSourceChannel normalizes a stored channel value. Anything that is not a
// known channel maps to SourceUnknown.
func ParseSourceChannel(s string) SourceChannel {
	switch c := SourceChannel(strings.ToLower(strings.TrimSpace(s))); c {
	case SourceSearch, SourceTrending, SourceDirect, SourceRecommendation:
		return c
	default:
		return SourceUnknown
	}
}

// AnonymousUserKey is the stream key shared by all events without a user id.
const AnonymousUserKey = "anonymous"

// ViewEvent is an immutable content-view fact from the append-only view log.
type ViewEvent struct {
	// ID is the ingestion sequence number in the log. It orders events that
	// share a timestamp.
	ID                  int64         `json:"id"`
	UserID              *string       `json:"user_id,omitempty"`
	ContentSlug         string        `json:"content_slug"`
	ContentName         string        `json:"content_name"`
	Category            string        `json:"category"`
	Timestamp           time.Time     `json:"timestamp"`
	ViewDurationSeconds *int          `json:"view_duration_seconds,omitempty"`
	SessionID           *string       `json:"session_id,omitempty"`
	SourceChannel       SourceChannel `json:"source_channel"`
}

// UserKey returns the user id, or AnonymousUserKey when the view is anonymous.
func (e ViewEvent) UserKey() string {
	if e.UserID == nil || *e.UserID == "" {
		return AnonymousUserKey
	}
	return *e.UserID
}

// Duration returns the view duration in seconds, treating a missing value as 0.
func (e ViewEvent) Duration() int {
	if e.ViewDurationSeconds == nil || *e.ViewDurationSeconds < 0 {
		return 0
	}
	return *e.ViewDurationSeconds
}

// HasSessionID reports whether the event carries an explicit session id.
func (e ViewEvent) HasSessionID() bool {
	return e.SessionID != nil && *e.SessionID != ""
}

// Validate reports whether the event can take part in aggregation.
// The returned error wraps ErrMalformedRecord.
func (e ViewEvent) Validate() error {
	if e.Timestamp.IsZero() {
		return &MalformedRecordError{RecordID: e.ID, Reason: "missing timestamp"}
	}
	if strings.TrimSpace(e.ContentSlug) == "" {
		return &MalformedRecordError{RecordID: e.ID, Reason: "missing content slug"}
	}
	return nil
}

// Before orders view events by timestamp, then ingestion sequence.
func (e ViewEvent) Before(o ViewEvent) bool {
	if !e.Timestamp.Equal(o.Timestamp) {
		return e.Timestamp.Before(o.Timestamp)
	}
	return e.ID < o.ID
}

// FilterCategory is the search filter key holding a category.
const FilterCategory = "category"

// SearchEvent is an immutable search fact from the append-only search log.
type SearchEvent struct {
	ID              int64             `json:"id"`
	UserID          *string           `json:"user_id,omitempty"`
	QueryText       string            `json:"query_text"`
	Timestamp       time.Time         `json:"timestamp"`
	Filters         map[string]string `json:"filters,omitempty"`
	ResultsCount    int               `json:"results_count"`
	ClickedSlug     *string           `json:"clicked_slug,omitempty"`
	ClickedPosition *int              `json:"clicked_position,omitempty"`
	TimeToClickMs   *int64            `json:"time_to_click_ms,omitempty"`
	// Failed is nil for rows written before the give-up signal existed.
	Failed *bool `json:"failed,omitempty"`
}

// IsFailed reports whether the search failed. An explicit Failed flag is
// authoritative since it also captures user abandonment; without it a search
// with zero results counts as failed.
func (e SearchEvent) IsFailed() bool {
	if e.Failed != nil {
		return *e.Failed
	}
	return e.ResultsCount == 0
}

// Clicked reports whether the search led to a result click.
func (e SearchEvent) Clicked() bool {
	return e.ClickedSlug != nil && *e.ClickedSlug != ""
}

// Category returns the category filter, or "" when the search was unfiltered.
func (e SearchEvent) Category() string {
	return strings.TrimSpace(e.Filters[FilterCategory])
}

// Validate reports whether the event can take part in aggregation.
func (e SearchEvent) Validate() error {
	if e.Timestamp.IsZero() {
		return &MalformedRecordError{RecordID: e.ID, Reason: "missing timestamp"}
	}
	if e.ResultsCount < 0 {
		return &MalformedRecordError{RecordID: e.ID, Reason: "negative results count"}
	}
	return nil
}

// MalformedRecordError describes why a single event was skipped.
type MalformedRecordError struct {
	RecordID int64
	Reason   string
}

// Error implements the error interface.
func (e *MalformedRecordError) Error() string {
	return "malformed record: " + e.Reason
}

// Unwrap allows errors.Is(err, ErrMalformedRecord).
func (e *MalformedRecordError) Unwrap() error {
	return ErrMalformedRecord
}
