package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/scry-insights/internal/domain"
	"github.com/phrazzld/scry-insights/internal/platform/logger"
	"github.com/phrazzld/scry-insights/internal/store"
)

// DefaultMaxRows caps a single fetch when no limit is configured.
const DefaultMaxRows = 500_000

const viewsQuery = `
	SELECT id, user_id, content_slug, content_name, category, occurred_at,
	       view_duration_seconds, session_id, source_channel
	FROM view_events
	WHERE occurred_at >= $1 AND occurred_at < $2
	  AND ($3::text IS NULL OR user_id = $3)
	ORDER BY occurred_at, id
	LIMIT $4
`

const searchesQuery = `
	SELECT id, user_id, query_text, occurred_at, filters, results_count,
	       clicked_slug, clicked_position, time_to_click_ms, failed
	FROM search_events
	WHERE occurred_at >= $1 AND occurred_at < $2
	  AND ($3::text IS NULL OR user_id = $3)
	ORDER BY occurred_at, id
	LIMIT $4
`

// PostgresEventStore implements the store.EventStore interface
// using a PostgreSQL database as the storage backend.
type PostgresEventStore struct {
	db      store.DBTX
	logger  *slog.Logger
	maxRows int
}

// NewPostgresEventStore creates a new PostgreSQL implementation of the EventStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// A fetch matching more than maxRows rows fails with store.ErrTooManyRows;
// maxRows <= 0 selects DefaultMaxRows. If logger is nil, a default logger will be used.
func NewPostgresEventStore(db store.DBTX, maxRows int, logger *slog.Logger) *PostgresEventStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}

	return &PostgresEventStore{
		db:      db,
		logger:  logger.With(slog.String("component", "event_store")),
		maxRows: maxRows,
	}
}

// Ensure PostgresEventStore implements store.EventStore interface
var _ store.EventStore = (*PostgresEventStore)(nil)

// FetchViews implements store.EventStore.FetchViews
func (s *PostgresEventStore) FetchViews(ctx context.Context, filter store.EventFilter) ([]domain.ViewEvent, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := filter.Validate(); err != nil {
		log.Warn("rejected view fetch", slog.String("error", err.Error()))
		return nil, err
	}

	start := time.Now()
	rows, err := s.db.QueryContext(ctx, viewsQuery, filterArgs(filter, s.maxRows)...)
	if err != nil {
		return nil, s.fail(ctx, log, "view_event", err)
	}
	defer func() { _ = rows.Close() }()

	events := make([]domain.ViewEvent, 0, 256)
	for rows.Next() {
		var (
			e        domain.ViewEvent
			userID   sql.NullString
			duration sql.NullInt32
			session  sql.NullString
			channel  string
		)
		if err := rows.Scan(
			&e.ID,
			&userID,
			&e.ContentSlug,
			&e.ContentName,
			&e.Category,
			&e.Timestamp,
			&duration,
			&session,
			&channel,
		); err != nil {
			return nil, s.fail(ctx, log, "view_event", err)
		}

		e.UserID = nullString(userID)
		e.SessionID = nullString(session)
		if duration.Valid {
			d := int(duration.Int32)
			e.ViewDurationSeconds = &d
		}
		e.SourceChannel = domain.ParseSourceChannel(channel)
		e.Timestamp = e.Timestamp.UTC()

		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail(ctx, log, "view_event", err)
	}

	if err := s.checkLimit(log, "view_event", len(events)); err != nil {
		return nil, err
	}

	log.Debug("fetched view events",
		slog.Int("count", len(events)),
		slog.Duration("duration", time.Since(start)),
		slog.Time("since", filter.Since),
		slog.Time("until", filter.Until))
	return events, nil
}

// FetchSearches implements store.EventStore.FetchSearches
func (s *PostgresEventStore) FetchSearches(ctx context.Context, filter store.EventFilter) ([]domain.SearchEvent, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := filter.Validate(); err != nil {
		log.Warn("rejected search fetch", slog.String("error", err.Error()))
		return nil, err
	}

	start := time.Now()
	rows, err := s.db.QueryContext(ctx, searchesQuery, filterArgs(filter, s.maxRows)...)
	if err != nil {
		return nil, s.fail(ctx, log, "search_event", err)
	}
	defer func() { _ = rows.Close() }()

	events := make([]domain.SearchEvent, 0, 256)
	for rows.Next() {
		var (
			e        domain.SearchEvent
			userID   sql.NullString
			filters  []byte
			clicked  sql.NullString
			position sql.NullInt32
			ttc      sql.NullInt64
			failed   sql.NullBool
		)
		if err := rows.Scan(
			&e.ID,
			&userID,
			&e.QueryText,
			&e.Timestamp,
			&filters,
			&e.ResultsCount,
			&clicked,
			&position,
			&ttc,
			&failed,
		); err != nil {
			return nil, s.fail(ctx, log, "search_event", err)
		}

		e.UserID = nullString(userID)
		e.ClickedSlug = nullString(clicked)
		if position.Valid {
			p := int(position.Int32)
			e.ClickedPosition = &p
		}
		if ttc.Valid {
			v := ttc.Int64
			e.TimeToClickMs = &v
		}
		if failed.Valid {
			f := failed.Bool
			e.Failed = &f
		}
		e.Filters = decodeFilters(filters)
		e.Timestamp = e.Timestamp.UTC()

		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail(ctx, log, "search_event", err)
	}

	if err := s.checkLimit(log, "search_event", len(events)); err != nil {
		return nil, err
	}

	log.Debug("fetched search events",
		slog.Int("count", len(events)),
		slog.Duration("duration", time.Since(start)),
		slog.Time("since", filter.Since),
		slog.Time("until", filter.Until))
	return events, nil
}

// fail maps and logs a query failure.
func (s *PostgresEventStore) fail(ctx context.Context, log *slog.Logger, entity string, err error) error {
	mapped := MapError(err)
	level := slog.LevelError
	if errors.Is(err, context.Canceled) {
		level = slog.LevelDebug
	}
	log.Log(ctx, level, "event fetch failed",
		slog.String("entity", entity),
		slog.String("error", err.Error()))
	return store.NewStoreError(entity, "fetch", "query failed", mapped)
}

// checkLimit rejects fetches that hit the row cap. The query asks for one
// row more than the cap so an exactly full window is still accepted.
func (s *PostgresEventStore) checkLimit(log *slog.Logger, entity string, n int) error {
	if n <= s.maxRows {
		return nil
	}
	log.Warn("event fetch exceeded row limit",
		slog.String("entity", entity),
		slog.Int("max_rows", s.maxRows))
	return store.NewStoreError(entity, "fetch",
		fmt.Sprintf("more than %d rows in window", s.maxRows), store.ErrTooManyRows)
}

func filterArgs(filter store.EventFilter, maxRows int) []any {
	var user any
	if filter.UserID != nil {
		user = *filter.UserID
	}
	return []any{filter.Since.UTC(), filter.Until.UTC(), user, maxRows + 1}
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

// decodeFilters reads the JSONB filter object. Non-string values keep their
// JSON text; an unreadable object yields no filters rather than failing the
// whole fetch.
func decodeFilters(raw []byte) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || len(fields) == 0 {
		return nil
	}

	filters := make(map[string]string, len(fields))
	for k, v := range fields {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			filters[k] = s
			continue
		}
		filters[k] = string(v)
	}
	return filters
}
