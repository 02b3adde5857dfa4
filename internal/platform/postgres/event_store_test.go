package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/scry-insights/internal/domain"
	"github.com/phrazzld/scry-insights/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	since = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	until = time.Date(2026, 4, 8, 0, 0, 0, 0, time.UTC)
)

var viewColumns = []string{
	"id", "user_id", "content_slug", "content_name", "category", "occurred_at",
	"view_duration_seconds", "session_id", "source_channel",
}

var searchColumns = []string{
	"id", "user_id", "query_text", "occurred_at", "filters", "results_count",
	"clicked_slug", "clicked_position", "time_to_click_ms", "failed",
}

func newMockStore(t *testing.T, maxRows int) (*PostgresEventStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresEventStore(db, maxRows, nil), mock
}

func TestNewPostgresEventStore(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { NewPostgresEventStore(nil, 10, nil) })

	s, _ := newMockStore(t, 0)
	assert.Equal(t, DefaultMaxRows, s.maxRows)
}

func TestFetchViews_MapsRows(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t, 100)
	at := since.Add(time.Hour)
	rows := sqlmock.NewRows(viewColumns).
		AddRow(int64(1), "u1", "modelA", "Model A", "thinking", at, int64(40), "s-1", "search").
		AddRow(int64(2), nil, "modelB", "Model B", "bias", at.Add(time.Minute), nil, nil, "carrier-pigeon")

	mock.ExpectQuery(regexp.QuoteMeta("FROM view_events")).
		WithArgs(since, until, nil, 101).
		WillReturnRows(rows)

	events, err := s.FetchViews(context.Background(), store.EventFilter{Since: since, Until: until})
	require.NoError(t, err)
	require.Len(t, events, 2)

	first := events[0]
	assert.Equal(t, int64(1), first.ID)
	require.NotNil(t, first.UserID)
	assert.Equal(t, "u1", *first.UserID)
	require.NotNil(t, first.ViewDurationSeconds)
	assert.Equal(t, 40, *first.ViewDurationSeconds)
	require.NotNil(t, first.SessionID)
	assert.Equal(t, "s-1", *first.SessionID)
	assert.Equal(t, domain.SourceSearch, first.SourceChannel)
	assert.Equal(t, at, first.Timestamp)

	second := events[1]
	assert.Nil(t, second.UserID)
	assert.Nil(t, second.ViewDurationSeconds)
	assert.Nil(t, second.SessionID)
	assert.Equal(t, domain.SourceUnknown, second.SourceChannel)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchViews_UserFilter(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t, 10)
	user := "u42"
	mock.ExpectQuery(regexp.QuoteMeta("FROM view_events")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "u42", 11).
		WillReturnRows(sqlmock.NewRows(viewColumns))

	events, err := s.FetchViews(context.Background(), store.EventFilter{UserID: &user, Since: since, Until: until})
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.NotNil(t, events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchViews_RejectsUnboundedFilter(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t, 10)
	_, err := s.FetchViews(context.Background(), store.EventFilter{Since: since})
	assert.ErrorIs(t, err, store.ErrInvalidFilter)
	assert.NoError(t, mock.ExpectationsWereMet(), "no query may be issued")
}

func TestFetchViews_RowLimit(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t, 2)
	rows := sqlmock.NewRows(viewColumns)
	for i := int64(1); i <= 3; i++ {
		rows.AddRow(i, "u1", "m", "M", "c", since.Add(time.Duration(i)*time.Minute), nil, nil, "direct")
	}
	mock.ExpectQuery(regexp.QuoteMeta("FROM view_events")).WillReturnRows(rows)

	events, err := s.FetchViews(context.Background(), store.EventFilter{Since: since, Until: until})
	assert.Nil(t, events)
	assert.ErrorIs(t, err, store.ErrTooManyRows)
}

func TestFetchViews_ExactlyAtLimit(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t, 2)
	rows := sqlmock.NewRows(viewColumns).
		AddRow(int64(1), "u1", "m", "M", "c", since, nil, nil, "direct").
		AddRow(int64(2), "u1", "m", "M", "c", since, nil, nil, "direct")
	mock.ExpectQuery(regexp.QuoteMeta("FROM view_events")).WillReturnRows(rows)

	events, err := s.FetchViews(context.Background(), store.EventFilter{Since: since, Until: until})
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestFetchViews_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		err         error
		unavailable bool
	}{
		{name: "connection refused", err: &pgconn.PgError{Code: "08001"}, unavailable: true},
		{name: "timeout", err: context.DeadlineExceeded, unavailable: true},
		{name: "bad sql", err: &pgconn.PgError{Code: "42601"}, unavailable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStore(t, 10)
			mock.ExpectQuery(regexp.QuoteMeta("FROM view_events")).WillReturnError(tt.err)

			_, err := s.FetchViews(context.Background(), store.EventFilter{Since: since, Until: until})
			require.Error(t, err)
			assert.Equal(t, tt.unavailable, store.IsUnavailableError(err))

			var storeErr *store.StoreError
			require.True(t, errors.As(err, &storeErr))
			assert.Equal(t, "view_event", storeErr.Entity)
			assert.Equal(t, "fetch", storeErr.Operation)
		})
	}
}

func TestFetchViews_RowError(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t, 10)
	rows := sqlmock.NewRows(viewColumns).
		AddRow(int64(1), "u1", "m", "M", "c", since, nil, nil, "direct").
		RowError(0, sql.ErrConnDone)
	mock.ExpectQuery(regexp.QuoteMeta("FROM view_events")).WillReturnRows(rows)

	_, err := s.FetchViews(context.Background(), store.EventFilter{Since: since, Until: until})
	assert.True(t, store.IsUnavailableError(err))
}

func TestFetchSearches_MapsRows(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t, 10)
	at := since.Add(2 * time.Hour)
	rows := sqlmock.NewRows(searchColumns).
		AddRow(int64(7), "u1", "bias", at, []byte(`{"category":"models","page":2}`), int64(12),
			"confirmation-bias", int64(1), int64(1800), false).
		AddRow(int64(8), nil, "zzz", at, []byte(`{}`), int64(0), nil, nil, nil, nil)

	mock.ExpectQuery(regexp.QuoteMeta("FROM search_events")).
		WithArgs(since, until, nil, 11).
		WillReturnRows(rows)

	events, err := s.FetchSearches(context.Background(), store.EventFilter{Since: since, Until: until})
	require.NoError(t, err)
	require.Len(t, events, 2)

	first := events[0]
	assert.Equal(t, "models", first.Category())
	assert.Equal(t, "2", first.Filters["page"])
	assert.Equal(t, 12, first.ResultsCount)
	require.NotNil(t, first.ClickedSlug)
	assert.Equal(t, "confirmation-bias", *first.ClickedSlug)
	require.NotNil(t, first.ClickedPosition)
	assert.Equal(t, 1, *first.ClickedPosition)
	require.NotNil(t, first.TimeToClickMs)
	assert.Equal(t, int64(1800), *first.TimeToClickMs)
	require.NotNil(t, first.Failed)
	assert.False(t, first.IsFailed())

	second := events[1]
	assert.Nil(t, second.Filters)
	assert.Nil(t, second.Failed)
	assert.True(t, second.IsFailed(), "legacy row with zero results counts as failed")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecodeFilters(t *testing.T) {
	t.Parallel()

	assert.Nil(t, decodeFilters(nil))
	assert.Nil(t, decodeFilters([]byte(`not json`)))
	assert.Nil(t, decodeFilters([]byte(`[]`)))
	assert.Equal(t, map[string]string{"category": "models", "tags": `["a","b"]`},
		decodeFilters([]byte(`{"category":"models","tags":["a","b"]}`)))
}
