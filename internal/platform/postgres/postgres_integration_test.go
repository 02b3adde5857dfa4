//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/phrazzld/scry-insights/internal/domain/progress"
	"github.com/phrazzld/scry-insights/internal/platform/postgres"
	"github.com/phrazzld/scry-insights/internal/store"
	"github.com/phrazzld/scry-insights/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestDB returns a migrated test database with every table emptied.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db := testdb.Open(t)
	testdb.Reset(t, db)
	return db
}

func TestEventStore_Integration(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	_, err := db.ExecContext(ctx, `
		INSERT INTO view_events (user_id, content_slug, content_name, category, occurred_at,
		                         view_duration_seconds, session_id, source_channel)
		VALUES
			('u1', 'modelA', 'Model A', 'thinking', $1, 40, NULL, 'search'),
			('u1', 'modelB', 'Model B', 'bias', $2, 10, NULL, 'direct'),
			(NULL, 'modelA', 'Model A', 'thinking', $2, NULL, 'anon-1', 'legacy'),
			('u2', 'modelC', 'Model C', 'systems', $3, 90, NULL, 'trending')
	`, base, base.Add(5*time.Minute), base.Add(48*time.Hour))
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `
		INSERT INTO search_events (user_id, query_text, occurred_at, filters, results_count,
		                           clicked_slug, clicked_position, time_to_click_ms, failed)
		VALUES
			('u1', 'bias', $1, '{"category":"bias"}', 4, 'modelB', 1, 1500, false),
			('u1', 'nothing', $1, '{}', 0, NULL, NULL, NULL, NULL)
	`, base)
	require.NoError(t, err)

	s := postgres.NewPostgresEventStore(db, 100, nil)
	window := store.EventFilter{Since: base.Add(-time.Hour), Until: base.Add(time.Hour)}

	views, err := s.FetchViews(ctx, window)
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, "modelA", views[0].ContentSlug)
	assert.Nil(t, views[2].UserID)
	assert.Equal(t, "unknown", string(views[2].SourceChannel))

	user := "u1"
	views, err = s.FetchViews(ctx, store.EventFilter{UserID: &user, Since: window.Since, Until: window.Until})
	require.NoError(t, err)
	assert.Len(t, views, 2)

	searches, err := s.FetchSearches(ctx, window)
	require.NoError(t, err)
	require.Len(t, searches, 2)
	assert.Equal(t, "bias", searches[0].Category())
	assert.True(t, searches[1].IsFailed())

	small := postgres.NewPostgresEventStore(db, 2, nil)
	_, err = small.FetchViews(ctx, window)
	assert.ErrorIs(t, err, store.ErrTooManyRows)
}

func TestCatalogStore_Integration(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `
		INSERT INTO content_nodes (slug, name, category) VALUES
			('a', 'A', 'thinking'), ('b', 'B', 'thinking'), ('c', 'C', 'bias');
		INSERT INTO content_prerequisites (content_slug, prerequisite_slug) VALUES
			('b', 'a'), ('c', 'b');
	`)
	require.NoError(t, err)

	catalog, err := postgres.NewPostgresCatalogStore(db, nil).LoadCatalog(ctx)
	require.NoError(t, err)
	require.Len(t, catalog, 3)
	assert.Equal(t, []string{"b"}, catalog[2].Prerequisites)

	graph, err := progress.NewGraph(catalog)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, graph.Order())
}

func TestEventStore_InsideTransaction(t *testing.T) {
	db := openTestDB(t)
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		_, err := tx.ExecContext(ctx, `
			INSERT INTO view_events (user_id, content_slug, content_name, category, occurred_at, source_channel)
			VALUES ('u9', 'modelZ', 'Model Z', 'systems', $1, 'direct')
		`, base)
		require.NoError(t, err)

		views, err := postgres.NewPostgresEventStore(tx, 10, nil).FetchViews(ctx,
			store.EventFilter{Since: base.Add(-time.Minute), Until: base.Add(time.Minute)})
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, "modelZ", views[0].ContentSlug)
	})

	var count int
	require.NoError(t, db.QueryRowContext(context.Background(), `SELECT count(*) FROM view_events`).Scan(&count))
	assert.Zero(t, count)
}
