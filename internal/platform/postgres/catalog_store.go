package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/scry-insights/internal/domain"
	"github.com/phrazzld/scry-insights/internal/platform/logger"
	"github.com/phrazzld/scry-insights/internal/store"
)

// PostgresCatalogStore implements the store.CatalogStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCatalogStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresCatalogStore creates a new PostgreSQL implementation of the CatalogStore interface.
// Nodes and prerequisite edges are read in one snapshot transaction, so it
// needs the pool rather than a DBTX.
func NewPostgresCatalogStore(db *sql.DB, logger *slog.Logger) *PostgresCatalogStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCatalogStore{
		db:     db,
		logger: logger.With(slog.String("component", "catalog_store")),
	}
}

// Ensure PostgresCatalogStore implements store.CatalogStore interface
var _ store.CatalogStore = (*PostgresCatalogStore)(nil)

// LoadCatalog implements store.CatalogStore.LoadCatalog
// Nodes are ordered by slug and prerequisites by slug within a node.
func (s *PostgresCatalogStore) LoadCatalog(ctx context.Context) (domain.Catalog, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var catalog domain.Catalog
	err := store.RunInSnapshot(logger.WithLogger(ctx, log), s.db, func(ctx context.Context, tx *sql.Tx) error {
		nodes, err := loadNodes(ctx, tx)
		if err != nil {
			return err
		}
		if err := loadPrerequisites(ctx, tx, nodes); err != nil {
			return err
		}
		catalog = nodes
		return nil
	})
	if err != nil {
		log.Error("failed to load catalog", slog.String("error", err.Error()))
		return nil, store.NewStoreError("content_node", "load", "catalog query failed", MapError(err))
	}

	log.Debug("catalog loaded", slog.Int("nodes", len(catalog)))
	return catalog, nil
}

func loadNodes(ctx context.Context, tx *sql.Tx) (domain.Catalog, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT slug, name, category
		FROM content_nodes
		ORDER BY slug
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var nodes domain.Catalog
	for rows.Next() {
		var n domain.ContentNode
		if err := rows.Scan(&n.Slug, &n.Name, &n.Category); err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

func loadPrerequisites(ctx context.Context, tx *sql.Tx, nodes domain.Catalog) error {
	rows, err := tx.QueryContext(ctx, `
		SELECT content_slug, prerequisite_slug
		FROM content_prerequisites
		ORDER BY content_slug, prerequisite_slug
	`)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		index[n.Slug] = i
	}

	for rows.Next() {
		var slug, prerequisite string
		if err := rows.Scan(&slug, &prerequisite); err != nil {
			return err
		}
		// Foreign keys keep edges consistent with nodes; an edge for an
		// unknown node can only appear mid-migration and is dropped.
		if i, ok := index[slug]; ok {
			nodes[i].Prerequisites = append(nodes[i].Prerequisites, prerequisite)
		}
	}
	return rows.Err()
}
