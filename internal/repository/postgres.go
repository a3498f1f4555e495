package repository

import (
	"context"
	"fmt"

	"github.com/UnknownOlympus/nearby/internal/models"
)

const schemaQuery = `
	CREATE TABLE IF NOT EXISTS searches (
		search_id    BIGSERIAL PRIMARY KEY,
		latitude     DOUBLE PRECISION NOT NULL,
		longitude    DOUBLE PRECISION NOT NULL,
		provider     TEXT NOT NULL,
		result_count INTEGER NOT NULL,
		searched_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE TABLE IF NOT EXISTS search_results (
		search_id    BIGINT NOT NULL REFERENCES searches (search_id) ON DELETE CASCADE,
		position     INTEGER NOT NULL,
		place_id     TEXT NOT NULL,
		name         TEXT NOT NULL,
		display_name TEXT NOT NULL,
		latitude     DOUBLE PRECISION NOT NULL,
		longitude    DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (search_id, position)
	);
`

const insertSearchQuery = `
	INSERT INTO searches (latitude, longitude, provider, result_count)
	VALUES ($1, $2, $3, $4)
	RETURNING search_id;
`

const insertResultQuery = `
	INSERT INTO search_results (search_id, position, place_id, name, display_name, latitude, longitude)
	VALUES ($1, $2, $3, $4, $5, $6, $7);
`

const recentSearchesQuery = `
	SELECT search_id, latitude, longitude, provider, result_count, searched_at
	FROM searches
	ORDER BY searched_at DESC, search_id DESC
	LIMIT $1;
`

// EnsureSchema creates the history tables if they do not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schemaQuery); err != nil {
		return fmt.Errorf("failed to create history schema: %w", err)
	}

	return nil
}

// SaveSearch stores one successful search together with its results, in response order.
// Everything is written in a single transaction, so a failed insert leaves no partial record.
func (r *Repository) SaveSearch(
	ctx context.Context,
	point models.GeoPoint,
	provider string,
	places []models.PlaceResult,
) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var searchID int64
	err = tx.QueryRow(ctx, insertSearchQuery, point.Latitude, point.Longitude, provider, len(places)).
		Scan(&searchID)
	if err != nil {
		return fmt.Errorf("failed to insert search: %w", err)
	}

	for idx, place := range places {
		_, err = tx.Exec(ctx, insertResultQuery,
			searchID, idx, place.ID, place.Name, place.DisplayName, place.Latitude, place.Longitude)
		if err != nil {
			return fmt.Errorf("failed to insert search result %s: %w", place.ID, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit search: %w", err)
	}

	r.log.DebugContext(ctx, "Search saved to history", "search", searchID, "results", len(places))

	return nil
}

// RecentSearches returns up to limit history records, newest first.
func (r *Repository) RecentSearches(ctx context.Context, limit int) ([]models.SearchRecord, error) {
	rows, err := r.db.Query(ctx, recentSearchesQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent searches: %w", err)
	}
	defer rows.Close()

	var records []models.SearchRecord
	for rows.Next() {
		var rec models.SearchRecord
		if errScan := rows.Scan(
			&rec.ID, &rec.Location.Latitude, &rec.Location.Longitude,
			&rec.Provider, &rec.ResultCount, &rec.SearchedAt,
		); errScan != nil {
			return nil, fmt.Errorf("failed to scan search record: %w", errScan)
		}
		records = append(records, rec)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return records, nil
}
