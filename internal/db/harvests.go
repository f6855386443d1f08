package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Harvest represents a stored record of one sitemap collection run.
type Harvest struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	BaseURLs   []string  `json:"base_urls"`
	URLCount   int       `json:"url_count"`
	ErrorCount int       `json:"error_count"`
	Errors     []string  `json:"errors,omitempty"`
	DurationMs int64     `json:"duration_ms"`
}

// RecordHarvest stores the outcome of a collection run and returns its ID.
func (db *DB) RecordHarvest(ctx context.Context, baseURLs []string, urlCount int, errs []string, duration time.Duration) (string, error) {
	id := uuid.New().String()

	query := `
		INSERT INTO harvests (id, base_urls, url_count, error_count, errors, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := db.client.ExecContext(ctx, query,
		id,
		pq.Array(baseURLs),
		urlCount,
		len(errs),
		pq.Array(errs),
		duration.Milliseconds(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to record harvest: %w", err)
	}

	return id, nil
}

// GetHarvest returns a single harvest record by ID.
func (db *DB) GetHarvest(ctx context.Context, id string) (*Harvest, error) {
	query := `
		SELECT id, created_at, base_urls, url_count, error_count, errors, duration_ms
		FROM harvests
		WHERE id = $1
	`

	var h Harvest
	err := db.client.QueryRowContext(ctx, query, id).Scan(
		&h.ID,
		&h.CreatedAt,
		pq.Array(&h.BaseURLs),
		&h.URLCount,
		&h.ErrorCount,
		pq.Array(&h.Errors),
		&h.DurationMs,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("harvest not found: %s", id)
		}
		return nil, fmt.Errorf("failed to fetch harvest: %w", err)
	}

	return &h, nil
}

// RecentHarvests returns the most recent harvest records, newest first.
func (db *DB) RecentHarvests(ctx context.Context, limit int) ([]Harvest, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, created_at, base_urls, url_count, error_count, errors, duration_ms
		FROM harvests
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := db.client.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list harvests: %w", err)
	}
	defer rows.Close()

	var harvests []Harvest
	for rows.Next() {
		var h Harvest
		if err := rows.Scan(
			&h.ID,
			&h.CreatedAt,
			pq.Array(&h.BaseURLs),
			&h.URLCount,
			&h.ErrorCount,
			pq.Array(&h.Errors),
			&h.DurationMs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan harvest: %w", err)
		}
		harvests = append(harvests, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate harvests: %w", err)
	}

	return harvests, nil
}
