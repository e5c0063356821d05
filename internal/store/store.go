// Package store provides PostgreSQL persistence for email records.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/email-tracker/internal/types"
)

// Store wraps a PostgreSQL connection pool
type Store struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close closes the connection pool
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Init creates the emails table if it does not exist yet
func (s *Store) Init(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS emails (
			id        TEXT PRIMARY KEY,
			date      TIMESTAMPTZ NOT NULL,
			sender    TEXT NOT NULL,
			address   TEXT NOT NULL,
			subject   TEXT NOT NULL,
			body      TEXT NOT NULL,
			summary   TEXT,
			processed BOOLEAN NOT NULL DEFAULT FALSE,
			category  TEXT
		)`)
	if err != nil {
		return fmt.Errorf("failed to initialize emails table: %w", err)
	}
	return nil
}

// InsertIfAbsent stores a newly fetched email unless a record with the same
// id already exists. Returns true when a new row was created.
func (s *Store) InsertIfAbsent(ctx context.Context, e types.Email) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO emails (id, date, sender, address, subject, body, processed)
		 VALUES ($1, $2, $3, $4, $5, $6, FALSE)
		 ON CONFLICT (id) DO NOTHING`,
		e.ID, e.Date, e.Sender, e.Address, e.Subject, e.Body,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert email %s: %w", e.ID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// Unprocessed returns every email not yet completed by a category handler,
// including backlog left over from previous runs.
func (s *Store) Unprocessed(ctx context.Context) ([]types.Email, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, date, sender, address, subject, body, summary, processed, category
		 FROM emails WHERE processed = FALSE ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query unprocessed emails: %w", err)
	}
	defer rows.Close()

	var emails []types.Email
	for rows.Next() {
		var e types.Email
		var summary, category *string
		if err := rows.Scan(&e.ID, &e.Date, &e.Sender, &e.Address, &e.Subject, &e.Body, &summary, &e.Processed, &category); err != nil {
			return nil, fmt.Errorf("failed to scan email: %w", err)
		}
		if summary != nil {
			e.Summary = *summary
		}
		if category != nil {
			e.Category = types.Category(*category)
		}
		emails = append(emails, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read unprocessed emails: %w", err)
	}
	return emails, nil
}

// SaveSummary attaches a generated summary to an email record
func (s *Store) SaveSummary(ctx context.Context, id, summary string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE emails SET summary = $1 WHERE id = $2`, summary, id)
	if err != nil {
		return fmt.Errorf("failed to save summary for email %s: %w", id, err)
	}
	return nil
}

// MarkProcessed flags an email as completed with its resolved category
func (s *Store) MarkProcessed(ctx context.Context, id string, category types.Category) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE emails SET processed = TRUE, category = $1 WHERE id = $2`, string(category), id)
	if err != nil {
		return fmt.Errorf("failed to mark email %s processed: %w", id, err)
	}
	return nil
}

// Stats summarizes the state of the email table
type Stats struct {
	Total      int
	Processed  int
	ByCategory map[string]int
}

// Unprocessed returns the number of emails still awaiting processing
func (st Stats) Unprocessed() int {
	return st.Total - st.Processed
}

// Stats returns record totals and a per-category breakdown
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{ByCategory: make(map[string]int)}

	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE processed) FROM emails`,
	).Scan(&stats.Total, &stats.Processed)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to count emails: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT category, COUNT(*) FROM emails WHERE category IS NOT NULL GROUP BY category`)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to count categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return Stats{}, fmt.Errorf("failed to scan category count: %w", err)
		}
		stats.ByCategory[category] = count
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("failed to read category counts: %w", err)
	}
	return stats, nil
}
