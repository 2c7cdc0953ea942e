package db

import "fmt"

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS events (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			uuid        TEXT NOT NULL UNIQUE,
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			date_from   TEXT NOT NULL,
			date_to     TEXT NOT NULL,
			created_at  TEXT NOT NULL,
			CHECK (date_from <= date_to)
		);

		CREATE INDEX IF NOT EXISTS idx_events_date_from ON events(date_from);
		CREATE INDEX IF NOT EXISTS idx_events_date_to ON events(date_to);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating events table: %w", err)
	}

	return nil
}
