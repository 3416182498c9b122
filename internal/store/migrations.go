package store

import "database/sql"

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "initial schema",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS articles (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    guid TEXT UNIQUE NOT NULL,
    title TEXT NOT NULL,
    link TEXT NOT NULL DEFAULT '',
    authors TEXT NOT NULL DEFAULT '',
    abstract TEXT NOT NULL DEFAULT '',
    published TEXT NOT NULL DEFAULT '',
    feed_source TEXT NOT NULL DEFAULT '',
    relevance_score INTEGER NOT NULL,
    keywords_matched TEXT NOT NULL DEFAULT '',
    fetched_date TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_articles_fetched ON articles(fetched_date);
CREATE INDEX IF NOT EXISTS idx_articles_score ON articles(relevance_score);
`)
			return err
		},
	},
}

// latestVersion returns the highest migration version number.
func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}
