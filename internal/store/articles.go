package store

import (
	"database/sql"
	"fmt"
	"log"
)

// Article is a persisted row. GUID is the natural key; the row is written
// once and never updated, so Score and Matched reflect the rule set that was
// active when the article was first accepted.
type Article struct {
	ID          int64
	GUID        string
	Title       string
	Link        string
	Authors     string
	Abstract    string
	Published   string
	FeedSource  string
	Score       int
	Matched     string
	FetchedDate string
}

// fetchedDateFormat is ISO-8601 with a fixed-width fractional second, so
// lexicographic ordering of stored values is chronological ordering.
const fetchedDateFormat = "2006-01-02T15:04:05.000000000Z07:00"

// InsertOutcome reports what InsertIfAbsent did.
type InsertOutcome int

const (
	// Inserted means a new row was written.
	Inserted InsertOutcome = iota
	// AlreadyExists means a row with the same guid is already stored; the
	// existing row is left untouched.
	AlreadyExists
	// Failed means the insert hit an unexpected storage error.
	Failed
)

// InsertIfAbsent writes the article unless a row with its guid already
// exists. The guid uniqueness check is done by the database, so concurrent
// inserts racing on the same guid leave exactly one row. The empty-string
// guid is an ordinary value: two entries with empty guids collide.
// FetchedDate is assigned here, at first insert.
func (s *Store) InsertIfAbsent(a Article) (InsertOutcome, error) {
	res, err := s.conn.Exec(
		`INSERT INTO articles
		(guid, title, link, authors, abstract, published, feed_source, relevance_score, keywords_matched, fetched_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(guid) DO NOTHING`,
		a.GUID, a.Title, a.Link, a.Authors, a.Abstract, a.Published,
		a.FeedSource, a.Score, a.Matched,
		s.now().UTC().Format(fetchedDateFormat),
	)
	if err != nil {
		return Failed, fmt.Errorf("inserting article %q: %w", a.GUID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Failed, fmt.Errorf("inserting article %q: %w", a.GUID, err)
	}
	if n == 0 {
		return AlreadyExists, nil
	}
	return Inserted, nil
}

// InsertBatch inserts articles one independent statement at a time, in the
// given order, and returns the count of newly inserted rows. Duplicates are
// an expected no-op; any other failure is logged and that article is
// skipped. The batch always runs to completion.
func (s *Store) InsertBatch(articles []Article) int {
	saved := 0
	for _, a := range articles {
		outcome, err := s.InsertIfAbsent(a)
		if err != nil {
			log.Printf("Failed to save article %q: %v", a.GUID, err)
			continue
		}
		if outcome == Inserted {
			saved++
		}
	}
	return saved
}

// Recent returns at most limit articles ordered by fetched_date descending,
// ties broken by relevance_score descending. A non-nil minScore excludes
// rows scoring below it before the limit applies.
func (s *Store) Recent(limit int, minScore *int) ([]Article, error) {
	query := `SELECT id, guid, title, link, authors, abstract, published,
		feed_source, relevance_score, keywords_matched, fetched_date
		FROM articles`
	var args []any
	if minScore != nil {
		query += " WHERE relevance_score >= ?"
		args = append(args, *minScore)
	}
	query += " ORDER BY fetched_date DESC, relevance_score DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying recent articles: %w", err)
	}
	defer rows.Close()
	return scanArticles(rows)
}

// GetByGUID returns the stored article with the given guid, or nil.
func (s *Store) GetByGUID(guid string) (*Article, error) {
	row := s.conn.QueryRow(
		`SELECT id, guid, title, link, authors, abstract, published,
		feed_source, relevance_score, keywords_matched, fetched_date
		FROM articles WHERE guid = ?`, guid,
	)
	var a Article
	err := row.Scan(&a.ID, &a.GUID, &a.Title, &a.Link, &a.Authors, &a.Abstract,
		&a.Published, &a.FeedSource, &a.Score, &a.Matched, &a.FetchedDate)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Stats contains aggregate store statistics.
type Stats struct {
	TotalArticles int
	DistinctFeeds int
	MaxScore      int
	LastFetched   string
}

// GetStats returns aggregate statistics for the status report.
func (s *Store) GetStats() (*Stats, error) {
	var st Stats
	err := s.conn.QueryRow(
		`SELECT COUNT(*),
			COUNT(DISTINCT feed_source),
			COALESCE(MAX(relevance_score), 0),
			COALESCE(MAX(fetched_date), '')
		FROM articles`,
	).Scan(&st.TotalArticles, &st.DistinctFeeds, &st.MaxScore, &st.LastFetched)
	if err != nil {
		return nil, fmt.Errorf("reading stats: %w", err)
	}
	return &st, nil
}

func scanArticles(rows *sql.Rows) ([]Article, error) {
	var articles []Article
	for rows.Next() {
		var a Article
		if err := rows.Scan(&a.ID, &a.GUID, &a.Title, &a.Link, &a.Authors, &a.Abstract,
			&a.Published, &a.FeedSource, &a.Score, &a.Matched, &a.FetchedDate); err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}
