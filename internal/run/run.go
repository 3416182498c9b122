// Package run sequences one full ingest-and-persist pass.
package run

import (
	"context"
	"fmt"
	"log"
	"strings"

	"scholarfeed/internal/config"
	"scholarfeed/internal/ingest"
	"scholarfeed/internal/store"
)

// Result summarizes one pass.
type Result struct {
	// Found is the number of entries that cleared the relevance threshold.
	Found int
	// Saved is the number of newly inserted rows.
	Saved int
	// Recent is the reporting view queried after the batch insert.
	Recent []store.Article
}

// Runner drives ingest, storage, and the reporting query in a single linear
// pass. It is the only component aware of all three.
type Runner struct {
	cfg      *config.Config
	store    *store.Store
	ingestor *ingest.Ingestor
}

// New creates a Runner.
func New(cfg *config.Config, st *store.Store, ingestor *ingest.Ingestor) *Runner {
	return &Runner{cfg: cfg, store: st, ingestor: ingestor}
}

// Run performs one pass: fetch and score all configured feeds, insert the
// accepted entries, then query the reporting view. Per-feed and per-row
// failures have already been absorbed upstream; only the reporting query can
// fail the pass.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	log.Printf("Fetching %d feeds", len(r.cfg.Feeds))
	entries := r.ingestor.Ingest(ctx, r.cfg.Feeds)

	articles := make([]store.Article, len(entries))
	for i, e := range entries {
		articles[i] = toArticle(e)
	}
	saved := r.store.InsertBatch(articles)
	log.Printf("Saved %d of %d candidate articles", saved, len(entries))

	recent, err := r.store.Recent(r.cfg.Output.ReportLimit, nil)
	if err != nil {
		return nil, fmt.Errorf("querying recent articles: %w", err)
	}

	return &Result{Found: len(entries), Saved: saved, Recent: recent}, nil
}

// toArticle flattens a scored entry into its stored shape. The matched terms
// keep their rule order, repeats included.
func toArticle(e ingest.ScoredEntry) store.Article {
	return store.Article{
		GUID:       e.GUID,
		Title:      e.Title,
		Link:       e.Link,
		Authors:    e.Authors,
		Abstract:   e.Abstract,
		Published:  e.Published,
		FeedSource: e.FeedSource,
		Score:      e.Score,
		Matched:    strings.Join(e.Matched, ", "),
	}
}
