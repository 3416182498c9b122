// Package ingest fetches syndication feeds and filters their entries by
// relevance score.
package ingest

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"scholarfeed/internal/relevance"
)

// Fetcher retrieves and parses a single feed. A failed fetch surfaces as an
// error, never a panic.
type Fetcher interface {
	FetchFeed(ctx context.Context, feedURL string) (*gofeed.Feed, error)
}

// FeedFetcher is the production Fetcher backed by gofeed.
type FeedFetcher struct {
	parser *gofeed.Parser
}

// NewFeedFetcher creates a FeedFetcher with a per-request timeout.
func NewFeedFetcher(timeout time.Duration) *FeedFetcher {
	p := gofeed.NewParser()
	p.Client = &http.Client{Timeout: timeout}
	p.UserAgent = "scholarfeed"
	return &FeedFetcher{parser: p}
}

// FetchFeed fetches and parses the feed at feedURL.
func (f *FeedFetcher) FetchFeed(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	return f.parser.ParseURLWithContext(feedURL, ctx)
}

// ScoredEntry is a feed entry that cleared the relevance threshold.
// Matched preserves rule order and may repeat a term configured in both
// keyword groups.
type ScoredEntry struct {
	GUID       string
	Title      string
	Link       string
	Authors    string
	Abstract   string
	Published  string
	FeedSource string
	Score      int
	Matched    []string
}

// Ingestor fetches configured feeds in order, scores every entry, and keeps
// the ones at or above the minimum score.
type Ingestor struct {
	fetcher  Fetcher
	rules    *relevance.RuleSet
	minScore int
	delay    time.Duration
	sleep    func(time.Duration)
}

// New creates an Ingestor. delay is the politeness pause between consecutive
// feed fetches.
func New(fetcher Fetcher, rules *relevance.RuleSet, minScore int, delay time.Duration) *Ingestor {
	return &Ingestor{
		fetcher:  fetcher,
		rules:    rules,
		minScore: minScore,
		delay:    delay,
		sleep:    time.Sleep,
	}
}

// Ingest processes feedURLs in order and returns every accepted entry,
// preserving each feed's original entry order. A feed that fails to fetch is
// logged and skipped; it never aborts the pass. The politeness delay runs
// before each fetch after the first, so entries already fetched are scored
// without waiting.
func (in *Ingestor) Ingest(ctx context.Context, feedURLs []string) []ScoredEntry {
	var accepted []ScoredEntry

	for i, feedURL := range feedURLs {
		if i > 0 && in.delay > 0 {
			in.sleep(in.delay)
		}

		log.Printf("Fetching %s", feedURL)
		feed, err := in.fetcher.FetchFeed(ctx, feedURL)
		if err != nil {
			log.Printf("Failed to fetch feed %s: %v", feedURL, err)
			continue
		}

		kept := 0
		for _, item := range feed.Items {
			if item == nil {
				continue
			}
			if entry, ok := in.scoreItem(item, feedURL); ok {
				accepted = append(accepted, entry)
				kept++
			}
		}
		log.Printf("Kept %d of %d entries from %s", kept, len(feed.Items), feedURL)
	}

	return accepted
}

// scoreItem resolves an item's fields, scores its title and abstract, and
// reports whether the entry cleared the threshold.
func (in *Ingestor) scoreItem(item *gofeed.Item, feedURL string) (ScoredEntry, bool) {
	title := resolveTitle(item)
	abstract := resolveAbstract(item)

	score, matched := in.rules.Score(title + " " + abstract)
	if score < in.minScore {
		return ScoredEntry{}, false
	}

	return ScoredEntry{
		GUID:       resolveGUID(item),
		Title:      title,
		Link:       item.Link,
		Authors:    resolveAuthors(item),
		Abstract:   abstract,
		Published:  resolvePublished(item),
		FeedSource: feedURL,
		Score:      score,
		Matched:    matched,
	}, true
}
