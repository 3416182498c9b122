package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"

	"scholarfeed/internal/relevance"
)

// fakeFetcher serves canned feeds keyed by URL.
type fakeFetcher struct {
	feeds map[string]*gofeed.Feed
	errs  map[string]error
	calls []string
}

func (f *fakeFetcher) FetchFeed(_ context.Context, feedURL string) (*gofeed.Feed, error) {
	f.calls = append(f.calls, feedURL)
	if err := f.errs[feedURL]; err != nil {
		return nil, err
	}
	if feed := f.feeds[feedURL]; feed != nil {
		return feed, nil
	}
	return &gofeed.Feed{}, nil
}

func testRules(t *testing.T) *relevance.RuleSet {
	t.Helper()
	rs, err := relevance.CompileRules(
		[]relevance.Keyword{{Term: "AI", Weight: 2}},
		[]relevance.Keyword{{Term: "teacher", Weight: 2}},
	)
	if err != nil {
		t.Fatalf("failed to compile rules: %v", err)
	}
	return rs
}

func item(guid, title, abstract string) *gofeed.Item {
	return &gofeed.Item{GUID: guid, Title: title, Link: "https://j.example/" + guid, Description: abstract}
}

func TestIngestThreshold(t *testing.T) {
	fetcher := &fakeFetcher{feeds: map[string]*gofeed.Feed{
		"https://j.example/feed": {Items: []*gofeed.Item{
			item("a", "AI adoption", "A study of teacher use of AI tools."), // score 4
			item("b", "AI in assessment", "Grading at scale."),              // score 2, below
			item("c", "Survey of teacher views", "On AI literacy."),         // score 4
		}},
	}}

	in := New(fetcher, testRules(t), 3, 0)
	entries := in.Ingest(context.Background(), []string{"https://j.example/feed"})

	if len(entries) != 2 {
		t.Fatalf("expected 2 accepted entries, got %d", len(entries))
	}
	if entries[0].GUID != "a" || entries[1].GUID != "c" {
		t.Errorf("expected feed order preserved, got %q then %q", entries[0].GUID, entries[1].GUID)
	}
	if entries[0].Score < 4 {
		t.Errorf("expected score >= 4, got %d", entries[0].Score)
	}
	if len(entries[0].Matched) == 0 {
		t.Error("expected matched terms to be recorded")
	}
}

func TestIngestScoreExactlyAtThreshold(t *testing.T) {
	fetcher := &fakeFetcher{feeds: map[string]*gofeed.Feed{
		"https://j.example/feed": {Items: []*gofeed.Item{
			item("eq", "AI everywhere", ""), // score 2 == min
		}},
	}}

	in := New(fetcher, testRules(t), 2, 0)
	entries := in.Ingest(context.Background(), []string{"https://j.example/feed"})
	if len(entries) != 1 {
		t.Fatalf("expected entry at exactly min score to be accepted, got %d entries", len(entries))
	}

	in = New(fetcher, testRules(t), 3, 0)
	entries = in.Ingest(context.Background(), []string{"https://j.example/feed"})
	if len(entries) != 0 {
		t.Fatalf("expected entry one below min score to be rejected, got %d entries", len(entries))
	}
}

func TestIngestFeedFailureIsIsolated(t *testing.T) {
	fetcher := &fakeFetcher{
		feeds: map[string]*gofeed.Feed{
			"https://ok.example/feed": {Items: []*gofeed.Item{item("x", "AI and teacher practice", "")}},
		},
		errs: map[string]error{
			"https://down.example/feed": errors.New("connection refused"),
		},
	}

	in := New(fetcher, testRules(t), 3, 0)
	entries := in.Ingest(context.Background(), []string{
		"https://down.example/feed",
		"https://ok.example/feed",
	})

	if len(fetcher.calls) != 2 {
		t.Fatalf("expected both feeds attempted, got calls %v", fetcher.calls)
	}
	if len(entries) != 1 || entries[0].GUID != "x" {
		t.Fatalf("expected the healthy feed's entry, got %v", entries)
	}
}

func TestIngestOrderAcrossFeeds(t *testing.T) {
	fetcher := &fakeFetcher{feeds: map[string]*gofeed.Feed{
		"https://one.example/feed": {Items: []*gofeed.Item{
			item("1a", "AI teacher study", ""),
			item("1b", "teacher AI report", ""),
		}},
		"https://two.example/feed": {Items: []*gofeed.Item{
			item("2a", "AI and teacher workload", ""),
		}},
	}}

	in := New(fetcher, testRules(t), 3, 0)
	entries := in.Ingest(context.Background(), []string{
		"https://one.example/feed",
		"https://two.example/feed",
	})

	var guids []string
	for _, e := range entries {
		guids = append(guids, e.GUID)
	}
	want := []string{"1a", "1b", "2a"}
	for i := range want {
		if guids[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, guids)
		}
	}
	if entries[2].FeedSource != "https://two.example/feed" {
		t.Errorf("expected feed source recorded, got %q", entries[2].FeedSource)
	}
}

func TestIngestPolitenessDelay(t *testing.T) {
	fetcher := &fakeFetcher{}
	in := New(fetcher, testRules(t), 3, 250*time.Millisecond)

	var slept []time.Duration
	in.sleep = func(d time.Duration) { slept = append(slept, d) }

	in.Ingest(context.Background(), []string{
		"https://one.example/feed",
		"https://two.example/feed",
		"https://three.example/feed",
	})

	// One pause between each pair of consecutive feeds, none after the last.
	if len(slept) != 2 {
		t.Fatalf("expected 2 pauses for 3 feeds, got %d", len(slept))
	}
	for _, d := range slept {
		if d != 250*time.Millisecond {
			t.Errorf("expected 250ms pause, got %v", d)
		}
	}
}

func TestIngestNoDelayForSingleFeed(t *testing.T) {
	fetcher := &fakeFetcher{}
	in := New(fetcher, testRules(t), 3, time.Second)
	in.sleep = func(time.Duration) { t.Error("unexpected pause with a single feed") }

	in.Ingest(context.Background(), []string{"https://one.example/feed"})
}
