package report

import (
	"strings"
	"testing"

	"scholarfeed/internal/store"
)

func sample() []store.Article {
	return []store.Article{
		{
			GUID:      "doi:1",
			Title:     "AI adoption in secondary schools",
			Link:      "https://j.example/1",
			Authors:   "Ada Lovelace, Alan Turing",
			Score:     6,
			Matched:   "AI, teacher, adoption",
			Published: "Mon, 02 Jan 2026 15:04:05 GMT",
		},
		{
			GUID:  "doi:2",
			Title: "Machine learning for principals",
			Link:  "https://j.example/2",
			Score: 4,
		},
	}
}

func TestRender(t *testing.T) {
	var b strings.Builder
	Render(&b, 5, 2, sample())
	out := b.String()

	for _, want := range []string{
		"Found 5 relevant articles",
		"Saved 2 new articles",
		"TOP RECENT ARTICLES",
		"1. [6 pts] AI adoption in secondary schools",
		"Authors: Ada Lovelace, Alan Turing",
		"Keywords: AI, teacher, adoption",
		"2. [4 pts] Machine learning for principals",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}

	// The second article has no authors or publish date; those lines are
	// omitted rather than printed empty.
	if strings.Contains(out, "Authors: \n") {
		t.Error("expected empty author line to be omitted")
	}
}

func TestRenderArticlesEmpty(t *testing.T) {
	var b strings.Builder
	RenderArticles(&b, nil)
	if !strings.Contains(b.String(), "No articles stored yet.") {
		t.Errorf("expected empty-store message, got %q", b.String())
	}
}

func TestMarkdown(t *testing.T) {
	out := Markdown(sample())

	if !strings.Contains(out, "## [AI adoption in secondary schools](https://j.example/1)") {
		t.Errorf("expected linked heading, got:\n%s", out)
	}
	if !strings.Contains(out, "**Score:** 6 pts (AI, teacher, adoption)") {
		t.Errorf("expected score line, got:\n%s", out)
	}
}

func TestHTML(t *testing.T) {
	out, err := HTML(sample())
	if err != nil {
		t.Fatalf("rendering html: %v", err)
	}

	if !strings.Contains(out, "<!DOCTYPE html>") {
		t.Error("expected a standalone page")
	}
	if !strings.Contains(out, `<a href="https://j.example/1"`) {
		t.Errorf("expected rendered link, got:\n%s", out)
	}
	if !strings.Contains(out, "AI adoption in secondary schools") {
		t.Error("expected article title in output")
	}
}
