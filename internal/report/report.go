// Package report renders article listings for the console and for digest
// export. The output is for humans; nothing parses it.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"

	"scholarfeed/internal/store"
)

var md = goldmark.New()

// Render writes the full run report: counts, then the recent-articles
// listing.
func Render(w io.Writer, found, saved int, articles []store.Article) {
	fmt.Fprintf(w, "Found %d relevant articles\n", found)
	fmt.Fprintf(w, "Saved %d new articles to database\n", saved)
	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 80))
	fmt.Fprintln(w, "TOP RECENT ARTICLES")
	fmt.Fprintln(w, strings.Repeat("=", 80))
	RenderArticles(w, articles)
}

// RenderArticles writes the numbered article listing.
func RenderArticles(w io.Writer, articles []store.Article) {
	if len(articles) == 0 {
		fmt.Fprintln(w, "No articles stored yet.")
		return
	}
	for i, a := range articles {
		fmt.Fprintf(w, "\n%d. [%d pts] %s\n", i+1, a.Score, a.Title)
		if a.Authors != "" {
			fmt.Fprintf(w, "   Authors: %s\n", a.Authors)
		}
		fmt.Fprintf(w, "   Link: %s\n", a.Link)
		fmt.Fprintf(w, "   Keywords: %s\n", a.Matched)
		if a.Published != "" {
			fmt.Fprintf(w, "   Published: %s\n", a.Published)
		}
		fmt.Fprintln(w, strings.Repeat("-", 80))
	}
}

// Markdown builds a digest of the articles as a markdown document.
func Markdown(articles []store.Article) string {
	var b strings.Builder
	b.WriteString("# Recent articles\n")
	for _, a := range articles {
		fmt.Fprintf(&b, "\n## [%s](%s)\n\n", a.Title, a.Link)
		fmt.Fprintf(&b, "**Score:** %d pts", a.Score)
		if a.Matched != "" {
			fmt.Fprintf(&b, " (%s)", a.Matched)
		}
		b.WriteString("\n\n")
		if a.Authors != "" {
			fmt.Fprintf(&b, "*%s*", a.Authors)
			if a.Published != "" {
				fmt.Fprintf(&b, ", %s", a.Published)
			}
			b.WriteString("\n\n")
		} else if a.Published != "" {
			fmt.Fprintf(&b, "%s\n\n", a.Published)
		}
		if a.Abstract != "" {
			fmt.Fprintf(&b, "%s\n", a.Abstract)
		}
	}
	return b.String()
}

// HTML renders the markdown digest as a standalone HTML page.
func HTML(articles []store.Article) (string, error) {
	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(articles)), &body); err != nil {
		return "", fmt.Errorf("rendering digest: %w", err)
	}

	var page strings.Builder
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	page.WriteString("<meta charset=\"utf-8\">\n<title>scholarfeed digest</title>\n")
	page.WriteString("</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.String(), nil
}
