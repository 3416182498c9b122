package ingest

import (
	"strings"

	"github.com/mmcdole/gofeed"
)

// noTitle is stored when a feed item carries no title at all.
const noTitle = "No title"

// resolveGUID returns the feed-provided identifier, falling back to the item
// link. Both may be absent; the empty string is then the entry's identity and
// uniqueness falls to the store's empty-string handling.
func resolveGUID(item *gofeed.Item) string {
	if item.GUID != "" {
		return item.GUID
	}
	return item.Link
}

// resolveTitle returns the item title or the "No title" placeholder.
func resolveTitle(item *gofeed.Item) string {
	if item.Title != "" {
		return item.Title
	}
	return noTitle
}

// resolveAuthors flattens the structured author list into a comma-joined
// string, falling back to the flat author field, else empty.
func resolveAuthors(item *gofeed.Item) string {
	var names []string
	for _, a := range item.Authors {
		if a != nil && a.Name != "" {
			names = append(names, a.Name)
		}
	}
	if len(names) > 0 {
		return strings.Join(names, ", ")
	}
	if item.Author != nil {
		return item.Author.Name
	}
	return ""
}

// resolveAbstract returns the summary/description, falling back to the full
// content field, else empty. The text is stored verbatim.
func resolveAbstract(item *gofeed.Item) string {
	if item.Description != "" {
		return item.Description
	}
	return item.Content
}

// resolvePublished returns the feed-native published string, falling back to
// the updated string, else empty. The value is opaque and never parsed.
func resolvePublished(item *gofeed.Item) string {
	if item.Published != "" {
		return item.Published
	}
	return item.Updated
}
