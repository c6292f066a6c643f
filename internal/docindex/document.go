// Package docindex owns the on-disk inverted index of asset documents.
// It exposes upsert, delete, clear, and point-in-time read-only search over
// interchangeable backends (Bleve, SQLite FTS5), enforcing single-writer
// exclusivity with recovery from orphaned write locks.
package docindex

import (
	"regexp"
	"strings"
)

// Document is one indexed unit of searchable text plus metadata, keyed by ID.
// Instances are transient: constructed per write call, never retained.
type Document struct {
	// ID uniquely identifies the document. Exactly one stored document
	// exists per ID; re-indexing the same ID is an atomic replace.
	ID string

	// Type is the entity category as a lower-cased key (e.g. "software").
	Type string

	// TypeDisplay is the original-case type for presentation (e.g. "Software").
	TypeDisplay string

	// Content is the concatenated, whitespace-normalized searchable text
	// assembled from all indexed fields plus derived tokens.
	Content string

	// Display is the best-effort human label for the document.
	Display string
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeToken strips all non-alphanumeric characters and lower-cases
// the value, producing the searchable atom for a structured attribute.
func NormalizeToken(value string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(value), "")
}

// TokenWithPrefix derives a prefixed keyword token (e.g. status "Installed"
// becomes "statusinstalled"). Returns "" when the normalized value is empty,
// so blank attributes contribute nothing to the content.
func TokenWithPrefix(prefix, value string) string {
	normalized := NormalizeToken(value)
	if normalized == "" {
		return ""
	}
	return prefix + normalized
}

// NormalizeWhitespace collapses all whitespace runs to single spaces and
// trims the ends.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NewDocument assembles a Document from an entity's indexed field values.
// Empty parts are dropped; the remaining parts are whitespace-normalized and
// joined into the content. The type key is the normalized display type.
func NewDocument(id, typeDisplay, display string, parts ...string) *Document {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		p = NormalizeWhitespace(p)
		if p != "" {
			kept = append(kept, p)
		}
	}

	return &Document{
		ID:          id,
		Type:        NormalizeToken(typeDisplay),
		TypeDisplay: typeDisplay,
		Content:     strings.Join(kept, " "),
		Display:     NormalizeWhitespace(display),
	}
}
