package entity

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Document is one catalog entry of the curated corpus. Immutable once
// ingested; its id is a stable hash of the canonical link so re-ingestion
// overwrites rather than duplicates.
type Document struct {
	Id            string   `json:"id"`
	Link          string   `json:"link" validate:"required,url"`
	Author        string   `json:"author"`
	Title         string   `json:"title" validate:"required"`
	Topic         string   `json:"topic"`
	Format        string   `json:"format"`
	FormatType    string   `json:"format_type"`
	Description   string   `json:"description"`
	Themes        []string `json:"themes"`
	Tags          []string `json:"tags"`
	ImageURL      string   `json:"image_url,omitempty"`
	InvisibleText string   `json:"invisible_text,omitempty"`
}

// DocumentWithText is a Document enriched with its extracted body text.
// Produced only during ingestion; the text is never written back to the
// catalog.
type DocumentWithText struct {
	Document
	Text string `json:"text"`
}

// LinkToId derives the stable document id from a canonical link.
func LinkToId(link string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(link)))
}

// EmbeddableText is the canonical text representation used for
// vectorization: metadata joined with blank sections dropped.
func (d Document) EmbeddableText() string {
	sections := []string{
		d.Title,
		d.Description,
		d.InvisibleText,
	}
	if len(d.Themes) > 0 {
		sections = append(sections, "Themes: "+strings.Join(d.Themes, ", "))
	}
	if len(d.Tags) > 0 {
		sections = append(sections, "Tags: "+strings.Join(d.Tags, ", "))
	}
	return strings.Join(compact(sections), "\n\n")
}

// EmbeddableText appends the body text after the metadata header.
func (d DocumentWithText) EmbeddableText() string {
	return d.Document.EmbeddableText() + "\n\n------\n\n" + d.Text
}

func compact(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}
