package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinkToIdIsStable(t *testing.T) {
	a := LinkToId("https://example.org/essay")
	b := LinkToId("https://example.org/essay")
	c := LinkToId("https://example.org/other")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64) // sha256 hex
}

func TestDocumentEmbeddableText(t *testing.T) {
	doc := Document{
		Title:       "The Fall of Rome",
		Description: "An overview of the decline of the Western Roman Empire.",
		Themes:      []string{"history", "empire"},
		Tags:        []string{"rome"},
	}

	text := doc.EmbeddableText()

	assert.Equal(t,
		"The Fall of Rome\n\n"+
			"An overview of the decline of the Western Roman Empire.\n\n"+
			"Themes: history, empire\n\n"+
			"Tags: rome",
		text,
	)
}

func TestDocumentEmbeddableTextIncludesInvisibleText(t *testing.T) {
	doc := Document{
		Title:         "Title",
		Description:   "Description",
		InvisibleText: "search boost terms",
	}

	text := doc.EmbeddableText()

	assert.Contains(t, text, "search boost terms")
}

func TestDocumentWithTextEmbeddableTextAppendsBody(t *testing.T) {
	doc := DocumentWithText{
		Document: Document{Title: "Title", Description: "Description"},
		Text:     "Full extracted body text.",
	}

	text := doc.EmbeddableText()

	assert.Equal(t, "Title\n\nDescription\n\n------\n\nFull extracted body text.", text)
}
