package dto

import (
	"testing"

	"learning-hub-be/internal/entity"

	"github.com/stretchr/testify/assert"
)

func TestToDocumentResponseCarriesAllDisplayFields(t *testing.T) {
	document := &entity.Document{
		Id:          "abc",
		Link:        "https://example.org/essay",
		Author:      "A. Author",
		Title:       "Essay",
		Topic:       "history",
		Format:      "article",
		FormatType:  "text",
		Description: "An essay.",
		Themes:      []string{"memory"},
		Tags:        []string{"primary-source"},
		ImageURL:    "https://example.org/essay.png",
	}

	res := ToDocumentResponse(document)

	assert.Equal(t, document.Id, res.Id)
	assert.Equal(t, document.Link, res.Link)
	assert.Equal(t, document.Author, res.Author)
	assert.Equal(t, document.Title, res.Title)
	assert.Equal(t, document.Topic, res.Topic)
	assert.Equal(t, document.Format, res.Format)
	assert.Equal(t, document.FormatType, res.FormatType)
	assert.Equal(t, document.Description, res.Description)
	assert.Equal(t, document.Themes, res.Themes)
	assert.Equal(t, document.Tags, res.Tags)
	assert.Equal(t, document.ImageURL, res.ImageURL)
}
