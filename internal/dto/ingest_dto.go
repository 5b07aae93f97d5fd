package dto

import "learning-hub-be/internal/entity"

// IngestDocumentRequest is one document submitted for indexing. The id is
// derived from the link server-side; clients never supply it.
type IngestDocumentRequest struct {
	Link          string   `json:"link" validate:"required,url"`
	Author        string   `json:"author"`
	Title         string   `json:"title" validate:"required"`
	Topic         string   `json:"topic"`
	Format        string   `json:"format"`
	FormatType    string   `json:"format_type"`
	Description   string   `json:"description"`
	Themes        []string `json:"themes"`
	Tags          []string `json:"tags"`
	ImageURL      string   `json:"image_url"`
	InvisibleText string   `json:"invisible_text"`
	Text          string   `json:"text"`
}

type IngestDocumentsRequest struct {
	Documents []IngestDocumentRequest `json:"documents" validate:"required,min=1,dive"`
}

type IngestDocumentsResponse struct {
	DocumentIds []string `json:"document_ids"`
}

// ToEntity maps the request onto the ingestion entity, minting the id.
func (r IngestDocumentRequest) ToEntity() entity.DocumentWithText {
	return entity.DocumentWithText{
		Document: entity.Document{
			Id:            entity.LinkToId(r.Link),
			Link:          r.Link,
			Author:        r.Author,
			Title:         r.Title,
			Topic:         r.Topic,
			Format:        r.Format,
			FormatType:    r.FormatType,
			Description:   r.Description,
			Themes:        r.Themes,
			Tags:          r.Tags,
			ImageURL:      r.ImageURL,
			InvisibleText: r.InvisibleText,
		},
		Text: r.Text,
	}
}
