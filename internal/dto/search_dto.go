package dto

import "learning-hub-be/internal/entity"

// DocumentResponse is the catalog record shape returned to clients.
type DocumentResponse struct {
	Id          string   `json:"id"`
	Link        string   `json:"link"`
	Author      string   `json:"author,omitempty"`
	Title       string   `json:"title"`
	Topic       string   `json:"topic,omitempty"`
	Format      string   `json:"format,omitempty"`
	FormatType  string   `json:"format_type,omitempty"`
	Description string   `json:"description"`
	Themes      []string `json:"themes"`
	Tags        []string `json:"tags"`
	ImageURL    string   `json:"image_url,omitempty"`
}

// QueryResponse covers both outcomes of a query request. On a cache hit
// Summary is populated and TaskId is empty. On a miss the ranked documents
// render immediately, Summary arrives later on the websocket channel
// identified by TaskId.
type QueryResponse struct {
	Query     string             `json:"query"`
	Documents []DocumentResponse `json:"documents"`
	Summary   *entity.Summary    `json:"summary,omitempty"`
	TaskId    string             `json:"task_id,omitempty"`
}

type RelatedDocumentsResponse struct {
	DocumentId string             `json:"document_id"`
	Related    []DocumentResponse `json:"related"`
}

func ToDocumentResponse(document *entity.Document) DocumentResponse {
	return DocumentResponse{
		Id:          document.Id,
		Link:        document.Link,
		Author:      document.Author,
		Title:       document.Title,
		Topic:       document.Topic,
		Format:      document.Format,
		FormatType:  document.FormatType,
		Description: document.Description,
		Themes:      document.Themes,
		Tags:        document.Tags,
		ImageURL:    document.ImageURL,
	}
}

func ToDocumentResponses(documents []*entity.Document) []DocumentResponse {
	responses := make([]DocumentResponse, 0, len(documents))
	for _, document := range documents {
		responses = append(responses, ToDocumentResponse(document))
	}
	return responses
}
