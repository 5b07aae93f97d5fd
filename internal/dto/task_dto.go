package dto

import "learning-hub-be/internal/entity"

// IndexDocumentMessage is the payload published to the index topic. The
// full document travels in the message because raw text is never persisted,
// only its chunks are. One message per document keeps a failed document
// from blocking the rest of a batch.
type IndexDocumentMessage struct {
	Document entity.Document `json:"document"`
	Text     string          `json:"text"`
}

// RunQueryMessage is the payload published to the query topic. TaskId is
// minted by the publisher and doubles as the websocket channel id the
// client listens on for the result.
type RunQueryMessage struct {
	TaskId string `json:"task_id"`
	Query  string `json:"query"`
}
