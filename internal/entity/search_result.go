package entity

// DocumentSummary pairs a document id with its generated relevance
// statement.
type DocumentSummary struct {
	Document string `json:"document"`
	Summary  string `json:"summary"`
}

// Summary is the narrative part of a search result: one synthesized
// sentence spanning the accepted documents plus one summary per document.
type Summary struct {
	TopSentence       string            `json:"top_sentence"`
	DocumentSummaries []DocumentSummary `json:"document_summaries"`
}

// SearchResult is the unit persisted in the query cache and delivered to
// subscribers. Documents preserves aggregate ranking order.
type SearchResult struct {
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	Summary   Summary  `json:"summary"`
}
