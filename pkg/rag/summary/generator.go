package summary

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"learning-hub-be/internal/entity"
	"learning-hub-be/internal/pkg/logger"
	"learning-hub-be/pkg/llm"
	"learning-hub-be/pkg/rag/aggregate"
	"learning-hub-be/pkg/rag/search"
)

const documentSummaryInstruction = `Explain in one sentence how this document relates to the theme of "%s". If the document does not contain information about the theme of "%s", return "This document is irrelevant".`

const topSentenceInstruction = `Provide a one or two sentence description of "%s" based on the information given.`

// irrelevancePattern rejects generated statements the model used to flag a
// document as unrelated ("not relevant", "irrelevant", ...).
var irrelevancePattern = regexp.MustCompile(`(?i)(not |ir)relevant`)

// documentPrefixPattern strips the boilerplate lead-in the summary prompt
// induces.
var documentPrefixPattern = regexp.MustCompile(`(?i)^th(e|is) document`)

// DocumentResponse pairs an aggregate with the generated relevance
// statement accepted for it.
type DocumentResponse struct {
	Aggregate aggregate.DocumentAggregate
	Text      string
}

// Generator produces per-document relevance statements and the single
// overarching answer sentence for a query.
type Generator struct {
	llmProvider llm.LLMProvider
	safePrompt  bool
	logger      logger.ILogger
}

func NewGenerator(llmProvider llm.LLMProvider, safePrompt bool, log logger.ILogger) *Generator {
	return &Generator{
		llmProvider: llmProvider,
		safePrompt:  safePrompt,
		logger:      log,
	}
}

// SummarizeDocuments walks the aggregates in ranked order and asks the
// model how each document relates to the query, seeded only with that
// document's matched passages. Documents the model judges irrelevant are
// skipped and do not count toward maxSummaries, so more than maxSummaries
// aggregates may be inspected. A per-document generation failure counts as
// irrelevant and never aborts the batch.
func (g *Generator) SummarizeDocuments(ctx context.Context, aggregates []aggregate.DocumentAggregate, query string, maxSummaries int) []DocumentResponse {
	var responses []DocumentResponse
	for _, agg := range aggregates {
		if len(responses) >= maxSummaries {
			break
		}

		instruction := fmt.Sprintf(documentSummaryInstruction, query, query)
		text, err := g.synthesize(ctx, instruction, agg.Matches)
		if err != nil {
			g.logger.Warn("SummaryGenerator", "Document summary generation failed, skipping document", map[string]interface{}{
				"document_id": agg.DocumentId,
				"error":       err.Error(),
			})
			continue
		}

		if irrelevancePattern.MatchString(text) {
			continue
		}

		responses = append(responses, DocumentResponse{
			Aggregate: agg,
			Text:      text,
		})
	}
	return responses
}

// SummarizeTop synthesizes the overarching answer sentence from the union
// of matches of the accepted documents only, keeping it grounded in
// material already judged relevant. A failure here propagates: no sentence
// is better than a wrong one.
func (g *Generator) SummarizeTop(ctx context.Context, accepted []DocumentResponse, query string) (string, error) {
	var matches []search.Match
	for _, response := range accepted {
		matches = append(matches, response.Aggregate.Matches...)
	}

	instruction := fmt.Sprintf(topSentenceInstruction, query)
	return g.synthesize(ctx, instruction, matches)
}

// MakeSummary assembles the final Summary, trimming the "this/the
// document" lead-in from each statement.
func (g *Generator) MakeSummary(topSentence string, accepted []DocumentResponse) entity.Summary {
	documentSummaries := make([]entity.DocumentSummary, 0, len(accepted))
	for _, response := range accepted {
		trimmed := strings.TrimSpace(documentPrefixPattern.ReplaceAllString(response.Text, ""))
		documentSummaries = append(documentSummaries, entity.DocumentSummary{
			Document: response.Aggregate.DocumentId,
			Summary:  trimmed,
		})
	}
	return entity.Summary{
		TopSentence:       topSentence,
		DocumentSummaries: documentSummaries,
	}
}

func (g *Generator) synthesize(ctx context.Context, instruction string, matches []search.Match) (string, error) {
	prompt := g.buildPrompt(instruction, matches)
	return g.llmProvider.Generate(ctx, prompt, llm.WithSafePrompt(g.safePrompt))
}

func (g *Generator) buildPrompt(instruction string, matches []search.Match) string {
	var prompt strings.Builder

	prompt.WriteString("<reference_material>\n")
	prompt.WriteString("Answer using ONLY the passages below. Do NOT use outside knowledge.\n")
	for i, match := range matches {
		prompt.WriteString(fmt.Sprintf("\n--- PASSAGE %d ---\n", i+1))
		prompt.WriteString(match.Text)
		prompt.WriteString("\n")
	}
	prompt.WriteString("</reference_material>\n\n")

	prompt.WriteString("<task>\n")
	prompt.WriteString(instruction)
	prompt.WriteString("\n</task>")

	return prompt.String()
}
