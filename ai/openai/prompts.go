package openai

import (
	"fmt"
	"strings"

	"github.com/expatwise/retrieval/core"
)

const rerankResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "scores": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "index": {
            "type": "integer",
            "minimum": 0
          },
          "score": {
            "type": "number",
            "minimum": 0,
            "maximum": 1
          }
        },
        "required": ["index", "score"],
        "additionalProperties": false
      }
    }
  },
  "required": ["scores"],
  "additionalProperties": false
}`

var rerankSystemPrompt = fmt.Sprintf(`Score how well each numbered document answers the user's question and return the scores as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Score every document exactly once, using its zero-based index.
- A score of 1.0 means the document directly and completely answers the question; 0.0 means it is irrelevant.
- Judge the document and the question together; do not score documents in isolation.
- Do not invent indices that were not in the input.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Question: "How long is a tourist visa valid?"
Documents:
[0] A tourist visa is valid for 60 days from the date of entry.
[1] Trade licenses must be renewed annually.
Output:
{
  "scores": [
    {"index":0,"score":0.95},
    {"index":1,"score":0.05}
  ]
}`, rerankResponseSchema)

// buildRerankPrompt formats the query and numbered documents for scoring.
func buildRerankPrompt(query string, docs []*core.ScoredDocument) string {
	var sb strings.Builder
	sb.WriteString("Question: ")
	sb.WriteString(strings.TrimSpace(query))
	sb.WriteString("\nDocuments:\n")
	for i, doc := range docs {
		fmt.Fprintf(&sb, "[%d] %s\n", i, strings.TrimSpace(doc.Document.Content))
	}
	return sb.String()
}
