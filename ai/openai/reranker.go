// Copyright 2026 Expatwise
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/expatwise/retrieval/ai"
	"github.com/expatwise/retrieval/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Reranker implements ai.Reranker using OpenAI-compatible chat APIs.
// It scores each query/document pair with a single JSON-mode completion
// and reorders the results by the returned scores.
type Reranker struct {
	client llms.Model
	logger *slog.Logger
}

// ranking is the wrapper structure for the LLM's JSON response.
type ranking struct {
	Scores []docScore `json:"scores"`
}

// docScore is an internal type used for JSON unmarshaling.
// It matches the structure expected by the LLM.
type docScore struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// newReranker is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newReranker(config *ai.Config) (*Reranker, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create OpenAI client configured for chat/reranking
	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.RerankerHost),
		openai.WithToken("none"),
		openai.WithModel(config.RerankerModel),
	)
	if err != nil {
		return nil, err
	}

	return &Reranker{
		client: client,
		logger: slog.Default().With("component", "openai-reranker"),
	}, nil
}

// NewReranker creates a new reranker using the provided configuration.
//
// Returns ai.Reranker interface to enforce abstraction.
func NewReranker(config *ai.Config) (ai.Reranker, error) {
	return newReranker(config)
}

// Rerank reorders documents by cross-scoring each one against the query.
func (r *Reranker) Rerank(ctx context.Context, query string, docs []*core.ScoredDocument, topK int) ([]*core.ScoredDocument, error) {
	if len(docs) == 0 {
		return docs, nil
	}

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(rerankSystemPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(buildRerankPrompt(query, docs)),
			},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var result ranking
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := r.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			r.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, fmt.Errorf("%w: %w", ai.ErrRerankFailed, err)
		}

		if len(response.Choices) < 1 {
			r.logger.Debug("no choices returned from model")
			return docs, nil
		}

		choice := response.Choices[0]

		// Strip markdown code fences if present
		responseText := strings.TrimSpace(choice.Content)
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)

		// Try to repair common JSON issues
		responseText = repairJSON(responseText)

		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			r.logger.Warn("error parsing reranker response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		// Success
		lastErr = nil
		break
	}

	if lastErr != nil {
		r.logger.Error("failed to parse reranker response after retries", "err", lastErr)
		return nil, fmt.Errorf("%w: %w", ai.ErrRerankFailed, lastErr)
	}

	reranked := applyScores(docs, result.Scores)
	if topK > 0 && len(reranked) > topK {
		reranked = reranked[:topK]
	}

	r.logger.Debug("reranked documents", "count", len(reranked))
	return reranked, nil
}

// applyScores rebuilds the result list with the model's scores.
// Documents the model did not score keep their original similarity score
// and compete in the same sort, so a strong similarity match can still
// outrank a weakly scored document.
func applyScores(docs []*core.ScoredDocument, scores []docScore) []*core.ScoredDocument {
	scored := make(map[int]float64, len(scores))
	for _, s := range scores {
		if s.Index >= 0 && s.Index < len(docs) {
			scored[s.Index] = s.Score
		}
	}

	reranked := make([]*core.ScoredDocument, 0, len(docs))
	for i, doc := range docs {
		out := &core.ScoredDocument{Document: doc.Document, Score: doc.Score}
		if s, ok := scored[i]; ok {
			out.Score = float32(s)
		}
		reranked = append(reranked, out)
	}

	slices.SortFunc(reranked, func(a, b *core.ScoredDocument) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})
	return reranked
}
