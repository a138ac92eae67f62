package mock

import (
	"context"

	"github.com/expatwise/retrieval/core"
)

// MockReranker is a test double for ai.Reranker.
// It allows custom behavior injection via a function field.
type MockReranker struct {
	// RerankFunc is called by Rerank if set.
	// If nil, the input order is preserved.
	RerankFunc func(ctx context.Context, query string, docs []*core.ScoredDocument, topK int) ([]*core.ScoredDocument, error)

	callCount int
}

// NewMockReranker creates a mock reranker that preserves input order.
func NewMockReranker() *MockReranker {
	return &MockReranker{}
}

// Rerank returns the documents unchanged unless RerankFunc is set.
func (m *MockReranker) Rerank(ctx context.Context, query string, docs []*core.ScoredDocument, topK int) ([]*core.ScoredDocument, error) {
	m.callCount++

	if m.RerankFunc != nil {
		return m.RerankFunc(ctx, query, docs, topK)
	}

	if topK > 0 && len(docs) > topK {
		return docs[:topK], nil
	}
	return docs, nil
}

// CallCount returns the number of times Rerank was called.
func (m *MockReranker) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockReranker) Reset() {
	m.callCount = 0
	m.RerankFunc = nil
}
