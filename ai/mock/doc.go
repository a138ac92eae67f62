// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.Reranker,
// and ai.Provider for use in unit tests. The mocks allow tests to run
// without external AI service dependencies and enable controlled,
// deterministic behavior.
//
// # Default Behavior
//
//   - MockEmbedder: Returns deterministic vectors based on text hash
//   - MockReranker: Preserves the input order
//   - MockProvider: Aggregates mock embedder and reranker
//
// Custom behavior is injected through the exported function fields, and
// call counts are available for assertions.
package mock
