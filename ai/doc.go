// Package ai defines the AI collaborator interfaces for the retrieval core:
// text embedding and result reranking. Implementations live in subpackages
// (openai for OpenAI-compatible services, mock for deterministic test
// doubles); consumers depend only on the interfaces defined here.
package ai
