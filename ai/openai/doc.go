// Package openai implements the ai interfaces against OpenAI-compatible
// APIs (OpenAI, Ollama, LocalAI, vLLM). Embeddings go through the
// langchaingo embeddings client; reranking is a JSON-mode chat completion
// that scores each query/document pair.
package openai
