package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// CacheKey derives the normalized cache key for a query string.
// Normalization is case folding plus whitespace trimming, so queries that
// differ only in casing or surrounding whitespace share a key.
func CacheKey(query string) ID {
	return IDFromContent(strings.ToLower(strings.TrimSpace(query)))
}

// QueryKind classifies the structural intent of a query.
// It is computed once during routing and consumed downstream instead of
// re-inspecting the query text.
type QueryKind int

const (
	// KindStandard is an ordinary knowledge question.
	KindStandard QueryKind = iota
	// KindPricing asks about prices, fees, or costs. Pricing results are
	// resolved with deterministic precedence rules instead of reranking.
	KindPricing
	// KindEnumeration asks for an exhaustive listing and bypasses keyword
	// scoring entirely.
	KindEnumeration
)

// String returns the kind name for logging.
func (k QueryKind) String() string {
	switch k {
	case KindPricing:
		return "pricing"
	case KindEnumeration:
		return "enumeration"
	default:
		return "standard"
	}
}

// CacheHit identifies how a cached result was matched.
type CacheHit int

const (
	// CacheHitNone means the result came from a live search.
	CacheHitNone CacheHit = iota
	// CacheHitExact means the normalized query text matched a cached entry.
	CacheHitExact
	// CacheHitSemantic means a stored embedding was similar enough to the
	// query embedding.
	CacheHitSemantic
)

// String returns the hit kind name for logging.
func (h CacheHit) String() string {
	switch h {
	case CacheHitExact:
		return "exact"
	case CacheHitSemantic:
		return "semantic"
	default:
		return "none"
	}
}

// RouteDecision is the immutable result of routing one query.
type RouteDecision struct {
	// Partition is the chosen primary collection identifier.
	Partition string
	// Confidence is the routing certainty in [0,1].
	Confidence float64
	// Fallbacks are alternate partitions to try if the primary yields no
	// usable result, ordered by decreasing relevance. Never contains the
	// primary.
	Fallbacks []string
	// Kind tags the structural intent of the query.
	Kind QueryKind
}

// Chain returns the primary partition followed by the fallbacks, in the
// order the orchestrator attempts them.
func (d *RouteDecision) Chain() []string {
	chain := make([]string, 0, len(d.Fallbacks)+1)
	chain = append(chain, d.Partition)
	chain = append(chain, d.Fallbacks...)
	return chain
}

// Document is a knowledge-base entry stored in a vector partition.
type Document struct {
	Id         ID
	Content    string
	Metadata   map[string]string // Optional metadata (e.g., "source", "item", "updated_at")
	Vector     []float32         // Embedding vector for semantic search
	InsertedAt time.Time         // When the document was first stored
	UpdatedAt  time.Time         // When the document was last updated
}

// ScoredDocument is a document with its relevance score for one query.
type ScoredDocument struct {
	Document *Document
	Score    float32
}

// SearchResult is the output of one orchestration call.
type SearchResult struct {
	Documents     []*ScoredDocument
	PartitionUsed string
	CacheHit      CacheHit
	// Degraded is true when a fallback partition served the result or
	// reranking was skipped.
	Degraded bool
}

// CacheEntry is one cached query/result pair. Entries are immutable after
// creation; expiry is enforced by TTL or capacity eviction, never by
// in-place mutation.
type CacheEntry struct {
	Key       ID
	Query     string
	Vector    []float32
	Payload   []byte
	CreatedAt time.Time
}

// CacheStats is a read-only snapshot of semantic cache state.
type CacheStats struct {
	Size                int
	MaxSize             int
	Utilization         float64
	SimilarityThreshold float64
	DefaultTTL          time.Duration
}

// PartitionInfo describes a registered vector store partition.
type PartitionInfo struct {
	Name      string
	CreatedAt time.Time
}
