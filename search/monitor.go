package search

import "github.com/expatwise/retrieval/core"

// Monitor provides hooks to observe the search pipeline.
// Implement this interface to track intermediate steps and results during search.
type Monitor interface {
	Start(query string)
	AfterRoute(decision core.RouteDecision)
	AfterEmbedding(dimensions int)
	AfterCacheLookup(hit core.CacheHit)
	AfterPartitionSearch(partition string, hits int, err error)
	AfterRerank(hits int)
	Finish(result *core.SearchResult)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                               {}
func (n *noopMonitor) AfterRoute(_ core.RouteDecision)              {}
func (n *noopMonitor) AfterEmbedding(_ int)                         {}
func (n *noopMonitor) AfterCacheLookup(_ core.CacheHit)             {}
func (n *noopMonitor) AfterPartitionSearch(_ string, _ int, _ error) {}
func (n *noopMonitor) AfterRerank(_ int)                            {}
func (n *noopMonitor) Finish(_ *core.SearchResult)                  {}
