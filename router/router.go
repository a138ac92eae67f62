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


package router

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/expatwise/retrieval/core"
)

const (
	defaultHighConfidence = 0.70
	defaultMidConfidence  = 0.40

	// Token-count bounds for the confidence length adjustment.
	shortQueryTokens = 3
	longQueryTokens  = 10

	shortQueryPenalty = 0.15
	longQueryBonus    = 0.10

	maxAdjacencyFallbacks = 3
)

// enumerationPattern matches explicit enumeration requests, which bypass
// keyword scoring and route straight to the activities partition.
var enumerationPattern = regexp.MustCompile(`(?i)^\s*(list|enumerate|show)(\s+me)?\s+(all|every)\b`)

// Router classifies a query string into a knowledge partition with a
// confidence score and an ordered fallback chain. Routing is deterministic
// and stateless: the Router holds no mutable state and is safe for
// concurrent use without synchronization. Routing never fails; an empty or
// unmatched query routes to the default partition with confidence 0.
type Router struct {
	domains          []Domain
	defaultPartition string
	adjacency        map[string][]string
	highConfidence   float64
	midConfidence    float64
	logger           *slog.Logger
}

// Option configures a Router.
type Option func(*Router) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithDomains replaces the default domain table.
func WithDomains(domains []Domain) Option {
	return func(r *Router) error {
		if len(domains) == 0 {
			return ErrNoDomains
		}
		r.domains = domains
		return nil
	}
}

// WithDefaultPartition sets the partition for unmatched queries.
// Default is PartitionGeneral.
func WithDefaultPartition(partition string) Option {
	return func(r *Router) error {
		if partition == "" {
			return ErrEmptyDefaultPartition
		}
		r.defaultPartition = partition
		return nil
	}
}

// WithAdjacency replaces the default low-confidence fallback table.
func WithAdjacency(adjacency map[string][]string) Option {
	return func(r *Router) error {
		r.adjacency = adjacency
		return nil
	}
}

// WithThresholds sets the confidence tier boundaries. high is the minimum
// confidence for a primary-only route, mid the minimum for a single
// fallback. Defaults are 0.70 and 0.40; they are empirically chosen, not
// derived, and worth validating against representative query logs.
func WithThresholds(high, mid float64) Option {
	return func(r *Router) error {
		if high < mid || mid < 0 || high > 1 {
			return ErrInvalidThresholds
		}
		r.highConfidence = high
		r.midConfidence = mid
		return nil
	}
}

// NewRouter creates a query router with the default domain table.
func NewRouter(opts ...Option) (*Router, error) {
	r := &Router{
		domains:          DefaultDomains(),
		defaultPartition: PartitionGeneral,
		adjacency:        DefaultAdjacency(),
		highConfidence:   defaultHighConfidence,
		midConfidence:    defaultMidConfidence,
		logger:           slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// DefaultPartition returns the partition used for unmatched queries.
func (r *Router) DefaultPartition() string {
	return r.defaultPartition
}

// Partitions returns every partition the router can route to, default
// partition included, in registration order.
func (r *Router) Partitions() []string {
	seen := map[string]bool{}
	partitions := make([]string, 0, len(r.domains)+1)
	for _, d := range r.domains {
		if !seen[d.Partition] {
			seen[d.Partition] = true
			partitions = append(partitions, d.Partition)
		}
	}
	if !seen[r.defaultPartition] {
		partitions = append(partitions, r.defaultPartition)
	}
	return partitions
}

// Route classifies a query into a RouteDecision. It never fails: empty or
// unmatched queries land on the default partition with confidence 0.
func (r *Router) Route(query string) core.RouteDecision {
	normalized := normalizeQuery(query)
	if normalized == "" {
		return core.RouteDecision{
			Partition:  r.defaultPartition,
			Confidence: 0,
			Fallbacks:  r.adjacencyFallbacks(r.defaultPartition),
			Kind:       core.KindStandard,
		}
	}

	// Structural overrides run before keyword scoring.
	if enumerationPattern.MatchString(query) {
		return core.RouteDecision{
			Partition:  PartitionActivities,
			Confidence: 1.0,
			Kind:       core.KindEnumeration,
		}
	}

	scores := r.scoreDomains(normalized)
	primary, runnerUp := r.rankDomains(scores)
	confidence := r.confidence(query, scores)

	decision := core.RouteDecision{
		Partition:  primary,
		Confidence: confidence,
		Kind:       r.queryKind(scores),
	}
	decision.Fallbacks = r.fallbacks(primary, runnerUp, confidence)

	r.logger.Debug("routed query",
		"partition", decision.Partition,
		"confidence", decision.Confidence,
		"fallbacks", len(decision.Fallbacks),
		"kind", decision.Kind.String())

	return decision
}

// scoreDomains counts keyword hits per domain. Single-word keywords match
// against the filtered token set; multi-word keywords match as phrases
// against the normalized query.
func (r *Router) scoreDomains(normalized string) map[string]int {
	tokens := tokenizeAndFilter(normalized)
	tokenSet := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		tokenSet[t] = true
	}

	scores := make(map[string]int, len(r.domains))
	for _, domain := range r.domains {
		hits := 0
		for _, keyword := range domain.Keywords {
			if strings.Contains(keyword, " ") {
				if strings.Contains(normalized, keyword) {
					hits++
				}
			} else if tokenSet[keyword] {
				hits++
			}
		}
		if hits > 0 {
			scores[domain.Partition] = hits
		}
	}
	return scores
}

// rankDomains returns the best and second-best partitions by score.
// Ties break toward the earlier-registered domain. With no hits at all,
// the default partition wins and there is no runner-up.
func (r *Router) rankDomains(scores map[string]int) (primary, runnerUp string) {
	bestScore, secondScore := 0, 0
	for _, domain := range r.domains {
		score := scores[domain.Partition]
		if score == 0 || domain.Partition == primary {
			continue
		}
		switch {
		case score > bestScore:
			runnerUp, secondScore = primary, bestScore
			primary, bestScore = domain.Partition, score
		case score > secondScore:
			runnerUp, secondScore = domain.Partition, score
		}
	}
	if primary == "" {
		primary = r.defaultPartition
	}
	return primary, runnerUp
}

// confidence computes routing certainty from match strength and query
// length. Match strength is the top domain's share of all keyword hits; a
// short query is penalized and a long one rewarded, clamped to [0,1].
// All-zero scores yield exactly 0.
func (r *Router) confidence(query string, scores map[string]int) float64 {
	total := 0
	top := 0
	for _, s := range scores {
		total += s
		if s > top {
			top = s
		}
	}
	if total == 0 {
		return 0
	}

	confidence := float64(top) / float64(total)

	tokens := len(strings.Fields(query))
	if tokens < shortQueryTokens {
		confidence -= shortQueryPenalty
	} else if tokens > longQueryTokens {
		confidence += longQueryBonus
	}

	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}

// queryKind tags price-sensitive queries so downstream conflict resolution
// can skip semantic reranking for them.
func (r *Router) queryKind(scores map[string]int) core.QueryKind {
	if scores[PartitionPricing] > 0 {
		return core.KindPricing
	}
	return core.KindStandard
}

// fallbacks picks the fallback chain for the confidence tier:
// high-confidence routes get none, mid-confidence routes get the runner-up
// domain, low-confidence routes get up to three neighbors from the
// adjacency table. The primary never appears in the chain.
func (r *Router) fallbacks(primary, runnerUp string, confidence float64) []string {
	switch {
	case confidence >= r.highConfidence:
		return nil
	case confidence >= r.midConfidence:
		if runnerUp != "" && runnerUp != primary {
			return []string{runnerUp}
		}
		return nil
	default:
		return r.adjacencyFallbacks(primary)
	}
}

// adjacencyFallbacks returns up to three neighbors of primary from the
// adjacency table, excluding the primary itself.
func (r *Router) adjacencyFallbacks(primary string) []string {
	neighbors := r.adjacency[primary]
	fallbacks := make([]string, 0, maxAdjacencyFallbacks)
	for _, n := range neighbors {
		if n == primary {
			continue
		}
		fallbacks = append(fallbacks, n)
		if len(fallbacks) == maxAdjacencyFallbacks {
			break
		}
	}
	if len(fallbacks) == 0 {
		return nil
	}
	return fallbacks
}
