// Package router classifies free-text queries into knowledge partitions.
//
// The Router scores a query's keyword overlap against a registered domain
// table, producing a RouteDecision with a primary partition, a confidence
// score in [0,1], an ordered fallback chain, and a query kind tag. Routing
// is pure computation: no I/O, no errors, and safe for concurrent use.
//
// # Confidence Tiers
//
// The confidence score selects the fallback strategy:
//
//   - High (>= 0.70): the primary partition only, no fallbacks.
//   - Mid (0.40 - 0.70): the runner-up domain as a single fallback.
//   - Low (< 0.40): up to three neighbors from a static adjacency table.
//
// Thresholds, domains, and the adjacency table are all replaceable through
// functional options.
//
// # Overrides
//
// Enumeration-style queries ("list all ...", "show me every ...") bypass
// keyword scoring entirely and route to the activities partition with full
// confidence, since keyword votes are a poor signal for catalog requests.
package router
