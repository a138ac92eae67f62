package search

import "github.com/expatwise/retrieval/core"

// itemMetadataKey identifies which priced item a document describes.
// Documents sharing an item value are competing answers for that item.
const itemMetadataKey = "item"

// resolvePricingConflicts deduplicates pricing documents that describe the
// same item, keeping the most recently updated one and breaking ties by
// relevance score. Documents without item metadata pass through untouched.
// The survivors keep their original ranking order.
func resolvePricingConflicts(docs []*core.ScoredDocument) []*core.ScoredDocument {
	winners := make(map[string]*core.ScoredDocument)
	for _, doc := range docs {
		item, ok := doc.Document.Metadata[itemMetadataKey]
		if !ok || item == "" {
			continue
		}
		current, seen := winners[item]
		if !seen || newerPricing(doc, current) {
			winners[item] = doc
		}
	}

	resolved := make([]*core.ScoredDocument, 0, len(docs))
	for _, doc := range docs {
		item, ok := doc.Document.Metadata[itemMetadataKey]
		if ok && item != "" && winners[item] != doc {
			continue
		}
		resolved = append(resolved, doc)
	}
	return resolved
}

// newerPricing reports whether a should replace b as the answer for an
// item: strictly more recent wins, and equal recency falls back to the
// higher relevance score.
func newerPricing(a, b *core.ScoredDocument) bool {
	if a.Document.UpdatedAt.After(b.Document.UpdatedAt) {
		return true
	}
	if a.Document.UpdatedAt.Equal(b.Document.UpdatedAt) {
		return a.Score > b.Score
	}
	return false
}
