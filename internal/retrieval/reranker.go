package retrieval

import "sort"

// RerankWeb re-orders the web category purely by cumulative token similarity
// of each item's snippet (or title when the snippet is empty) against every
// expanded query of the final iteration, descending. The sort is stable, so
// ties preserve the order coming out of the loop. Positions are renumbered.
// Other categories are left in fusion order.
func RerankWeb(items []EnrichedItem, queries []string) []EnrichedItem {
	if len(items) < 2 {
		renumber(items)
		return items
	}

	scores := make([]float64, len(items))
	for i, item := range items {
		sum := 0.0
		for _, q := range queries {
			sum += TokenSimilarity(item.text(), q)
		}
		scores[i] = sum
	}

	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	out := make([]EnrichedItem, len(items))
	for i, idx := range order {
		out[i] = items[idx]
	}
	renumber(out)
	return out
}

func renumber(items []EnrichedItem) {
	for i := range items {
		items[i].Position = i + 1
	}
}
