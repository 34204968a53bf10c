package retrieval

import "sort"

// Fuser merges per-variant ranked lists with Reciprocal Rank Fusion plus a
// snippet-similarity boost. Fusion is purely additive: every URL appearing in
// at least one input list appears exactly once in the output.
type Fuser struct {
	// K is the rank-smoothing constant (reference value 60).
	K int
	// Beta weights the snippet-similarity boost (reference value 0.1).
	Beta float64
}

func NewFuser(k int, beta float64) *Fuser {
	if k <= 0 {
		k = 60
	}
	return &Fuser{K: k, Beta: beta}
}

type fusedEntry struct {
	item ResultItem
	base float64
	// representative occurrence: smallest rank wins, ties broken by the
	// earliest source list.
	bestRank int
	bestList int
}

// Fuse merges the ranked lists of one category. queries is the full set of
// expanded query strings the lists were produced from; the representative
// occurrence's text is compared against each of them. The output is sorted
// descending by score with lexical URL order as the deterministic tie-break,
// and positions are reassigned densely 1..N.
func (f *Fuser) Fuse(lists [][]ResultItem, queries []string) []ResultItem {
	entries := make(map[string]*fusedEntry)

	for listIdx, list := range lists {
		for _, item := range list {
			rank := item.Rank
			if rank < 1 {
				rank = 1
			}
			entry, ok := entries[item.URL]
			if !ok {
				entry = &fusedEntry{item: item, bestRank: rank, bestList: listIdx}
				entries[item.URL] = entry
			} else if rank < entry.bestRank || (rank == entry.bestRank && listIdx < entry.bestList) {
				entry.item = item
				entry.bestRank = rank
				entry.bestList = listIdx
			}
			entry.base += 1.0 / float64(f.K+rank)
		}
	}

	fused := make([]ResultItem, 0, len(entries))
	for _, entry := range entries {
		sim := 0.0
		text := entry.item.text()
		for _, q := range queries {
			sim += TokenSimilarity(text, q)
		}
		item := entry.item
		item.Score = entry.base + f.Beta*sim
		fused = append(fused, item)
	}

	sort.Slice(fused, func(i, j int) bool {
		if fused[i].Score != fused[j].Score {
			return fused[i].Score > fused[j].Score
		}
		return fused[i].URL < fused[j].URL
	})

	for i := range fused {
		fused[i].Position = i + 1
	}
	return fused
}

// FuseAll applies fusion per source category across all variant results.
func (f *Fuser) FuseAll(settled []VariantResults, queries []string) ResultSet {
	webLists := make([][]ResultItem, 0, len(settled))
	imageLists := make([][]ResultItem, 0, len(settled))
	newsLists := make([][]ResultItem, 0, len(settled))

	for _, vr := range settled {
		webLists = append(webLists, toResultItems(vr.Results.Web, SourceWeb))
		imageLists = append(imageLists, toResultItems(vr.Results.Images, SourceImage))
		newsLists = append(newsLists, toResultItems(vr.Results.News, SourceNews))
	}

	return ResultSet{
		Web:   f.Fuse(webLists, queries),
		Image: f.Fuse(imageLists, queries),
		News:  f.Fuse(newsLists, queries),
	}
}

func toResultItems(items []ProviderItem, source Source) []ResultItem {
	out := make([]ResultItem, 0, len(items))
	for i, item := range items {
		rank := item.Rank
		if rank < 1 {
			rank = i + 1
		}
		out = append(out, ResultItem{
			URL:     item.URL,
			Title:   item.Title,
			Snippet: item.Description,
			Rank:    rank,
			Source:  source,
		})
	}
	return out
}
