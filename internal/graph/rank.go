package graph

import (
	"math"
	"sort"
)

// rankResults orders search hits deterministically. With a center node the
// order is (distance ascending, score descending, episode ID); without one
// it is (score descending, episode ID). Unknown distances sort last.
func rankResults(results []SearchResult, centered bool) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if centered && a.Distance != b.Distance {
			return hops(a.Distance) < hops(b.Distance)
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.EpisodeID < b.EpisodeID
	})
}

// hops treats unknown distances (-1) as farther than any real path.
func hops(d int) int {
	if d < 0 {
		return math.MaxInt
	}
	return d
}
