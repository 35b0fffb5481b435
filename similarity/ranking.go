package similarity

import "sort"

// RankMatches orders matches by descending score, keeping first-seen order on
// equal scores. Error rows sink to the end in their original order.
func RankMatches(matches []Match) []Match {
	out := append([]Match(nil), matches...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Err != nil {
			return false
		}
		if out[j].Err != nil {
			return true
		}
		return out[i].Score > out[j].Score
	})
	return out
}

// BestMatch returns the highest-scoring successful match, if any.
func BestMatch(matches []Match) (Match, bool) {
	best := Match{Score: -1}
	found := false
	for _, m := range matches {
		if m.Err != nil {
			continue
		}
		if m.Score > best.Score {
			best = m
			found = true
		}
	}
	return best, found
}
