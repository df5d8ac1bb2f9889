package entities

import (
	"sort"

	"github.com/agnivade/levenshtein"
)

// partialRatio scores how well the shorter of a/b occurs anywhere inside
// the longer, returning 0..100. It mirrors fuzzywuzzy's partial_ratio: the
// original Python router was tuned against that scoring (thresholds 30,
// 50, 85 throughout utility_functions.py), so the replacement metric must
// stay on the same 0-100 scale with the same "substring, not whole-string"
// semantics even though the edit-distance library underneath differs.
// PartialRatio is the exported form of partialRatio, reused by the router's
// sql-type fuzzy classifier (§4.3 step 6) so both components share one
// fuzzywuzzy-compatible scoring implementation.
func PartialRatio(a, b string) int { return partialRatio(a, b) }

func partialRatio(a, b string) int {
	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) == 0 {
		if len(longer) == 0 {
			return 100
		}
		return 0
	}
	if len(shorter) >= len(longer) {
		return ratio(shorter, longer)
	}

	best := 0
	windowLen := len([]rune(shorter))
	longerRunes := []rune(longer)
	for start := 0; start+windowLen <= len(longerRunes); start++ {
		window := string(longerRunes[start : start+windowLen])
		if r := ratio(shorter, window); r > best {
			best = r
		}
	}
	return best
}

// ratio converts Levenshtein edit distance into fuzzywuzzy's 0-100
// similarity scale: 100 * (1 - distance / max(len(a), len(b))).
func ratio(a, b string) int {
	maxLen := len([]rune(a))
	if bl := len([]rune(b)); bl > maxLen {
		maxLen = bl
	}
	if maxLen == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	score := 100.0 * (1.0 - float64(dist)/float64(maxLen))
	if score < 0 {
		score = 0
	}
	return int(score)
}

// Match is one fuzzy candidate with its score (0-100, fuzzywuzzy scale).
type Match struct {
	Value string
	Score int
}

// topMatches cleans query and every candidate the same way, scores each
// with partialRatio, keeps those at or above minScore, and returns the
// top n sorted by descending score — the shape of get_colles_castelleres_subset
// / get_llocs_subset / get_diades_subset in utility_functions.py.
func topMatches(query string, candidates []string, stopwords []string, minScore, n int) []Match {
	cleanQuery := cleanForMatching(query, stopwords)
	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		if c == "" {
			continue
		}
		cleanCandidate := cleanForMatching(c, stopwords)
		score := partialRatio(cleanQuery, cleanCandidate)
		if score >= minScore {
			matches = append(matches, Match{Value: c, Score: score})
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > n {
		matches = matches[:n]
	}
	return matches
}
