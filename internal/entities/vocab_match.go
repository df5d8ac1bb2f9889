package entities

var teamStopwords = []string{
	"castellera", "castelleres", "castellers", "colla", "colles",
	"de", "del", "dels", "la", "el", "les", "els", "xiquets",
}

var placeStopwords = []string{
	"lloc", "llocs", "ciutat", "ciutats", "poblacio", "poblacions",
	"de", "del", "dels", "la", "el", "les", "els",
}

var eventStopwords = []string{
	"diada", "diades", "festival", "festivals", "actuacio", "actuacions",
	"de", "del", "dels", "la", "el", "les", "els", "festa", "festiu",
	"festa major", "major", "local", "locals",
}

// matchTeamThreshold is the partial-ratio floor for team-name candidates
// (0.85 in utility_functions.py's get_colles_castelleres_subset).
const matchTeamThreshold = 85

// matchPlaceThreshold / matchEventThreshold are both 0.5 in the original
// (get_llocs_subset, get_diades_subset).
const matchPlaceThreshold = 50
const matchEventThreshold = 50

// matchConstructionThreshold is the 0.3 floor used when falling back to
// fuzzy matching against known construction codes (get_castells_subset).
const matchConstructionThreshold = 30

// MatchTeams returns up to topN team names from known whose cleaned form
// partially matches the cleaned question, ranked by score.
func MatchTeams(question string, known []string, topN int) []string {
	return values(topMatches(question, known, teamStopwords, matchTeamThreshold, topN))
}

// MatchPlaces returns up to topN place names from known matching question.
func MatchPlaces(question string, known []string, topN int) []string {
	return values(topMatches(question, known, placeStopwords, matchPlaceThreshold, topN))
}

// MatchEvents returns up to topN event names from known matching question.
func MatchEvents(question string, known []string, topN int) []string {
	return values(topMatches(question, known, eventStopwords, matchEventThreshold, topN))
}

func values(matches []Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Value
	}
	return out
}
