package entities

import (
	"strconv"

	"github.com/janreigtorra/castellerq/types"
)

// Vocabulary exposes the canonical value sets an extracted entity is
// checked against before it's trusted (§4.2 "never guessed"). Satisfied
// by the process-wide vocabulary cache.
type Vocabulary interface {
	Teams() []string
	ConstructionCodes() []string
	Places() []string
	Events() []string
}

// topN bounds how many fuzzy candidates of each kind are kept per
// question — matches the original top_n defaults (5 teams, 3 constructions
// via direct parse / 3 fallback, 5 years, 3 places, 4 events).
const (
	topNTeams  = 5
	topNYears  = 5
	topNPlaces = 3
	topNEvents = 4
	topNBuilds = 3
)

// Extract pulls every recognized entity kind out of a free-form Catalan
// question, validating each candidate against vocab before inclusion.
func Extract(question string, vocab Vocabulary) types.Entities {
	var ents types.Entities

	ents.Teams = MatchTeams(question, vocab.Teams(), topNTeams)
	ents.Places = MatchPlaces(question, vocab.Places(), topNPlaces)
	ents.Events = MatchEvents(question, vocab.Events(), topNEvents)

	for _, y := range MatchYears(question, topNYears) {
		if n, err := strconv.Atoi(y); err == nil {
			ents.Years = append(ents.Years, n)
		}
	}

	ents.Constructions = extractConstructions(question, vocab.ConstructionCodes())

	return ents
}

// extractConstructions tries a direct code parse first (status attached if
// mentioned), falling back to fuzzy matching against known codes when no
// pattern matches — get_castells_with_status_subset's two-path structure.
func extractConstructions(question string, known []string) []types.Construction {
	if code := ParseConstructionCode(question); code != "" {
		return []types.Construction{{Code: code, Status: ExtractStatus(question)}}
	}

	codes := MatchConstructionCode(question, known, topNBuilds)
	if len(codes) == 0 {
		return nil
	}
	status := ExtractStatus(question)
	out := make([]types.Construction, len(codes))
	for i, c := range codes {
		out[i] = types.Construction{Code: c, Status: status}
	}
	return out
}
