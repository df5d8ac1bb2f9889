package router

import (
	"github.com/janreigtorra/castellerq/internal/entities"
	"github.com/janreigtorra/castellerq/types"
)

// Vocabulary is what validation needs: the list accessors entity
// pre-extraction already uses, plus exact-match existence checks. Defined
// locally (rather than imported from internal/vocab) for the same reason
// entities.Vocabulary is: avoiding a dependency on the concrete cache type.
type Vocabulary interface {
	entities.Vocabulary
	HasTeam(name string) bool
	HasConstructionCode(code string) bool
	HasPlace(name string) bool
	HasEvent(name string) bool
}

const unrecognizedToolMessage = "No he entès prou bé la teva pregunta. Pots reformular-la centrant-la en castells, colles, diades o concursos?"

// validTools is the closed set RawRouterDecision.Tool must collapse into.
var validTools = map[string]types.Tool{
	string(types.ToolDirect): types.ToolDirect,
	string(types.ToolRAG):    types.ToolRAG,
	string(types.ToolSQL):    types.ToolSQL,
	string(types.ToolHybrid): types.ToolHybrid,
}

var validSQLTypes = map[string]types.SQLQueryType{
	string(types.SQLBestEvent):              types.SQLBestEvent,
	string(types.SQLBestConstruction):       types.SQLBestConstruction,
	string(types.SQLConstructionHistory):     types.SQLConstructionHistory,
	string(types.SQLLocationPerformances):    types.SQLLocationPerformances,
	string(types.SQLFirstConstruction):       types.SQLFirstConstruction,
	string(types.SQLConstructionStatistics):  types.SQLConstructionStatistics,
	string(types.SQLYearSummary):             types.SQLYearSummary,
	string(types.SQLContestRanking):          types.SQLContestRanking,
	string(types.SQLContestHistory):          types.SQLContestHistory,
	string(types.SQLCustom):                 types.SQLCustom,
}

// validateEntities checks every extracted value against the canonical
// vocabulary, dropping unknowns, and blanks invalid status values (§4.3
// step 7). Accent/case differences are tolerated via Normalize before the
// comparison, then the original (vocabulary-cased) value is kept.
func validateEntities(raw types.RawRouterDecision, vocab Vocabulary) types.Entities {
	var ents types.Entities

	ents.Teams = keepKnown(raw.Teams, vocab.Teams(), vocab.HasTeam)
	ents.Places = keepKnown(raw.Places, vocab.Places(), vocab.HasPlace)
	ents.Events = keepKnown(raw.Events, vocab.Events(), vocab.HasEvent)
	ents.Years = raw.Years
	ents.Editions = raw.Editions
	ents.Tracks = raw.Tracks
	ents.Positions = raw.Positions

	for _, rc := range raw.Constructions {
		if !vocab.HasConstructionCode(rc.Code) {
			if resolved, ok := resolveKnown(rc.Code, vocab.ConstructionCodes()); ok {
				rc.Code = resolved
			} else {
				continue
			}
		}
		c := types.Construction{Code: rc.Code}
		if rc.Status != "" && types.ValidStatuses[types.Status(rc.Status)] {
			s := types.Status(rc.Status)
			c.Status = &s
		}
		ents.Constructions = append(ents.Constructions, c)
	}

	return ents
}

// keepKnown returns the subset of values that match a known entry, exactly
// or after accent/case normalization, replacing the value with the
// vocabulary's own spelling.
func keepKnown(values, known []string, has func(string) bool) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if has(v) {
			out = append(out, v)
			continue
		}
		if resolved, ok := resolveKnown(v, known); ok {
			out = append(out, resolved)
		}
	}
	return out
}

func resolveKnown(value string, known []string) (string, bool) {
	normalized := entities.Normalize(value)
	for _, k := range known {
		if entities.Normalize(k) == normalized {
			return k, true
		}
	}
	return "", false
}
