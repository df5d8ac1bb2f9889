package router

import (
	"github.com/janreigtorra/castellerq/internal/entities"
	"github.com/janreigtorra/castellerq/types"
)

// queryTypePatterns holds a few representative Catalan phrasings per
// sql_query_type, used to fuzzy-classify a question against the full
// structured-query taxonomy (§4.3 step 6). One question can resemble
// several phrasings at once; only the best score across every pattern of
// every type matters.
var queryTypePatterns = map[types.SQLQueryType][]string{
	types.SQLBestEvent: {
		"quina ha estat la millor diada de",
		"quina va ser la millor actuacio de",
		"quin ha estat el millor resultat d'una diada",
	},
	types.SQLBestConstruction: {
		"quin ha estat el millor castell de",
		"quin es el castell mes dificil que ha fet",
		"quin es el millor castell descarregat per",
	},
	types.SQLConstructionHistory: {
		"quants cops ha descarregat el castell",
		"historial del castell",
		"quants intents ha fet del castell",
	},
	types.SQLLocationPerformances: {
		"quines actuacions ha fet a",
		"quines diades ha fet la colla a",
		"actuacions a la ciutat de",
	},
	types.SQLFirstConstruction: {
		"quan va ser el primer cop que va descarregar el castell",
		"quina va ser la primera actuacio amb el castell",
	},
	types.SQLConstructionStatistics: {
		"estadistiques del castell",
		"quantes colles han fet el castell",
		"en quantes diades s'ha intentat el castell",
	},
	types.SQLYearSummary: {
		"resum de l'any",
		"que va fer la colla durant l'any",
		"quines actuacions va fer l'any",
	},
	types.SQLContestRanking: {
		"classificacio del concurs",
		"quina posicio va quedar al concurs",
		"resultats del concurs de",
	},
	types.SQLContestHistory: {
		"historial de concursos de",
		"quants concursos ha fet la colla",
	},
}

// bestPatternMatch returns the sql_query_type whose pattern list best
// matches question, and the fuzzywuzzy-scale score (0-100) of that match.
func bestPatternMatch(question string) (types.SQLQueryType, int) {
	clean := entities.Normalize(question)
	var bestType types.SQLQueryType = types.SQLCustom
	best := 0
	for qType, patterns := range queryTypePatterns {
		for _, p := range patterns {
			if score := entities.PartialRatio(clean, p); score > best {
				best = score
				bestType = qType
			}
		}
	}
	return bestType, best
}
