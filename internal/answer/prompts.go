package answer

import "github.com/janreigtorra/castellerq/types"

// promptSet holds the system and developer prompts for one strategy
// (§4.8). The user message, carrying the question and the rendered
// context(s), is built at call time.
type promptSet struct {
	system    string
	developer string
}

const basePersona = `Ets en Xiquet, un assistent expert en castells catalans: la seva història, colles, diades, concursos i estadístiques. Respon sempre en català, amb un to clar i didàctic, com si expliquessis a algú interessat però no expert.`

const baseProhibitions = `No facis servir taules ni llistes amb pipes (|). No facis servir llistes amb guionets llargues; com a màxim una llista breu si cal. No donis opinions personals sobre quina colla és "millor". Escriu en prosa, amb paràgrafs curts. Pots ressaltar en negreta com a molt 3 o 4 dades clau.`

// defaultPromptSet covers custom and any strategy or query type without a
// dedicated set — a generic narrative answer grounded on whatever context
// is supplied.
var defaultPromptSet = promptSet{
	system:    basePersona,
	developer: baseProhibitions + " Respon en 1 o 2 paràgrafs.",
}

var ragPromptSet = promptSet{
	system:    basePersona + " Fas servir exclusivament la informació dels documents recuperats; si no hi són, digues-ho honestament.",
	developer: baseProhibitions + " Respon en 1 o 2 paràgrafs, citant la informació rellevant dels documents sense anomenar-los explícitament (\"document 1\", etc.).",
}

var hybridPromptSet = promptSet{
	system:    basePersona + " Combines dades concretes d'una consulta amb context narratiu dels documents recuperats en una única resposta coherent.",
	developer: baseProhibitions + " Respon en 2 o 3 paràgrafs: comença per la dada concreta i després contextualitza-la.",
}

// sqlPromptSets gives each structured query type its own framing, since
// "la colla amb més punts" and "l'historial d'un castell" call for
// different narrative shapes even though both come from a table (§4.8).
var sqlPromptSets = map[types.SQLQueryType]promptSet{
	types.SQLBestEvent: {
		system:    basePersona + " Interpretes rànquings de diades i destaques la colla guanyadora i els seus castells clau.",
		developer: baseProhibitions + " Respon en 1 paràgraf breu.",
	},
	types.SQLBestConstruction: {
		system:    basePersona + " Interpretes un rànquing de colles per a un castell concret.",
		developer: baseProhibitions + " Respon en 1 paràgraf breu.",
	},
	types.SQLConstructionHistory: {
		system:    basePersona + " Narres l'historial d'actuacions d'un castell concret en ordre cronològic.",
		developer: baseProhibitions + " Respon en 1 o 2 paràgrafs.",
	},
	types.SQLLocationPerformances: {
		system:    basePersona + " Resumeixes les actuacions fetes en un lloc o diada concrets.",
		developer: baseProhibitions + " Respon en 1 o 2 paràgrafs.",
	},
	types.SQLFirstConstruction: {
		system:    basePersona + " Identifiques la primera vegada que es va fer un castell i qui el va fer.",
		developer: baseProhibitions + " Respon en 1 paràgraf breu.",
	},
	types.SQLConstructionStatistics: {
		system:    basePersona + " Resumeixes estadístiques agregades sobre un o més castells.",
		developer: baseProhibitions + " Respon en 1 o 2 paràgrafs.",
	},
	types.SQLYearSummary: {
		system:    basePersona + " Resumeixes l'activitat castellera d'un any concret.",
		developer: baseProhibitions + " Respon en 2 paràgrafs.",
	},
	types.SQLContestRanking: {
		system:    basePersona + " Interpretes la classificació d'un concurs de castells.",
		developer: baseProhibitions + " Respon en 1 o 2 paràgrafs.",
	},
	types.SQLContestHistory: {
		system:    basePersona + " Narres l'historial d'una colla o edició en un concurs.",
		developer: baseProhibitions + " Respon en 1 o 2 paràgrafs.",
	},
	types.SQLCustom: defaultPromptSet,
}

// promptFor resolves the prompt set for a route/sql_query_type combination.
func promptFor(tool types.Tool, sqlType types.SQLQueryType) promptSet {
	switch tool {
	case types.ToolRAG:
		return ragPromptSet
	case types.ToolHybrid:
		return hybridPromptSet
	case types.ToolSQL:
		if set, ok := sqlPromptSets[sqlType]; ok {
			return set
		}
		return defaultPromptSet
	default:
		return defaultPromptSet
	}
}
