// Package sqlcustom produces a SELECT statement via an LLM call when no
// fixed template matches the question (§4.5). The model is never trusted
// with live data: it only ever emits %(name)s-style placeholders, and the
// executor binds the actual parameter values.
package sqlcustom

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/janreigtorra/castellerq/config"
	"github.com/janreigtorra/castellerq/llm"
	"github.com/janreigtorra/castellerq/types"
)

// ErrRejected is returned when the model's response doesn't begin with
// SELECT after post-processing (§4.5 step 3).
var ErrRejected = fmt.Errorf("custom SQL generator: response rejected, did not begin with SELECT")

// Generator authors a single parameterized SELECT per question.
type Generator struct {
	registry *llm.ProviderRegistry
	provider config.ProviderName
	model    string
}

// New binds the Generator to the vendor:model pair named by
// cfg.LLM.RouterModel — the custom generator is a mechanical, schema-
// constrained authoring task like classification, not a prose task, so it
// shares the router's model rather than the answerer's (an Open Question
// decision, since §6 names no third model role for it).
func New(cfg *config.Config, registry *llm.ProviderRegistry) (*Generator, error) {
	provider, model, err := config.ParseProviderModel(cfg.LLM.RouterModel)
	if err != nil {
		return nil, fmt.Errorf("sqlcustom: %w", err)
	}
	return &Generator{registry: registry, provider: provider, model: model}, nil
}

// flatConstruction is the schema-safe serialization of a Construction.
type flatConstruction struct {
	Code   string `json:"code"`
	Status string `json:"status,omitempty"`
}

// entitiesJSON flattens Entities for the prompt (§4.5 step 1).
func entitiesJSON(ents types.Entities) (string, error) {
	flat := struct {
		Teams         []string           `json:"teams,omitempty"`
		Constructions []flatConstruction `json:"constructions,omitempty"`
		Years         []int              `json:"years,omitempty"`
		Places        []string           `json:"places,omitempty"`
		Events        []string           `json:"events,omitempty"`
		Editions      []string           `json:"editions,omitempty"`
		Tracks        []string           `json:"tracks,omitempty"`
		Positions     []int              `json:"positions,omitempty"`
	}{
		Teams: ents.Teams, Years: ents.Years, Places: ents.Places, Events: ents.Events,
		Editions: ents.Editions, Tracks: ents.Tracks, Positions: ents.Positions,
	}
	for _, c := range ents.Constructions {
		fc := flatConstruction{Code: c.Code}
		if c.Status != nil {
			fc.Status = c.Status.DBValue()
		}
		flat.Constructions = append(flat.Constructions, fc)
	}
	data, err := json.Marshal(flat)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

const schemaDescription = `Tables:
- colles(id, name)
- events(id, date, city, place, name)
- event_colles(id, event_fk, colla_fk)
- castells(id, event_colla_fk, castell_name, status, raw_text)
- puntuacions(castell_code, castell_code_external, castell_code_name, punts_descarregat, punts_carregat)
- concurs(id, edition, title, date, location, colla_guanyadora, num_colles, castells_intentats, maxim_castell, espectadors, "plaça")
- concurs_rankings(id, concurs_fk, colla_fk, position, colla_name, total_points, "any", jornada, ronda_1_json..ronda_7_json, rondes_json)`

const systemPrompt = `Ets un generador d'SQL per a una base de dades de castells catalans. Rep una pregunta i les entitats ja extretes.
` + schemaDescription + `

Regles obligatòries:
- Escriu només una sentència SELECT; mai INSERT, UPDATE, DELETE, DROP, ALTER ni cap altra operació.
- Mai interpolis valors literals a la consulta: fes servir paràmetres amb el format %(nom)s (per exemple %(colla)s, %(castell)s, %(year)s).
- Per filtrar per any en taules d'actuacions, fes servir EXTRACT(YEAR FROM TO_DATE(date, 'DD/MM/YYYY')) = %(year)s; en taules de concurs, la columna "any" és un enter ja emmagatzemat.
- Per relacionar una construcció amb la seva puntuació, compara castells.castell_name amb qualsevol de puntuacions.castell_code, castell_code_external o castell_code_name.
- L'estat d'una construcció és un d'aquests valors exactes: Descarregat, Carregat, Intent, Intent desmuntat.
- Limita el resultat a un màxim de 20 files amb LIMIT.
- Retorna només el codi SQL, sense explicacions ni blocs de codi markdown.`

// Generate authors a SELECT for question given its validated entities,
// returning the query text (with %(name)s placeholders, never a bound
// literal) and a parameter map keyed by every alias a reasonable model
// response might use (§4.5 step 4).
func (g *Generator) Generate(ctx context.Context, question string, ents types.Entities) (string, map[string]any, error) {
	provider, ok := g.registry.Get(string(g.provider))
	if !ok {
		return "", nil, fmt.Errorf("sqlcustom: provider %q not registered", g.provider)
	}

	entitiesText, err := entitiesJSON(ents)
	if err != nil {
		return "", nil, err
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleDeveloper, Content: "Entitats extretes (JSON): " + entitiesText},
		{Role: llm.RoleUser, Content: question},
	}

	cfg := llm.Config{Provider: string(g.provider), Model: g.model, Temperature: 0}
	raw, err := provider.Generate(ctx, messages, cfg)
	if err != nil {
		return "", nil, err
	}

	sql, err := cleanSQL(raw)
	if err != nil {
		return "", nil, err
	}

	return sql, paramMap(ents), nil
}

// cleanSQL strips markdown code fences and verifies the result begins with
// SELECT (§4.5 step 3), rejecting anything else outright.
func cleanSQL(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```sql")
	text = strings.TrimPrefix(text, "```SQL")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	upper := strings.ToUpper(text)
	if !strings.HasPrefix(upper, "SELECT") {
		return "", ErrRejected
	}
	return text, nil
}

// paramMap builds a binding map with every reasonable alias a model might
// reference, so %(colla)s, %(team)s, %(castell)s, %(construction)s etc.
// all resolve regardless of which name the model picked.
func paramMap(ents types.Entities) map[string]any {
	params := map[string]any{}
	if len(ents.Teams) > 0 {
		params["colla"] = ents.Teams
		params["team"] = ents.Teams
		params["teams"] = ents.Teams
	}
	if len(ents.Constructions) > 0 {
		codes := make([]string, len(ents.Constructions))
		for i, c := range ents.Constructions {
			codes[i] = c.Code
		}
		params["castell"] = codes
		params["construction"] = codes
		params["castells"] = codes
		if status := firstStatus(ents.Constructions); status != "" {
			params["status"] = status
		}
	}
	if len(ents.Years) > 0 {
		params["year"] = ents.Years
		params["any"] = ents.Years
		params["years"] = ents.Years
	}
	if len(ents.Places) > 0 {
		params["location"] = ents.Places
		params["place"] = ents.Places
		params["lloc"] = ents.Places
	}
	if len(ents.Events) > 0 {
		params["diada"] = ents.Events
		params["event"] = ents.Events
	}
	if len(ents.Editions) > 0 {
		params["edition"] = ents.Editions
	}
	if len(ents.Tracks) > 0 {
		params["jornada"] = ents.Tracks
	}
	if len(ents.Positions) > 0 {
		params["position"] = ents.Positions
	}
	params["limit"] = 20
	return params
}

// firstStatus returns the DB-literal (Catalan) value of the first status
// among cs, matching what the status column actually stores.
func firstStatus(cs []types.Construction) string {
	for _, c := range cs {
		if c.Status != nil {
			return c.Status.DBValue()
		}
	}
	return ""
}
