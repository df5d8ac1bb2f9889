package router

import (
	"fmt"
	"strings"

	"github.com/janreigtorra/castellerq/llm"
	"github.com/janreigtorra/castellerq/types"
)

// classificationSchema describes RawRouterDecision to Provider.Parse,
// enumerating the recognized tool/sql_query_type values and describing the
// compound shapes (§4.3 step 5) since llm.Schema only carries flat
// name/type/description fields.
func classificationSchema() llm.Schema {
	return llm.Schema{
		Name: "router_decision",
		Fields: []llm.SchemaField{
			{Name: "tool", Type: "string", Required: true,
				Description: `One of "direct", "rag", "sql", "hybrid".`},
			{Name: "sql_query_type", Type: "string",
				Description: `Only set when tool is "sql" or "hybrid". One of ` + sqlQueryTypeEnum() + ` or "custom".`},
			{Name: "direct_response", Type: "string", Required: true,
				Description: `Filled only when tool is "direct"; empty string otherwise.`},
			{Name: "teams", Type: "array",
				Description: "Team names, drawn only from the provided candidate list."},
			{Name: "constructions", Type: "array",
				Description: `Objects {"code": string, "status": string omitted if unknown}; status one of ` + statusEnum() + `.`},
			{Name: "years", Type: "array", Description: "Integer years mentioned, drawn only from the provided candidates."},
			{Name: "places", Type: "array", Description: "Place names, drawn only from the provided candidate list."},
			{Name: "events", Type: "array", Description: "Event names, drawn only from the provided candidate list."},
			{Name: "editions", Type: "array", Description: "Contest edition identifiers mentioned, if any."},
			{Name: "tracks", Type: "array", Description: "Contest track/category names mentioned, if any."},
			{Name: "positions", Type: "array", Description: "Contest ranking positions mentioned, if any."},
		},
	}
}

func sqlQueryTypeEnum() string {
	kinds := []string{
		"bestEvent", "bestConstruction", "constructionHistory", "locationPerformances",
		"firstConstruction", "constructionStatistics", "yearSummary", "contestRanking", "contestHistory",
	}
	quoted := make([]string, len(kinds))
	for i, t := range kinds {
		quoted[i] = fmt.Sprintf("%q", t)
	}
	return strings.Join(quoted, ", ")
}

func statusEnum() string {
	names := make([]string, 0, len(types.ValidStatuses))
	for s := range types.ValidStatuses {
		names = append(names, fmt.Sprintf("%q", string(s)))
	}
	return strings.Join(names, ", ")
}
