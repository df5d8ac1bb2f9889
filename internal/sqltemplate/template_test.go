package sqltemplate

import (
	"strings"
	"testing"

	"github.com/janreigtorra/castellerq/types"
)

func TestGenerateUnknownTypeReturnsFalse(t *testing.T) {
	if _, ok := Generate(types.SQLQueryType("nope"), types.Entities{}); ok {
		t.Fatal("expected ok=false for an unrecognized sql_query_type")
	}
}

func TestGenerateRequiresEntitiesForNarrowTemplates(t *testing.T) {
	if _, ok := Generate(types.SQLYearSummary, types.Entities{}); ok {
		t.Error("yearSummary should require at least one year")
	}
	if _, ok := Generate(types.SQLFirstConstruction, types.Entities{}); ok {
		t.Error("firstConstruction should require at least one construction")
	}
	if _, ok := Generate(types.SQLConstructionStatistics, types.Entities{}); ok {
		t.Error("constructionStatistics should require at least one construction")
	}
}

// TestConstructionHistoryStatusUsesDBLiteral guards the status/DB-literal
// bug: the bound status argument must be the schema's Catalan literal, not
// the internal English enum word.
func TestConstructionHistoryStatusUsesDBLiteral(t *testing.T) {
	status := types.StatusCompleted
	ents := types.Entities{
		Constructions: []types.Construction{{Code: "3d9f", Status: &status}},
	}
	result, ok := Generate(types.SQLConstructionHistory, ents)
	if !ok {
		t.Fatal("expected constructionHistory to generate")
	}
	if !strings.Contains(result.SQL, "c.status") {
		t.Fatalf("expected a status filter in generated SQL, got: %s", result.SQL)
	}

	found := false
	for _, a := range result.Args {
		if a == "Descarregat" {
			found = true
		}
		if a == string(types.StatusCompleted) {
			t.Fatalf("status arg bound the internal enum word %q instead of the DB literal", a)
		}
	}
	if !found {
		t.Fatalf("expected \"Descarregat\" among bound args, got %v", result.Args)
	}
}

func TestGeneratePlaceholdersNeverInterpolateValues(t *testing.T) {
	ents := types.Entities{Teams: []string{"Colla Vella"}, Years: []int{2023}}
	result, ok := Generate(types.SQLBestEvent, ents)
	if !ok {
		t.Fatal("expected bestEvent to generate")
	}
	if strings.Contains(result.SQL, "Colla Vella") {
		t.Fatal("team value must never be interpolated directly into SQL")
	}
	if strings.Contains(result.SQL, "2023") {
		t.Fatal("year value must never be interpolated directly into SQL")
	}
}
