package sqlcustom

import (
	"testing"

	"github.com/janreigtorra/castellerq/types"
)

func TestCleanSQLStripsCodeFences(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"```sql\nSELECT 1\n```", "SELECT 1"},
		{"```SQL\nSELECT 1\n```", "SELECT 1"},
		{"```\nSELECT 1\n```", "SELECT 1"},
		{"  SELECT 1  ", "SELECT 1"},
	}
	for _, c := range cases {
		got, err := cleanSQL(c.raw)
		if err != nil {
			t.Fatalf("cleanSQL(%q) returned error: %v", c.raw, err)
		}
		if got != c.want {
			t.Errorf("cleanSQL(%q) = %q, want %q", c.raw, got, c.want)
		}
	}
}

func TestCleanSQLRejectsNonSelect(t *testing.T) {
	for _, raw := range []string{"DROP TABLE colles;", "UPDATE castells SET status = 1", "-- just a comment"} {
		if _, err := cleanSQL(raw); err != ErrRejected {
			t.Errorf("cleanSQL(%q) error = %v, want ErrRejected", raw, err)
		}
	}
}

func TestParamMapStatusUsesDBLiteral(t *testing.T) {
	status := types.StatusLoaded
	ents := types.Entities{Constructions: []types.Construction{{Code: "4d9f", Status: &status}}}
	params := paramMap(ents)

	got, ok := params["status"]
	if !ok {
		t.Fatal("expected a status param")
	}
	if got != "Carregat" {
		t.Errorf("status param = %v, want the DB literal \"Carregat\"", got)
	}
	if got == string(types.StatusLoaded) {
		t.Fatal("status param leaked the internal enum word instead of the DB literal")
	}
}

func TestParamMapAliasesAndDefaultLimit(t *testing.T) {
	ents := types.Entities{Teams: []string{"Minyons"}, Years: []int{2022}}
	params := paramMap(ents)

	for _, key := range []string{"colla", "team", "teams"} {
		if _, ok := params[key]; !ok {
			t.Errorf("expected team alias %q to be present", key)
		}
	}
	for _, key := range []string{"year", "any", "years"} {
		if _, ok := params[key]; !ok {
			t.Errorf("expected year alias %q to be present", key)
		}
	}
	if params["limit"] != 20 {
		t.Errorf("limit = %v, want 20", params["limit"])
	}
	if _, ok := params["castell"]; ok {
		t.Error("no construction was supplied, castell alias should be absent")
	}
}

func TestEntitiesJSONFlattensStatusToDBLiteral(t *testing.T) {
	status := types.StatusAttempt
	ents := types.Entities{Constructions: []types.Construction{{Code: "3d8", Status: &status}}}
	text, err := entitiesJSON(ents)
	if err != nil {
		t.Fatalf("entitiesJSON returned error: %v", err)
	}
	if want := `"status":"Intent"`; !contains(text, want) {
		t.Errorf("entitiesJSON() = %s, expected to contain %s", text, want)
	}
}

func contains(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}
