package entities

import (
	"testing"

	"github.com/janreigtorra/castellerq/types"
)

func TestParseConstructionCode(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"direct code", "Com va anar el 3d9f?", "3d9f"},
		{"torre de N", "Ens parles de la torre de 9?", "2d9"},
		{"pilar de N", "Quin va ser el pilar de 4?", "Pd4"},
		{"word de word with modifiers", "quatre de nou amb folre i manilles", "4d9fm"},
		{"no match", "quin dia va ser la diada?", ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ParseConstructionCode(c.text); got != c.want {
				t.Errorf("ParseConstructionCode(%q) = %q, want %q", c.text, got, c.want)
			}
		})
	}
}

func TestExtractModifiersHierarchyAndOrder(t *testing.T) {
	// manilles without folre is dropped (requires folre); puntals without
	// manilles is dropped (requires manilles).
	if got := extractModifiers(" amb manilles"); got != "" {
		t.Errorf("manilles without folre should be dropped, got %q", got)
	}
	if got := extractModifiers(" amb folre i puntals"); got != "f" {
		t.Errorf("puntals without manilles should be dropped, got %q", got)
	}
	// canonical order is always f, m, p, a, s regardless of mention order.
	if got := extractModifiers(" amb agulla i folre i manilles i puntals"); got != "fmpa" {
		t.Errorf("extractModifiers canonical order = %q, want %q", got, "fmpa")
	}
}

func TestExtractStatusDeterministic(t *testing.T) {
	// mentions both "carregat" and "desmuntat"; the longer phrase
	// ("desmuntat") must always win regardless of map iteration order.
	question := "El 3d9 es va carregar carregat però finalment desmuntat."
	var first *types.Status
	for i := 0; i < 20; i++ {
		got := ExtractStatus(question)
		if got == nil {
			t.Fatal("expected a status match")
		}
		if first == nil {
			first = got
		} else if *first != *got {
			t.Fatalf("ExtractStatus is non-deterministic: got %v then %v", *first, *got)
		}
	}
	if *first != types.StatusAttemptDismantled {
		t.Errorf("ExtractStatus = %v, want %v", *first, types.StatusAttemptDismantled)
	}
}

func TestExtractStatusMultiWordPhrase(t *testing.T) {
	got := ExtractStatus("Va quedar com a intent desmuntat")
	if got == nil || *got != types.StatusAttemptDismantled {
		t.Fatalf("ExtractStatus(intent desmuntat) = %v, want AttemptDismantled", got)
	}
}

func TestExtractStatusNoMatch(t *testing.T) {
	if got := ExtractStatus("quina colla va actuar ahir?"); got != nil {
		t.Errorf("expected nil status, got %v", *got)
	}
}
