package vocab

import "testing"

func TestNewCacheStartsEmpty(t *testing.T) {
	c := New(nil)
	if len(c.Teams()) != 0 || len(c.ConstructionCodes()) != 0 || len(c.Places()) != 0 || len(c.Events()) != 0 {
		t.Error("a freshly constructed Cache should report empty vocabulary until Reload runs")
	}
	if c.HasTeam("anything") {
		t.Error("HasTeam should be false before the first Reload")
	}
}

func TestCacheAccessorsReflectStoredSnapshot(t *testing.T) {
	c := New(nil)
	c.ptr.Store(&snapshot{
		teams:             []string{"Colla Vella", "Minyons"},
		constructionCodes: []string{"4d9f", "3d9"},
		places:            []string{"Vilafranca"},
		events:            []string{"Sant Fèlix"},
	})

	if !c.HasTeam("Minyons") {
		t.Error("expected HasTeam(Minyons) to be true")
	}
	if c.HasTeam("Colla Inventada") {
		t.Error("expected HasTeam(Colla Inventada) to be false")
	}
	if !c.HasConstructionCode("3d9") {
		t.Error("expected HasConstructionCode(3d9) to be true")
	}
	if !c.HasPlace("Vilafranca") {
		t.Error("expected HasPlace(Vilafranca) to be true")
	}
	if !c.HasEvent("Sant Fèlix") {
		t.Error("expected HasEvent(Sant Fèlix) to be true")
	}
	if len(c.Teams()) != 2 {
		t.Errorf("Teams() = %v, want 2 entries", c.Teams())
	}
}

func TestContains(t *testing.T) {
	values := []string{"a", "b", "c"}
	if !contains(values, "b") {
		t.Error("expected contains(values, b) to be true")
	}
	if contains(values, "z") {
		t.Error("expected contains(values, z) to be false")
	}
	if contains(nil, "a") {
		t.Error("expected contains(nil, a) to be false")
	}
}
