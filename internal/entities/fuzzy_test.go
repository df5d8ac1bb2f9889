package entities

import "testing"

func TestNormalizeStripsAccentsAndLowercases(t *testing.T) {
	cases := map[string]string{
		"Castellar": "castellar",
		"caştellar": "castellar",
		"Vilafrancà": "vilafranca",
		"COLLA VELLA": "colla vella",
	}
	for in, want := range cases {
		if got := normalize(in); got != want {
			t.Errorf("normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCleanForMatchingRemovesStopwordsAndDigits(t *testing.T) {
	got := cleanForMatching("la colla vella de 2023", []string{"la", "de"})
	want := "colla vella"
	if got != want {
		t.Errorf("cleanForMatching = %q, want %q", got, want)
	}
}

func TestRemoveWholeWordOnlyMatchesWordBoundary(t *testing.T) {
	if got := removeWholeWord("la ciutat de vilafranca", "la"); got != " ciutat de vilafranca" {
		t.Errorf("removeWholeWord = %q", got)
	}
	// "vila" should not match inside "vilafranca".
	if got := removeWholeWord("vilafranca", "vila"); got != "vilafranca" {
		t.Errorf("removeWholeWord should not strip a partial word match, got %q", got)
	}
}

func TestPartialRatioIdenticalStringsScoresPerfect(t *testing.T) {
	if got := PartialRatio("colla vella", "colla vella"); got != 100 {
		t.Errorf("PartialRatio(identical) = %d, want 100", got)
	}
}

func TestPartialRatioSubstringScoresHigh(t *testing.T) {
	got := PartialRatio("vella", "la colla vella de vilafranca")
	if got < 90 {
		t.Errorf("PartialRatio(substring match) = %d, want a high score", got)
	}
}

func TestPartialRatioUnrelatedStringsScoresLow(t *testing.T) {
	got := PartialRatio("xifra completament diferent", "zzz")
	if got > 40 {
		t.Errorf("PartialRatio(unrelated) = %d, want a low score", got)
	}
}

func TestPartialRatioBothEmpty(t *testing.T) {
	if got := PartialRatio("", ""); got != 100 {
		t.Errorf("PartialRatio(\"\", \"\") = %d, want 100", got)
	}
}

func TestTopMatchesOrdersByScoreAndRespectsLimit(t *testing.T) {
	candidates := []string{"Colla Vella", "Minyons de Terrassa", "Castellers de Vilafranca"}
	matches := topMatches("colla vella", candidates, nil, 30, 2)

	if len(matches) != 2 {
		t.Fatalf("expected at most 2 matches, got %d", len(matches))
	}
	if matches[0].Value != "Colla Vella" {
		t.Errorf("best match = %q, want Colla Vella", matches[0].Value)
	}
	if matches[0].Score < matches[1].Score {
		t.Error("matches should be sorted by descending score")
	}
}

func TestTopMatchesDropsBelowMinScore(t *testing.T) {
	matches := topMatches("completament no relacionat", []string{"xyz"}, nil, 90, 5)
	if len(matches) != 0 {
		t.Errorf("expected no matches below minScore, got %v", matches)
	}
}

func TestMatchYearsFourDigit(t *testing.T) {
	got := MatchYears("Què va passar el 2019 i el 2021?", 5)
	if len(got) != 2 || got[0] != "2019" || got[1] != "2021" {
		t.Errorf("MatchYears = %v, want [2019 2021]", got)
	}
}

func TestMatchYearsTwoDigitSplitsCentury(t *testing.T) {
	got := MatchYears("els resultats dels 96 i del 23", 5)
	want := map[string]bool{"1996": true, "2023": true}
	if len(got) != 2 {
		t.Fatalf("MatchYears = %v, want 2 entries", got)
	}
	for _, y := range got {
		if !want[y] {
			t.Errorf("unexpected year %q in %v", y, got)
		}
	}
}

func TestMatchYearsRespectsTopN(t *testing.T) {
	got := MatchYears("2001 2002 2003 2004", 2)
	if len(got) != 2 {
		t.Errorf("MatchYears with topN=2 returned %d years, want 2", len(got))
	}
}

func TestCodeToNameResolvesKnownMapping(t *testing.T) {
	if got := CodeToName("3d9f"); got != "3de9f" {
		t.Errorf("CodeToName(3d9f) = %q, want 3de9f", got)
	}
}

func TestCodeToNameLeavesUnknownCodeUnchanged(t *testing.T) {
	if got := CodeToName("9d9fm"); got != "9d9fm" {
		t.Errorf("CodeToName(unknown) = %q, want it unchanged", got)
	}
}

func TestMatchConstructionCodeFuzzyFallback(t *testing.T) {
	known := []string{"4d9f", "3d9", "Pd4"}
	got := MatchConstructionCode("quin va ser el 4d9f que va fer", known, 3)
	if len(got) == 0 {
		t.Fatal("expected at least one fuzzy construction code match")
	}
	if got[0] != "4d9f" {
		t.Errorf("best match = %q, want 4d9f", got[0])
	}
}
