// Package entities extracts teams, construction codes, years, places and
// events from free-form Catalan questions (§4.2). Grounded on
// utility_functions.py's fuzzy-matching helpers, reauthored with Go's
// x/text normalization and a Levenshtein-based partial ratio in place of
// Python's fuzzywuzzy.
package entities

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// normalize lowercases and strips diacritics so "Castellar" and "castellar"
// and "caştellar" with stray accents all compare equal — Catalan questions
// are typed without consistent accenting.
// Normalize is the exported form of normalize, reused by the router to
// accent/case-fold entity values before validating them against the
// canonical vocabulary (§4.3 step 7).
func Normalize(s string) string { return normalize(s) }

func normalize(s string) string {
	s = strings.ToLower(s)
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// cleanForMatching lowercases, strips diacritics, removes the given
// stopwords (whole-word) and digits, and collapses whitespace — mirroring
// clean_text_for_matching in utility_functions.py.
func cleanForMatching(text string, stopwords []string) string {
	clean := normalize(text)
	for _, w := range stopwords {
		clean = removeWholeWord(clean, normalize(w))
	}
	clean = removeDigits(clean)
	return strings.Join(strings.Fields(clean), " ")
}

// removeWholeWord deletes word (which may itself be a multi-word phrase,
// e.g. "festa major") from text wherever it appears on word boundaries.
func removeWholeWord(text, word string) string {
	if word == "" {
		return text
	}
	pattern := `\b` + regexp.QuoteMeta(word) + `\b`
	re, err := regexp.Compile(pattern)
	if err != nil {
		return text
	}
	return re.ReplaceAllString(text, "")
}

func removeDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
