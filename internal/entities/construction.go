package entities

import (
	"regexp"
	"sort"
	"strings"

	"github.com/janreigtorra/castellerq/types"
)

var numberWords = map[string]string{
	"zero": "0", "un": "1", "una": "1", "dos": "2", "dues": "2",
	"tres": "3", "quatre": "4", "cinc": "5", "sis": "6", "set": "7",
	"vuit": "8", "nou": "9", "deu": "10",
}

// modifierWords maps a spoken modifier phrase to its single-letter code.
// Order matters only for matching precedence (longest phrase first),
// not for final ordering — that's modifierOrder below.
var modifierWords = []struct {
	phrase string
	code   string
}{
	{"per sota", "s"},
	{"amb agulla", "a"},
	{"amb pilar", "a"},
	{"folre", "f"},
	{"manilles", "m"},
	{"agulla", "a"},
	{"puntals", "p"},
}

// modifierOrder fixes the canonical code ordering: folre, manilles,
// puntals, agulla, per sota.
var modifierOrder = map[byte]int{'f': 0, 'm': 1, 'p': 2, 'a': 3, 's': 4}

var directCodePattern = regexp.MustCompile(`\b([0-9Pp]+d[0-9]+[afms]*)\b`)
var torrePattern = regexp.MustCompile(`torre\s+de\s+([0-9]+)`)
var pilarPattern = regexp.MustCompile(`pilar\s+de\s+([0-9]+)`)
var wordDeWordPattern = regexp.MustCompile(`([a-z]+)\s+de\s+([a-z]+)`)
var numDeNumPattern = regexp.MustCompile(`([0-9]+)\s+de\s+([0-9]+)`)

// ParseConstructionCode extracts a single construction code from Catalan
// free text, trying the same pattern cascade as
// parse_castell_code_from_text: a bare code, "torre de X", "pilar de X",
// "<word> de <word>" with trailing modifiers, then "<num> de <num>" with
// trailing modifiers. Returns "" if nothing matched.
func ParseConstructionCode(text string) string {
	text = normalize(strings.TrimSpace(text))

	if m := directCodePattern.FindString(text); m != "" {
		return m
	}
	if m := torrePattern.FindStringSubmatch(text); m != nil {
		return "2d" + m[1]
	}
	if m := pilarPattern.FindStringSubmatch(text); m != nil {
		return "Pd" + m[1]
	}
	if m := wordDeWordPattern.FindStringSubmatchIndex(text); m != nil {
		first := text[m[2]:m[3]]
		second := text[m[4]:m[5]]
		if width, ok := numberWords[first]; ok {
			height := second
			if w, ok := numberWords[second]; ok {
				height = w
			}
			rest := text[m[1]:]
			return width + "d" + height + extractModifiers(rest)
		}
	}
	if m := numDeNumPattern.FindStringSubmatchIndex(text); m != nil {
		width := text[m[2]:m[3]]
		height := text[m[4]:m[5]]
		rest := text[m[1]:]
		return width + "d" + height + extractModifiers(rest)
	}
	return ""
}

// extractModifiers finds modifier phrases in rest, applies the hierarchy
// rules (manilles requires folre; puntals requires manilles), and returns
// the codes in canonical order.
func extractModifiers(rest string) string {
	found := make(map[byte]bool)
	remaining := rest
	sorted := append([]struct {
		phrase string
		code   string
	}{}, modifierWords...)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i].phrase) > len(sorted[j].phrase) })

	for _, mw := range sorted {
		if strings.Contains(remaining, mw.phrase) {
			found[mw.code[0]] = true
			remaining = strings.Replace(remaining, mw.phrase, "", 1)
		}
	}

	if found['m'] && !found['f'] {
		delete(found, 'm')
	}
	if found['p'] && !found['m'] {
		delete(found, 'p')
	}

	codes := make([]byte, 0, len(found))
	for c := range found {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return modifierOrder[codes[i]] < modifierOrder[codes[j]] })

	return string(codes)
}

var statusWords = map[string]types.Status{
	"descarregat": types.StatusCompleted, "descarregats": types.StatusCompleted,
	"descarregada": types.StatusCompleted, "descarregades": types.StatusCompleted,
	"aconseguit": types.StatusCompleted, "aconseguits": types.StatusCompleted,
	"aconseguida": types.StatusCompleted, "aconseguides": types.StatusCompleted,
	"completat": types.StatusCompleted, "completats": types.StatusCompleted,
	"completada": types.StatusCompleted, "completades": types.StatusCompleted,
	"fet": types.StatusCompleted, "fets": types.StatusCompleted,
	"feta": types.StatusCompleted, "fetes": types.StatusCompleted,

	"carregat": types.StatusLoaded, "carregats": types.StatusLoaded,
	"carregada": types.StatusLoaded, "carregades": types.StatusLoaded,

	"intent": types.StatusAttempt, "intents": types.StatusAttempt,

	"intent desmuntat": types.StatusAttemptDismantled, "intents desmuntats": types.StatusAttemptDismantled,
	"intent desmuntats": types.StatusAttemptDismantled, "desmuntat": types.StatusAttemptDismantled,
	"desmuntats": types.StatusAttemptDismantled, "desmuntada": types.StatusAttemptDismantled,
	"desmuntades": types.StatusAttemptDismantled, "fallat": types.StatusAttemptDismantled,
	"fallats": types.StatusAttemptDismantled, "fallada": types.StatusAttemptDismantled,
	"fallades": types.StatusAttemptDismantled,
}

// singleWordStatuses is statusWords' single-word keys in a fixed order
// (longest phrase first, then alphabetical), so a question mentioning more
// than one status word always resolves to the same match instead of
// depending on Go's randomized map iteration order.
var singleWordStatuses = sortedSingleWordStatusKeys()

func sortedSingleWordStatusKeys() []string {
	keys := make([]string, 0, len(statusWords))
	for word := range statusWords {
		if !strings.Contains(word, " ") {
			keys = append(keys, word)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}

// ExtractStatus looks for a status word anywhere in the question and
// returns the matching Status, or nil if none is mentioned. Multi-word
// phrases ("intent desmuntat") are checked before their component words so
// the more specific status wins.
func ExtractStatus(question string) *types.Status {
	text := normalize(question)

	multiWord := []string{"intent desmuntat", "intents desmuntats", "intent desmuntats"}
	for _, phrase := range multiWord {
		if containsWholeWord(text, phrase) {
			s := statusWords[phrase]
			return &s
		}
	}
	for _, word := range singleWordStatuses {
		if containsWholeWord(text, word) {
			s := statusWords[word]
			return &s
		}
	}
	return nil
}

func containsWholeWord(text, word string) bool {
	pattern := `\b` + regexp.QuoteMeta(word) + `\b`
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(text)
}

// MatchConstructionCode falls back to fuzzy-matching the question against
// a list of known construction codes when ParseConstructionCode finds no
// direct pattern (get_castells_subset's fallback path).
func MatchConstructionCode(question string, known []string, topN int) []string {
	cleanQuestion := normalize(question)
	matches := make([]Match, 0, len(known))
	for _, code := range known {
		if code == "" {
			continue
		}
		score := partialRatio(cleanQuestion, normalize(code))
		if score >= matchConstructionThreshold {
			matches = append(matches, Match{Value: code, Score: score})
		}
	}
	sortMatches(matches)
	if len(matches) > topN {
		matches = matches[:topN]
	}
	return values(matches)
}

func sortMatches(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
}

// codeNameMapping maps a construction code to the historical
// "castell_code_name" spelling used in the puntuacions table's alternate
// code column (code_to_name in utility_functions.py) — needed because the
// score table's three code columns disagree on formatting for some
// constructions ("de" spelled out, 'a' written as 'p').
var codeNameMapping = map[string]string{
	"2d6": "2de6", "2d6s": "2de6s", "2d7": "2de7", "2d8": "2de8",
	"2d8f": "2de8f", "2d9f": "2de9f", "2d9fm": "2de9fm",
	"3d10fm": "3de10fm", "3d6": "3de6", "3d6a": "3de6p", "3d6s": "3de6s",
	"3d7": "3de7", "3d7a": "3de7p", "3d7s": "3de7s", "3d8": "3de8",
	"3d8a": "3de8p", "3d8s": "3de8s", "3d9": "3de9", "3d9f": "3de9f",
	"3d9af": "3de9fp", "4d10fm": "4de10fm", "4d6": "4de6", "4d6a": "4de6p",
	"4d7": "4de7", "4d7a": "4de7p", "4d8": "4de8", "4d8a": "4de8p",
	"4d9": "4de9", "4d9f": "4de9f", "4d9af": "4de9fp", "5d6": "5de6",
	"5d6a": "5de6p", "5d7": "5de7", "5d7a": "5de7p", "5d8": "5de8",
	"5d8a": "5de8p", "5d9f": "5de9f", "7d6": "7de6", "7d6a": "7de6p",
	"7d7": "7de7", "7d7a": "7de7p", "7d8": "7de8", "7d8a": "7de8p",
	"7d9f": "7de9f", "9d6": "9de6", "9d7": "9de7", "9d8": "9de8",
	"9d9f": "9de9f", "Pd4": "Pde4", "Pd5": "Pde5", "Pd6": "Pde6",
	"Pd7f": "Pde7f", "Pd8fm": "Pde8fm", "Pd9fmp": "Pde9fmp",
}

// CodeToName resolves a construction code to its castell_code_name
// spelling, returning the code unchanged if no alternate spelling exists.
func CodeToName(code string) string {
	if name, ok := codeNameMapping[code]; ok {
		return name
	}
	return code
}
