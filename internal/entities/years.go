package entities

import (
	"regexp"
	"sort"
	"strconv"
)

var fourDigitYearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)
var twoDigitYearPattern = regexp.MustCompile(`\bdels?\s+(\d{2})\b`)

// MatchYears extracts up to topN years mentioned in question: direct
// 4-digit years, and "del 23"/"dels 96" style 2-digit years, mapped 00-30
// to the 2000s and 31-99 to the 1900s (get_anys_subset).
func MatchYears(question string, topN int) []string {
	text := normalize(question)
	found := make(map[string]struct{})

	for _, y := range fourDigitYearPattern.FindAllString(text, -1) {
		found[y] = struct{}{}
	}
	for _, m := range twoDigitYearPattern.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		var year string
		if n <= 30 {
			year = "20" + pad2(n)
		} else {
			year = "19" + pad2(n)
		}
		found[year] = struct{}{}
	}

	years := make([]string, 0, len(found))
	for y := range found {
		years = append(years, y)
	}
	sort.Strings(years)
	if len(years) > topN {
		years = years[:topN]
	}
	return years
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
