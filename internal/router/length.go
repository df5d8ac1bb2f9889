package router

import "regexp"

var tokenPattern = regexp.MustCompile(`\b\w+\b`)

const tooLongResponse = "La teva pregunta és massa llarga. Si us plau, fes una pregunta més concisa i específica sobre el món casteller."

// countTokens counts word-boundary tokens the same way the length filter
// does (§4.3 step 3): a plain \b\w+\b match count, not a model tokenizer.
func countTokens(question string) int {
	return len(tokenPattern.FindAllString(question, -1))
}
