package router

import "strings"

// metaLLMKeywords catches attempts to redirect the assistant away from its
// persona: prompt injection, jailbreaks, requests to reveal instructions.
var metaLLMKeywords = []string{
	"ignore previous instructions", "ignore all previous instructions",
	"ignore the above", "disregard previous instructions",
	"system prompt", "your instructions", "your prompt",
	"act as", "pretend you are", "pretend to be", "jailbreak",
	"you are now", "new persona", "dan mode", "developer mode",
	"reveal your prompt", "repeat the words above", "print the above",
}

// techProgrammingKeywords catches requests to use the assistant as a
// general-purpose coding tool, off the castells domain entirely.
var techProgrammingKeywords = []string{
	"write python code", "write a python", "write javascript",
	"write a function", "write code", "write a program",
	"debug this code", "fix this code", "fix my code",
	"sql injection", "write a sql query", "regex for",
	"write an algorithm", "leetcode", "compile error",
	"stack trace", "unit test for", "dockerfile", "kubernetes yaml",
}

// nonCastellerDomains catches questions clearly about an unrelated subject
// rather than a Catalan-culture detour the router could still route to rag.
var nonCastellerDomains = []string{
	"receta de cocina", "recipe for", "stock price", "cryptocurrency",
	"weather forecast", "el tiempo mañana", "how to lose weight",
	"medical diagnosis", "legal advice", "tax return",
	"football results", "resultat de futbol", "horoscope",
}

// isGuardrailViolation substring-matches the lowercased question against
// three closed keyword lists (off-topic domains, LLM meta-prompting,
// tech/programming) — a hit on any list short-circuits the whole pipeline
// (§4.3 step 1, is_guardrail_violation).
func isGuardrailViolation(question string) bool {
	q := strings.ToLower(question)
	for _, list := range [][]string{metaLLMKeywords, techProgrammingKeywords, nonCastellerDomains} {
		for _, k := range list {
			if strings.Contains(q, k) {
				return true
			}
		}
	}
	return false
}

const guardrailResponse = "Sóc **el Xiquet**, un assistent especialitzat **exclusivament** en el món casteller.\n\n" +
	"Només puc respondre preguntes sobre castells, colles, diades, concursos i història castellera.\n" +
	"Si tens una pregunta castellera, estaré encantat d'ajudar-te!"
