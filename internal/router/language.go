package router

import "fmt"

// languageNames maps an ISO 639-1 code to its Catalan demonym, used to
// build a localized "I don't speak X" apology for any detected language
// the router recognizes by name. Codes outside this map still get a
// generic apology (§4.3 step 2, language_names).
var languageNames = map[string]string{
	"en": "anglès",
	"es": "espanyol",
	"fr": "francès",
	"de": "alemany",
	"it": "italià",
	"pt": "portuguès",
	"ru": "rus",
	"zh": "xinès",
	"ja": "japonès",
	"ko": "coreà",
	"ar": "àrab",
	"hi": "hindi",
	"nl": "neerlandès",
	"sv": "suec",
	"no": "noruec",
	"da": "danès",
	"fi": "finès",
	"pl": "polonès",
	"tr": "turc",
	"he": "hebreu",
	"th": "tailandès",
	"vi": "vietnamita",
}

const genericLanguageApology = "Ho sento, només puc respondre preguntes en català i relacionades amb el món casteller. " +
	"Però sempre es bon moment per apendre a parlar català!"

// languageApology builds the canned refusal for a detected language outside
// the accepted set, naming the language when known.
func languageApology(code string) string {
	name, ok := languageNames[code]
	if !ok {
		return genericLanguageApology
	}
	return fmt.Sprintf(
		"Ho sento, no parlo %s. Només puc respondre preguntes en català i relacionades amb el món casteller. "+
			"Però sempre es bon moment per apendre a parlar català!", name,
	)
}

// isAccepted reports whether code is the target language or one of its
// accepted relatives (§4.3 step 2 — Catalan, Spanish, Portuguese in the
// default configuration).
func isAccepted(code, target string, relatives []string) bool {
	if code == target {
		return true
	}
	for _, r := range relatives {
		if code == r {
			return true
		}
	}
	return false
}
