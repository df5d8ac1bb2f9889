// Package langdetect wraps a statistical language detector behind a small
// interface, so the router's language filter (§4.3 step 2) doesn't depend
// directly on a third-party detector's API.
package langdetect

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// Detector identifies the most likely ISO 639-1 language code for a short
// piece of text.
type Detector interface {
	// Detect returns a lowercase ISO 639-1 code ("ca", "es", ...) and true,
	// or "", false when no language could be determined confidently.
	Detect(text string) (string, bool)
}

// LinguaDetector is the production Detector, built once at startup since
// constructing the underlying n-gram models is expensive (§4.3, mirrors the
// process-wide vocabulary cache's one-time-load discipline).
type LinguaDetector struct {
	detector lingua.LanguageDetector
}

// New builds a detector over every language lingua-go ships, so the
// language filter can recognize the full set of "ho sento, no parlo X"
// apology targets (§6 language_names) as well as the accepted languages.
func New() *LinguaDetector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		WithPreloadedLanguageModels().
		Build()
	return &LinguaDetector{detector: detector}
}

// Detect implements Detector.
func (d *LinguaDetector) Detect(text string) (string, bool) {
	language, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	code := strings.ToLower(language.IsoCode639_1().String())
	return code, true
}
