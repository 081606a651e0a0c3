// Package langdetect implements the language detector over
// github.com/pemistahl/lingua-go, a bundled n-gram statistical model.
// Quality improvements to the model itself are out of scope here.
package langdetect

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// Unknown is returned when no language clears the confidence threshold.
const Unknown = "unknown"

// Detector wraps a lingua-go detector with saga's confidence-threshold and
// allowlist semantics.
type Detector struct {
	inner               lingua.LanguageDetector
	confidenceThreshold float64
}

// New builds a Detector over all languages lingua-go bundles a model for.
func New(confidenceThreshold float64) *Detector {
	if confidenceThreshold <= 0 {
		confidenceThreshold = 0.2
	}
	inner := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		WithPreloadedLanguageModels().
		Build()
	return &Detector{inner: inner, confidenceThreshold: confidenceThreshold}
}

// Detect returns the ISO 639-1 codes of languages detected in text with
// confidence at or above the configured threshold, or ["unknown"] if none
// clear it.
func (d *Detector) Detect(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{Unknown}
	}

	values := d.inner.ComputeLanguageConfidenceValues(text)
	var codes []string
	for _, v := range values {
		if v.Value() < d.confidenceThreshold {
			continue
		}
		codes = append(codes, strings.ToLower(v.Language().IsoCode639_1().String()))
	}
	if len(codes) == 0 {
		return []string{Unknown}
	}
	return codes
}

// Allowlisted gates a document's detected languages against a configured
// accepted-language list. An empty allowlist accepts everything.
// "unknown" is accepted only if explicitly present in the allowlist.
func Allowlisted(detected []string, allowlist []string) bool {
	if len(allowlist) == 0 {
		return true
	}
	allowed := make(map[string]struct{}, len(allowlist))
	for _, l := range allowlist {
		allowed[strings.ToLower(l)] = struct{}{}
	}
	for _, code := range detected {
		if _, ok := allowed[code]; ok {
			return true
		}
	}
	return false
}
