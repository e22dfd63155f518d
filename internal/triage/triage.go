// Package triage flags model responses that mention a critical condition.
package triage

import "strings"

var defaultKeywords = []string{
	"stroke",
	"heart attack",
	"severe breathing difficulty",
	"unconscious",
	"chest pain",
}

const (
	// Banner is shown on screen and in the report when a response is critical.
	Banner = "CRITICAL CONDITION DETECTED! SEEK IMMEDIATE MEDICAL HELP!"
	// Advice is the on-screen warning that accompanies the banner.
	Advice = "Your symptoms may indicate a critical condition. Seek IMMEDIATE medical attention!"
)

// DefaultKeywords returns a copy of the built-in critical keyword list.
func DefaultKeywords() []string {
	out := make([]string, len(defaultKeywords))
	copy(out, defaultKeywords)
	return out
}

// Result is the outcome of scanning one response.
type Result struct {
	Critical bool     `json:"critical"`
	Matched  []string `json:"matched_keywords,omitempty"`
}

// Detector matches lower-cased keywords as plain substrings of the response. Negated
// phrases such as "no chest pain" still match.
type Detector struct {
	keywords []string
}

// NewDetector builds a detector; an empty list falls back to DefaultKeywords.
func NewDetector(keywords []string) *Detector {
	normalized := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" && !containsString(normalized, k) {
			normalized = append(normalized, k)
		}
	}
	if len(normalized) == 0 {
		normalized = DefaultKeywords()
	}
	return &Detector{keywords: normalized}
}

// Keywords returns the active keyword list.
func (d *Detector) Keywords() []string {
	out := make([]string, len(d.keywords))
	copy(out, d.keywords)
	return out
}

// Detect reports every keyword found in text.
func (d *Detector) Detect(text string) Result {
	lowered := strings.ToLower(text)
	var matched []string
	for _, k := range d.keywords {
		if strings.Contains(lowered, k) {
			matched = append(matched, k)
		}
	}
	return Result{Critical: len(matched) > 0, Matched: matched}
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
