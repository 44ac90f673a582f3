package lexical

import (
	"regexp"
	"strings"
)

// Detection represents one blocklisted term found in a text. Positions index
// into the normalized form of the text.
type Detection struct {
	Term     string
	StartPos int
	EndPos   int
}

// separatorPattern matches the filler characters writers insert to dodge a
// plain substring check ("시.발", "시 발").
var separatorPattern = regexp.MustCompile(`[\s.\-_*~]+`)

// Screener performs the deterministic lexical check applied before any model
// call. Matching is case-insensitive and ignores separator characters.
type Screener struct {
	terms []string
}

// NewScreener creates a screener over the given term list. Empty terms are
// dropped; terms are normalized the same way input text is.
func NewScreener(terms []string) *Screener {
	normalized := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = normalize(t); t != "" {
			normalized = append(normalized, t)
		}
	}
	return &Screener{terms: normalized}
}

// Screen returns the first blocklisted term found in the text.
func (s *Screener) Screen(text string) (term string, found bool) {
	n := normalize(text)
	for _, t := range s.terms {
		if strings.Contains(n, t) {
			return t, true
		}
	}
	return "", false
}

// Detect returns all blocklisted terms found in the text.
func (s *Screener) Detect(text string) []Detection {
	n := normalize(text)
	var detections []Detection
	for _, t := range s.terms {
		from := 0
		for {
			idx := strings.Index(n[from:], t)
			if idx < 0 {
				break
			}
			start := from + idx
			detections = append(detections, Detection{
				Term:     t,
				StartPos: start,
				EndPos:   start + len(t),
			})
			from = start + len(t)
		}
	}
	return detections
}

// normalize lowercases the text and strips separator characters so that
// spaced-out or punctuated spellings still match.
func normalize(s string) string {
	return separatorPattern.ReplaceAllString(strings.ToLower(s), "")
}
