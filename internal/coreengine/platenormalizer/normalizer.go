package platenormalizer

import (
	"regexp"
	"strings"
	"unicode"
)

// Kind identifies which branch of the normalizer produced the candidate.
type Kind string

const (
	// PatternMatched means the plate pattern was found in the cleaned text.
	PatternMatched Kind = "PATTERN_MATCHED"
	// FallbackFiltered means no plate pattern matched and the candidate is the
	// alphanumeric-only remainder of the cleaned text.
	FallbackFiltered Kind = "FALLBACK_FILTERED"
)

// Normalization is the detailed outcome of normalizing a raw model response.
// Keeping the branch explicit makes the pattern-vs-fallback decision auditable;
// most callers collapse it to a plain string via Normalize.
type Normalization struct {
	Kind  Kind
	Value string
}

// platePattern matches plate numbers like B1234ABC, with an optional single
// whitespace character between the segments (e.g., "B 1234 ABC").
// Applied to upper-cased text only.
var platePattern = regexp.MustCompile(`[A-Z]{1,2}\s?[0-9]{1,4}\s?[A-Z]{1,3}`)

var quoteStripper = strings.NewReplacer(`"`, "", `'`, "")

// NormalizeDetailed cleans a raw model response into a canonical plate
// candidate. It strips quote characters and surrounding whitespace, upper-cases
// the remainder, and takes the first plate-pattern match with its internal
// whitespace removed. If no pattern matches, it falls back to keeping only the
// alphanumeric characters of the cleaned text, in order. It never fails; an
// all-symbol input yields an empty candidate.
func NormalizeDetailed(raw string) Normalization {
	cleaned := strings.ToUpper(strings.TrimSpace(quoteStripper.Replace(raw)))

	if match := platePattern.FindString(cleaned); match != "" {
		return Normalization{Kind: PatternMatched, Value: stripWhitespace(match)}
	}

	var b strings.Builder
	for _, r := range cleaned {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return Normalization{Kind: FallbackFiltered, Value: b.String()}
}

// Normalize is the boundary form of NormalizeDetailed: just the candidate string.
func Normalize(raw string) string {
	return NormalizeDetailed(raw).Value
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
