package platenormalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePatternMatch(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"quoted lowercase with spaces", `"b 1234 abc"`, "B1234ABC"},
		{"plain plate", "B1234ABC", "B1234ABC"},
		{"single-quoted", "'D5678EFG'", "D5678EFG"},
		{"surrounded by prose", "The plate reads AB 123 CD today", "AB123CD"},
		{"two-letter prefix", "AB1234XYZ", "AB1234XYZ"},
		{"minimal segments", "A1B", "A1B"},
		{"leading whitespace", "   b1234abc  ", "B1234ABC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeDetailed(tt.raw)
			assert.Equal(t, PatternMatched, got.Kind)
			assert.Equal(t, tt.want, got.Value)
			assert.Equal(t, tt.want, Normalize(tt.raw))
		})
	}
}

func TestNormalizeFirstMatchWins(t *testing.T) {
	got := NormalizeDetailed("B1234ABC or maybe D5678EFG")
	assert.Equal(t, PatternMatched, got.Kind)
	assert.Equal(t, "B1234ABC", got.Value)
}

func TestNormalizeFallbackFilter(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"no digits", "no plate here!!", "NOPLATEHERE"},
		{"digits only", "123456", "123456"},
		{"punctuation mixed", "12-34!", "1234"},
		{"empty input", "", ""},
		{"all symbols", "!!!???...", ""},
		{"only quotes and spaces", `  "" '' `, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeDetailed(tt.raw)
			assert.Equal(t, FallbackFiltered, got.Kind)
			assert.Equal(t, tt.want, got.Value)
		})
	}
}

func TestNormalizeNeverPanicsOnOddInput(t *testing.T) {
	for _, raw := range []string{"\x00", "汉字plate", "B\t1234\nABC", `"'"'"'`} {
		assert.NotPanics(t, func() { Normalize(raw) })
	}
}
