package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitleSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		min  float64
		max  float64
	}{
		{
			name: "identical titles",
			a:    "Login fails on Safari",
			b:    "Login fails on Safari",
			min:  1.0,
			max:  1.0,
		},
		{
			name: "reopened duplicate with inflection changes",
			a:    "Login fails on Safari",
			b:    "Login failure Safari",
			min:  0.6,
			max:  1.0,
		},
		{
			name: "unrelated titles",
			a:    "Export PDF crashes",
			b:    "Login failure Safari",
			min:  0.0,
			max:  0.0,
		},
		{
			name: "partial overlap stays below threshold",
			a:    "Dashboard chart rendering slow",
			b:    "Dashboard export button missing",
			min:  0.1,
			max:  0.3,
		},
		{
			name: "punctuation and case ignored",
			a:    "Crash: NULL pointer in exporter!",
			b:    "crash null pointer in exporter",
			min:  1.0,
			max:  1.0,
		},
		{
			name: "both empty",
			a:    "",
			b:    "",
			min:  0.0,
			max:  0.0,
		},
		{
			name: "one empty",
			a:    "Login fails",
			b:    "",
			min:  0.0,
			max:  0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TitleSimilarity(tt.a, tt.b)
			assert.GreaterOrEqual(t, got, tt.min)
			assert.LessOrEqual(t, got, tt.max)
		})
	}
}

func TestTitleSimilaritySymmetric(t *testing.T) {
	a, b := "Login fails on Safari", "Safari login broken again"
	assert.Equal(t, TitleSimilarity(a, b), TitleSimilarity(b, a))
}

func TestTokenizeStemsAndFilters(t *testing.T) {
	tokens := Tokenize("The exporter crashes when saving")
	assert.Contains(t, tokens, "exporter")
	assert.Contains(t, tokens, "crash")
	assert.Contains(t, tokens, "sav")
	assert.NotContains(t, tokens, "the")
	assert.NotContains(t, tokens, "when")
}
