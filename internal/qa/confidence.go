package qa

import (
	"math"
	"regexp"
	"strings"
)

var wordRe = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)

// Confidence scores how well an answer is grounded in its context section,
// as the Ochiai coefficient of the two token sets: |A∩B| / sqrt(|A||B|).
// A generate-style model returns no span score, so this deterministic
// lexical-overlap measure stands in for one. An empty answer, the fallback
// text, or an answer sharing nothing with the context scores 0.
func Confidence(answer, context string) float64 {
	if strings.TrimSpace(answer) == "" || answer == FallbackText {
		return 0
	}

	aset := tokenSet(answer)
	cset := tokenSet(context)
	if len(aset) == 0 || len(cset) == 0 {
		return 0
	}

	inter := 0
	for t := range aset {
		if _, ok := cset[t]; ok {
			inter++
		}
	}

	return float64(inter) / (math.Sqrt(float64(len(aset))) * math.Sqrt(float64(len(cset))))
}

func tokenSet(s string) map[string]struct{} {
	tokens := wordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}
