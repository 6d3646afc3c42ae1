// Package textnorm provides the text primitives the similarity engine is
// built on: normalization of free-text fields, Levenshtein-based string
// similarity, and Jaccard set similarity.
//
// All functions are pure and symmetric where the underlying measure is
// symmetric: Similarity(a, b) == Similarity(b, a) and Jaccard(a, b) ==
// Jaccard(b, a) for any inputs.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stopWords is the closed list of Spanish function words dropped during
// normalization. Registry purpose descriptions are written in Spanish.
var stopWords = map[string]bool{
	"el": true, "la": true, "los": true, "las": true,
	"de": true, "del": true, "un": true, "una": true,
	"y": true, "en": true, "por": true, "con": true,
	"para": true, "que": true, "se": true, "al": true,
	"su": true, "sus": true,
}

// minTokenLength is the shortest token kept after normalization. Shorter
// tokens are almost always noise (articles, prepositions, stray letters).
const minTokenLength = 3

// Normalize lowercases text, replaces every non-alphanumeric rune with a
// space, drops stop words and tokens shorter than three runes, and rejoins
// the rest with single spaces. Empty input yields empty output; Normalize
// never fails.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	// Fold diacritics so "promoción" and "promocion" normalize identically.
	// Transformers are stateful, so build the chain per call.
	deaccent := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(deaccent, text); err == nil {
		text = folded
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(' ')
		}
	}

	words := strings.Fields(b.String())
	kept := words[:0]
	for _, w := range words {
		if len([]rune(w)) < minTokenLength {
			continue
		}
		if stopWords[w] {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

// Tokens normalizes text and splits it into its surviving tokens.
func Tokens(text string) []string {
	normalized := Normalize(text)
	if normalized == "" {
		return nil
	}
	return strings.Fields(normalized)
}

// LevenshteinDistance computes the minimum number of single-rune insertions,
// deletions, and substitutions (each cost 1) to transform a into b.
func LevenshteinDistance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// Two-row rolling matrix; only the previous row is ever needed.
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			deletion := prev[j] + 1
			insertion := curr[j-1] + 1
			substitution := prev[j-1] + cost

			m := deletion
			if insertion < m {
				m = insertion
			}
			if substitution < m {
				m = substitution
			}
			curr[j] = m
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// Similarity is the normalized Levenshtein similarity between two strings:
// (maxLen - distance) / maxLen over rune lengths. Two empty strings score 1;
// an empty string against a non-empty one scores 0.
func Similarity(a, b string) float64 {
	la := len([]rune(a))
	lb := len([]rune(b))
	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	if maxLen == 0 {
		return 1.0
	}
	dist := LevenshteinDistance(a, b)
	return float64(maxLen-dist) / float64(maxLen)
}

// Jaccard computes |intersection| / |union| over two token sequences,
// case-normalized and deduplicated. Two empty sequences score 1 (two
// "nothing" sets are identical); exactly one empty sequence scores 0.
func Jaccard(a, b []string) float64 {
	setA := toSet(a)
	setB := toSet(b)

	if len(setA) == 0 && len(setB) == 0 {
		return 1.0
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}

	intersection := 0
	for token := range setA {
		if setB[token] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func toSet(tokens []string) map[string]bool {
	if len(tokens) == 0 {
		return nil
	}
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		set[t] = true
	}
	return set
}
