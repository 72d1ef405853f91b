// Package fuzzy scores how well a search term matches text.
//
// Scores are in [0, 1]. All functions are pure and safe for concurrent use.
package fuzzy

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Scores assigned by the match ladder.
const (
	ScoreExact      = 1.0
	ScorePrefix     = 0.9
	ScoreSubstring  = 0.8
	weightOrdered   = 0.6
	weightDistance  = 0.5
	similarityFloor = 0.3
)

// Record exposes the searchable text of a value by field.
// ok is false when the field has no value.
type Record[F any] interface {
	Text(field F) (value string, ok bool)
}

// Normalize lowercases, trims and collapses internal whitespace runs to one space.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Distance is the Levenshtein distance between two strings, counted in runes.
func Distance(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}

// Score compares a search term with a target string. Evaluation order:
// exact match, prefix, substring, ordered subsequence, edit-distance similarity.
func Score(term, target string) float64 {
	if term == "" || target == "" {
		return 0
	}

	search := Normalize(term)
	text := Normalize(target)

	switch {
	case text == search:
		return ScoreExact
	case strings.HasPrefix(text, search):
		return ScorePrefix
	case strings.Contains(text, search):
		return ScoreSubstring
	}

	similarity := similarity(search, text)
	if hasOrderedChars(search, text) {
		return max(0, similarity) * weightOrdered
	}
	if similarity > similarityFloor {
		return similarity * weightDistance
	}
	return 0
}

// MatchObject returns the best score of term across the given fields of rec.
// An empty term matches everything with score 1.
func MatchObject[F any](term string, rec Record[F], fields []F) float64 {
	if term == "" {
		return 1
	}

	best := 0.0
	for _, field := range fields {
		value, ok := rec.Text(field)
		if !ok {
			continue
		}
		best = max(best, Score(term, value))
	}
	return best
}

// MatchMultiWord splits term into words and averages the per-word best scores,
// so "ann engineering" can match a first name and a department at once.
func MatchMultiWord[F any](term string, rec Record[F], fields []F) float64 {
	words := strings.Fields(Normalize(term))

	switch len(words) {
	case 0:
		return 1
	case 1:
		return MatchObject(words[0], rec, fields)
	}

	total := 0.0
	for _, word := range words {
		total += MatchObject(word, rec, fields)
	}
	return total / float64(len(words))
}

// similarity is 1 - distance/maxLen over rune lengths.
func similarity(a, b string) float64 {
	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(Distance(a, b))/float64(maxLen)
}

// hasOrderedChars reports whether every rune of search appears in target in order.
func hasOrderedChars(search, target string) bool {
	needle := []rune(search)
	idx := 0
	for _, r := range target {
		if idx == len(needle) {
			break
		}
		if r == needle[idx] {
			idx++
		}
	}
	return idx == len(needle)
}
