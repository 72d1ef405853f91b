package fuzzy_test

import (
	"testing"

	"github.com/UnknownOlympus/hestia/internal/fuzzy"
	"github.com/stretchr/testify/assert"
)

type person map[string]string

func (p person) Text(field string) (string, bool) {
	v, ok := p[field]
	return v, ok && v != ""
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ann lee", fuzzy.Normalize("  Ann \t  LEE \n"))
	assert.Empty(t, fuzzy.Normalize("   "))
}

func TestScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		term   string
		target string
		want   float64
	}{
		{name: "empty term", term: "", target: "anything", want: 0},
		{name: "empty target", term: "anything", target: "", want: 0},
		{name: "exact ignoring case and spaces", term: "Software  Engineer", target: " software engineer ", want: 1},
		{name: "prefix", term: "eng", target: "Engineering", want: 0.9},
		{name: "substring", term: "neer", target: "engineering", want: 0.8},
		{name: "ordered subsequence", term: "jhn", target: "john", want: 0.75 * 0.6},
		{name: "similar but unordered", term: "jonh", target: "john", want: 0.5 * 0.5},
		{name: "dissimilar", term: "xyz", target: "john", want: 0},
		{name: "multibyte runes", term: "zoë", target: "Zoë", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, fuzzy.Score(tt.term, tt.target), 1e-9)
		})
	}
}

func TestScore_Properties(t *testing.T) {
	t.Parallel()

	targets := []string{"Ann", "customer support", "Lee-Smith", "ann@x.com", "x"}
	for _, target := range targets {
		assert.InDelta(t, 1.0, fuzzy.Score(target, target), 1e-9, target)

		if len(target) > 1 {
			prefix := target[:len(target)-1]
			assert.InDelta(t, 0.9, fuzzy.Score(prefix, target), 1e-9, target)
		}

		score := fuzzy.Score("qq", target)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}
}

func TestDistance(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 3, fuzzy.Distance("kitten", "sitting"))
	assert.Equal(t, 0, fuzzy.Distance("", ""))
	assert.Equal(t, 1, fuzzy.Distance("é", "e"))
}

func TestMatchObject(t *testing.T) {
	t.Parallel()

	rec := person{"first": "Ann", "last": "Lee", "dept": "engineering", "email": ""}
	fields := []string{"first", "last", "dept", "email"}

	assert.InDelta(t, 1.0, fuzzy.MatchObject("", rec, fields), 1e-9)
	assert.InDelta(t, 1.0, fuzzy.MatchObject("lee", rec, fields), 1e-9)
	assert.InDelta(t, 0.9, fuzzy.MatchObject("engi", rec, fields), 1e-9)
	assert.InDelta(t, 0.0, fuzzy.MatchObject("zzzzzz", rec, fields), 1e-9)
}

func TestMatchMultiWord(t *testing.T) {
	t.Parallel()

	rec := person{"first": "Ann", "last": "Lee", "dept": "engineering"}
	fields := []string{"first", "last", "dept"}

	t.Run("empty term matches", func(t *testing.T) {
		t.Parallel()
		assert.InDelta(t, 1.0, fuzzy.MatchMultiWord("  ", rec, fields), 1e-9)
	})

	t.Run("single word equals object match", func(t *testing.T) {
		t.Parallel()
		for _, term := range []string{"ann", "ENG", "jhn", "zzz"} {
			assert.InDelta(t, fuzzy.MatchObject(term, rec, fields), fuzzy.MatchMultiWord(term, rec, fields), 1e-9, term)
		}
	})

	t.Run("words are averaged", func(t *testing.T) {
		t.Parallel()
		// "ann" is exact (1.0), "eng" is a prefix of engineering (0.9).
		assert.InDelta(t, 0.95, fuzzy.MatchMultiWord("ann eng", rec, fields), 1e-9)
	})
}
