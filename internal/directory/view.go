package directory

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/UnknownOlympus/hestia/internal/fuzzy"
	"github.com/UnknownOlympus/hestia/internal/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Derive computes the displayed rows from the current page's rows and the
// query: filter by search text, department and status, then a stable sort.
// rows is not modified.
func Derive(rows []models.Employee, query Query) []models.Employee {
	out := make([]models.Employee, 0, len(rows))
	for _, row := range rows {
		if matches(row, query) {
			out = append(out, row)
		}
	}

	if query.Sort.Key != "" {
		SortRows(out, query.Sort)
	}
	return out
}

func matches(row models.Employee, query Query) bool {
	if query.Department != "" && query.Department != FilterAll && string(row.Department) != query.Department {
		return false
	}
	if query.Status != "" && query.Status != FilterAll && string(row.Status) != query.Status {
		return false
	}
	if query.Search == "" {
		return true
	}

	needle := strings.ToLower(query.Search)
	for _, field := range models.Fields() {
		if text, ok := row.Text(field); ok && strings.Contains(strings.ToLower(text), needle) {
			return true
		}
	}
	return false
}

// SortRows sorts rows in place by s.Key. Strings compare with English
// collation, numbers and dates by value. Rows missing the value go last in
// both directions; equal rows keep their order.
func SortRows(rows []models.Employee, s Sort) {
	// A Collator keeps internal buffers and must not be shared between goroutines.
	collator := collate.New(language.English)

	slices.SortStableFunc(rows, func(a, b models.Employee) int {
		aValue, aOK := a.Lookup(s.Key)
		bValue, bOK := b.Lookup(s.Key)

		switch {
		case !aOK && !bOK:
			return 0
		case !aOK:
			return 1
		case !bOK:
			return -1
		}

		result := compareValues(collator, aValue, bValue)
		if s.Desc {
			return -result
		}
		return result
	})
}

func compareValues(collator *collate.Collator, a, b any) int {
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return collator.CompareString(av, bv)
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return cmp.Compare(av, bv)
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	}
	return 0
}

// Ranked is a row with its fuzzy relevance score.
type Ranked struct {
	Employee models.Employee
	Score    float64
}

// Rank scores rows against term over fields with multi-word fuzzy matching,
// drops rows scoring zero and orders the rest by descending score. Rows with
// equal scores keep their order. An empty term keeps every row with score 1.
func Rank(rows []models.Employee, term string, fields []models.Field) []Ranked {
	if len(fields) == 0 {
		fields = models.SearchableFields()
	}

	out := make([]Ranked, 0, len(rows))
	for _, row := range rows {
		score := fuzzy.MatchMultiWord[models.Field](term, row, fields)
		if score > 0 {
			out = append(out, Ranked{Employee: row, Score: score})
		}
	}

	slices.SortStableFunc(out, func(a, b Ranked) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return out
}

// Departments returns the distinct departments of rows in first-seen order.
func Departments(rows []models.Employee) []models.Department {
	seen := make(map[models.Department]struct{}, len(rows))
	out := make([]models.Department, 0)
	for _, row := range rows {
		if _, ok := seen[row.Department]; ok {
			continue
		}
		seen[row.Department] = struct{}{}
		out = append(out, row.Department)
	}
	return out
}
