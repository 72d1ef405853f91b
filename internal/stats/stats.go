// Package stats computes the dashboard aggregates: headcount per department and per status.
package stats

import (
	"cmp"
	"math"
	"slices"

	"github.com/UnknownOlympus/hestia/internal/models"
)

// Bucket is one slice of a breakdown.
type Bucket struct {
	Key     string  // Department or status code
	Label   string  // Human name
	Count   int     // Number of employees
	Percent float64 // Share of the total, rounded to one decimal
}

// Summary is the dashboard data.
type Summary struct {
	Total       int
	Departments []Bucket
	Statuses    []Bucket
}

// Compute aggregates rows. Buckets are sorted by count descending, then label.
// Employees without a department are counted under an empty key.
func Compute(rows []models.Employee) Summary {
	departments := make(map[string]int)
	statuses := make(map[string]int)
	for _, row := range rows {
		departments[string(row.Department)]++
		statuses[string(row.Status)]++
	}

	return Summary{
		Total: len(rows),
		Departments: buckets(departments, len(rows), func(key string) string {
			if key == "" {
				return "Unassigned"
			}
			return models.Department(key).Label()
		}),
		Statuses: buckets(statuses, len(rows), func(key string) string {
			if key == "" {
				return "Unknown"
			}
			return models.Status(key).Label()
		}),
	}
}

func buckets(counts map[string]int, total int, label func(string) string) []Bucket {
	out := make([]Bucket, 0, len(counts))
	for key, count := range counts {
		out = append(out, Bucket{
			Key:     key,
			Label:   label(key),
			Count:   count,
			Percent: percent(count, total),
		})
	}

	slices.SortFunc(out, func(a, b Bucket) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Label, b.Label); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return out
}

func percent(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)*1000/float64(total)) / 10 //nolint:mnd // one decimal
}
