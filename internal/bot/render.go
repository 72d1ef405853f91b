package bot

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/UnknownOlympus/hestia/internal/directory"
	"github.com/UnknownOlympus/hestia/internal/form"
	"github.com/UnknownOlympus/hestia/internal/i18n"
	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/UnknownOlympus/hestia/internal/report"
	"github.com/UnknownOlympus/hestia/internal/stats"
)

// maxPreviewProblems bounds the problem list of an import preview.
const maxPreviewProblems = 10

// renderer turns view state into message text in one language.
type renderer struct {
	loc  *i18n.Localizer
	lang string
}

func (r renderer) t(key string) string {
	return r.loc.Get(r.lang, key)
}

func (r renderer) td(key string, data map[string]any) string {
	return r.loc.GetWithData(r.lang, key, data)
}

// page renders the visible rows with the header, the filters and the search text.
func (r renderer) page(query directory.Query, total, pages int, rows []models.Employee) string {
	var builder strings.Builder

	builder.WriteString(r.td("list.header", map[string]any{
		"page":  query.Page,
		"pages": pages,
		"total": total,
	}))
	builder.WriteString("\n")
	builder.WriteString(r.td("list.filters", map[string]any{
		"department": r.filterLabel(query.Department, func(v string) string { return models.Department(v).Label() }),
		"status":     r.filterLabel(query.Status, func(v string) string { return models.Status(v).Label() }),
		"sort":       r.sortLabel(query.Sort),
	}))
	if query.Search != "" {
		builder.WriteString("\n")
		builder.WriteString(r.td("list.search", map[string]any{"search": query.Search}))
	}
	builder.WriteString("\n\n")

	if len(rows) == 0 {
		builder.WriteString(r.t("list.empty"))
		return builder.String()
	}

	for i, row := range rows {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(summaryLine(row))
	}
	return builder.String()
}

func (r renderer) filterLabel(value string, label func(string) string) string {
	if value == "" || value == directory.FilterAll {
		return r.t("list.all")
	}
	return label(value)
}

func (r renderer) sortLabel(s directory.Sort) string {
	if s.Key == "" {
		return r.t("list.unsorted")
	}
	if s.Desc {
		return string(s.Key) + " ↓"
	}
	return string(s.Key) + " ↑"
}

// summaryLine is the one or two line listing of an employee.
func summaryLine(e models.Employee) string {
	parts := []string{fmt.Sprintf("#%d %s", e.ID, e.FullName())}
	if e.Department != "" {
		parts = append(parts, e.Department.Label())
	}
	if e.Position != "" {
		parts = append(parts, e.Position)
	}
	if e.Status != "" {
		parts = append(parts, e.Status.Label())
	}
	line := strings.Join(parts, " · ")

	var contact []string
	if e.Email != "" {
		contact = append(contact, e.Email)
	}
	if e.Phone != "" {
		contact = append(contact, models.FormatPhone(e.Phone))
	}
	if len(contact) > 0 {
		line += "\n   " + strings.Join(contact, " · ")
	}
	return line
}

// ranked renders fuzzy search results, best first.
func (r renderer) ranked(term string, results []directory.Ranked) string {
	if len(results) == 0 {
		return r.td("find.empty", map[string]any{"term": term})
	}

	var builder strings.Builder
	builder.WriteString(r.td("find.header", map[string]any{"term": term}))
	for _, result := range results {
		builder.WriteString("\n")
		builder.WriteString(summaryLine(result.Employee))
	}
	return builder.String()
}

// employee renders every field of one record with display formatting.
func (r renderer) employee(e models.Employee) string {
	lines := []string{fmt.Sprintf("#%d %s", e.ID, e.FullName())}
	add := func(field models.Field, value string) {
		if value != "" {
			lines = append(lines, string(field)+": "+value)
		}
	}

	add(models.FieldEmail, e.Email)
	add(models.FieldPhone, models.FormatPhone(e.Phone))
	if e.Department != "" {
		add(models.FieldDepartment, e.Department.Label())
	}
	add(models.FieldPosition, e.Position)
	add(models.FieldHireDate, models.FormatDate(e.HireDate))
	add(models.FieldSalary, models.FormatCurrency(e.Salary))
	if e.Status != "" {
		add(models.FieldStatus, e.Status.Label())
	}
	return strings.Join(lines, "\n")
}

// draft renders the open form with raw values, so lines can be copied back
// as input, followed by the field errors of the last submit.
func (r renderer) draft(mode form.Mode, draft models.Employee, errs map[string]string) string {
	var builder strings.Builder

	if mode == form.ModeEdit {
		builder.WriteString(r.td("form.edit.title", map[string]any{"id": draft.ID}))
	} else {
		builder.WriteString(r.t("form.create.title"))
	}
	builder.WriteString("\n\n")

	for _, field := range models.Fields() {
		if field == models.FieldID {
			continue
		}
		value, _ := draft.Text(field)
		builder.WriteString(string(field) + ": " + value + "\n")
	}

	if len(errs) > 0 {
		builder.WriteString("\n")
		builder.WriteString(r.t("form.errors"))
		keys := make([]string, 0, len(errs))
		for key := range errs {
			keys = append(keys, key)
		}
		slices.Sort(keys)
		for _, key := range keys {
			builder.WriteString("\n • " + key + ": " + errs[key])
		}
		builder.WriteString("\n")
	}

	builder.WriteString("\n")
	builder.WriteString(r.t("form.hint"))
	return builder.String()
}

// stats renders the dashboard.
func (r renderer) stats(summary stats.Summary) string {
	var builder strings.Builder

	builder.WriteString(r.td("stats.header", map[string]any{"total": summary.Total}))
	if summary.Total == 0 {
		return builder.String()
	}

	writeBuckets := func(titleKey string, buckets []stats.Bucket) {
		builder.WriteString("\n\n")
		builder.WriteString(r.t(titleKey))
		for _, bucket := range buckets {
			builder.WriteString(fmt.Sprintf("\n • %s: %d (%s%%)",
				bucket.Label, bucket.Count, strconv.FormatFloat(bucket.Percent, 'f', -1, 64)))
		}
	}
	writeBuckets("stats.departments", summary.Departments)
	writeBuckets("stats.statuses", summary.Statuses)

	return builder.String()
}

// preview renders what an uploaded workbook would import.
func (r renderer) preview(filename string, parsed report.Parsed) string {
	var builder strings.Builder

	builder.WriteString(r.td("import.preview", map[string]any{
		"file":     filename,
		"count":    len(parsed.Employees),
		"problems": len(parsed.Problems),
	}))

	if len(parsed.Problems) > 0 {
		builder.WriteString("\n\n")
		builder.WriteString(r.t("import.problems"))
		for i, problem := range parsed.Problems {
			if i == maxPreviewProblems {
				builder.WriteString("\n")
				builder.WriteString(r.td("import.more", map[string]any{"count": len(parsed.Problems) - i}))
				break
			}
			builder.WriteString("\n • " + problem.String())
		}
	}
	return builder.String()
}

// choices joins valid values for an error message.
func choices[T ~string](values []T, extra ...string) string {
	out := make([]string, 0, len(values)+len(extra))
	for _, v := range values {
		out = append(out, string(v))
	}
	out = append(out, extra...)
	return strings.Join(out, ", ")
}
