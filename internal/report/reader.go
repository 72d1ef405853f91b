package report

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/xuri/excelize/v2"
)

var ErrMissingColumns = errors.New("workbook has no sheet with the employee columns")

// requiredHeaders must all be present for a sheet to be read.
var requiredHeaders = []string{"First Name", "Last Name", "Email"}

// Problem is a cell that could not be parsed. The row is still returned
// with the offending field left empty.
type Problem struct {
	Sheet   string
	Row     int // 1-based spreadsheet row
	Column  string
	Message string
}

func (p Problem) String() string {
	return fmt.Sprintf("%s!%d %s: %s", p.Sheet, p.Row, p.Column, p.Message)
}

// Parsed is the content of an uploaded workbook.
type Parsed struct {
	Employees []models.Employee
	Problems  []Problem
}

// ReadWorkbook parses every sheet whose first row carries the Headers layout.
// Header matching is case-insensitive and column order is free. Empty rows
// are skipped. Hire dates may be "2006-01-02" text or Excel date serials.
func ReadWorkbook(r io.Reader) (Parsed, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return Parsed{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer file.Close()

	var (
		parsed Parsed
		found  bool
	)
	for _, sheet := range file.GetSheetList() {
		rows, err := file.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return Parsed{}, fmt.Errorf("failed to read sheet '%s': %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}

		columns, ok := mapColumns(rows[0])
		if !ok {
			continue
		}
		found = true

		for i, cells := range rows[1:] {
			if isBlank(cells) {
				continue
			}
			employee, problems := parseRow(sheet, i+2, cells, columns) //nolint:mnd // header row offset
			parsed.Employees = append(parsed.Employees, employee)
			parsed.Problems = append(parsed.Problems, problems...)
		}
	}

	if !found {
		return Parsed{}, ErrMissingColumns
	}
	if len(parsed.Employees) == 0 {
		return Parsed{}, ErrNoEmployees
	}
	return parsed, nil
}

// mapColumns maps each known header to its column index.
func mapColumns(header []string) (map[string]int, bool) {
	columns := make(map[string]int, len(Headers))
	for i, cell := range header {
		for _, known := range Headers {
			if strings.EqualFold(strings.TrimSpace(cell), known) {
				columns[known] = i
			}
		}
	}

	for _, required := range requiredHeaders {
		if _, ok := columns[required]; !ok {
			return nil, false
		}
	}
	return columns, true
}

func parseRow(sheet string, rowNum int, cells []string, columns map[string]int) (models.Employee, []Problem) {
	get := func(header string) string {
		i, ok := columns[header]
		if !ok || i >= len(cells) {
			return ""
		}
		return strings.TrimSpace(cells[i])
	}

	var problems []Problem
	problem := func(column, msg string) {
		problems = append(problems, Problem{Sheet: sheet, Row: rowNum, Column: column, Message: msg})
	}

	employee := models.Employee{
		FirstName:  get("First Name"),
		LastName:   get("Last Name"),
		Email:      get("Email"),
		Phone:      get("Phone"),
		Department: models.Department(strings.ToLower(get("Department"))),
		Position:   get("Position"),
		Status:     models.Status(strings.ReplaceAll(strings.ToLower(get("Status")), " ", "_")),
	}

	if raw := get("Hire Date"); raw != "" {
		date, err := parseDate(raw)
		if err != nil {
			problem("Hire Date", err.Error())
		} else {
			employee.HireDate = &date
		}
	}

	if raw := get("Salary"); raw != "" {
		amount, err := models.ParseAmount(raw)
		if err != nil {
			problem("Salary", err.Error())
		} else {
			employee.Salary = &amount
		}
	}

	return employee, problems
}

func parseDate(raw string) (models.Date, error) {
	date, err := models.ParseDate(raw)
	if err == nil {
		return date, nil
	}

	serial, serialErr := strconv.ParseFloat(raw, 64)
	if serialErr != nil {
		return models.Date{}, err
	}
	t, serialErr := excelize.ExcelDateToTime(serial, false)
	if serialErr != nil {
		return models.Date{}, fmt.Errorf("invalid date serial %q: %w", raw, serialErr)
	}
	return models.NewDate(t.Year(), t.Month(), t.Day()), nil
}

func isBlank(cells []string) bool {
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
