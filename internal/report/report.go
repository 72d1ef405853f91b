package report

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/xuri/excelize/v2"
)

var ErrNoEmployees = errors.New("failed to generate workbook, 0 employees were provided")

// UnassignedSheet collects employees without a known department.
const UnassignedSheet = "Unassigned"

// Headers is the column layout of generated workbooks, also expected by ReadWorkbook.
var Headers = []string{
	"First Name", "Last Name", "Email", "Phone", "Department", "Position", "Hire Date", "Salary", "Status",
}

// Generator holds the state for the workbook generation process.
type Generator struct {
	file *excelize.File
}

// NewGenerator creates a new workbook generator.
func NewGenerator() *Generator {
	return &Generator{
		file: excelize.NewFile(),
	}
}

// GenerateWorkbook writes employees into an xlsx workbook with one sheet per
// department, sheets ordered by name. Each sheet has a styled header row and
// a table over the data.
func GenerateWorkbook(rows []models.Employee) (*bytes.Buffer, error) {
	var err error

	if len(rows) == 0 {
		return nil, ErrNoEmployees
	}

	rowsBySheet := make(map[string][]models.Employee)
	for _, row := range rows {
		name := sheetName(row.Department)
		rowsBySheet[name] = append(rowsBySheet[name], row)
	}

	gen := NewGenerator()
	defer gen.file.Close()

	if err = gen.addSheets(rowsBySheet); err != nil {
		return nil, fmt.Errorf("failed to add sheets: %w", err)
	}

	// delete default sheet
	if sheetIndex, _ := gen.file.GetSheetIndex("Sheet1"); sheetIndex != -1 {
		if err = gen.file.DeleteSheet("Sheet1"); err != nil {
			return nil, fmt.Errorf("failed to delete default sheet 'Sheet1': %w", err)
		}
	}

	// setup first sheet as active
	gen.file.SetActiveSheet(0)

	buffer, err := gen.file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write data from saved file: %w", err)
	}

	return buffer, nil
}

// addSheets creates one sheet per key of rowsBySheet and fills it.
func (g *Generator) addSheets(rowsBySheet map[string][]models.Employee) error {
	var err error
	headerIndex := 2

	names := make([]string, 0, len(rowsBySheet))
	for name := range rowsBySheet {
		names = append(names, name)
	}
	slices.Sort(names)

	for i, name := range names {
		employees := rowsBySheet[name]

		if _, err = g.file.NewSheet(name); err != nil {
			return fmt.Errorf("failed to generate new sheet '%s': %w", name, err)
		}

		if err = g.setupSheet(name, i, len(employees)); err != nil {
			return fmt.Errorf("failed to setup sheet '%s': %w", name, err)
		}

		for j, employee := range employees {
			if err = g.addRow(name, j+headerIndex, employee); err != nil { // j+2, the first row is the header
				return fmt.Errorf("failed to add row '%d': %w", j+headerIndex, err)
			}
		}
	}
	return nil
}

// setupSheet writes the styled header row, column widths and a table covering rowCount rows.
func (g *Generator) setupSheet(name string, index, rowCount int) error {
	var err error

	headerStyle, err := g.file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Vertical: "center", Horizontal: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create new style: %w", err)
	}

	rowHeight := 20
	lastCol, _ := excelize.ColumnNumberToName(len(Headers))
	if err = g.file.SetRowHeight(name, 1, float64(rowHeight)); err != nil {
		return fmt.Errorf("failed to set row height for headers: %w", err)
	}
	if err = g.file.SetSheetRow(name, "A1", &Headers); err != nil {
		return fmt.Errorf("failed to set sheet row for headers: %w", err)
	}
	if err = g.file.SetCellStyle(name, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to set cell style for headers: %w", err)
	}

	widths := map[string]float64{
		"A": 16, "B": 18, "C": 30, "D": 18, "E": 24, "F": 28, "G": 14, "H": 14, "I": 12, //nolint:mnd // column widths
	}
	for col, width := range widths {
		if err = g.file.SetColWidth(name, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	// Table names must be unique in the workbook and may not contain spaces.
	if err = g.file.AddTable(name, &excelize.Table{
		Range:     fmt.Sprintf("A1:%s%d", lastCol, rowCount+1),
		Name:      fmt.Sprintf("employees_%d", index+1),
		StyleName: "TableStyleMedium9",
	}); err != nil {
		return fmt.Errorf("failed to add table: %w", err)
	}

	return nil
}

// addRow writes one employee at rowNum. Codes are written raw so the sheet can be imported back.
func (g *Generator) addRow(name string, rowNum int, e models.Employee) error {
	var salary any
	if e.Salary != nil {
		salary = float64(*e.Salary)
	}
	var hireDate string
	if e.HireDate != nil {
		hireDate = e.HireDate.String()
	}

	rowData := []any{
		e.FirstName,
		e.LastName,
		e.Email,
		e.Phone,
		string(e.Department),
		e.Position,
		hireDate,
		salary,
		string(e.Status),
	}
	cell, _ := excelize.CoordinatesToCellName(1, rowNum)

	if err := g.file.SetSheetRow(name, cell, &rowData); err != nil {
		return fmt.Errorf("failed to set sheet row: %w", err)
	}

	return nil
}

// sheetName is the department label, or UnassignedSheet for empty and unknown codes.
func sheetName(d models.Department) string {
	if !d.Valid() {
		return UnassignedSheet
	}
	return truncateSheetName(d.Label())
}

// truncateSheetName truncates the given sheet name to a maximum of 31 runes.
func truncateSheetName(name string) string {
	if utf8.RuneCountInString(name) > 31 {
		runes := []rune(name)
		return string(runes[:31])
	}
	return strings.TrimSpace(name)
}
