package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/UnknownOlympus/hestia/internal/models"
)

var (
	ErrBadLine    = errors.New("expected field: value")
	ErrNotANumber = errors.New("not a number")
)

// fieldValue is one "field: value" line of a form message.
type fieldValue struct {
	Line  string
	Field models.Field
	Value string
}

// parseFormInput splits a message into "field: value" lines. Blank lines are
// ignored. Field names are the JSON column names, case-insensitive, and may
// be written with spaces or underscores ("hire date", "first_name").
func parseFormInput(text string) ([]fieldValue, error) {
	var out []fieldValue
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrBadLine, line)
		}

		field, err := models.ParseField(compactFieldName(name))
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrBadLine, line, err)
		}
		out = append(out, fieldValue{Line: line, Field: field, Value: strings.TrimSpace(value)})
	}

	if len(out) == 0 {
		return nil, ErrBadLine
	}
	return out, nil
}

func compactFieldName(name string) string {
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.TrimSpace(name))
}

// parseID reads a positive integer argument such as an employee id or a page number.
func parseID(arg string) (int, error) {
	arg = strings.TrimPrefix(strings.TrimSpace(arg), "#")
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q", ErrNotANumber, arg)
	}
	return n, nil
}
