package models

import (
	"fmt"
	"strings"
)

// Field names an employee column by its API (JSON) name.
type Field string

const (
	FieldID         Field = "id"
	FieldFirstName  Field = "firstName"
	FieldLastName   Field = "lastName"
	FieldEmail      Field = "email"
	FieldPhone      Field = "phone"
	FieldDepartment Field = "department"
	FieldPosition   Field = "position"
	FieldHireDate   Field = "hireDate"
	FieldSalary     Field = "salary"
	FieldStatus     Field = "status"
)

// Fields lists every column in display order.
func Fields() []Field {
	return []Field{
		FieldID, FieldFirstName, FieldLastName, FieldEmail, FieldPhone,
		FieldDepartment, FieldPosition, FieldHireDate, FieldSalary, FieldStatus,
	}
}

// SearchableFields are the text columns used for fuzzy searching.
func SearchableFields() []Field {
	return []Field{FieldFirstName, FieldLastName, FieldEmail, FieldDepartment, FieldPosition, FieldPhone}
}

// ParseField accepts a JSON column name, case-insensitively.
func ParseField(name string) (Field, error) {
	for _, f := range Fields() {
		if strings.EqualFold(string(f), name) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown field %q", name)
}
