package models

import (
	"strconv"
	"strings"
	"time"
)

// Employee represents one staff member as served by the employee API.
// JSON field names follow the API's camelCase convention.
type Employee struct {
	ID         int        `json:"id,omitempty"`        // Server-assigned unique identifier
	FirstName  string     `json:"firstName"`           // First name of the employee
	LastName   string     `json:"lastName"`            // Last name of the employee
	Email      string     `json:"email"`               // Email address, optional
	Phone      string     `json:"phone"`               // Phone number, free-form until formatted
	Department Department `json:"department"`          // Department code
	Position   string     `json:"position"`            // Job position
	HireDate   *Date      `json:"hireDate"`            // Hire date, nullable
	Salary     *Amount    `json:"salary"`              // Annual salary, nullable
	Status     Status     `json:"status"`              // Employment status
	CreatedAt  *time.Time `json:"createdAt,omitempty"` // Read-only creation timestamp
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"` // Read-only update timestamp
}

// FullName joins first and last name.
func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// Clone returns a detached copy whose pointer fields do not alias the original.
func (e Employee) Clone() Employee {
	out := e
	if e.HireDate != nil {
		d := *e.HireDate
		out.HireDate = &d
	}
	if e.Salary != nil {
		s := *e.Salary
		out.Salary = &s
	}
	if e.CreatedAt != nil {
		t := *e.CreatedAt
		out.CreatedAt = &t
	}
	if e.UpdatedAt != nil {
		t := *e.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}

// Lookup returns the typed value of a field: string, float64 or time.Time.
// ok is false when the value is absent (nil salary, missing hire date,
// empty optional email or phone).
func (e Employee) Lookup(field Field) (any, bool) {
	switch field {
	case FieldID:
		return float64(e.ID), true
	case FieldFirstName:
		return e.FirstName, true
	case FieldLastName:
		return e.LastName, true
	case FieldEmail:
		return e.Email, e.Email != ""
	case FieldPhone:
		return e.Phone, e.Phone != ""
	case FieldDepartment:
		return string(e.Department), true
	case FieldPosition:
		return e.Position, true
	case FieldHireDate:
		if e.HireDate == nil || e.HireDate.IsZero() {
			return nil, false
		}
		return e.HireDate.Time, true
	case FieldSalary:
		if e.Salary == nil {
			return nil, false
		}
		return float64(*e.Salary), true
	case FieldStatus:
		return string(e.Status), true
	default:
		return nil, false
	}
}

// Text returns the stringified value of a field for text matching.
func (e Employee) Text(field Field) (string, bool) {
	value, ok := e.Lookup(field)
	if !ok {
		return "", false
	}

	switch v := value.(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case time.Time:
		return v.Format(DateLayout), true
	default:
		return "", false
	}
}
