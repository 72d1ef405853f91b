package models

import "strings"

// Status is the employment status of an employee.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusOnLeave  Status = "on_leave"
)

// Statuses lists every valid status.
func Statuses() []Status {
	return []Status{StatusActive, StatusInactive, StatusOnLeave}
}

// Valid reports whether s is one of the enumerated statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusOnLeave:
		return true
	default:
		return false
	}
}

// Label renders the status for humans, e.g. "ON LEAVE".
func (s Status) Label() string {
	return strings.ToUpper(strings.ReplaceAll(string(s), "_", " "))
}

// Department is a department code as expected by the server.
// Codes outside the enumeration are tolerated and displayed verbatim.
type Department string

const (
	DeptAccounting      Department = "accounting"
	DeptAdministration  Department = "administration"
	DeptCustomerSupport Department = "customer_support"
	DeptDesign          Department = "design"
	DeptEngineering     Department = "engineering"
	DeptFinance         Department = "finance"
	DeptHR              Department = "hr"
	DeptIT              Department = "it"
	DeptInformationTech Department = "information_technology"
	DeptLegal           Department = "legal"
	DeptMarketing       Department = "marketing"
	DeptOperations      Department = "operations"
	DeptSales           Department = "sales"
	DeptSecurity        Department = "security"
)

var departmentLabels = map[Department]string{
	DeptAccounting:      "Accounting",
	DeptAdministration:  "Administration",
	DeptCustomerSupport: "Customer Support",
	DeptDesign:          "Design",
	DeptEngineering:     "Engineering",
	DeptFinance:         "Finance",
	DeptHR:              "Human Resources",
	DeptIT:              "Information Technology",
	DeptInformationTech: "Information Technology",
	DeptLegal:           "Legal",
	DeptMarketing:       "Marketing",
	DeptOperations:      "Operations",
	DeptSales:           "Sales",
	DeptSecurity:        "Security",
}

// Departments lists the enumerated department codes in display order.
func Departments() []Department {
	return []Department{
		DeptAccounting, DeptAdministration, DeptCustomerSupport, DeptDesign, DeptEngineering,
		DeptFinance, DeptHR, DeptIT, DeptInformationTech, DeptLegal, DeptMarketing,
		DeptOperations, DeptSales, DeptSecurity,
	}
}

// Valid reports whether d is an enumerated department code.
func (d Department) Valid() bool {
	_, ok := departmentLabels[d]
	return ok
}

// Label returns the human name of the department, or the raw code when unknown.
func (d Department) Label() string {
	if label, ok := departmentLabels[d]; ok {
		return label
	}
	return string(d)
}
