package form

import (
	"errors"
	"reflect"
	"strings"

	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Validation messages, keyed in the error map by the JSON field name.
const (
	MsgFirstNameRequired  = "First name is required"
	MsgLastNameRequired   = "Last name is required"
	MsgEmailRequired      = "Email is required"
	MsgEmailInvalid       = "Invalid email"
	MsgDepartmentRequired = "Department is required"
	MsgDepartmentInvalid  = "Invalid department"
	MsgStatusRequired     = "Status is required"
	MsgStatusInvalid      = "Invalid status"
	MsgPositionRequired   = "Position is required"
	MsgPhoneInvalid       = "Phone number must be 10 digits long"
	MsgSalaryNegative     = "Salary cannot be negative"
)

const phoneDigits = 10

// draftRules is the validated shape of a draft.
type draftRules struct {
	FirstName  string         `json:"firstName"  validate:"notblank"`
	LastName   string         `json:"lastName"   validate:"notblank"`
	Email      string         `json:"email"      validate:"notblank,email"`
	Phone      string         `json:"phone"      validate:"omitempty,phone"`
	Department string         `json:"department" validate:"notblank,department"`
	Position   string         `json:"position"   validate:"notblank"`
	Status     string         `json:"status"     validate:"required,status"`
	Salary     *models.Amount `json:"salary"     validate:"omitempty,gte=0"`
}

// messages maps a failed rule of a field to its message.
var messages = map[string]map[string]string{
	string(models.FieldFirstName): {"notblank": MsgFirstNameRequired},
	string(models.FieldLastName):  {"notblank": MsgLastNameRequired},
	string(models.FieldEmail):     {"notblank": MsgEmailRequired, "email": MsgEmailInvalid},
	string(models.FieldPhone):     {"phone": MsgPhoneInvalid},
	string(models.FieldDepartment): {
		"notblank":   MsgDepartmentRequired,
		"department": MsgDepartmentInvalid,
	},
	string(models.FieldPosition): {"notblank": MsgPositionRequired},
	string(models.FieldStatus):   {"required": MsgStatusRequired, "status": MsgStatusInvalid},
	string(models.FieldSalary):   {"gte": MsgSalaryNegative},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		return name
	})

	rules := map[string]validator.Func{
		"notblank": validators.NotBlank,
		"phone": func(fl validator.FieldLevel) bool {
			return len(models.Digits(fl.Field().String())) == phoneDigits
		},
		"department": func(fl validator.FieldLevel) bool {
			return models.Department(fl.Field().String()).Valid()
		},
		"status": func(fl validator.FieldLevel) bool {
			return models.Status(fl.Field().String()).Valid()
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic("form: register " + tag + ": " + err.Error())
		}
	}
	return v
}

// Validate checks a draft and returns the problems keyed by field name.
// An empty map means the draft can be submitted. A phone made of spaces
// counts as given and fails the digit rule.
func Validate(e models.Employee) map[string]string {
	errs := make(map[string]string)

	err := validate.Struct(draftRules{
		FirstName:  e.FirstName,
		LastName:   e.LastName,
		Email:      e.Email,
		Phone:      e.Phone,
		Department: string(e.Department),
		Position:   e.Position,
		Status:     string(e.Status),
		Salary:     e.Salary,
	})

	var failed validator.ValidationErrors
	if !errors.As(err, &failed) {
		return errs
	}
	for _, fe := range failed {
		if msg, ok := messages[fe.Field()][fe.Tag()]; ok {
			errs[fe.Field()] = msg
		}
	}
	return errs
}
