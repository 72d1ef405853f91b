package form_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/hestia/internal/client/api"
	"github.com/UnknownOlympus/hestia/internal/directory"
	"github.com/UnknownOlympus/hestia/internal/form"
	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/UnknownOlympus/hestia/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSaver struct {
	created   []models.Employee
	updated   []models.Employee
	createErr error
	updateErr error
	nextID    int
}

func (s *fakeSaver) Create(_ context.Context, e models.Employee) (models.Employee, error) {
	s.created = append(s.created, e)
	if s.createErr != nil {
		return models.Employee{}, s.createErr
	}
	s.nextID++
	e.ID = 100 + s.nextID
	return e, nil
}

func (s *fakeSaver) Update(_ context.Context, id int, e models.Employee) (models.Employee, error) {
	s.updated = append(s.updated, e)
	if s.updateErr != nil {
		return models.Employee{}, s.updateErr
	}
	e.ID = id
	return e, nil
}

func (s *fakeSaver) calls() int {
	return len(s.created) + len(s.updated)
}

func newForm(t *testing.T, rows ...models.Employee) (*form.Controller, *fakeSaver, *directory.Collection, *notify.Recorder) {
	t.Helper()

	saver := &fakeSaver{}
	collection := directory.NewCollection(rows)
	rec := notify.NewRecorder()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return form.NewController(collection, saver, rec, logger, nil), saver, collection, rec
}

func fill(t *testing.T, c *form.Controller, values map[models.Field]string) {
	t.Helper()

	for field, value := range values {
		require.NoError(t, c.Set(field, value))
	}
}

func annLee() map[models.Field]string {
	return map[models.Field]string{
		models.FieldFirstName:  "Ann",
		models.FieldLastName:   "Lee",
		models.FieldEmail:      "ann@x.com",
		models.FieldDepartment: "engineering",
		models.FieldPosition:   "Eng",
		models.FieldStatus:     "active",
	}
}

func TestSubmitCreate(t *testing.T) {
	t.Parallel()

	c, saver, collection, rec := newForm(t, models.Employee{ID: 1, FirstName: "Old"})

	c.OpenCreate()
	fill(t, c, annLee())

	require.NoError(t, c.Submit(context.Background()))

	assert.Empty(t, c.Errors())
	assert.Equal(t, form.ModeClosed, c.Mode())
	assert.Equal(t, models.Employee{}, c.Draft())

	require.Len(t, saver.created, 1)
	payload := saver.created[0]
	assert.Empty(t, payload.Phone)
	assert.Nil(t, payload.HireDate)
	require.NotNil(t, payload.Salary)
	assert.InDelta(t, 0.0, float64(*payload.Salary), 0)

	rows := collection.Snapshot()
	require.Len(t, rows, 2)
	assert.Equal(t, 101, rows[1].ID, "the server assigned id is kept")
	assert.Equal(t, "Ann", rows[1].FirstName)
	assert.Equal(t, []string{notify.MsgAdded}, rec.Texts())
}

func TestSubmitEmptyEmail(t *testing.T) {
	t.Parallel()

	c, saver, collection, rec := newForm(t)

	c.OpenCreate()
	values := annLee()
	values[models.FieldEmail] = ""
	fill(t, c, values)

	err := c.Submit(context.Background())

	require.ErrorIs(t, err, form.ErrValidation)
	assert.Equal(t, map[string]string{"email": form.MsgEmailRequired}, c.Errors())
	assert.Zero(t, saver.calls(), "validation failures never reach the network")
	assert.Equal(t, 0, collection.Len())
	assert.Empty(t, rec.Notices())
	assert.Equal(t, form.ModeCreate, c.Mode())
}

func TestSubmitUnknownDepartment(t *testing.T) {
	t.Parallel()

	c, saver, collection, _ := newForm(t)

	c.OpenCreate()
	values := annLee()
	values[models.FieldDepartment] = "engneering"
	fill(t, c, values)

	err := c.Submit(context.Background())

	require.ErrorIs(t, err, form.ErrValidation)
	assert.Equal(t, map[string]string{"department": form.MsgDepartmentInvalid}, c.Errors())
	assert.Zero(t, saver.calls())
	assert.Equal(t, 0, collection.Len())
}

func TestSubmitCreateFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "rate limited", err: api.ErrRateLimited, want: notify.MsgRateLimited},
		{
			name: "server message",
			err:  &api.StatusError{Op: api.OpCreate, Code: 400, Message: "Email already exists"},
			want: "Email already exists",
		},
		{name: "transport", err: errors.New("dial tcp: refused"), want: notify.MsgAddFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, saver, collection, rec := newForm(t)
			saver.createErr = tt.err

			c.OpenCreate()
			fill(t, c, annLee())

			require.Error(t, c.Submit(context.Background()))

			assert.Equal(t, []string{tt.want}, rec.Texts())
			assert.Equal(t, form.ModeCreate, c.Mode(), "the form stays open")
			assert.Equal(t, "Ann", c.Draft().FirstName, "the draft is intact")
			assert.Equal(t, 0, collection.Len())
		})
	}
}

func TestSubmitEdit(t *testing.T) {
	t.Parallel()

	original := models.Employee{
		ID: 7, FirstName: "Bo", LastName: "Stone", Email: "bo@x.com", Department: models.DeptSales,
		Position: "Rep", Status: models.StatusActive, Salary: models.AmountPtr(40000),
	}
	c, saver, collection, rec := newForm(t, models.Employee{ID: 1}, original, models.Employee{ID: 9})

	c.OpenEdit(original)
	require.NoError(t, c.Set(models.FieldPosition, "Lead"))
	require.NoError(t, c.Set(models.FieldSalary, "45,500.50"))
	require.NoError(t, c.Set(models.FieldStatus, "On Leave"))

	stored, _ := collection.Find(7)
	assert.Equal(t, "Rep", stored.Position, "the draft is detached until the server confirms")

	require.NoError(t, c.Submit(context.Background()))

	require.Len(t, saver.updated, 1)
	rows := collection.Snapshot()
	assert.Equal(t, 7, rows[1].ID, "replaced in place")
	assert.Equal(t, "Lead", rows[1].Position)
	assert.Equal(t, models.StatusOnLeave, rows[1].Status)
	assert.InDelta(t, 45500.50, float64(*rows[1].Salary), 1e-9)
	assert.Equal(t, []string{notify.MsgUpdated}, rec.Texts())
	assert.Equal(t, form.ModeClosed, c.Mode())
}

func TestSubmitEditFailure(t *testing.T) {
	t.Parallel()

	original := models.Employee{
		ID: 7, FirstName: "Bo", LastName: "Stone", Email: "bo@x.com", Department: models.DeptSales,
		Position: "Rep", Status: models.StatusActive,
	}
	c, saver, collection, rec := newForm(t, original)
	saver.updateErr = &api.StatusError{Op: api.OpUpdate, Code: 500, Message: "boom"}

	c.OpenEdit(original)
	require.NoError(t, c.Set(models.FieldPosition, "Lead"))

	require.Error(t, c.Submit(context.Background()))

	stored, _ := collection.Find(7)
	assert.Equal(t, "Rep", stored.Position)
	assert.Equal(t, []string{notify.MsgUpdateFailed}, rec.Texts())
	assert.Equal(t, form.ModeEdit, c.Mode())
}

func TestSetAndClose(t *testing.T) {
	t.Parallel()

	c, _, _, _ := newForm(t)

	require.ErrorIs(t, c.Set(models.FieldFirstName, "Ann"), form.ErrClosed)
	require.ErrorIs(t, c.Submit(context.Background()), form.ErrClosed)

	c.OpenCreate()
	require.ErrorIs(t, c.Set(models.FieldHireDate, "yesterday"), form.ErrInvalidValue)
	require.ErrorIs(t, c.Set(models.FieldSalary, "a lot"), form.ErrInvalidValue)
	require.ErrorIs(t, c.Set(models.FieldID, "3"), form.ErrInvalidValue)

	require.NoError(t, c.Set(models.FieldHireDate, "2024-02-29"))
	require.NoError(t, c.Set(models.FieldDepartment, " Engineering "))
	draft := c.Draft()
	assert.Equal(t, "2024-02-29", draft.HireDate.String())
	assert.Equal(t, models.DeptEngineering, draft.Department)

	require.NoError(t, c.Set(models.FieldHireDate, ""))
	assert.Nil(t, c.Draft().HireDate)

	c.Close()
	assert.Equal(t, form.ModeClosed, c.Mode())
	assert.Equal(t, models.Employee{}, c.Draft())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := models.Employee{
		FirstName: "Ann", LastName: "Lee", Email: "ann@x.com", Department: models.DeptEngineering,
		Position: "Eng", Status: models.StatusActive,
	}

	tests := []struct {
		name   string
		mutate func(e *models.Employee)
		want   map[string]string
	}{
		{name: "valid", mutate: func(*models.Employee) {}, want: map[string]string{}},
		{
			name:   "empty draft",
			mutate: func(e *models.Employee) { *e = models.Employee{} },
			want: map[string]string{
				"firstName":  form.MsgFirstNameRequired,
				"lastName":   form.MsgLastNameRequired,
				"email":      form.MsgEmailRequired,
				"department": form.MsgDepartmentRequired,
				"position":   form.MsgPositionRequired,
				"status":     form.MsgStatusRequired,
			},
		},
		{
			name:   "blank strings",
			mutate: func(e *models.Employee) { e.FirstName = "   " },
			want:   map[string]string{"firstName": form.MsgFirstNameRequired},
		},
		{
			name:   "invalid email",
			mutate: func(e *models.Employee) { e.Email = "ann@x" },
			want:   map[string]string{"email": form.MsgEmailInvalid},
		},
		{
			name:   "phone with formatting",
			mutate: func(e *models.Employee) { e.Phone = "(555) 123-4567" },
			want:   map[string]string{},
		},
		{
			name:   "short phone",
			mutate: func(e *models.Employee) { e.Phone = "555-1234" },
			want:   map[string]string{"phone": form.MsgPhoneInvalid},
		},
		{
			name:   "negative salary",
			mutate: func(e *models.Employee) { e.Salary = models.AmountPtr(-1) },
			want:   map[string]string{"salary": form.MsgSalaryNegative},
		},
		{
			name:   "unknown department",
			mutate: func(e *models.Employee) { e.Department = "engneering" },
			want:   map[string]string{"department": form.MsgDepartmentInvalid},
		},
		{
			name:   "blank department",
			mutate: func(e *models.Employee) { e.Department = "  " },
			want:   map[string]string{"department": form.MsgDepartmentRequired},
		},
		{
			name:   "blank email",
			mutate: func(e *models.Employee) { e.Email = " " },
			want:   map[string]string{"email": form.MsgEmailRequired},
		},
		{
			name:   "email with spaces",
			mutate: func(e *models.Employee) { e.Email = "ann lee@x.com" },
			want:   map[string]string{"email": form.MsgEmailInvalid},
		},
		{
			name:   "phone of spaces",
			mutate: func(e *models.Employee) { e.Phone = "   " },
			want:   map[string]string{"phone": form.MsgPhoneInvalid},
		},
		{
			name:   "zero salary",
			mutate: func(e *models.Employee) { e.Salary = models.AmountPtr(0) },
			want:   map[string]string{},
		},
		{
			name: "several problems",
			mutate: func(e *models.Employee) {
				e.LastName = ""
				e.Salary = models.AmountPtr(-5)
				e.Status = ""
			},
			want: map[string]string{
				"lastName": form.MsgLastNameRequired,
				"salary":   form.MsgSalaryNegative,
				"status":   form.MsgStatusRequired,
			},
		},
		{
			name:   "unknown status",
			mutate: func(e *models.Employee) { e.Status = "retired" },
			want:   map[string]string{"status": form.MsgStatusInvalid},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := valid
			tt.mutate(&e)

			assert.Equal(t, tt.want, form.Validate(e))
		})
	}
}
