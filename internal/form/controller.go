// Package form holds the create/edit employee form: draft state, validation
// and submission.
package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"sync"

	"github.com/UnknownOlympus/hestia/internal/client/api"
	"github.com/UnknownOlympus/hestia/internal/directory"
	"github.com/UnknownOlympus/hestia/internal/metrics"
	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/UnknownOlympus/hestia/internal/notify"
)

var (
	// ErrValidation is returned by Submit when the draft has field errors.
	ErrValidation = errors.New("form has validation errors")
	// ErrClosed is returned when the form is not open.
	ErrClosed = errors.New("form is not open")
	// ErrInvalidValue is returned by Set for a value that cannot be parsed.
	ErrInvalidValue = errors.New("invalid field value")
)

// Mode is the state of the form.
type Mode string

const (
	ModeClosed Mode = "closed"
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Saver stores drafts on the server.
type Saver interface {
	Create(ctx context.Context, employee models.Employee) (models.Employee, error)
	Update(ctx context.Context, id int, employee models.Employee) (models.Employee, error)
}

// Controller holds the draft of one session. Exactly one of the create and
// edit drafts exists while the form is open.
type Controller struct {
	collection *directory.Collection
	saver      Saver
	notifier   notify.Notifier
	log        *slog.Logger
	metrics    *metrics.Metrics

	mu     sync.Mutex
	mode   Mode
	draft  models.Employee
	errs   map[string]string
	opened uint64 // Incremented on every open, so a late submit result does not close a newer form
}

// NewController creates a closed form writing into collection.
func NewController(
	collection *directory.Collection,
	saver Saver,
	notifier notify.Notifier,
	log *slog.Logger,
	appMetrics *metrics.Metrics,
) *Controller {
	return &Controller{
		collection: collection,
		saver:      saver,
		notifier:   notifier,
		log:        log,
		metrics:    appMetrics,
		mode:       ModeClosed,
		errs:       map[string]string{},
	}
}

// OpenCreate opens an empty "new employee" draft.
func (c *Controller) OpenCreate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.open(ModeCreate, models.Employee{})
}

// OpenEdit opens a detached copy of e for editing.
func (c *Controller) OpenEdit(e models.Employee) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.open(ModeEdit, e.Clone())
}

func (c *Controller) open(mode Mode, draft models.Employee) {
	c.mode = mode
	c.draft = draft
	c.errs = map[string]string{}
	c.opened++
}

// Close discards the draft.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mode = ModeClosed
	c.draft = models.Employee{}
	c.errs = map[string]string{}
}

// Mode reports the current form state.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.mode
}

// Draft returns a copy of the draft.
func (c *Controller) Draft() models.Employee {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.draft.Clone()
}

// Errors returns the field errors of the last validation.
func (c *Controller) Errors() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return maps.Clone(c.errs)
}

// Set parses value into field of the draft. Empty hire date or salary clears it.
func (c *Controller) Set(field models.Field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode == ModeClosed {
		return ErrClosed
	}

	value = strings.TrimSpace(value)
	switch field {
	case models.FieldFirstName:
		c.draft.FirstName = value
	case models.FieldLastName:
		c.draft.LastName = value
	case models.FieldEmail:
		c.draft.Email = value
	case models.FieldPhone:
		c.draft.Phone = value
	case models.FieldPosition:
		c.draft.Position = value
	case models.FieldDepartment:
		c.draft.Department = models.Department(strings.ToLower(value))
	case models.FieldStatus:
		c.draft.Status = models.Status(strings.ReplaceAll(strings.ToLower(value), " ", "_"))
	case models.FieldHireDate:
		if value == "" {
			c.draft.HireDate = nil
			return nil
		}
		date, err := models.ParseDate(value)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidValue, field, err)
		}
		c.draft.HireDate = &date
	case models.FieldSalary:
		if value == "" {
			c.draft.Salary = nil
			return nil
		}
		amount, err := models.ParseAmount(value)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidValue, field, err)
		}
		c.draft.Salary = &amount
	default:
		return fmt.Errorf("%w: %s cannot be edited", ErrInvalidValue, field)
	}
	return nil
}

// Validate checks the draft, stores and returns the field errors.
func (c *Controller) Validate() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.errs = Validate(c.draft)
	return maps.Clone(c.errs)
}

// Submit validates the draft and sends it to the server. On success the
// collection is updated and the form closes. On failure the form stays open
// with the draft intact.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.mode == ModeClosed {
		c.mu.Unlock()
		return ErrClosed
	}

	mode, draft, opened := c.mode, c.draft.Clone(), c.opened
	c.errs = Validate(draft)
	if len(c.errs) > 0 {
		count := len(c.errs)
		c.mu.Unlock()
		c.metrics.FormSubmitted(string(mode), "invalid")
		return fmt.Errorf("%w: %d field(s)", ErrValidation, count)
	}
	c.mu.Unlock()

	var (
		saved models.Employee
		err   error
	)
	if mode == ModeCreate {
		saved, err = c.saver.Create(ctx, createPayload(draft))
	} else {
		saved, err = c.saver.Update(ctx, draft.ID, draft)
	}
	if err != nil {
		c.failed(ctx, mode, err)
		return fmt.Errorf("failed to %s employee: %w", mode, err)
	}

	if mode == ModeCreate {
		c.collection.Append(saved)
	} else if !c.collection.Replace(saved) {
		c.log.DebugContext(ctx, "Updated employee is not on the current page", "employee_id", saved.ID)
	}

	c.mu.Lock()
	if c.opened == opened {
		c.mode = ModeClosed
		c.draft = models.Employee{}
		c.errs = map[string]string{}
	}
	c.mu.Unlock()

	c.metrics.FormSubmitted(string(mode), "ok")
	c.log.InfoContext(ctx, "Employee saved", "mode", mode, "employee_id", saved.ID)
	if mode == ModeCreate {
		c.notifier.Notify(ctx, notify.Success(notify.MsgAdded))
	} else {
		c.notifier.Notify(ctx, notify.Success(notify.MsgUpdated))
	}
	return nil
}

func (c *Controller) failed(ctx context.Context, mode Mode, err error) {
	c.log.ErrorContext(ctx, "Failed to save employee", "mode", mode, "error", err)

	if errors.Is(err, api.ErrRateLimited) {
		c.metrics.FormSubmitted(string(mode), "rate_limited")
		c.notifier.Notify(ctx, notify.Error(notify.MsgRateLimited))
		return
	}

	c.metrics.FormSubmitted(string(mode), "failed")
	if mode == ModeEdit {
		c.notifier.Notify(ctx, notify.Error(notify.MsgUpdateFailed))
		return
	}
	if msg := api.ServerMessage(err); msg != "" {
		c.notifier.Notify(ctx, notify.Error(msg))
		return
	}
	c.notifier.Notify(ctx, notify.Error(notify.MsgAddFailed))
}

// createPayload fills the defaults of a new employee: no hire date, zero
// salary and active status. Missing strings are already empty.
func createPayload(draft models.Employee) models.Employee {
	payload := draft.Clone()
	payload.ID = 0
	if payload.Salary == nil {
		payload.Salary = models.AmountPtr(0)
	}
	if payload.Status == "" {
		payload.Status = models.StatusActive
	}
	return payload
}
