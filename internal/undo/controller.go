// Package undo implements optimistic deletion with a grace period: rows leave
// the view at once and reach the backend only when their timer fires, unless
// the deletion is undone first.
package undo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/UnknownOlympus/hestia/internal/client/api"
	"github.com/UnknownOlympus/hestia/internal/directory"
	"github.com/UnknownOlympus/hestia/internal/metrics"
	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/UnknownOlympus/hestia/internal/notify"
)

var (
	// ErrNotVisible is returned when the employee to delete is not in the collection.
	ErrNotVisible = errors.New("employee is not visible")
	// ErrClosed is returned by Delete after Close or Flush.
	ErrClosed = errors.New("delete controller is closed")
)

// Deleter performs the authoritative backend deletion.
type Deleter interface {
	Delete(ctx context.Context, id int) error
}

// Config holds the timing of the delete workflow.
type Config struct {
	DeleteDelay            time.Duration // Grace period before the backend call
	NoticeDuration         time.Duration // How long the notice with the Undo action stays
	RestoredNoticeDuration time.Duration // How long the "restored" notice stays
	RequestTimeout         time.Duration // Timeout of the backend call fired by the timer
}

// DefaultConfig returns the standard timings: 7s grace period, 5s notice, 3s restore notice.
func DefaultConfig() Config {
	return Config{
		DeleteDelay:            7 * time.Second,
		NoticeDuration:         notify.DeleteNoticeWindow,
		RestoredNoticeDuration: notify.RestoredDuration,
		RequestTimeout:         10 * time.Second,
	}
}

// pendingDelete is one deletion waiting for its timer.
type pendingDelete struct {
	snapshot models.Employee
	index    int
	timer    Timer
}

// Controller is the delete controller of one session.
//
// The registry and the LIFO stack are guarded by one mutex. Both the timer
// callback and Undo check and remove the registry entry in a single critical
// section, so each deletion is either committed or undone, never both.
type Controller struct {
	collection *directory.Collection
	deleter    Deleter
	notifier   notify.Notifier
	scheduler  Scheduler
	log        *slog.Logger
	metrics    *metrics.Metrics
	cfg        Config

	mu       sync.Mutex
	registry map[int]*pendingDelete
	stack    []int // Pending ids, most recent last
	closed   bool
}

// NewController creates a delete controller over collection.
func NewController(
	collection *directory.Collection,
	deleter Deleter,
	notifier notify.Notifier,
	scheduler Scheduler,
	log *slog.Logger,
	appMetrics *metrics.Metrics,
	cfg Config,
) *Controller {
	if scheduler == nil {
		scheduler = RealScheduler{}
	}

	defaults := DefaultConfig()
	if cfg.DeleteDelay <= 0 {
		cfg.DeleteDelay = defaults.DeleteDelay
	}
	if cfg.NoticeDuration <= 0 {
		cfg.NoticeDuration = defaults.NoticeDuration
	}
	if cfg.RestoredNoticeDuration <= 0 {
		cfg.RestoredNoticeDuration = defaults.RestoredNoticeDuration
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaults.RequestTimeout
	}

	return &Controller{
		collection: collection,
		deleter:    deleter,
		notifier:   notifier,
		scheduler:  scheduler,
		log:        log,
		metrics:    appMetrics,
		cfg:        cfg,
		registry:   make(map[int]*pendingDelete),
	}
}

// Delete removes the employee from the collection and schedules the backend
// deletion after the grace period. A notice offering Undo is shown.
func (c *Controller) Delete(ctx context.Context, id int) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}

	employee, index, ok := c.collection.Remove(id)
	if _, pending := c.registry[id]; pending {
		// A refetch brought the row back while its deletion is pending.
		c.mu.Unlock()
		c.log.DebugContext(ctx, "Deletion already pending", "employee_id", id, "was_visible", ok)
		return nil
	}
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: id %d", ErrNotVisible, id)
	}

	entry := &pendingDelete{snapshot: employee, index: index}
	c.registry[id] = entry
	c.stack = append(c.stack, id)
	entry.timer = c.scheduler.AfterFunc(c.cfg.DeleteDelay, func() { c.fire(id, entry) })
	c.mu.Unlock()

	c.metrics.DeletePending(1)
	c.log.InfoContext(ctx, "Employee scheduled for deletion", "employee_id", id, "index", index,
		"delay", c.cfg.DeleteDelay)

	c.notifier.Notify(ctx, notify.Notice{
		Level:    notify.LevelSuccess,
		Text:     notify.MsgDeleted,
		Duration: c.cfg.NoticeDuration,
		Action:   &notify.Action{Label: notify.ActionUndo, Run: func() { c.Undo() }},
	})
	return nil
}

// Undo restores the most recent pending deletion at its original index and
// cancels its backend call. It returns false when nothing is pending.
func (c *Controller) Undo() bool {
	c.mu.Lock()
	if len(c.stack) == 0 {
		c.mu.Unlock()
		return false
	}

	id := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	entry := c.registry[id]
	delete(c.registry, id)
	entry.timer.Stop()

	// Skipped when a refetch already brought the row back.
	restored := c.collection.InsertAt(entry.index, entry.snapshot)
	c.mu.Unlock()

	c.metrics.DeletePending(-1)
	c.metrics.DeleteOutcome("undone")
	c.log.Info("Employee deletion undone", "employee_id", id, "reinserted", restored)

	c.notifier.Notify(context.Background(), notify.Notice{
		Level:    notify.LevelSuccess,
		Text:     notify.MsgRestored,
		Duration: c.cfg.RestoredNoticeDuration,
	})
	return true
}

// Pending returns the ids waiting for their timer, oldest first.
func (c *Controller) Pending() []int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.stack)
}

// Flush commits every pending deletion now and closes the controller.
// The rows are already gone from view, so this is what shutdown does.
func (c *Controller) Flush(ctx context.Context) error {
	ids := c.drain()

	var errs []error
	for _, id := range ids {
		if err := c.commit(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close cancels every pending deletion without calling the backend.
func (c *Controller) Close() {
	ids := c.drain()
	if len(ids) > 0 {
		c.log.Warn("Pending deletions discarded", "employee_ids", ids)
	}
}

// drain stops all timers, empties the registry and closes the controller.
func (c *Controller) drain() []int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	ids := c.stack
	for _, id := range ids {
		c.registry[id].timer.Stop()
		delete(c.registry, id)
	}
	c.stack = nil
	c.metrics.DeletePending(-float64(len(ids)))
	return ids
}

// fire runs on the timer goroutine.
func (c *Controller) fire(id int, entry *pendingDelete) {
	c.mu.Lock()
	if current, ok := c.registry[id]; !ok || current != entry {
		c.mu.Unlock()
		return
	}
	delete(c.registry, id)
	if i := slices.Index(c.stack, id); i >= 0 {
		c.stack = slices.Delete(c.stack, i, i+1)
	}
	c.mu.Unlock()

	c.metrics.DeletePending(-1)

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.RequestTimeout)
	defer cancel()

	_ = c.commit(ctx, id)
}

// commit performs the backend deletion. The row stays removed locally whatever the outcome.
func (c *Controller) commit(ctx context.Context, id int) error {
	err := c.deleter.Delete(ctx, id)
	if err != nil {
		c.metrics.DeleteOutcome("failed")
		c.log.ErrorContext(ctx, "Failed to delete employee", "employee_id", id, "error", err)
		if errors.Is(err, api.ErrRateLimited) {
			c.notifier.Notify(ctx, notify.Error(notify.MsgRateLimited))
		} else {
			c.notifier.Notify(ctx, notify.Error(notify.MsgDeleteFailed))
		}
		return fmt.Errorf("failed to delete employee %d: %w", id, err)
	}

	c.metrics.DeleteOutcome("committed")
	c.log.InfoContext(ctx, "Employee deleted", "employee_id", id)
	c.notifier.Notify(ctx, notify.Success(notify.MsgDeleteDone))
	return nil
}
