// Package notify delivers transient user notifications ("toasts").
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Level is the severity of a notice.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Messages shown to the user. Front-ends may localize them by text.
const (
	MsgRateLimited  = "Too many requests. Please try again later."
	MsgLoadFailed   = "Failed to load employees..."
	MsgAddFailed    = "Failed to add employee..."
	MsgAdded        = "Employee added successfully!"
	MsgUpdateFailed = "Failed to update employee..."
	MsgUpdated      = "Employee updated successfully!"
	MsgDeleted      = "Employee deleted successfully!"
	MsgDeleteFailed = "Failed to delete employee..."
	MsgDeleteDone   = "Employee permanently deleted."
	MsgRestored     = "Undo successful! Employee restored."
	MsgImported     = "Excel file imported successfully!"
	MsgImportFailed = "Failed to import Excel file..."
	MsgExported     = "Excel file exported successfully!"
	MsgExportFailed = "Failed to export Excel file..."
	ActionUndo      = "Undo"
)

// Display durations.
const (
	DefaultDuration    = 4 * time.Second
	DeleteNoticeWindow = 5 * time.Second
	RestoredDuration   = 3 * time.Second
)

// Action is an inline button carried by a notice, e.g. "Undo".
type Action struct {
	Label string
	Run   func()
}

// Notice is one transient notification.
type Notice struct {
	Level    Level
	Text     string
	Duration time.Duration
	Action   *Action
}

// Notifier shows notices to the user. Implementations must not block for long:
// notices are emitted from request paths and timer callbacks.
type Notifier interface {
	Notify(ctx context.Context, notice Notice)
}

// Func adapts a function to the Notifier interface.
type Func func(ctx context.Context, notice Notice)

// Notify calls f.
func (f Func) Notify(ctx context.Context, notice Notice) {
	f(ctx, notice)
}

// Success builds a success notice with the default duration.
func Success(text string) Notice {
	return Notice{Level: LevelSuccess, Text: text, Duration: DefaultDuration}
}

// Error builds an error notice with the default duration.
func Error(text string) Notice {
	return Notice{Level: LevelError, Text: text, Duration: DefaultDuration}
}

// Log writes notices to a structured logger.
type Log struct {
	log *slog.Logger
}

// NewLog creates a notifier backed by log.
func NewLog(log *slog.Logger) *Log {
	return &Log{log: log}
}

// Notify logs the notice; errors are logged at warn level.
func (l *Log) Notify(ctx context.Context, notice Notice) {
	attrs := []any{"kind", notice.Level, "has_action", notice.Action != nil}
	if notice.Level == LevelError {
		l.log.WarnContext(ctx, notice.Text, attrs...)
		return
	}
	l.log.InfoContext(ctx, notice.Text, attrs...)
}

// Recorder keeps every notice it receives.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Notify records the notice.
func (r *Recorder) Notify(_ context.Context, notice Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.notices = append(r.notices, notice)
}

// Notices returns a copy of the recorded notices.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Texts returns the recorded notice texts in order.
func (r *Recorder) Texts() []string {
	notices := r.Notices()
	out := make([]string, 0, len(notices))
	for _, n := range notices {
		out = append(out, n.Text)
	}
	return out
}

// Last returns the most recent notice.
func (r *Recorder) Last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}

// Reset drops all recorded notices.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.notices = nil
}

// Multi fans a notice out to several notifiers.
type Multi []Notifier

// Notify forwards the notice to every notifier in order.
func (m Multi) Notify(ctx context.Context, notice Notice) {
	for _, n := range m {
		n.Notify(ctx, notice)
	}
}
