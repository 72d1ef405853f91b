package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/UnknownOlympus/hestia/internal/directory"
	"github.com/UnknownOlympus/hestia/internal/form"
	"github.com/UnknownOlympus/hestia/internal/i18n"
	"github.com/UnknownOlympus/hestia/internal/metrics"
	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/UnknownOlympus/hestia/internal/notify"
	"github.com/UnknownOlympus/hestia/internal/report"
	"github.com/UnknownOlympus/hestia/internal/stats"
	"github.com/UnknownOlympus/hestia/internal/undo"
)

// Backend is the employee service as used by one session.
type Backend interface {
	directory.API
	undo.Deleter
	form.Saver
}

// SessionDeps are shared by every chat session.
type SessionDeps struct {
	Backend   Backend
	Localizer *i18n.Localizer
	Log       *slog.Logger
	Metrics   *metrics.Metrics
	Scheduler undo.Scheduler // nil means real timers
	Undo      undo.Config
	PageSize  int
}

// upload is a workbook waiting for the import confirmation.
type upload struct {
	name string
	data []byte
}

// Session is the state of one chat: its page of employees, pending deletes
// and the open form. Methods return the text to answer with. A non-nil error
// means a backend failure that was already reported through the notifier.
type Session struct {
	log     *slog.Logger
	loc     *i18n.Localizer
	list    *directory.List
	deletes *undo.Controller
	form    *form.Controller

	mu      sync.Mutex
	lang    string
	loaded  bool
	pending *upload
}

// NewSession creates the state of one chat. Notices go to notifier.
func NewSession(deps SessionDeps, notifier notify.Notifier, lang string) *Session {
	list := directory.NewList(deps.Backend, notifier, deps.Log, deps.PageSize)

	return &Session{
		log:  deps.Log,
		loc:  deps.Localizer,
		list: list,
		deletes: undo.NewController(
			list.Collection(), deps.Backend, notifier, deps.Scheduler, deps.Log, deps.Metrics, deps.Undo,
		),
		form: form.NewController(list.Collection(), deps.Backend, notifier, deps.Log, deps.Metrics),
		lang: lang,
	}
}

// Lang returns the language of the session.
func (s *Session) Lang() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lang
}

// SetLang switches the language of the session.
func (s *Session) SetLang(lang string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lang = lang
}

func (s *Session) render() renderer {
	return renderer{loc: s.loc, lang: s.Lang()}
}

// NoticeText translates a notice text or action label into the session
// language. Texts without a catalog key, such as server messages, pass through.
func (s *Session) NoticeText(text string) string {
	key, ok := noticeKeys[text]
	if !ok {
		return text
	}
	return s.T(key)
}

// T translates key into the session language.
func (s *Session) T(key string) string {
	return s.render().t(key)
}

// Pager returns the current page and the page count.
func (s *Session) Pager() (int, int) {
	return s.list.Query().Page, s.list.TotalPages()
}

// FormOpen reports whether a form is waiting for input.
func (s *Session) FormOpen() bool {
	return s.form.Mode() != form.ModeClosed
}

// ensureLoaded fetches the first page once.
func (s *Session) ensureLoaded(ctx context.Context) error {
	s.mu.Lock()
	loaded := s.loaded
	s.mu.Unlock()
	if loaded {
		return nil
	}
	return s.Reload(ctx)
}

// Reload fetches the current page again.
func (s *Session) Reload(ctx context.Context) error {
	if err := s.list.Refresh(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	s.loaded = true
	s.mu.Unlock()
	return nil
}

// Page renders the current view of the loaded page.
func (s *Session) Page() string {
	return s.render().page(s.list.Query(), s.list.Total(), s.list.TotalPages(), s.list.View())
}

// List reloads the current page and renders it.
func (s *Session) List(ctx context.Context) (string, error) {
	if err := s.Reload(ctx); err != nil {
		return "", err
	}
	return s.Page(), nil
}

// Next moves one page forward.
func (s *Session) Next(ctx context.Context) (string, error) {
	return s.navigate(ctx, s.list.NextPage)
}

// Prev moves one page back.
func (s *Session) Prev(ctx context.Context) (string, error) {
	return s.navigate(ctx, s.list.PrevPage)
}

func (s *Session) navigate(ctx context.Context, move func(context.Context) error) (string, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return "", err
	}
	if err := move(ctx); err != nil {
		return "", err
	}
	return s.Page(), nil
}

// GoTo handles "/page N".
func (s *Session) GoTo(ctx context.Context, arg string) (string, error) {
	n, err := parseID(arg)
	if err != nil {
		return s.badNumber(arg, "/page N"), nil
	}
	return s.navigate(ctx, func(ctx context.Context) error { return s.list.SetPage(ctx, n) })
}

// Resize handles "/size N".
func (s *Session) Resize(ctx context.Context, arg string) (string, error) {
	n, err := parseID(arg)
	if err != nil {
		if strings.TrimSpace(arg) == "" {
			return s.usage("/size N"), nil
		}
		return s.T("list.size.invalid"), nil
	}
	return s.navigate(ctx, func(ctx context.Context) error { return s.list.SetPageSize(ctx, n) })
}

// Department handles "/dept code|all".
func (s *Session) Department(ctx context.Context, arg string) (string, error) {
	code := strings.ToLower(strings.TrimSpace(arg))
	if code == "" {
		return s.usage("/dept code|all"), nil
	}
	if code != directory.FilterAll && !models.Department(code).Valid() {
		return s.render().td("dept.invalid", map[string]any{
			"values": choices(models.Departments(), directory.FilterAll),
		}), nil
	}
	return s.navigate(ctx, func(ctx context.Context) error { return s.list.SetDepartment(ctx, code) })
}

// Status handles "/status code|all". The filter is local.
func (s *Session) Status(ctx context.Context, arg string) (string, error) {
	code := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(arg)), " ", "_")
	if code == "" {
		return s.usage("/status code|all"), nil
	}
	if err := s.list.SetStatus(code); err != nil {
		return s.render().td("status.invalid", map[string]any{
			"values": choices(models.Statuses(), directory.FilterAll),
		}), nil
	}
	if err := s.ensureLoaded(ctx); err != nil {
		return "", err
	}
	return s.Page(), nil
}

// Sort handles "/sort column".
func (s *Session) Sort(ctx context.Context, arg string) (string, error) {
	field, err := models.ParseField(compactFieldName(arg))
	if err != nil {
		return s.render().td("sort.invalid", map[string]any{"values": choices(models.Fields())}), nil
	}
	return s.navigate(ctx, func(ctx context.Context) error { return s.list.ToggleSort(ctx, field) })
}

// Search handles "/search text". An empty text clears the search. The search is local.
func (s *Session) Search(ctx context.Context, arg string) (string, error) {
	s.list.SetSearch(strings.TrimSpace(arg))
	if err := s.ensureLoaded(ctx); err != nil {
		return "", err
	}
	return s.Page(), nil
}

// Find handles "/find text": the loaded page ranked by fuzzy relevance.
func (s *Session) Find(ctx context.Context, arg string) (string, error) {
	term := strings.TrimSpace(arg)
	if term == "" {
		return s.usage("/find text"), nil
	}
	if err := s.ensureLoaded(ctx); err != nil {
		return "", err
	}
	return s.render().ranked(term, s.list.Search(term)), nil
}

// Show handles "/show ID".
func (s *Session) Show(ctx context.Context, arg string) (string, error) {
	id, err := parseID(arg)
	if err != nil {
		return s.badNumber(arg, "/show ID"), nil
	}
	if err = s.ensureLoaded(ctx); err != nil {
		return "", err
	}

	employee, err := s.list.Employee(id)
	if err != nil {
		return s.notFound(id), nil
	}
	return s.render().employee(employee), nil
}

// Delete handles "/delete ID". The row disappears at once and the backend
// call waits for the undo window.
func (s *Session) Delete(ctx context.Context, arg string) (string, error) {
	id, err := parseID(arg)
	if err != nil {
		return s.badNumber(arg, "/delete ID"), nil
	}
	if err = s.ensureLoaded(ctx); err != nil {
		return "", err
	}

	if err = s.deletes.Delete(ctx, id); err != nil {
		if errors.Is(err, undo.ErrNotVisible) {
			return s.notFound(id), nil
		}
		return "", err
	}
	return s.Page(), nil
}

// Undo handles "/undo": restores the most recent pending deletion.
func (s *Session) Undo() string {
	if !s.deletes.Undo() {
		return s.T("undo.nothing")
	}
	return s.Page()
}

// NewForm handles "/new".
func (s *Session) NewForm() string {
	s.form.OpenCreate()
	return s.Draft()
}

// Edit handles "/edit ID".
func (s *Session) Edit(ctx context.Context, arg string) (string, error) {
	id, err := parseID(arg)
	if err != nil {
		return s.badNumber(arg, "/edit ID"), nil
	}
	if err = s.ensureLoaded(ctx); err != nil {
		return "", err
	}

	employee, err := s.list.Employee(id)
	if err != nil {
		return s.notFound(id), nil
	}
	s.form.OpenEdit(employee)
	return s.Draft(), nil
}

// Draft renders the open form.
func (s *Session) Draft() string {
	return s.render().draft(s.form.Mode(), s.form.Draft(), s.form.Errors())
}

// Cancel handles "/cancel": closes the form and drops a pending upload.
func (s *Session) Cancel() string {
	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()

	if !s.FormOpen() {
		return s.T("form.not_open")
	}
	s.form.Close()
	return s.T("form.closed")
}

// Input applies "field: value" lines to the open form.
func (s *Session) Input(text string) string {
	if !s.FormOpen() {
		return s.T("form.not_open")
	}

	values, err := parseFormInput(text)
	if err != nil {
		return s.render().td("form.bad_line", map[string]any{"line": strings.TrimSpace(text)})
	}

	for _, fv := range values {
		if err = s.form.Set(fv.Field, fv.Value); err != nil {
			if errors.Is(err, form.ErrClosed) {
				return s.T("form.not_open")
			}
			return s.render().td("form.bad_line", map[string]any{"line": fv.Line}) + "\n" + err.Error()
		}
	}
	return s.Draft()
}

// Save handles "/save": submits the form. Validation errors are shown with
// the draft, success shows the page with the saved row.
func (s *Session) Save(ctx context.Context) (string, error) {
	err := s.form.Submit(ctx)
	switch {
	case errors.Is(err, form.ErrClosed):
		return s.T("form.not_open"), nil
	case errors.Is(err, form.ErrValidation):
		return s.Draft(), nil
	case err != nil:
		return "", err
	}
	return s.Page(), nil
}

// Stats handles "/stats" over the loaded page.
func (s *Session) Stats(ctx context.Context) (string, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return "", err
	}
	return s.render().stats(stats.Compute(s.list.Collection().Snapshot())), nil
}

// Export downloads the server workbook.
func (s *Session) Export(ctx context.Context) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	if err := s.list.Export(ctx, &buf); err != nil {
		return nil, err
	}
	return &buf, nil
}

// ExportPage builds a workbook from the loaded page.
func (s *Session) ExportPage(ctx context.Context) (*bytes.Buffer, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	buf, err := report.GenerateWorkbook(s.list.View())
	if err != nil {
		return nil, fmt.Errorf("failed to build workbook: %w", err)
	}
	return buf, nil
}

// Preview parses an uploaded workbook and keeps it until ConfirmImport or
// Cancel. ok is false when the file cannot be imported.
func (s *Session) Preview(name string, data []byte) (string, bool) {
	parsed, err := report.ReadWorkbook(bytes.NewReader(data))
	if err != nil {
		s.log.Info("Uploaded workbook rejected", "file", name, "error", err)
		if errors.Is(err, report.ErrMissingColumns) || errors.Is(err, report.ErrNoEmployees) {
			return s.T("import.not_xlsx") + "\n" + err.Error(), false
		}
		return s.T("import.not_xlsx"), false
	}

	s.mu.Lock()
	s.pending = &upload{name: name, data: data}
	s.mu.Unlock()

	return s.render().preview(name, parsed), true
}

// ConfirmImport uploads the previewed workbook and reloads the page.
func (s *Session) ConfirmImport(ctx context.Context) (string, error) {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	if pending == nil {
		return s.T("import.expired"), nil
	}
	if err := s.list.Import(ctx, pending.name, bytes.NewReader(pending.data)); err != nil {
		return "", err
	}

	s.mu.Lock()
	s.loaded = true
	s.mu.Unlock()
	return s.Page(), nil
}

// CancelImport drops the previewed workbook.
func (s *Session) CancelImport() string {
	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()

	return s.T("import.cancelled")
}

// Flush commits the pending deletions now.
func (s *Session) Flush(ctx context.Context) error {
	return s.deletes.Flush(ctx)
}

// Close cancels the pending deletions without committing them.
func (s *Session) Close() {
	s.deletes.Close()
}

func (s *Session) usage(usage string) string {
	return s.render().td("error.usage", map[string]any{"usage": usage})
}

// badNumber answers a numeric argument that did not parse.
func (s *Session) badNumber(arg, usage string) string {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return s.usage(usage)
	}
	return s.render().td("error.number", map[string]any{"value": arg})
}

func (s *Session) notFound(id int) string {
	return s.render().td("employee.not_found", map[string]any{"id": id})
}
