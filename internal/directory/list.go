// Package directory holds the employee rows of one session and the list view
// model: query state, refetching, the derived view and fuzzy ranking.
package directory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/UnknownOlympus/hestia/internal/client/api"
	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/UnknownOlympus/hestia/internal/notify"
)

var (
	// ErrEmployeeNotFound is returned when no row with the requested id is loaded.
	ErrEmployeeNotFound = errors.New("employee not found in current page")
	// ErrInvalidFilter is returned for an unknown department or status filter value.
	ErrInvalidFilter = errors.New("invalid filter value")
	// ErrInvalidPageSize is returned for a page size below one.
	ErrInvalidPageSize = errors.New("page size must be positive")
)

// API is the part of the employee API the list view model needs.
type API interface {
	List(ctx context.Context, params api.ListParams) (api.Page, error)
	Import(ctx context.Context, filename string, file io.Reader) error
	Export(ctx context.Context) (*bytes.Buffer, error)
}

// List is the list view model. It owns the session's Collection and query
// state and refetches whenever page, page size, department or sort change.
// Search text and the status filter only narrow the current page locally.
type List struct {
	api        API
	notifier   notify.Notifier
	log        *slog.Logger
	collection *Collection

	mu    sync.Mutex
	query Query
	total int
	seq   uint64 // Sequence number of the latest issued fetch
}

// NewList creates a list view model with an empty collection.
func NewList(client API, notifier notify.Notifier, log *slog.Logger, pageSize int) *List {
	return &List{
		api:        client,
		notifier:   notifier,
		log:        log,
		collection: NewCollection(nil),
		query:      NewQuery(pageSize),
	}
}

// Refresh fetches the current page. Only the response of the latest issued
// fetch is applied; older responses arriving later are discarded. Failures
// leave the collection untouched and are reported through the notifier.
func (l *List) Refresh(ctx context.Context) error {
	l.mu.Lock()
	l.seq++
	seq := l.seq
	params := api.ListParams{
		Page:     l.query.Page,
		PageSize: l.query.PageSize,
		Ordering: l.query.Ordering(),
	}
	if l.query.Department != FilterAll {
		params.Department = l.query.Department
	}
	l.mu.Unlock()

	page, err := l.api.List(ctx, params)

	l.mu.Lock()
	if seq != l.seq {
		l.mu.Unlock()
		l.log.DebugContext(ctx, "Discarding stale list response", "seq", seq)
		return nil
	}
	if err != nil {
		l.mu.Unlock()
		l.log.ErrorContext(ctx, "Failed to load employees", "page", params.Page, "error", err)
		l.notifyFailure(ctx, err, notify.MsgLoadFailed)
		return fmt.Errorf("failed to load employees: %w", err)
	}

	l.collection.Reset(page.Results)
	l.total = page.Count

	refetch := false
	if pages := TotalPages(l.total, l.query.PageSize); l.query.Page > pages {
		l.query.Page = pages
		refetch = true
	}
	l.mu.Unlock()

	l.log.DebugContext(ctx, "Employees loaded", "page", params.Page, "rows", len(page.Results), "total", page.Count)

	if refetch {
		return l.Refresh(ctx)
	}
	return nil
}

// SetPage moves to page n, clamped to [1, TotalPages()].
func (l *List) SetPage(ctx context.Context, n int) error {
	l.mu.Lock()
	n = max(1, min(n, TotalPages(l.total, l.query.PageSize)))
	if n == l.query.Page {
		l.mu.Unlock()
		return nil
	}
	l.query.Page = n
	l.mu.Unlock()

	return l.Refresh(ctx)
}

// NextPage moves one page forward. On the last page it does nothing.
func (l *List) NextPage(ctx context.Context) error {
	return l.SetPage(ctx, l.Query().Page+1)
}

// PrevPage moves one page back. On the first page it does nothing.
func (l *List) PrevPage(ctx context.Context) error {
	return l.SetPage(ctx, l.Query().Page-1)
}

// SetPageSize changes the page size and keeps the page within the new page count.
func (l *List) SetPageSize(ctx context.Context, size int) error {
	if size < 1 {
		return ErrInvalidPageSize
	}

	l.mu.Lock()
	if size == l.query.PageSize {
		l.mu.Unlock()
		return nil
	}
	l.query.PageSize = size
	l.query.Page = min(l.query.Page, TotalPages(l.total, size))
	l.mu.Unlock()

	return l.Refresh(ctx)
}

// SetDepartment filters by a department code, or FilterAll. The page resets to 1.
func (l *List) SetDepartment(ctx context.Context, department string) error {
	if department == "" {
		department = FilterAll
	}
	if department != FilterAll && !models.Department(department).Valid() {
		return fmt.Errorf("%w: department %q", ErrInvalidFilter, department)
	}

	l.mu.Lock()
	if department == l.query.Department {
		l.mu.Unlock()
		return nil
	}
	l.query.Department = department
	l.query.Page = 1
	l.mu.Unlock()

	return l.Refresh(ctx)
}

// ToggleSort sorts by key: the same key flips the direction, a new key starts ascending.
func (l *List) ToggleSort(ctx context.Context, key models.Field) error {
	l.mu.Lock()
	l.query.Sort = l.query.Sort.Toggle(key)
	l.mu.Unlock()

	return l.Refresh(ctx)
}

// SetSearch sets the local search text. No fetch is issued.
func (l *List) SetSearch(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.query.Search = text
}

// SetStatus sets the local status filter, a status code or FilterAll. No fetch is issued.
func (l *List) SetStatus(status string) error {
	if status == "" {
		status = FilterAll
	}
	if status != FilterAll && !models.Status(status).Valid() {
		return fmt.Errorf("%w: status %q", ErrInvalidFilter, status)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.query.Status = status
	return nil
}

// View returns the filtered and sorted rows of the current page.
func (l *List) View() []models.Employee {
	return Derive(l.collection.Snapshot(), l.Query())
}

// Search ranks the current page by fuzzy relevance to term. The department
// and status filters apply, the plain search text does not.
func (l *List) Search(term string) []Ranked {
	query := l.Query()
	query.Search = ""
	query.Sort = Sort{}
	return Rank(Derive(l.collection.Snapshot(), query), term, models.SearchableFields())
}

// Departments lists the distinct departments present on the current page.
func (l *List) Departments() []models.Department {
	return Departments(l.collection.Snapshot())
}

// Employee returns the loaded row with the given id.
func (l *List) Employee(id int) (models.Employee, error) {
	employee, ok := l.collection.Find(id)
	if !ok {
		return models.Employee{}, fmt.Errorf("%w: id %d", ErrEmployeeNotFound, id)
	}
	return employee, nil
}

// Query returns a copy of the query state.
func (l *List) Query() Query {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.query
}

// Total is the server-reported employee count of the last applied fetch.
func (l *List) Total() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.total
}

// TotalPages is ceil(Total / page size), at least 1.
func (l *List) TotalPages() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return TotalPages(l.total, l.query.PageSize)
}

// Collection exposes the rows for the delete and form controllers.
func (l *List) Collection() *Collection {
	return l.collection
}

// Import uploads a spreadsheet and reloads the page on success.
func (l *List) Import(ctx context.Context, filename string, file io.Reader) error {
	if err := l.api.Import(ctx, filename, file); err != nil {
		l.log.ErrorContext(ctx, "Failed to import employees", "file", filename, "error", err)
		l.notifyFailure(ctx, err, notify.MsgImportFailed)
		return fmt.Errorf("failed to import employees: %w", err)
	}

	l.log.InfoContext(ctx, "Employees imported", "file", filename)
	l.notifier.Notify(ctx, notify.Success(notify.MsgImported))
	return l.Refresh(ctx)
}

// Export downloads the server spreadsheet into w.
func (l *List) Export(ctx context.Context, w io.Writer) error {
	buf, err := l.api.Export(ctx)
	if err == nil {
		_, err = buf.WriteTo(w)
	}
	if err != nil {
		l.log.ErrorContext(ctx, "Failed to export employees", "error", err)
		l.notifyFailure(ctx, err, notify.MsgExportFailed)
		return fmt.Errorf("failed to export employees: %w", err)
	}

	l.notifier.Notify(ctx, notify.Success(notify.MsgExported))
	return nil
}

func (l *List) notifyFailure(ctx context.Context, err error, generic string) {
	if errors.Is(err, api.ErrRateLimited) {
		l.notifier.Notify(ctx, notify.Error(notify.MsgRateLimited))
		return
	}
	l.notifier.Notify(ctx, notify.Error(generic))
}
