package directory_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/UnknownOlympus/hestia/internal/client/api"
	"github.com/UnknownOlympus/hestia/internal/directory"
	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/UnknownOlympus/hestia/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu      sync.Mutex
	calls   []api.ListParams
	list    func(params api.ListParams) (api.Page, error)
	imports []string
	export  func() (*bytes.Buffer, error)
	importE error
}

func (f *fakeAPI) List(_ context.Context, params api.ListParams) (api.Page, error) {
	f.mu.Lock()
	f.calls = append(f.calls, params)
	list := f.list
	f.mu.Unlock()

	return list(params)
}

func (f *fakeAPI) Import(_ context.Context, filename string, file io.Reader) error {
	content, _ := io.ReadAll(file)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.imports = append(f.imports, filename+":"+string(content))
	return f.importE
}

func (f *fakeAPI) Export(context.Context) (*bytes.Buffer, error) {
	return f.export()
}

func (f *fakeAPI) Calls() []api.ListParams {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]api.ListParams(nil), f.calls...)
}

func pageOf(count int, idList ...int) func(api.ListParams) (api.Page, error) {
	return func(api.ListParams) (api.Page, error) {
		return api.Page{Results: staff(idList...), Count: count}, nil
	}
}

func newList(t *testing.T, fake *fakeAPI) (*directory.List, *notify.Recorder) {
	t.Helper()

	rec := notify.NewRecorder()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return directory.NewList(fake, rec, logger, 10), rec
}

func TestList_Refresh(t *testing.T) {
	t.Parallel()

	fake := &fakeAPI{list: pageOf(25, 1, 2, 3)}
	list, rec := newList(t, fake)

	require.NoError(t, list.Refresh(context.Background()))

	assert.Equal(t, []int{1, 2, 3}, ids(list.View()))
	assert.Equal(t, 25, list.Total())
	assert.Equal(t, 3, list.TotalPages())
	assert.Empty(t, rec.Notices())
	assert.Equal(t, []api.ListParams{{Page: 1, PageSize: 10}}, fake.Calls())
}

func TestList_RefreshRateLimited(t *testing.T) {
	t.Parallel()

	fake := &fakeAPI{list: pageOf(3, 1, 2, 3)}
	list, rec := newList(t, fake)
	require.NoError(t, list.Refresh(context.Background()))

	fake.mu.Lock()
	fake.list = func(api.ListParams) (api.Page, error) {
		return api.Page{}, api.ErrRateLimited
	}
	fake.mu.Unlock()

	err := list.Refresh(context.Background())

	require.ErrorIs(t, err, api.ErrRateLimited)
	assert.Equal(t, []int{1, 2, 3}, ids(list.Collection().Snapshot()))
	assert.Equal(t, 3, list.Total())
	assert.Equal(t, []string{notify.MsgRateLimited}, rec.Texts())
}

func TestList_RefreshFailure(t *testing.T) {
	t.Parallel()

	fake := &fakeAPI{list: func(api.ListParams) (api.Page, error) {
		return api.Page{}, &api.StatusError{Op: api.OpList, Code: 500}
	}}
	list, rec := newList(t, fake)

	require.Error(t, list.Refresh(context.Background()))
	assert.Equal(t, 0, list.Collection().Len())
	assert.Equal(t, []string{notify.MsgLoadFailed}, rec.Texts())
}

func TestList_QueryChangesFetchOnce(t *testing.T) {
	t.Parallel()

	fake := &fakeAPI{list: pageOf(100, 1, 2)}
	list, _ := newList(t, fake)
	ctx := context.Background()
	require.NoError(t, list.Refresh(ctx))

	require.NoError(t, list.SetPage(ctx, 3))
	require.NoError(t, list.SetPage(ctx, 3))
	require.NoError(t, list.NextPage(ctx))
	require.NoError(t, list.SetDepartment(ctx, "engineering"))
	require.NoError(t, list.SetDepartment(ctx, "engineering"))
	require.NoError(t, list.ToggleSort(ctx, models.FieldSalary))
	require.NoError(t, list.ToggleSort(ctx, models.FieldSalary))
	require.NoError(t, list.SetPageSize(ctx, 20))
	require.NoError(t, list.SetPageSize(ctx, 20))

	list.SetSearch("ann")
	require.NoError(t, list.SetStatus("active"))

	assert.Equal(t, []api.ListParams{
		{Page: 1, PageSize: 10},
		{Page: 3, PageSize: 10},
		{Page: 4, PageSize: 10},
		{Page: 1, PageSize: 10, Department: "engineering"},
		{Page: 1, PageSize: 10, Department: "engineering", Ordering: "salary"},
		{Page: 1, PageSize: 10, Department: "engineering", Ordering: "-salary"},
		{Page: 1, PageSize: 20, Department: "engineering", Ordering: "-salary"},
	}, fake.Calls())
}

func TestList_PageBounds(t *testing.T) {
	t.Parallel()

	fake := &fakeAPI{list: pageOf(15, 1)}
	list, _ := newList(t, fake)
	ctx := context.Background()
	require.NoError(t, list.Refresh(ctx))

	require.NoError(t, list.PrevPage(ctx))
	require.NoError(t, list.SetPage(ctx, 99))
	require.NoError(t, list.NextPage(ctx))

	assert.Equal(t, 2, list.Query().Page)
	assert.Len(t, fake.Calls(), 2)
}

func TestList_ClampsPageWhenTotalShrinks(t *testing.T) {
	t.Parallel()

	fake := &fakeAPI{list: pageOf(50, 1)}
	list, _ := newList(t, fake)
	ctx := context.Background()
	require.NoError(t, list.Refresh(ctx))

	fake.mu.Lock()
	fake.list = pageOf(20, 7)
	fake.mu.Unlock()

	require.NoError(t, list.SetPage(ctx, 5))

	assert.Equal(t, 2, list.Query().Page)
	calls := fake.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, 5, calls[1].Page)
	assert.Equal(t, 2, calls[2].Page)
}

func TestList_DiscardsStaleResponses(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	started := make(chan struct{})
	fake := &fakeAPI{list: func(params api.ListParams) (api.Page, error) {
		if params.Ordering == "lastName" {
			close(started)
			<-release
			return api.Page{Results: staff(1, 2), Count: 2}, nil
		}
		return api.Page{Results: staff(8, 9), Count: 2}, nil
	}}
	list, _ := newList(t, fake)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- list.ToggleSort(ctx, models.FieldLastName) }()
	<-started

	require.NoError(t, list.ToggleSort(ctx, models.FieldLastName))
	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, []int{8, 9}, ids(list.View()), "the older response must not overwrite the newer one")
}

func TestList_LocalFilters(t *testing.T) {
	t.Parallel()

	fake := &fakeAPI{list: func(api.ListParams) (api.Page, error) {
		return api.Page{Results: sample(), Count: 3}, nil
	}}
	list, _ := newList(t, fake)
	require.NoError(t, list.Refresh(context.Background()))

	list.SetSearch("zola")
	assert.Equal(t, []int{3}, ids(list.View()))

	list.SetSearch("")
	require.NoError(t, list.SetStatus(string(models.StatusOnLeave)))
	assert.Equal(t, []int{2}, ids(list.View()))

	require.ErrorIs(t, list.SetStatus("retired"), directory.ErrInvalidFilter)
	require.ErrorIs(t, list.SetDepartment(context.Background(), "space"), directory.ErrInvalidFilter)
	require.ErrorIs(t, list.SetPageSize(context.Background(), 0), directory.ErrInvalidPageSize)

	require.NoError(t, list.SetStatus(directory.FilterAll))
	ranked := list.Search("stone")
	require.Len(t, ranked, 1)
	assert.Equal(t, 2, ranked[0].Employee.ID)

	assert.Equal(t, []models.Department{models.DeptEngineering, models.DeptSales}, list.Departments())

	employee, err := list.Employee(3)
	require.NoError(t, err)
	assert.Equal(t, "Zola", employee.LastName)
	_, err = list.Employee(42)
	require.ErrorIs(t, err, directory.ErrEmployeeNotFound)
}

func TestList_Import(t *testing.T) {
	t.Parallel()

	t.Run("success refreshes", func(t *testing.T) {
		t.Parallel()

		fake := &fakeAPI{list: pageOf(1, 1)}
		list, rec := newList(t, fake)

		require.NoError(t, list.Import(context.Background(), "staff.xlsx", strings.NewReader("data")))

		assert.Equal(t, []string{"staff.xlsx:data"}, fake.imports)
		assert.Len(t, fake.Calls(), 1)
		assert.Equal(t, []string{notify.MsgImported}, rec.Texts())
	})

	t.Run("rate limited", func(t *testing.T) {
		t.Parallel()

		fake := &fakeAPI{list: pageOf(1, 1), importE: api.ErrRateLimited}
		list, rec := newList(t, fake)

		require.ErrorIs(t, list.Import(context.Background(), "staff.xlsx", strings.NewReader("")), api.ErrRateLimited)
		assert.Empty(t, fake.Calls())
		assert.Equal(t, []string{notify.MsgRateLimited}, rec.Texts())
	})
}

func TestList_Export(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		fake := &fakeAPI{export: func() (*bytes.Buffer, error) { return bytes.NewBufferString("PK.."), nil }}
		list, rec := newList(t, fake)

		var out bytes.Buffer
		require.NoError(t, list.Export(context.Background(), &out))

		assert.Equal(t, "PK..", out.String())
		assert.Equal(t, []string{notify.MsgExported}, rec.Texts())
	})

	t.Run("failure", func(t *testing.T) {
		t.Parallel()

		fake := &fakeAPI{export: func() (*bytes.Buffer, error) { return nil, errors.New("connection refused") }}
		list, rec := newList(t, fake)

		require.Error(t, list.Export(context.Background(), io.Discard))
		assert.Equal(t, []string{notify.MsgExportFailed}, rec.Texts())
	})
}
