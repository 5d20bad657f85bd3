package web_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/taskboard/internal/application/task"
	"github.com/rezkam/taskboard/internal/domain"
	"github.com/rezkam/taskboard/internal/infrastructure/http/web"
	"github.com/rezkam/taskboard/internal/infrastructure/persistence/sqlite"
)

var now = time.Date(2024, 7, 9, 10, 30, 0, 0, time.UTC)

type fixture struct {
	store  *sqlite.Store
	server *httptest.Server
	client *http.Client
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := sqlite.Open(context.Background(), sqlite.Config{
		Path:        filepath.Join(t.TempDir(), "tasks.db"),
		AutoMigrate: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	h, err := web.NewHandler(task.NewService(store, task.NewValidator(func() time.Time { return now })))
	require.NoError(t, err)

	server := httptest.NewServer(h.Routes())
	t.Cleanup(server.Close)

	client := server.Client()
	client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	return &fixture{store: store, server: server, client: client}
}

func (f *fixture) seed(t *testing.T, title string, status domain.TaskStatus, due string) domain.Task {
	t.Helper()
	tk := &domain.Task{Title: title, Status: status}
	if due != "" {
		d, err := domain.ParseDate(due)
		require.NoError(t, err)
		tk.DueDate = &d
	}
	created, err := f.store.CreateTask(context.Background(), tk)
	require.NoError(t, err)
	return *created
}

func (f *fixture) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := f.client.Get(f.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (f *fixture) post(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := f.client.PostForm(f.server.URL+path, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func flashOf(t *testing.T, resp *http.Response, kind string) string {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	return loc.Query().Get(kind)
}

func id(tk domain.Task) string {
	return strconv.FormatInt(tk.ID, 10)
}

func TestRoot_RedirectsToTasks(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.get(t, "/")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/tasks", resp.Header.Get("Location"))
}

func TestIndex_RendersTasksAndStatistics(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "Late <script> task", domain.TaskStatusPending, "2024-07-01")
	f.seed(t, "Done task", domain.TaskStatusCompleted, "")

	resp, body := f.get(t, "/tasks?success=Saved")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	assert.Contains(t, body, "Late &lt;script&gt; task")
	assert.Contains(t, body, "Done task")
	assert.Contains(t, body, `id="stat-total">2<`)
	assert.Contains(t, body, `id="stat-completed">1<`)
	assert.Contains(t, body, "overdue task(s)")
	assert.Contains(t, body, "Saved")
	assert.Contains(t, body, "Tasks (2 total)")
}

func TestIndex_FiltersOverdue(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "Late task", domain.TaskStatusPending, "2024-07-01")
	f.seed(t, "Future task", domain.TaskStatusPending, "2024-08-01")

	_, body := f.get(t, "/tasks?overdue=1")
	assert.Contains(t, body, "Late task")
	assert.NotContains(t, body, "Future task")
	assert.Contains(t, body, `id="overdue" checked`)
}

func TestIndex_InvalidFiltersShowErrors(t *testing.T) {
	f := newFixture(t)

	resp, body := f.get(t, "/tasks?start_date=2024-07-10&end_date=2024-07-01")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, task.MsgEndBeforeStart)
}

func TestCreate_ShowsForm(t *testing.T) {
	f := newFixture(t)

	resp, body := f.get(t, "/tasks/create")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Create New Task")
	assert.Contains(t, body, `<option value="pending" selected>Pending</option>`)
}

func TestStore_RerendersWithErrors(t *testing.T) {
	f := newFixture(t)

	resp, body := f.post(t, "/tasks", url.Values{"title": {"ab"}, "status": {"pending"}, "description": {"kept"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, task.MsgTitleMin)
	assert.Contains(t, body, "is-invalid")
	assert.Contains(t, body, ">kept</textarea>")
}

func TestStore_RedirectsWithFlash(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.post(t, "/tasks", url.Values{"title": {"New task"}, "status": {"pending"}, "due_date": {"2024-07-20"}})
	assert.Equal(t, web.MsgCreated, flashOf(t, resp, "success"))

	_, body := f.get(t, "/tasks")
	assert.Contains(t, body, "New task")
	assert.Contains(t, body, "Jul 20, 2024")
}

func TestShowAndEdit(t *testing.T) {
	f := newFixture(t)
	tk := f.seed(t, "Visible task", domain.TaskStatusInProgress, "2024-07-20")

	resp, body := f.get(t, "/tasks/"+id(tk))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Visible task")
	assert.Contains(t, body, "In Progress")
	assert.Contains(t, body, "Mark Completed")

	resp, body = f.get(t, "/tasks/"+id(tk)+"/edit")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `value="2024-07-20"`)
	assert.Contains(t, body, `name="_method" value="PUT"`)

	resp, _ = f.get(t, "/tasks/999")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdate_ThroughMethodOverride(t *testing.T) {
	f := newFixture(t)
	tk := f.seed(t, "Old title", domain.TaskStatusPending, "")

	resp, _ := f.post(t, "/tasks/"+id(tk), url.Values{
		"_method": {"PUT"},
		"title":   {"New title"},
		"status":  {"in_progress"},
	})
	assert.Equal(t, web.MsgUpdated, flashOf(t, resp, "success"))

	got, err := f.store.FindTaskByID(context.Background(), tk.ID)
	require.NoError(t, err)
	assert.Equal(t, "New title", got.Title)
	assert.Equal(t, domain.TaskStatusInProgress, got.Status)
}

func TestDestroy(t *testing.T) {
	f := newFixture(t)
	pending := f.seed(t, "Pending task", domain.TaskStatusPending, "")
	active := f.seed(t, "Active task", domain.TaskStatusInProgress, "")

	resp, _ := f.post(t, "/tasks/"+id(pending), url.Values{"_method": {"DELETE"}})
	assert.Equal(t, web.MsgDeleted, flashOf(t, resp, "success"))

	resp, _ = f.post(t, "/tasks/"+id(active), url.Values{"_method": {"DELETE"}})
	assert.Equal(t, task.MsgDeleteInProgress, flashOf(t, resp, "error"))
}

func TestComplete_RedirectsBack(t *testing.T) {
	f := newFixture(t)
	tk := f.seed(t, "Finish me", domain.TaskStatusPending, "")

	req, err := http.NewRequest(http.MethodPost, f.server.URL+"/tasks/"+id(tk)+"/complete",
		strings.NewReader(url.Values{"_method": {"PATCH"}}.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", f.server.URL+"/tasks?status=pending")

	resp, err := f.client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/tasks", loc.Path)
	assert.Equal(t, "pending", loc.Query().Get("status"))
	assert.Equal(t, web.MsgCompleted, loc.Query().Get("success"))

	resp, _ = f.post(t, "/tasks/"+id(tk)+"/complete", url.Values{"_method": {"PATCH"}})
	assert.Equal(t, task.MsgAlreadyCompleted, flashOf(t, resp, "error"))
}

func TestBulk(t *testing.T) {
	f := newFixture(t)
	a := f.seed(t, "Bulk one", domain.TaskStatusPending, "")
	b := f.seed(t, "Bulk two", domain.TaskStatusPending, "")

	resp, _ := f.post(t, "/tasks/bulk-action", url.Values{
		"action":   {"mark_in_progress"},
		"task_ids": {id(a), id(b)},
	})
	assert.NotEmpty(t, flashOf(t, resp, "success"))

	resp, _ = f.post(t, "/tasks/bulk-action", url.Values{
		"action":   {"delete"},
		"task_ids": {id(a), id(b)},
	})
	assert.Equal(t, task.MsgDeleteInProgress, flashOf(t, resp, "error"))

	resp, _ = f.post(t, "/tasks/bulk-action", url.Values{"action": {"delete"}})
	assert.Equal(t, task.MsgTaskIDsRequired, flashOf(t, resp, "error"))
}
