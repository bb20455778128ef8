package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"portfolio/assistant"
	"portfolio/auth"
	"portfolio/config"
	"portfolio/db"
	"portfolio/models"
	"portfolio/query"
	"portfolio/scheduler"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type fakeRefresher struct {
	summary models.IngestSummary
	err     error
	runs    int
}

func (f *fakeRefresher) Run(context.Context) (models.IngestSummary, error) {
	f.runs++
	return f.summary, f.err
}

type fakeSyncer struct{}

func (fakeSyncer) Sync(context.Context) (models.SyncSummary, error) {
	return models.SyncSummary{Found: 2, Added: 1, Updated: 1}, nil
}

type fakeScheduler struct {
	resets []string
	next   time.Time
}

func (f *fakeScheduler) Running() bool { return true }

func (f *fakeScheduler) Status() []models.JobStatus {
	return []models.JobStatus{{Id: "blogs", NextRun: &f.next, Interval: "3 days"}}
}

func (f *fakeScheduler) Reset(id string) (time.Time, error) {
	if id != "blogs" && id != "projects" {
		return time.Time{}, scheduler.ErrUnknownJob
	}
	f.resets = append(f.resets, id)
	return f.next, nil
}

type fakeAssistant struct{}

func (fakeAssistant) Chat(_ context.Context, sessionId, message string) (models.ChatMessage, error) {
	if strings.TrimSpace(message) == "" {
		return models.ChatMessage{}, assistant.ErrEmptyMessage
	}
	return models.ChatMessage{SessionId: sessionId, Message: message, Response: "echo: " + message}, nil
}

func (fakeAssistant) AskCV(_ context.Context, question string, _ bool) (string, error) {
	return "cv: " + question, nil
}

func (fakeAssistant) DraftBlog(context.Context, models.BlogRequest) (models.BlogDraft, error) {
	return models.BlogDraft{}, assistant.ErrUnavailable
}

// scriptedGenerator answers every conversation with the same reply
type scriptedGenerator struct {
	reply string
	err   error
}

func (g scriptedGenerator) Generate(context.Context, []llms.MessageContent) (string, error) {
	return g.reply, g.err
}

type testServer struct {
	app       *fiber.App
	store     *db.DB
	blogs     *fakeRefresher
	scheduler *fakeScheduler
	bc        *Broadcaster
	token     string
	uploads   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWith(t, fakeAssistant{})
}

func newTestServerWith(t *testing.T, a Assistant) *testServer {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "server.db")
	require.NoError(t, db.Migrate(path))
	store, err := db.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	manager := auth.NewJWTManager("hunter2", "secret", time.Hour)
	token, _, err := manager.GenerateToken()
	require.NoError(t, err)

	uploads := filepath.Join(dir, "uploads")
	require.NoError(t, os.MkdirAll(uploads, 0o755))

	ts := &testServer{
		store:     store,
		blogs:     &fakeRefresher{summary: models.IngestSummary{Kind: models.KindBlog, Added: 3}},
		scheduler: &fakeScheduler{next: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)},
		bc:        NewBroadcaster(),
		token:     token,
		uploads:   uploads,
	}
	ts.app = Server(&ServerConfig{
		Store:         store,
		Blogs:         ts.blogs,
		Tools:         &fakeRefresher{summary: models.IngestSummary{Kind: models.KindTool}},
		Projects:      fakeSyncer{},
		Scheduler:     ts.scheduler,
		Assistant:     a,
		Auth:          manager,
		Broadcaster:   ts.bc,
		CorsOrigins:   []string{"http://localhost:3000"},
		UploadsDir:    uploads,
		MaxUploadSize: 1024,
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any, authed bool) (int, Response) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+ts.token)
	}
	return ts.send(t, req)
}

func (ts *testServer) send(t *testing.T, req *http.Request) (int, Response) {
	t.Helper()
	resp, err := ts.app.Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

// decode re-marshals the generic data of a response into v
func decode(t *testing.T, data any, v any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, v))
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	status, resp := ts.do(t, http.MethodGet, "/healthz", nil, false)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, resp.Success)
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)
	status, resp := ts.do(t, http.MethodGet, "/api/v1/nothing", nil, false)
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, resp.Success)
}

func TestPublicNewsList(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	for _, item := range []models.ContentItem{
		{Kind: models.KindBlog, Title: "Transformers explained", Category: "ML", Published: true},
		{Kind: models.KindBlog, Title: "Policy roundup", Category: "Policy", Published: true},
		{Kind: models.KindBlog, Title: "Draft transformer notes", Category: "ML", Published: false},
		{Kind: models.KindTool, Title: "Transformer playground", Category: "ML", Published: true},
	} {
		_, err := ts.store.CreateContent(ctx, item)
		require.NoError(t, err)
	}

	tests := []struct {
		path     string
		expected []string
	}{
		{"/api/v1/news/list", []string{"Policy roundup", "Transformers explained"}},
		{"/api/v1/news/list?category=ML", []string{"Transformers explained"}},
		{"/api/v1/news/list?q=TRANSFORMER", []string{"Transformers explained"}},
		{"/api/v1/news/list?limit=1", []string{"Policy roundup"}},
		{"/api/v1/news/list?limit=500", []string{"Policy roundup", "Transformers explained"}},
		{"/api/v1/tools/list?q=playground", []string{"Transformer playground"}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			status, resp := ts.do(t, http.MethodGet, tt.path, nil, false)
			require.Equal(t, http.StatusOK, status)

			var items []models.ContentItem
			decode(t, resp.Data, &items)
			titles := make([]string, len(items))
			for i, item := range items {
				titles[i] = item.Title
			}
			assert.ElementsMatch(t, tt.expected, titles)
		})
	}
}

func TestContactSubmit(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		body   map[string]string
		status int
	}{
		{"valid", map[string]string{"name": "Ada", "email": "ada@example.com", "message": "Hello"}, http.StatusOK},
		{"missing name", map[string]string{"email": "ada@example.com", "message": "Hello"}, http.StatusBadRequest},
		{"bad email", map[string]string{"name": "Ada", "email": "ada", "message": "Hello"}, http.StatusBadRequest},
		{"blank message", map[string]string{"name": "Ada", "email": "ada@example.com", "message": "  "}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := ts.do(t, http.MethodPost, "/api/v1/contact/submit", tt.body, false)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.status == http.StatusOK, resp.Success)
		})
	}
}

func TestChatAndCV(t *testing.T) {
	ts := newTestServer(t)

	status, resp := ts.do(t, http.MethodPost, "/api/v1/chat/send", map[string]string{"message": "hi", "session_id": "s1"}, false)
	require.Equal(t, http.StatusOK, status)
	var chat map[string]string
	decode(t, resp.Data, &chat)
	assert.Equal(t, "echo: hi", chat["response"])
	assert.Equal(t, "s1", chat["session_id"])

	status, _ = ts.do(t, http.MethodPost, "/api/v1/chat/send", map[string]string{"message": ""}, false)
	assert.Equal(t, http.StatusBadRequest, status)

	status, resp = ts.do(t, http.MethodPost, "/api/v1/cv/query", map[string]any{"question": "skills?"}, false)
	require.Equal(t, http.StatusOK, status)
	var cv map[string]string
	decode(t, resp.Data, &cv)
	assert.Equal(t, "cv: skills?", cv["answer"])
}

func TestAdminRequiresSession(t *testing.T) {
	ts := newTestServer(t)

	status, resp := ts.do(t, http.MethodGet, "/api/v1/admin/tools", nil, false)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, resp.Success)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/tools", nil)
	req.Header.Set("Authorization", "Bearer nonsense")
	status, _ = ts.send(t, req)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = ts.do(t, http.MethodGet, "/api/v1/admin/tools", nil, true)
	assert.Equal(t, http.StatusOK, status)
}

func TestLoginCookie(t *testing.T) {
	ts := newTestServer(t)

	status, _ := ts.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"password": "wrong"}, false)
	assert.Equal(t, http.StatusUnauthorized, status)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"password":"hunter2"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := ts.app.Test(req, 5000)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == cookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/scheduler", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: cookie.Value})
	status, body := ts.send(t, req)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, body.Success)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/extend-session", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: cookie.Value})
	status, _ = ts.send(t, req)
	assert.Equal(t, http.StatusOK, status)
}

func TestAdminContentCRUD(t *testing.T) {
	ts := newTestServer(t)

	status, resp := ts.do(t, http.MethodPost, "/api/v1/admin/tools", map[string]any{
		"title": "Notebook", "url": "https://notebook.example", "content": "Runs notebooks", "pricing": "Free",
	}, true)
	require.Equal(t, http.StatusCreated, status)
	var created models.ContentItem
	decode(t, resp.Data, &created)
	assert.NotZero(t, created.Id)
	assert.Equal(t, models.KindTool, created.Kind)
	assert.Equal(t, "Other", created.Category)
	assert.True(t, created.Published)

	status, _ = ts.do(t, http.MethodPost, "/api/v1/admin/tools", map[string]any{"title": " "}, true)
	assert.Equal(t, http.StatusBadRequest, status)

	path := "/api/v1/admin/tools/" + jsonNumber(created.Id)
	status, resp = ts.do(t, http.MethodPut, path, map[string]any{"featured": true, "category": "Development & Code"}, true)
	require.Equal(t, http.StatusOK, status)
	var updated models.ContentItem
	decode(t, resp.Data, &updated)
	assert.Equal(t, "Notebook", updated.Title)
	assert.Equal(t, "Free", updated.Pricing)
	assert.True(t, updated.Featured)
	assert.Equal(t, "Development & Code", updated.Category)

	// The blog collection does not see tools
	status, _ = ts.do(t, http.MethodPut, "/api/v1/admin/blogs/"+jsonNumber(created.Id), map[string]any{"title": "x"}, true)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = ts.do(t, http.MethodDelete, path, nil, true)
	assert.Equal(t, http.StatusOK, status)
	status, _ = ts.do(t, http.MethodDelete, path, nil, true)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = ts.do(t, http.MethodDelete, "/api/v1/admin/tools/abc", nil, true)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAdminProjects(t *testing.T) {
	ts := newTestServer(t)

	status, resp := ts.do(t, http.MethodPost, "/api/v1/admin/projects", map[string]any{"name": "Scoreboard", "category": "Web"}, true)
	require.Equal(t, http.StatusCreated, status)
	var created models.Project
	decode(t, resp.Data, &created)

	status, _ = ts.do(t, http.MethodPut, "/api/v1/admin/projects/"+jsonNumber(created.Id), map[string]any{"description": "Live scores"}, true)
	require.Equal(t, http.StatusOK, status)

	status, resp = ts.do(t, http.MethodGet, "/api/v1/projects/list", nil, false)
	require.Equal(t, http.StatusOK, status)
	var projects []models.Project
	decode(t, resp.Data, &projects)
	require.Len(t, projects, 1)
	assert.Equal(t, "Live scores", projects[0].Description)
	assert.Equal(t, "Scoreboard", projects[0].Name)

	status, resp = ts.do(t, http.MethodPost, "/api/v1/admin/sync-projects", nil, true)
	require.Equal(t, http.StatusOK, status)
	var summary models.SyncSummary
	decode(t, resp.Data, &summary)
	assert.Equal(t, 2, summary.Found)
}

func TestRefreshBlogs(t *testing.T) {
	ts := newTestServer(t)
	events := make(chan models.IngestEvent, 1)
	ts.bc.AddClient("dashboard", events)

	status, resp := ts.do(t, http.MethodPost, "/api/v1/admin/refresh-blogs", nil, true)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, ts.blogs.runs)
	assert.Equal(t, []string{"blogs"}, ts.scheduler.resets)

	var data struct {
		Summary     models.IngestSummary `json:"summary"`
		NextRunTime time.Time            `json:"next_run_time"`
	}
	decode(t, resp.Data, &data)
	assert.Equal(t, 3, data.Summary.Added)
	assert.True(t, ts.scheduler.next.Equal(data.NextRunTime))

	select {
	case event := <-events:
		assert.Equal(t, "manual", event.Trigger)
		assert.Equal(t, 3, event.Summary.Added)
	default:
		t.Fatal("no event broadcast")
	}
}

func TestRefreshBlogsFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.blogs.err = context.Canceled

	status, resp := ts.do(t, http.MethodPost, "/api/v1/admin/refresh-blogs", nil, true)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
	assert.Empty(t, ts.scheduler.resets)
}

func TestSchedulerEndpoints(t *testing.T) {
	ts := newTestServer(t)

	status, resp := ts.do(t, http.MethodGet, "/api/v1/admin/scheduler", nil, true)
	require.Equal(t, http.StatusOK, status)
	var data struct {
		Running bool               `json:"running"`
		Jobs    []models.JobStatus `json:"jobs"`
	}
	decode(t, resp.Data, &data)
	assert.True(t, data.Running)
	require.Len(t, data.Jobs, 1)
	assert.Equal(t, "3 days", data.Jobs[0].Interval)

	status, _ = ts.do(t, http.MethodPost, "/api/v1/admin/scheduler/projects/reset", nil, true)
	assert.Equal(t, http.StatusOK, status)
	status, _ = ts.do(t, http.MethodPost, "/api/v1/admin/scheduler/nope/reset", nil, true)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestStatsAndDeleteAllBlogs(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	for _, title := range []string{"a", "b"} {
		_, err := ts.store.CreateContent(ctx, models.ContentItem{Kind: models.KindBlog, Title: title, Category: "ML", Published: true})
		require.NoError(t, err)
	}

	status, resp := ts.do(t, http.MethodGet, "/api/v1/admin/stats", nil, true)
	require.Equal(t, http.StatusOK, status)
	var stats struct {
		Blogs      map[string]int `json:"blogs"`
		TotalBlogs int            `json:"total_blogs"`
	}
	decode(t, resp.Data, &stats)
	assert.Equal(t, map[string]int{"ML": 2}, stats.Blogs)
	assert.Equal(t, 2, stats.TotalBlogs)

	status, resp = ts.do(t, http.MethodDelete, "/api/v1/admin/blogs", nil, true)
	require.Equal(t, http.StatusOK, status)
	var removed map[string]int
	decode(t, resp.Data, &removed)
	assert.Equal(t, 2, removed["removed"])
}

func uploadRequest(t *testing.T, filename string, content []byte, token string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/upload-image", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestUploadImage(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name     string
		filename string
		size     int
		status   int
	}{
		{"png", "avatar.PNG", 100, http.StatusOK},
		{"webp", "cover.webp", 100, http.StatusOK},
		{"wrong type", "script.sh", 100, http.StatusBadRequest},
		{"too large", "huge.jpg", 2048, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := ts.send(t, uploadRequest(t, tt.filename, bytes.Repeat([]byte("x"), tt.size), ts.token))
			require.Equal(t, tt.status, status)
			if tt.status != http.StatusOK {
				return
			}

			var data map[string]string
			decode(t, resp.Data, &data)
			name := strings.TrimPrefix(data["url"], "/uploads/")
			assert.Equal(t, strings.ToLower(filepath.Ext(tt.filename)), filepath.Ext(name))

			stored, err := os.ReadFile(filepath.Join(ts.uploads, name))
			require.NoError(t, err)
			assert.Len(t, stored, tt.size)
		})
	}
}

func TestBroadcaster(t *testing.T) {
	bc := NewBroadcaster()
	fast := make(chan models.IngestEvent, 1)
	full := make(chan models.IngestEvent)
	bc.AddClient("fast", fast)
	bc.AddClient("full", full)
	assert.Equal(t, 2, bc.Count())

	// A client that cannot keep up is skipped
	bc.Broadcast(models.IngestEvent{Trigger: "scheduled"})
	assert.Equal(t, "scheduled", (<-fast).Trigger)

	bc.RemoveClient("full")
	bc.RemoveClient("unknown")
	assert.Equal(t, 1, bc.Count())
	_, open := <-full
	assert.False(t, open)

	bc.Shutdown()
	assert.Zero(t, bc.Count())
	_, open = <-fast
	assert.False(t, open)
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("secret detail") })
	app.Get("/teapot", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })

	tests := []struct {
		path    string
		status  int
		message string
	}{
		{"/boom", http.StatusInternalServerError, "Internal server error"},
		{"/teapot", http.StatusTeapot, "short and stout"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.NoError(t, err)
			var out Response
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.message, out.Error)
		})
	}
}

func jsonNumber(id int64) string {
	data, _ := json.Marshal(id)
	return string(data)
}

func TestGenerateAndSaveBlog(t *testing.T) {
	reply := "# Running Go at the edge\n\nI moved our services to small edge nodes last year.\n\n## Lessons\n\nKeep binaries small."
	ts := newTestServerWith(t, assistant.New(config.TomlLLM{Persona: "You are the owner."}, scriptedGenerator{reply: reply}, nil))

	status, _ := ts.do(t, http.MethodPost, "/api/v1/admin/generate-blog", map[string]any{"topic": "Edge"}, false)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = ts.do(t, http.MethodPost, "/api/v1/admin/generate-blog", map[string]any{"topic": "Edge"}, true)
	assert.Equal(t, http.StatusBadRequest, status)

	status, resp := ts.do(t, http.MethodPost, "/api/v1/admin/generate-blog", map[string]any{
		"topic": "Go at the edge", "category": "Cloud", "tone": "casual", "length": "short",
	}, true)
	require.Equal(t, http.StatusOK, status)
	var draft models.BlogDraft
	decode(t, resp.Data, &draft)
	assert.Equal(t, "Running Go at the edge", draft.Title)
	assert.Equal(t, "I moved our services to small edge nodes last year.", draft.Excerpt)
	assert.Equal(t, reply, draft.Content)
	assert.Equal(t, "Cloud", draft.Category)

	// Generating stores nothing
	blogs, err := ts.store.ListContent(context.Background(), models.KindBlog, query.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, blogs)

	status, resp = ts.do(t, http.MethodPost, "/api/v1/admin/save-generated-blog", draft, true)
	require.Equal(t, http.StatusCreated, status)
	var saved models.ContentItem
	decode(t, resp.Data, &saved)
	assert.NotZero(t, saved.Id)
	assert.Equal(t, models.KindBlog, saved.Kind)
	assert.Equal(t, "AI Generated", saved.Source)
	assert.Equal(t, "Running Go at the edge", saved.Title)
	assert.Equal(t, reply, saved.Body)
	assert.True(t, saved.Published)
	assert.False(t, saved.AutoFetched)

	stored, err := ts.store.GetContent(context.Background(), models.KindBlog, saved.Id)
	require.NoError(t, err)
	assert.Equal(t, "Cloud", stored.Category)
	assert.Equal(t, draft.Excerpt, stored.Excerpt)

	status, _ = ts.do(t, http.MethodPost, "/api/v1/admin/save-generated-blog", map[string]any{"title": "Empty"}, true)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGenerateBlogFailures(t *testing.T) {
	body := map[string]any{"topic": "Go", "category": "Software"}

	tests := []struct {
		name      string
		assistant Assistant
		status    int
	}{
		{"no model configured", fakeAssistant{}, http.StatusServiceUnavailable},
		{"model fails", assistant.New(config.TomlLLM{}, scriptedGenerator{err: errors.New("all models failed")}, nil), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServerWith(t, tt.assistant)
			status, resp := ts.do(t, http.MethodPost, "/api/v1/admin/generate-blog", body, true)
			assert.Equal(t, tt.status, status)
			assert.False(t, resp.Success)
		})
	}
}
