package github_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"portfolio/config"
	"portfolio/github"
	"portfolio/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	projects map[int64]models.Project
	fail     int64
}

func (m *memoryStore) UpsertGitHubProject(_ context.Context, p models.Project) (bool, error) {
	if *p.GitHubId == m.fail {
		return false, errors.New("database is locked")
	}
	_, exists := m.projects[*p.GitHubId]
	m.projects[*p.GitHubId] = p
	return !exists, nil
}

const pageOne = `{"total_count":3,"incomplete_results":false,"items":[
 {"id":1,"name":"scoreboard","full_name":"dana/scoreboard","html_url":"https://github.com/dana/scoreboard","description":"Live football scores","language":"Go","topics":["portfolio","go"]},
 {"id":2,"name":"notes","full_name":"dana/notes","html_url":"https://github.com/dana/notes","description":null,"language":null,"topics":["portfolio"]}
]}`

const pageTwo = `{"total_count":3,"incomplete_results":false,"items":[
 {"id":3,"name":"broken","full_name":"dana/broken","html_url":"https://github.com/dana/broken"}
]}`

func newServer(t *testing.T, queries *[]string) *httptest.Server {
	t.Helper()
	var ts *httptest.Server
	ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/repositories" {
			http.NotFound(w, r)
			return
		}
		*queries = append(*queries, r.URL.Query().Get("q"))
		assert.Equal(t, "updated", r.URL.Query().Get("sort"))
		assert.Equal(t, "desc", r.URL.Query().Get("order"))

		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, pageTwo)
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<%s/search/repositories?page=2>; rel="next"`, ts.URL))
		fmt.Fprint(w, pageOne)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestSync(t *testing.T) {
	var queries []string
	ts := newServer(t, &queries)

	store := &memoryStore{projects: map[int64]models.Project{2: {Name: "notes"}}, fail: 3}
	syncer, err := github.NewSyncer(context.Background(), config.TomlGitHub{
		Username: "dana",
		Topic:    "portfolio",
		BaseURL:  ts.URL,
	}, store)
	require.NoError(t, err)

	summary, err := syncer.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Found)
	assert.Equal(t, 1, summary.Added)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, []string{"user:dana topic:portfolio", "user:dana topic:portfolio"}, queries)

	scoreboard := store.projects[1]
	assert.Equal(t, "scoreboard", scoreboard.Name)
	assert.Equal(t, "Live football scores", scoreboard.Description)
	assert.Equal(t, "https://github.com/dana/scoreboard", scoreboard.URL)
	assert.Equal(t, "https://github.com/dana/scoreboard", scoreboard.GitHubURL)
	assert.Equal(t, "Go, portfolio, go", scoreboard.Technologies)

	notes := store.projects[2]
	assert.Equal(t, "No description available", notes.Description)
	assert.Equal(t, "portfolio", notes.Technologies)
}

func TestSyncWithoutUsername(t *testing.T) {
	syncer, err := github.NewSyncer(context.Background(), config.TomlGitHub{BaseURL: "http://127.0.0.1:1"}, &memoryStore{})
	require.NoError(t, err)

	summary, err := syncer.Sync(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Found)
}

func TestSyncSearchError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"message":"Validation Failed"}`)
	}))
	defer ts.Close()

	syncer, err := github.NewSyncer(context.Background(), config.TomlGitHub{Username: "dana", BaseURL: ts.URL}, &memoryStore{})
	require.NoError(t, err)

	_, err = syncer.Sync(context.Background())
	assert.Error(t, err)
}
