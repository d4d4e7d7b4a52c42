package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGithub serves a minimal slice of the GitHub listing and raw
// content APIs from one httptest server.
type fakeGithub struct {
	repos map[string][]map[string]any // org -> repo listing
	docs  map[string]string           // "org/repo/branch" -> index.md
}

func (f *fakeGithub) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("GET /orgs/{org}/repos", func(w http.ResponseWriter, r *http.Request) {
		org := r.PathValue("org")
		listing, ok := f.repos[org]
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		// Single page; pagination is covered separately.
		if r.URL.Query().Get("page") != "1" {
			_ = json.NewEncoder(w).Encode([]any{})
			return
		}
		_ = json.NewEncoder(w).Encode(listing)
	})

	mux.HandleFunc("GET /{org}/{repo}/{branch}/index.md", func(w http.ResponseWriter, r *http.Request) {
		key := fmt.Sprintf("%s/%s/%s", r.PathValue("org"), r.PathValue("repo"), r.PathValue("branch"))
		doc, ok := f.docs[key]
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		fmt.Fprint(w, doc)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testFetcher(srv *httptest.Server) *Fetcher {
	return NewFetcher(FetcherConfig{
		APIBaseURL: srv.URL,
		RawBaseURL: srv.URL,
		HTTPClient: srv.Client(),
	})
}

func indexDoc(title, projectType string, level int) string {
	return fmt.Sprintf("---\ntitle: %s\ntype: %s\nlevel: %d\ntags: security\n---\nbody\n", title, projectType, level)
}

func TestFetchAll_CollectsProjectRepos(t *testing.T) {
	gh := &fakeGithub{
		repos: map[string][]map[string]any{
			"OWASP": {
				{"name": "www-project-zap", "stargazers_count": 12000},
				{"name": "owasp.github.io", "stargazers_count": 50},
				{"name": "www-project-juice-shop", "stargazers_count": 9000},
			},
		},
		docs: map[string]string{
			"OWASP/www-project-zap/main":        indexDoc("OWASP ZAP", "tool", 4),
			"OWASP/www-project-juice-shop/main": indexDoc("OWASP Juice Shop", "tool", 4),
		},
	}
	fetcher := testFetcher(gh.server(t))

	projects := fetcher.FetchAll(context.Background(), []string{"OWASP"})

	require.Len(t, projects, 2, "non-project repos must be ignored")
	assert.Equal(t, "OWASP ZAP", projects[0].Title)
	assert.Equal(t, "https://owasp.org/project-zap/", projects[0].URL)
	assert.Equal(t, "https://github.com/OWASP/www-project-zap", projects[0].GithubURL)
	assert.Equal(t, 12000, projects[0].Stars)
	assert.Equal(t, "www-project-zap", projects[0].Repo)
	assert.Equal(t, "OWASP Juice Shop", projects[1].Title, "listing order must be preserved")
}

func TestFetchAll_MasterBranchFallback(t *testing.T) {
	gh := &fakeGithub{
		repos: map[string][]map[string]any{
			"OWASP": {{"name": "www-project-legacy", "stargazers_count": 10}},
		},
		docs: map[string]string{
			"OWASP/www-project-legacy/master": indexDoc("Legacy Project", "documentation", 2),
		},
	}
	fetcher := testFetcher(gh.server(t))

	projects := fetcher.FetchAll(context.Background(), []string{"OWASP"})

	require.Len(t, projects, 1)
	assert.Equal(t, "Legacy Project", projects[0].Title)
}

func TestFetchAll_SkipsRepoWithoutFrontMatter(t *testing.T) {
	gh := &fakeGithub{
		repos: map[string][]map[string]any{
			"OWASP": {
				{"name": "www-project-bare", "stargazers_count": 1},
				{"name": "www-project-good", "stargazers_count": 2},
			},
		},
		docs: map[string]string{
			"OWASP/www-project-bare/main": "# No front matter here\n",
			"OWASP/www-project-good/main": indexDoc("Good Project", "tool", 1),
		},
	}
	fetcher := testFetcher(gh.server(t))

	projects := fetcher.FetchAll(context.Background(), []string{"OWASP"})

	require.Len(t, projects, 1)
	assert.Equal(t, "Good Project", projects[0].Title)
}

func TestFetchAll_SkipsMissingIndexDoc(t *testing.T) {
	gh := &fakeGithub{
		repos: map[string][]map[string]any{
			"OWASP": {{"name": "www-project-ghost", "stargazers_count": 0}},
		},
	}
	fetcher := testFetcher(gh.server(t))

	projects := fetcher.FetchAll(context.Background(), []string{"OWASP"})
	assert.Empty(t, projects)
}

func TestFetchAll_SkipsFailingOrg(t *testing.T) {
	gh := &fakeGithub{
		repos: map[string][]map[string]any{
			"OWASP": {{"name": "www-project-zap", "stargazers_count": 5}},
		},
		docs: map[string]string{
			"OWASP/www-project-zap/main": indexDoc("OWASP ZAP", "tool", 4),
		},
	}
	fetcher := testFetcher(gh.server(t))

	// "nonexistent" 404s at the listing level; the scan continues.
	projects := fetcher.FetchAll(context.Background(), []string{"nonexistent", "OWASP"})

	require.Len(t, projects, 1)
	assert.Equal(t, "OWASP ZAP", projects[0].Title)
}

func TestListRepos_Paginates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /orgs/OWASP/repos", func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		switch page {
		case "1":
			full := make([]map[string]any, reposPerPage)
			for i := range full {
				full[i] = map[string]any{"name": fmt.Sprintf("repo-%d", i)}
			}
			_ = json.NewEncoder(w).Encode(full)
		case "2":
			_ = json.NewEncoder(w).Encode([]map[string]any{{"name": "last-repo"}})
		default:
			t.Errorf("unexpected page %q requested", page)
			_ = json.NewEncoder(w).Encode([]any{})
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	fetcher := testFetcher(srv)
	repos, err := fetcher.listRepos(context.Background(), "OWASP")
	require.NoError(t, err)
	assert.Len(t, repos, reposPerPage+1)
	assert.Equal(t, "last-repo", repos[reposPerPage].Name)
}
