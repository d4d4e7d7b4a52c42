// Package catalog discovers OWASP project metadata on GitHub and keeps
// a TTL-bounded copy of it in the key-value store.
package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/owasp-blt/lettuce/pkg/models"
)

const (
	defaultAPIBaseURL = "https://api.github.com"
	defaultRawBaseURL = "https://raw.githubusercontent.com"
	userAgent         = "owasp-blt-lettuce"

	// repoPrefix marks repositories that carry a project site.
	repoPrefix = "www-project-"

	reposPerPage       = 100
	defaultConcurrency = 8
)

// Source is the boundary the cache pulls fresh catalogs from.
type Source interface {
	// FetchAll returns every project discoverable across orgs. Partial
	// failures are skipped, never surfaced: the result is whatever
	// could be collected.
	FetchAll(ctx context.Context, orgs []string) []models.ProjectRecord
}

// FetcherConfig configures a Fetcher. Zero values pick the public
// GitHub endpoints and defaults.
type FetcherConfig struct {
	APIBaseURL  string
	RawBaseURL  string
	Token       string // optional bearer token for API rate limits
	HTTPClient  *http.Client
	Concurrency int
}

// Fetcher lists an organization's public repositories and parses each
// project repository's index.md front matter into a ProjectRecord.
type Fetcher struct {
	apiBase     string
	rawBase     string
	token       string
	client      *http.Client
	concurrency int
}

// NewFetcher creates a Fetcher.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	f := &Fetcher{
		apiBase:     strings.TrimSuffix(cfg.APIBaseURL, "/"),
		rawBase:     strings.TrimSuffix(cfg.RawBaseURL, "/"),
		token:       cfg.Token,
		client:      cfg.HTTPClient,
		concurrency: cfg.Concurrency,
	}
	if f.apiBase == "" {
		f.apiBase = defaultAPIBaseURL
	}
	if f.rawBase == "" {
		f.rawBase = defaultRawBaseURL
	}
	if f.client == nil {
		f.client = &http.Client{Timeout: 30 * time.Second}
	}
	if f.concurrency <= 0 {
		f.concurrency = defaultConcurrency
	}
	return f
}

// repoInfo is the slice of the GitHub repository listing we care about.
type repoInfo struct {
	Name  string `json:"name"`
	Stars int    `json:"stargazers_count"`
}

// FetchAll implements Source. One bad repository or organization never
// aborts the scan; failures are logged and skipped.
func (f *Fetcher) FetchAll(ctx context.Context, orgs []string) []models.ProjectRecord {
	var projects []models.ProjectRecord
	for _, org := range orgs {
		repos, err := f.listRepos(ctx, org)
		if err != nil {
			log.Warn().Err(err).Str("org", org).Msg("Skipping organization, repository listing failed")
			continue
		}

		var candidates []repoInfo
		for _, repo := range repos {
			if strings.HasPrefix(repo.Name, repoPrefix) {
				candidates = append(candidates, repo)
			}
		}

		// Fetch description documents concurrently, but keep the
		// listing order: the matcher treats catalog order as rank.
		results := make([]*models.ProjectRecord, len(candidates))
		var mu sync.Mutex

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(f.concurrency)
		for i, repo := range candidates {
			g.Go(func() error {
				record, err := f.fetchProject(gctx, org, repo)
				if err != nil {
					log.Debug().Err(err).Str("repo", repo.Name).Msg("Skipping repository")
					return nil
				}
				mu.Lock()
				results[i] = record
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait() // workers never return errors

		for _, record := range results {
			if record != nil {
				projects = append(projects, *record)
			}
		}
		log.Info().Str("org", org).Int("repos", len(candidates)).Int("projects", len(projects)).Msg("Organization scan complete")
	}
	return projects
}

// listRepos pages through an organization's public repositories.
func (f *Fetcher) listRepos(ctx context.Context, org string) ([]repoInfo, error) {
	var all []repoInfo
	for page := 1; ; page++ {
		url := fmt.Sprintf("%s/orgs/%s/repos?per_page=%d&type=public&page=%d", f.apiBase, org, reposPerPage, page)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/vnd.github.v3+json")
		req.Header.Set("User-Agent", userAgent)
		if f.token != "" {
			req.Header.Set("Authorization", "Bearer "+f.token)
		}

		resp, err := f.client.Do(req)
		if err != nil {
			return nil, err
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("list repos for %s: status %d", org, resp.StatusCode)
		}

		var repos []repoInfo
		if err := json.Unmarshal(body, &repos); err != nil {
			return nil, fmt.Errorf("decode repo listing for %s: %w", org, err)
		}
		all = append(all, repos...)
		if len(repos) < reposPerPage {
			return all, nil
		}
	}
}

// fetchProject retrieves and parses one repository's index.md, trying
// the main branch first and falling back to master.
func (f *Fetcher) fetchProject(ctx context.Context, org string, repo repoInfo) (*models.ProjectRecord, error) {
	content, err := f.fetchIndexDoc(ctx, org, repo.Name, "main")
	if err != nil {
		content, err = f.fetchIndexDoc(ctx, org, repo.Name, "master")
	}
	if err != nil {
		return nil, err
	}

	meta, ok := ParseFrontMatter(content)
	if !ok {
		return nil, fmt.Errorf("%s: no usable front matter", repo.Name)
	}

	return &models.ProjectRecord{
		Title:     meta.Title,
		Pitch:     meta.Pitch,
		Level:     meta.Level,
		Type:      meta.Type,
		Tags:      meta.Tags,
		URL:       fmt.Sprintf("https://owasp.org/%s/", strings.TrimPrefix(repo.Name, "www-")),
		GithubURL: fmt.Sprintf("https://github.com/%s/%s", org, repo.Name),
		Stars:     repo.Stars,
		Repo:      repo.Name,
	}, nil
}

func (f *Fetcher) fetchIndexDoc(ctx context.Context, org, repo, branch string) (string, error) {
	url := fmt.Sprintf("%s/%s/%s/%s/index.md", f.rawBase, org, repo, branch)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s@%s/index.md: status %d", repo, branch, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
