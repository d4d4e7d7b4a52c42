// Package models contains domain models for lettuce.
package models

// ProjectRecord is a single OWASP project discovered from a source
// repository's index.md front matter. Records are immutable once built;
// a fresh catalog fetch produces a fresh set.
type ProjectRecord struct {
	Title     string   `json:"title"`
	Pitch     string   `json:"pitch,omitempty"`
	Level     int      `json:"level"`
	Type      string   `json:"type,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	URL       string   `json:"url"`
	GithubURL string   `json:"github_url"`
	Stars     int      `json:"stars"`
	Repo      string   `json:"repo"`
}

// Catalog is the complete set of discovered projects plus its fetch
// timestamp. A catalog is stored whole or not at all; refreshes replace
// it wholesale, never merge into it.
type Catalog struct {
	FetchedAt int64           `json:"timestamp"`
	Projects  []ProjectRecord `json:"projects"`
}
