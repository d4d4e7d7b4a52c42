package models

// SearchStats is the single global record of project searches, read by
// the dashboard. Counters only grow; resets are an operational action
// outside the bot.
type SearchStats struct {
	Total      int64            `json:"total"`
	Categories map[string]int64 `json:"categories"`
	LastSearch int64            `json:"last_search,omitempty"`
}

// NewSearchStats returns an empty stats record ready for counting.
func NewSearchStats() *SearchStats {
	return &SearchStats{Categories: make(map[string]int64)}
}
