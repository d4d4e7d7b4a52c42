// Package stats keeps approximate search counters for the dashboard.
package stats

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/owasp-blt/lettuce/internal/kv"
	"github.com/owasp-blt/lettuce/pkg/models"
)

const statsKey = "stats:searches"

// Recorder maintains the single global SearchStats record with
// read-modify-write round trips. Racing increments may lose a count;
// the dashboard only needs approximate numbers.
type Recorder struct {
	kv kv.Store

	now func() time.Time
}

// NewRecorder creates a Recorder over the given store.
func NewRecorder(store kv.Store) *Recorder {
	return &Recorder{kv: store, now: time.Now}
}

// Record counts one finished search for the classification tag.
func (r *Recorder) Record(ctx context.Context, tag string) error {
	stats, err := r.Get(ctx)
	if err != nil {
		return err
	}

	stats.Total++
	stats.Categories[tag]++
	stats.LastSearch = r.now().Unix()

	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal search stats: %w", err)
	}
	// Stats never expire; reset is an operational action.
	return r.kv.Put(ctx, statsKey, data, 0)
}

// Get loads the stats record, returning an empty one when none exists.
func (r *Recorder) Get(ctx context.Context) (*models.SearchStats, error) {
	data, ok, err := r.kv.Get(ctx, statsKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return models.NewSearchStats(), nil
	}

	var stats models.SearchStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("unmarshal search stats: %w", err)
	}
	if stats.Categories == nil {
		stats.Categories = make(map[string]int64)
	}
	return &stats, nil
}
