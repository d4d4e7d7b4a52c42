// Package conversation persists per-user flowchart conversation state.
package conversation

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/owasp-blt/lettuce/internal/flowchart"
	"github.com/owasp-blt/lettuce/internal/kv"
	"github.com/owasp-blt/lettuce/pkg/models"
)

const keyPrefix = "conversation:"

// DefaultTTL is the inactivity window after which a conversation is
// dropped by store-level expiry.
const DefaultTTL = time.Hour

// Store keeps one ConversationState per user in the key-value store.
// Writes are read-merge-write over the whole record with a sliding TTL;
// concurrent answers from the same user may race and the last writer
// wins, which the domain tolerates.
type Store struct {
	kv  kv.Store
	ttl time.Duration

	now func() time.Time
}

// NewStore creates a conversation store with the given inactivity TTL.
func NewStore(store kv.Store, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{kv: store, ttl: ttl, now: time.Now}
}

// RecordAnswer stores the user's selection for a node, renewing the
// conversation's expiry. A repeated identical answer is a no-op on the
// selections map, and revisiting a node overwrites its prior answer.
func (s *Store) RecordAnswer(ctx context.Context, userID string, node flowchart.NodeKey, value string) error {
	state, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if state == nil {
		state = &models.ConversationState{Selections: make(map[string]string)}
	}
	if state.Selections == nil {
		state.Selections = make(map[string]string)
	}

	state.Selections[string(node)] = value
	state.LastUpdated = s.now().Unix()

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal conversation state: %w", err)
	}
	return s.kv.Put(ctx, keyPrefix+userID, data, s.ttl)
}

// Get loads the user's conversation state, or nil when none exists.
func (s *Store) Get(ctx context.Context, userID string) (*models.ConversationState, error) {
	data, ok, err := s.kv.Get(ctx, keyPrefix+userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var state models.ConversationState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("unmarshal conversation state: %w", err)
	}
	return &state, nil
}
