// Package conversation keeps session-scoped message history. The log is
// the in-memory source of truth for the retriever's conversation window;
// an optional ConversationStore persists messages write-through.
package conversation

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/codelegend/cogito/internal/storage"
	"github.com/codelegend/cogito/pkg/types"
)

// DefaultRetention caps how many messages each session keeps in memory.
const DefaultRetention = 500

// Log is an RWMutex-guarded per-session message log with bounded
// retention. The zero value is not usable; call NewLog.
type Log struct {
	mu        sync.RWMutex
	sessions  map[string][]types.Message
	retention int
	store     storage.ConversationStore
}

// NewLog creates a log keeping at most retention messages per session.
// retention <= 0 selects DefaultRetention. store may be nil.
func NewLog(retention int, store storage.ConversationStore) *Log {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Log{
		sessions:  make(map[string][]types.Message),
		retention: retention,
		store:     store,
	}
}

// Load restores recent history for every known session from the store.
func (l *Log) Load(ctx context.Context) error {
	if l.store == nil {
		return nil
	}

	sessionIDs, err := l.store.Sessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	total := 0
	for _, sessionID := range sessionIDs {
		msgs, err := l.store.RecentMessages(ctx, sessionID, l.retention)
		if err != nil {
			log.Printf("[conversation] failed to load session %s: %v", sessionID, err)
			continue
		}
		l.sessions[sessionID] = msgs
		total += len(msgs)
	}

	log.Printf("[conversation] loaded %d messages across %d sessions", total, len(l.sessions))
	return nil
}

// Append records a message for the session, trimming the oldest entries
// past the retention cap. Role and content must be non-blank.
func (l *Log) Append(ctx context.Context, sessionID, role, content string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("%w: session ID is required", storage.ErrInvalidInput)
	}
	if strings.TrimSpace(role) == "" {
		return fmt.Errorf("%w: role is required", storage.ErrInvalidInput)
	}
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: content is required", storage.ErrInvalidInput)
	}

	msg := types.Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}

	l.mu.Lock()
	msgs := append(l.sessions[sessionID], msg)
	if len(msgs) > l.retention {
		msgs = msgs[len(msgs)-l.retention:]
	}
	l.sessions[sessionID] = msgs
	l.mu.Unlock()

	if l.store != nil {
		if err := l.store.SaveMessage(ctx, sessionID, msg); err != nil {
			log.Printf("[conversation] failed to persist message for session %s: %v", sessionID, err)
		}
	}

	return nil
}

// Recent returns up to n most recent messages for the session in
// chronological order. Unknown sessions return an empty slice.
func (l *Log) Recent(sessionID string, n int) []types.Message {
	if n < 1 {
		return nil
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	msgs := l.sessions[sessionID]
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}

	out := make([]types.Message, len(msgs))
	copy(out, msgs)
	return out
}

// Sessions returns the known session IDs, sorted.
func (l *Log) Sessions() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := make([]string, 0, len(l.sessions))
	for id := range l.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of messages held for the session.
func (l *Log) Len(sessionID string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.sessions[sessionID])
}

// Clear drops the in-memory history for one session.
func (l *Log) Clear(sessionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.sessions, sessionID)
}
