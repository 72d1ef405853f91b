package bot

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
)

// SessionManager manages the sessions of all chats. Sessions are created on
// first use and live until shutdown.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	create   func(chatID int64, lang string) *Session
}

// NewSessionManager returns a manager building sessions with create.
func NewSessionManager(create func(chatID int64, lang string) *Session) *SessionManager {
	return &SessionManager{
		sessions: make(map[int64]*Session),
		create:   create,
	}
}

// Get returns the session of the chat, creating it in lang when missing.
func (sm *SessionManager) Get(chatID int64, lang string) *Session {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session, ok := sm.sessions[chatID]
	if !ok {
		session = sm.create(chatID, lang)
		sm.sessions[chatID] = session
	}
	return session
}

// Len returns the number of live sessions.
func (sm *SessionManager) Len() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	return len(sm.sessions)
}

// Flush commits the pending deletions of every session.
func (sm *SessionManager) Flush(ctx context.Context) error {
	var errs []error
	for chatID, session := range sm.snapshot() {
		if err := session.Flush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("chat %d: %w", chatID, err))
		}
	}
	return errors.Join(errs...)
}

// Close cancels the pending deletions of every session.
func (sm *SessionManager) Close() {
	for _, session := range sm.snapshot() {
		session.Close()
	}
}

func (sm *SessionManager) snapshot() map[int64]*Session {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	return maps.Clone(sm.sessions)
}
