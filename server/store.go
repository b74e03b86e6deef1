package server

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/chaos-io/pixelforge/editor"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is one editor, addressed by id.
type Session struct {
	ID        string
	Editor    *editor.Editor
	CreatedAt time.Time

	lastUsed time.Time
}

// Store keeps sessions in memory.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	factory  func() (*editor.Editor, error)
	now      func() time.Time
}

func NewStore(factory func() (*editor.Editor, error)) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		factory:  factory,
		now:      time.Now,
	}
}

func (s *Store) Create() (*Session, error) {
	ed, err := s.factory()
	if err != nil {
		return nil, fmt.Errorf("create editor: %w", err)
	}
	now := s.now()
	sess := &Session{ID: ksuid.New().String(), Editor: ed, CreatedAt: now, lastUsed: now}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	slog.Info("session created", "session_id", sess.ID)
	return sess, nil
}

// Get returns the session and marks it used.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	sess.lastUsed = s.now()
	return sess, nil
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(s.sessions, id)
	slog.Info("session deleted", "session_id", id)
	return nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Reap drops sessions idle for longer than ttl. Sessions still removing a
// background are kept.
func (s *Store) Reap(ttl time.Duration) int {
	cutoff := s.now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	for id, sess := range s.sessions {
		if sess.lastUsed.After(cutoff) || sess.Editor.Processing() {
			continue
		}
		delete(s.sessions, id)
		n++
		slog.Debug("session expired", "session_id", id, "idle", s.now().Sub(sess.lastUsed).String())
	}
	return n
}
