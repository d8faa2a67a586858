package server

import (
	"sort"
	"sync"
	"time"

	"github.com/KaramelBytes/csvlens/internal/analysis"
	"github.com/KaramelBytes/csvlens/internal/dataset"
	"github.com/KaramelBytes/csvlens/internal/parser"
)

// Session is one uploaded dataset together with everything derived from it.
// A session is immutable once stored; a new upload creates a new session.
type Session struct {
	Dataset  *dataset.Dataset
	Analysis analysis.Analysis
	Skipped  []parser.RowShapeMismatch
	Created  time.Time
}

// Store keeps sessions in memory, keyed by dataset id.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{sessions: map[string]*Session{}}
}

// Put analyzes the parse result and registers it as a new session.
func (s *Store) Put(res *parser.Result) *Session {
	sess := &Session{
		Dataset:  res.Dataset,
		Analysis: analysis.Analyze(res.Dataset),
		Skipped:  res.Skipped,
		Created:  time.Now().UTC(),
	}
	s.mu.Lock()
	s.sessions[res.Dataset.ID] = sess
	s.mu.Unlock()
	return sess
}

// Get returns the session for id.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Delete drops the session for id and reports whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

// List returns all sessions, oldest first.
func (s *Store) List() []*Session {
	s.mu.RLock()
	out := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Created.Equal(out[j].Created) {
			return out[i].Dataset.ID < out[j].Dataset.ID
		}
		return out[i].Created.Before(out[j].Created)
	})
	return out
}
