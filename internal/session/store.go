package session

import (
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is one user's in-progress flow.
type State struct {
	ID        uuid.UUID
	Flow      string
	Step      int
	Data      map[string]string
	StartedAt time.Time
}

// New returns a fresh state for flow seeded with data.
func New(flow string, data map[string]string, now time.Time) State {
	d := make(map[string]string, len(data))
	maps.Copy(d, data)
	return State{ID: uuid.New(), Flow: flow, Data: d, StartedAt: now}
}

// Clone returns a deep copy so callers never share the Data map.
func (s State) Clone() State {
	s.Data = maps.Clone(s.Data)
	if s.Data == nil {
		s.Data = map[string]string{}
	}
	return s
}

// Store maps a user to at most one active flow state.
type Store interface {
	Get(userID int64) (State, bool)
	Put(userID int64, s State)
	Delete(userID int64)
}

// MemoryStore keeps states in process memory. A restart drops in-flight flows.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[int64]State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[int64]State)}
}

func (m *MemoryStore) Get(userID int64) (State, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.states[userID]
	if !ok {
		return State{}, false
	}
	return s.Clone(), true
}

func (m *MemoryStore) Put(userID int64, s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[userID] = s.Clone()
}

func (m *MemoryStore) Delete(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, userID)
}

// Len returns the number of active flows.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.states)
}
