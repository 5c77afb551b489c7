// Package navstore persists the navigation state: which scene is showing
// and which roadmap level was selected.
package navstore

import (
	"context"
	"sync"
)

// DefaultKey is the storage key for the navigation record.
const DefaultKey = "navigation-storage"

// Scene is the logical page being shown.
type Scene string

const (
	SceneGalaxy  Scene = "galaxy"
	SceneRoadmap Scene = "roadmap"
)

// Valid reports whether s is a known scene.
func (s Scene) Valid() bool {
	return s == SceneGalaxy || s == SceneRoadmap
}

// State is the persisted navigation record.
type State struct {
	CurrentScene    Scene `json:"currentScene"`
	IsTransitioning bool  `json:"isTransitioning"`
	SelectedLevel   int   `json:"selectedLevel,omitempty"` // 0 means none
}

// DefaultState is the state of a fresh install: the galaxy, nothing selected.
func DefaultState() State {
	return State{CurrentScene: SceneGalaxy}
}

// Store loads and saves the navigation state.
type Store interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, s State) error
	Close() error
}

// MemoryStore keeps the state in process. It is the fallback when Redis
// is disabled or unreachable.
type MemoryStore struct {
	mu    sync.RWMutex
	state State
}

// NewMemoryStore creates a store holding DefaultState.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: DefaultState()}
}

func (m *MemoryStore) Load(ctx context.Context) (State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state, nil
}

func (m *MemoryStore) Save(ctx context.Context, s State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
	return nil
}

func (m *MemoryStore) Close() error { return nil }
