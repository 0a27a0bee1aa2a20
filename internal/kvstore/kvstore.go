// Package kvstore provides the browser-like string key/value persistence
// facility the storefront core relies on: session-scoped stores holding
// authentication state and one-shot checkout handoff data.
package kvstore

import "sync"

// Store is a string-valued key/value facility scoped to one visitor session.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
}

// Memory is an in-process Store. The zero value is not usable; construct with
// NewMemory.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *Memory) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

func (m *Memory) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}

// Registry hands out one Memory store per session identifier.
type Registry struct {
	mu     sync.Mutex
	stores map[string]*Memory
}

func NewRegistry() *Registry {
	return &Registry{stores: make(map[string]*Memory)}
}

// For returns the store for the given session, creating it on first use.
func (r *Registry) For(sessionID string) *Memory {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[sessionID]
	if !ok {
		s = NewMemory()
		r.stores[sessionID] = s
	}
	return s
}

// Drop discards the store for a session, if any.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stores, sessionID)
}

// Move re-keys a session's store, keeping its contents. Used when the session
// identifier rotates at login.
func (r *Registry) Move(oldID, newID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[oldID]
	if !ok {
		return
	}
	delete(r.stores, oldID)
	r.stores[newID] = s
}
