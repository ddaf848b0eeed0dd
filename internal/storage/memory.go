package storage

import (
	"context"
	"sync"
)

type Memory struct {
	mu    sync.RWMutex
	items map[string]map[string]string
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string]map[string]string)}
}

func (m *Memory) GetItem(_ context.Context, profile, key string) (string, bool, error) {
	if profile == "" {
		return "", false, ErrEmptyProfile
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[profile][key]
	return v, ok, nil
}

func (m *Memory) SetItem(_ context.Context, profile, key, value string) error {
	if profile == "" {
		return ErrEmptyProfile
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[profile]
	if !ok {
		p = make(map[string]string)
		m.items[profile] = p
	}
	p[key] = value
	return nil
}

func (m *Memory) RemoveItem(_ context.Context, profile, key string) error {
	if profile == "" {
		return ErrEmptyProfile
	}
	m.mu.Lock()
	delete(m.items[profile], key)
	m.mu.Unlock()
	return nil
}
