package kvstore

import (
	"context"
	"fmt"
	"sync"
)

// ErrQuotaExceeded mirrors a browser storage quota error.
var ErrQuotaExceeded = fmt.Errorf("kvstore: quota exceeded")

// MemoryBackend keeps payloads in process memory. It is the development and test driver.
type MemoryBackend struct {
	mu       sync.RWMutex
	data     map[string][]byte
	quota    int
	failures map[string]error
	readErrs map[string]error
}

// MemoryOption tunes a MemoryBackend.
type MemoryOption func(*MemoryBackend)

// WithQuota limits the total payload bytes the backend accepts.
func WithQuota(bytes int) MemoryOption {
	return func(m *MemoryBackend) { m.quota = bytes }
}

// NewMemoryBackend builds an empty in-memory backend.
func NewMemoryBackend(opts ...MemoryOption) *MemoryBackend {
	m := &MemoryBackend{data: make(map[string][]byte), failures: make(map[string]error), readErrs: make(map[string]error)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// FailWrites makes subsequent writes to key return err; a nil err clears the failure.
func (m *MemoryBackend) FailWrites(key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, key)
		return
	}
	m.failures[key] = err
}

// FailReads makes subsequent reads of key return err; a nil err clears the failure.
func (m *MemoryBackend) FailReads(key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.readErrs, key)
		return
	}
	m.readErrs[key] = err
}

// Raw returns a copy of the payload stored under key.
func (m *MemoryBackend) Raw(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), v...), true
}

// Read implements Backend.
func (m *MemoryBackend) Read(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	err := m.readErrs[key]
	m.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	payload, ok := m.Raw(key)
	if !ok {
		return nil, ErrNotFound
	}
	return payload, nil
}

// Write implements Backend.
func (m *MemoryBackend) Write(_ context.Context, key string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failures[key]; ok {
		return err
	}
	if m.quota > 0 {
		used := len(payload)
		for k, v := range m.data {
			if k != key {
				used += len(v)
			}
		}
		if used > m.quota {
			return fmt.Errorf("write %s (%d bytes): %w", key, len(payload), ErrQuotaExceeded)
		}
	}
	m.data[key] = append([]byte(nil), payload...)
	return nil
}

// Delete implements Backend.
func (m *MemoryBackend) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

// Close implements Backend.
func (m *MemoryBackend) Close() error { return nil }
