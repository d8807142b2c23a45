// Package kvstore provides a namespaced key to JSON blob store. Each key holds a whole
// collection; callers read the full value, mutate it in memory and write it back.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrNotFound is returned by backends when a key holds no value.
var ErrNotFound = errors.New("kvstore: key not found")

// Backend persists raw payloads under string keys.
type Backend interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, payload []byte) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// Observer receives timing and outcome for every store operation.
type Observer interface {
	ObserveStoreOperation(op, key string, ok bool, duration time.Duration)
}

// Namespace prefixes keys of one application domain and lists the keys Clear removes.
type Namespace struct {
	Prefix string
	Keys   []string
}

// Key returns the fully qualified backend key for name.
func (n Namespace) Key(name string) string {
	if n.Prefix == "" {
		return name
	}
	return n.Prefix + "_" + name
}

// Store is the fail-soft facade used by repositories. It never returns errors: reads fall
// back to the caller's zero value and writes report success as a bool, logging the cause.
type Store struct {
	backend  Backend
	ns       Namespace
	logger   *zap.Logger
	observer Observer

	mu sync.Mutex
}

// Option customises a Store.
type Option func(*Store)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver attaches an operation observer (metrics).
func WithObserver(o Observer) Option {
	return func(s *Store) { s.observer = o }
}

// New binds backend to a namespace.
func New(backend Backend, ns Namespace, opts ...Option) *Store {
	s := &Store{backend: backend, ns: ns, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("namespace", ns.Prefix))
	return s
}

// Namespace returns the namespace the store is bound to.
func (s *Store) Namespace() Namespace {
	return s.ns
}

// Get decodes the value stored under name into dest, which must be a non-nil pointer.
// It returns false when the key is absent or the value cannot be read or decoded; dest is
// left untouched in that case.
func (s *Store) Get(ctx context.Context, name string, dest interface{}) bool {
	key := s.ns.Key(name)
	start := time.Now()
	ok := s.get(ctx, key, dest)
	s.observe("get", key, ok, start)
	return ok
}

func (s *Store) get(ctx context.Context, key string, dest interface{}) bool {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		s.logger.Error("kvstore get requires a non-nil pointer", zap.String("key", key))
		return false
	}
	raw, err := s.backend.Read(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("kvstore read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	tmp := reflect.New(rv.Elem().Type())
	if err := json.Unmarshal(raw, tmp.Interface()); err != nil {
		s.logger.Error("kvstore decode failed", zap.String("key", key), zap.Error(err))
		return false
	}
	rv.Elem().Set(tmp.Elem())
	return true
}

// Has reports whether name currently holds a value. A failed read counts as absent.
func (s *Store) Has(ctx context.Context, name string) bool {
	ok, _ := s.Lookup(ctx, name)
	return ok
}

// Lookup reports whether name holds a value, telling an absent key apart from a read
// failure: absent is (false, nil), a failed read is (false, err).
func (s *Store) Lookup(ctx context.Context, name string) (bool, error) {
	key := s.ns.Key(name)
	start := time.Now()
	_, err := s.backend.Read(ctx, key)
	s.observe("has", key, err == nil, start)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		s.logger.Error("kvstore read failed", zap.String("key", key), zap.Error(err))
		return false, fmt.Errorf("read %s: %w", key, err)
	}
}

// Set serializes value and writes it under name.
func (s *Store) Set(ctx context.Context, name string, value interface{}) bool {
	key := s.ns.Key(name)
	start := time.Now()
	ok := s.set(ctx, key, value)
	s.observe("set", key, ok, start)
	return ok
}

func (s *Store) set(ctx context.Context, key string, value interface{}) bool {
	payload, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("kvstore encode failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if err := s.backend.Write(ctx, key, payload); err != nil {
		s.logger.Error("kvstore write failed", zap.String("key", key), zap.Int("bytes", len(payload)), zap.Error(err))
		return false
	}
	return true
}

// Remove deletes the given names.
func (s *Store) Remove(ctx context.Context, names ...string) bool {
	if len(names) == 0 {
		return true
	}
	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = s.ns.Key(name)
	}
	start := time.Now()
	err := s.backend.Delete(ctx, keys...)
	if err != nil {
		s.logger.Error("kvstore delete failed", zap.Strings("keys", keys), zap.Error(err))
	}
	for _, key := range keys {
		s.observe("delete", key, err == nil, start)
	}
	return err == nil
}

// Clear removes every key registered on the namespace.
func (s *Store) Clear(ctx context.Context) bool {
	return s.Remove(ctx, s.ns.Keys...)
}

// Exclusive runs fn while holding the namespace write lock. Repositories wrap every
// read-modify-write cycle in it so there is exactly one writer per namespace.
func (s *Store) Exclusive(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) observe(op, key string, ok bool, start time.Time) {
	if s.observer == nil {
		return
	}
	s.observer.ObserveStoreOperation(op, key, ok, time.Since(start))
}
