package kvstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type record struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type opRecorder struct {
	ops []string
}

func (r *opRecorder) ObserveStoreOperation(op, key string, ok bool, _ time.Duration) {
	status := "ok"
	if !ok {
		status = "fail"
	}
	r.ops = append(r.ops, op+":"+key+":"+status)
}

var testNamespace = Namespace{Prefix: "library", Keys: []string{"students", "seat_layout", "timings"}}

func TestStoreSetGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	store := New(backend, testNamespace)

	require.True(t, store.Set(ctx, "students", []record{{ID: 1, Name: "Asha"}}))

	var got []record
	require.True(t, store.Get(ctx, "students", &got))
	assert.Equal(t, []record{{ID: 1, Name: "Asha"}}, got)

	raw, ok := backend.Raw("library_students")
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":1,"name":"Asha"}]`, string(raw))
	assert.True(t, store.Has(ctx, "students"))
	assert.False(t, store.Has(ctx, "timings"))
}

func TestStoreGetMissingKeepsDefault(t *testing.T) {
	store := New(NewMemoryBackend(), testNamespace)

	got := []record{}
	assert.False(t, store.Get(context.Background(), "students", &got))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestStoreGetCorruptPayloadLogsAndKeepsDefault(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.ErrorLevel)
	backend := NewMemoryBackend()
	require.NoError(t, backend.Write(ctx, "library_students", []byte(`[{"id":"one"`)))
	store := New(backend, testNamespace, WithLogger(zap.New(core)))

	got := []record{{ID: 9}}
	assert.False(t, store.Get(ctx, "students", &got))
	assert.Equal(t, []record{{ID: 9}}, got)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "kvstore decode failed", logs.All()[0].Message)
}

func TestStoreGetTypeMismatchLeavesDestUntouched(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	require.NoError(t, backend.Write(ctx, "library_students", []byte(`[{"id":1,"name":"A"},{"id":"x"}]`)))
	store := New(backend, testNamespace)

	var got []record
	assert.False(t, store.Get(ctx, "students", &got))
	assert.Nil(t, got)
}

func TestStoreGetRequiresPointer(t *testing.T) {
	store := New(NewMemoryBackend(), testNamespace)
	var got []record
	assert.False(t, store.Get(context.Background(), "students", got))
}

func TestStoreSetQuotaExceeded(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.ErrorLevel)
	store := New(NewMemoryBackend(WithQuota(16)), testNamespace, WithLogger(zap.New(core)))

	assert.True(t, store.Set(ctx, "timings", map[string]string{"a": "b"}))
	assert.False(t, store.Set(ctx, "students", []record{{ID: 1, Name: "a long enough name"}}))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "kvstore write failed", logs.All()[0].Message)

	var got []record
	assert.False(t, store.Get(ctx, "students", &got))
}

func TestStoreSetUnencodableValue(t *testing.T) {
	store := New(NewMemoryBackend(), testNamespace)
	assert.False(t, store.Set(context.Background(), "students", make(chan int)))
}

func TestStoreClearRemovesNamespaceKeysOnly(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	library := New(backend, testNamespace)
	payroll := New(backend, Namespace{Prefix: "payroll", Keys: []string{"employees"}})

	require.True(t, library.Set(ctx, "students", []record{}))
	require.True(t, library.Set(ctx, "timings", map[string]string{}))
	require.True(t, payroll.Set(ctx, "employees", []record{}))

	assert.True(t, library.Clear(ctx))
	assert.False(t, library.Has(ctx, "students"))
	assert.False(t, library.Has(ctx, "timings"))
	assert.True(t, payroll.Has(ctx, "employees"))
}

func TestStoreObserverReceivesOperations(t *testing.T) {
	ctx := context.Background()
	rec := &opRecorder{}
	backend := NewMemoryBackend()
	backend.FailWrites("library_timings", errors.New("disk full"))
	store := New(backend, testNamespace, WithObserver(rec))

	store.Set(ctx, "students", []record{})
	store.Set(ctx, "timings", map[string]string{})
	var out []record
	store.Get(ctx, "students", &out)
	store.Remove(ctx, "students")

	assert.Equal(t, []string{
		"set:library_students:ok",
		"set:library_timings:fail",
		"get:library_students:ok",
		"delete:library_students:ok",
	}, rec.ops)
}

func TestMemoryBackendCopiesPayloads(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	payload := []byte(`{"a":1}`)
	require.NoError(t, backend.Write(ctx, "k", payload))
	payload[2] = 'b'

	got, err := backend.Read(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got))

	_, err = backend.Read(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExclusiveSerializesWriters(t *testing.T) {
	ctx := context.Background()
	store := New(NewMemoryBackend(), testNamespace)
	require.True(t, store.Set(ctx, "counter", 0))

	done := make(chan struct{})
	for i := 0; i < 20; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			_ = store.Exclusive(func() error {
				var n int
				store.Get(ctx, "counter", &n)
				store.Set(ctx, "counter", n+1)
				return nil
			})
		}()
	}
	for i := 0; i < 20; i++ {
		<-done
	}

	var n int
	require.True(t, store.Get(ctx, "counter", &n))
	assert.Equal(t, 20, n)
}

func TestStoreLookupSeparatesAbsentFromReadFailure(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	store := New(backend, testNamespace)

	ok, err := store.Lookup(ctx, "students")
	require.NoError(t, err)
	assert.False(t, ok)

	require.True(t, store.Set(ctx, "students", []record{{ID: 1}}))
	ok, err = store.Lookup(ctx, "students")
	require.NoError(t, err)
	assert.True(t, ok)

	backend.FailReads("library_students", errors.New("connection reset"))
	ok, err = store.Lookup(ctx, "students")
	require.Error(t, err)
	assert.False(t, ok)
	assert.False(t, store.Has(ctx, "students"))
}
