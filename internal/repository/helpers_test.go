package repository

import (
	"testing"

	"github.com/noah-isme/ledgerdesk-api/pkg/kvstore"
)

func newLibraryStore(t *testing.T) (*kvstore.Store, *kvstore.MemoryBackend) {
	t.Helper()
	backend := kvstore.NewMemoryBackend()
	return kvstore.New(backend, LibraryNamespace()), backend
}

func newPayrollStore(t *testing.T) (*kvstore.Store, *kvstore.MemoryBackend) {
	t.Helper()
	backend := kvstore.NewMemoryBackend()
	return kvstore.New(backend, PayrollNamespace()), backend
}
