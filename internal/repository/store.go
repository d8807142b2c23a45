package repository

import (
	"context"
	"errors"

	"github.com/noah-isme/ledgerdesk-api/pkg/kvstore"
)

// Collection keys inside each namespace.
const (
	LibraryPrefix  = "library"
	KeyStudents    = "students"
	KeySeatLayout  = "seat_layout"
	KeyTimings     = "timings"
	PayrollPrefix  = "payroll"
	KeyEmployees   = "employees"
	KeyDepartments = "departments"
	KeyPayments    = "payments"
	KeySettings    = "settings"
)

// LibraryNamespace lists every key the library domain owns.
func LibraryNamespace() kvstore.Namespace {
	return kvstore.Namespace{Prefix: LibraryPrefix, Keys: []string{KeyStudents, KeySeatLayout, KeyTimings}}
}

// PayrollNamespace lists every key the payroll domain owns. KeyPayments is never written
// but is still removed on clear.
func PayrollNamespace() kvstore.Namespace {
	return kvstore.Namespace{Prefix: PayrollPrefix, Keys: []string{KeyEmployees, KeyDepartments, KeyPayments, KeySettings}}
}

// Store is the subset of *kvstore.Store the repositories use.
type Store interface {
	Get(ctx context.Context, name string, dest interface{}) bool
	Has(ctx context.Context, name string) bool
	Lookup(ctx context.Context, name string) (bool, error)
	Set(ctx context.Context, name string, value interface{}) bool
	Remove(ctx context.Context, names ...string) bool
	Clear(ctx context.Context) bool
	Exclusive(fn func() error) error
}

// Repository errors.
var (
	ErrNotFound        = errors.New("record not found")
	ErrPersistence     = errors.New("persist collection")
	ErrSeatUnavailable = errors.New("seat unavailable")
	ErrDepartmentInUse = errors.New("department has employees")
	ErrDuplicate       = errors.New("record already exists")
)
