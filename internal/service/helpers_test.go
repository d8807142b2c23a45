package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ledgerdesk-api/internal/models"
	"github.com/noah-isme/ledgerdesk-api/internal/repository"
	appErrors "github.com/noah-isme/ledgerdesk-api/pkg/errors"
	"github.com/noah-isme/ledgerdesk-api/pkg/kvstore"
	"github.com/noah-isme/ledgerdesk-api/pkg/storage"
)

var fixedNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func frozenClock() time.Time { return fixedNow }

type testEnv struct {
	libraryBackend *kvstore.MemoryBackend
	payrollBackend *kvstore.MemoryBackend
	students       *repository.StudentRepository
	employees      *repository.EmployeeRepository
	departments    *repository.DepartmentRepository
	settings       *repository.SettingsRepository
	ids            *PaymentIDGenerator
	recorder       *mockRecorder
}

func newTestEnv(t *testing.T, seed bool) *testEnv {
	t.Helper()
	libraryBackend := kvstore.NewMemoryBackend()
	payrollBackend := kvstore.NewMemoryBackend()
	library := kvstore.New(libraryBackend, repository.LibraryNamespace())
	payroll := kvstore.New(payrollBackend, repository.PayrollNamespace())

	env := &testEnv{
		libraryBackend: libraryBackend,
		payrollBackend: payrollBackend,
		students:       repository.NewStudentRepository(library, 80, nil),
		employees:      repository.NewEmployeeRepository(payroll, nil),
		departments:    repository.NewDepartmentRepository(payroll),
		settings:       repository.NewSettingsRepository(library, payroll, models.PayrollSettings{SettingPayDay: "last", SettingCurrency: "USD"}),
		ids:            NewPaymentIDGenerator(),
		recorder:       &mockRecorder{},
	}
	env.ids.now = frozenClock

	ctx := context.Background()
	if seed {
		_, err := env.students.Initialize(ctx, repository.SampleStudents())
		require.NoError(t, err)
		_, err = env.employees.Initialize(ctx, repository.SampleEmployees(), repository.SampleDepartments())
		require.NoError(t, err)
	} else {
		_, err := env.employees.Initialize(ctx, nil, repository.SampleDepartments())
		require.NoError(t, err)
	}
	return env
}

func (e *testEnv) studentService() *StudentService {
	svc := NewStudentService(e.students, e.settings, e.ids, FeeSchedule{FullTime: 800, HalfTime: 500}, e.recorder, nil, nil)
	svc.now = frozenClock
	return svc
}

func (e *testEnv) ledgerService() *LedgerService {
	svc := NewLedgerService(e.students, e.employees, e.ids, e.recorder, nil, nil)
	svc.now = frozenClock
	return svc
}

func (e *testEnv) employeeService() *EmployeeService {
	svc := NewEmployeeService(e.employees, e.departments, e.settings, nil, nil)
	svc.now = frozenClock
	return svc
}

type mockRecorder struct {
	mu        sync.Mutex
	payments  []string
	snapshots []bool
}

func (m *mockRecorder) RecordPayment(domain models.Domain, method string, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments = append(m.payments, string(domain)+":"+method)
}

func (m *mockRecorder) RecordSnapshot(_ models.Domain, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = append(m.snapshots, ok)
}

type memoryArchive struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newMemoryArchive() *memoryArchive {
	return &memoryArchive{objects: map[string][]byte{}}
}

func (a *memoryArchive) Put(_ context.Context, key string, data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.putErr != nil {
		return a.putErr
	}
	a.objects[key] = append([]byte(nil), data...)
	return nil
}

func (a *memoryArchive) Get(_ context.Context, key string) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	data, ok := a.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return append([]byte(nil), data...), nil
}

func (a *memoryArchive) List(_ context.Context, prefix string) ([]storage.Object, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]storage.Object, 0)
	for key, data := range a.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, storage.Object{Key: key, Size: int64(len(data)), LastModified: fixedNow})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (a *memoryArchive) Delete(_ context.Context, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.objects, key)
	return nil
}

func requireAppError(t *testing.T, err error, code string) *appErrors.Error {
	t.Helper()
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr), "expected *errors.Error, got %T", err)
	require.Equal(t, code, appErr.Code)
	return appErr
}

func halfTimeInput(name, email, phone, seat string) models.StudentInput {
	return models.StudentInput{
		Name:       name,
		Email:      email,
		Phone:      phone,
		PlanType:   models.PlanHalfTime,
		SeatNumber: seat,
	}
}
