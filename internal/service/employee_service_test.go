package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ledgerdesk-api/internal/models"
)

func engineerInput(name, email string) models.EmployeeInput {
	return models.EmployeeInput{
		Name:       name,
		Email:      email,
		Phone:      "+1 555 0100",
		Department: "Engineering",
		Position:   "Developer",
		BaseSalary: 4200,
	}
}

func departmentCounts(departments []models.Department) map[string]int {
	out := make(map[string]int, len(departments))
	for _, d := range departments {
		out[d.Name] = d.EmployeeCount
	}
	return out
}

func TestEmployeeCreateDefaults(t *testing.T) {
	env := newTestEnv(t, true)
	svc := env.employeeService()
	ctx := context.Background()

	created, err := svc.Create(ctx, engineerInput("Ana Lopez", "ana.lopez@company.com"))
	require.NoError(t, err)
	assert.Equal(t, 4, created.ID)
	assert.Equal(t, "EMP004", created.EmployeeID)
	assert.Equal(t, models.PaymentStatusPending, created.PaymentStatus)
	assert.Equal(t, models.EmployeeActive, created.Status)
	assert.Equal(t, "2024-03-15", created.JoiningDate)
	assert.Empty(t, created.PaymentHistory)

	assert.Equal(t, 2, departmentCounts(svc.ListDepartments(ctx))["Engineering"])
}

func TestEmployeeCreateValidation(t *testing.T) {
	env := newTestEnv(t, true)
	svc := env.employeeService()

	_, err := svc.Create(context.Background(), models.EmployeeInput{
		Name:       "",
		Email:      "john.smith@company.com",
		Phone:      "",
		Department: "Engineering",
		Position:   "",
		BaseSalary: 0,
	})
	appErr := requireAppError(t, err, "VALIDATION_ERROR")
	assert.Equal(t, "Name is required", appErr.Fields["name"])
	assert.Equal(t, "Email already exists", appErr.Fields["email"])
	assert.Equal(t, "Phone is required", appErr.Fields["phone"])
	assert.Equal(t, "Position is required", appErr.Fields["position"])
	assert.Equal(t, "Base salary must be greater than 0", appErr.Fields["baseSalary"])
	assert.Len(t, env.employees.List(context.Background()), 3)
}

func TestEmployeeCreateInUnknownDepartmentLeavesCountsAlone(t *testing.T) {
	env := newTestEnv(t, true)
	svc := env.employeeService()
	ctx := context.Background()

	before := departmentCounts(svc.ListDepartments(ctx))

	input := engineerInput("Lena Ortiz", "lena.ortiz@company.com")
	input.Department = "Legal"
	created, err := svc.Create(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "Legal", created.Department)
	assert.Len(t, env.employees.List(ctx), 4)

	after := departmentCounts(svc.ListDepartments(ctx))
	assert.Equal(t, before, after)
	_, listed := after["Legal"]
	assert.False(t, listed)
}

func TestEmployeeCreateConcurrentDuplicateEmail(t *testing.T) {
	env := newTestEnv(t, true)
	svc := env.employeeService()
	ctx := context.Background()

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			input := engineerInput(fmt.Sprintf("Racer %d", i), "racer@company.com")
			input.EmployeeID = fmt.Sprintf("EMP%03d", 100+i)
			_, errs[i] = svc.Create(ctx, input)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		appErr := requireAppError(t, err, "VALIDATION_ERROR")
		assert.Equal(t, "Email already exists", appErr.Fields["email"])
	}

	assert.Equal(t, 1, succeeded)
	assert.Len(t, env.employees.List(ctx), 4)
}

func TestEmployeeCreateRejectsDuplicateCode(t *testing.T) {
	env := newTestEnv(t, true)
	svc := env.employeeService()

	input := engineerInput("Dup Code", "dup@company.com")
	input.EmployeeID = "EMP002"
	_, err := svc.Create(context.Background(), input)
	appErr := requireAppError(t, err, "VALIDATION_ERROR")
	assert.Equal(t, "Employee ID already exists", appErr.Fields["employeeId"])
}

func TestGenerateEmployeeIDSkipsGaps(t *testing.T) {
	env := newTestEnv(t, true)
	svc := env.employeeService()
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, 2))
	assert.Equal(t, "EMP004", svc.GenerateEmployeeID(ctx))
}

func TestEmployeeUpdateMovesDepartmentCount(t *testing.T) {
	env := newTestEnv(t, true)
	svc := env.employeeService()
	ctx := context.Background()

	input := engineerInput("Michael Chen", "michael.chen@company.com")
	input.Department = "Finance"
	updated, err := svc.Update(ctx, 3, input)
	require.NoError(t, err)
	assert.Equal(t, "EMP003", updated.EmployeeID)
	assert.Equal(t, 10700.0, updated.TotalPaid)
	assert.Len(t, updated.PaymentHistory, 2)

	counts := departmentCounts(svc.ListDepartments(ctx))
	assert.Equal(t, 0, counts["Sales"])
	assert.Equal(t, 1, counts["Finance"])

	total := 0
	for _, c := range counts {
		total += c
	}
	assert.Equal(t, len(svc.List(ctx, models.EmployeeFilter{})), total)
}

func TestEmployeeListFilters(t *testing.T) {
	env := newTestEnv(t, true)
	svc := env.employeeService()
	ctx := context.Background()

	pending := svc.List(ctx, models.EmployeeFilter{PaymentStatus: models.PaymentStatusPending})
	require.Len(t, pending, 1)
	assert.Equal(t, "Sarah Johnson", pending[0].Name)

	sales := svc.List(ctx, models.EmployeeFilter{Department: "Sales"})
	require.Len(t, sales, 1)

	search := svc.List(ctx, models.EmployeeFilter{Search: "emp001"})
	require.Len(t, search, 1)
	assert.Equal(t, "John Smith", search[0].Name)
}

func TestDepartmentLifecycle(t *testing.T) {
	env := newTestEnv(t, true)
	svc := env.employeeService()
	ctx := context.Background()

	dept, err := svc.CreateDepartment(ctx, models.DepartmentInput{Name: "  Legal "})
	require.NoError(t, err)
	assert.Equal(t, 6, dept.ID)
	assert.Equal(t, "Legal", dept.Name)

	_, err = svc.CreateDepartment(ctx, models.DepartmentInput{Name: "legal"})
	requireAppError(t, err, "CONFLICT")

	_, err = svc.CreateDepartment(ctx, models.DepartmentInput{Name: " "})
	requireAppError(t, err, "VALIDATION_ERROR")

	requireAppError(t, svc.DeleteDepartment(ctx, "Sales"), "CONFLICT")
	requireAppError(t, svc.DeleteDepartment(ctx, "Unknown"), "NOT_FOUND")
	require.NoError(t, svc.DeleteDepartment(ctx, "Legal"))
}

func TestPayrollSettingsValidation(t *testing.T) {
	env := newTestEnv(t, true)
	svc := env.employeeService()
	ctx := context.Background()

	assert.Equal(t, "USD", svc.PayrollSettings(ctx)[SettingCurrency])

	_, err := svc.UpdatePayrollSettings(ctx, models.PayrollSettings{SettingCurrency: "XYZ1", SettingPayDay: "32"})
	appErr := requireAppError(t, err, "VALIDATION_ERROR")
	assert.Contains(t, appErr.Fields, SettingCurrency)
	assert.Contains(t, appErr.Fields, SettingPayDay)

	merged, err := svc.UpdatePayrollSettings(ctx, models.PayrollSettings{SettingCurrency: "INR"})
	require.NoError(t, err)
	assert.Equal(t, "INR", merged[SettingCurrency])
	assert.Equal(t, "last", merged[SettingPayDay])

	merged, err = svc.UpdatePayrollSettings(ctx, models.PayrollSettings{SettingPayDay: "25"})
	require.NoError(t, err)
	assert.Equal(t, "INR", merged[SettingCurrency])
	assert.Equal(t, "25", merged[SettingPayDay])
}
