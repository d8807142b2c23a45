package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ledgerdesk-api/internal/models"
)

func sumStudentHistory(st models.Student) float64 {
	var total float64
	for _, p := range st.PaymentHistory {
		total += p.Amount
	}
	return total
}

func sumSalaryHistory(e models.Employee) float64 {
	var total float64
	for _, p := range e.PaymentHistory {
		total += p.NetSalary
	}
	return total
}

func TestLedgerTotalPaidMatchesHistory(t *testing.T) {
	env := newTestEnv(t, true)
	ledger := env.ledgerService()
	ctx := context.Background()

	_, err := ledger.AddStudentPayment(ctx, 1, models.StudentPaymentInput{Amount: 800, Method: models.MethodCard, Notes: "March"})
	require.NoError(t, err)
	_, err = ledger.ToggleStudentFee(ctx, 2)
	require.NoError(t, err)
	_, err = ledger.ToggleStudentFee(ctx, 2)
	require.NoError(t, err)
	_, err = ledger.AddSalaryPayment(ctx, 2, models.SalaryPaymentInput{Deductions: 450, Bonuses: 100})
	require.NoError(t, err)

	for _, st := range env.students.List(ctx) {
		assert.Equal(t, sumStudentHistory(st), st.TotalPaid, "student %d", st.ID)
		for i, p := range st.PaymentHistory {
			assert.Equal(t, i+1, p.ID)
		}
	}
	for _, e := range env.employees.List(ctx) {
		assert.Equal(t, sumSalaryHistory(e), e.TotalPaid, "employee %d", e.ID)
	}
	assert.Equal(t, []string{"library:Card", "library:Cash", "payroll:Bank Transfer"}, env.recorder.payments)
}

func TestLedgerAddStudentPaymentRejectsInvalidAmount(t *testing.T) {
	env := newTestEnv(t, true)
	ledger := env.ledgerService()

	_, err := ledger.AddStudentPayment(context.Background(), 1, models.StudentPaymentInput{Amount: 0})
	appErr := requireAppError(t, err, "VALIDATION_ERROR")
	assert.Equal(t, "Please enter a valid amount", appErr.Fields["amount"])

	_, err = ledger.AddStudentPayment(context.Background(), 1, models.StudentPaymentInput{Amount: 100, Method: "Barter"})
	appErr = requireAppError(t, err, "VALIDATION_ERROR")
	assert.Contains(t, appErr.Fields, "method")

	st, err := env.students.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, st.PaymentHistory, 2)
}

func TestLedgerUnknownRecord(t *testing.T) {
	env := newTestEnv(t, true)
	ledger := env.ledgerService()

	_, err := ledger.AddStudentPayment(context.Background(), 99, models.StudentPaymentInput{Amount: 10})
	requireAppError(t, err, "NOT_FOUND")
	_, err = ledger.AddSalaryPayment(context.Background(), 99, models.SalaryPaymentInput{})
	requireAppError(t, err, "NOT_FOUND")
}

func TestLedgerMarkStudentUnpaidKeepsHistory(t *testing.T) {
	env := newTestEnv(t, true)
	ledger := env.ledgerService()

	updated, err := ledger.MarkStudentUnpaid(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, updated.FeesPaid)
	assert.Equal(t, 1600.0, updated.TotalPaid)
	assert.Len(t, updated.PaymentHistory, 2)
}

func TestLedgerAddSalaryPaymentDefaults(t *testing.T) {
	env := newTestEnv(t, true)
	ledger := env.ledgerService()

	updated, err := ledger.AddSalaryPayment(context.Background(), 2, models.SalaryPaymentInput{Deductions: 450, Bonuses: 200, Notes: "March payroll"})
	require.NoError(t, err)
	require.Len(t, updated.PaymentHistory, 2)
	entry := updated.PaymentHistory[1]
	assert.Equal(t, 2, entry.ID)
	assert.Equal(t, 4500.0, entry.BaseSalary)
	assert.Equal(t, 4250.0, entry.NetSalary)
	assert.Equal(t, "March 2024", entry.Month)
	assert.Equal(t, "2024-03-15", entry.Date)
	assert.Equal(t, models.PaymentStatusValue, entry.Status)
	assert.Equal(t, models.PaymentStatusPaid, updated.PaymentStatus)
	require.NotNil(t, updated.LastPaymentDate)
	assert.Equal(t, "2024-03-15", *updated.LastPaymentDate)
	assert.Equal(t, 4550.0+4250.0, updated.TotalPaid)
}

func TestLedgerAddSalaryPaymentAllowsNegativeNet(t *testing.T) {
	env := newTestEnv(t, true)
	ledger := env.ledgerService()
	base := 1000.0

	updated, err := ledger.AddSalaryPayment(context.Background(), 3, models.SalaryPaymentInput{
		BaseSalary: &base,
		Deductions: 1500,
		Month:      "Advance recovery",
		Date:       "2024-03-01",
		Method:     models.MethodCheck,
	})
	require.NoError(t, err)
	entry := updated.PaymentHistory[len(updated.PaymentHistory)-1]
	assert.Equal(t, -500.0, entry.NetSalary)
	assert.Equal(t, "Advance recovery", entry.Month)
	assert.Equal(t, "2024-03-01", entry.Date)
	assert.Equal(t, 10700.0-500.0, updated.TotalPaid)
}

func TestCalculateNetSalary(t *testing.T) {
	assert.Equal(t, 5500.0, CalculateNetSalary(5000, 500, 1000))
	assert.Equal(t, -100.0, CalculateNetSalary(0, 100, 0))
}

func TestPaymentIDGeneratorStrictlyIncreases(t *testing.T) {
	gen := NewPaymentIDGenerator()
	gen.now = frozenClock

	first := gen.Next()
	second := gen.Next()
	assert.Equal(t, fixedNow.UnixMilli(), first)
	assert.Equal(t, first+1, second)

	gen.now = func() time.Time { return fixedNow.Add(time.Hour) }
	assert.Equal(t, fixedNow.Add(time.Hour).UnixMilli(), gen.Next())

	gen.Observe(fixedNow.Add(2 * time.Hour).UnixMilli())
	assert.Equal(t, fixedNow.Add(2*time.Hour).UnixMilli()+1, gen.Next())
}
