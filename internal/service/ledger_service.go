package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ledgerdesk-api/internal/models"
)

const payrollMonthLong = "January 2006"

type studentMutator interface {
	Mutate(ctx context.Context, id int, fn func(*models.Student) error) (*models.Student, error)
}

type employeeMutator interface {
	Mutate(ctx context.Context, id int, fn func(*models.Employee) error) (*models.Employee, error)
}

// LedgerService appends payments to student and employee histories. History entries are
// never rewritten or removed; totals only grow by the appended amount.
type LedgerService struct {
	students  studentMutator
	employees employeeMutator
	ids       *PaymentIDGenerator
	payments  paymentRecorder
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewLedgerService constructs the service.
func NewLedgerService(students studentMutator, employees employeeMutator, ids *PaymentIDGenerator, payments paymentRecorder, validate *validator.Validate, logger *zap.Logger) *LedgerService {
	if ids == nil {
		ids = NewPaymentIDGenerator()
	}
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		students:  students,
		employees: employees,
		ids:       ids,
		payments:  payments,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// AddStudentPayment records a fee payment and marks the fee paid.
func (s *LedgerService) AddStudentPayment(ctx context.Context, id int, input models.StudentPaymentInput) (*models.Student, error) {
	fields, err := collectFieldErrors(s.validator, input)
	if err != nil {
		return nil, err
	}
	if !fields.Empty() {
		return nil, validationError("invalid payment", fields)
	}

	now := s.now()
	var entry models.StudentPayment
	updated, err := s.students.Mutate(ctx, id, func(st *models.Student) error {
		entry = appendStudentPayment(st, input.Amount, input.Method, input.Notes, now, s.ids.Next())
		return nil
	})
	if err != nil {
		return nil, translateRepoError(err, "student not found")
	}
	s.recorded(models.DomainLibrary, entry.Method, entry.Amount)
	s.logger.Info("student payment recorded", zap.Int("student_id", id), zap.Int64("payment_id", entry.PaymentID), zap.Float64("amount", entry.Amount))
	return updated, nil
}

// ToggleStudentFee pays the current fee in cash when unpaid, otherwise marks the student
// unpaid. Marking unpaid leaves history and totalPaid untouched.
func (s *LedgerService) ToggleStudentFee(ctx context.Context, id int) (*models.Student, error) {
	now := s.now()
	var entry *models.StudentPayment
	updated, err := s.students.Mutate(ctx, id, func(st *models.Student) error {
		if st.FeesPaid {
			st.FeesPaid = false
			return nil
		}
		p := appendStudentPayment(st, st.FeeAmount, models.MethodCash, "", now, s.ids.Next())
		entry = &p
		return nil
	})
	if err != nil {
		return nil, translateRepoError(err, "student not found")
	}
	if entry != nil {
		s.recorded(models.DomainLibrary, entry.Method, entry.Amount)
	}
	return updated, nil
}

// MarkStudentUnpaid clears the paid flag.
func (s *LedgerService) MarkStudentUnpaid(ctx context.Context, id int) (*models.Student, error) {
	updated, err := s.students.Mutate(ctx, id, func(st *models.Student) error {
		st.FeesPaid = false
		return nil
	})
	if err != nil {
		return nil, translateRepoError(err, "student not found")
	}
	return updated, nil
}

// AddSalaryPayment records a salary payment. The base salary defaults to the
// employee's; the month defaults to the payment date's month.
func (s *LedgerService) AddSalaryPayment(ctx context.Context, id int, input models.SalaryPaymentInput) (*models.Employee, error) {
	fields, err := collectFieldErrors(s.validator, input)
	if err != nil {
		return nil, err
	}
	if !fields.Empty() {
		return nil, validationError("invalid salary payment", fields)
	}

	now := s.now()
	paidAt := now
	if input.Date != "" {
		if d, err := time.Parse(dateLayout, input.Date); err == nil {
			paidAt = d
		}
	}
	var entry models.SalaryPayment
	updated, err := s.employees.Mutate(ctx, id, func(emp *models.Employee) error {
		base := emp.BaseSalary
		if input.BaseSalary != nil {
			base = *input.BaseSalary
		}
		month := input.Month
		if month == "" {
			month = paidAt.Format(payrollMonthLong)
		}
		method := input.Method
		if method == "" {
			method = models.MethodBankTransfer
		}
		date := paidAt.Format(dateLayout)
		entry = models.SalaryPayment{
			ID:         len(emp.PaymentHistory) + 1,
			PaymentID:  s.ids.Next(),
			Date:       date,
			Month:      month,
			BaseSalary: base,
			Deductions: input.Deductions,
			Bonuses:    input.Bonuses,
			NetSalary:  CalculateNetSalary(base, input.Deductions, input.Bonuses),
			Method:     method,
			Status:     models.PaymentStatusValue,
			Notes:      input.Notes,
			Timestamp:  now.UTC().Format(time.RFC3339),
		}
		emp.PaymentHistory = append(emp.PaymentHistory, entry)
		emp.TotalPaid += entry.NetSalary
		emp.PaymentStatus = models.PaymentStatusPaid
		emp.LastPaymentDate = &date
		return nil
	})
	if err != nil {
		return nil, translateRepoError(err, "employee not found")
	}
	s.recorded(models.DomainPayroll, entry.Method, entry.NetSalary)
	s.logger.Info("salary payment recorded", zap.Int("employee_id", id), zap.Int64("payment_id", entry.PaymentID), zap.Float64("net_salary", entry.NetSalary))
	return updated, nil
}

// CalculateNetSalary returns base - deductions + bonuses. The result may be negative.
func CalculateNetSalary(base, deductions, bonuses float64) float64 {
	return base - deductions + bonuses
}

func (s *LedgerService) recorded(domain models.Domain, method string, amount float64) {
	if s.payments != nil {
		s.payments.RecordPayment(domain, method, amount)
	}
}

// appendStudentPayment adds a paid entry to st and updates its totals.
func appendStudentPayment(st *models.Student, amount float64, method, notes string, at time.Time, paymentID int64) models.StudentPayment {
	if method == "" {
		method = models.MethodCash
	}
	date := at.Format(dateLayout)
	entry := models.StudentPayment{
		ID:        len(st.PaymentHistory) + 1,
		PaymentID: paymentID,
		Date:      date,
		Month:     at.Format(studentMonthShort),
		Amount:    amount,
		Method:    method,
		Status:    models.PaymentStatusValue,
		Notes:     notes,
		Timestamp: at.UTC().Format(time.RFC3339),
	}
	st.PaymentHistory = append(st.PaymentHistory, entry)
	st.TotalPaid += amount
	st.FeesPaid = true
	st.LastFeeDate = &date
	return entry
}
