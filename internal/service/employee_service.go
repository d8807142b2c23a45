package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ledgerdesk-api/internal/models"
	"github.com/noah-isme/ledgerdesk-api/internal/repository"
	appErrors "github.com/noah-isme/ledgerdesk-api/pkg/errors"
)

// Payroll setting keys.
const (
	SettingPayDay   = "payDay"
	SettingCurrency = "currency"
)

type employeeStore interface {
	List(ctx context.Context) []models.Employee
	FindByID(ctx context.Context, id int) (*models.Employee, error)
	Add(ctx context.Context, employee models.Employee) (*models.Employee, error)
	Mutate(ctx context.Context, id int, fn func(*models.Employee) error) (*models.Employee, error)
	Delete(ctx context.Context, id int) error
	GenerateEmployeeID(ctx context.Context) string
}

type departmentStore interface {
	List(ctx context.Context) []models.Department
	Create(ctx context.Context, name string) (*models.Department, error)
	Delete(ctx context.Context, name string) error
}

type payrollSettingsStore interface {
	PayrollSettings(ctx context.Context) models.PayrollSettings
	SavePayrollSettings(ctx context.Context, values models.PayrollSettings) (models.PayrollSettings, error)
}

type payrollSettingsRules struct {
	Currency string `json:"currency" validate:"omitempty,iso4217"`
}

// EmployeeService implements payroll record and department operations.
type EmployeeService struct {
	repo        employeeStore
	departments departmentStore
	settings    payrollSettingsStore
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewEmployeeService constructs the service.
func NewEmployeeService(repo employeeStore, departments departmentStore, settings payrollSettingsStore, validate *validator.Validate, logger *zap.Logger) *EmployeeService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeService{
		repo:        repo,
		departments: departments,
		settings:    settings,
		validator:   validate,
		logger:      logger,
		now:         time.Now,
	}
}

// List returns employees matching filter.
func (s *EmployeeService) List(ctx context.Context, filter models.EmployeeFilter) []models.Employee {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	employees := s.repo.List(ctx)
	out := make([]models.Employee, 0, len(employees))
	for _, e := range employees {
		if search != "" && !matchesEmployee(e, search) {
			continue
		}
		if filter.Department != "" && e.Department != filter.Department {
			continue
		}
		if filter.PaymentStatus != "" && e.PaymentStatus != filter.PaymentStatus {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Get returns one employee.
func (s *EmployeeService) Get(ctx context.Context, id int) (*models.Employee, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err, "employee not found")
	}
	return e, nil
}

// GenerateEmployeeID returns the next free EMP### identifier.
func (s *EmployeeService) GenerateEmployeeID(ctx context.Context) string {
	return s.repo.GenerateEmployeeID(ctx)
}

// Create validates input and stores a new employee with a Pending payment status.
func (s *EmployeeService) Create(ctx context.Context, input models.EmployeeInput) (*models.Employee, error) {
	input = normalizeEmployeeInput(input)
	if err := s.validateEmployee(ctx, input, 0); err != nil {
		return nil, err
	}
	if input.EmployeeID == "" {
		input.EmployeeID = s.repo.GenerateEmployeeID(ctx)
	}
	if input.JoiningDate == "" {
		input.JoiningDate = s.now().Format(dateLayout)
	}
	if input.Status == "" {
		input.Status = models.EmployeeActive
	}

	created, err := s.repo.Add(ctx, models.Employee{
		EmployeeID:     input.EmployeeID,
		Name:           input.Name,
		Email:          input.Email,
		Phone:          input.Phone,
		Department:     input.Department,
		Position:       input.Position,
		BaseSalary:     input.BaseSalary,
		JoiningDate:    input.JoiningDate,
		Status:         input.Status,
		BankAccount:    input.BankAccount,
		Address:        input.Address,
		PaymentHistory: []models.SalaryPayment{},
		PaymentStatus:  models.PaymentStatusPending,
	})
	if err != nil {
		return nil, translateRepoError(err, "employee not found")
	}
	s.logger.Info("employee created", zap.Int("employee_id", created.ID), zap.String("code", created.EmployeeID))
	return created, nil
}

// Update replaces the editable fields. Payment history, totals and status are kept.
func (s *EmployeeService) Update(ctx context.Context, id int, input models.EmployeeInput) (*models.Employee, error) {
	input = normalizeEmployeeInput(input)
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, translateRepoError(err, "employee not found")
	}
	if err := s.validateEmployee(ctx, input, id); err != nil {
		return nil, err
	}
	updated, err := s.repo.Mutate(ctx, id, func(e *models.Employee) error {
		if input.EmployeeID != "" {
			e.EmployeeID = input.EmployeeID
		}
		e.Name = input.Name
		e.Email = input.Email
		e.Phone = input.Phone
		e.Department = input.Department
		e.Position = input.Position
		e.BaseSalary = input.BaseSalary
		if input.JoiningDate != "" {
			e.JoiningDate = input.JoiningDate
		}
		if input.Status != "" {
			e.Status = input.Status
		}
		e.BankAccount = input.BankAccount
		e.Address = input.Address
		return nil
	})
	if err != nil {
		return nil, translateRepoError(err, "employee not found")
	}
	return updated, nil
}

// Delete removes an employee.
func (s *EmployeeService) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return translateRepoError(err, "employee not found")
	}
	s.logger.Info("employee deleted", zap.Int("employee_id", id))
	return nil
}

// ListDepartments returns departments with live employee counts.
func (s *EmployeeService) ListDepartments(ctx context.Context) []models.Department {
	return s.departments.List(ctx)
}

// CreateDepartment registers a new department name.
func (s *EmployeeService) CreateDepartment(ctx context.Context, input models.DepartmentInput) (*models.Department, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, validationError("invalid department", FieldErrors{"name": "Department name is required"})
	}
	dept, err := s.departments.Create(ctx, input.Name)
	if err != nil {
		return nil, translateRepoError(err, "department not found")
	}
	return dept, nil
}

// DeleteDepartment removes a department no employee references.
func (s *EmployeeService) DeleteDepartment(ctx context.Context, name string) error {
	if err := s.departments.Delete(ctx, name); err != nil {
		return translateRepoError(err, "department not found")
	}
	return nil
}

// PayrollSettings returns the settings with defaults applied.
func (s *EmployeeService) PayrollSettings(ctx context.Context) models.PayrollSettings {
	return s.settings.PayrollSettings(ctx)
}

// UpdatePayrollSettings merges values into the stored settings. currency must be an
// ISO 4217 code and payDay either "last" or a day of month.
func (s *EmployeeService) UpdatePayrollSettings(ctx context.Context, values models.PayrollSettings) (models.PayrollSettings, error) {
	fields, err := collectFieldErrors(s.validator, payrollSettingsRules{Currency: values[SettingCurrency]})
	if err != nil {
		return nil, err
	}
	if _, bad := fields[SettingCurrency]; bad {
		fields.Set(SettingCurrency, "Currency must be an ISO 4217 code")
	}
	if day, ok := values[SettingPayDay]; ok && !validPayDay(day) {
		fields.Set(SettingPayDay, "Pay day must be last or a day between 1 and 31")
	}
	if !fields.Empty() {
		return nil, validationError("invalid payroll settings", fields)
	}
	merged, err := s.settings.SavePayrollSettings(ctx, values)
	if err != nil {
		return nil, translateRepoError(err, "settings not found")
	}
	return merged, nil
}

func (s *EmployeeService) validateEmployee(ctx context.Context, input models.EmployeeInput, excludeID int) error {
	fields, err := collectFieldErrors(s.validator, input)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid employee")
	}
	for _, other := range s.repo.List(ctx) {
		if other.ID == excludeID {
			continue
		}
		if input.Email != "" && strings.EqualFold(other.Email, input.Email) {
			fields.Set("email", "Email already exists")
		}
		if input.EmployeeID != "" && other.EmployeeID == input.EmployeeID {
			fields.Set("employeeId", "Employee ID already exists")
		}
	}
	if !fields.Empty() {
		return validationError("invalid employee", fields)
	}
	return nil
}

func normalizeEmployeeInput(input models.EmployeeInput) models.EmployeeInput {
	input.EmployeeID = strings.TrimSpace(input.EmployeeID)
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Department = strings.TrimSpace(input.Department)
	input.Position = strings.TrimSpace(input.Position)
	input.Address = strings.TrimSpace(input.Address)
	return input
}

func matchesEmployee(e models.Employee, search string) bool {
	return strings.Contains(strings.ToLower(e.Name), search) ||
		strings.Contains(strings.ToLower(e.Email), search) ||
		strings.Contains(strings.ToLower(e.EmployeeID), search) ||
		strings.Contains(strings.ToLower(e.Department), search) ||
		strings.Contains(strings.ToLower(e.Position), search)
}

func validPayDay(day string) bool {
	if day == "last" {
		return true
	}
	n, err := strconv.Atoi(day)
	return err == nil && n >= 1 && n <= 31
}

var (
	_ employeeStore        = (*repository.EmployeeRepository)(nil)
	_ departmentStore      = (*repository.DepartmentRepository)(nil)
	_ payrollSettingsStore = (*repository.SettingsRepository)(nil)
)
