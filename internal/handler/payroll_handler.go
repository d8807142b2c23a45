package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ledgerdesk-api/internal/models"
	"github.com/noah-isme/ledgerdesk-api/internal/service"
	"github.com/noah-isme/ledgerdesk-api/pkg/response"
)

type employeeService interface {
	List(ctx context.Context, filter models.EmployeeFilter) []models.Employee
	Get(ctx context.Context, id int) (*models.Employee, error)
	Create(ctx context.Context, input models.EmployeeInput) (*models.Employee, error)
	Update(ctx context.Context, id int, input models.EmployeeInput) (*models.Employee, error)
	Delete(ctx context.Context, id int) error
	GenerateEmployeeID(ctx context.Context) string
	ListDepartments(ctx context.Context) []models.Department
	CreateDepartment(ctx context.Context, input models.DepartmentInput) (*models.Department, error)
	DeleteDepartment(ctx context.Context, name string) error
	PayrollSettings(ctx context.Context) models.PayrollSettings
	UpdatePayrollSettings(ctx context.Context, values models.PayrollSettings) (models.PayrollSettings, error)
}

type salaryLedgerService interface {
	AddSalaryPayment(ctx context.Context, id int, input models.SalaryPaymentInput) (*models.Employee, error)
}

type payrollStatsService interface {
	Payroll(ctx context.Context) models.PayrollStats
}

type payrollReportService interface {
	PayrollPayments(ctx context.Context, req service.LedgerReportRequest) (*service.ReportFile, error)
}

// PayrollHandler exposes employee, department and salary endpoints.
type PayrollHandler struct {
	employees employeeService
	ledger    salaryLedgerService
	stats     payrollStatsService
	reports   payrollReportService
}

// NewPayrollHandler constructs PayrollHandler.
func NewPayrollHandler(employees employeeService, ledger salaryLedgerService, stats payrollStatsService, reports payrollReportService) *PayrollHandler {
	return &PayrollHandler{employees: employees, ledger: ledger, stats: stats, reports: reports}
}

// ListEmployees godoc
// @Summary List employees
// @Tags Payroll
// @Produce json
// @Param search query string false "Match name, email, code, department or position"
// @Param department query string false "Department name"
// @Param paymentStatus query string false "Paid or Pending"
// @Param status query string false "Active or Inactive"
// @Success 200 {object} response.Envelope
// @Router /payroll/employees [get]
func (h *PayrollHandler) ListEmployees(c *gin.Context) {
	employees := h.employees.List(c.Request.Context(), models.EmployeeFilter{
		Search:        strings.TrimSpace(c.Query("search")),
		Department:    c.Query("department"),
		PaymentStatus: c.Query("paymentStatus"),
		Status:        c.Query("status"),
	})
	response.OK(c, employees, countMeta(len(employees)))
}

// NextEmployeeID godoc
// @Summary Next free employee code
// @Tags Payroll
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /payroll/employees/next-id [get]
func (h *PayrollHandler) NextEmployeeID(c *gin.Context) {
	response.OK(c, gin.H{"employeeId": h.employees.GenerateEmployeeID(c.Request.Context())})
}

// GetEmployee godoc
// @Summary Get employee
// @Tags Payroll
// @Produce json
// @Param id path int true "Employee ID"
// @Success 200 {object} response.Envelope
// @Router /payroll/employees/{id} [get]
func (h *PayrollHandler) GetEmployee(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	employee, err := h.employees.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, employee)
}

// CreateEmployee godoc
// @Summary Create employee
// @Tags Payroll
// @Accept json
// @Produce json
// @Param payload body models.EmployeeInput true "Employee payload"
// @Success 201 {object} response.Envelope
// @Router /payroll/employees [post]
func (h *PayrollHandler) CreateEmployee(c *gin.Context) {
	var input models.EmployeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	employee, err := h.employees.Create(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, employee)
}

// UpdateEmployee godoc
// @Summary Update employee
// @Tags Payroll
// @Accept json
// @Produce json
// @Param id path int true "Employee ID"
// @Param payload body models.EmployeeInput true "Employee payload"
// @Success 200 {object} response.Envelope
// @Router /payroll/employees/{id} [put]
func (h *PayrollHandler) UpdateEmployee(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var input models.EmployeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	employee, err := h.employees.Update(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, employee)
}

// DeleteEmployee godoc
// @Summary Delete employee
// @Tags Payroll
// @Param id path int true "Employee ID"
// @Success 204
// @Router /payroll/employees/{id} [delete]
func (h *PayrollHandler) DeleteEmployee(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.employees.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddPayment godoc
// @Summary Record a salary payment
// @Tags Payroll
// @Accept json
// @Produce json
// @Param id path int true "Employee ID"
// @Param payload body models.SalaryPaymentInput true "Salary payment"
// @Success 201 {object} response.Envelope
// @Router /payroll/employees/{id}/payments [post]
func (h *PayrollHandler) AddPayment(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var input models.SalaryPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	employee, err := h.ledger.AddSalaryPayment(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, employee)
}

// ListDepartments godoc
// @Summary List departments with employee counts
// @Tags Payroll
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /payroll/departments [get]
func (h *PayrollHandler) ListDepartments(c *gin.Context) {
	departments := h.employees.ListDepartments(c.Request.Context())
	response.OK(c, departments, countMeta(len(departments)))
}

// CreateDepartment godoc
// @Summary Create department
// @Tags Payroll
// @Accept json
// @Produce json
// @Param payload body models.DepartmentInput true "Department"
// @Success 201 {object} response.Envelope
// @Router /payroll/departments [post]
func (h *PayrollHandler) CreateDepartment(c *gin.Context) {
	var input models.DepartmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	department, err := h.employees.CreateDepartment(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, department)
}

// DeleteDepartment godoc
// @Summary Delete an empty department
// @Tags Payroll
// @Param name path string true "Department name"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /payroll/departments/{name} [delete]
func (h *PayrollHandler) DeleteDepartment(c *gin.Context) {
	if err := h.employees.DeleteDepartment(c.Request.Context(), c.Param("name")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Settings godoc
// @Summary Payroll settings
// @Tags Payroll
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /payroll/settings [get]
func (h *PayrollHandler) Settings(c *gin.Context) {
	response.OK(c, h.employees.PayrollSettings(c.Request.Context()))
}

// UpdateSettings godoc
// @Summary Merge payroll settings
// @Tags Payroll
// @Accept json
// @Produce json
// @Param payload body map[string]string true "Settings"
// @Success 200 {object} response.Envelope
// @Router /payroll/settings [put]
func (h *PayrollHandler) UpdateSettings(c *gin.Context) {
	var values models.PayrollSettings
	if err := c.ShouldBindJSON(&values); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	settings, err := h.employees.UpdatePayrollSettings(c.Request.Context(), values)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, settings)
}

// Stats godoc
// @Summary Payroll dashboard statistics
// @Tags Payroll
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /payroll/stats [get]
func (h *PayrollHandler) Stats(c *gin.Context) {
	response.OK(c, h.stats.Payroll(c.Request.Context()))
}

// PaymentsReport godoc
// @Summary Download the salary ledger
// @Tags Payroll
// @Produce text/csv,application/pdf
// @Param format query string false "csv or pdf"
// @Param period query string false "YYYY or YYYY-MM"
// @Success 200 {file} file
// @Router /payroll/reports/payments [get]
func (h *PayrollHandler) PaymentsReport(c *gin.Context) {
	file, err := h.reports.PayrollPayments(c.Request.Context(), service.LedgerReportRequest{
		Format: c.Query("format"),
		Period: c.Query("period"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
