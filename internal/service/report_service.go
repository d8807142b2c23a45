package service

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/ledgerdesk-api/internal/models"
	appErrors "github.com/noah-isme/ledgerdesk-api/pkg/errors"
	"github.com/noah-isme/ledgerdesk-api/pkg/export"
)

const libraryCurrency = "INR"

var periodPattern = regexp.MustCompile(`^\d{4}(-\d{2})?$`)

type studentLister interface {
	List(ctx context.Context) []models.Student
}

type payrollSettingsReader interface {
	PayrollSettings(ctx context.Context) models.PayrollSettings
}

// LedgerReportRequest selects the output format and an optional period, either YYYY or
// YYYY-MM, matched against payment dates.
type LedgerReportRequest struct {
	Format string
	Period string
}

// ReportFile is a rendered document ready to be served as an attachment.
type ReportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ReportService renders the payment ledgers as CSV or PDF documents.
type ReportService struct {
	students  studentLister
	employees employeeReader
	settings  payrollSettingsReader
	logger    *zap.Logger
	now       func() time.Time
}

// NewReportService constructs the service.
func NewReportService(students studentLister, employees employeeReader, settings payrollSettingsReader, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{students: students, employees: employees, settings: settings, logger: logger, now: time.Now}
}

// StudentLedger flattens every student fee payment, oldest first.
func (s *ReportService) StudentLedger(ctx context.Context, period string) []models.LedgerEntry {
	entries := make([]models.LedgerEntry, 0)
	for _, st := range s.students.List(ctx) {
		for _, p := range st.PaymentHistory {
			if !inPeriod(p.Date, period) {
				continue
			}
			entries = append(entries, models.LedgerEntry{
				PaymentID: p.PaymentID,
				Date:      p.Date,
				Month:     p.Month,
				Party:     st.Name,
				Reference: st.SeatNumber,
				Method:    p.Method,
				Amount:    p.Amount,
				Notes:     p.Notes,
			})
		}
	}
	sortLedger(entries)
	return entries
}

// PayrollLedger flattens every salary payment, oldest first. Amount is the net salary.
func (s *ReportService) PayrollLedger(ctx context.Context, period string) []models.LedgerEntry {
	entries := make([]models.LedgerEntry, 0)
	for _, e := range s.employees.List(ctx) {
		for _, p := range e.PaymentHistory {
			if !inPeriod(p.Date, period) {
				continue
			}
			entries = append(entries, models.LedgerEntry{
				PaymentID: p.PaymentID,
				Date:      p.Date,
				Month:     p.Month,
				Party:     e.Name,
				Reference: e.EmployeeID,
				Method:    p.Method,
				Amount:    p.NetSalary,
				Notes:     p.Notes,
			})
		}
	}
	sortLedger(entries)
	return entries
}

// LibraryPayments renders the student fee ledger.
func (s *ReportService) LibraryPayments(ctx context.Context, req LedgerReportRequest) (*ReportFile, error) {
	if err := validatePeriod(req.Period); err != nil {
		return nil, err
	}
	entries := s.StudentLedger(ctx, req.Period)
	return s.render(req, "library-payments", "Library Fee Payments", "Student", "Seat", libraryCurrency, entries)
}

// PayrollPayments renders the salary ledger in the configured currency.
func (s *ReportService) PayrollPayments(ctx context.Context, req LedgerReportRequest) (*ReportFile, error) {
	if err := validatePeriod(req.Period); err != nil {
		return nil, err
	}
	currency := s.settings.PayrollSettings(ctx)[SettingCurrency]
	entries := s.PayrollLedger(ctx, req.Period)
	return s.render(req, "payroll-payments", "Payroll Salary Payments", "Employee", "Employee ID", currency, entries)
}

func (s *ReportService) render(req LedgerReportRequest, slug, title, partyHeader, referenceHeader, currency string, entries []models.LedgerEntry) (*ReportFile, error) {
	format, err := export.ParseFormat(req.Format)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	renderer := export.RendererFor(format)

	var total float64
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		total += e.Amount
		rows = append(rows, []string{
			strconv.FormatInt(e.PaymentID, 10),
			e.Date,
			e.Month,
			e.Party,
			e.Reference,
			e.Method,
			formatAmount(e.Amount),
			e.Notes,
		})
	}
	if req.Period != "" {
		title = fmt.Sprintf("%s (%s)", title, req.Period)
	}
	body, err := renderer.Render(export.Dataset{
		Title:   title,
		Headers: []string{"Payment ID", "Date", "Month", partyHeader, referenceHeader, "Method", "Amount", "Notes"},
		Rows:    rows,
		Numeric: []int{0, 6},
		Footer: []string{
			fmt.Sprintf("Payments: %d", len(entries)),
			fmt.Sprintf("Total: %s %s", currency, formatAmount(total)),
		},
	})
	if err != nil {
		s.logger.Error("render ledger report", zap.String("report", slug), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}
	return &ReportFile{
		Filename:    fmt.Sprintf("%s-%s.%s", slug, s.now().Format("20060102"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}

func validatePeriod(period string) error {
	if period == "" || periodPattern.MatchString(period) {
		return nil
	}
	return validationError("invalid report period", FieldErrors{"period": "Period must be YYYY or YYYY-MM"})
}

func inPeriod(date, period string) bool {
	return period == "" || (len(date) >= len(period) && date[:len(period)] == period)
}

func sortLedger(entries []models.LedgerEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date < entries[j].Date
		}
		return entries[i].PaymentID < entries[j].PaymentID
	})
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
