package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/noah-isme/ledgerdesk-api/internal/models"
)

type libraryReader interface {
	List(ctx context.Context) []models.Student
	SeatLayout(ctx context.Context) models.SeatLayout
	TotalSeats() int
}

type employeeReader interface {
	List(ctx context.Context) []models.Employee
}

type departmentReader interface {
	List(ctx context.Context) []models.Department
}

// StatsService computes dashboard figures straight from the stored collections.
type StatsService struct {
	students    libraryReader
	employees   employeeReader
	departments departmentReader
	now         func() time.Time
}

// NewStatsService constructs the service.
func NewStatsService(students libraryReader, employees employeeReader, departments departmentReader) *StatsService {
	return &StatsService{students: students, employees: employees, departments: departments, now: time.Now}
}

// Library summarises students, seats and fee revenue.
func (s *StatsService) Library(ctx context.Context) models.LibraryStats {
	students := s.students.List(ctx)
	layout := s.students.SeatLayout(ctx)
	thisMonth := s.now().Format(studentMonthShort)

	stats := models.LibraryStats{
		TotalStudents: len(students),
		TotalSeats:    s.students.TotalSeats(),
		OccupiedSeats: len(layout.Occupied),
	}
	stats.AvailableSeats = stats.TotalSeats - stats.OccupiedSeats

	byMonth := map[string]*models.MonthlyRevenue{}
	for _, st := range students {
		if st.Status == models.StudentActive {
			stats.ActiveStudents++
		}
		if !st.FeesPaid {
			stats.FeesPending++
		}
		switch st.PlanType {
		case models.PlanFullTime:
			stats.FullTimeStudents++
		case models.PlanHalfTime:
			stats.HalfTimeStudents++
		}
		for _, p := range st.PaymentHistory {
			stats.TotalRevenue += p.Amount
			stats.TotalPayments++
			if p.Month == thisMonth {
				stats.ThisMonthRevenue += p.Amount
			}
			if len(p.Date) < 7 {
				continue
			}
			key := p.Date[:7]
			bucket, ok := byMonth[key]
			if !ok {
				bucket = &models.MonthlyRevenue{Month: key}
				byMonth[key] = bucket
			}
			bucket.TotalRevenue += p.Amount
			bucket.TotalPayments++
		}
	}

	stats.MonthlyRevenue = make([]models.MonthlyRevenue, 0, len(byMonth))
	for _, bucket := range byMonth {
		stats.MonthlyRevenue = append(stats.MonthlyRevenue, *bucket)
	}
	sort.Slice(stats.MonthlyRevenue, func(i, j int) bool {
		return stats.MonthlyRevenue[i].Month > stats.MonthlyRevenue[j].Month
	})
	return stats
}

// Payroll summarises employees and salary payments.
func (s *StatsService) Payroll(ctx context.Context) models.PayrollStats {
	employees := s.employees.List(ctx)
	thisMonth := s.now().Format(payrollMonthLong)

	stats := models.PayrollStats{
		TotalEmployees:   len(employees),
		TotalDepartments: len(s.departments.List(ctx)),
	}
	var baseTotal float64
	for _, e := range employees {
		if e.Status == models.EmployeeActive {
			stats.ActiveEmployees++
		}
		if e.PaymentStatus == models.PaymentStatusPending {
			stats.PendingPayments++
			stats.PendingAmount += e.BaseSalary
		}
		baseTotal += e.BaseSalary
		for _, p := range e.PaymentHistory {
			stats.TotalPaid += p.NetSalary
			stats.TotalPayments++
			if p.Month == thisMonth {
				stats.ThisMonthPaid += p.NetSalary
				stats.ThisMonthPayments++
			}
		}
	}
	if len(employees) > 0 {
		stats.AverageSalary = math.Round(baseTotal / float64(len(employees)))
	}
	return stats
}
