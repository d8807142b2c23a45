package models

import "time"

// LibraryStats summarises the library dashboard.
type LibraryStats struct {
	TotalStudents    int              `json:"totalStudents"`
	ActiveStudents   int              `json:"activeStudents"`
	FeesPending      int              `json:"feesPending"`
	FullTimeStudents int              `json:"fullTimeStudents"`
	HalfTimeStudents int              `json:"halfTimeStudents"`
	TotalSeats       int              `json:"totalSeats"`
	OccupiedSeats    int              `json:"occupiedSeats"`
	AvailableSeats   int              `json:"availableSeats"`
	TotalRevenue     float64          `json:"totalRevenue"`
	TotalPayments    int              `json:"totalPayments"`
	ThisMonthRevenue float64          `json:"thisMonthRevenue"`
	MonthlyRevenue   []MonthlyRevenue `json:"monthlyRevenue"`
}

// MonthlyRevenue aggregates payments by calendar month (YYYY-MM), newest first.
type MonthlyRevenue struct {
	Month         string  `json:"month"`
	TotalRevenue  float64 `json:"totalRevenue"`
	TotalPayments int     `json:"totalPayments"`
}

// PayrollStats summarises the payroll dashboard.
type PayrollStats struct {
	TotalEmployees    int     `json:"totalEmployees"`
	ActiveEmployees   int     `json:"activeEmployees"`
	TotalDepartments  int     `json:"totalDepartments"`
	TotalPaid         float64 `json:"totalPaid"`
	TotalPayments     int     `json:"totalPayments"`
	ThisMonthPaid     float64 `json:"thisMonthPaid"`
	ThisMonthPayments int     `json:"thisMonthPayments"`
	PendingPayments   int     `json:"pendingPayments"`
	PendingAmount     float64 `json:"pendingAmount"`
	AverageSalary     float64 `json:"averageSalary"`
}

// SystemMetrics is a lightweight view of the process counters served with the health check.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	StoreOperations          uint64    `json:"storeOperations"`
	StoreFailures            uint64    `json:"storeFailures"`
	PaymentsRecorded         uint64    `json:"paymentsRecorded"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}
