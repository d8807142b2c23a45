package models

import "time"

// Domain names a namespace that can be exported, imported or cleared.
type Domain string

const (
	DomainLibrary Domain = "library"
	DomainPayroll Domain = "payroll"
)

// Valid reports whether d is a known domain.
func (d Domain) Valid() bool {
	return d == DomainLibrary || d == DomainPayroll
}

// LibraryExport is the library backup document.
type LibraryExport struct {
	Students   []Student       `json:"students"`
	SeatLayout *SeatLayout     `json:"seatLayout,omitempty"`
	Timings    *LibraryTimings `json:"timings,omitempty"`
	ExportDate string          `json:"exportDate"`
}

// PayrollExport is the payroll backup document.
type PayrollExport struct {
	Employees   []Employee      `json:"employees"`
	Departments []Department    `json:"departments"`
	Settings    PayrollSettings `json:"settings,omitempty"`
	ExportDate  string          `json:"exportDate"`
}

// Snapshot describes an archived export document.
type Snapshot struct {
	Domain      Domain    `json:"domain"`
	Key         string    `json:"key"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
	Pending     bool      `json:"pending,omitempty"`
	DownloadURL string    `json:"downloadUrl,omitempty"`
	ExpiresAt   time.Time `json:"expiresAt,omitempty"`
}

// RestoreSnapshotInput selects an archived snapshot to import.
type RestoreSnapshotInput struct {
	Key string `json:"key" validate:"required"`
}
