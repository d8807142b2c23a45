package models

// DefaultTotalSeats is the library capacity when none is configured.
const DefaultTotalSeats = 80

// SeatLayout is the persisted occupancy cache. It is always recomputed from students.
type SeatLayout struct {
	Total         int      `json:"total"`
	Occupied      []string `json:"occupied"`
	FullTimeSeats []string `json:"fullTimeSeats"`
	HalfTimeSeats []string `json:"halfTimeSeats"`
}
