package repository

import (
	"fmt"
	"strconv"

	"github.com/noah-isme/ledgerdesk-api/internal/models"
)

// SeatLabel formats a seat number as a zero padded label ("01".."80").
func SeatLabel(n int) string {
	return fmt.Sprintf("%02d", n)
}

// ValidSeat reports whether label names a seat within 1..total in canonical form.
func ValidSeat(label string, total int) bool {
	n, err := strconv.Atoi(label)
	if err != nil || n < 1 || n > total {
		return false
	}
	return SeatLabel(n) == label
}

// BuildSeatLayout derives the occupancy cache from the student collection.
func BuildSeatLayout(students []models.Student, total int) models.SeatLayout {
	layout := models.SeatLayout{
		Total:         total,
		Occupied:      make([]string, 0, len(students)),
		FullTimeSeats: make([]string, 0),
		HalfTimeSeats: make([]string, 0),
	}
	for _, s := range students {
		if s.SeatNumber == "" {
			continue
		}
		layout.Occupied = append(layout.Occupied, s.SeatNumber)
		switch s.PlanType {
		case models.PlanFullTime:
			layout.FullTimeSeats = append(layout.FullTimeSeats, s.SeatNumber)
		case models.PlanHalfTime:
			layout.HalfTimeSeats = append(layout.HalfTimeSeats, s.SeatNumber)
		}
	}
	return layout
}

// checkSeats verifies every student holds a distinct seat within range.
func checkSeats(students []models.Student, total int) error {
	seen := make(map[string]int, len(students))
	for _, s := range students {
		if !ValidSeat(s.SeatNumber, total) {
			return fmt.Errorf("student %d seat %q out of range: %w", s.ID, s.SeatNumber, ErrSeatUnavailable)
		}
		if other, ok := seen[s.SeatNumber]; ok {
			return fmt.Errorf("seat %s held by students %d and %d: %w", s.SeatNumber, other, s.ID, ErrSeatUnavailable)
		}
		seen[s.SeatNumber] = s.ID
	}
	return nil
}
