package repository

import (
	"fmt"
	"strings"

	"github.com/noah-isme/ledgerdesk-api/internal/models"
)

// ConflictError reports a unique field already held by another record. Field is the JSON
// name of the field.
type ConflictError struct {
	Field string
	ID    int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already used by record %d", e.Field, e.ID)
}

func (e *ConflictError) Unwrap() error { return ErrDuplicate }

// studentConflict checks the record at idx against every other student. Fields left
// unchanged since previous are skipped so duplicates that arrived through import do not
// block unrelated updates.
func studentConflict(students []models.Student, idx int, previous *models.Student) error {
	s := students[idx]
	checkEmail := s.Email != "" && (previous == nil || !strings.EqualFold(previous.Email, s.Email))
	checkPhone := s.Phone != "" && (previous == nil || previous.Phone != s.Phone)
	if !checkEmail && !checkPhone {
		return nil
	}
	for i, other := range students {
		if i == idx {
			continue
		}
		if checkEmail && strings.EqualFold(other.Email, s.Email) {
			return &ConflictError{Field: "email", ID: other.ID}
		}
		if checkPhone && other.Phone == s.Phone {
			return &ConflictError{Field: "phone", ID: other.ID}
		}
	}
	return nil
}

// employeeConflict is studentConflict for email and employeeId.
func employeeConflict(employees []models.Employee, idx int, previous *models.Employee) error {
	e := employees[idx]
	checkEmail := e.Email != "" && (previous == nil || !strings.EqualFold(previous.Email, e.Email))
	checkCode := e.EmployeeID != "" && (previous == nil || previous.EmployeeID != e.EmployeeID)
	if !checkEmail && !checkCode {
		return nil
	}
	for i, other := range employees {
		if i == idx {
			continue
		}
		if checkEmail && strings.EqualFold(other.Email, e.Email) {
			return &ConflictError{Field: "email", ID: other.ID}
		}
		if checkCode && other.EmployeeID == e.EmployeeID {
			return &ConflictError{Field: "employeeId", ID: other.ID}
		}
	}
	return nil
}
