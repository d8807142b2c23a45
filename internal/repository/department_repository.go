package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/noah-isme/ledgerdesk-api/internal/models"
)

// DepartmentRepository manages the payroll department list. Counts are always derived
// from the employee collection.
type DepartmentRepository struct {
	store Store
}

// NewDepartmentRepository constructs the repository over the payroll namespace.
func NewDepartmentRepository(store Store) *DepartmentRepository {
	return &DepartmentRepository{store: store}
}

// List returns departments with counts recomputed from current employees.
func (r *DepartmentRepository) List(ctx context.Context) []models.Department {
	departments, _ := loadDepartments(ctx, r.store)
	employees, _ := loadEmployees(ctx, r.store)
	return RecountDepartments(departments, employees)
}

// Exists reports whether a department with name is registered.
func (r *DepartmentRepository) Exists(ctx context.Context, name string) bool {
	departments, _ := loadDepartments(ctx, r.store)
	return indexOfDepartment(departments, name) >= 0
}

// Create appends a department with the next id. Names are unique case-insensitively.
func (r *DepartmentRepository) Create(ctx context.Context, name string) (*models.Department, error) {
	var created models.Department
	err := r.store.Exclusive(func() error {
		departments, _ := loadDepartments(ctx, r.store)
		for _, d := range departments {
			if strings.EqualFold(d.Name, name) {
				return fmt.Errorf("create department %q: %w", name, ErrDuplicate)
			}
		}
		maxID := 0
		for _, d := range departments {
			if d.ID > maxID {
				maxID = d.ID
			}
		}
		employees, _ := loadEmployees(ctx, r.store)
		next := RecountDepartments(append(departments, models.Department{ID: maxID + 1, Name: name}), employees)
		if !r.store.Set(ctx, KeyDepartments, next) {
			return fmt.Errorf("create department %q: %w", name, ErrPersistence)
		}
		created = next[len(next)-1]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Delete removes an empty department.
func (r *DepartmentRepository) Delete(ctx context.Context, name string) error {
	return r.store.Exclusive(func() error {
		departments, _ := loadDepartments(ctx, r.store)
		idx := indexOfDepartment(departments, name)
		if idx < 0 {
			return fmt.Errorf("delete department %q: %w", name, ErrNotFound)
		}
		employees, _ := loadEmployees(ctx, r.store)
		for _, e := range employees {
			if e.Department == name {
				return fmt.Errorf("delete department %q: %w", name, ErrDepartmentInUse)
			}
		}
		next := make([]models.Department, 0, len(departments)-1)
		next = append(next, departments[:idx]...)
		next = append(next, departments[idx+1:]...)
		if !r.store.Set(ctx, KeyDepartments, RecountDepartments(next, employees)) {
			return fmt.Errorf("delete department %q: %w", name, ErrPersistence)
		}
		return nil
	})
}

func indexOfDepartment(departments []models.Department, name string) int {
	for i := range departments {
		if departments[i].Name == name {
			return i
		}
	}
	return -1
}
