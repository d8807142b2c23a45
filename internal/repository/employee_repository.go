package repository

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/ledgerdesk-api/internal/models"
)

var employeeIDPattern = regexp.MustCompile(`^EMP(\d+)$`)

// EmployeeRepository persists payroll employees together with the department counts
// derived from them.
type EmployeeRepository struct {
	store  Store
	logger *zap.Logger
}

// NewEmployeeRepository constructs the repository over the payroll namespace.
func NewEmployeeRepository(store Store, logger *zap.Logger) *EmployeeRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeRepository{store: store, logger: logger}
}

// List returns every employee in insertion order.
func (r *EmployeeRepository) List(ctx context.Context) []models.Employee {
	employees, _ := loadEmployees(ctx, r.store)
	return employees
}

// FindByID returns the employee with the numeric id.
func (r *EmployeeRepository) FindByID(ctx context.Context, id int) (*models.Employee, error) {
	employees, _ := loadEmployees(ctx, r.store)
	idx := indexOfEmployee(employees, id)
	if idx < 0 {
		return nil, fmt.Errorf("find employee %d: %w", id, ErrNotFound)
	}
	e := employees[idx]
	return &e, nil
}

// Add assigns the next id and recounts departments in the same write.
func (r *EmployeeRepository) Add(ctx context.Context, employee models.Employee) (*models.Employee, error) {
	var created models.Employee
	err := r.store.Exclusive(func() error {
		current, existed := loadEmployees(ctx, r.store)
		next := cloneEmployees(current)

		employee.ID = nextEmployeeID(current)
		if employee.PaymentHistory == nil {
			employee.PaymentHistory = []models.SalaryPayment{}
		}
		next = append(next, employee)
		if err := employeeConflict(next, len(next)-1, nil); err != nil {
			return fmt.Errorf("add employee: %w", err)
		}
		if err := r.persist(ctx, current, existed, next); err != nil {
			return fmt.Errorf("add employee: %w", err)
		}
		created = employee
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Update replaces the stored employee carrying the same id.
func (r *EmployeeRepository) Update(ctx context.Context, employee models.Employee) (*models.Employee, error) {
	return r.Mutate(ctx, employee.ID, func(current *models.Employee) error {
		*current = employee
		return nil
	})
}

// Mutate applies fn to the stored employee under the namespace lock and persists the
// result. An error from fn aborts without writing.
func (r *EmployeeRepository) Mutate(ctx context.Context, id int, fn func(*models.Employee) error) (*models.Employee, error) {
	var updated models.Employee
	err := r.store.Exclusive(func() error {
		current, existed := loadEmployees(ctx, r.store)
		idx := indexOfEmployee(current, id)
		if idx < 0 {
			return fmt.Errorf("update employee %d: %w", id, ErrNotFound)
		}
		next := cloneEmployees(current)
		if err := fn(&next[idx]); err != nil {
			return err
		}
		next[idx].ID = id
		if next[idx].PaymentHistory == nil {
			next[idx].PaymentHistory = []models.SalaryPayment{}
		}
		if err := employeeConflict(next, idx, &current[idx]); err != nil {
			return fmt.Errorf("update employee %d: %w", id, err)
		}
		if err := r.persist(ctx, current, existed, next); err != nil {
			return fmt.Errorf("update employee %d: %w", id, err)
		}
		updated = next[idx]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the employee; its department loses one from its count.
func (r *EmployeeRepository) Delete(ctx context.Context, id int) error {
	return r.store.Exclusive(func() error {
		current, existed := loadEmployees(ctx, r.store)
		idx := indexOfEmployee(current, id)
		if idx < 0 {
			return fmt.Errorf("delete employee %d: %w", id, ErrNotFound)
		}
		next := make([]models.Employee, 0, len(current)-1)
		next = append(next, current[:idx]...)
		next = append(next, current[idx+1:]...)
		if err := r.persist(ctx, current, existed, next); err != nil {
			return fmt.Errorf("delete employee %d: %w", id, err)
		}
		return nil
	})
}

// GenerateEmployeeID returns EMP followed by the highest numeric suffix plus one, padded
// to three digits. Ids not matching EMP<digits> are ignored.
func (r *EmployeeRepository) GenerateEmployeeID(ctx context.Context) string {
	employees, _ := loadEmployees(ctx, r.store)
	maxID := 0
	for _, e := range employees {
		m := employeeIDPattern.FindStringSubmatch(e.EmployeeID)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err == nil && n > maxID {
			maxID = n
		}
	}
	return fmt.Sprintf("EMP%03d", maxID+1)
}

// ReplaceAll swaps employees and departments (import). Department counts are recomputed.
func (r *EmployeeRepository) ReplaceAll(ctx context.Context, employees []models.Employee, departments []models.Department) error {
	next := cloneEmployees(employees)
	ids := make(map[int]bool, len(next))
	for i := range next {
		if ids[next[i].ID] {
			return fmt.Errorf("replace employees: id %d: %w", next[i].ID, ErrDuplicate)
		}
		ids[next[i].ID] = true
		if next[i].PaymentHistory == nil {
			next[i].PaymentHistory = []models.SalaryPayment{}
		}
	}
	names := make(map[string]bool, len(departments))
	for _, d := range departments {
		if names[d.Name] {
			return fmt.Errorf("replace departments: %q: %w", d.Name, ErrDuplicate)
		}
		names[d.Name] = true
	}
	return r.store.Exclusive(func() error {
		current, existed := loadEmployees(ctx, r.store)
		if err := r.write(ctx, current, existed, next, departments); err != nil {
			return fmt.Errorf("replace employees: %w", err)
		}
		return nil
	})
}

// Initialize seeds employees and departments when the employee key is absent.
func (r *EmployeeRepository) Initialize(ctx context.Context, employees []models.Employee, departments []models.Department) (bool, error) {
	seeded := false
	err := r.store.Exclusive(func() error {
		present, err := r.store.Lookup(ctx, KeyEmployees)
		if err != nil {
			return fmt.Errorf("seed employees: %v: %w", err, ErrPersistence)
		}
		if present {
			return nil
		}
		if err := r.write(ctx, nil, false, cloneEmployees(employees), departments); err != nil {
			return fmt.Errorf("seed employees: %w", err)
		}
		seeded = true
		return nil
	})
	if seeded {
		r.logger.Info("payroll store initialized with sample employees", zap.Int("count", len(employees)))
	}
	return seeded, err
}

// Clear removes every payroll key.
func (r *EmployeeRepository) Clear(ctx context.Context) error {
	return r.store.Exclusive(func() error {
		if !r.store.Clear(ctx) {
			return fmt.Errorf("clear payroll: %w", ErrPersistence)
		}
		return nil
	})
}

func (r *EmployeeRepository) persist(ctx context.Context, previous []models.Employee, existed bool, next []models.Employee) error {
	departments, _ := loadDepartments(ctx, r.store)
	return r.write(ctx, previous, existed, next, departments)
}

// write stores employees and then the recounted departments, restoring the previous
// employee blob if the department write fails.
func (r *EmployeeRepository) write(ctx context.Context, previous []models.Employee, existed bool, next []models.Employee, departments []models.Department) error {
	if !r.store.Set(ctx, KeyEmployees, next) {
		return fmt.Errorf("write employees: %w", ErrPersistence)
	}
	if r.store.Set(ctx, KeyDepartments, RecountDepartments(departments, next)) {
		return nil
	}
	var restored bool
	if existed {
		restored = r.store.Set(ctx, KeyEmployees, previous)
	} else {
		restored = r.store.Remove(ctx, KeyEmployees)
	}
	if !restored {
		r.logger.Error("employee rollback failed; department counts may be stale")
	}
	return fmt.Errorf("write departments: %w", ErrPersistence)
}

// RecountDepartments returns departments with EmployeeCount set from employees. Employees
// whose department is missing are counted nowhere.
func RecountDepartments(departments []models.Department, employees []models.Employee) []models.Department {
	counts := make(map[string]int, len(departments))
	for _, e := range employees {
		counts[e.Department]++
	}
	out := make([]models.Department, len(departments))
	for i, d := range departments {
		d.EmployeeCount = counts[d.Name]
		out[i] = d
	}
	return out
}

func loadEmployees(ctx context.Context, store Store) ([]models.Employee, bool) {
	employees := make([]models.Employee, 0)
	existed := store.Get(ctx, KeyEmployees, &employees)
	if employees == nil {
		employees = make([]models.Employee, 0)
	}
	return employees, existed
}

func loadDepartments(ctx context.Context, store Store) ([]models.Department, bool) {
	departments := make([]models.Department, 0)
	existed := store.Get(ctx, KeyDepartments, &departments)
	if departments == nil {
		departments = make([]models.Department, 0)
	}
	return departments, existed
}

func indexOfEmployee(employees []models.Employee, id int) int {
	for i := range employees {
		if employees[i].ID == id {
			return i
		}
	}
	return -1
}

func nextEmployeeID(employees []models.Employee) int {
	maxID := 0
	for _, e := range employees {
		if e.ID > maxID {
			maxID = e.ID
		}
	}
	return maxID + 1
}

func cloneEmployees(in []models.Employee) []models.Employee {
	out := make([]models.Employee, len(in))
	for i, e := range in {
		if e.PaymentHistory != nil {
			e.PaymentHistory = append(make([]models.SalaryPayment, 0, len(e.PaymentHistory)), e.PaymentHistory...)
		}
		if e.LastPaymentDate != nil {
			d := *e.LastPaymentDate
			e.LastPaymentDate = &d
		}
		out[i] = e
	}
	return out
}
