package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/ledgerdesk-api/internal/models"
)

// StudentRepository persists library students and keeps the seat layout in step with them.
type StudentRepository struct {
	store      Store
	totalSeats int
	logger     *zap.Logger
}

// NewStudentRepository constructs the repository over the library namespace.
func NewStudentRepository(store Store, totalSeats int, logger *zap.Logger) *StudentRepository {
	if totalSeats <= 0 {
		totalSeats = models.DefaultTotalSeats
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentRepository{store: store, totalSeats: totalSeats, logger: logger}
}

// TotalSeats returns the configured capacity.
func (r *StudentRepository) TotalSeats() int {
	return r.totalSeats
}

// List returns every student in insertion order.
func (r *StudentRepository) List(ctx context.Context) []models.Student {
	students, _ := r.load(ctx)
	return students
}

// FindByID returns the student with id.
func (r *StudentRepository) FindByID(ctx context.Context, id int) (*models.Student, error) {
	students, _ := r.load(ctx)
	idx := indexOfStudent(students, id)
	if idx < 0 {
		return nil, fmt.Errorf("find student %d: %w", id, ErrNotFound)
	}
	s := students[idx]
	return &s, nil
}

// Add assigns the next id and claims the student's seat in the same write.
func (r *StudentRepository) Add(ctx context.Context, student models.Student) (*models.Student, error) {
	var created models.Student
	err := r.store.Exclusive(func() error {
		current, existed := r.load(ctx)
		next := cloneStudents(current)

		student.ID = nextStudentID(current)
		if student.PaymentHistory == nil {
			student.PaymentHistory = []models.StudentPayment{}
		}
		next = append(next, student)
		if err := studentConflict(next, len(next)-1, nil); err != nil {
			return fmt.Errorf("add student: %w", err)
		}
		if err := checkSeats(next, r.totalSeats); err != nil {
			return fmt.Errorf("add student: %w", err)
		}
		if err := r.persist(ctx, current, existed, next); err != nil {
			return fmt.Errorf("add student: %w", err)
		}
		created = student
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Update replaces the stored student carrying the same id. Moving seats releases the old
// one and claims the new one in the same write.
func (r *StudentRepository) Update(ctx context.Context, student models.Student) (*models.Student, error) {
	return r.Mutate(ctx, student.ID, func(current *models.Student) error {
		*current = student
		return nil
	})
}

// Mutate applies fn to the stored student under the namespace lock and persists the
// result. An error from fn aborts without writing.
func (r *StudentRepository) Mutate(ctx context.Context, id int, fn func(*models.Student) error) (*models.Student, error) {
	var updated models.Student
	err := r.store.Exclusive(func() error {
		current, existed := r.load(ctx)
		idx := indexOfStudent(current, id)
		if idx < 0 {
			return fmt.Errorf("update student %d: %w", id, ErrNotFound)
		}
		next := cloneStudents(current)
		if err := fn(&next[idx]); err != nil {
			return err
		}
		next[idx].ID = id
		if next[idx].PaymentHistory == nil {
			next[idx].PaymentHistory = []models.StudentPayment{}
		}
		if err := studentConflict(next, idx, &current[idx]); err != nil {
			return fmt.Errorf("update student %d: %w", id, err)
		}
		if err := checkSeats(next, r.totalSeats); err != nil {
			return fmt.Errorf("update student %d: %w", id, err)
		}
		if err := r.persist(ctx, current, existed, next); err != nil {
			return fmt.Errorf("update student %d: %w", id, err)
		}
		updated = next[idx]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the student and frees the seat.
func (r *StudentRepository) Delete(ctx context.Context, id int) error {
	return r.store.Exclusive(func() error {
		current, existed := r.load(ctx)
		idx := indexOfStudent(current, id)
		if idx < 0 {
			return fmt.Errorf("delete student %d: %w", id, ErrNotFound)
		}
		next := make([]models.Student, 0, len(current)-1)
		next = append(next, current[:idx]...)
		next = append(next, current[idx+1:]...)
		if err := r.persist(ctx, current, existed, next); err != nil {
			return fmt.Errorf("delete student %d: %w", id, err)
		}
		return nil
	})
}

// SeatLayout returns the occupancy derived from the current students.
func (r *StudentRepository) SeatLayout(ctx context.Context) models.SeatLayout {
	students, _ := r.load(ctx)
	return BuildSeatLayout(students, r.totalSeats)
}

// AvailableSeats lists free seat labels in order. The seat of excludeID (the student being
// edited) counts as free.
func (r *StudentRepository) AvailableSeats(ctx context.Context, excludeID int) []string {
	students, _ := r.load(ctx)
	occupied := make(map[string]bool, len(students))
	for _, s := range students {
		if s.ID != excludeID {
			occupied[s.SeatNumber] = true
		}
	}
	free := make([]string, 0, r.totalSeats-len(occupied))
	for i := 1; i <= r.totalSeats; i++ {
		label := SeatLabel(i)
		if !occupied[label] {
			free = append(free, label)
		}
	}
	return free
}

// ReplaceAll swaps the whole collection (import). Seats must be distinct and in range.
func (r *StudentRepository) ReplaceAll(ctx context.Context, students []models.Student) error {
	next := cloneStudents(students)
	ids := make(map[int]bool, len(next))
	for i := range next {
		if ids[next[i].ID] {
			return fmt.Errorf("replace students: id %d: %w", next[i].ID, ErrDuplicate)
		}
		ids[next[i].ID] = true
		if next[i].PaymentHistory == nil {
			next[i].PaymentHistory = []models.StudentPayment{}
		}
	}
	if err := checkSeats(next, r.totalSeats); err != nil {
		return fmt.Errorf("replace students: %w", err)
	}
	return r.store.Exclusive(func() error {
		current, existed := r.load(ctx)
		if err := r.persist(ctx, current, existed, next); err != nil {
			return fmt.Errorf("replace students: %w", err)
		}
		return nil
	})
}

// Initialize seeds sample students when the collection has never been written and
// rebuilds the seat layout otherwise. It reports whether seeding happened.
func (r *StudentRepository) Initialize(ctx context.Context, seed []models.Student) (bool, error) {
	seeded := false
	err := r.store.Exclusive(func() error {
		present, err := r.store.Lookup(ctx, KeyStudents)
		if err != nil {
			return fmt.Errorf("seed students: %v: %w", err, ErrPersistence)
		}
		if present {
			current, _ := r.load(ctx)
			if !r.store.Set(ctx, KeySeatLayout, BuildSeatLayout(current, r.totalSeats)) {
				return fmt.Errorf("rebuild seat layout: %w", ErrPersistence)
			}
			return nil
		}
		if err := checkSeats(seed, r.totalSeats); err != nil {
			return fmt.Errorf("seed students: %w", err)
		}
		if err := r.persist(ctx, nil, false, cloneStudents(seed)); err != nil {
			return fmt.Errorf("seed students: %w", err)
		}
		seeded = true
		return nil
	})
	if seeded {
		r.logger.Info("library store initialized with sample students", zap.Int("count", len(seed)))
	}
	return seeded, err
}

// Clear removes every library key.
func (r *StudentRepository) Clear(ctx context.Context) error {
	return r.store.Exclusive(func() error {
		if !r.store.Clear(ctx) {
			return fmt.Errorf("clear library: %w", ErrPersistence)
		}
		return nil
	})
}

func (r *StudentRepository) load(ctx context.Context) ([]models.Student, bool) {
	students := make([]models.Student, 0)
	existed := r.store.Get(ctx, KeyStudents, &students)
	if students == nil {
		students = make([]models.Student, 0)
	}
	return students, existed
}

// persist writes students and then the derived layout. When the layout write fails the
// previous student blob is restored so both keys keep agreeing.
func (r *StudentRepository) persist(ctx context.Context, previous []models.Student, existed bool, next []models.Student) error {
	if !r.store.Set(ctx, KeyStudents, next) {
		return fmt.Errorf("write students: %w", ErrPersistence)
	}
	if r.store.Set(ctx, KeySeatLayout, BuildSeatLayout(next, r.totalSeats)) {
		return nil
	}
	var restored bool
	if existed {
		restored = r.store.Set(ctx, KeyStudents, previous)
	} else {
		restored = r.store.Remove(ctx, KeyStudents)
	}
	if !restored {
		r.logger.Error("student rollback failed; seat layout may be stale")
	}
	return fmt.Errorf("write seat layout: %w", ErrPersistence)
}

func indexOfStudent(students []models.Student, id int) int {
	for i := range students {
		if students[i].ID == id {
			return i
		}
	}
	return -1
}

func nextStudentID(students []models.Student) int {
	maxID := 0
	for _, s := range students {
		if s.ID > maxID {
			maxID = s.ID
		}
	}
	return maxID + 1
}

func cloneStudents(in []models.Student) []models.Student {
	out := make([]models.Student, len(in))
	for i, s := range in {
		if s.PaymentHistory != nil {
			s.PaymentHistory = append(make([]models.StudentPayment, 0, len(s.PaymentHistory)), s.PaymentHistory...)
		}
		if s.LastFeeDate != nil {
			d := *s.LastFeeDate
			s.LastFeeDate = &d
		}
		out[i] = s
	}
	return out
}
