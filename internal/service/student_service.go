package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ledgerdesk-api/internal/models"
	"github.com/noah-isme/ledgerdesk-api/internal/repository"
	appErrors "github.com/noah-isme/ledgerdesk-api/pkg/errors"
)

const (
	dateLayout        = "2006-01-02"
	studentMonthShort = "Jan 2006"
	recentStudents    = 5
)

type studentStore interface {
	List(ctx context.Context) []models.Student
	FindByID(ctx context.Context, id int) (*models.Student, error)
	Add(ctx context.Context, student models.Student) (*models.Student, error)
	Mutate(ctx context.Context, id int, fn func(*models.Student) error) (*models.Student, error)
	Delete(ctx context.Context, id int) error
	SeatLayout(ctx context.Context) models.SeatLayout
	AvailableSeats(ctx context.Context, excludeID int) []string
	TotalSeats() int
}

type timingsStore interface {
	LibraryTimings(ctx context.Context) models.LibraryTimings
	SaveLibraryTimings(ctx context.Context, timings models.LibraryTimings) error
}

type paymentRecorder interface {
	RecordPayment(domain models.Domain, method string, amount float64)
}

// FeeSchedule is the monthly fee charged per plan.
type FeeSchedule struct {
	FullTime float64
	HalfTime float64
}

// For returns the fee of plan.
func (f FeeSchedule) For(plan models.PlanType) float64 {
	if plan == models.PlanHalfTime {
		return f.HalfTime
	}
	return f.FullTime
}

// StudentService implements the library member operations.
type StudentService struct {
	repo      studentStore
	timings   timingsStore
	ids       *PaymentIDGenerator
	fees      FeeSchedule
	payments  paymentRecorder
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewStudentService constructs the service. Zero fees fall back to 800/500.
func NewStudentService(repo studentStore, timings timingsStore, ids *PaymentIDGenerator, fees FeeSchedule, payments paymentRecorder, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if ids == nil {
		ids = NewPaymentIDGenerator()
	}
	if fees.FullTime <= 0 {
		fees.FullTime = 800
	}
	if fees.HalfTime <= 0 {
		fees.HalfTime = 500
	}
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{
		repo:      repo,
		timings:   timings,
		ids:       ids,
		fees:      fees,
		payments:  payments,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// List returns students matching filter in insertion order.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) []models.StudentView {
	timings := s.timings.LibraryTimings(ctx)
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	students := s.repo.List(ctx)
	out := make([]models.StudentView, 0, len(students))
	for _, st := range students {
		if search != "" && !matchesStudent(st, search) {
			continue
		}
		if filter.PlanType != "" && st.PlanType != filter.PlanType {
			continue
		}
		if filter.FeesPaid != nil && st.FeesPaid != *filter.FeesPaid {
			continue
		}
		if filter.Status != "" && st.Status != filter.Status {
			continue
		}
		out = append(out, viewOf(st, timings))
	}
	return out
}

// Recent returns the most recently added students, newest first.
func (s *StudentService) Recent(ctx context.Context) []models.StudentView {
	timings := s.timings.LibraryTimings(ctx)
	students := s.repo.List(ctx)
	out := make([]models.StudentView, 0, recentStudents)
	for i := len(students) - 1; i >= 0 && len(out) < recentStudents; i-- {
		out = append(out, viewOf(students[i], timings))
	}
	return out
}

// Get returns one student.
func (s *StudentService) Get(ctx context.Context, id int) (*models.StudentView, error) {
	st, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err, "student not found")
	}
	view := viewOf(*st, s.timings.LibraryTimings(ctx))
	return &view, nil
}

// Create validates input, derives fee and study hours and claims the seat. When the fee
// is marked paid the first payment is recorded immediately.
func (s *StudentService) Create(ctx context.Context, input models.StudentInput) (*models.StudentView, error) {
	input = normalizeStudentInput(input)
	if err := s.validateStudent(ctx, input, 0); err != nil {
		return nil, err
	}

	now := s.now()
	timings := s.timings.LibraryTimings(ctx)
	student := models.Student{
		Name:            input.Name,
		Email:           input.Email,
		Phone:           input.Phone,
		Address:         input.Address,
		PlanType:        input.PlanType,
		SeatNumber:      input.SeatNumber,
		JoinDate:        now.Format(dateLayout),
		FeeAmount:       s.fees.For(input.PlanType),
		Status:          input.Status,
		UseCustomTiming: input.UseCustomTiming,
		PaymentHistory:  []models.StudentPayment{},
	}
	if student.Status == "" {
		student.Status = models.StudentActive
	}
	if input.UseCustomTiming {
		student.CustomStartTime = input.CustomStartTime
		student.CustomEndTime = input.CustomEndTime
	}
	student.StudyHours = studyHours(student, timings)
	if input.FeesPaid {
		appendStudentPayment(&student, student.FeeAmount, input.PaymentMethod, "", now, s.ids.Next())
	}

	created, err := s.repo.Add(ctx, student)
	if err != nil {
		return nil, translateRepoError(err, "student not found")
	}
	if input.FeesPaid && s.payments != nil {
		s.payments.RecordPayment(models.DomainLibrary, created.PaymentHistory[0].Method, created.FeeAmount)
	}
	s.logger.Info("student created", zap.Int("student_id", created.ID), zap.String("seat", created.SeatNumber))
	view := viewOf(*created, timings)
	return &view, nil
}

// Update replaces the editable fields. Turning feesPaid on appends one payment of the
// current fee; turning it off only clears the flag.
func (s *StudentService) Update(ctx context.Context, id int, input models.StudentInput) (*models.StudentView, error) {
	input = normalizeStudentInput(input)
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, translateRepoError(err, "student not found")
	}
	if err := s.validateStudent(ctx, input, id); err != nil {
		return nil, err
	}

	now := s.now()
	timings := s.timings.LibraryTimings(ctx)
	var paid *models.StudentPayment
	updated, err := s.repo.Mutate(ctx, id, func(st *models.Student) error {
		wasPaid := st.FeesPaid
		st.Name = input.Name
		st.Email = input.Email
		st.Phone = input.Phone
		st.Address = input.Address
		st.PlanType = input.PlanType
		st.SeatNumber = input.SeatNumber
		st.FeeAmount = s.fees.For(input.PlanType)
		if input.Status != "" {
			st.Status = input.Status
		}
		st.UseCustomTiming = input.UseCustomTiming
		if input.UseCustomTiming {
			st.CustomStartTime = input.CustomStartTime
			st.CustomEndTime = input.CustomEndTime
		} else {
			st.CustomStartTime = ""
			st.CustomEndTime = ""
		}
		st.StudyHours = studyHours(*st, timings)
		switch {
		case input.FeesPaid && !wasPaid:
			p := appendStudentPayment(st, st.FeeAmount, input.PaymentMethod, "", now, s.ids.Next())
			paid = &p
		case !input.FeesPaid:
			st.FeesPaid = false
		}
		return nil
	})
	if err != nil {
		return nil, translateRepoError(err, "student not found")
	}
	if paid != nil && s.payments != nil {
		s.payments.RecordPayment(models.DomainLibrary, paid.Method, paid.Amount)
	}
	view := viewOf(*updated, timings)
	return &view, nil
}

// Delete removes a student and frees the seat.
func (s *StudentService) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return translateRepoError(err, "student not found")
	}
	s.logger.Info("student deleted", zap.Int("student_id", id))
	return nil
}

// AvailableSeats lists free seats; the seat of excludeID counts as free.
func (s *StudentService) AvailableSeats(ctx context.Context, excludeID int) []string {
	return s.repo.AvailableSeats(ctx, excludeID)
}

// SeatLayout returns current occupancy.
func (s *StudentService) SeatLayout(ctx context.Context) models.SeatLayout {
	return s.repo.SeatLayout(ctx)
}

// UpdateTiming switches a student between plan timing and a custom window.
func (s *StudentService) UpdateTiming(ctx context.Context, id int, input models.StudentTimingInput) (*models.StudentView, error) {
	fields, err := collectFieldErrors(s.validator, input)
	if err != nil {
		return nil, err
	}
	if input.UseCustomTiming && fields.Empty() {
		checkCustomWindow(fields, input.CustomStartTime, input.CustomEndTime)
	}
	if !fields.Empty() {
		return nil, validationError("invalid timing", fields)
	}

	timings := s.timings.LibraryTimings(ctx)
	updated, err := s.repo.Mutate(ctx, id, func(st *models.Student) error {
		st.UseCustomTiming = input.UseCustomTiming
		if input.UseCustomTiming {
			st.CustomStartTime = input.CustomStartTime
			st.CustomEndTime = input.CustomEndTime
		} else {
			st.CustomStartTime = ""
			st.CustomEndTime = ""
		}
		st.StudyHours = studyHours(*st, timings)
		return nil
	})
	if err != nil {
		return nil, translateRepoError(err, "student not found")
	}
	view := viewOf(*updated, timings)
	return &view, nil
}

// Timings returns the library opening windows.
func (s *StudentService) Timings(ctx context.Context) models.LibraryTimings {
	return s.timings.LibraryTimings(ctx)
}

// UpdateTimings saves new plan windows after checking start precedes end.
func (s *StudentService) UpdateTimings(ctx context.Context, input models.LibraryTimings) (*models.LibraryTimings, error) {
	fields, err := collectFieldErrors(s.validator, input)
	if err != nil {
		return nil, err
	}
	if fields.Empty() {
		if !beforeClock(input.FullTimeStart, input.FullTimeEnd) {
			fields.Set("fullTimeEnd", "Full-time start time must be before end time")
		}
		if !beforeClock(input.HalfTimeStart, input.HalfTimeEnd) {
			fields.Set("halfTimeEnd", "Half-time start time must be before end time")
		}
	}
	if !fields.Empty() {
		return nil, validationError("invalid library timings", fields)
	}
	if err := s.timings.SaveLibraryTimings(ctx, input); err != nil {
		return nil, translateRepoError(err, "timings not found")
	}
	return &input, nil
}

func (s *StudentService) validateStudent(ctx context.Context, input models.StudentInput, excludeID int) error {
	fields, err := s.studentFieldErrors(ctx, input, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student")
	}
	if !fields.Empty() {
		return validationError("invalid student", fields)
	}
	return nil
}

func (s *StudentService) studentFieldErrors(ctx context.Context, input models.StudentInput, excludeID int) (FieldErrors, error) {
	fields, err := collectFieldErrors(s.validator, input)
	if err != nil {
		return nil, err
	}
	for _, other := range s.repo.List(ctx) {
		if other.ID == excludeID {
			continue
		}
		if input.Email != "" && strings.EqualFold(other.Email, input.Email) {
			fields.Set("email", "Email already exists")
		}
		if input.Phone != "" && other.Phone == input.Phone {
			fields.Set("phone", "Phone number already exists")
		}
	}
	if input.SeatNumber != "" && !seatFree(s.repo.AvailableSeats(ctx, excludeID), input.SeatNumber) {
		fields.Set("seatNumber", "Seat is not available")
	}
	if input.UseCustomTiming {
		if _, bad := fields["customStartTime"]; !bad {
			if _, bad := fields["customEndTime"]; !bad {
				checkCustomWindow(fields, input.CustomStartTime, input.CustomEndTime)
			}
		}
	}
	return fields, nil
}

func checkCustomWindow(fields FieldErrors, start, end string) {
	switch {
	case start == "" || end == "":
		fields.Set("customStartTime", "Please set both start and end times for custom timing")
	case !beforeClock(start, end):
		fields.Set("customEndTime", "Start time must be before end time")
	}
}

func seatFree(available []string, seat string) bool {
	for _, label := range available {
		if label == seat {
			return true
		}
	}
	return false
}

func normalizeStudentInput(input models.StudentInput) models.StudentInput {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Address = strings.TrimSpace(input.Address)
	input.SeatNumber = strings.TrimSpace(input.SeatNumber)
	return input
}

func matchesStudent(st models.Student, search string) bool {
	return strings.Contains(strings.ToLower(st.Name), search) ||
		strings.Contains(strings.ToLower(st.Email), search) ||
		strings.Contains(strings.ToLower(st.SeatNumber), search) ||
		strings.Contains(st.Phone, search)
}

// planWindow returns the default window for plan.
func planWindow(plan models.PlanType, timings models.LibraryTimings) (string, string) {
	if plan == models.PlanHalfTime {
		return timings.HalfTimeStart, timings.HalfTimeEnd
	}
	return timings.FullTimeStart, timings.FullTimeEnd
}

func studyHours(st models.Student, timings models.LibraryTimings) string {
	start, end := planWindow(st.PlanType, timings)
	if st.UseCustomTiming && st.CustomStartTime != "" && st.CustomEndTime != "" {
		start, end = st.CustomStartTime, st.CustomEndTime
	}
	return start + " - " + end
}

func viewOf(st models.Student, timings models.LibraryTimings) models.StudentView {
	return models.StudentView{Student: st, DisplayTiming: displayTiming(st, timings)}
}

// displayTiming renders the effective window on a 12-hour clock, e.g. "9:00 AM - 9:00 PM".
func displayTiming(st models.Student, timings models.LibraryTimings) string {
	if st.UseCustomTiming && st.CustomStartTime != "" && st.CustomEndTime != "" {
		return twelveHour(st.CustomStartTime) + " - " + twelveHour(st.CustomEndTime) + " (Custom)"
	}
	start, end := planWindow(st.PlanType, timings)
	return twelveHour(start) + " - " + twelveHour(end)
}

func twelveHour(clock string) string {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return clock
	}
	return t.Format("3:04 PM")
}

var (
	_ studentStore = (*repository.StudentRepository)(nil)
	_ timingsStore = (*repository.SettingsRepository)(nil)
)
