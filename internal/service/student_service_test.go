package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ledgerdesk-api/internal/models"
)

func TestStudentHalfTimeFeeLifecycle(t *testing.T) {
	env := newTestEnv(t, false)
	students := env.studentService()
	ledger := env.ledgerService()
	ctx := context.Background()

	created, err := students.Create(ctx, halfTimeInput("Meera Iyer", "meera@example.com", "+91 9000000001", "05"))
	require.NoError(t, err)
	assert.Equal(t, 500.0, created.FeeAmount)
	assert.False(t, created.FeesPaid)
	assert.Zero(t, created.TotalPaid)
	assert.Empty(t, created.PaymentHistory)
	assert.Equal(t, "2024-03-15", created.JoinDate)
	assert.Equal(t, "09:00 - 14:00", created.StudyHours)
	assert.Equal(t, "9:00 AM - 2:00 PM", created.DisplayTiming)

	paid, err := ledger.AddStudentPayment(ctx, created.ID, models.StudentPaymentInput{Amount: 500})
	require.NoError(t, err)
	assert.Equal(t, 500.0, paid.TotalPaid)
	assert.True(t, paid.FeesPaid)
	require.Len(t, paid.PaymentHistory, 1)
	assert.Equal(t, models.MethodCash, paid.PaymentHistory[0].Method)
	assert.Equal(t, "Mar 2024", paid.PaymentHistory[0].Month)
	require.NotNil(t, paid.LastFeeDate)
	assert.Equal(t, "2024-03-15", *paid.LastFeeDate)

	toggled, err := ledger.ToggleStudentFee(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, toggled.FeesPaid)
	assert.Equal(t, 500.0, toggled.TotalPaid)
	assert.Len(t, toggled.PaymentHistory, 1)

	stored, err := students.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, stored.FeesPaid, "unpaid flag must be persisted")
}

func TestStudentCreatePaidRecordsFirstPayment(t *testing.T) {
	env := newTestEnv(t, false)
	svc := env.studentService()

	input := halfTimeInput("Kabir Singh", "kabir@example.com", "+91 9000000002", "10")
	input.PlanType = models.PlanFullTime
	input.FeesPaid = true
	input.PaymentMethod = models.MethodUPI

	created, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 800.0, created.FeeAmount)
	assert.Equal(t, 800.0, created.TotalPaid)
	require.Len(t, created.PaymentHistory, 1)
	assert.Equal(t, models.MethodUPI, created.PaymentHistory[0].Method)
	assert.Equal(t, fixedNow.UnixMilli(), created.PaymentHistory[0].PaymentID)
	assert.Equal(t, []string{"library:UPI"}, env.recorder.payments)
}

func TestStudentCreateRejectsTakenSeat(t *testing.T) {
	env := newTestEnv(t, true)
	svc := env.studentService()

	_, err := svc.Create(context.Background(), halfTimeInput("Late Comer", "late@example.com", "+91 9000000003", "01"))
	appErr := requireAppError(t, err, "VALIDATION_ERROR")
	assert.Equal(t, "Seat is not available", appErr.Fields["seatNumber"])
	assert.Len(t, env.students.List(context.Background()), 3)
}

func TestStudentCreateRejectsSeatOutOfRange(t *testing.T) {
	env := newTestEnv(t, false)
	svc := env.studentService()

	_, err := svc.Create(context.Background(), halfTimeInput("Out Of Range", "oor@example.com", "+91 9000000004", "81"))
	appErr := requireAppError(t, err, "VALIDATION_ERROR")
	assert.Equal(t, "Seat is not available", appErr.Fields["seatNumber"])
}

func TestStudentCustomTimingOnCreate(t *testing.T) {
	env := newTestEnv(t, false)
	svc := env.studentService()
	ctx := context.Background()

	input := halfTimeInput("Night Owl", "owl@example.com", "+91 9000000005", "20")
	input.UseCustomTiming = true
	input.CustomStartTime = "18:00"
	_, err := svc.Create(ctx, input)
	appErr := requireAppError(t, err, "VALIDATION_ERROR")
	assert.Equal(t, "Please set both start and end times for custom timing", appErr.Fields["customStartTime"])

	input.CustomEndTime = "22:30"
	created, err := svc.Create(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "18:00 - 22:30", created.StudyHours)
	assert.Equal(t, "6:00 PM - 10:30 PM (Custom)", created.DisplayTiming)
}

func TestStudentUpdateAppendsPaymentWhenMarkedPaid(t *testing.T) {
	env := newTestEnv(t, true)
	svc := env.studentService()
	ctx := context.Background()

	priya, err := svc.Get(ctx, 2)
	require.NoError(t, err)
	require.False(t, priya.FeesPaid)

	input := models.StudentInput{
		Name:       priya.Name,
		Email:      priya.Email,
		Phone:      priya.Phone,
		PlanType:   priya.PlanType,
		SeatNumber: "03",
		FeesPaid:   true,
	}
	updated, err := svc.Update(ctx, 2, input)
	require.NoError(t, err)
	assert.True(t, updated.FeesPaid)
	assert.Equal(t, 500.0, updated.TotalPaid)
	assert.Len(t, updated.PaymentHistory, 1)
	assert.Equal(t, "03", updated.SeatNumber)

	again, err := svc.Update(ctx, 2, input)
	require.NoError(t, err)
	assert.Len(t, again.PaymentHistory, 1, "already paid students are not charged twice")

	layout := svc.SeatLayout(ctx)
	assert.Contains(t, layout.Occupied, "03")
	assert.NotContains(t, layout.Occupied, "02")
}

func TestStudentUpdateKeepsOwnEmailAndPhone(t *testing.T) {
	env := newTestEnv(t, true)
	svc := env.studentService()

	_, err := svc.Update(context.Background(), 1, models.StudentInput{
		Name:       "Aarav Sharma",
		Email:      "aarav.sharma@example.com",
		Phone:      "+91 9876543210",
		PlanType:   models.PlanFullTime,
		SeatNumber: "01",
		FeesPaid:   true,
	})
	require.NoError(t, err)
}

func TestStudentUpdateNotFound(t *testing.T) {
	env := newTestEnv(t, false)
	_, err := env.studentService().Update(context.Background(), 42, halfTimeInput("Ghost", "ghost@example.com", "+91 9000000009", "09"))
	requireAppError(t, err, "NOT_FOUND")
}

func TestStudentUpdateTiming(t *testing.T) {
	env := newTestEnv(t, true)
	svc := env.studentService()
	ctx := context.Background()

	_, err := svc.UpdateTiming(ctx, 2, models.StudentTimingInput{UseCustomTiming: true, CustomStartTime: "15:00"})
	appErr := requireAppError(t, err, "VALIDATION_ERROR")
	assert.Equal(t, "Please set both start and end times for custom timing", appErr.Fields["customStartTime"])

	_, err = svc.UpdateTiming(ctx, 2, models.StudentTimingInput{UseCustomTiming: true, CustomStartTime: "15:00", CustomEndTime: "15:00"})
	appErr = requireAppError(t, err, "VALIDATION_ERROR")
	assert.Equal(t, "Start time must be before end time", appErr.Fields["customEndTime"])

	updated, err := svc.UpdateTiming(ctx, 2, models.StudentTimingInput{UseCustomTiming: true, CustomStartTime: "14:00", CustomEndTime: "19:00"})
	require.NoError(t, err)
	assert.Equal(t, "14:00 - 19:00", updated.StudyHours)
	assert.Equal(t, "2:00 PM - 7:00 PM (Custom)", updated.DisplayTiming)

	cleared, err := svc.UpdateTiming(ctx, 2, models.StudentTimingInput{})
	require.NoError(t, err)
	assert.False(t, cleared.UseCustomTiming)
	assert.Empty(t, cleared.CustomStartTime)
	assert.Equal(t, "09:00 - 14:00", cleared.StudyHours)
}

func TestStudentUpdateLibraryTimings(t *testing.T) {
	env := newTestEnv(t, true)
	svc := env.studentService()
	ctx := context.Background()

	_, err := svc.UpdateTimings(ctx, models.LibraryTimings{FullTimeStart: "21:00", FullTimeEnd: "09:00", HalfTimeStart: "10:00", HalfTimeEnd: "09:00"})
	appErr := requireAppError(t, err, "VALIDATION_ERROR")
	assert.Equal(t, "Full-time start time must be before end time", appErr.Fields["fullTimeEnd"])
	assert.Equal(t, "Half-time start time must be before end time", appErr.Fields["halfTimeEnd"])

	_, err = svc.UpdateTimings(ctx, models.LibraryTimings{FullTimeStart: "7:00", FullTimeEnd: "22:00", HalfTimeStart: "08:00", HalfTimeEnd: "13:00"})
	appErr = requireAppError(t, err, "VALIDATION_ERROR")
	assert.Contains(t, appErr.Fields, "fullTimeStart")

	saved, err := svc.UpdateTimings(ctx, models.LibraryTimings{FullTimeStart: "07:00", FullTimeEnd: "22:00", HalfTimeStart: "08:00", HalfTimeEnd: "13:00"})
	require.NoError(t, err)
	assert.Equal(t, *saved, svc.Timings(ctx))

	priya, err := svc.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "8:00 AM - 1:00 PM", priya.DisplayTiming)
}

func TestStudentListFiltersAndRecent(t *testing.T) {
	env := newTestEnv(t, true)
	svc := env.studentService()
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := svc.Create(ctx, halfTimeInput(fmt.Sprintf("Extra %d", i), fmt.Sprintf("extra%d@example.com", i), fmt.Sprintf("+91 90000001%02d", i), fmt.Sprintf("%02d", 30+i)))
		require.NoError(t, err)
	}

	recent := svc.Recent(ctx)
	require.Len(t, recent, 5)
	assert.Equal(t, "Extra 3", recent[0].Name)
	assert.Equal(t, "Rohan Gupta", recent[4].Name)

	unpaid := false
	pending := svc.List(ctx, models.StudentFilter{FeesPaid: &unpaid})
	assert.Len(t, pending, 5)

	full := svc.List(ctx, models.StudentFilter{PlanType: models.PlanFullTime})
	require.Len(t, full, 1)
	assert.Equal(t, "Aarav Sharma", full[0].Name)

	bySeat := svc.List(ctx, models.StudentFilter{Search: "15"})
	require.Len(t, bySeat, 1)
	assert.Equal(t, "Rohan Gupta", bySeat[0].Name)

	byName := svc.List(ctx, models.StudentFilter{Search: "PRIYA"})
	require.Len(t, byName, 1)
}

func TestStudentIDsAreMonotonic(t *testing.T) {
	env := newTestEnv(t, false)
	svc := env.studentService()
	ctx := context.Background()

	var ids []int
	for i := 0; i < 3; i++ {
		created, err := svc.Create(ctx, halfTimeInput(fmt.Sprintf("S%d", i), fmt.Sprintf("s%d@example.com", i), fmt.Sprintf("+91 90000002%02d", i), fmt.Sprintf("%02d", i+1)))
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}
	assert.Equal(t, []int{1, 2, 3}, ids)

	require.NoError(t, svc.Delete(ctx, 2))
	created, err := svc.Create(ctx, halfTimeInput("S9", "s9@example.com", "+91 9000000299", "09"))
	require.NoError(t, err)
	assert.Equal(t, 4, created.ID)
}

func TestStudentSeatLayoutMatchesStudents(t *testing.T) {
	env := newTestEnv(t, true)
	svc := env.studentService()
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, 1))
	_, err := svc.Create(ctx, halfTimeInput("New", "new@example.com", "+91 9000000300", "01"))
	require.NoError(t, err)

	layout := svc.SeatLayout(ctx)
	seats := make([]string, 0)
	for _, st := range svc.List(ctx, models.StudentFilter{}) {
		seats = append(seats, st.SeatNumber)
	}
	assert.ElementsMatch(t, seats, layout.Occupied)
	assert.ElementsMatch(t, []string{"01", "02", "15"}, layout.HalfTimeSeats)
	assert.Empty(t, layout.FullTimeSeats)

	available := svc.AvailableSeats(ctx, 2)
	assert.Contains(t, available, "02")
	assert.NotContains(t, available, "15")
	assert.Len(t, available, 78)
}
