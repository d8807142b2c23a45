package handler

import (
	"context"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ledgerdesk-api/internal/models"
	"github.com/noah-isme/ledgerdesk-api/internal/service"
	"github.com/noah-isme/ledgerdesk-api/pkg/response"
)

type libraryStudentService interface {
	List(ctx context.Context, filter models.StudentFilter) []models.StudentView
	Recent(ctx context.Context) []models.StudentView
	Get(ctx context.Context, id int) (*models.StudentView, error)
	Create(ctx context.Context, input models.StudentInput) (*models.StudentView, error)
	Update(ctx context.Context, id int, input models.StudentInput) (*models.StudentView, error)
	Delete(ctx context.Context, id int) error
	AvailableSeats(ctx context.Context, excludeID int) []string
	SeatLayout(ctx context.Context) models.SeatLayout
	UpdateTiming(ctx context.Context, id int, input models.StudentTimingInput) (*models.StudentView, error)
	Timings(ctx context.Context) models.LibraryTimings
	UpdateTimings(ctx context.Context, input models.LibraryTimings) (*models.LibraryTimings, error)
}

type studentLedgerService interface {
	AddStudentPayment(ctx context.Context, id int, input models.StudentPaymentInput) (*models.Student, error)
	ToggleStudentFee(ctx context.Context, id int) (*models.Student, error)
}

type libraryStatsService interface {
	Library(ctx context.Context) models.LibraryStats
}

type libraryReportService interface {
	LibraryPayments(ctx context.Context, req service.LedgerReportRequest) (*service.ReportFile, error)
}

// LibraryHandler exposes study library endpoints.
type LibraryHandler struct {
	students libraryStudentService
	ledger   studentLedgerService
	stats    libraryStatsService
	reports  libraryReportService
}

// NewLibraryHandler constructs LibraryHandler.
func NewLibraryHandler(students libraryStudentService, ledger studentLedgerService, stats libraryStatsService, reports libraryReportService) *LibraryHandler {
	return &LibraryHandler{students: students, ledger: ledger, stats: stats, reports: reports}
}

// ListStudents godoc
// @Summary List students
// @Tags Library
// @Produce json
// @Param search query string false "Match name, email, phone or seat"
// @Param planType query string false "full-time or half-time"
// @Param feesPaid query bool false "Filter by fee state"
// @Param status query string false "Active, Inactive or Suspended"
// @Success 200 {object} response.Envelope
// @Router /library/students [get]
func (h *LibraryHandler) ListStudents(c *gin.Context) {
	filter := models.StudentFilter{
		Search:   strings.TrimSpace(c.Query("search")),
		PlanType: models.PlanType(c.Query("planType")),
		Status:   c.Query("status"),
	}
	if raw := c.Query("feesPaid"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			filter.FeesPaid = &v
		}
	}
	students := h.students.List(c.Request.Context(), filter)
	response.OK(c, students, countMeta(len(students)))
}

// RecentStudents godoc
// @Summary Five most recently added students
// @Tags Library
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /library/students/recent [get]
func (h *LibraryHandler) RecentStudents(c *gin.Context) {
	response.OK(c, h.students.Recent(c.Request.Context()))
}

// GetStudent godoc
// @Summary Get student
// @Tags Library
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /library/students/{id} [get]
func (h *LibraryHandler) GetStudent(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	student, err := h.students.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, student)
}

// CreateStudent godoc
// @Summary Register a student and claim a seat
// @Tags Library
// @Accept json
// @Produce json
// @Param payload body models.StudentInput true "Student payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /library/students [post]
func (h *LibraryHandler) CreateStudent(c *gin.Context) {
	var input models.StudentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	student, err := h.students.Create(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// UpdateStudent godoc
// @Summary Update student
// @Tags Library
// @Accept json
// @Produce json
// @Param id path int true "Student ID"
// @Param payload body models.StudentInput true "Student payload"
// @Success 200 {object} response.Envelope
// @Router /library/students/{id} [put]
func (h *LibraryHandler) UpdateStudent(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var input models.StudentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	student, err := h.students.Update(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, student)
}

// DeleteStudent godoc
// @Summary Delete student and release the seat
// @Tags Library
// @Param id path int true "Student ID"
// @Success 204
// @Router /library/students/{id} [delete]
func (h *LibraryHandler) DeleteStudent(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.students.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UpdateStudentTiming godoc
// @Summary Set or clear a custom study window
// @Tags Library
// @Accept json
// @Produce json
// @Param id path int true "Student ID"
// @Param payload body models.StudentTimingInput true "Timing payload"
// @Success 200 {object} response.Envelope
// @Router /library/students/{id}/timing [put]
func (h *LibraryHandler) UpdateStudentTiming(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var input models.StudentTimingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	student, err := h.students.UpdateTiming(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, student)
}

// AddPayment godoc
// @Summary Record a fee payment
// @Tags Library
// @Accept json
// @Produce json
// @Param id path int true "Student ID"
// @Param payload body models.StudentPaymentInput true "Payment payload"
// @Success 201 {object} response.Envelope
// @Router /library/students/{id}/payments [post]
func (h *LibraryHandler) AddPayment(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var input models.StudentPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	student, err := h.ledger.AddStudentPayment(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// ToggleFee godoc
// @Summary Toggle the fee state; paying records the plan fee in cash
// @Tags Library
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /library/students/{id}/fee-toggle [post]
func (h *LibraryHandler) ToggleFee(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	student, err := h.ledger.ToggleStudentFee(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, student)
}

// SeatLayout godoc
// @Summary Seat occupancy
// @Tags Library
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /library/seats [get]
func (h *LibraryHandler) SeatLayout(c *gin.Context) {
	response.OK(c, h.students.SeatLayout(c.Request.Context()))
}

// AvailableSeats godoc
// @Summary Free seats
// @Tags Library
// @Produce json
// @Param exclude query int false "Student whose seat counts as free"
// @Success 200 {object} response.Envelope
// @Router /library/seats/available [get]
func (h *LibraryHandler) AvailableSeats(c *gin.Context) {
	exclude, _ := strconv.Atoi(c.Query("exclude"))
	seats := h.students.AvailableSeats(c.Request.Context(), exclude)
	response.OK(c, seats, countMeta(len(seats)))
}

// Timings godoc
// @Summary Library opening windows per plan
// @Tags Library
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /library/timings [get]
func (h *LibraryHandler) Timings(c *gin.Context) {
	response.OK(c, h.students.Timings(c.Request.Context()))
}

// UpdateTimings godoc
// @Summary Update library opening windows
// @Tags Library
// @Accept json
// @Produce json
// @Param payload body models.LibraryTimings true "Timings"
// @Success 200 {object} response.Envelope
// @Router /library/timings [put]
func (h *LibraryHandler) UpdateTimings(c *gin.Context) {
	var input models.LibraryTimings
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	timings, err := h.students.UpdateTimings(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, timings)
}

// Stats godoc
// @Summary Library dashboard statistics
// @Tags Library
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /library/stats [get]
func (h *LibraryHandler) Stats(c *gin.Context) {
	response.OK(c, h.stats.Library(c.Request.Context()))
}

// PaymentsReport godoc
// @Summary Download the fee ledger
// @Tags Library
// @Produce text/csv,application/pdf
// @Param format query string false "csv or pdf"
// @Param period query string false "YYYY or YYYY-MM"
// @Success 200 {file} file
// @Router /library/reports/payments [get]
func (h *LibraryHandler) PaymentsReport(c *gin.Context) {
	file, err := h.reports.LibraryPayments(c.Request.Context(), service.LedgerReportRequest{
		Format: c.Query("format"),
		Period: c.Query("period"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
