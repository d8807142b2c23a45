package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ledgerdesk-api/internal/models"
)

func TestStudentValidationCollectsEveryViolation(t *testing.T) {
	env := newTestEnv(t, true)
	svc := env.studentService()

	_, err := svc.Create(context.Background(), models.StudentInput{
		Name:       "   ",
		Email:      "not-an-email",
		Phone:      "+91 9876543210",
		PlanType:   models.PlanFullTime,
		SeatNumber: "40",
	})
	appErr := requireAppError(t, err, "VALIDATION_ERROR")
	assert.Equal(t, FieldErrors{
		"name":  "Name is required",
		"email": "Email is invalid",
		"phone": "Phone number already exists",
	}, FieldErrors(appErr.Fields))
	assert.Len(t, env.students.List(context.Background()), 3)
}

func TestStudentValidationMessages(t *testing.T) {
	env := newTestEnv(t, false)
	svc := env.studentService()

	_, err := svc.Create(context.Background(), models.StudentInput{Phone: "9876543210"})
	appErr := requireAppError(t, err, "VALIDATION_ERROR")
	assert.Equal(t, "Email is required", appErr.Fields["email"])
	assert.Equal(t, "Phone format should be +91 XXXXXXXXXX", appErr.Fields["phone"])
	assert.Equal(t, "Please select a seat", appErr.Fields["seatNumber"])
	assert.Contains(t, appErr.Fields, "planType")
}

func TestValidatorCustomTags(t *testing.T) {
	v := NewValidator()

	type sample struct {
		Clock  string `json:"clock" validate:"clock"`
		Phone  string `json:"phone" validate:"inphone"`
		Email  string `json:"email" validate:"looseemail"`
		Method string `json:"method" validate:"paymentmethod"`
		Code   string `json:"code" validate:"empid"`
	}

	require.NoError(t, v.Struct(sample{Clock: "23:59", Phone: "+91 0123456789", Email: "a@b.co", Method: models.MethodBankTransfer, Code: "EMP1200"}))

	fields, err := collectFieldErrors(v, sample{Clock: "24:00", Phone: "+91 12345", Email: "a@b", Method: "Crypto", Code: "E1"})
	require.NoError(t, err)
	assert.Len(t, fields, 5)
	assert.Equal(t, "clock is invalid", fields["clock"])
}
