package models

// PlanType is the study plan a student subscribes to.
type PlanType string

const (
	PlanFullTime PlanType = "full-time"
	PlanHalfTime PlanType = "half-time"
)

// StudentStatus values.
const (
	StudentActive    = "Active"
	StudentInactive  = "Inactive"
	StudentSuspended = "Suspended"
)

// Student is a library member occupying exactly one seat.
type Student struct {
	ID              int              `json:"id"`
	Name            string           `json:"name"`
	Email           string           `json:"email"`
	Phone           string           `json:"phone"`
	Address         string           `json:"address"`
	PlanType        PlanType         `json:"planType"`
	SeatNumber      string           `json:"seatNumber"`
	JoinDate        string           `json:"joinDate"`
	LastFeeDate     *string          `json:"lastFeeDate"`
	FeeAmount       float64          `json:"feeAmount"`
	StudyHours      string           `json:"studyHours"`
	Status          string           `json:"status"`
	FeesPaid        bool             `json:"feesPaid"`
	UseCustomTiming bool             `json:"useCustomTiming"`
	CustomStartTime string           `json:"customStartTime"`
	CustomEndTime   string           `json:"customEndTime"`
	PaymentHistory  []StudentPayment `json:"paymentHistory"`
	TotalPaid       float64          `json:"totalPaid"`
}

// StudentPayment is one fee entry in a student's history.
type StudentPayment struct {
	ID        int     `json:"id"`
	PaymentID int64   `json:"paymentId,omitempty"`
	Date      string  `json:"date"`
	Month     string  `json:"month"`
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
	Status    string  `json:"status"`
	Notes     string  `json:"notes,omitempty"`
	Timestamp string  `json:"timestamp,omitempty"`
}

// StudentView decorates a student with its human readable timing.
type StudentView struct {
	Student
	DisplayTiming string `json:"displayTiming"`
}

// StudentFilter narrows student listings.
type StudentFilter struct {
	Search   string
	PlanType PlanType
	FeesPaid *bool
	Status   string
}

// StudentInput is the create/update form.
type StudentInput struct {
	Name            string   `json:"name" validate:"required"`
	Email           string   `json:"email" validate:"required,looseemail"`
	Phone           string   `json:"phone" validate:"required,inphone"`
	Address         string   `json:"address"`
	PlanType        PlanType `json:"planType" validate:"required,oneof=full-time half-time"`
	SeatNumber      string   `json:"seatNumber" validate:"required"`
	Status          string   `json:"status" validate:"omitempty,oneof=Active Inactive Suspended"`
	FeesPaid        bool     `json:"feesPaid"`
	PaymentMethod   string   `json:"paymentMethod" validate:"omitempty,paymentmethod"`
	UseCustomTiming bool     `json:"useCustomTiming"`
	CustomStartTime string   `json:"customStartTime" validate:"omitempty,clock"`
	CustomEndTime   string   `json:"customEndTime" validate:"omitempty,clock"`
}

// StudentTimingInput sets or clears a student's custom timing.
type StudentTimingInput struct {
	UseCustomTiming bool   `json:"useCustomTiming"`
	CustomStartTime string `json:"customStartTime" validate:"omitempty,clock"`
	CustomEndTime   string `json:"customEndTime" validate:"omitempty,clock"`
}
