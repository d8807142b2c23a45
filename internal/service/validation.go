package service

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/ledgerdesk-api/internal/models"
	appErrors "github.com/noah-isme/ledgerdesk-api/pkg/errors"
)

var (
	looseEmailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)
	indianPhone       = regexp.MustCompile(`^\+91\s\d{10}$`)
	clockPattern      = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
	employeeIDFormat  = regexp.MustCompile(`^EMP\d{3,}$`)
)

// fieldMessages maps "<json field>.<tag>" to the message shown next to the field.
var fieldMessages = map[string]string{
	"name.required":               "Name is required",
	"email.required":              "Email is required",
	"email.looseemail":            "Email is invalid",
	"phone.required":              "Phone is required",
	"phone.inphone":               "Phone format should be +91 XXXXXXXXXX",
	"seatNumber.required":         "Please select a seat",
	"planType.required":           "Plan type is required",
	"planType.oneof":              "Plan type must be full-time or half-time",
	"status.oneof":                "Status is not supported",
	"department.required":         "Department is required",
	"position.required":           "Position is required",
	"baseSalary.gt":               "Base salary must be greater than 0",
	"baseSalary.gte":              "Base salary cannot be negative",
	"deductions.gte":              "Deductions cannot be negative",
	"bonuses.gte":                 "Bonuses cannot be negative",
	"amount.gt":                   "Please enter a valid amount",
	"method.paymentmethod":        "Payment method is not supported",
	"paymentMethod.paymentmethod": "Payment method is not supported",
	"employeeId.empid":            "Employee ID format should be EMP###",
	"joiningDate.datetime":        "Joining date must be YYYY-MM-DD",
	"date.datetime":               "Date must be YYYY-MM-DD",
	"customStartTime.clock":       "Start time must be HH:MM",
	"customEndTime.clock":         "End time must be HH:MM",
	"fullTimeStart.clock":         "Full-time start must be HH:MM",
	"fullTimeEnd.clock":           "Full-time end must be HH:MM",
	"halfTimeStart.clock":         "Half-time start must be HH:MM",
	"halfTimeEnd.clock":           "Half-time end must be HH:MM",
}

// FieldErrors maps a JSON field name to a human readable message.
type FieldErrors map[string]string

// Set records msg for field, replacing any earlier message.
func (f FieldErrors) Set(field, msg string) {
	f[field] = msg
}

// Empty reports whether no violation was recorded.
func (f FieldErrors) Empty() bool {
	return len(f) == 0
}

// NewValidator returns a validator reporting JSON field names and carrying the custom
// tags used by the ledgers.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("looseemail", func(fl validator.FieldLevel) bool {
		return looseEmailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("inphone", func(fl validator.FieldLevel) bool {
		return indianPhone.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		return clockPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("empid", func(fl validator.FieldLevel) bool {
		return employeeIDFormat.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("paymentmethod", func(fl validator.FieldLevel) bool {
		method := fl.Field().String()
		for _, m := range models.PaymentMethods {
			if m == method {
				return true
			}
		}
		return false
	})
	return v
}

// collectFieldErrors runs struct validation and converts every failure into a message.
// Errors other than validation failures are returned unchanged.
func collectFieldErrors(v *validator.Validate, input interface{}) (FieldErrors, error) {
	fields := FieldErrors{}
	err := v.Struct(input)
	if err == nil {
		return fields, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}
	for _, fe := range verrs {
		name := fe.Field()
		if _, exists := fields[name]; exists {
			continue
		}
		if msg, ok := fieldMessages[name+"."+fe.Tag()]; ok {
			fields.Set(name, msg)
			continue
		}
		fields.Set(name, name+" is invalid")
	}
	return fields, nil
}

func validationError(message string, fields FieldErrors) error {
	return appErrors.WithFields(appErrors.ErrValidation, message, fields)
}

// beforeClock reports whether start is strictly earlier than end for HH:MM strings.
func beforeClock(start, end string) bool {
	return start < end
}
