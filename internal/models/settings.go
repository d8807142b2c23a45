package models

// LibraryTimings holds the default study windows per plan as HH:MM strings.
type LibraryTimings struct {
	FullTimeStart string `json:"fullTimeStart" validate:"required,clock"`
	FullTimeEnd   string `json:"fullTimeEnd" validate:"required,clock"`
	HalfTimeStart string `json:"halfTimeStart" validate:"required,clock"`
	HalfTimeEnd   string `json:"halfTimeEnd" validate:"required,clock"`
}

// DefaultLibraryTimings mirrors the opening hours used before any are saved.
func DefaultLibraryTimings() LibraryTimings {
	return LibraryTimings{
		FullTimeStart: "09:00",
		FullTimeEnd:   "21:00",
		HalfTimeStart: "09:00",
		HalfTimeEnd:   "14:00",
	}
}

// PayrollSettings is the free-form payroll settings map (payDay, currency).
type PayrollSettings map[string]string
