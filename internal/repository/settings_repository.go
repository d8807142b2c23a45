package repository

import (
	"context"
	"fmt"

	"github.com/noah-isme/ledgerdesk-api/internal/models"
)

// SettingsRepository reads and writes the flat settings maps of both domains.
type SettingsRepository struct {
	library         Store
	payroll         Store
	payrollDefaults models.PayrollSettings
}

// NewSettingsRepository constructs the repository. payrollDefaults fill keys that were
// never saved.
func NewSettingsRepository(library, payroll Store, payrollDefaults models.PayrollSettings) *SettingsRepository {
	return &SettingsRepository{library: library, payroll: payroll, payrollDefaults: payrollDefaults}
}

// LibraryTimings returns the saved timings, falling back to the defaults per field.
func (r *SettingsRepository) LibraryTimings(ctx context.Context) models.LibraryTimings {
	timings := models.DefaultLibraryTimings()
	var saved models.LibraryTimings
	if !r.library.Get(ctx, KeyTimings, &saved) {
		return timings
	}
	if saved.FullTimeStart != "" {
		timings.FullTimeStart = saved.FullTimeStart
	}
	if saved.FullTimeEnd != "" {
		timings.FullTimeEnd = saved.FullTimeEnd
	}
	if saved.HalfTimeStart != "" {
		timings.HalfTimeStart = saved.HalfTimeStart
	}
	if saved.HalfTimeEnd != "" {
		timings.HalfTimeEnd = saved.HalfTimeEnd
	}
	return timings
}

// SaveLibraryTimings overwrites the timings blob.
func (r *SettingsRepository) SaveLibraryTimings(ctx context.Context, timings models.LibraryTimings) error {
	return r.library.Exclusive(func() error {
		if !r.library.Set(ctx, KeyTimings, timings) {
			return fmt.Errorf("save library timings: %w", ErrPersistence)
		}
		return nil
	})
}

// PayrollSettings returns saved settings merged over the defaults.
func (r *SettingsRepository) PayrollSettings(ctx context.Context) models.PayrollSettings {
	var saved models.PayrollSettings
	r.payroll.Get(ctx, KeySettings, &saved)
	return r.withDefaults(saved)
}

// SavePayrollSettings merges values into the stored settings map.
func (r *SettingsRepository) SavePayrollSettings(ctx context.Context, values models.PayrollSettings) (models.PayrollSettings, error) {
	var merged models.PayrollSettings
	err := r.payroll.Exclusive(func() error {
		current := make(models.PayrollSettings)
		r.payroll.Get(ctx, KeySettings, &current)
		if current == nil {
			current = make(models.PayrollSettings)
		}
		for k, v := range values {
			current[k] = v
		}
		if !r.payroll.Set(ctx, KeySettings, current) {
			return fmt.Errorf("save payroll settings: %w", ErrPersistence)
		}
		merged = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.withDefaults(merged), nil
}

// ReplacePayrollSettings writes values as the whole stored settings map. Keys missing
// from values are dropped.
func (r *SettingsRepository) ReplacePayrollSettings(ctx context.Context, values models.PayrollSettings) error {
	if values == nil {
		values = make(models.PayrollSettings)
	}
	return r.payroll.Exclusive(func() error {
		if !r.payroll.Set(ctx, KeySettings, values) {
			return fmt.Errorf("replace payroll settings: %w", ErrPersistence)
		}
		return nil
	})
}

func (r *SettingsRepository) withDefaults(values models.PayrollSettings) models.PayrollSettings {
	out := make(models.PayrollSettings, len(r.payrollDefaults)+len(values))
	for k, v := range r.payrollDefaults {
		out[k] = v
	}
	for k, v := range values {
		out[k] = v
	}
	return out
}
