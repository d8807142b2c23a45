package service

import (
	"errors"

	"github.com/noah-isme/ledgerdesk-api/internal/repository"
	appErrors "github.com/noah-isme/ledgerdesk-api/pkg/errors"
)

var conflictMessages = map[string]string{
	"email":      "Email already exists",
	"phone":      "Phone number already exists",
	"employeeId": "Employee ID already exists",
}

// translateRepoError maps repository sentinels onto HTTP aware errors. notFound is the
// message used for a missing record.
func translateRepoError(err error, notFound string) error {
	if err == nil {
		return nil
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	var conflict *repository.ConflictError
	if errors.As(err, &conflict) {
		message, ok := conflictMessages[conflict.Field]
		if !ok {
			message = conflict.Field + " already exists"
		}
		return validationError("record already exists", FieldErrors{conflict.Field: message})
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, notFound)
	case errors.Is(err, repository.ErrSeatUnavailable):
		return appErrors.WithFields(appErrors.ErrValidation, "seat is not available", FieldErrors{"seatNumber": "Seat is not available"})
	case errors.Is(err, repository.ErrDepartmentInUse):
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "department still has employees")
	case errors.Is(err, repository.ErrDuplicate):
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "record already exists")
	case errors.Is(err, repository.ErrPersistence):
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save data")
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}
}

func importRejected(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrImportRejected.Code, appErrors.ErrImportRejected.Status, message)
}
