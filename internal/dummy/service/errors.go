package service

import (
	"errors"
	"fmt"

	dErrors "dummyapi/pkg/domain-errors"
	"dummyapi/pkg/platform/sentinel"
)

// wrapStoreErr translates store failures into domain errors exactly once.
// notFound is used when the store reports sentinel.ErrNotFound.
func wrapStoreErr(err error, notFound, action string) error {
	if err == nil {
		return nil
	}
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		return err
	}
	if notFound != "" && errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, notFound)
	}
	var used *sentinel.UsedError
	if errors.As(err, &used) {
		return dErrors.Wrap(err, dErrors.CodeConflict, conflictMessage(used.Field, used.Value))
	}
	if errors.Is(err, sentinel.ErrAlreadyUsed) {
		return dErrors.Wrap(err, dErrors.CodeConflict, "dummy already exists")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, action)
}

func conflictMessage(field, value string) string {
	return fmt.Sprintf("dummy with %s %s already exists", field, value)
}

// passDomain returns domain errors unchanged and wraps anything else as internal.
func passDomain(err error, action string) error {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, action)
}
