// Package store persists dummy records. Backends enforce national id and
// email uniqueness natively and report violations as sentinel.ErrAlreadyUsed.
package store

import (
	"fmt"
	"strconv"

	"dummyapi/internal/dummy/models"
	"dummyapi/pkg/platform/sentinel"
)

// ErrNotFound is returned when a record id is unknown.
var ErrNotFound = sentinel.ErrNotFound

func nationalIDUsed(n int64) error {
	return &sentinel.UsedError{Field: models.FieldNationalID, Value: strconv.FormatInt(n, 10)}
}

func emailUsed(e string) error {
	return &sentinel.UsedError{Field: models.FieldEmail, Value: e}
}

func requireRecord(d *models.Dummy) error {
	if d == nil {
		return fmt.Errorf("dummy is required")
	}
	return nil
}
