package testutil

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "dummyapi/pkg/domain-errors"
	"dummyapi/pkg/platform/sentinel"
)

func TestRunConcurrent(t *testing.T) {
	res := RunConcurrent(5, func(idx int) error {
		switch idx {
		case 0:
			return nil
		case 1:
			return fmt.Errorf("save: %w", sentinel.ErrAlreadyUsed)
		case 2:
			return dErrors.New(dErrors.CodeConflict, "dup")
		case 3:
			return dErrors.New(dErrors.CodeNotFound, "gone")
		default:
			return errors.New("boom")
		}
	})

	assert.Equal(t, int32(1), res.Successes)
	assert.Equal(t, int32(2), res.Conflicts)
	assert.Equal(t, int32(1), res.NotFounds)
	assert.Equal(t, int32(1), res.Errors)
	assert.Equal(t, int32(5), res.Total())
}

func TestDummyBuilder(t *testing.T) {
	b := NewDummy("Ana").WithID(4).WithNationalID(111).WithEmail("a@x.com").WithPhone(555).WithBirthDate("1990-01-31")

	first := b.Build()
	second := b.Build()
	require.NotSame(t, first, second)
	require.NotSame(t, first.NationalID, second.NationalID)

	assert.Equal(t, "Ana", first.Name)
	assert.Equal(t, int64(111), *first.NationalID)
	assert.Equal(t, "a@x.com", *first.Email)
	assert.Equal(t, int64(555), *first.Phone)
	assert.Equal(t, "1990-01-31", first.BirthDate.String())

	assert.Panics(t, func() { NewDummy("x").WithBirthDate("31/01/1990") })
}
