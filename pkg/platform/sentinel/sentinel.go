package sentinel

import "errors"

// Sentinel dependency errors. Stores return these (optionally wrapped)
// so services can translate them into domain errors exactly once.
var (
	ErrNotFound    = errors.New("not found")
	ErrAlreadyUsed = errors.New("already used")
	ErrUnavailable = errors.New("unavailable")
)

// UsedError names the unique field a write collided on.
// errors.Is(err, ErrAlreadyUsed) holds for every UsedError.
type UsedError struct {
	Field string
	Value string
}

func (e *UsedError) Error() string {
	return e.Field + " " + e.Value + " already used"
}

func (e *UsedError) Unwrap() error {
	return ErrAlreadyUsed
}
