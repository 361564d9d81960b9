package scheduling

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidWindow     = errors.New("invalid time window")
	ErrDataUnavailable   = errors.New("scheduling data unavailable")
	ErrPersonNotFound    = errors.New("person not found")
	ErrOrganizerNotFound = errors.New("organizer not found")
)

// DataUnavailableError wraps a failure reported by the DataSource.
// It matches ErrDataUnavailable and unwraps to the original error.
type DataUnavailableError struct {
	Op  string
	Err error
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DataUnavailableError) Unwrap() error {
	return e.Err
}

func (e *DataUnavailableError) Is(target error) bool {
	return target == ErrDataUnavailable
}

func unavailable(op string, err error) error {
	var du *DataUnavailableError
	if errors.As(err, &du) {
		return err
	}
	return &DataUnavailableError{Op: op, Err: err}
}
