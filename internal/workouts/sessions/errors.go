package sessions

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
)

var (
	ErrSessionInProgress    = fmt.Errorf("%w: a session is already in progress", ErrValidation)
	ErrSessionCompleted     = fmt.Errorf("%w: session is completed", ErrValidation)
	ErrSessionNotCompleted  = fmt.Errorf("%w: session is not completed", ErrValidation)
	ErrEmptySet             = fmt.Errorf("%w: set has no measurements", ErrValidation)
	ErrInvalidMeasurement   = fmt.Errorf("%w: invalid measurement", ErrValidation)
	ErrInvalidRating        = fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	ErrInvalidTimeRange     = fmt.Errorf("%w: session cannot end before it started", ErrValidation)
	ErrInvalidCursor        = fmt.Errorf("%w: invalid cursor", ErrValidation)
	ErrInvalidHistoryParams = fmt.Errorf("%w: invalid history params", ErrValidation)
)

func validateRating(rating *int) error {
	if rating == nil {
		return nil
	}
	if *rating < 1 || *rating > 5 {
		return fmt.Errorf("%w: got %d", ErrInvalidRating, *rating)
	}
	return nil
}
