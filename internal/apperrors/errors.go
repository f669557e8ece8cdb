package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the registration flow. Handlers map these to HTTP
// statuses; everything else is a 500.
var (
	// ErrSoldOut is returned when a ticket's capacity is exhausted at commit time.
	ErrSoldOut = errors.New("ticket sold out")

	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrReferenceTaken is returned when a generated registration reference
	// collides with an existing one. The caller regenerates and retries.
	ErrReferenceTaken = errors.New("reference already taken")
)

// ValidationError marks malformed or ineligible input, e.g. an inactive ticket
// or a ticket that does not belong to the requested event.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Validationf builds a ValidationError with a formatted message.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// PipelineStepError identifies which invoice pipeline step failed so the
// worker can log it; the queue retries the whole task from the top.
type PipelineStepError struct {
	Step string
	Err  error
}

func (e *PipelineStepError) Error() string {
	return fmt.Sprintf("invoice pipeline step %q: %v", e.Step, e.Err)
}

func (e *PipelineStepError) Unwrap() error {
	return e.Err
}

// Step wraps err as a PipelineStepError. Returns nil if err is nil.
func Step(step string, err error) error {
	if err == nil {
		return nil
	}
	return &PipelineStepError{Step: step, Err: err}
}
