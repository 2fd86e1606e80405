package common

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreUnavailable is returned when the job store cannot be read or written.
	ErrStoreUnavailable = errors.New("job store unavailable")
	// ErrUnknownJobType means no sender is registered for the job's type.
	ErrUnknownJobType = errors.New("unknown job type")
	// ErrTransientSend marks a delivery failure that may succeed later.
	ErrTransientSend = errors.New("transient send failure")
	// ErrPermanentSend marks a delivery failure that will not succeed on resend.
	ErrPermanentSend = errors.New("permanent send failure")
	// ErrInvalidState is returned when an operation is not valid for the job's status.
	ErrInvalidState = errors.New("invalid job state")
	ErrJobNotFound  = errors.New("job not found")
	ErrDuplicateJob = errors.New("job already exists")
)

// SendError classifies a sender failure as transient or permanent.
// Kind is one of ErrTransientSend or ErrPermanentSend.
type SendError struct {
	Kind error
	Err  error
}

func (e *SendError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Err)
}

func (e *SendError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Transient wraps err as a retryable send failure.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &SendError{Kind: ErrTransientSend, Err: err}
}

// Permanent wraps err as a send failure that resending will not fix.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &SendError{Kind: ErrPermanentSend, Err: err}
}

// IsPermanent reports whether err was classified as a permanent send failure.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrPermanentSend)
}

// StoreError wraps an I/O failure of the job store for operation op.
func StoreError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
