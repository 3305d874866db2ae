package common_errors

import (
	"fmt"

	"golang.org/x/xerrors"
)

var (
	ErrNotHashable             = xerrors.New("field type has no well-defined equality/hash")
	ErrRowTypeMismatch         = xerrors.New("row does not conform to row type")
	ErrUnknownPredicate        = xerrors.New("unknown join predicate")
	ErrInvalidPredicateCode    = xerrors.New("invalid join predicate code")
	ErrInvalidRetention        = xerrors.New("max retention must not be smaller than min retention")
	ErrNotReady                = xerrors.New("join processor is not ready")
	ErrInvalidStateTransition  = xerrors.New("invalid state transition")
	ErrCleanupDisabled         = xerrors.New("cleanup timer fired while state cleanup is disabled")
	ErrNoPendingTimer          = xerrors.New("cleanup timer fired without a pending registration")
	ErrUnrecognizedSerdeFormat = xerrors.New("Unrecognized serde format")
	ErrUnsupportedFieldValue   = xerrors.New("unsupported field value")
	ErrUnknownStoreKind        = xerrors.New("unknown store kind")
)

// ValidationError is returned when an operator is built over row types that
// cannot be used as map keys. Nothing is started when it is returned.
type ValidationError struct {
	Subject string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation of %s failed: %v", e.Subject, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// InitializationError marks a fatal failure while opening an operator.
type InitializationError struct {
	Component string
	Err       error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("failed to initialize %s: %v", e.Component, e.Err)
}

func (e *InitializationError) Unwrap() error { return e.Err }

// ProcessingError is a per-record failure. It is never retried here.
type ProcessingError struct {
	Key string
	Err error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("failed to process record with key %q: %v", e.Key, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// PreconditionError signals a broken internal invariant.
type PreconditionError struct {
	Key string
	Err error
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition violated for key %q: %v", e.Key, e.Err)
}

func (e *PreconditionError) Unwrap() error { return e.Err }

func IsValidationError(err error) bool {
	var v *ValidationError
	return xerrors.As(err, &v)
}

func IsInitializationError(err error) bool {
	var v *InitializationError
	return xerrors.As(err, &v)
}

func IsProcessingError(err error) bool {
	var v *ProcessingError
	return xerrors.As(err, &v)
}

func IsPreconditionError(err error) bool {
	var v *PreconditionError
	return xerrors.As(err, &v)
}
