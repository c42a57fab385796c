package future

import "fmt"

// Reserved error codes. Every other code is opaque to the library and
// meaningful only to the caller that produced it.
const (
	// ErrInvalidArgument is used by combinators that reject an empty input.
	ErrInvalidArgument = 1
	// ErrObjectDestroyed is used by lifetime-monitored continuations
	// whose owner no longer exists.
	ErrObjectDestroyed = 2
)

// Error is the immutable triple carried through an Errored outcome: a
// code, an optional context value, and an optional message. Two Errors
// are equal when all three fields compare equal.
type Error struct {
	code    int
	context int
	info    *string
}

// ErrorOption configures an Error at construction time.
type ErrorOption func(*Error)

// WithErrorContext sets the context field of an Error.
func WithErrorContext(context int) ErrorOption {
	return func(e *Error) { e.context = context }
}

// WithErrorInfo sets the optional message field of an Error.
func WithErrorInfo(info string) ErrorOption {
	return func(e *Error) { e.info = &info }
}

// NewError builds an Error from a code and any number of options.
func NewError(code int, opts ...ErrorOption) Error {
	e := Error{code: code}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// Code returns the error's code.
func (e Error) Code() int { return e.code }

// Context returns the error's context value (zero if unset).
func (e Error) Context() int { return e.context }

// HasInfo reports whether a message was attached to this Error.
func (e Error) HasInfo() bool { return e.info != nil }

// Info returns the attached message, or the empty string if none was set.
func (e Error) Info() string {
	if e.info == nil {
		return ""
	}
	return *e.info
}

// Equal compares two Errors field-wise.
func (e Error) Equal(o Error) bool {
	if e.code != o.code || e.context != o.context {
		return false
	}
	if e.HasInfo() != o.HasInfo() {
		return false
	}
	return !e.HasInfo() || e.Info() == o.Info()
}

// Error implements Go's error interface so an Error can be wrapped by or
// compared against ordinary Go errors in diagnostics and logs. It is not
// otherwise treated as a Go error anywhere on the settlement path —
// Outcome carries Error values directly.
func (e Error) Error() string {
	if e.HasInfo() {
		return fmt.Sprintf("future: error %d (context %d): %s", e.code, e.context, e.Info())
	}
	return fmt.Sprintf("future: error %d (context %d)", e.code, e.context)
}

// InvalidArgument builds the reserved ErrInvalidArgument error with the
// given message, as emitted by combinators on empty input.
func InvalidArgument(info string) Error {
	return NewError(ErrInvalidArgument, WithErrorInfo(info))
}

// ObjectDestroyed builds the reserved ErrObjectDestroyed error, emitted
// by lifetime-monitored continuations whose owner is gone.
func ObjectDestroyed() Error {
	return NewError(ErrObjectDestroyed)
}

// userCodeError wraps a panic or a plain Go error returned from user code
// into an Error. Code 0 is not reserved by the spec; it is this
// library's convention for "a Go error/panic was converted".
func userCodeError(info string) Error {
	return NewError(0, WithErrorInfo(info))
}
