package domain

import "errors"

// Error kinds. Every error returned by the service boundary matches exactly
// one of them with errors.Is.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadRequest   = errors.New("bad request")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrLookupFailed = errors.New("menu lookup failed")
	ErrInternal     = errors.New("internal error")
)

// Error is a domain error with a human readable message and a kind.
type Error struct {
	Kind error
	Msg  string
}

func NewError(kind error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func (e *Error) Error() string {
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// KindOf returns the kind of err, or ErrInternal when err carries none.
func KindOf(err error) error {
	for _, kind := range []error{
		ErrUnauthorized,
		ErrBadRequest,
		ErrNotFound,
		ErrConflict,
		ErrLookupFailed,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrInternal
}

// Message returns the message of the outermost *Error in err's chain.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Msg
	}
	return err.Error()
}
