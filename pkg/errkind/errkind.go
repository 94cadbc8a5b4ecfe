// Package errkind attaches an operation name and a sentinel kind to errors so
// callers can branch with errors.Is on the kind while keeping the cause.
package errkind

import (
	"errors"
	"strings"
)

// Error carries the failing operation, its kind and the underlying cause.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	switch {
	case e.Kind != nil && e.Err != nil:
		b.WriteString(e.Kind.Error())
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	case e.Kind != nil:
		b.WriteString(e.Kind.Error())
	case e.Err != nil:
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// NewKind returns an error of the given kind with no further cause.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// WrapKind wraps err with op and kind. A nil err yields nil.
func WrapKind(op string, kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// Wrap adds op to err; KindOf still reports any kind err already carries.
// A nil err yields nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// KindOf returns the outermost kind attached to err, or nil.
func KindOf(err error) error {
	var e *Error
	if errors.As(err, &e) {
		if e.Kind != nil {
			return e.Kind
		}
		return KindOf(e.Err)
	}
	return nil
}

// Name returns the kind's message, or "unknown" when err carries none.
func Name(err error) string {
	if k := KindOf(err); k != nil {
		return k.Error()
	}
	return "unknown"
}
