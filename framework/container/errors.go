package container

import "strconv"

// Kind classifies container failures. The taxonomy is flat on purpose:
// callers switch on Kind or match a sentinel with errors.Is.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindCircularDependency
	KindCreationFailed
	KindTypeCastFailed
	KindConfiguration
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "component not found"
	case KindCircularDependency:
		return "circular dependency detected"
	case KindCreationFailed:
		return "component creation failed"
	case KindTypeCastFailed:
		return "type cast failed"
	case KindConfiguration:
		return "configuration error"
	case KindOther:
		return "other error"
	default:
		return "unknown error (" + strconv.Itoa(int(k)) + ")"
	}
}

// Sentinels for errors.Is. A sentinel matches any *Error of the same Kind.
var (
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrCircularDependency = &Error{Kind: KindCircularDependency}
	ErrCreationFailed     = &Error{Kind: KindCreationFailed}
	ErrTypeCastFailed     = &Error{Kind: KindTypeCastFailed}
	ErrConfiguration      = &Error{Kind: KindConfiguration}
	ErrOther              = &Error{Kind: KindOther}
)

// Error is returned by every container operation that can fail.
type Error struct {
	Kind    Kind
	Message string
	// Err is the underlying cause, e.g. the error returned by a factory.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Example: container: component creation failed: failed to create "Repo": dial tcp: refused
	msg := "container: " + e.Kind.String()
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the cause.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a sentinel (message-less *Error) of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

func newError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}
