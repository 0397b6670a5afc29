package app

import "strconv"

// ErrorKind classifies application context failures.
type ErrorKind int

const (
	KindInitializationFailed ErrorKind = iota + 1
	KindConfiguration
)

func (k ErrorKind) String() string {
	switch k {
	case KindInitializationFailed:
		return "initialization failed"
	case KindConfiguration:
		return "configuration error"
	default:
		return "unknown error (" + strconv.Itoa(int(k)) + ")"
	}
}

var (
	ErrInitializationFailed = &Error{Kind: KindInitializationFailed}
	ErrConfiguration        = &Error{Kind: KindConfiguration}
)

// Error wraps failures of Build, Initialize and Serve. The underlying
// container or config error stays reachable through errors.Is / errors.As.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := "app: " + e.Kind.String()
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

func newError(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}
