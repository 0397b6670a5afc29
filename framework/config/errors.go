package config

import "strconv"

// ErrorKind classifies configuration failures.
type ErrorKind int

const (
	ErrKindNotFound ErrorKind = iota + 1
	ErrKindInvalid
	ErrKindProfileNotFound
	ErrKindFile
	ErrKindBinding
)

func (k ErrorKind) String() string {
	switch k {
	case ErrKindNotFound:
		return "configuration not found"
	case ErrKindInvalid:
		return "invalid configuration"
	case ErrKindProfileNotFound:
		return "profile not found"
	case ErrKindFile:
		return "configuration file error"
	case ErrKindBinding:
		return "property binding error"
	default:
		return "unknown error (" + strconv.Itoa(int(k)) + ")"
	}
}

// Sentinels for errors.Is.
var (
	ErrNotFound        = &Error{Kind: ErrKindNotFound}
	ErrInvalid         = &Error{Kind: ErrKindInvalid}
	ErrProfileNotFound = &Error{Kind: ErrKindProfileNotFound}
	ErrFile            = &Error{Kind: ErrKindFile}
	ErrBinding         = &Error{Kind: ErrKindBinding}
)

// Error is returned by configuration lookups, loaders and binding.
// Key names the property, profile or file path involved.
type Error struct {
	Kind    ErrorKind
	Key     string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := "config: " + e.Kind.String()
	if e.Key != "" {
		msg += " [" + e.Key + "]"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches message-less sentinels of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Key == "" && t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

func newError(kind ErrorKind, key, msg string, cause error) *Error {
	return &Error{Kind: kind, Key: key, Message: msg, Err: cause}
}
