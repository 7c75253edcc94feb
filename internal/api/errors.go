package api

import "fmt"

// Kind classifies a backend failure. The rest of the app only ever sees this
// one error shape; whatever the backend actually returned is normalized here.
type Kind string

const (
	KindValidation Kind = "validation"
	KindTransport  Kind = "transport"
	KindNotFound   Kind = "notFound"
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Message returns err's human-readable message, unwrapping *Error when
// possible.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if apiErr, ok := err.(*Error); ok {
		return apiErr.Message
	}
	return err.Error()
}
