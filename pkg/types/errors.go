package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure so callers can map it without parsing text
type ErrorKind string

const (
	KindTaskNotFound            ErrorKind = "TaskNotFound"
	KindManagerNotFound         ErrorKind = "ManagerNotFound"
	KindPersonNotFound          ErrorKind = "PersonNotFound"
	KindPriorityNotFound        ErrorKind = "PriorityNotFound"
	KindStatusNotFound          ErrorKind = "StatusNotFound"
	KindTeamNotFound            ErrorKind = "TeamNotFound"
	KindStatusAccessDenied      ErrorKind = "StatusAccessDenied"
	KindTaskAccessDenied        ErrorKind = "TaskAccessDenied"
	KindTeamAccessDenied        ErrorKind = "TeamAccessDenied"
	KindRoleAccessDenied        ErrorKind = "RoleAccessDenied"
	KindIncompleteReferenceData ErrorKind = "IncompleteReferenceData"
	KindInvalidArgument         ErrorKind = "InvalidArgument"
	KindPersistence             ErrorKind = "Persistence"
	KindUnknown                 ErrorKind = "Unknown"
)

// Error is a classified failure
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Errorf builds a classified error
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error
func Wrap(kind ErrorKind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of err, or KindUnknown if it is not classified
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
