package domain

import (
	"errors"
	"sort"
	"strings"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeUnauthenticated  Code = "UNAUTHENTICATED"
	CodeForbidden        Code = "FORBIDDEN"
	CodeNotFound         Code = "NOT_FOUND"
	CodeValidationFailed Code = "VALIDATION_FAILED"
	CodeConflict         Code = "CONFLICT"
)

// Forbidden reasons.
const (
	ReasonUnauthenticated = "unauthenticated"
	ReasonPrivilegedField = "privileged field"
	ReasonForbidden       = "forbidden"
)

// Field messages shared across entities.
const (
	MsgBlank     = "can't be blank"
	MsgPositive  = "must be greater than 0"
	MsgMustExist = "must exist"
	MsgTaken     = "has already been taken"
)

// Error is the tagged error every command returns for business outcomes.
type Error struct {
	Code    Code
	Message string
	Reason  string
	Entity  string
	Fields  FieldErrors
	Cause   error
}

func (e *Error) Error() string {
	if len(e.Fields) > 0 {
		return e.Message + ": " + e.Fields.String()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

var (
	ErrUnauthenticated = &Error{Code: CodeUnauthenticated, Message: "token is invalid", Reason: ReasonUnauthenticated}
	ErrForbidden       = &Error{Code: CodeForbidden, Message: "resource is forbidden"}
	ErrNotFound        = &Error{Code: CodeNotFound, Message: "not found"}
	ErrValidation      = &Error{Code: CodeValidationFailed, Message: "validation failed"}
	ErrConflict        = &Error{Code: CodeConflict, Message: "conflict"}
)

func Forbidden(reason string) *Error {
	return &Error{Code: CodeForbidden, Message: "resource is forbidden: " + reason, Reason: reason}
}

func NotFound(entity string) *Error {
	return &Error{Code: CodeNotFound, Message: "couldn't find " + entity, Entity: entity}
}

func Invalid(fields FieldErrors) *Error {
	return &Error{Code: CodeValidationFailed, Message: "validation failed", Fields: fields}
}

func Conflict(field string, cause error) *Error {
	return &Error{
		Code:    CodeConflict,
		Message: "conflict",
		Fields:  FieldErrors{field: {MsgTaken}},
		Cause:   cause,
	}
}

// FieldErrors maps a field tag to every message raised against it.
type FieldErrors map[string][]string

// Add appends msg to field unless it is already present.
func (f FieldErrors) Add(field, msg string) {
	for _, m := range f[field] {
		if m == msg {
			return
		}
	}
	f[field] = append(f[field], msg)
}

func (f FieldErrors) Merge(other FieldErrors) {
	for field, msgs := range other {
		for _, m := range msgs {
			f.Add(field, m)
		}
	}
}

func (f FieldErrors) Empty() bool {
	return len(f) == 0
}

// Err returns nil when there are no violations.
func (f FieldErrors) Err() error {
	if f.Empty() {
		return nil
	}
	return Invalid(f)
}

func (f FieldErrors) String() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+strings.Join(f[k], ", "))
	}
	return strings.Join(parts, "; ")
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
