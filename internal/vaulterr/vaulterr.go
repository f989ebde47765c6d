// Package vaulterr defines the typed failure kinds surfaced across the
// core: errors are data, not control flow.
package vaulterr

import "fmt"

// Kind is a closed set of failure categories understood at the API boundary.
type Kind string

const (
	SchemaInvalid      Kind = "schema-invalid"
	Unauthenticated    Kind = "unauthenticated"
	Forbidden          Kind = "forbidden"
	NotFound           Kind = "not-found"
	Conflict           Kind = "conflict"
	FieldNotQueryable  Kind = "field-not-queryable"
	UnsupportedGrammar Kind = "unsupported-grammar"
	MailSendFailed     Kind = "mail-send-failed"
	IntegrityConflict  Kind = "integrity-conflict"
)

// Error is the typed failure carried across package boundaries.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is lets errors.Is(err, vaulterr.New(kind, "")) match on Kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New builds a bare Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WithFields attaches per-field validation detail (used by SchemaInvalid).
func WithFields(kind Kind, message string, fields map[string]string) *Error {
	return &Error{Kind: kind, Message: message, Fields: fields}
}

// Newf builds a bare Error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the Kind from err, defaulting to "" when err is not
// a *Error (or is nil).
func KindOf(err error) Kind {
	var e *Error
	if err == nil {
		return ""
	}
	if ve, ok := err.(*Error); ok {
		e = ve
	}
	if e == nil {
		return ""
	}
	return e.Kind
}
