package vaulterr

import (
	"context"
	"net/http"
)

// errorBody is what the boundary renders for any failed request —
// schema-invalid additionally populates Fields.
type errorBody struct {
	Kind    Kind              `json:"kind"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// StatusCode maps a Kind to its HTTP status. Unrecognized kinds (a
// plain Go error reaching the boundary) fall
// back to 500 — they indicate a bug, not a modeled failure.
func StatusCode(kind Kind) int {
	switch kind {
	case SchemaInvalid, FieldNotQueryable, UnsupportedGrammar:
		return http.StatusBadRequest
	case Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict, IntegrityConflict:
		return http.StatusConflict
	case MailSendFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Handler is registered with httpx.SetErrorHandlerCtx at process start
// (cmd/vaultd), the one place a *Error is translated into a status code
// and JSON body; everywhere else errors stay data.
func Handler(_ context.Context, err error) (int, interface{}) {
	ve, ok := err.(*Error)
	if !ok {
		return http.StatusInternalServerError, errorBody{Kind: "internal", Message: err.Error()}
	}
	return StatusCode(ve.Kind), errorBody{Kind: ve.Kind, Message: ve.Message, Fields: ve.Fields}
}
