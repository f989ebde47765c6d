package vaulterr_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/sampleforge/vault/internal/vaulterr"
)

func TestStatusCodeMatchesTable(t *testing.T) {
	cases := map[vaulterr.Kind]int{
		vaulterr.SchemaInvalid:      http.StatusBadRequest,
		vaulterr.Unauthenticated:    http.StatusUnauthorized,
		vaulterr.Forbidden:          http.StatusForbidden,
		vaulterr.NotFound:           http.StatusNotFound,
		vaulterr.Conflict:           http.StatusConflict,
		vaulterr.FieldNotQueryable:  http.StatusBadRequest,
		vaulterr.UnsupportedGrammar: http.StatusBadRequest,
		vaulterr.MailSendFailed:     http.StatusInternalServerError,
		vaulterr.IntegrityConflict:  http.StatusConflict,
	}
	for kind, want := range cases {
		if got := vaulterr.StatusCode(kind); got != want {
			t.Errorf("StatusCode(%s) = %d, want %d", kind, got, want)
		}
	}
}

func TestHandlerTranslatesTypedError(t *testing.T) {
	err := vaulterr.New(vaulterr.NotFound, "no such object")
	code, body := vaulterr.Handler(context.Background(), err)
	if code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
	if body == nil {
		t.Fatal("expected a non-nil body")
	}
}

func TestHandlerFallsBackTo500ForPlainErrors(t *testing.T) {
	code, _ := vaulterr.Handler(context.Background(), errors.New("boom"))
	if code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for an untyped error, got %d", code)
	}
}
